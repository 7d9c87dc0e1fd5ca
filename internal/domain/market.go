package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Market
// ──────────────────────────────────────────────────────────────────────────────

// Market binds one unordered asset pair to its options engine state: the
// liquidity pool holding PoolAsset collateral, the AMM pair the oracle reads,
// and the pricing parameters fixed at creation. The factory registry is
// append-only; a market is never overwritten or deleted.
type Market struct {
	ID            uuid.UUID `json:"id"             db:"id"`
	PairKey       string    `json:"pair_key"       db:"pair_key"`
	PoolAsset     string    `json:"pool_asset"     db:"pool_asset"`
	PaymentAsset  string    `json:"payment_asset"  db:"payment_asset"`
	PoolID        uuid.UUID `json:"pool_id"        db:"pool_id"`
	VolatilityPct int64     `json:"volatility_pct" db:"volatility_pct"`
	FeeBps        int64     `json:"fee_bps"        db:"fee_bps"`
	// OracleActiveAt is the earliest instant consult() may serve a price:
	// pair creation plus the oracle activation delay.
	OracleActiveAt time.Time `json:"oracle_active_at" db:"oracle_active_at"`
	CreatedAt      time.Time `json:"created_at"       db:"created_at"`
}

// NormalizeAsset canonicalises an asset symbol for pair-key lookups.
func NormalizeAsset(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// PairKeyFor builds the canonical unordered pair key for two asset symbols,
// so that (A,B) and (B,A) always resolve to the same market.
func PairKeyFor(assetA, assetB string) string {
	pair := []string{NormalizeAsset(assetA), NormalizeAsset(assetB)}
	sort.Strings(pair)
	return pair[0] + "/" + pair[1]
}

// OracleActivated returns true once the market's oracle may be consulted.
func (m *Market) OracleActivated(now time.Time) bool {
	return !now.Before(m.OracleActiveAt)
}

// SnapshotUsable reports whether a snapshot taken at takenAt may price this
// market. Snapshots older than activation average in the pre-activation
// bootstrap window and would skew the quote.
func (m *Market) SnapshotUsable(takenAt time.Time) bool {
	return !takenAt.Before(m.OracleActiveAt)
}

// ──────────────────────────────────────────────────────────────────────────────
// MarketSummary — read model for list endpoints and WS broadcasts
// ──────────────────────────────────────────────────────────────────────────────

// MarketSummary is a derived, read-only view of a Market used for listing and
// broadcasting. OraclePrice is the latest TWAP of one pool-asset unit in
// payment-asset units at price-decimals scale; zero when no price exists yet.
type MarketSummary struct {
	ID             uuid.UUID       `json:"id"`
	PairKey        string          `json:"pair_key"`
	PoolAsset      string          `json:"pool_asset"`
	PaymentAsset   string          `json:"payment_asset"`
	PoolReserve    decimal.Decimal `json:"pool_reserve"`
	TotalShares    decimal.Decimal `json:"total_shares"`
	OraclePrice    decimal.Decimal `json:"oracle_price"`
	OracleActiveAt time.Time       `json:"oracle_active_at"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ToSummary builds a MarketSummary from the market, its pool, and the latest
// oracle price.
func (m *Market) ToSummary(pool *Pool, oraclePrice decimal.Decimal) MarketSummary {
	s := MarketSummary{
		ID:             m.ID,
		PairKey:        m.PairKey,
		PoolAsset:      m.PoolAsset,
		PaymentAsset:   m.PaymentAsset,
		OraclePrice:    oraclePrice,
		OracleActiveAt: m.OracleActiveAt,
		CreatedAt:      m.CreatedAt,
	}
	if pool != nil {
		s.PoolReserve = pool.Reserve
		s.TotalShares = pool.TotalShares
	}
	return s
}
