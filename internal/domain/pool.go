package domain

import (
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Pool
// ──────────────────────────────────────────────────────────────────────────────

// Pool holds the collateral backing one market's options and the share ledger
// of its liquidity providers. Each market owns exactly one pool, created with
// the market and never transferred.
//
// Reserve moves through two paths: the public deposit/withdraw path, which
// mints and burns shares proportionally, and the engine-only credit/debit
// path used during option settlement, which changes Reserve without touching
// TotalShares and thereby moves the per-share value. The invariant
// sum(share balances) == TotalShares holds at all times.
//
// Locked tracks the slice of Reserve pledged to active options. It grows by
// the option amount at creation and shrinks by the same amount on exercise
// or unlock, so Locked <= Reserve always and only Reserve − Locked is
// withdrawable.
type Pool struct {
	ID          uuid.UUID       `json:"id"           db:"id"`
	MarketID    uuid.UUID       `json:"market_id"    db:"market_id"`
	Asset       string          `json:"asset"        db:"asset"`
	TotalShares decimal.Decimal `json:"total_shares" db:"total_shares"`
	Reserve     decimal.Decimal `json:"reserve"      db:"reserve"`
	Locked      decimal.Decimal `json:"locked"       db:"locked"`
	CreatedAt   time.Time       `json:"created_at"   db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"   db:"updated_at"`
}

// Available returns the reserve not pledged to active options.
func (p *Pool) Available() decimal.Decimal {
	return p.Reserve.Sub(p.Locked)
}

// ShareBalance is one liquidity provider's stake in a pool.
type ShareBalance struct {
	PoolID    uuid.UUID       `json:"pool_id"    db:"pool_id"`
	AccountID uuid.UUID       `json:"account_id" db:"account_id"`
	Shares    decimal.Decimal `json:"shares"     db:"shares"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// ──────────────────────────────────────────────────────────────────────────────
// Share math
// ──────────────────────────────────────────────────────────────────────────────

// Share amounts are whole numbers; proportional math runs on big.Int with
// floor division so no caller can ever round value in their own favour.

// MintedShares computes the shares minted for depositing amount into a pool
// with the given total share supply and reserve. The first deposit into an
// empty pool is scaled by bootstrapMultiplier to preserve precision for all
// later proportional mints.
//
//	empty pool: amount × bootstrapMultiplier
//	otherwise:  ⌊amount × totalShares / reserve⌋
func MintedShares(amount, totalShares, reserve decimal.Decimal, bootstrapMultiplier int64) decimal.Decimal {
	if totalShares.IsZero() {
		return amount.Mul(decimal.NewFromInt(bootstrapMultiplier))
	}
	return mulDivFloor(amount, totalShares, reserve)
}

// BurnedShares computes the shares burned to withdraw amount, by the same
// proportional formula applied inversely: ⌊amount × totalShares / reserve⌋.
func BurnedShares(amount, totalShares, reserve decimal.Decimal) decimal.Decimal {
	if reserve.IsZero() {
		return decimal.Zero
	}
	return mulDivFloor(amount, totalShares, reserve)
}

// CanWithdraw validates a withdrawal of amount by the holder of shares.
// It returns the shares to burn, or an error from the pool taxonomy. Only
// the unlocked slice of the reserve is withdrawable; shares still burn
// against the full reserve since locked collateral keeps its share value.
func (p *Pool) CanWithdraw(amount, holderShares decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidAmount
	}
	if amount.GreaterThan(p.Available()) {
		return decimal.Zero, ErrInsufficientFunds
	}
	burned := BurnedShares(amount, p.TotalShares, p.Reserve)
	if burned.GreaterThan(holderShares) {
		return decimal.Zero, ErrInsufficientShares
	}
	return burned, nil
}

// mulDivFloor computes ⌊a × b / c⌋ exactly over big integers. Inputs are
// expected to be whole-number decimals; fractional digits are truncated
// before the multiplication.
func mulDivFloor(a, b, c decimal.Decimal) decimal.Decimal {
	num := new(big.Int).Mul(a.BigInt(), b.BigInt())
	num.Quo(num, c.BigInt())
	return decimal.NewFromBigInt(num, 0)
}

// ──────────────────────────────────────────────────────────────────────────────
// PoolSummary — read model for list endpoints and the backoffice
// ──────────────────────────────────────────────────────────────────────────────

// PoolSummary is a derived, read-only view of a Pool.
type PoolSummary struct {
	ID          uuid.UUID       `json:"id"`
	MarketID    uuid.UUID       `json:"market_id"`
	Asset       string          `json:"asset"`
	TotalShares decimal.Decimal `json:"total_shares"`
	Reserve     decimal.Decimal `json:"reserve"`
	Locked      decimal.Decimal `json:"locked"`
	Available   decimal.Decimal `json:"available"`
}

// ToSummary builds a PoolSummary from the pool.
func (p *Pool) ToSummary() PoolSummary {
	return PoolSummary{
		ID:          p.ID,
		MarketID:    p.MarketID,
		Asset:       p.Asset,
		TotalShares: p.TotalShares,
		Reserve:     p.Reserve,
		Locked:      p.Locked,
		Available:   p.Available(),
	}
}
