// Package oracle derives time-weighted average prices from the cumulative
// accumulators of a trading pair. A Snapshot freezes the accumulators at one
// instant; the average price over a window is the accumulator delta divided
// by the elapsed seconds, so a single in-window trade cannot move the
// consulted price the way a spot read could.
package oracle

import (
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tulipfi/options/internal/amm"
	"github.com/tulipfi/options/internal/domain"
)

// Snapshot is one persisted observation of a pair's accumulators. The
// genesis snapshot is written when the pair is created; later ones are
// written by the keeper on each oracle update.
type Snapshot struct {
	ID               int64           `json:"id"                db:"id"`
	PairID           uuid.UUID       `json:"pair_id"           db:"pair_id"`
	CumulativePrice0 decimal.Decimal `json:"cumulative_price0" db:"cumulative_price0"`
	CumulativePrice1 decimal.Decimal `json:"cumulative_price1" db:"cumulative_price1"`
	TakenAt          time.Time       `json:"taken_at"          db:"taken_at"`
}

// Observe captures the pair's accumulators at now. The pair must already be
// synced to now by the caller.
func Observe(p *amm.Pair, now time.Time) Snapshot {
	return Snapshot{
		PairID:           p.ID,
		CumulativePrice0: p.CumulativePrice0,
		CumulativePrice1: p.CumulativePrice1,
		TakenAt:          now,
	}
}

// AveragePrices returns the scaled average prices of asset0 and asset1 over
// the window between two snapshots. It fails with ErrNoPriceData when the
// window is empty or inverted.
func AveragePrices(prev, curr Snapshot) (price0, price1 *big.Int, err error) {
	elapsed := curr.TakenAt.Unix() - prev.TakenAt.Unix()
	if elapsed <= 0 {
		return nil, nil, domain.ErrNoPriceData
	}
	e := big.NewInt(elapsed)

	price0 = new(big.Int).Sub(curr.CumulativePrice0.BigInt(), prev.CumulativePrice0.BigInt())
	price0.Quo(price0, e)

	price1 = new(big.Int).Sub(curr.CumulativePrice1.BigInt(), prev.CumulativePrice1.BigInt())
	price1.Quo(price1, e)

	return price0, price1, nil
}

// Consult quotes how much of the counter asset amountIn of asset is worth at
// the window's average price. asset selects which side of the pair the input
// is on.
func Consult(p *amm.Pair, prev, curr Snapshot, asset string, amountIn decimal.Decimal) (decimal.Decimal, error) {
	price0, price1, err := AveragePrices(prev, curr)
	if err != nil {
		return decimal.Zero, err
	}

	var price *big.Int
	switch domain.NormalizeAsset(asset) {
	case p.Asset0:
		price = price0
	case p.Asset1:
		price = price1
	default:
		return decimal.Zero, domain.ErrPairNotFound
	}

	out := new(big.Int).Mul(amountIn.BigInt(), price)
	out.Quo(out, amm.PriceScale)
	return decimal.NewFromBigInt(out, 0), nil
}

// PriceOf returns the scaled average price of asset in its counter asset.
func PriceOf(p *amm.Pair, prev, curr Snapshot, asset string) (decimal.Decimal, error) {
	price0, price1, err := AveragePrices(prev, curr)
	if err != nil {
		return decimal.Zero, err
	}
	switch domain.NormalizeAsset(asset) {
	case p.Asset0:
		return decimal.NewFromBigInt(price0, 0), nil
	case p.Asset1:
		return decimal.NewFromBigInt(price1, 0), nil
	default:
		return decimal.Zero, domain.ErrPairNotFound
	}
}
