// Package amm implements the constant-product trading pair the engine swaps
// against and the oracle reads. Reserves and the time-weighted cumulative
// price accumulators are persisted per pair; all math is integer fixed-point
// with floor division so swap outputs and accumulator values are
// deterministic.
package amm

import (
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tulipfi/options/internal/domain"
)

// PriceScale is the fixed-point scale of accumulated prices (matches the
// pricing engine's price decimals).
var PriceScale = big.NewInt(1e8)

// Pair is one constant-product pool of two assets. Asset0/Asset1 are stored
// in canonical (sorted) order, the same order used by the market pair key.
//
// CumulativePrice0 accumulates price0 × elapsedSeconds where price0 is the
// marginal price of Asset0 in Asset1 at PriceScale; CumulativePrice1 is the
// mirror. Accumulators only ever grow; the TWAP between two instants is the
// accumulator delta divided by the elapsed seconds.
type Pair struct {
	ID               uuid.UUID       `json:"id"                db:"id"`
	PairKey          string          `json:"pair_key"          db:"pair_key"`
	Asset0           string          `json:"asset0"            db:"asset0"`
	Asset1           string          `json:"asset1"            db:"asset1"`
	Reserve0         decimal.Decimal `json:"reserve0"          db:"reserve0"`
	Reserve1         decimal.Decimal `json:"reserve1"          db:"reserve1"`
	CumulativePrice0 decimal.Decimal `json:"cumulative_price0" db:"cumulative_price0"`
	CumulativePrice1 decimal.Decimal `json:"cumulative_price1" db:"cumulative_price1"`
	LastSyncAt       time.Time       `json:"last_sync_at"      db:"last_sync_at"`
	CreatedAt        time.Time       `json:"created_at"        db:"created_at"`
}

// NewPair seeds a pair with initial reserves at the given instant.
func NewPair(assetA, assetB string, reserveA, reserveB decimal.Decimal, now time.Time) *Pair {
	a0, a1 := domain.NormalizeAsset(assetA), domain.NormalizeAsset(assetB)
	r0, r1 := reserveA, reserveB
	if a0 > a1 {
		a0, a1 = a1, a0
		r0, r1 = r1, r0
	}
	return &Pair{
		ID:               uuid.New(),
		PairKey:          domain.PairKeyFor(a0, a1),
		Asset0:           a0,
		Asset1:           a1,
		Reserve0:         r0,
		Reserve1:         r1,
		CumulativePrice0: decimal.Zero,
		CumulativePrice1: decimal.Zero,
		LastSyncAt:       now,
		CreatedAt:        now,
	}
}

// spotPrice returns ⌊reserveOut × PriceScale / reserveIn⌋.
func spotPrice(reserveIn, reserveOut decimal.Decimal) *big.Int {
	if reserveIn.IsZero() {
		return new(big.Int)
	}
	p := new(big.Int).Mul(reserveOut.BigInt(), PriceScale)
	return p.Quo(p, reserveIn.BigInt())
}

// Sync advances the cumulative price accumulators to now at the current
// reserves. It must be called before any reserve mutation so the accumulated
// interval reflects the reserves that actually held during it. Calling Sync
// twice within the same second is a no-op.
func (p *Pair) Sync(now time.Time) {
	elapsed := now.Unix() - p.LastSyncAt.Unix()
	if elapsed <= 0 {
		return
	}
	e := big.NewInt(elapsed)

	cum0 := p.CumulativePrice0.BigInt()
	cum0.Add(cum0, new(big.Int).Mul(spotPrice(p.Reserve0, p.Reserve1), e))
	p.CumulativePrice0 = decimal.NewFromBigInt(cum0, 0)

	cum1 := p.CumulativePrice1.BigInt()
	cum1.Add(cum1, new(big.Int).Mul(spotPrice(p.Reserve1, p.Reserve0), e))
	p.CumulativePrice1 = decimal.NewFromBigInt(cum1, 0)

	p.LastSyncAt = now
}

// GetAmountOut computes the constant-product swap output for an exact input,
// with the swap fee (in basis points) taken from the input side:
//
//	out = ⌊in·(10000−fee)·reserveOut / (reserveIn·10000 + in·(10000−fee))⌋
func GetAmountOut(amountIn, reserveIn, reserveOut decimal.Decimal, feeBps int64) decimal.Decimal {
	if amountIn.LessThanOrEqual(decimal.Zero) || reserveIn.IsZero() || reserveOut.IsZero() {
		return decimal.Zero
	}
	inWithFee := new(big.Int).Mul(amountIn.BigInt(), big.NewInt(10000-feeBps))
	num := new(big.Int).Mul(inWithFee, reserveOut.BigInt())
	den := new(big.Int).Mul(reserveIn.BigInt(), big.NewInt(10000))
	den.Add(den, inWithFee)
	return decimal.NewFromBigInt(num.Quo(num, den), 0)
}

// GetAmountIn computes the smallest input that yields at least amountOut,
// the inverse of GetAmountOut:
//
//	in = ⌊reserveIn·out·10000 / ((reserveOut−out)·(10000−fee))⌋ + 1
func GetAmountIn(amountOut, reserveIn, reserveOut decimal.Decimal, feeBps int64) (decimal.Decimal, error) {
	if amountOut.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, domain.ErrInvalidAmount
	}
	if amountOut.GreaterThanOrEqual(reserveOut) {
		return decimal.Zero, domain.ErrInsufficientFunds
	}
	num := new(big.Int).Mul(reserveIn.BigInt(), amountOut.BigInt())
	num.Mul(num, big.NewInt(10000))
	den := new(big.Int).Sub(reserveOut.BigInt(), amountOut.BigInt())
	den.Mul(den, big.NewInt(10000-feeBps))
	num.Quo(num, den)
	num.Add(num, big.NewInt(1))
	return decimal.NewFromBigInt(num, 0), nil
}

// SwapForExact trades just enough of assetIn to take exactly amountOut of
// the other asset out of the pair, mutating reserves. Returns the input
// consumed.
func (p *Pair) SwapForExact(assetIn string, amountOut decimal.Decimal, feeBps int64, now time.Time) (decimal.Decimal, error) {
	p.Sync(now)

	var in decimal.Decimal
	var err error
	switch domain.NormalizeAsset(assetIn) {
	case p.Asset0:
		in, err = GetAmountIn(amountOut, p.Reserve0, p.Reserve1, feeBps)
		if err != nil {
			return decimal.Zero, err
		}
		p.Reserve0 = p.Reserve0.Add(in)
		p.Reserve1 = p.Reserve1.Sub(amountOut)
	case p.Asset1:
		in, err = GetAmountIn(amountOut, p.Reserve1, p.Reserve0, feeBps)
		if err != nil {
			return decimal.Zero, err
		}
		p.Reserve1 = p.Reserve1.Add(in)
		p.Reserve0 = p.Reserve0.Sub(amountOut)
	default:
		return decimal.Zero, domain.ErrPairNotFound
	}
	return in, nil
}

// Swap trades amountIn of assetIn against the pair at now, mutating reserves
// and returning the output asset and amount. The accumulators are synced to
// now first so the pre-swap price is what the oracle observes for the
// elapsed interval.
func (p *Pair) Swap(assetIn string, amountIn decimal.Decimal, feeBps int64, now time.Time) (string, decimal.Decimal, error) {
	if amountIn.LessThanOrEqual(decimal.Zero) {
		return "", decimal.Zero, domain.ErrInvalidAmount
	}

	p.Sync(now)

	switch domain.NormalizeAsset(assetIn) {
	case p.Asset0:
		out := GetAmountOut(amountIn, p.Reserve0, p.Reserve1, feeBps)
		if out.IsZero() || out.GreaterThanOrEqual(p.Reserve1) {
			return "", decimal.Zero, domain.ErrInsufficientFunds
		}
		p.Reserve0 = p.Reserve0.Add(amountIn)
		p.Reserve1 = p.Reserve1.Sub(out)
		return p.Asset1, out, nil
	case p.Asset1:
		out := GetAmountOut(amountIn, p.Reserve1, p.Reserve0, feeBps)
		if out.IsZero() || out.GreaterThanOrEqual(p.Reserve0) {
			return "", decimal.Zero, domain.ErrInsufficientFunds
		}
		p.Reserve1 = p.Reserve1.Add(amountIn)
		p.Reserve0 = p.Reserve0.Sub(out)
		return p.Asset0, out, nil
	default:
		return "", decimal.Zero, domain.ErrPairNotFound
	}
}

// Holds reports whether the pair trades the given asset.
func (p *Pair) Holds(asset string) bool {
	a := domain.NormalizeAsset(asset)
	return a == p.Asset0 || a == p.Asset1
}
