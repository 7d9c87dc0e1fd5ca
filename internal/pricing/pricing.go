// Package pricing implements the option premium model as pure fixed-point
// arithmetic. Every function is side-effect-free and deterministic: all math
// runs on big integers with floor division only, so identical inputs always
// produce bit-identical outputs. Floating point is never used — these values
// settle real balances.
//
// Prices are integers scaled by the market's price decimals (10^8 by
// default); amounts are whole units of the underlying asset.
package pricing

import (
	"math/big"

	"github.com/tulipfi/options/internal/domain"
)

// DefaultPriceDecimals is the standard fixed-point scale for prices.
var DefaultPriceDecimals = big.NewInt(1e8)

// Sqrt returns ⌊√x⌋. Negative inputs return zero rather than panicking; no
// caller has a meaningful negative radicand.
func Sqrt(x *big.Int) *big.Int {
	if x.Sign() <= 0 {
		return new(big.Int)
	}
	return new(big.Int).Sqrt(x)
}

// IntrinsicValue returns the payout, in payment-asset units, the option would
// have if exercised at currentPrice, floored at zero.
//
//	put:  max(0, strike − price) × amount / priceDecimals
//	call: max(0, price − strike) × amount / priceDecimals
func IntrinsicValue(strike, currentPrice, amount *big.Int, typ domain.OptionType, priceDecimals *big.Int) *big.Int {
	diff := new(big.Int)
	switch typ {
	case domain.OptionPut:
		diff.Sub(strike, currentPrice)
	case domain.OptionCall:
		diff.Sub(currentPrice, strike)
	}
	if diff.Sign() <= 0 {
		return new(big.Int)
	}
	diff.Mul(diff, amount)
	return diff.Quo(diff, priceDecimals)
}

// TimeValue returns the extrinsic portion of the premium:
//
//	0.4 × price × √durationSec × (volatilityPct / 100) × amount / priceDecimals
//
// computed entirely in integers as
//
//	⌊4 × price × ⌊√durationSec⌋ × volatilityPct × amount / (1000 × priceDecimals)⌋
//
// The model is a flat at-the-money volatility approximation: by design it
// does not depend on the strike.
func TimeValue(amount, currentPrice *big.Int, durationSec, volatilityPct int64, priceDecimals *big.Int) *big.Int {
	v := new(big.Int).Mul(big.NewInt(4), currentPrice)
	v.Mul(v, Sqrt(big.NewInt(durationSec)))
	v.Mul(v, big.NewInt(volatilityPct))
	v.Mul(v, amount)
	den := new(big.Int).Mul(big.NewInt(1000), priceDecimals)
	return v.Quo(v, den)
}

// Premium returns the full option premium in payment-asset units:
// intrinsic value plus time value.
func Premium(strike, amount *big.Int, durationSec int64, currentPrice *big.Int, volatilityPct int64, typ domain.OptionType, priceDecimals *big.Int) *big.Int {
	intrinsic := IntrinsicValue(strike, currentPrice, amount, typ, priceDecimals)
	extrinsic := TimeValue(amount, currentPrice, durationSec, volatilityPct, priceDecimals)
	return intrinsic.Add(intrinsic, extrinsic)
}

// PlatformFee returns ⌊amount × feeBps / 10000⌋.
func PlatformFee(amount *big.Int, feeBps int64) *big.Int {
	fee := new(big.Int).Mul(amount, big.NewInt(feeBps))
	return fee.Quo(fee, big.NewInt(10000))
}

// StrikeAmount converts an option amount into payment-asset units at the
// strike: ⌊amount × strike / priceDecimals⌋.
func StrikeAmount(amount, strike, priceDecimals *big.Int) *big.Int {
	v := new(big.Int).Mul(amount, strike)
	return v.Quo(v, priceDecimals)
}
