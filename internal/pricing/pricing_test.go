package pricing_test

import (
	"math/big"
	"testing"

	"github.com/tulipfi/options/internal/domain"
	"github.com/tulipfi/options/internal/pricing"
)

func bi(v int64) *big.Int { return big.NewInt(v) }

// scaled returns v × 1e8 as a big integer price.
func scaled(v int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(v), pricing.DefaultPriceDecimals)
}

// ── Square root ───────────────────────────────────────────────────────────────

func TestSqrt(t *testing.T) {
	cases := []struct{ in, want int64 }{
		{0, 0},
		{1, 1},
		{9, 3},
		{16, 4},
		{17, 4},      // floors
		{2419200, 1555}, // 4 weeks in seconds; 1555² = 2418025
	}
	for _, c := range cases {
		if got := pricing.Sqrt(bi(c.in)); got.Cmp(bi(c.want)) != 0 {
			t.Errorf("Sqrt(%d) = %s, want %d", c.in, got, c.want)
		}
	}

	if got := pricing.Sqrt(bi(-4)); got.Sign() != 0 {
		t.Errorf("Sqrt(-4) = %s, want 0", got)
	}
}

// ── Intrinsic value ───────────────────────────────────────────────────────────

func TestIntrinsicValue_Put(t *testing.T) {
	// In the money: strike 200, price 180, amount 3 → (200−180)×3 = 60.
	got := pricing.IntrinsicValue(scaled(200), scaled(180), bi(3), domain.OptionPut, pricing.DefaultPriceDecimals)
	if got.Cmp(bi(60)) != 0 {
		t.Errorf("put ITM intrinsic = %s, want 60", got)
	}

	// Out of the money floors at zero.
	got = pricing.IntrinsicValue(scaled(200), scaled(250), bi(3), domain.OptionPut, pricing.DefaultPriceDecimals)
	if got.Sign() != 0 {
		t.Errorf("put OTM intrinsic = %s, want 0", got)
	}
}

func TestIntrinsicValue_Call(t *testing.T) {
	// In the money: strike 200, price 220, amount 3 → (220−200)×3 = 60.
	got := pricing.IntrinsicValue(scaled(200), scaled(220), bi(3), domain.OptionCall, pricing.DefaultPriceDecimals)
	if got.Cmp(bi(60)) != 0 {
		t.Errorf("call ITM intrinsic = %s, want 60", got)
	}

	// Out of the money floors at zero.
	got = pricing.IntrinsicValue(scaled(200), scaled(180), bi(3), domain.OptionCall, pricing.DefaultPriceDecimals)
	if got.Sign() != 0 {
		t.Errorf("call OTM intrinsic = %s, want 0", got)
	}
}

// ── Time value ────────────────────────────────────────────────────────────────

func TestTimeValue(t *testing.T) {
	// 0.4 × 200e8 × √16 × (5/100) × 500 / 1e8 = 8000.
	got := pricing.TimeValue(bi(500), scaled(200), 16, 5, pricing.DefaultPriceDecimals)
	if got.Cmp(bi(8000)) != 0 {
		t.Errorf("TimeValue = %s, want 8000", got)
	}
}

func TestTimeValue_IndependentOfStrike(t *testing.T) {
	// The simplified surface prices extrinsic value from spot only; two
	// premiums at different strikes differ exactly by intrinsic value.
	amount := bi(100)
	price := scaled(200)
	const duration = 2419200 // 4 weeks
	const vol = 5

	atm := pricing.Premium(scaled(200), amount, duration, price, vol, domain.OptionPut, pricing.DefaultPriceDecimals)
	itm := pricing.Premium(scaled(210), amount, duration, price, vol, domain.OptionPut, pricing.DefaultPriceDecimals)

	intrinsic := pricing.IntrinsicValue(scaled(210), price, amount, domain.OptionPut, pricing.DefaultPriceDecimals)
	diff := new(big.Int).Sub(itm, atm)
	if diff.Cmp(intrinsic) != 0 {
		t.Errorf("premium spread = %s, want intrinsic %s", diff, intrinsic)
	}
}

// ── Premium ───────────────────────────────────────────────────────────────────

func TestPremium_Deterministic(t *testing.T) {
	args := func() *big.Int {
		return pricing.Premium(scaled(180), bi(100_000_000), 16, scaled(200), 6, domain.OptionPut, pricing.DefaultPriceDecimals)
	}
	a, b := args(), args()
	if a.Cmp(b) != 0 {
		t.Errorf("premium must be bit-identical across calls: %s vs %s", a, b)
	}

	// OTM put: zero intrinsic, premium is pure time value.
	tv := pricing.TimeValue(bi(100_000_000), scaled(200), 16, 6, pricing.DefaultPriceDecimals)
	if a.Cmp(tv) != 0 {
		t.Errorf("OTM premium = %s, want time value %s", a, tv)
	}
}

// ── Platform fee ──────────────────────────────────────────────────────────────

func TestPlatformFee(t *testing.T) {
	// 1% of 500 = 5.
	if got := pricing.PlatformFee(bi(500), 100); got.Cmp(bi(5)) != 0 {
		t.Errorf("PlatformFee(500, 100bps) = %s, want 5", got)
	}
	// Floors: 30bps of 10 = 0.03 → 0.
	if got := pricing.PlatformFee(bi(10), 30); got.Sign() != 0 {
		t.Errorf("PlatformFee(10, 30bps) = %s, want 0", got)
	}
}

// ── Strike amount ─────────────────────────────────────────────────────────────

func TestStrikeAmount(t *testing.T) {
	// 100 units at strike 1.03 → 103 payment units.
	strike := big.NewInt(103_000_000)
	if got := pricing.StrikeAmount(bi(100), strike, pricing.DefaultPriceDecimals); got.Cmp(bi(103)) != 0 {
		t.Errorf("StrikeAmount = %s, want 103", got)
	}
}
