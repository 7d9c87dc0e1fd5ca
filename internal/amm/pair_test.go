package amm_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tulipfi/options/internal/amm"
	"github.com/tulipfi/options/internal/domain"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestNewPair_CanonicalOrder(t *testing.T) {
	now := time.Now()
	p := amm.NewPair("weth", "DAI", d(100), d(20000), now)
	if p.Asset0 != "DAI" || p.Asset1 != "WETH" {
		t.Fatalf("assets not canonical: %s / %s", p.Asset0, p.Asset1)
	}
	if !p.Reserve0.Equal(d(20000)) || !p.Reserve1.Equal(d(100)) {
		t.Fatalf("reserves did not follow assets: %s / %s", p.Reserve0, p.Reserve1)
	}
	if p.PairKey != "DAI/WETH" {
		t.Fatalf("pair key = %q", p.PairKey)
	}
}

func TestGetAmountOut(t *testing.T) {
	// 9970*1000*2000 / (1000*10000 + 9970*1000) = 19940000000/19970000 = 998
	out := amm.GetAmountOut(d(1000), d(1000), d(2000), 30)
	if !out.Equal(d(998)) {
		t.Fatalf("out = %s, want 998", out)
	}

	// No fee: 1000*2000/(1000*10000+1000*10000) floor = 1000.
	out = amm.GetAmountOut(d(1000), d(1000), d(2000), 0)
	if !out.Equal(d(1000)) {
		t.Fatalf("zero-fee out = %s, want 1000", out)
	}

	if !amm.GetAmountOut(d(0), d(1000), d(2000), 30).IsZero() {
		t.Fatal("zero input must produce zero output")
	}
	if !amm.GetAmountOut(d(10), d(0), d(2000), 30).IsZero() {
		t.Fatal("empty reserve must produce zero output")
	}
}

func TestPair_Swap_UpdatesReserves(t *testing.T) {
	now := time.Now()
	p := amm.NewPair("DAI", "WETH", d(20000), d(20000), now)

	assetOut, out, err := p.Swap("DAI", d(1000), 30, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if assetOut != "WETH" {
		t.Fatalf("asset out = %s", assetOut)
	}
	// 9970000*20000 / (20000*10000 + 9970000) = 199400000000/209970000 = 949
	if !out.Equal(d(949)) {
		t.Fatalf("out = %s, want 949", out)
	}
	if !p.Reserve0.Equal(d(21000)) {
		t.Fatalf("reserve0 = %s, want 21000", p.Reserve0)
	}
	if !p.Reserve1.Equal(d(19051)) {
		t.Fatalf("reserve1 = %s, want 19051", p.Reserve1)
	}

	// Product never decreases across a fee-bearing swap.
	if p.Reserve0.Mul(p.Reserve1).LessThan(d(20000).Mul(d(20000))) {
		t.Fatal("constant product invariant violated")
	}
}

func TestPair_Swap_UnknownAsset(t *testing.T) {
	now := time.Now()
	p := amm.NewPair("DAI", "WETH", d(20000), d(100), now)
	if _, _, err := p.Swap("USDC", d(10), 30, now); err != domain.ErrPairNotFound {
		t.Fatalf("err = %v, want ErrPairNotFound", err)
	}
	if _, _, err := p.Swap("DAI", d(0), 30, now); err != domain.ErrInvalidAmount {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}
}

func TestGetAmountIn_RoundTripsThroughGetAmountOut(t *testing.T) {
	rIn, rOut := d(20000), d(20000)
	in, err := amm.GetAmountIn(d(99), rIn, rOut, 30)
	if err != nil {
		t.Fatalf("GetAmountIn: %v", err)
	}
	// Feeding the computed input back must produce at least the wanted output.
	if out := amm.GetAmountOut(in, rIn, rOut, 30); out.LessThan(d(99)) {
		t.Fatalf("out = %s for in = %s, want >= 99", out, in)
	}

	if _, err := amm.GetAmountIn(d(20000), rIn, rOut, 30); err != domain.ErrInsufficientFunds {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if _, err := amm.GetAmountIn(d(0), rIn, rOut, 30); err != domain.ErrInvalidAmount {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}
}

func TestPair_SwapForExact(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	p := amm.NewPair("DAI", "WETH", d(20000), d(100), now)

	in, err := p.SwapForExact("DAI", d(5), 30, now.Add(time.Second))
	if err != nil {
		t.Fatalf("SwapForExact: %v", err)
	}
	if in.LessThanOrEqual(d(0)) {
		t.Fatalf("in = %s, want positive", in)
	}
	if !p.Reserve1.Equal(d(95)) {
		t.Fatalf("reserve1 = %s, want 95", p.Reserve1)
	}
	if !p.Reserve0.Equal(d(20000).Add(in)) {
		t.Fatalf("reserve0 = %s", p.Reserve0)
	}
}

func TestPair_Sync_Accumulates(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	// price0 = 100e8/20000 = 500000; price1 = 20000e8/100 = 2e10.
	p := amm.NewPair("DAI", "WETH", d(20000), d(100), now)

	p.Sync(now.Add(10 * time.Second))
	if !p.CumulativePrice0.Equal(d(5_000_000)) {
		t.Fatalf("cum0 = %s, want 5000000", p.CumulativePrice0)
	}
	if !p.CumulativePrice1.Equal(d(200_000_000_000)) {
		t.Fatalf("cum1 = %s, want 200000000000", p.CumulativePrice1)
	}

	// Re-syncing at the same instant changes nothing.
	before := p.CumulativePrice0
	p.Sync(now.Add(10 * time.Second))
	if !p.CumulativePrice0.Equal(before) {
		t.Fatal("same-instant sync must be a no-op")
	}
}

func TestPair_Swap_SyncsBeforeReserveChange(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	p := amm.NewPair("DAI", "WETH", d(20000), d(100), now)

	_, _, err := p.Swap("DAI", d(5000), 30, now.Add(10*time.Second))
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}
	// The interval before the swap accumulated at the pre-swap price.
	if !p.CumulativePrice0.Equal(d(5_000_000)) {
		t.Fatalf("cum0 = %s, want pre-swap price accumulated", p.CumulativePrice0)
	}
	if !p.LastSyncAt.Equal(now.Add(10 * time.Second)) {
		t.Fatalf("last sync = %s", p.LastSyncAt)
	}
}
