package oracle_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tulipfi/options/internal/amm"
	"github.com/tulipfi/options/internal/domain"
	"github.com/tulipfi/options/internal/oracle"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// Constant reserves over a window produce the spot price as the average.
func TestAveragePrices_ConstantReserves(t *testing.T) {
	t0 := time.Unix(1_700_000_000, 0)
	p := amm.NewPair("DAI", "WETH", d(20000), d(100), t0)
	genesis := oracle.Observe(p, t0)

	t1 := t0.Add(time.Hour)
	p.Sync(t1)
	next := oracle.Observe(p, t1)

	price0, price1, err := oracle.AveragePrices(genesis, next)
	if err != nil {
		t.Fatalf("AveragePrices: %v", err)
	}
	// spot price0 = 100e8/20000 = 500000, price1 = 20000e8/100 = 2e10.
	if price0.Int64() != 500_000 {
		t.Fatalf("price0 = %s, want 500000", price0)
	}
	if price1.Int64() != 20_000_000_000 {
		t.Fatalf("price1 = %s, want 20000000000", price1)
	}
}

func TestAveragePrices_EmptyWindow(t *testing.T) {
	t0 := time.Unix(1_700_000_000, 0)
	p := amm.NewPair("DAI", "WETH", d(20000), d(100), t0)
	s := oracle.Observe(p, t0)
	if _, _, err := oracle.AveragePrices(s, s); !errors.Is(err, domain.ErrNoPriceData) {
		t.Fatalf("err = %v, want ErrNoPriceData", err)
	}
}

// A trade mid-window shifts the average toward the price that held longest.
func TestAveragePrices_WeightedByTime(t *testing.T) {
	t0 := time.Unix(1_700_000_000, 0)
	p := amm.NewPair("DAI", "WETH", d(20000), d(100), t0)
	genesis := oracle.Observe(p, t0)

	// 30 minutes at the initial price, then a swap moves it.
	_, _, err := p.Swap("DAI", d(5000), 30, t0.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("Swap: %v", err)
	}

	t1 := t0.Add(time.Hour)
	p.Sync(t1)
	next := oracle.Observe(p, t1)

	price0, _, err := oracle.AveragePrices(genesis, next)
	if err != nil {
		t.Fatalf("AveragePrices: %v", err)
	}
	// First half-window at 500000; second at the post-swap (lower) price.
	if price0.Int64() >= 500_000 {
		t.Fatalf("price0 = %s, want below the pre-swap spot", price0)
	}
	if price0.Int64() <= 0 {
		t.Fatalf("price0 = %s, want positive", price0)
	}
}

func TestConsult(t *testing.T) {
	t0 := time.Unix(1_700_000_000, 0)
	p := amm.NewPair("DAI", "WETH", d(20000), d(100), t0)
	genesis := oracle.Observe(p, t0)

	t1 := t0.Add(time.Hour)
	p.Sync(t1)
	next := oracle.Observe(p, t1)

	// 1000 DAI at price0 = 500000 (0.005 WETH per DAI) -> 5 WETH.
	out, err := oracle.Consult(p, genesis, next, "DAI", d(1000))
	if err != nil {
		t.Fatalf("Consult: %v", err)
	}
	if !out.Equal(d(5)) {
		t.Fatalf("out = %s, want 5", out)
	}

	// 2 WETH at price1 = 2e10 (200 DAI per WETH) -> 400 DAI.
	out, err = oracle.Consult(p, genesis, next, "weth", d(2))
	if err != nil {
		t.Fatalf("Consult: %v", err)
	}
	if !out.Equal(d(400)) {
		t.Fatalf("out = %s, want 400", out)
	}

	if _, err := oracle.Consult(p, genesis, next, "USDC", d(1)); !errors.Is(err, domain.ErrPairNotFound) {
		t.Fatalf("err = %v, want ErrPairNotFound", err)
	}
}

func TestPriceOf(t *testing.T) {
	t0 := time.Unix(1_700_000_000, 0)
	p := amm.NewPair("DAI", "WETH", d(20000), d(100), t0)
	genesis := oracle.Observe(p, t0)

	t1 := t0.Add(10 * time.Second)
	p.Sync(t1)
	next := oracle.Observe(p, t1)

	got, err := oracle.PriceOf(p, genesis, next, "WETH")
	if err != nil {
		t.Fatalf("PriceOf: %v", err)
	}
	if !got.Equal(d(20_000_000_000)) {
		t.Fatalf("price = %s, want 20000000000", got)
	}
}
