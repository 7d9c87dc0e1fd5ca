package service_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
)

// TestConcurrentReserveDebit simulates 50 goroutines simultaneously paying
// option settlements out of a shared pool reserve — protected by a mutex.
// This test verifies our concurrency guard pattern compiles and passes -race.
//
// In the real OptionService, the DB row-level FOR UPDATE lock on the pool
// provides this guarantee. Here we replicate the same guard with sync
// primitives so the race detector can confirm the pattern is sound.
func TestConcurrentReserveDebit(t *testing.T) {
	const workers = 50
	const payoutEach = 10 // pool units per settlement

	reserve := decimal.NewFromInt(int64(workers * payoutEach)) // exact total
	var mu sync.Mutex
	var rejected int64 // settlements declined for lack of reserve (zero expected)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			payout := decimal.NewFromInt(payoutEach)

			mu.Lock()
			defer mu.Unlock()

			if reserve.LessThan(payout) {
				atomic.AddInt64(&rejected, 1)
				return
			}
			reserve = reserve.Sub(payout)
		}()
	}
	wg.Wait()

	if rejected > 0 {
		t.Errorf("expected 0 rejected settlements, got %d", rejected)
	}
	if !reserve.IsZero() {
		t.Errorf("final reserve should be 0, got %s", reserve)
	}
}

// TestConcurrentSettlementGuard verifies that an option can leave the active
// state exactly once under concurrent access: of N goroutines racing to
// exercise the same option, one wins.
func TestConcurrentSettlementGuard(t *testing.T) {
	const workers = 20

	type optionState struct {
		mu     sync.Mutex
		active bool
	}
	opt := &optionState{active: true}

	var succeeded int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			opt.mu.Lock()
			defer opt.mu.Unlock()

			if !opt.active {
				return
			}
			opt.active = false
			atomic.AddInt64(&succeeded, 1)
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Errorf("expected exactly 1 successful settlement, got %d", succeeded)
	}
}

// TestConcurrentShareMint verifies deposits minting against the running
// totals stay proportional when serialized, the property the pool row lock
// preserves in production.
func TestConcurrentShareMint(t *testing.T) {
	const workers = 25
	const depositEach = 100

	var mu sync.Mutex
	totalShares := decimal.Zero
	reserve := decimal.Zero
	bootstrap := decimal.NewFromInt(1000)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			amount := decimal.NewFromInt(depositEach)

			mu.Lock()
			defer mu.Unlock()

			var minted decimal.Decimal
			if totalShares.IsZero() {
				minted = amount.Mul(bootstrap)
			} else {
				minted = amount.Mul(totalShares).Div(reserve)
			}
			totalShares = totalShares.Add(minted)
			reserve = reserve.Add(amount)
		}()
	}
	wg.Wait()

	// Every deposit is equal, so shares per reserve unit never drift.
	want := decimal.NewFromInt(workers * depositEach * 1000)
	if !totalShares.Equal(want) {
		t.Errorf("total shares = %s, want %s", totalShares, want)
	}
}
