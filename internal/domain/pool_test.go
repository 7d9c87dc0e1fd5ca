package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/tulipfi/options/internal/domain"
)

const bootstrapMultiplier = 1000

// ── Bootstrap deposit ─────────────────────────────────────────────────────────

func TestMintedShares_Bootstrap(t *testing.T) {
	amount := decimal.NewFromInt(10)
	minted := domain.MintedShares(amount, decimal.Zero, decimal.Zero, bootstrapMultiplier)

	want := decimal.NewFromInt(10 * bootstrapMultiplier)
	if !minted.Equal(want) {
		t.Errorf("MintedShares(empty pool) = %s, want %s", minted, want)
	}
}

// ── Proportional mint ─────────────────────────────────────────────────────────

func TestMintedShares_Proportional(t *testing.T) {
	// Pool: 10 units deposited at bootstrap → 10 000 shares.
	totalShares := decimal.NewFromInt(10000)
	reserve := decimal.NewFromInt(10)

	minted := domain.MintedShares(decimal.NewFromInt(10), totalShares, reserve, bootstrapMultiplier)
	want := decimal.NewFromInt(10000) // 10 × 10000 / 10
	if !minted.Equal(want) {
		t.Errorf("MintedShares = %s, want %s", minted, want)
	}
}

func TestMintedShares_FloorsDown(t *testing.T) {
	// 3 × 10000 / 7 = 4285.71… → must floor to 4285, never round up.
	minted := domain.MintedShares(
		decimal.NewFromInt(3),
		decimal.NewFromInt(10000),
		decimal.NewFromInt(7),
		bootstrapMultiplier,
	)
	want := decimal.NewFromInt(4285)
	if !minted.Equal(want) {
		t.Errorf("MintedShares = %s, want floored %s", minted, want)
	}
}

// ── Deposit / withdraw round trip ─────────────────────────────────────────────

func TestShareMath_RoundTrip(t *testing.T) {
	// Existing pool with prior depositors and accrued trading profit, so the
	// share price is no longer 1/multiplier.
	totalShares := decimal.NewFromInt(50000)
	reserve := decimal.NewFromInt(73)

	deposit := decimal.NewFromInt(20)
	minted := domain.MintedShares(deposit, totalShares, reserve, bootstrapMultiplier)

	totalAfter := totalShares.Add(minted)
	reserveAfter := reserve.Add(deposit)

	burned := domain.BurnedShares(deposit, totalAfter, reserveAfter)

	// Within floor-rounding error the burn cancels the mint.
	diff := minted.Sub(burned).Abs()
	if diff.GreaterThan(decimal.NewFromInt(1)) {
		t.Errorf("round trip drift: minted %s, burned %s (diff %s)", minted, burned, diff)
	}
	if burned.GreaterThan(minted) {
		t.Errorf("burn %s must never exceed mint %s for the same amount", burned, minted)
	}
}

// ── Proportionality invariant ─────────────────────────────────────────────────

func TestShareMath_Proportionality(t *testing.T) {
	// Two providers deposit different amounts with no trading in between;
	// their share of supply must track their share of reserve within one unit.
	type provider struct{ deposit int64 }
	providers := []provider{{40}, {160}}

	totalShares := decimal.Zero
	reserve := decimal.Zero
	shares := make([]decimal.Decimal, len(providers))

	for i, p := range providers {
		amt := decimal.NewFromInt(p.deposit)
		minted := domain.MintedShares(amt, totalShares, reserve, bootstrapMultiplier)
		shares[i] = minted
		totalShares = totalShares.Add(minted)
		reserve = reserve.Add(amt)
	}

	// Provider 1 deposited 4× provider 0's amount.
	ratio := shares[1].Div(shares[0])
	want := decimal.NewFromInt(4)
	if ratio.Sub(want).Abs().GreaterThan(decimal.NewFromFloat(0.001)) {
		t.Errorf("share ratio = %s, want ~%s", ratio, want)
	}
}

// ── Withdrawal guards ─────────────────────────────────────────────────────────

func TestPool_CanWithdraw(t *testing.T) {
	pool := &domain.Pool{
		TotalShares: decimal.NewFromInt(10000),
		Reserve:     decimal.NewFromInt(10),
	}

	// Zero amount is always rejected.
	if _, err := pool.CanWithdraw(decimal.Zero, decimal.NewFromInt(10000)); err != domain.ErrInvalidAmount {
		t.Errorf("CanWithdraw(0) = %v, want ErrInvalidAmount", err)
	}

	// More than the reserve can never be withdrawn.
	if _, err := pool.CanWithdraw(decimal.NewFromInt(11), decimal.NewFromInt(10000)); err != domain.ErrInsufficientFunds {
		t.Errorf("CanWithdraw(>reserve) = %v, want ErrInsufficientFunds", err)
	}

	// A holder without enough shares is rejected.
	if _, err := pool.CanWithdraw(decimal.NewFromInt(5), decimal.NewFromInt(100)); err != domain.ErrInsufficientShares {
		t.Errorf("CanWithdraw(too few shares) = %v, want ErrInsufficientShares", err)
	}

	// The full holder can withdraw their proportional amount.
	burned, err := pool.CanWithdraw(decimal.NewFromInt(5), decimal.NewFromInt(10000))
	if err != nil {
		t.Fatalf("CanWithdraw: %v", err)
	}
	want := decimal.NewFromInt(5000)
	if !burned.Equal(want) {
		t.Errorf("burned = %s, want %s", burned, want)
	}
}

// ── Pledged collateral ────────────────────────────────────────────────────────

func TestPool_CanWithdraw_RespectsLocked(t *testing.T) {
	// 10 in reserve, 6 pledged to active options: only 4 are withdrawable
	// even by a holder owning the entire share supply.
	pool := &domain.Pool{
		TotalShares: decimal.NewFromInt(10000),
		Reserve:     decimal.NewFromInt(10),
		Locked:      decimal.NewFromInt(6),
	}

	if !pool.Available().Equal(decimal.NewFromInt(4)) {
		t.Fatalf("Available() = %s, want 4", pool.Available())
	}

	if _, err := pool.CanWithdraw(decimal.NewFromInt(5), decimal.NewFromInt(10000)); err != domain.ErrInsufficientFunds {
		t.Errorf("CanWithdraw(>available) = %v, want ErrInsufficientFunds", err)
	}

	// Up to the unlocked portion still goes through, burning shares against
	// the full reserve.
	burned, err := pool.CanWithdraw(decimal.NewFromInt(4), decimal.NewFromInt(10000))
	if err != nil {
		t.Fatalf("CanWithdraw(available): %v", err)
	}
	if !burned.Equal(decimal.NewFromInt(4000)) {
		t.Errorf("burned = %s, want 4000", burned)
	}
}

func TestPool_CanWithdraw_FullyLocked(t *testing.T) {
	// Every reserve unit pledged: nothing is withdrawable at any size.
	pool := &domain.Pool{
		TotalShares: decimal.NewFromInt(100000),
		Reserve:     decimal.NewFromInt(100),
		Locked:      decimal.NewFromInt(100),
	}
	if _, err := pool.CanWithdraw(decimal.NewFromInt(1), decimal.NewFromInt(100000)); err != domain.ErrInsufficientFunds {
		t.Errorf("CanWithdraw on fully locked pool = %v, want ErrInsufficientFunds", err)
	}
}
