package domain_test

import (
	"testing"
	"time"

	"github.com/tulipfi/options/internal/domain"
)

// ── Oracle activation gates ───────────────────────────────────────────────────

func TestMarket_OracleActivated(t *testing.T) {
	activeAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := &domain.Market{OracleActiveAt: activeAt}

	if m.OracleActivated(activeAt.Add(-time.Second)) {
		t.Error("OracleActivated before activation = true, want false")
	}
	// The activation instant itself counts.
	if !m.OracleActivated(activeAt) {
		t.Error("OracleActivated at activation instant = false, want true")
	}
	if !m.OracleActivated(activeAt.Add(time.Hour)) {
		t.Error("OracleActivated after activation = false, want true")
	}
}

func TestMarket_SnapshotUsable(t *testing.T) {
	activeAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := &domain.Market{OracleActiveAt: activeAt}

	// History left over from before activation would fold the bootstrap
	// window into the average and must never price the market.
	if m.SnapshotUsable(activeAt.Add(-time.Minute)) {
		t.Error("SnapshotUsable(pre-activation snapshot) = true, want false")
	}
	if !m.SnapshotUsable(activeAt) {
		t.Error("SnapshotUsable(snapshot at activation) = false, want true")
	}
	if !m.SnapshotUsable(activeAt.Add(time.Minute)) {
		t.Error("SnapshotUsable(post-activation snapshot) = false, want true")
	}
}

// ── Pair keys ─────────────────────────────────────────────────────────────────

func TestPairKeyFor_OrderIndependent(t *testing.T) {
	a := domain.PairKeyFor("weth", "DAI")
	b := domain.PairKeyFor("DAI", " WETH ")
	if a != b {
		t.Errorf("PairKeyFor is order dependent: %q vs %q", a, b)
	}
	if a != "DAI/WETH" {
		t.Errorf("PairKeyFor = %q, want DAI/WETH", a)
	}
}
