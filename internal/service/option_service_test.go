package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tulipfi/options/internal/domain"
)

// ── Fee collection ────────────────────────────────────────────────────────────

func TestFeeEntry_ZeroFeeProducesNoEntry(t *testing.T) {
	market := &domain.Market{PaymentAsset: "DAI"}
	holder := uuid.New()

	// Fees floor to zero on tiny writes; the ledger rejects non-positive
	// amounts, so the write must skip the transfer entirely.
	if entry := feeEntry(market, holder, decimal.Zero); entry != nil {
		t.Errorf("feeEntry(zero fee) = %+v, want nil", entry)
	}
	if entry := feeEntry(market, holder, decimal.NewFromInt(-1)); entry != nil {
		t.Errorf("feeEntry(negative fee) = %+v, want nil", entry)
	}
}

func TestFeeEntry_PositiveFee(t *testing.T) {
	market := &domain.Market{PaymentAsset: "DAI"}
	holder := uuid.New()
	fee := decimal.NewFromInt(37)

	entry := feeEntry(market, holder, fee)
	if entry == nil {
		t.Fatal("feeEntry(positive fee) = nil, want entry")
	}
	if entry.Type != domain.LedgerPlatformFee {
		t.Errorf("entry.Type = %s, want %s", entry.Type, domain.LedgerPlatformFee)
	}
	if entry.Asset != "DAI" {
		t.Errorf("entry.Asset = %s, want DAI", entry.Asset)
	}
	if entry.From != holder || entry.To != domain.TreasuryAccount {
		t.Errorf("entry routes %s → %s, want holder → treasury", entry.From, entry.To)
	}
	if !entry.Amount.Equal(fee) {
		t.Errorf("entry.Amount = %s, want %s", entry.Amount, fee)
	}
}
