// Package domain defines the core business entities and types for the pooled
// options market: liquidity pools and their shares, cash-settled options,
// markets (asset pairs), and the lifecycle event records consumed by the
// indexer.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Types & constants
// ──────────────────────────────────────────────────────────────────────────────

// OptionType distinguishes calls from puts.
type OptionType string

const (
	OptionCall OptionType = "CALL"
	OptionPut  OptionType = "PUT"
)

// IsValid returns true if the type is a recognised option kind.
func (t OptionType) IsValid() bool {
	return t == OptionCall || t == OptionPut
}

// OptionState represents the lifecycle state of an option. Active is the only
// non-terminal state; Exercised and Expired are final.
type OptionState string

const (
	OptionActive    OptionState = "active"
	OptionExercised OptionState = "exercised"
	OptionExpired   OptionState = "expired"
)

// ──────────────────────────────────────────────────────────────────────────────
// Option
// ──────────────────────────────────────────────────────────────────────────────

// Option is a single cash-settled put or call written against a market's
// liquidity pool. Amounts are whole units of the underlying assets;
// StrikePrice is a fixed-point integer scaled by the market's price decimals.
//
// Ids are allocated per market from a monotonically increasing sequence and
// the options table is append-only: rows change state but are never removed.
type Option struct {
	ID             int64           `json:"id"              db:"id"`
	MarketID       uuid.UUID       `json:"market_id"       db:"market_id"`
	Holder         uuid.UUID       `json:"holder"          db:"holder"`
	Type           OptionType      `json:"type"            db:"type"`
	State          OptionState     `json:"state"           db:"state"`
	Amount         decimal.Decimal `json:"amount"          db:"amount"`        // pool-asset units covered
	StrikePrice    decimal.Decimal `json:"strike_price"    db:"strike_price"`  // fixed-point, price-decimals scale
	StrikeAmount   decimal.Decimal `json:"strike_amount"   db:"strike_amount"` // payment-asset units at strike
	Premium        decimal.Decimal `json:"premium"         db:"premium"`       // payment-asset units paid
	Fee            decimal.Decimal `json:"fee"             db:"fee"`           // platform fee, payment-asset units
	StartTime      time.Time       `json:"start_time"      db:"start_time"`
	ExpirationTime time.Time       `json:"expiration_time" db:"expiration_time"`
	CreatedAt      time.Time       `json:"created_at"      db:"created_at"`
	SettledAt      *time.Time      `json:"settled_at"      db:"settled_at"`
}

// IsActive returns true while the option can still be exercised or unlocked.
func (o *Option) IsActive() bool {
	return o.State == OptionActive
}

// Activated returns true once the post-creation activation delay has elapsed.
func (o *Option) Activated(now time.Time) bool {
	return !now.Before(o.StartTime)
}

// Expired returns true at or after the option's expiration time.
func (o *Option) Expired(now time.Time) bool {
	return !now.Before(o.ExpirationTime)
}

// CanExercise checks every exercise precondition in the order settlement
// requires: activation window, holder identity, expiry, then state. It
// returns nil when the caller may exercise the option at the given instant.
func (o *Option) CanExercise(caller uuid.UUID, now time.Time) error {
	if !o.Activated(now) {
		return ErrNotActivatedYet
	}
	if caller != o.Holder {
		return ErrWrongHolder
	}
	if o.Expired(now) {
		return ErrOptionExpired
	}
	if !o.IsActive() {
		return ErrOptionNotActive
	}
	return nil
}

// CanUnlock returns nil when the option may be transitioned to Expired:
// it must still be Active and its expiration time must have passed. Unlock is
// permissionless, so no caller check is made.
func (o *Option) CanUnlock(now time.Time) error {
	if !o.Expired(now) {
		return ErrOptionNotExpired
	}
	if !o.IsActive() {
		return ErrOptionNotActive
	}
	return nil
}

// ValidateUnlockBatch checks an unlockMany batch up front. The batch is
// all-or-nothing: the first option that cannot be unlocked fails the whole
// call and no option in the batch may change state.
func ValidateUnlockBatch(options []*Option, now time.Time) error {
	for _, o := range options {
		if err := o.CanUnlock(now); err != nil {
			return err
		}
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Duration bounds
// ──────────────────────────────────────────────────────────────────────────────

// ValidateDuration enforces the configured duration window for new options.
func ValidateDuration(d, min, max time.Duration) error {
	if d < min {
		return ErrDurationTooShort
	}
	if d > max {
		return ErrDurationTooLong
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Requests / responses
// ──────────────────────────────────────────────────────────────────────────────

// CreateOptionRequest carries the validated inputs for writing a new option.
// StrikePrice is nil for at-the-money creation, where the strike is taken
// from the oracle at creation time.
type CreateOptionRequest struct {
	Holder      uuid.UUID
	MarketID    uuid.UUID
	Type        OptionType
	Duration    time.Duration
	Amount      decimal.Decimal
	StrikePrice *decimal.Decimal
}

// OptionResponse is the API-safe view of an option.
type OptionResponse struct {
	ID             int64           `json:"id"`
	MarketID       uuid.UUID       `json:"market_id"`
	Holder         uuid.UUID       `json:"holder"`
	Type           OptionType      `json:"type"`
	State          OptionState     `json:"state"`
	Amount         decimal.Decimal `json:"amount"`
	StrikePrice    decimal.Decimal `json:"strike_price"`
	StrikeAmount   decimal.Decimal `json:"strike_amount"`
	Premium        decimal.Decimal `json:"premium"`
	Fee            decimal.Decimal `json:"fee"`
	StartTime      time.Time       `json:"start_time"`
	ExpirationTime time.Time       `json:"expiration_time"`
	CreatedAt      time.Time       `json:"created_at"`
	SettledAt      *time.Time      `json:"settled_at,omitempty"`
}

// ToResponse converts an Option to its API response form.
func (o *Option) ToResponse() OptionResponse {
	return OptionResponse{
		ID:             o.ID,
		MarketID:       o.MarketID,
		Holder:         o.Holder,
		Type:           o.Type,
		State:          o.State,
		Amount:         o.Amount,
		StrikePrice:    o.StrikePrice,
		StrikeAmount:   o.StrikeAmount,
		Premium:        o.Premium,
		Fee:            o.Fee,
		StartTime:      o.StartTime,
		ExpirationTime: o.ExpirationTime,
		CreatedAt:      o.CreatedAt,
		SettledAt:      o.SettledAt,
	}
}
