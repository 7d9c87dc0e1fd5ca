package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Lifecycle events
// ──────────────────────────────────────────────────────────────────────────────

// EventType enumerates the lifecycle records the engine emits. Field names on
// the Event struct are part of the indexer contract and must stay stable.
type EventType string

const (
	EventMarketCreated   EventType = "market.created"
	EventOptionCreated   EventType = "option.created"
	EventOptionExercised EventType = "option.exercised"
	EventOptionExpired   EventType = "option.expired"
	EventExchanged       EventType = "option.exchanged"
)

// Event is one immutable lifecycle record, written inside the same
// transaction as the state transition it describes and broadcast to
// subscribers after commit. It maps to the events table.
type Event struct {
	ID       int64     `json:"id"        db:"id"`
	Type     EventType `json:"type"      db:"type"`
	MarketID uuid.UUID `json:"market_id" db:"market_id"`
	// OptionID and Holder are nil for market-level events.
	OptionID *int64     `json:"option_id,omitempty" db:"option_id"`
	Holder   *uuid.UUID `json:"holder,omitempty"    db:"holder"`
	// Exchange details; populated only for option.exchanged records.
	AssetIn   *string          `json:"asset_in,omitempty"   db:"asset_in"`
	AmountIn  *decimal.Decimal `json:"amount_in,omitempty"  db:"amount_in"`
	AssetOut  *string          `json:"asset_out,omitempty"  db:"asset_out"`
	AmountOut *decimal.Decimal `json:"amount_out,omitempty" db:"amount_out"`
	// Settlement amounts; populated for created/exercised records.
	Amount  *decimal.Decimal `json:"amount,omitempty"  db:"amount"`
	Premium *decimal.Decimal `json:"premium,omitempty" db:"premium"`
	Fee     *decimal.Decimal `json:"fee,omitempty"     db:"fee"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewOptionEvent builds a lifecycle record bound to an option.
func NewOptionEvent(typ EventType, marketID uuid.UUID, optionID int64, holder uuid.UUID) *Event {
	id := optionID
	h := holder
	return &Event{
		Type:      typ,
		MarketID:  marketID,
		OptionID:  &id,
		Holder:    &h,
		CreatedAt: time.Now().UTC(),
	}
}

// WithExchange attaches swap details to an event.
func (e *Event) WithExchange(assetIn string, amountIn decimal.Decimal, assetOut string, amountOut decimal.Decimal) *Event {
	e.AssetIn = &assetIn
	e.AmountIn = &amountIn
	e.AssetOut = &assetOut
	e.AmountOut = &amountOut
	return e
}

// WithSettlement attaches amount/premium/fee details to an event.
func (e *Event) WithSettlement(amount, premium, fee decimal.Decimal) *Event {
	e.Amount = &amount
	e.Premium = &premium
	e.Fee = &fee
	return e
}
