// Package ws holds WebSocket message types and the Hub implementation.
// messages.go defines all message structs broadcast to connected clients.
package ws

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tulipfi/options/internal/domain"
)

// MsgType identifies the kind of WS message so clients can switch on it.
type MsgType string

const (
	MsgTypePriceUpdate MsgType = "price_update"
	MsgTypeEvent       MsgType = "event"
	MsgTypeNewMarket   MsgType = "new_market"
	MsgTypeError       MsgType = "error"
)

// ──────────────────────────────────────────────────────────────────────────────
// PriceUpdateMessage — periodic oracle price push per market.
// ──────────────────────────────────────────────────────────────────────────────

// PriceUpdateMessage carries the time-weighted price of a market's pool
// asset alongside the pool totals.
type PriceUpdateMessage struct {
	Type        MsgType         `json:"type"`
	MarketID    uuid.UUID       `json:"market_id"`
	PairKey     string          `json:"pair_key"`
	OraclePrice decimal.Decimal `json:"oracle_price"` // pool asset in payment asset, 1e8 scale
	Reserve     decimal.Decimal `json:"reserve"`
	TotalShares decimal.Decimal `json:"total_shares"`
	Timestamp   time.Time       `json:"timestamp"`
}

// ──────────────────────────────────────────────────────────────────────────────
// EventMessage — option lifecycle records pushed after commit.
// ──────────────────────────────────────────────────────────────────────────────

// EventMessage wraps a persisted lifecycle event for subscribers; indexers
// receive the same record they would read from the events feed.
type EventMessage struct {
	Type      MsgType       `json:"type"`
	Event     *domain.Event `json:"event"`
	Timestamp time.Time     `json:"timestamp"`
}

// ──────────────────────────────────────────────────────────────────────────────
// NewMarketMessage — broadcast when the factory registers a market.
// ──────────────────────────────────────────────────────────────────────────────

// NewMarketMessage carries the identity of the freshly created market.
type NewMarketMessage struct {
	Type         MsgType   `json:"type"`
	MarketID     uuid.UUID `json:"market_id"`
	PairKey      string    `json:"pair_key"`
	PoolAsset    string    `json:"pool_asset"`
	PaymentAsset string    `json:"payment_asset"`
	Timestamp    time.Time `json:"timestamp"`
}

// ──────────────────────────────────────────────────────────────────────────────
// ErrorMessage — sent to a single client on a non-fatal error.
// ──────────────────────────────────────────────────────────────────────────────

// ErrorMessage is sent directly to one client (not broadcast).
type ErrorMessage struct {
	Type    MsgType `json:"type"`
	Code    string  `json:"code"`
	Message string  `json:"message"`
}
