package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tulipfi/options/internal/domain"
)

// EventRepository persists the lifecycle event feed that indexers and the
// websocket hub consume.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Insert appends an event inside the transaction that produced it, so the
// feed never shows an event whose operation rolled back.
func (r *EventRepository) Insert(ctx context.Context, tx *sqlx.Tx, e *domain.Event) error {
	query := `
		INSERT INTO events
			(type, market_id, option_id, holder, asset_in, amount_in, asset_out, amount_out,
			 amount, premium, fee, created_at)
		VALUES
			(:type, :market_id, :option_id, :holder, :asset_in, :amount_in, :asset_out, :amount_out,
			 :amount, :premium, :fee, :created_at)
		RETURNING id`
	rows, err := tx.NamedQuery(query, e)
	if err != nil {
		return fmt.Errorf("event_repo.Insert: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&e.ID); err != nil {
			return fmt.Errorf("event_repo.Insert scan: %w", err)
		}
	}
	return nil
}

// ListByMarket returns a market's events, newest first.
func (r *EventRepository) ListByMarket(ctx context.Context, marketID uuid.UUID, limit, offset int) ([]*domain.Event, error) {
	var out []*domain.Event
	err := r.db.SelectContext(ctx, &out, `
		SELECT * FROM events WHERE market_id = $1
		ORDER BY id DESC LIMIT $2 OFFSET $3`,
		marketID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("event_repo.ListByMarket: %w", err)
	}
	return out, nil
}

// ListRecent returns the newest events across all markets.
func (r *EventRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Event, error) {
	var out []*domain.Event
	err := r.db.SelectContext(ctx, &out,
		`SELECT * FROM events ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("event_repo.ListRecent: %w", err)
	}
	return out, nil
}

// ListSince returns events with id greater than afterID, oldest first, for
// indexers resuming from a checkpoint.
func (r *EventRepository) ListSince(ctx context.Context, afterID int64, limit int) ([]*domain.Event, error) {
	var out []*domain.Event
	err := r.db.SelectContext(ctx, &out,
		`SELECT * FROM events WHERE id > $1 ORDER BY id ASC LIMIT $2`, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("event_repo.ListSince: %w", err)
	}
	return out, nil
}
