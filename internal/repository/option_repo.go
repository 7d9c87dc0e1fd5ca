package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tulipfi/options/internal/domain"
)

// OptionRepository handles all database operations for options. Option ids
// are sequential per market, assigned inside the creation transaction.
type OptionRepository struct {
	db *sqlx.DB
}

// NewOptionRepository creates a new OptionRepository.
func NewOptionRepository(db *sqlx.DB) *OptionRepository {
	return &OptionRepository{db: db}
}

// Create inserts a new option row inside a transaction, assigning the next
// id for its market. The market row must already be locked by the caller so
// concurrent creations cannot race on the sequence.
func (r *OptionRepository) Create(ctx context.Context, tx *sqlx.Tx, o *domain.Option) error {
	err := tx.GetContext(ctx, &o.ID,
		`SELECT COALESCE(MAX(id), 0) + 1 FROM options WHERE market_id = $1`,
		o.MarketID)
	if err != nil {
		return fmt.Errorf("option_repo.Create next id: %w", err)
	}

	query := `
		INSERT INTO options
			(id, market_id, holder, type, state, amount, strike_price, strike_amount,
			 premium, fee, start_time, expiration_time, created_at)
		VALUES
			(:id, :market_id, :holder, :type, :state, :amount, :strike_price, :strike_amount,
			 :premium, :fee, :start_time, :expiration_time, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, o); err != nil {
		return fmt.Errorf("option_repo.Create: %w", err)
	}
	return nil
}

// GetByID fetches one option of a market.
func (r *OptionRepository) GetByID(ctx context.Context, marketID uuid.UUID, optionID int64) (*domain.Option, error) {
	var o domain.Option
	err := r.db.GetContext(ctx, &o,
		`SELECT * FROM options WHERE market_id = $1 AND id = $2`, marketID, optionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOptionNotFound
		}
		return nil, fmt.Errorf("option_repo.GetByID: %w", err)
	}
	return &o, nil
}

// GetForUpdate locks and fetches an option inside a transaction. Exercise
// and unlock both settle under this lock so an option can only leave the
// active state once.
func (r *OptionRepository) GetForUpdate(ctx context.Context, tx *sqlx.Tx, marketID uuid.UUID, optionID int64) (*domain.Option, error) {
	var o domain.Option
	err := tx.GetContext(ctx, &o,
		`SELECT * FROM options WHERE market_id = $1 AND id = $2 FOR UPDATE`,
		marketID, optionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOptionNotFound
		}
		return nil, fmt.Errorf("option_repo.GetForUpdate: %w", err)
	}
	return &o, nil
}

// SetState transitions an option out of the active state inside a
// transaction. The WHERE clause re-checks state so the transition is
// idempotent even without the row lock.
func (r *OptionRepository) SetState(ctx context.Context, tx *sqlx.Tx, marketID uuid.UUID, optionID int64, state domain.OptionState, settledAt time.Time) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE options SET state = $1, settled_at = $2
		WHERE market_id = $3 AND id = $4 AND state = 'active'`,
		string(state), settledAt, marketID, optionID)
	if err != nil {
		return fmt.Errorf("option_repo.SetState: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrOptionNotActive
	}
	return nil
}

// ListByHolder returns an account's options across all markets, newest first.
func (r *OptionRepository) ListByHolder(ctx context.Context, holder uuid.UUID, limit, offset int) ([]*domain.Option, int, error) {
	var options []*domain.Option
	var total int

	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM options WHERE holder = $1`, holder); err != nil {
		return nil, 0, fmt.Errorf("option_repo.ListByHolder count: %w", err)
	}
	if err := r.db.SelectContext(ctx, &options, `
		SELECT * FROM options WHERE holder = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		holder, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("option_repo.ListByHolder select: %w", err)
	}
	return options, total, nil
}

// ListByMarket returns a market's options, newest first, optionally filtered
// by state (""=all).
func (r *OptionRepository) ListByMarket(ctx context.Context, marketID uuid.UUID, state string, limit, offset int) ([]*domain.Option, int, error) {
	var options []*domain.Option
	var total int

	if state != "" {
		if err := r.db.GetContext(ctx, &total,
			`SELECT COUNT(*) FROM options WHERE market_id = $1 AND state = $2`,
			marketID, state); err != nil {
			return nil, 0, fmt.Errorf("option_repo.ListByMarket count: %w", err)
		}
		if err := r.db.SelectContext(ctx, &options, `
			SELECT * FROM options WHERE market_id = $1 AND state = $2
			ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
			marketID, state, limit, offset); err != nil {
			return nil, 0, fmt.Errorf("option_repo.ListByMarket select: %w", err)
		}
		return options, total, nil
	}

	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM options WHERE market_id = $1`, marketID); err != nil {
		return nil, 0, fmt.Errorf("option_repo.ListByMarket count: %w", err)
	}
	if err := r.db.SelectContext(ctx, &options, `
		SELECT * FROM options WHERE market_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		marketID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("option_repo.ListByMarket select: %w", err)
	}
	return options, total, nil
}

// GetExpiredActive returns active options whose expiration has passed,
// oldest first. The sweep loop feeds these to Unlock.
func (r *OptionRepository) GetExpiredActive(ctx context.Context, now time.Time, limit int) ([]*domain.Option, error) {
	var options []*domain.Option
	err := r.db.SelectContext(ctx, &options, `
		SELECT * FROM options
		WHERE state = 'active' AND expiration_time <= $1
		ORDER BY expiration_time ASC LIMIT $2`,
		now, limit)
	if err != nil {
		return nil, fmt.Errorf("option_repo.GetExpiredActive: %w", err)
	}
	return options, nil
}

// LockMarketSequence locks the market row so per-market option id assignment
// serializes across concurrent creations.
func (r *OptionRepository) LockMarketSequence(ctx context.Context, tx *sqlx.Tx, marketID uuid.UUID) error {
	var id uuid.UUID
	err := tx.GetContext(ctx, &id,
		`SELECT id FROM markets WHERE id = $1 FOR UPDATE`, marketID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrMarketNotFound
		}
		return fmt.Errorf("option_repo.LockMarketSequence: %w", err)
	}
	return nil
}
