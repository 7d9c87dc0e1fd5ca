package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tulipfi/options/internal/amm"
	"github.com/tulipfi/options/internal/domain"
)

// PairRepository persists the constant-product pairs the engine swaps
// against. Swaps run read-modify-write under FOR UPDATE inside the caller's
// transaction, so a settlement and its swap commit atomically.
type PairRepository struct {
	db *sqlx.DB
}

// NewPairRepository creates a new PairRepository.
func NewPairRepository(db *sqlx.DB) *PairRepository {
	return &PairRepository{db: db}
}

// Create inserts a new pair row inside a transaction.
func (r *PairRepository) Create(ctx context.Context, tx *sqlx.Tx, p *amm.Pair) error {
	query := `
		INSERT INTO amm_pairs
			(id, pair_key, asset0, asset1, reserve0, reserve1,
			 cumulative_price0, cumulative_price1, last_sync_at, created_at)
		VALUES
			(:id, :pair_key, :asset0, :asset1, :reserve0, :reserve1,
			 :cumulative_price0, :cumulative_price1, :last_sync_at, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, p); err != nil {
		if isUniqueViolation(err, "amm_pairs_pair_key_key") {
			return domain.ErrMarketExists
		}
		return fmt.Errorf("pair_repo.Create: %w", err)
	}
	return nil
}

// GetByKey fetches a pair by its order-independent key.
func (r *PairRepository) GetByKey(ctx context.Context, assetA, assetB string) (*amm.Pair, error) {
	var p amm.Pair
	err := r.db.GetContext(ctx, &p,
		`SELECT * FROM amm_pairs WHERE pair_key = $1`,
		domain.PairKeyFor(assetA, assetB))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPairNotFound
		}
		return nil, fmt.Errorf("pair_repo.GetByKey: %w", err)
	}
	return &p, nil
}

// GetByID fetches a pair by primary key.
func (r *PairRepository) GetByID(ctx context.Context, id uuid.UUID) (*amm.Pair, error) {
	var p amm.Pair
	err := r.db.GetContext(ctx, &p, `SELECT * FROM amm_pairs WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPairNotFound
		}
		return nil, fmt.Errorf("pair_repo.GetByID: %w", err)
	}
	return &p, nil
}

// GetForUpdate locks and fetches a pair row inside a transaction.
func (r *PairRepository) GetForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*amm.Pair, error) {
	var p amm.Pair
	err := tx.GetContext(ctx, &p, `SELECT * FROM amm_pairs WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPairNotFound
		}
		return nil, fmt.Errorf("pair_repo.GetForUpdate: %w", err)
	}
	return &p, nil
}

// Save writes back a pair's reserves and accumulators after a swap or sync,
// inside the transaction that locked it.
func (r *PairRepository) Save(ctx context.Context, tx *sqlx.Tx, p *amm.Pair) error {
	res, err := tx.NamedExecContext(ctx, `
		UPDATE amm_pairs SET
			reserve0          = :reserve0,
			reserve1          = :reserve1,
			cumulative_price0 = :cumulative_price0,
			cumulative_price1 = :cumulative_price1,
			last_sync_at      = :last_sync_at
		WHERE id = :id`, p)
	if err != nil {
		return fmt.Errorf("pair_repo.Save: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrPairNotFound
	}
	return nil
}

// List returns every pair.
func (r *PairRepository) List(ctx context.Context) ([]*amm.Pair, error) {
	var out []*amm.Pair
	if err := r.db.SelectContext(ctx, &out,
		`SELECT * FROM amm_pairs ORDER BY created_at ASC`); err != nil {
		return nil, fmt.Errorf("pair_repo.List: %w", err)
	}
	return out, nil
}
