package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tulipfi/options/internal/domain"
	"github.com/tulipfi/options/internal/oracle"
)

// OracleRepository persists accumulator snapshots per pair. The genesis
// snapshot is written when the pair is created; the keeper appends one per
// update; consults read the two most recent.
type OracleRepository struct {
	db *sqlx.DB
}

// NewOracleRepository creates a new OracleRepository.
func NewOracleRepository(db *sqlx.DB) *OracleRepository {
	return &OracleRepository{db: db}
}

// Insert appends a snapshot inside a transaction.
func (r *OracleRepository) Insert(ctx context.Context, tx *sqlx.Tx, s *oracle.Snapshot) error {
	query := `
		INSERT INTO oracle_snapshots (pair_id, cumulative_price0, cumulative_price1, taken_at)
		VALUES (:pair_id, :cumulative_price0, :cumulative_price1, :taken_at)`
	if _, err := tx.NamedExecContext(ctx, query, s); err != nil {
		return fmt.Errorf("oracle_repo.Insert: %w", err)
	}
	return nil
}

// LastTwo returns the two most recent snapshots of a pair, oldest first.
// Returns ErrNoPriceData when fewer than two exist, which is the state
// before the keeper's first post-genesis update.
func (r *OracleRepository) LastTwo(ctx context.Context, pairID uuid.UUID) (prev, curr oracle.Snapshot, err error) {
	var rows []oracle.Snapshot
	err = r.db.SelectContext(ctx, &rows, `
		SELECT * FROM oracle_snapshots
		WHERE pair_id = $1
		ORDER BY taken_at DESC, id DESC LIMIT 2`,
		pairID)
	if err != nil {
		return prev, curr, fmt.Errorf("oracle_repo.LastTwo: %w", err)
	}
	if len(rows) < 2 {
		return prev, curr, domain.ErrNoPriceData
	}
	return rows[1], rows[0], nil
}

// Latest returns the most recent snapshot of a pair.
func (r *OracleRepository) Latest(ctx context.Context, pairID uuid.UUID) (*oracle.Snapshot, error) {
	var s oracle.Snapshot
	err := r.db.GetContext(ctx, &s, `
		SELECT * FROM oracle_snapshots
		WHERE pair_id = $1
		ORDER BY taken_at DESC, id DESC LIMIT 1`,
		pairID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNoPriceData
		}
		return nil, fmt.Errorf("oracle_repo.Latest: %w", err)
	}
	return &s, nil
}

// Prune deletes snapshots older than the retention horizon, keeping at least
// the newest two per pair.
func (r *OracleRepository) Prune(ctx context.Context, pairID uuid.UUID, keep int) error {
	if keep < 2 {
		keep = 2
	}
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM oracle_snapshots
		WHERE pair_id = $1 AND id NOT IN (
			SELECT id FROM oracle_snapshots
			WHERE pair_id = $1
			ORDER BY taken_at DESC, id DESC LIMIT $2
		)`, pairID, keep)
	if err != nil {
		return fmt.Errorf("oracle_repo.Prune: %w", err)
	}
	return nil
}
