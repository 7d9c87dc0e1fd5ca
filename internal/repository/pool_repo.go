package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/tulipfi/options/internal/domain"
)

// PoolRepository handles all database operations for liquidity pools and the
// per-account share balances.
type PoolRepository struct {
	db *sqlx.DB
}

// NewPoolRepository creates a new PoolRepository.
func NewPoolRepository(db *sqlx.DB) *PoolRepository {
	return &PoolRepository{db: db}
}

// Create inserts a new pool row.
func (r *PoolRepository) Create(ctx context.Context, tx *sqlx.Tx, p *domain.Pool) error {
	query := `
		INSERT INTO pools (id, market_id, asset, total_shares, reserve, locked, created_at, updated_at)
		VALUES (:id, :market_id, :asset, :total_shares, :reserve, :locked, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("pool_repo.Create: %w", err)
	}
	return nil
}

// GetByID fetches a pool by its primary key.
func (r *PoolRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Pool, error) {
	var p domain.Pool
	err := r.db.GetContext(ctx, &p, `SELECT * FROM pools WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPoolNotFound
		}
		return nil, fmt.Errorf("pool_repo.GetByID: %w", err)
	}
	return &p, nil
}

// GetForUpdate locks and fetches a pool row inside a transaction. Every
// operation that changes shares or reserve goes through this lock so deposits,
// withdrawals and settlements serialize per pool.
func (r *PoolRepository) GetForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*domain.Pool, error) {
	var p domain.Pool
	err := tx.GetContext(ctx, &p, `SELECT * FROM pools WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPoolNotFound
		}
		return nil, fmt.Errorf("pool_repo.GetForUpdate: %w", err)
	}
	return &p, nil
}

// SetTotals writes the pool's share supply and reserve inside a transaction.
// The caller computes the new values under the GetForUpdate lock.
func (r *PoolRepository) SetTotals(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, totalShares, reserve decimal.Decimal) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE pools SET total_shares = $1, reserve = $2, updated_at = now() WHERE id = $3`,
		totalShares, reserve, id)
	if err != nil {
		return fmt.Errorf("pool_repo.SetTotals: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrPoolNotFound
	}
	return nil
}

// CreditReserve adds amount to the pool reserve without touching shares.
// Settlement uses this when a swap output or a premium lands in the pool.
func (r *PoolRepository) CreditReserve(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, amount decimal.Decimal) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE pools SET reserve = reserve + $1, updated_at = now() WHERE id = $2`,
		amount, id)
	if err != nil {
		return fmt.Errorf("pool_repo.CreditReserve: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrPoolNotFound
	}
	return nil
}

// DebitReserve removes amount from the pool reserve without touching shares.
// The pool must already be locked; the balance check belongs to the caller.
func (r *PoolRepository) DebitReserve(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, amount decimal.Decimal) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE pools SET reserve = reserve - $1, updated_at = now()
		 WHERE id = $2 AND reserve >= $1`,
		amount, id)
	if err != nil {
		return fmt.Errorf("pool_repo.DebitReserve: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrInsufficientFunds
	}
	return nil
}

// LockCollateral pledges amount of the reserve to an option. Fails with
// ErrInsufficientFunds when the unlocked reserve does not cover it.
func (r *PoolRepository) LockCollateral(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, amount decimal.Decimal) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE pools SET locked = locked + $1, updated_at = now()
		 WHERE id = $2 AND reserve - locked >= $1`,
		amount, id)
	if err != nil {
		return fmt.Errorf("pool_repo.LockCollateral: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrInsufficientFunds
	}
	return nil
}

// ReleaseCollateral returns amount of pledged reserve to general liquidity.
// The option being settled or unlocked must have locked the same amount.
func (r *PoolRepository) ReleaseCollateral(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, amount decimal.Decimal) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE pools SET locked = locked - $1, updated_at = now()
		 WHERE id = $2 AND locked >= $1`,
		amount, id)
	if err != nil {
		return fmt.Errorf("pool_repo.ReleaseCollateral: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("pool_repo.ReleaseCollateral: lock accounting underflow on pool %s", id)
	}
	return nil
}

// GetShares returns an account's share balance in a pool. A missing row
// reads as zero.
func (r *PoolRepository) GetShares(ctx context.Context, poolID, accountID uuid.UUID) (decimal.Decimal, error) {
	var shares decimal.Decimal
	err := r.db.GetContext(ctx, &shares,
		`SELECT shares FROM pool_shares WHERE pool_id = $1 AND account_id = $2`,
		poolID, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("pool_repo.GetShares: %w", err)
	}
	return shares, nil
}

// GetSharesForUpdate locks and returns an account's share balance inside a
// transaction. Missing rows read as zero without taking a lock.
func (r *PoolRepository) GetSharesForUpdate(ctx context.Context, tx *sqlx.Tx, poolID, accountID uuid.UUID) (decimal.Decimal, error) {
	var shares decimal.Decimal
	err := tx.GetContext(ctx, &shares,
		`SELECT shares FROM pool_shares WHERE pool_id = $1 AND account_id = $2 FOR UPDATE`,
		poolID, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("pool_repo.GetSharesForUpdate: %w", err)
	}
	return shares, nil
}

// AddShares adjusts an account's share balance by delta (negative to burn)
// inside a transaction.
func (r *PoolRepository) AddShares(ctx context.Context, tx *sqlx.Tx, poolID, accountID uuid.UUID, delta decimal.Decimal) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO pool_shares (pool_id, account_id, shares, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (pool_id, account_id)
		DO UPDATE SET shares = pool_shares.shares + EXCLUDED.shares, updated_at = now()`,
		poolID, accountID, delta)
	if err != nil {
		return fmt.Errorf("pool_repo.AddShares: %w", err)
	}
	return nil
}

// ListHolders returns every account holding shares in a pool.
func (r *PoolRepository) ListHolders(ctx context.Context, poolID uuid.UUID) ([]*domain.ShareBalance, error) {
	var out []*domain.ShareBalance
	err := r.db.SelectContext(ctx, &out,
		`SELECT * FROM pool_shares WHERE pool_id = $1 AND shares > 0 ORDER BY shares DESC`,
		poolID)
	if err != nil {
		return nil, fmt.Errorf("pool_repo.ListHolders: %w", err)
	}
	return out, nil
}
