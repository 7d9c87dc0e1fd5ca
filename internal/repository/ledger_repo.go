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

// LedgerRepository handles account balances and the double-entry audit log.
// Every balance mutation happens inside a caller-supplied transaction so a
// whole engine operation commits or rolls back as one unit.
type LedgerRepository struct {
	db *sqlx.DB
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// BalanceOf returns the balance of one asset for an account. A missing row
// reads as zero.
func (r *LedgerRepository) BalanceOf(ctx context.Context, accountID uuid.UUID, asset string) (decimal.Decimal, error) {
	var amount decimal.Decimal
	err := r.db.GetContext(ctx, &amount,
		`SELECT amount FROM balances WHERE account_id = $1 AND asset = $2`,
		accountID, domain.NormalizeAsset(asset))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("ledger_repo.BalanceOf: %w", err)
	}
	return amount, nil
}

// Balances returns every non-zero balance an account holds.
func (r *LedgerRepository) Balances(ctx context.Context, accountID uuid.UUID) ([]*domain.Balance, error) {
	var out []*domain.Balance
	err := r.db.SelectContext(ctx, &out,
		`SELECT * FROM balances WHERE account_id = $1 AND amount <> 0 ORDER BY asset`,
		accountID)
	if err != nil {
		return nil, fmt.Errorf("ledger_repo.Balances: %w", err)
	}
	return out, nil
}

// Credit adds amount of asset to an account inside a transaction, creating
// the balance row when the account has never held the asset.
func (r *LedgerRepository) Credit(ctx context.Context, tx *sqlx.Tx, accountID uuid.UUID, asset string, amount decimal.Decimal) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO balances (account_id, asset, amount, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (account_id, asset)
		DO UPDATE SET amount = balances.amount + EXCLUDED.amount, updated_at = now()`,
		accountID, domain.NormalizeAsset(asset), amount)
	if err != nil {
		return fmt.Errorf("ledger_repo.Credit: %w", err)
	}
	return nil
}

// Debit subtracts amount of asset from an account inside a transaction.
// Uses FOR UPDATE so concurrent debits serialize; returns
// ErrInsufficientFunds when the balance would go negative.
func (r *LedgerRepository) Debit(ctx context.Context, tx *sqlx.Tx, accountID uuid.UUID, asset string, amount decimal.Decimal) error {
	a := domain.NormalizeAsset(asset)

	var current decimal.Decimal
	err := tx.GetContext(ctx, &current,
		`SELECT amount FROM balances WHERE account_id = $1 AND asset = $2 FOR UPDATE`,
		accountID, a)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrInsufficientFunds
		}
		return fmt.Errorf("ledger_repo.Debit lock: %w", err)
	}
	if current.LessThan(amount) {
		return domain.ErrInsufficientFunds
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE balances SET amount = amount - $1, updated_at = now()
		 WHERE account_id = $2 AND asset = $3`,
		amount, accountID, a)
	if err != nil {
		return fmt.Errorf("ledger_repo.Debit update: %w", err)
	}
	return nil
}

// Transfer moves amount of asset between two accounts and records the ledger
// entry, all inside the caller's transaction.
func (r *LedgerRepository) Transfer(ctx context.Context, tx *sqlx.Tx, entry *domain.LedgerEntry) error {
	if entry.Amount.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidAmount
	}
	if err := r.Debit(ctx, tx, entry.From, entry.Asset, entry.Amount); err != nil {
		return err
	}
	if err := r.Credit(ctx, tx, entry.To, entry.Asset, entry.Amount); err != nil {
		return err
	}
	return r.Log(ctx, tx, entry)
}

// Log inserts an entry into the ledger audit trail inside a transaction.
func (r *LedgerRepository) Log(ctx context.Context, tx *sqlx.Tx, entry *domain.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (type, asset, from_account, to_account, amount, ref_option, created_at)
		VALUES (:type, :asset, :from_account, :to_account, :amount, :ref_option, now())`
	if _, err := tx.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("ledger_repo.Log: %w", err)
	}
	return nil
}

// EntriesByAccount returns the most recent ledger entries touching an account.
func (r *LedgerRepository) EntriesByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*domain.LedgerEntry, error) {
	var out []*domain.LedgerEntry
	err := r.db.SelectContext(ctx, &out, `
		SELECT * FROM ledger_entries
		WHERE from_account = $1 OR to_account = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ledger_repo.EntriesByAccount: %w", err)
	}
	return out, nil
}

// TreasurySummary aggregates what each asset has earned the treasury account.
func (r *LedgerRepository) TreasurySummary(ctx context.Context) ([]*domain.Balance, error) {
	var out []*domain.Balance
	err := r.db.SelectContext(ctx, &out,
		`SELECT * FROM balances WHERE account_id = $1 ORDER BY asset`,
		domain.TreasuryAccount)
	if err != nil {
		return nil, fmt.Errorf("ledger_repo.TreasurySummary: %w", err)
	}
	return out, nil
}
