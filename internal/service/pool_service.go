package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/tulipfi/options/internal/config"
	"github.com/tulipfi/options/internal/domain"
	"github.com/tulipfi/options/internal/repository"
)

// PoolService orchestrates liquidity deposits and withdrawals. Each
// operation runs in a single PostgreSQL transaction: the pool row is locked,
// share math runs against the locked totals, and the asset moves through the
// ledger before commit, so share price can never be observed mid-mutation.
type PoolService struct {
	db         *sqlx.DB
	poolRepo   *repository.PoolRepository
	ledgerRepo *repository.LedgerRepository
	cfg        *config.Config
	now        func() time.Time
}

// NewPoolService creates a PoolService.
func NewPoolService(
	db *sqlx.DB,
	poolRepo *repository.PoolRepository,
	ledgerRepo *repository.LedgerRepository,
	cfg *config.Config,
) *PoolService {
	return &PoolService{
		db:         db,
		poolRepo:   poolRepo,
		ledgerRepo: ledgerRepo,
		cfg:        cfg,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the service clock (tests).
func (s *PoolService) SetClock(now func() time.Time) { s.now = now }

// Deposit moves amount of the pool asset from the account into the pool and
// mints shares against the pre-deposit totals. The first deposit into an
// empty pool mints amount × bootstrap multiplier.
func (s *PoolService) Deposit(ctx context.Context, poolID, accountID uuid.UUID, amount decimal.Decimal) (minted decimal.Decimal, err error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, domain.ErrInvalidAmount
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("pool_service.Deposit: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	pool, err := s.poolRepo.GetForUpdate(ctx, tx, poolID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("pool_service.Deposit: lock pool: %w", err)
	}

	// Shares are priced off the totals as they stood before this deposit.
	minted = domain.MintedShares(amount, pool.TotalShares, pool.Reserve, s.cfg.Pool.BootstrapMultiplier)
	if minted.IsZero() {
		return decimal.Zero, domain.ErrInvalidAmount
	}

	if err = s.ledgerRepo.Transfer(ctx, tx, &domain.LedgerEntry{
		Type:   domain.LedgerDeposit,
		Asset:  pool.Asset,
		From:   accountID,
		To:     pool.ID,
		Amount: amount,
	}); err != nil {
		return decimal.Zero, fmt.Errorf("pool_service.Deposit: transfer: %w", err)
	}

	if err = s.poolRepo.SetTotals(ctx, tx, pool.ID,
		pool.TotalShares.Add(minted), pool.Reserve.Add(amount)); err != nil {
		return decimal.Zero, fmt.Errorf("pool_service.Deposit: set totals: %w", err)
	}
	if err = s.poolRepo.AddShares(ctx, tx, pool.ID, accountID, minted); err != nil {
		return decimal.Zero, fmt.Errorf("pool_service.Deposit: add shares: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return decimal.Zero, fmt.Errorf("pool_service.Deposit: commit: %w", err)
	}
	return minted, nil
}

// Withdraw burns the shares covering amount of the pool asset and pays the
// asset back to the account. Fails when the account's shares do not cover
// the burn or the unlocked reserve cannot cover the amount; reserve pledged
// to active options is not withdrawable.
func (s *PoolService) Withdraw(ctx context.Context, poolID, accountID uuid.UUID, amount decimal.Decimal) (burned decimal.Decimal, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("pool_service.Withdraw: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	pool, err := s.poolRepo.GetForUpdate(ctx, tx, poolID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("pool_service.Withdraw: lock pool: %w", err)
	}
	held, err := s.poolRepo.GetSharesForUpdate(ctx, tx, pool.ID, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("pool_service.Withdraw: lock shares: %w", err)
	}

	burned, err = pool.CanWithdraw(amount, held)
	if err != nil {
		return decimal.Zero, err
	}

	if err = s.poolRepo.SetTotals(ctx, tx, pool.ID,
		pool.TotalShares.Sub(burned), pool.Reserve.Sub(amount)); err != nil {
		return decimal.Zero, fmt.Errorf("pool_service.Withdraw: set totals: %w", err)
	}
	if err = s.poolRepo.AddShares(ctx, tx, pool.ID, accountID, burned.Neg()); err != nil {
		return decimal.Zero, fmt.Errorf("pool_service.Withdraw: burn shares: %w", err)
	}

	if err = s.ledgerRepo.Transfer(ctx, tx, &domain.LedgerEntry{
		Type:   domain.LedgerWithdraw,
		Asset:  pool.Asset,
		From:   pool.ID,
		To:     accountID,
		Amount: amount,
	}); err != nil {
		return decimal.Zero, fmt.Errorf("pool_service.Withdraw: transfer: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return decimal.Zero, fmt.Errorf("pool_service.Withdraw: commit: %w", err)
	}
	return burned, nil
}

// SharesOf returns the account's share balance alongside the pool totals.
func (s *PoolService) SharesOf(ctx context.Context, poolID, accountID uuid.UUID) (decimal.Decimal, *domain.Pool, error) {
	pool, err := s.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		return decimal.Zero, nil, err
	}
	shares, err := s.poolRepo.GetShares(ctx, poolID, accountID)
	if err != nil {
		return decimal.Zero, nil, err
	}
	return shares, pool, nil
}

// Get returns a pool by id.
func (s *PoolService) Get(ctx context.Context, poolID uuid.UUID) (*domain.Pool, error) {
	return s.poolRepo.GetByID(ctx, poolID)
}

// Holders lists every account with a share position in the pool.
func (s *PoolService) Holders(ctx context.Context, poolID uuid.UUID) ([]*domain.ShareBalance, error) {
	return s.poolRepo.ListHolders(ctx, poolID)
}
