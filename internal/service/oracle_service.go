package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/tulipfi/options/internal/config"
	"github.com/tulipfi/options/internal/domain"
	"github.com/tulipfi/options/internal/oracle"
	"github.com/tulipfi/options/internal/repository"
)

// OracleService keeps the per-pair price observations fresh and answers
// price queries for the rest of the engine. A market's oracle only becomes
// consultable after its activation delay, and only once the keeper has
// written a post-genesis snapshot.
type OracleService struct {
	db         *sqlx.DB
	pairRepo   *repository.PairRepository
	oracleRepo *repository.OracleRepository
	cfg        *config.Config
	now        func() time.Time
}

// NewOracleService creates an OracleService.
func NewOracleService(
	db *sqlx.DB,
	pairRepo *repository.PairRepository,
	oracleRepo *repository.OracleRepository,
	cfg *config.Config,
) *OracleService {
	return &OracleService{
		db:         db,
		pairRepo:   pairRepo,
		oracleRepo: oracleRepo,
		cfg:        cfg,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the service clock (tests).
func (s *OracleService) SetClock(now func() time.Time) { s.now = now }

// Update syncs one pair's accumulators to the current instant and appends a
// snapshot, all in one transaction.
func (s *OracleService) Update(ctx context.Context, pairID uuid.UUID) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("oracle_service.Update: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	pair, err := s.pairRepo.GetForUpdate(ctx, tx, pairID)
	if err != nil {
		return fmt.Errorf("oracle_service.Update: lock pair: %w", err)
	}

	now := s.now()
	pair.Sync(now)
	if err = s.pairRepo.Save(ctx, tx, pair); err != nil {
		return fmt.Errorf("oracle_service.Update: save pair: %w", err)
	}

	snap := oracle.Observe(pair, now)
	if err = s.oracleRepo.Insert(ctx, tx, &snap); err != nil {
		return fmt.Errorf("oracle_service.Update: insert snapshot: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("oracle_service.Update: commit: %w", err)
	}
	return nil
}

// UpdateAll snapshots every pair. Failures are logged per pair so one bad
// pair cannot starve the rest.
func (s *OracleService) UpdateAll(ctx context.Context) error {
	pairs, err := s.pairRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("oracle_service.UpdateAll: %w", err)
	}
	for _, p := range pairs {
		if err := s.Update(ctx, p.ID); err != nil {
			slog.Error("oracle update failed", "pair", p.PairKey, "error", err)
		}
	}
	return nil
}

// PruneAll trims each pair's snapshot history down to the configured
// retention count. Failures are logged per pair.
func (s *OracleService) PruneAll(ctx context.Context) error {
	pairs, err := s.pairRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("oracle_service.PruneAll: %w", err)
	}
	for _, p := range pairs {
		if err := s.oracleRepo.Prune(ctx, p.ID, s.cfg.Oracle.SnapshotKeep); err != nil {
			slog.Error("oracle prune failed", "pair", p.PairKey, "error", err)
		}
	}
	return nil
}

// LatestSnapshot returns the most recent accumulator snapshot of a pair.
func (s *OracleService) LatestSnapshot(ctx context.Context, pairID uuid.UUID) (*oracle.Snapshot, error) {
	return s.oracleRepo.Latest(ctx, pairID)
}

// PriceFor returns the scaled time-weighted price of the market's pool asset
// in its payment asset. Fails with ErrOracleNotActivated before the market's
// activation instant and ErrNoPriceData until the keeper has produced a
// usable window.
func (s *OracleService) PriceFor(ctx context.Context, m *domain.Market) (decimal.Decimal, error) {
	if !m.OracleActivated(s.now()) {
		return decimal.Zero, domain.ErrOracleNotActivated
	}
	pair, err := s.pairRepo.GetByKey(ctx, m.PoolAsset, m.PaymentAsset)
	if err != nil {
		return decimal.Zero, fmt.Errorf("oracle_service.PriceFor: %w", err)
	}
	prev, curr, err := s.oracleRepo.LastTwo(ctx, pair.ID)
	if err != nil {
		return decimal.Zero, err
	}
	// Stale history from before activation must not price a fresh market.
	if !m.SnapshotUsable(curr.TakenAt) {
		return decimal.Zero, domain.ErrNoPriceData
	}
	return oracle.PriceOf(pair, prev, curr, m.PoolAsset)
}

// Consult quotes amountIn of asset in the market's counter asset at the
// time-weighted price, with the same activation guards as PriceFor.
func (s *OracleService) Consult(ctx context.Context, m *domain.Market, asset string, amountIn decimal.Decimal) (decimal.Decimal, error) {
	if !m.OracleActivated(s.now()) {
		return decimal.Zero, domain.ErrOracleNotActivated
	}
	pair, err := s.pairRepo.GetByKey(ctx, m.PoolAsset, m.PaymentAsset)
	if err != nil {
		return decimal.Zero, fmt.Errorf("oracle_service.Consult: %w", err)
	}
	prev, curr, err := s.oracleRepo.LastTwo(ctx, pair.ID)
	if err != nil {
		return decimal.Zero, err
	}
	if !m.SnapshotUsable(curr.TakenAt) {
		return decimal.Zero, domain.ErrNoPriceData
	}
	return oracle.Consult(pair, prev, curr, asset, amountIn)
}
