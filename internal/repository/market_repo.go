package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tulipfi/options/internal/domain"
)

// MarketRepository handles all database operations for option markets.
type MarketRepository struct {
	db *sqlx.DB
}

// NewMarketRepository creates a new MarketRepository.
func NewMarketRepository(db *sqlx.DB) *MarketRepository {
	return &MarketRepository{db: db}
}

// Create inserts a new market row inside a transaction. The pair key carries
// a unique constraint, so a second market on the same asset pair surfaces as
// ErrMarketExists regardless of argument order.
func (r *MarketRepository) Create(ctx context.Context, tx *sqlx.Tx, m *domain.Market) error {
	query := `
		INSERT INTO markets
			(id, pair_key, pool_asset, payment_asset, pool_id, volatility_pct, fee_bps, oracle_active_at, created_at)
		VALUES
			(:id, :pair_key, :pool_asset, :payment_asset, :pool_id, :volatility_pct, :fee_bps, :oracle_active_at, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, m); err != nil {
		if isUniqueViolation(err, "markets_pair_key_key") {
			return domain.ErrMarketExists
		}
		return fmt.Errorf("market_repo.Create: %w", err)
	}
	return nil
}

// GetByID fetches a market by its primary key.
func (r *MarketRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Market, error) {
	var m domain.Market
	err := r.db.GetContext(ctx, &m, `SELECT * FROM markets WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMarketNotFound
		}
		return nil, fmt.Errorf("market_repo.GetByID: %w", err)
	}
	return &m, nil
}

// GetByPairKey fetches the market registered for an asset pair. The key is
// order-independent (see domain.PairKeyFor).
func (r *MarketRepository) GetByPairKey(ctx context.Context, assetA, assetB string) (*domain.Market, error) {
	var m domain.Market
	err := r.db.GetContext(ctx, &m,
		`SELECT * FROM markets WHERE pair_key = $1`,
		domain.PairKeyFor(assetA, assetB))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMarketNotFound
		}
		return nil, fmt.Errorf("market_repo.GetByPairKey: %w", err)
	}
	return &m, nil
}

// List returns all markets in creation order with the total count.
func (r *MarketRepository) List(ctx context.Context, limit, offset int) ([]*domain.Market, int, error) {
	var markets []*domain.Market
	var total int

	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM markets`); err != nil {
		return nil, 0, fmt.Errorf("market_repo.List count: %w", err)
	}
	if err := r.db.SelectContext(ctx, &markets,
		`SELECT * FROM markets ORDER BY created_at ASC LIMIT $1 OFFSET $2`,
		limit, offset); err != nil {
		return nil, 0, fmt.Errorf("market_repo.List select: %w", err)
	}
	return markets, total, nil
}

// Count returns how many markets the factory has registered.
func (r *MarketRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM markets`); err != nil {
		return 0, fmt.Errorf("market_repo.Count: %w", err)
	}
	return total, nil
}
