package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/tulipfi/options/internal/amm"
	"github.com/tulipfi/options/internal/config"
	"github.com/tulipfi/options/internal/domain"
	"github.com/tulipfi/options/internal/oracle"
	"github.com/tulipfi/options/internal/repository"
)

// CreateMarketRequest carries everything needed to open a new options market
// on an asset pair. The creator seeds the AMM pair from their own balances;
// the liquidity pool starts empty and fills through deposits.
type CreateMarketRequest struct {
	Creator       uuid.UUID       `json:"-"`
	PoolAsset     string          `json:"pool_asset" binding:"required"`
	PaymentAsset  string          `json:"payment_asset" binding:"required"`
	SeedPool      decimal.Decimal `json:"seed_pool" binding:"required"`
	SeedPayment   decimal.Decimal `json:"seed_payment" binding:"required"`
	VolatilityPct int64           `json:"volatility_pct"` // 0 = config default
	FeeBps        int64           `json:"fee_bps"`        // 0 = config default
}

// FactoryService registers option markets. One market per unordered asset
// pair; creation is atomic across the market row, its pool, the AMM pair and
// the genesis oracle snapshot.
type FactoryService struct {
	db         *sqlx.DB
	marketRepo *repository.MarketRepository
	poolRepo   *repository.PoolRepository
	pairRepo   *repository.PairRepository
	oracleRepo *repository.OracleRepository
	ledgerRepo *repository.LedgerRepository
	eventRepo  *repository.EventRepository
	oracleSvc  *OracleService
	cfg        *config.Config
	now        func() time.Time
}

// NewFactoryService creates a FactoryService.
func NewFactoryService(
	db *sqlx.DB,
	marketRepo *repository.MarketRepository,
	poolRepo *repository.PoolRepository,
	pairRepo *repository.PairRepository,
	oracleRepo *repository.OracleRepository,
	ledgerRepo *repository.LedgerRepository,
	eventRepo *repository.EventRepository,
	oracleSvc *OracleService,
	cfg *config.Config,
) *FactoryService {
	return &FactoryService{
		db:         db,
		marketRepo: marketRepo,
		poolRepo:   poolRepo,
		pairRepo:   pairRepo,
		oracleRepo: oracleRepo,
		ledgerRepo: ledgerRepo,
		eventRepo:  eventRepo,
		oracleSvc:  oracleSvc,
		cfg:        cfg,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the service clock (tests).
func (s *FactoryService) SetClock(now func() time.Time) { s.now = now }

// CreateMarket opens a market for an asset pair. The pair key is
// order-independent, so a second creation with the arguments swapped fails
// with ErrMarketExists. The oracle becomes consultable only after the
// configured activation delay.
func (s *FactoryService) CreateMarket(ctx context.Context, req CreateMarketRequest) (m *domain.Market, err error) {
	poolAsset := domain.NormalizeAsset(req.PoolAsset)
	paymentAsset := domain.NormalizeAsset(req.PaymentAsset)
	if poolAsset == paymentAsset {
		return nil, domain.ErrSameAsset
	}
	if req.SeedPool.LessThanOrEqual(decimal.Zero) || req.SeedPayment.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	volatility := req.VolatilityPct
	if volatility == 0 {
		volatility = s.cfg.Options.VolatilityPct
	}
	feeBps := req.FeeBps
	if feeBps == 0 {
		feeBps = s.cfg.Options.PlatformFeeBps
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("factory_service.CreateMarket: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := s.now()

	// Seed the AMM pair from the creator's balances. The pair id doubles as
	// the custody account holding its reserves.
	pair := amm.NewPair(poolAsset, paymentAsset, req.SeedPool, req.SeedPayment, now)
	if err = s.pairRepo.Create(ctx, tx, pair); err != nil {
		return nil, err
	}
	if err = s.ledgerRepo.Transfer(ctx, tx, &domain.LedgerEntry{
		Type:   domain.LedgerSwapIn,
		Asset:  poolAsset,
		From:   req.Creator,
		To:     pair.ID,
		Amount: req.SeedPool,
	}); err != nil {
		return nil, fmt.Errorf("factory_service.CreateMarket: seed pool asset: %w", err)
	}
	if err = s.ledgerRepo.Transfer(ctx, tx, &domain.LedgerEntry{
		Type:   domain.LedgerSwapIn,
		Asset:  paymentAsset,
		From:   req.Creator,
		To:     pair.ID,
		Amount: req.SeedPayment,
	}); err != nil {
		return nil, fmt.Errorf("factory_service.CreateMarket: seed payment asset: %w", err)
	}

	// Genesis snapshot anchors the first TWAP window.
	genesis := oracle.Observe(pair, now)
	if err = s.oracleRepo.Insert(ctx, tx, &genesis); err != nil {
		return nil, fmt.Errorf("factory_service.CreateMarket: genesis snapshot: %w", err)
	}

	pool := &domain.Pool{
		ID:          uuid.New(),
		Asset:       poolAsset,
		TotalShares: decimal.Zero,
		Reserve:     decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	m = &domain.Market{
		ID:             uuid.New(),
		PairKey:        pair.PairKey,
		PoolAsset:      poolAsset,
		PaymentAsset:   paymentAsset,
		PoolID:         pool.ID,
		VolatilityPct:  volatility,
		FeeBps:         feeBps,
		OracleActiveAt: now.Add(s.cfg.Oracle.ActivationDelay),
		CreatedAt:      now,
	}
	pool.MarketID = m.ID

	if err = s.marketRepo.Create(ctx, tx, m); err != nil {
		return nil, err
	}
	if err = s.poolRepo.Create(ctx, tx, pool); err != nil {
		return nil, err
	}

	event := &domain.Event{
		Type:      domain.EventMarketCreated,
		MarketID:  m.ID,
		CreatedAt: now,
	}
	if err = s.eventRepo.Insert(ctx, tx, event); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("factory_service.CreateMarket: commit: %w", err)
	}

	slog.Info("market created",
		"market_id", m.ID, "pair", m.PairKey, "pool_id", pool.ID)
	return m, nil
}

// GetMarket looks up the market for an asset pair in either argument order.
func (s *FactoryService) GetMarket(ctx context.Context, assetA, assetB string) (*domain.Market, error) {
	return s.marketRepo.GetByPairKey(ctx, assetA, assetB)
}

// GetByID fetches one market.
func (s *FactoryService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Market, error) {
	return s.marketRepo.GetByID(ctx, id)
}

// AllMarkets lists registered markets in creation order.
func (s *FactoryService) AllMarkets(ctx context.Context, limit, offset int) ([]*domain.Market, int, error) {
	return s.marketRepo.List(ctx, limit, offset)
}

// AllMarketsLength returns how many markets have been registered.
func (s *FactoryService) AllMarketsLength(ctx context.Context) (int, error) {
	return s.marketRepo.Count(ctx)
}

// Summary assembles the read model for one market, tolerating a not yet
// activated oracle by leaving the price at zero.
func (s *FactoryService) Summary(ctx context.Context, m *domain.Market) (*domain.MarketSummary, error) {
	pool, err := s.poolRepo.GetByID(ctx, m.PoolID)
	if err != nil {
		return nil, err
	}
	price := decimal.Zero
	if p, err := s.oracleSvc.PriceFor(ctx, m); err == nil {
		price = p
	}
	summary := m.ToSummary(pool, price)
	return &summary, nil
}
