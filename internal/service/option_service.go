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
	"github.com/tulipfi/options/internal/pricing"
	"github.com/tulipfi/options/internal/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Interfaces injected into OptionService to avoid import cycles
// ──────────────────────────────────────────────────────────────────────────────

// Broadcaster is the minimal interface OptionService needs from the WS hub.
type Broadcaster interface {
	BroadcastEvent(e *domain.Event)
}

// ──────────────────────────────────────────────────────────────────────────────
// OptionService
// ──────────────────────────────────────────────────────────────────────────────

// OptionService runs the option lifecycle: write, exercise, unlock. Each
// operation is a single PostgreSQL transaction that locks the market row (to
// serialize id assignment), the pool, the AMM pair and the option before
// moving any funds, so a half-settled option can never be observed.
//
// Denominations: option amount and pool flows are in the pool asset; strike
// and oracle prices quote the pool asset in the payment asset at 1e8 scale;
// premium, fee and strike amount are in the payment asset.
type OptionService struct {
	db          *sqlx.DB
	optionRepo  *repository.OptionRepository
	marketRepo  *repository.MarketRepository
	poolRepo    *repository.PoolRepository
	pairRepo    *repository.PairRepository
	ledgerRepo  *repository.LedgerRepository
	eventRepo   *repository.EventRepository
	oracleSvc   *OracleService
	cfg         *config.Config
	broadcaster Broadcaster // injected after the WS hub is built
	now         func() time.Time
}

// NewOptionService creates an OptionService.
func NewOptionService(
	db *sqlx.DB,
	optionRepo *repository.OptionRepository,
	marketRepo *repository.MarketRepository,
	poolRepo *repository.PoolRepository,
	pairRepo *repository.PairRepository,
	ledgerRepo *repository.LedgerRepository,
	eventRepo *repository.EventRepository,
	oracleSvc *OracleService,
	cfg *config.Config,
) *OptionService {
	return &OptionService{
		db:         db,
		optionRepo: optionRepo,
		marketRepo: marketRepo,
		poolRepo:   poolRepo,
		pairRepo:   pairRepo,
		ledgerRepo: ledgerRepo,
		eventRepo:  eventRepo,
		oracleSvc:  oracleSvc,
		cfg:        cfg,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SetBroadcaster injects the WS hub dependency post-construction.
func (s *OptionService) SetBroadcaster(b Broadcaster) { s.broadcaster = b }

// SetClock overrides the service clock (tests).
func (s *OptionService) SetClock(now func() time.Time) { s.now = now }

// Quote is a read-only premium estimate at the current oracle price.
type Quote struct {
	StrikePrice  decimal.Decimal `json:"strike_price"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	StrikeAmount decimal.Decimal `json:"strike_amount"`
	Premium      decimal.Decimal `json:"premium"`
	Fee          decimal.Decimal `json:"fee"`
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

// Create writes a new option. The holder pays premium plus platform fee in
// the payment asset; the fee goes to the treasury, the premium is swapped
// through the AMM pair into the pool asset and lands in the pool reserve.
// An absent strike prices the option at the money.
func (s *OptionService) Create(ctx context.Context, req domain.CreateOptionRequest) (o *domain.Option, err error) {
	// ── 1. Input validation ──────────────────────────────────────────────────
	if !req.Type.IsValid() {
		return nil, domain.ErrInvalidAmount
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrAmountTooSmall
	}
	if err := domain.ValidateDuration(req.Duration, s.cfg.Options.MinDuration, s.cfg.Options.MaxDuration); err != nil {
		return nil, err
	}

	market, err := s.marketRepo.GetByID(ctx, req.MarketID)
	if err != nil {
		return nil, err
	}

	// ── 2. Price the option off the oracle ───────────────────────────────────
	price, err := s.oracleSvc.PriceFor(ctx, market)
	if err != nil {
		return nil, err
	}
	strike := price
	if req.StrikePrice != nil {
		if req.StrikePrice.LessThanOrEqual(decimal.Zero) {
			return nil, domain.ErrInvalidAmount
		}
		strike = *req.StrikePrice
	}

	quote := s.quote(market, req.Type, req.Amount, strike, price, req.Duration)
	if quote.Premium.IsZero() {
		return nil, domain.ErrAmountTooSmall
	}

	// ── 3. Begin transaction ─────────────────────────────────────────────────
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("option_service.Create: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Serializes per-market option id assignment.
	if err = s.optionRepo.LockMarketSequence(ctx, tx, market.ID); err != nil {
		return nil, err
	}

	// ── 4. Reserve pool collateral ───────────────────────────────────────────
	pool, err := s.poolRepo.GetForUpdate(ctx, tx, market.PoolID)
	if err != nil {
		return nil, err
	}
	// Pledges the option amount out of the unlocked reserve; fails when
	// existing options already claim too much of it.
	if err = s.poolRepo.LockCollateral(ctx, tx, pool.ID, req.Amount); err != nil {
		return nil, err
	}

	// ── 5. Collect fee and premium ───────────────────────────────────────────
	now := s.now()
	if entry := feeEntry(market, req.Holder, quote.Fee); entry != nil {
		if err = s.ledgerRepo.Transfer(ctx, tx, entry); err != nil {
			return nil, fmt.Errorf("option_service.Create: collect fee: %w", err)
		}
	}

	swappedPremium, err := s.swapIntoPool(ctx, tx, market, pool.ID, req.Holder, quote.Premium, now)
	if err != nil {
		return nil, err
	}

	// ── 6. Persist the option ────────────────────────────────────────────────
	o = &domain.Option{
		MarketID:       market.ID,
		Holder:         req.Holder,
		Type:           req.Type,
		State:          domain.OptionActive,
		Amount:         req.Amount,
		StrikePrice:    strike,
		StrikeAmount:   quote.StrikeAmount,
		Premium:        quote.Premium,
		Fee:            quote.Fee,
		StartTime:      now.Add(s.cfg.Options.ActivationDelay),
		ExpirationTime: now.Add(req.Duration),
		CreatedAt:      now,
	}
	if err = s.optionRepo.Create(ctx, tx, o); err != nil {
		return nil, err
	}

	event := domain.NewOptionEvent(domain.EventOptionCreated, market.ID, o.ID, o.Holder).
		WithSettlement(o.Amount, o.Premium, o.Fee)
	if err = s.eventRepo.Insert(ctx, tx, event); err != nil {
		return nil, err
	}
	exchange := domain.NewOptionEvent(domain.EventExchanged, market.ID, o.ID, o.Holder).
		WithExchange(market.PaymentAsset, quote.Premium, market.PoolAsset, swappedPremium)
	if err = s.eventRepo.Insert(ctx, tx, exchange); err != nil {
		return nil, err
	}

	// ── 7. Commit ────────────────────────────────────────────────────────────
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("option_service.Create: commit: %w", err)
	}

	slog.Info("option created",
		"market_id", market.ID, "option_id", o.ID, "type", o.Type,
		"amount", o.Amount, "premium", o.Premium, "swapped_premium", swappedPremium)
	s.broadcast(event)
	s.broadcast(exchange)
	return o, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Exercise
// ──────────────────────────────────────────────────────────────────────────────

// Exercise settles an active option at the holder's request. A call delivers
// the strike amount of the payment asset and receives the option amount of
// the pool asset; a put delivers the option amount of the pool asset and
// receives the strike amount of the payment asset. Both legs route through
// the AMM pair so the pool reserve absorbs the difference against market
// price.
func (s *OptionService) Exercise(ctx context.Context, marketID uuid.UUID, optionID int64, caller uuid.UUID) (o *domain.Option, err error) {
	market, err := s.marketRepo.GetByID(ctx, marketID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("option_service.Exercise: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	o, err = s.optionRepo.GetForUpdate(ctx, tx, marketID, optionID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err = o.CanExercise(caller, now); err != nil {
		return nil, err
	}

	pool, err := s.poolRepo.GetForUpdate(ctx, tx, market.PoolID)
	if err != nil {
		return nil, err
	}

	var exchange *domain.Event
	switch o.Type {
	case domain.OptionCall:
		exchange, err = s.settleCall(ctx, tx, market, pool, o, now)
	case domain.OptionPut:
		exchange, err = s.settlePut(ctx, tx, market, pool, o, now)
	default:
		err = domain.ErrOptionNotFound
	}
	if err != nil {
		return nil, err
	}

	if err = s.optionRepo.SetState(ctx, tx, marketID, optionID, domain.OptionExercised, now); err != nil {
		return nil, err
	}
	if err = s.eventRepo.Insert(ctx, tx, exchange); err != nil {
		return nil, err
	}
	exercised := domain.NewOptionEvent(domain.EventOptionExercised, marketID, optionID, o.Holder).
		WithSettlement(o.Amount, o.Premium, o.Fee)
	if err = s.eventRepo.Insert(ctx, tx, exercised); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("option_service.Exercise: commit: %w", err)
	}

	o.State = domain.OptionExercised
	o.SettledAt = &now
	slog.Info("option exercised", "market_id", marketID, "option_id", optionID, "type", o.Type)
	s.broadcast(exchange)
	s.broadcast(exercised)
	return o, nil
}

// settleCall: holder delivers strikeAmount payment units into the pair, the
// swap output lands in the pool reserve, and the holder takes amount pool
// units out of the reserve.
func (s *OptionService) settleCall(ctx context.Context, tx *sqlx.Tx, market *domain.Market, pool *domain.Pool, o *domain.Option, now time.Time) (*domain.Event, error) {
	swapped, err := s.swapIntoPool(ctx, tx, market, pool.ID, o.Holder, o.StrikeAmount, now)
	if err != nil {
		return nil, err
	}

	// The pledge funds the payout; released before the debit so locked can
	// never exceed the shrinking reserve.
	if err := s.poolRepo.ReleaseCollateral(ctx, tx, pool.ID, o.Amount); err != nil {
		return nil, err
	}
	if err := s.poolRepo.DebitReserve(ctx, tx, pool.ID, o.Amount); err != nil {
		return nil, err
	}
	optID := o.ID
	if err := s.ledgerRepo.Transfer(ctx, tx, &domain.LedgerEntry{
		Type:      domain.LedgerPayout,
		Asset:     market.PoolAsset,
		From:      pool.ID,
		To:        o.Holder,
		Amount:    o.Amount,
		RefOption: &optID,
	}); err != nil {
		return nil, fmt.Errorf("option_service.settleCall: payout: %w", err)
	}

	return domain.NewOptionEvent(domain.EventExchanged, market.ID, o.ID, o.Holder).
		WithExchange(market.PaymentAsset, o.StrikeAmount, market.PoolAsset, swapped), nil
}

// settlePut: holder delivers amount pool units into the reserve, the pair is
// swapped for exactly strikeAmount payment units funded from the reserve,
// and the holder takes the strike amount. The reserve keeps the difference
// between the delivered amount and the swap input.
func (s *OptionService) settlePut(ctx context.Context, tx *sqlx.Tx, market *domain.Market, pool *domain.Pool, o *domain.Option, now time.Time) (*domain.Event, error) {
	optID := o.ID

	// Holder's pool units join the reserve first.
	if err := s.ledgerRepo.Transfer(ctx, tx, &domain.LedgerEntry{
		Type:      domain.LedgerSwapIn,
		Asset:     market.PoolAsset,
		From:      o.Holder,
		To:        pool.ID,
		Amount:    o.Amount,
		RefOption: &optID,
	}); err != nil {
		return nil, fmt.Errorf("option_service.settlePut: deliver: %w", err)
	}
	if err := s.poolRepo.CreditReserve(ctx, tx, pool.ID, o.Amount); err != nil {
		return nil, err
	}
	if err := s.poolRepo.ReleaseCollateral(ctx, tx, pool.ID, o.Amount); err != nil {
		return nil, err
	}

	pair, err := s.pair(ctx, market)
	if err != nil {
		return nil, err
	}
	if pair, err = s.pairRepo.GetForUpdate(ctx, tx, pair.ID); err != nil {
		return nil, err
	}
	poolIn, err := pair.SwapForExact(market.PoolAsset, o.StrikeAmount, s.cfg.Oracle.SwapFeeBps, now)
	if err != nil {
		return nil, err
	}
	if err := s.pairRepo.Save(ctx, tx, pair); err != nil {
		return nil, err
	}

	if err := s.poolRepo.DebitReserve(ctx, tx, pool.ID, poolIn); err != nil {
		return nil, err
	}
	if err := s.ledgerRepo.Transfer(ctx, tx, &domain.LedgerEntry{
		Type:      domain.LedgerSwapOut,
		Asset:     market.PoolAsset,
		From:      pool.ID,
		To:        pair.ID,
		Amount:    poolIn,
		RefOption: &optID,
	}); err != nil {
		return nil, fmt.Errorf("option_service.settlePut: fund swap: %w", err)
	}
	if err := s.ledgerRepo.Transfer(ctx, tx, &domain.LedgerEntry{
		Type:      domain.LedgerPayout,
		Asset:     market.PaymentAsset,
		From:      pair.ID,
		To:        o.Holder,
		Amount:    o.StrikeAmount,
		RefOption: &optID,
	}); err != nil {
		return nil, fmt.Errorf("option_service.settlePut: payout: %w", err)
	}

	return domain.NewOptionEvent(domain.EventExchanged, market.ID, o.ID, o.Holder).
		WithExchange(market.PoolAsset, poolIn, market.PaymentAsset, o.StrikeAmount), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Unlock
// ──────────────────────────────────────────────────────────────────────────────

// Unlock expires a single option past its expiration time, releasing its
// pledged collateral back to general pool liquidity. Anyone may call it.
func (s *OptionService) Unlock(ctx context.Context, marketID uuid.UUID, optionID int64) (err error) {
	market, err := s.marketRepo.GetByID(ctx, marketID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("option_service.Unlock: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	event, err := s.unlockInTx(ctx, tx, market, optionID)
	if err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("option_service.Unlock: commit: %w", err)
	}
	s.broadcast(event)
	return nil
}

// UnlockMany expires a batch of options of one market atomically: if any
// option in the batch cannot be unlocked the whole batch fails and no state
// changes.
func (s *OptionService) UnlockMany(ctx context.Context, marketID uuid.UUID, optionIDs []int64) (err error) {
	if len(optionIDs) == 0 {
		return nil
	}

	market, err := s.marketRepo.GetByID(ctx, marketID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("option_service.UnlockMany: begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	opts := make([]*domain.Option, 0, len(optionIDs))
	for _, id := range optionIDs {
		var o *domain.Option
		if o, err = s.optionRepo.GetForUpdate(ctx, tx, marketID, id); err != nil {
			return err
		}
		opts = append(opts, o)
	}
	now := s.now()
	if err = domain.ValidateUnlockBatch(opts, now); err != nil {
		return err
	}

	events := make([]*domain.Event, 0, len(opts))
	for _, o := range opts {
		if err = s.optionRepo.SetState(ctx, tx, marketID, o.ID, domain.OptionExpired, now); err != nil {
			return err
		}
		if err = s.poolRepo.ReleaseCollateral(ctx, tx, market.PoolID, o.Amount); err != nil {
			return err
		}
		event := domain.NewOptionEvent(domain.EventOptionExpired, marketID, o.ID, o.Holder).
			WithSettlement(o.Amount, o.Premium, o.Fee)
		if err = s.eventRepo.Insert(ctx, tx, event); err != nil {
			return err
		}
		events = append(events, event)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("option_service.UnlockMany: commit: %w", err)
	}
	for _, e := range events {
		s.broadcast(e)
	}
	return nil
}

func (s *OptionService) unlockInTx(ctx context.Context, tx *sqlx.Tx, market *domain.Market, optionID int64) (*domain.Event, error) {
	o, err := s.optionRepo.GetForUpdate(ctx, tx, market.ID, optionID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := o.CanUnlock(now); err != nil {
		return nil, err
	}
	if err := s.optionRepo.SetState(ctx, tx, market.ID, optionID, domain.OptionExpired, now); err != nil {
		return nil, err
	}
	if err := s.poolRepo.ReleaseCollateral(ctx, tx, market.PoolID, o.Amount); err != nil {
		return nil, err
	}
	event := domain.NewOptionEvent(domain.EventOptionExpired, market.ID, optionID, o.Holder).
		WithSettlement(o.Amount, o.Premium, o.Fee)
	if err := s.eventRepo.Insert(ctx, tx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// SweepExpired expires every active option past its expiration time, batched
// per market so one market's batch failing does not block the others.
// Returns how many options were unlocked.
func (s *OptionService) SweepExpired(ctx context.Context, limit int) (int, error) {
	expired, err := s.optionRepo.GetExpiredActive(ctx, s.now(), limit)
	if err != nil {
		return 0, err
	}
	byMarket := make(map[uuid.UUID][]int64)
	for _, o := range expired {
		byMarket[o.MarketID] = append(byMarket[o.MarketID], o.ID)
	}

	unlocked := 0
	for marketID, ids := range byMarket {
		if err := s.UnlockMany(ctx, marketID, ids); err != nil {
			slog.Error("expiry sweep batch failed", "market_id", marketID, "count", len(ids), "error", err)
			continue
		}
		unlocked += len(ids)
	}
	return unlocked, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────────────────────────

// Get fetches one option.
func (s *OptionService) Get(ctx context.Context, marketID uuid.UUID, optionID int64) (*domain.Option, error) {
	return s.optionRepo.GetByID(ctx, marketID, optionID)
}

// ListByHolder returns an account's options across markets.
func (s *OptionService) ListByHolder(ctx context.Context, holder uuid.UUID, limit, offset int) ([]*domain.Option, int, error) {
	return s.optionRepo.ListByHolder(ctx, holder, limit, offset)
}

// ListByMarket returns a market's options, optionally filtered by state.
func (s *OptionService) ListByMarket(ctx context.Context, marketID uuid.UUID, state string, limit, offset int) ([]*domain.Option, int, error) {
	return s.optionRepo.ListByMarket(ctx, marketID, state, limit, offset)
}

// Estimate returns a read-only premium quote without writing anything.
func (s *OptionService) Estimate(ctx context.Context, marketID uuid.UUID, typ domain.OptionType, amount decimal.Decimal, strikePrice *decimal.Decimal, duration time.Duration) (*Quote, error) {
	if !typ.IsValid() || amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if err := domain.ValidateDuration(duration, s.cfg.Options.MinDuration, s.cfg.Options.MaxDuration); err != nil {
		return nil, err
	}
	market, err := s.marketRepo.GetByID(ctx, marketID)
	if err != nil {
		return nil, err
	}
	price, err := s.oracleSvc.PriceFor(ctx, market)
	if err != nil {
		return nil, err
	}
	strike := price
	if strikePrice != nil {
		strike = *strikePrice
	}
	q := s.quote(market, typ, amount, strike, price, duration)
	return &q, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Internals
// ──────────────────────────────────────────────────────────────────────────────

// quote runs the fixed-point pricing pipeline for one option.
func (s *OptionService) quote(market *domain.Market, typ domain.OptionType, amount, strike, price decimal.Decimal, duration time.Duration) Quote {
	amt := amount.BigInt()
	strikeBig := strike.BigInt()
	priceBig := price.BigInt()

	premium := pricing.Premium(strikeBig, amt, int64(duration/time.Second), priceBig,
		market.VolatilityPct, typ, pricing.DefaultPriceDecimals)
	feePool := pricing.PlatformFee(amt, market.FeeBps)
	// Fee is charged in the payment asset at the oracle price.
	fee := pricing.StrikeAmount(feePool, priceBig, pricing.DefaultPriceDecimals)
	strikeAmount := pricing.StrikeAmount(amt, strikeBig, pricing.DefaultPriceDecimals)

	return Quote{
		StrikePrice:  strike,
		CurrentPrice: price,
		StrikeAmount: decimal.NewFromBigInt(strikeAmount, 0),
		Premium:      decimal.NewFromBigInt(premium, 0),
		Fee:          decimal.NewFromBigInt(fee, 0),
	}
}

// swapIntoPool moves amountIn payment units from payer through the AMM pair
// and credits the pool-asset output to the pool reserve. Returns the output.
func (s *OptionService) swapIntoPool(ctx context.Context, tx *sqlx.Tx, market *domain.Market, poolID, payer uuid.UUID, amountIn decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	pair, err := s.pair(ctx, market)
	if err != nil {
		return decimal.Zero, err
	}
	if pair, err = s.pairRepo.GetForUpdate(ctx, tx, pair.ID); err != nil {
		return decimal.Zero, err
	}

	if err := s.ledgerRepo.Transfer(ctx, tx, &domain.LedgerEntry{
		Type:   domain.LedgerSwapIn,
		Asset:  market.PaymentAsset,
		From:   payer,
		To:     pair.ID,
		Amount: amountIn,
	}); err != nil {
		return decimal.Zero, fmt.Errorf("option_service.swapIntoPool: pay in: %w", err)
	}

	_, out, err := pair.Swap(market.PaymentAsset, amountIn, s.cfg.Oracle.SwapFeeBps, now)
	if err != nil {
		return decimal.Zero, err
	}
	if err := s.pairRepo.Save(ctx, tx, pair); err != nil {
		return decimal.Zero, err
	}

	if err := s.ledgerRepo.Transfer(ctx, tx, &domain.LedgerEntry{
		Type:   domain.LedgerSwapOut,
		Asset:  market.PoolAsset,
		From:   pair.ID,
		To:     poolID,
		Amount: out,
	}); err != nil {
		return decimal.Zero, fmt.Errorf("option_service.swapIntoPool: pay out: %w", err)
	}
	if err := s.poolRepo.CreditReserve(ctx, tx, poolID, out); err != nil {
		return decimal.Zero, err
	}
	return out, nil
}

// feeEntry builds the treasury ledger entry for a platform fee. Fees on
// small writes floor to zero at fixed-point scale; the ledger rejects
// non-positive amounts, so a zero fee produces no entry at all.
func feeEntry(market *domain.Market, holder uuid.UUID, fee decimal.Decimal) *domain.LedgerEntry {
	if !fee.IsPositive() {
		return nil
	}
	return &domain.LedgerEntry{
		Type:   domain.LedgerPlatformFee,
		Asset:  market.PaymentAsset,
		From:   holder,
		To:     domain.TreasuryAccount,
		Amount: fee,
	}
}

// pair resolves the AMM pair backing a market. The pair is created with
// the market and shares its pair key.
func (s *OptionService) pair(ctx context.Context, market *domain.Market) (*amm.Pair, error) {
	return s.pairRepo.GetByKey(ctx, market.PoolAsset, market.PaymentAsset)
}

func (s *OptionService) broadcast(e *domain.Event) {
	if s.broadcaster != nil && e != nil {
		s.broadcaster.BroadcastEvent(e)
	}
}
