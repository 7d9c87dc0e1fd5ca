// Package scheduler manages the three background goroutines that run the
// options engine lifecycle:
//  1. oracleUpdateLoop   – snapshots every AMM pair's price accumulators.
//  2. expirySweepLoop    – expires options past their expiration time.
//  3. priceBroadcastLoop – pushes oracle prices and pool state to WS clients.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/tulipfi/options/internal/config"
	"github.com/tulipfi/options/internal/service"
	"github.com/tulipfi/options/internal/ws"
)

// ──────────────────────────────────────────────────────────────────────────────
// WsHub interface — minimally required from the Hub
// ──────────────────────────────────────────────────────────────────────────────

// WsHub defines the broadcast operations the Scheduler needs from the
// WebSocket hub. Declared here so the scheduler package does not depend on
// the hub implementation.
type WsHub interface {
	BroadcastPriceUpdate(msg ws.PriceUpdateMessage)
}

// ──────────────────────────────────────────────────────────────────────────────
// Scheduler
// ──────────────────────────────────────────────────────────────────────────────

// Scheduler wires together the services and runs the background loops.
// Call Start(ctx) once from main(); cancel the context to shut it down
// gracefully.
type Scheduler struct {
	oracleSvc  *service.OracleService
	optionSvc  *service.OptionService
	factorySvc *service.FactoryService
	hub        WsHub
	cfg        *config.Config
	logger     *slog.Logger
}

// NewScheduler creates a Scheduler.
func NewScheduler(
	oracleSvc *service.OracleService,
	optionSvc *service.OptionService,
	factorySvc *service.FactoryService,
	hub WsHub,
	cfg *config.Config,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		oracleSvc:  oracleSvc,
		optionSvc:  optionSvc,
		factorySvc: factorySvc,
		hub:        hub,
		cfg:        cfg,
		logger:     logger,
	}
}

// Start launches the background goroutines. It returns immediately; all
// loops run until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.oracleUpdateLoop(ctx)
	go s.expirySweepLoop(ctx)
	go s.priceBroadcastLoop(ctx)
	s.logger.Info("scheduler started")
}

// ──────────────────────────────────────────────────────────────────────────────
// oracleUpdateLoop
// ──────────────────────────────────────────────────────────────────────────────

// oracleUpdateLoop appends a snapshot for every pair on the configured
// cadence. Each tick also advances the cumulative accumulators, so the TWAP
// window is never older than one interval. Every pruneEvery ticks the
// snapshot history is trimmed to the configured retention count.
func (s *Scheduler) oracleUpdateLoop(ctx context.Context) {
	defer s.recoverAndLog("oracleUpdateLoop")

	ticker := time.NewTicker(s.cfg.Oracle.UpdateInterval)
	defer ticker.Stop()

	const pruneEvery = 60
	tick := 0

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("oracleUpdateLoop: shutting down")
			return
		case <-ticker.C:
			if err := s.oracleSvc.UpdateAll(ctx); err != nil {
				s.logger.Error("oracleUpdateLoop: UpdateAll", "err", err)
			}
			tick++
			if tick%pruneEvery == 0 {
				if err := s.oracleSvc.PruneAll(ctx); err != nil {
					s.logger.Error("oracleUpdateLoop: PruneAll", "err", err)
				}
			}
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// expirySweepLoop
// ──────────────────────────────────────────────────────────────────────────────

// expirySweepLoop checks for expired active options on the configured cadence
// and unlocks them in per-market batches.
func (s *Scheduler) expirySweepLoop(ctx context.Context) {
	defer s.recoverAndLog("expirySweepLoop")

	ticker := time.NewTicker(s.cfg.Scheduler.ExpirySweepInterval)
	defer ticker.Stop()

	const sweepBatch = 500

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("expirySweepLoop: shutting down")
			return
		case <-ticker.C:
			n, err := s.optionSvc.SweepExpired(ctx, sweepBatch)
			if err != nil {
				s.logger.Error("expirySweepLoop: SweepExpired", "err", err)
				continue
			}
			if n > 0 {
				s.logger.Info("expired options unlocked", "count", n)
			}
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// priceBroadcastLoop
// ──────────────────────────────────────────────────────────────────────────────

// priceBroadcastLoop pushes each market's oracle price and pool totals to all
// connected WS clients on the configured cadence.
func (s *Scheduler) priceBroadcastLoop(ctx context.Context) {
	defer s.recoverAndLog("priceBroadcastLoop")

	ticker := time.NewTicker(s.cfg.Scheduler.BroadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("priceBroadcastLoop: shutting down")
			return
		case <-ticker.C:
			s.broadcastPrices(ctx)
		}
	}
}

// broadcastPrices is the inner body of priceBroadcastLoop, extracted so that
// the defer/recover in the loop catches panics correctly.
func (s *Scheduler) broadcastPrices(ctx context.Context) {
	if s.hub == nil {
		return
	}

	markets, _, err := s.factorySvc.AllMarkets(ctx, 500, 0)
	if err != nil {
		s.logger.Warn("priceBroadcastLoop: list markets", "err", err)
		return
	}

	for _, m := range markets {
		summary, err := s.factorySvc.Summary(ctx, m)
		if err != nil {
			continue
		}
		s.hub.BroadcastPriceUpdate(ws.PriceUpdateMessage{
			Type:        ws.MsgTypePriceUpdate,
			MarketID:    m.ID,
			PairKey:     m.PairKey,
			OraclePrice: summary.OraclePrice,
			Reserve:     summary.PoolReserve,
			TotalShares: summary.TotalShares,
			Timestamp:   time.Now().UTC(),
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Panic recovery
// ──────────────────────────────────────────────────────────────────────────────

// recoverAndLog is deferred inside each goroutine to catch unexpected panics,
// log them, and allow the scheduler to continue running.
func (s *Scheduler) recoverAndLog(loop string) {
	if r := recover(); r != nil {
		s.logger.Error("PANIC recovered in scheduler loop",
			"loop", loop, "panic", r)
	}
}
