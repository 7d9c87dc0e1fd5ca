// Package main is the entry point for the tulip options back-office admin
// server. Runs on port 8081 and exposes admin-only endpoints protected by RBAC.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/tulipfi/options/internal/backoffice"
	"github.com/tulipfi/options/internal/config"
	"github.com/tulipfi/options/internal/repository"
	"github.com/tulipfi/options/internal/service"
)

func main() {
	// ── Config + logger ───────────────────────────────────────────────────────
	_ = godotenv.Load()
	cfg := config.MustLoad()

	var logHandler slog.Handler
	if cfg.IsProd() {
		logHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		logHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	logger.Info("starting tulip options backoffice server",
		"env", cfg.Server.Env, "port", cfg.Server.BackofficePort)

	// ── Database ──────────────────────────────────────────────────────────────
	db, err := sqlx.Connect("postgres", cfg.DB.DSN)
	if err != nil {
		logger.Error("database connection failed", "err", err)
		os.Exit(1)
	}
	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	if err = db.Ping(); err != nil {
		logger.Error("database ping failed", "err", err)
		os.Exit(1)
	}
	logger.Info("database connected")

	// ── Repositories ──────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	marketRepo := repository.NewMarketRepository(db)
	poolRepo := repository.NewPoolRepository(db)
	optionRepo := repository.NewOptionRepository(db)
	pairRepo := repository.NewPairRepository(db)
	oracleRepo := repository.NewOracleRepository(db)
	eventRepo := repository.NewEventRepository(db)

	// ── Services ──────────────────────────────────────────────────────────────
	oracleSvc := service.NewOracleService(db, pairRepo, oracleRepo, cfg)
	authSvc := service.NewAuthService(db, userRepo, ledgerRepo, cfg)
	poolSvc := service.NewPoolService(db, poolRepo, ledgerRepo, cfg)
	factorySvc := service.NewFactoryService(db, marketRepo, poolRepo, pairRepo, oracleRepo, ledgerRepo, eventRepo, oracleSvc, cfg)
	optionSvc := service.NewOptionService(db, optionRepo, marketRepo, poolRepo, pairRepo, ledgerRepo, eventRepo, oracleSvc, cfg)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Router ────────────────────────────────────────────────────────────────
	router := backoffice.SetupBackofficeRouter(backoffice.BackofficeDeps{
		AuthSvc:    authSvc,
		FactorySvc: factorySvc,
		PoolSvc:    poolSvc,
		OptionSvc:  optionSvc,
		OracleSvc:  oracleSvc,
		UserRepo:   userRepo,
		LedgerRepo: ledgerRepo,
		OptionRepo: optionRepo,
		PairRepo:   pairRepo,
		EventRepo:  eventRepo,
		Hub:        nil, // backoffice does not directly serve WS
		Cfg:        cfg,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.BackofficePort,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// ── Start ─────────────────────────────────────────────────────────────────
	go func() {
		logger.Info("backoffice http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("backoffice server error", "err", err)
			stop()
		}
	}()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("backoffice shutdown error", "err", err)
	}

	db.Close()
	logger.Info("backoffice server stopped cleanly")
}
