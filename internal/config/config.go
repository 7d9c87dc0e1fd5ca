// Package config provides application configuration loaded from environment variables.
// Use the package-level Get() function to obtain the singleton Config instance.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sub-config structs
// ──────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port                 string        // e.g. "8080"
	BackofficePort       string        // e.g. "8081"
	Env                  string        // "development" | "production"
	ReadTimeout          time.Duration // default 10s
	WriteTimeout         time.Duration // default 10s
	BackofficeAllowedIPs string        // comma-separated IPs; "" = allow all
	AllowedOrigins       string        // comma-separated CORS origins for production
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	DSN             string        // full postgres DSN
	MaxOpenConns    int           // default 25
	MaxIdleConns    int           // default 10
	ConnMaxLifetime time.Duration // default 5m
}

// JWTConfig holds JWT signing settings.
type JWTConfig struct {
	AccessSecret  string        // must be set
	RefreshSecret string        // must be set
	AccessTTL     time.Duration // default 15m
	RefreshTTL    time.Duration // default 720h (30 days)
}

// OptionsConfig holds the option lifecycle and pricing parameters.
type OptionsConfig struct {
	MinDuration     time.Duration // shortest allowed option, default 24h
	MaxDuration     time.Duration // longest allowed option, default 1344h (8 weeks)
	ActivationDelay time.Duration // holder may exercise only after this, default 15m
	PlatformFeeBps  int64         // fee on option size in basis points, default 100 (1%)
	VolatilityPct   int64         // volatility input of the time-value term, default 5
}

// PoolConfig holds liquidity pool parameters.
type PoolConfig struct {
	BootstrapMultiplier int64 // shares per unit on the first deposit, default 1000
}

// OracleConfig holds price oracle parameters.
type OracleConfig struct {
	ActivationDelay time.Duration // pair age before the oracle may be consulted, default 24h
	UpdateInterval  time.Duration // keeper snapshot cadence, default 1m
	SwapFeeBps      int64         // constant-product swap fee in basis points, default 30
	SnapshotKeep    int           // snapshots retained per pair, default 1000
}

// SchedulerConfig holds background loop cadences.
type SchedulerConfig struct {
	ExpirySweepInterval time.Duration // default 30s
	BroadcastInterval   time.Duration // ws price broadcast, default 5s
}

// ──────────────────────────────────────────────────────────────────────────────
// Top-level Config
// ──────────────────────────────────────────────────────────────────────────────

// Config is the root configuration object for the entire application.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	JWT       JWTConfig
	Options   OptionsConfig
	Pool      PoolConfig
	Oracle    OracleConfig
	Scheduler SchedulerConfig
}

// IsProd returns true when running in the production environment.
func (c *Config) IsProd() bool {
	return c.Server.Env == "production"
}

// Validate checks that all required configuration values are present and valid.
// Returns the first validation error encountered.
func (c *Config) Validate() error {
	var errs []error

	// JWT secrets are mandatory
	if c.JWT.AccessSecret == "" {
		errs = append(errs, errors.New("JWT_ACCESS_SECRET must be set"))
	}
	if c.JWT.RefreshSecret == "" {
		errs = append(errs, errors.New("JWT_REFRESH_SECRET must be set"))
	}

	// In production, DB DSN must be explicit
	if c.IsProd() && c.DB.DSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN must be set in production"))
	}

	if c.Options.MinDuration <= 0 || c.Options.MaxDuration < c.Options.MinDuration {
		errs = append(errs, fmt.Errorf(
			"option duration window invalid: min=%s max=%s",
			c.Options.MinDuration, c.Options.MaxDuration,
		))
	}
	if c.Options.PlatformFeeBps < 0 || c.Options.PlatformFeeBps > 10000 {
		errs = append(errs, fmt.Errorf(
			"OPTIONS_PLATFORM_FEE_BPS must be within [0, 10000], got %d", c.Options.PlatformFeeBps,
		))
	}
	if c.Options.VolatilityPct <= 0 {
		errs = append(errs, fmt.Errorf(
			"OPTIONS_VOLATILITY_PCT must be positive, got %d", c.Options.VolatilityPct,
		))
	}

	if c.Pool.BootstrapMultiplier <= 0 {
		errs = append(errs, fmt.Errorf(
			"POOL_BOOTSTRAP_MULTIPLIER must be positive, got %d", c.Pool.BootstrapMultiplier,
		))
	}

	if c.Oracle.SwapFeeBps < 0 || c.Oracle.SwapFeeBps >= 10000 {
		errs = append(errs, fmt.Errorf(
			"ORACLE_SWAP_FEE_BPS must be within [0, 10000), got %d", c.Oracle.SwapFeeBps,
		))
	}
	if c.Oracle.SnapshotKeep < 2 {
		errs = append(errs, fmt.Errorf(
			"ORACLE_SNAPSHOT_KEEP must be at least 2, got %d", c.Oracle.SnapshotKeep,
		))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Singleton
// ──────────────────────────────────────────────────────────────────────────────

var (
	instance *Config
	once     sync.Once
	loadErr  error
)

// Get returns the singleton Config, loading it once from environment variables.
// Panics if loading fails — call this early in main() to catch misconfigurations
// at startup.
func Get() *Config {
	once.Do(func() {
		instance, loadErr = load()
	})
	if loadErr != nil {
		panic(fmt.Sprintf("config: failed to load: %v", loadErr))
	}
	return instance
}

// MustLoad loads and validates configuration. Intended for use in main().
// Panics on any error so misconfiguration is caught immediately at boot.
func MustLoad() *Config {
	cfg := Get()
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("config: validation failed: %v", err))
	}
	return cfg
}

// ──────────────────────────────────────────────────────────────────────────────
// Internal loader
// ──────────────────────────────────────────────────────────────────────────────

func load() (*Config, error) {
	cfg := &Config{}

	// ── Server ────────────────────────────────────────────────────────────────
	cfg.Server = ServerConfig{
		Port:                 getEnv("SERVER_PORT", "8080"),
		BackofficePort:       getEnv("BACKOFFICE_PORT", "8081"),
		Env:                  getEnv("ENVIRONMENT", "development"),
		ReadTimeout:          getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:         getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
		BackofficeAllowedIPs: getEnv("BACKOFFICE_ALLOWED_IPS", ""),
		AllowedOrigins:       getEnv("ALLOWED_ORIGINS", ""),
	}

	// ── Database ──────────────────────────────────────────────────────────────
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		// Build DSN from individual components for convenience in dev
		dsn = fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_PORT", "5432"),
			getEnv("DB_USER", "postgres"),
			getEnv("DB_PASSWORD", ""),
			getEnv("DB_NAME", "tulip_options"),
			getEnv("DB_SSLMODE", "disable"),
		)
	}

	maxOpen, err := getInt("DB_MAX_OPEN_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("DB_MAX_OPEN_CONNS: %w", err)
	}
	maxIdle, err := getInt("DB_MAX_IDLE_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("DB_MAX_IDLE_CONNS: %w", err)
	}

	cfg.DB = DBConfig{
		DSN:             dsn,
		MaxOpenConns:    maxOpen,
		MaxIdleConns:    maxIdle,
		ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}

	// ── JWT ───────────────────────────────────────────────────────────────────
	cfg.JWT = JWTConfig{
		AccessSecret:  getEnv("JWT_ACCESS_SECRET", ""),
		RefreshSecret: getEnv("JWT_REFRESH_SECRET", ""),
		AccessTTL:     getDuration("JWT_ACCESS_TTL", 15*time.Minute),
		RefreshTTL:    getDuration("JWT_REFRESH_TTL", 30*24*time.Hour),
	}

	// ── Options ───────────────────────────────────────────────────────────────
	feeBps, err := getInt("OPTIONS_PLATFORM_FEE_BPS", 100)
	if err != nil {
		return nil, fmt.Errorf("OPTIONS_PLATFORM_FEE_BPS: %w", err)
	}
	volPct, err := getInt("OPTIONS_VOLATILITY_PCT", 5)
	if err != nil {
		return nil, fmt.Errorf("OPTIONS_VOLATILITY_PCT: %w", err)
	}

	cfg.Options = OptionsConfig{
		MinDuration:     getDuration("OPTIONS_MIN_DURATION", 24*time.Hour),
		MaxDuration:     getDuration("OPTIONS_MAX_DURATION", 8*7*24*time.Hour),
		ActivationDelay: getDuration("OPTIONS_ACTIVATION_DELAY", 15*time.Minute),
		PlatformFeeBps:  int64(feeBps),
		VolatilityPct:   int64(volPct),
	}

	// ── Pool ──────────────────────────────────────────────────────────────────
	bootstrap, err := getInt("POOL_BOOTSTRAP_MULTIPLIER", 1000)
	if err != nil {
		return nil, fmt.Errorf("POOL_BOOTSTRAP_MULTIPLIER: %w", err)
	}
	cfg.Pool = PoolConfig{
		BootstrapMultiplier: int64(bootstrap),
	}

	// ── Oracle ────────────────────────────────────────────────────────────────
	swapFee, err := getInt("ORACLE_SWAP_FEE_BPS", 30)
	if err != nil {
		return nil, fmt.Errorf("ORACLE_SWAP_FEE_BPS: %w", err)
	}
	snapKeep, err := getInt("ORACLE_SNAPSHOT_KEEP", 1000)
	if err != nil {
		return nil, fmt.Errorf("ORACLE_SNAPSHOT_KEEP: %w", err)
	}
	cfg.Oracle = OracleConfig{
		ActivationDelay: getDuration("ORACLE_ACTIVATION_DELAY", 24*time.Hour),
		UpdateInterval:  getDuration("ORACLE_UPDATE_INTERVAL", time.Minute),
		SwapFeeBps:      int64(swapFee),
		SnapshotKeep:    snapKeep,
	}

	// ── Scheduler ─────────────────────────────────────────────────────────────
	cfg.Scheduler = SchedulerConfig{
		ExpirySweepInterval: getDuration("SCHEDULER_EXPIRY_SWEEP_INTERVAL", 30*time.Second),
		BroadcastInterval:   getDuration("SCHEDULER_BROADCAST_INTERVAL", 5*time.Second),
	}

	return cfg, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helper functions
// ──────────────────────────────────────────────────────────────────────────────

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", v)
	}
	return n, nil
}

// getDuration parses an env var as a Go duration string (e.g. "15m", "2s").
// Falls back to defaultVal if the variable is unset or empty.
func getDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		// Log warning and fall back to default; do not crash on parse error
		return defaultVal
	}
	return d
}
