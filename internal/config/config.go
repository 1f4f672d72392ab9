package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every environment-sourced setting the supervisor needs to
// boot the pipeline. All fields are REQUIRED-or-DEFAULTED (spec.md §6):
// nothing here causes a startup failure by itself. Missing signing
// credentials make the supervisor run unauthenticated; a key file that is
// set but cannot be loaded makes it exit.
type Config struct {
	// Score feed
	ScoreProviderAPIKey string
	PollInterval        time.Duration

	// Exchange API
	ExchangeMode    string // "demo" or "prod"
	ExchangeBaseURL string
	ExchangeWSURL   string
	ExchangeKeyID   string
	ExchangeKeyFile string
	ExchangeKeyAlgo string // "rsa-pss" or "ed25519"

	// Market series config document
	SeriesConfigPath string

	// Audit log
	AuditDBPath string

	// Trading limits (mirrored into internal/core/risk.Limits by the
	// supervisor; kept here so every knob lives in one env-var surface)
	MinEdgeCents        int
	NetPayoutCents       int
	MaxPriceSlippageCents int
	DefaultQuantity      int
	MaxQuantity          int
	MaxTradesPerGame     int
	MaxOpenExposureCents int
	MaxDailyLossCents    int

	// Timeouts
	RestTimeout     time.Duration
	WSConnectTimeout time.Duration
	WSIdleTimeout   time.Duration
	MarketFetchTimeout time.Duration

	// Sniper circuit breaker
	BreakerFailureThreshold int
	BreakerCooldown         time.Duration
	BreakerMaxCooldown      time.Duration

	// Graceful shutdown
	DrainGracePeriod time.Duration

	// Telemetry
	LogLevel string
}

func Load() *Config {
	_ = godotenv.Load()

	mode := envStr("EXCHANGE_MODE", "demo")

	var keyID, keyFile, baseURL, wsURL string
	if mode == "prod" {
		keyID = envStr("PROD_KEYID", "")
		keyFile = envStr("PROD_KEYFILE", "")
		baseURL = envStr("EXCHANGE_BASE_URL", "https://api.elections.kalshi.com")
		wsURL = envStr("EXCHANGE_WS_URL", "wss://api.elections.kalshi.com/trade-api/ws/v2")
	} else {
		keyID = envStr("DEMO_KEYID", "")
		keyFile = envStr("DEMO_KEYFILE", "")
		baseURL = envStr("EXCHANGE_BASE_URL", "https://demo-api.kalshi.co")
		wsURL = envStr("EXCHANGE_WS_URL", "wss://demo-api.kalshi.co/trade-api/ws/v2")
	}

	return &Config{
		ScoreProviderAPIKey: envStr("SCORE_PROVIDER_API_KEY", ""),
		PollInterval:        time.Duration(envInt("POLL_INTERVAL_MS", 750)) * time.Millisecond,

		ExchangeMode:    mode,
		ExchangeBaseURL: baseURL,
		ExchangeWSURL:   wsURL,
		ExchangeKeyID:   keyID,
		ExchangeKeyFile: keyFile,
		ExchangeKeyAlgo: envStr("EXCHANGE_KEY_ALGO", "rsa-pss"),

		SeriesConfigPath: envStr("SERIES_CONFIG_PATH", "internal/config/series.yaml"),
		AuditDBPath:      envStr("AUDIT_DB_PATH", "data/audit.db"),

		MinEdgeCents:          envInt("MIN_EDGE_CENTS", 3),
		NetPayoutCents:        envInt("NET_PAYOUT_CENTS", 93),
		MaxPriceSlippageCents: envInt("MAX_PRICE_SLIPPAGE_CENTS", 2),
		DefaultQuantity:       envInt("DEFAULT_QUANTITY", 10),
		MaxQuantity:           envInt("MAX_QUANTITY", 50),
		MaxTradesPerGame:      envInt("MAX_TRADES_PER_GAME", 20),
		MaxOpenExposureCents:  envInt("MAX_OPEN_EXPOSURE_CENTS", 500000),
		MaxDailyLossCents:     envInt("MAX_DAILY_LOSS_CENTS", 10000),

		RestTimeout:        time.Duration(envInt("REST_TIMEOUT_MS", 500)) * time.Millisecond,
		WSConnectTimeout:   time.Duration(envInt("WS_CONNECT_TIMEOUT_SEC", 5)) * time.Second,
		WSIdleTimeout:      time.Duration(envInt("WS_IDLE_TIMEOUT_SEC", 60)) * time.Second,
		MarketFetchTimeout: time.Duration(envInt("MARKET_FETCH_TIMEOUT_SEC", 3)) * time.Second,

		BreakerFailureThreshold: envInt("BREAKER_FAILURE_THRESHOLD", 3),
		BreakerCooldown:         time.Duration(envInt("BREAKER_COOLDOWN_SEC", 30)) * time.Second,
		BreakerMaxCooldown:      time.Duration(envInt("BREAKER_MAX_COOLDOWN_SEC", 300)) * time.Second,

		DrainGracePeriod: time.Duration(envInt("DRAIN_GRACE_PERIOD_SEC", 5)) * time.Second,

		LogLevel: envStr("LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
