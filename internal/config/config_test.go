package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaultsToDemoMode(t *testing.T) {
	os.Unsetenv("EXCHANGE_MODE")
	os.Unsetenv("EXCHANGE_BASE_URL")
	os.Unsetenv("EXCHANGE_WS_URL")
	cfg := Load()

	if cfg.ExchangeMode != "demo" {
		t.Fatalf("expected default mode 'demo', got %q", cfg.ExchangeMode)
	}
	if cfg.ExchangeBaseURL != "https://demo-api.kalshi.co" {
		t.Fatalf("expected demo base URL, got %q", cfg.ExchangeBaseURL)
	}
}

func TestLoadProdModeSelectsProdEndpointsAndKeys(t *testing.T) {
	os.Setenv("EXCHANGE_MODE", "prod")
	os.Setenv("PROD_KEYID", "prod-key")
	defer func() {
		os.Unsetenv("EXCHANGE_MODE")
		os.Unsetenv("PROD_KEYID")
	}()

	cfg := Load()
	if cfg.ExchangeBaseURL != "https://api.elections.kalshi.com" {
		t.Fatalf("expected prod base URL, got %q", cfg.ExchangeBaseURL)
	}
	if cfg.ExchangeKeyID != "prod-key" {
		t.Fatalf("expected prod key id to be picked up, got %q", cfg.ExchangeKeyID)
	}
}

func TestLoadOverridesFromEnv(t *testing.T) {
	os.Setenv("MIN_EDGE_CENTS", "7")
	os.Setenv("POLL_INTERVAL_MS", "1000")
	defer func() {
		os.Unsetenv("MIN_EDGE_CENTS")
		os.Unsetenv("POLL_INTERVAL_MS")
	}()

	cfg := Load()
	if cfg.MinEdgeCents != 7 {
		t.Fatalf("expected MinEdgeCents 7, got %d", cfg.MinEdgeCents)
	}
	if cfg.PollInterval != time.Second {
		t.Fatalf("expected poll interval 1s, got %v", cfg.PollInterval)
	}
}

func TestEnvIntFallsBackOnNonNumeric(t *testing.T) {
	os.Setenv("MAX_QUANTITY", "not-a-number")
	defer os.Unsetenv("MAX_QUANTITY")

	cfg := Load()
	if cfg.MaxQuantity != 50 {
		t.Fatalf("expected fallback default 50 for invalid env value, got %d", cfg.MaxQuantity)
	}
}
