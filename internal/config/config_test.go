package config

import (
	"testing"
	"time"
)

func TestLoadDevelopmentDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DefaultCurrency != "UZS" || cfg.RequireCardOwner {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.MerchantCacheTTL != defaultMerchantCacheTTL || cfg.ShutdownPeriod != defaultShutdownDelay {
		t.Fatalf("unexpected durations: %+v", cfg)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("unexpected address %q", cfg.Address())
	}
}

func TestLoadProductionRequiresBackends(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	if _, err := Load(); err == nil {
		t.Fatal("expected missing DATABASE_URL error")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DEFAULT_CURRENCY", "usd")
	t.Setenv("REQUIRE_CARD_OWNER", "true")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")
	t.Setenv("MERCHANT_CACHE_TTL", "1m")
	t.Setenv("PORT", ":9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DefaultCurrency != "USD" || !cfg.RequireCardOwner {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if cfg.ShutdownPeriod != 3*time.Second || cfg.MerchantCacheTTL != time.Minute {
		t.Fatalf("unexpected durations: %+v", cfg)
	}
	if cfg.Address() != ":9090" {
		t.Fatalf("unexpected address %q", cfg.Address())
	}

	t.Setenv("REQUIRE_CARD_OWNER", "maybe")
	if _, err := Load(); err == nil {
		t.Fatal("expected invalid REQUIRE_CARD_OWNER error")
	}
}
