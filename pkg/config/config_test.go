package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "dev" {
		t.Fatalf("expected App.Env to be dev, got %q", cfg.App.Env)
	}
	if cfg.Store.Backend != StoreBackendMemory {
		t.Fatalf("expected memory store backend, got %q", cfg.Store.Backend)
	}
	if cfg.Pricing.FreeShippingThresholdCents != 10000 {
		t.Fatalf("unexpected free shipping threshold %d", cfg.Pricing.FreeShippingThresholdCents)
	}
	if len(cfg.Pricing.PromoCodes) != 1 || cfg.Pricing.PromoCodes[0] != "WELCOME10:0.10" {
		t.Fatalf("unexpected promo codes %v", cfg.Pricing.PromoCodes)
	}
	if cfg.Payment.MockDelay != time.Second {
		t.Fatalf("expected 1s mock delay, got %v", cfg.Payment.MockDelay)
	}
	if cfg.Mock.Port != "5124" || cfg.Mock.FailOrders {
		t.Fatalf("unexpected mock backend defaults %+v", cfg.Mock)
	}
	if cfg.Mock.IdempotencyTTL != 24*time.Hour {
		t.Fatalf("expected 24h idempotency ttl, got %v", cfg.Mock.IdempotencyTTL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvPromoCodes, "WELCOME10:0.10,SPRING:0.25")
	t.Setenv(EnvPaymentDelay, "250ms")
	t.Setenv(EnvPaymentDecline, "true")
	t.Setenv(EnvOrdersBaseURL, "https://api.example.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if len(cfg.Pricing.PromoCodes) != 2 {
		t.Fatalf("expected 2 promo codes, got %v", cfg.Pricing.PromoCodes)
	}
	if cfg.Payment.MockDelay != 250*time.Millisecond || !cfg.Payment.MockDecline {
		t.Fatalf("unexpected payment config %+v", cfg.Payment)
	}
	if cfg.Orders.BaseURL != "https://api.example.test" {
		t.Fatalf("unexpected orders base url %q", cfg.Orders.BaseURL)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv(EnvAppEnv); err != nil {
		t.Fatalf("failed to unset %s: %v", EnvAppEnv, err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvStoreBackend, "filesystem")

	if _, err := Load(); err == nil {
		t.Fatal("expected unknown store backend to fail")
	}
}

func TestLoad_RedisBackendNeedsAddress(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvStoreBackend, StoreBackendRedis)

	if _, err := Load(); err == nil {
		t.Fatal("expected redis backend without url to fail")
	}

	t.Setenv(EnvRedisURL, "redis://localhost:6379/0")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Fatalf("unexpected Redis URL: %q", cfg.Redis.URL)
	}
}

func TestLoad_SQLBackendBuildsDSN(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvStoreBackend, StoreBackendSQL)
	t.Setenv(EnvDBDriver, DBDriverPostgres)

	if _, err := Load(); err == nil {
		t.Fatal("expected postgres without host details to fail")
	}

	t.Setenv(EnvDBHost, "db")
	t.Setenv(EnvDBUser, "shop")
	t.Setenv(EnvDBName, "yulishop")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DB.DSN != "postgres://shop@db:5432/yulishop?sslmode=disable" {
		t.Fatalf("unexpected dsn %q", cfg.DB.DSN)
	}
}

func TestLoad_SQLiteDefaultDSN(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv(EnvStoreBackend, StoreBackendSQL)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.DB.IsSQLite() || cfg.DB.DSN == "" {
		t.Fatalf("expected sqlite dsn, got driver=%q dsn=%q", cfg.DB.Driver, cfg.DB.DSN)
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv(EnvAppEnv, "dev")
	for _, key := range []string{EnvStoreBackend, EnvRedisURL, EnvRedisAddr, EnvDBDSN, EnvDBDriver, EnvDBHost, EnvDBUser, EnvDBName, EnvPromoCodes, EnvPaymentDelay, EnvPaymentDecline, EnvOrdersBaseURL} {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}

	prodConfig := AppConfig{Env: "prod"}
	if !prodConfig.IsProd() {
		t.Fatalf("expected IsProd true for %q", prodConfig.Env)
	}
	if prodConfig.IsDev() {
		t.Fatalf("expected IsDev false for %q", prodConfig.Env)
	}
}
