package config

import (
	"strings"
	"testing"
	"time"
)

func baseConfig() Config {
	return Config{
		Addr:               ":8080",
		DatabaseURL:        "postgres://localhost/staffpay",
		JWTSecret:          "secret",
		TokenTTL:           12 * time.Hour,
		Environment:        "development",
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 60,
	}
}

func TestValidateRequiresDatabaseURL(t *testing.T) {
	cfg := baseConfig()
	cfg.DatabaseURL = "  "
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected DATABASE_URL error, got %v", err)
	}
}

func TestValidateProductionGuards(t *testing.T) {
	cfg := baseConfig()
	cfg.Environment = "production"
	cfg.JWTSecret = ""
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected JWT_SECRET error, got %v", err)
	}

	cfg = baseConfig()
	cfg.Environment = "production"
	cfg.RunSeed = true
	cfg.SeedAdminPassword = ""
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "SEED_ADMIN_PASSWORD") {
		t.Fatalf("expected seed password error, got %v", err)
	}
}

func TestValidateLimits(t *testing.T) {
	cfg := baseConfig()
	cfg.MaxBodyBytes = 512
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected body limit error")
	}

	cfg = baseConfig()
	cfg.RateLimitPerMinute = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected rate limit error")
	}

	cfg = baseConfig()
	cfg.EmailEnabled = true
	cfg.SMTPHost = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected SMTP_HOST error")
	}

	if err := baseConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://db/app")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "120")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("METRICS_ENABLED", "false")

	cfg := Load()

	if cfg.DatabaseURL != "postgres://db/app" {
		t.Fatalf("unexpected database url %q", cfg.DatabaseURL)
	}
	if cfg.TokenTTL != 30*time.Minute {
		t.Fatalf("unexpected ttl %v", cfg.TokenTTL)
	}
	if cfg.RateLimitPerMinute != 120 {
		t.Fatalf("unexpected rate limit %d", cfg.RateLimitPerMinute)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example.com" {
		t.Fatalf("unexpected origins %v", cfg.CORSOrigins)
	}
	if cfg.MetricsEnabled {
		t.Fatal("expected metrics disabled")
	}
}

func TestLoadFallsBackOnBadValues(t *testing.T) {
	t.Setenv("TOKEN_TTL", "not-a-duration")
	t.Setenv("SMTP_PORT", "not-a-port")

	cfg := Load()

	if cfg.TokenTTL != 12*time.Hour {
		t.Fatalf("expected default ttl, got %v", cfg.TokenTTL)
	}
	if cfg.SMTPPort != 587 {
		t.Fatalf("expected default smtp port, got %d", cfg.SMTPPort)
	}
}
