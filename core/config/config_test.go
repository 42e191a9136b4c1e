package config

import (
	"strings"
	"testing"
)

func validBase() *Config {
	return &Config{
		Telegram: TelegramConfig{Token: "123:abc"},
	}
}

func TestNormalizeDefaultsToLongpoll(t *testing.T) {
	cfg := validBase()
	if err := Normalize(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %q, expected %q", cfg.Telegram.RunMode, RunModeLongpoll)
	}
}

func TestNormalizeAcceptsPollingAlias(t *testing.T) {
	cfg := validBase()
	cfg.Telegram.RunMode = "polling"
	if err := Normalize(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %q, expected %q", cfg.Telegram.RunMode, RunModeLongpoll)
	}
}

func TestNormalizeRequiresToken(t *testing.T) {
	cfg := &Config{}
	err := Normalize(cfg)
	if err == nil || !strings.Contains(err.Error(), "token") {
		t.Fatalf("expected token error, got %v", err)
	}
}

func TestNormalizeWebhookRequiresEndpoint(t *testing.T) {
	cfg := validBase()
	cfg.Telegram.RunMode = RunModeWebhook
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for webhook mode without url")
	}

	cfg.Webhook = WebhookConfig{URL: "https://example.com/bot", Listen: "0.0.0.0", Port: 8443}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNormalizeRateLimitExclusions(t *testing.T) {
	cfg := validBase()
	cfg.RateLimit.ExcludeUpdates = []string{" Callback ", "PRE_CHECKOUT"}
	if err := Normalize(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RateLimit.ExcludeUpdates[0] != UpdateCallback || cfg.RateLimit.ExcludeUpdates[1] != UpdatePreCheckout {
		t.Fatalf("exclusions not normalized: %v", cfg.RateLimit.ExcludeUpdates)
	}

	cfg.RateLimit.ExcludeUpdates = []string{"bogus"}
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for unknown exclusion")
	}
}
