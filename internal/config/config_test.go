package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"PriceSentinel/internal/collector"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PUSHPLUS_TOKEN", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Feed.Variant != "gold" || cfg.Feed.Symbol != "AU9999" {
		t.Errorf("feed = %s/%s", cfg.Feed.Variant, cfg.Feed.Symbol)
	}
	if cfg.Feed.Timeout != 10*time.Second || cfg.Notifier.Timeout != 10*time.Second || cfg.Metrics.Timeout != 10*time.Second {
		t.Errorf("timeouts = %v/%v/%v", cfg.Feed.Timeout, cfg.Notifier.Timeout, cfg.Metrics.Timeout)
	}
	if len(cfg.Thresholds.Buy) != 3 || cfg.Thresholds.Buy[2] != -4.0 {
		t.Errorf("buy thresholds = %v", cfg.Thresholds.Buy)
	}
	if len(cfg.Thresholds.Sell) != 3 || cfg.Thresholds.Sell[0] != 1.5 {
		t.Errorf("sell thresholds = %v", cfg.Thresholds.Sell)
	}
	if len(cfg.Calendar.Sessions) != 3 || len(cfg.Calendar.Excluded) != 2 {
		t.Errorf("calendar = %+v", cfg.Calendar)
	}
	if cfg.Notifier.Topic != "gold_pro_trading" || cfg.Notifier.Backend != "pushplus" {
		t.Errorf("notifier = %+v", cfg.Notifier)
	}
	if cfg.MaskedToken() != "(not set)" {
		t.Errorf("masked token = %q", cfg.MaskedToken())
	}
}

func TestLoad_YAMLAndEnv(t *testing.T) {
	path := writeConfig(t, `
instrument:
  name: 日元
  unit: 元
feed:
  variant: forex
  symbol: jpycny
thresholds:
  buy: [-0.5, -1.0]
  sell: [0.5, 1.0]
  buy_advice: ["watch", "buy"]
  sell_advice: ["watch", "sell"]
  target_price: 20.1
calendar:
  timezone: Asia/Tokyo
  sessions:
    - {name: all, start: "00:00", end: "23:59"}
notifier:
  topic: jpy_monitor_vip
`)
	t.Setenv("PUSHPLUS_TOKEN", "abcdefghijkl")
	t.Setenv("PUSH_TOPIC", "override_topic")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.Notifier.Token != "abcdefghijkl" {
		t.Errorf("token not read from env")
	}
	if cfg.MaskedToken() != "abcd****ijkl" {
		t.Errorf("masked = %q", cfg.MaskedToken())
	}
	if cfg.Notifier.Topic != "override_topic" {
		t.Errorf("topic = %q", cfg.Notifier.Topic)
	}
	if cfg.Thresholds.TargetPrice != 20.1 {
		t.Errorf("target price = %v", cfg.Thresholds.TargetPrice)
	}
	if len(cfg.Calendar.Excluded) != 0 {
		t.Errorf("custom sessions should not pick up default exclusions: %+v", cfg.Calendar.Excluded)
	}

	buy, sell, err := cfg.Tiers()
	if err != nil {
		t.Fatal(err)
	}
	if len(buy) != 2 || buy[1].Advice != "buy" || len(sell) != 2 {
		t.Errorf("tiers = %+v / %+v", buy, sell)
	}
	opts := cfg.SinaOptions()
	if opts.Variant != collector.VariantForex || opts.Symbol != "jpycny" {
		t.Errorf("sina options = %+v", opts)
	}
}

func TestLoad_TelegramCredential(t *testing.T) {
	path := writeConfig(t, "notifier:\n  backend: telegram\n")
	t.Setenv("PUSHPLUS_TOKEN", "pp-token")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tg-token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Notifier.Token != "tg-token" || cfg.Notifier.ChatID != "42" {
		t.Errorf("notifier = %+v", cfg.Notifier)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unordered buy", "thresholds:\n  buy: [-2.5, -1.0, -4.0]\n"},
		{"positive buy", "thresholds:\n  buy: [1.0, -2.5, -4.0]\n"},
		{"unordered sell", "thresholds:\n  sell: [3.0, 1.5, 5.0]\n"},
		{"advice mismatch", "thresholds:\n  buy: [-1, -2, -3, -4]\n"},
		{"bad variant", "feed:\n  variant: crypto\n"},
		{"bad timezone", "calendar:\n  timezone: Mars/Olympus\n"},
		{"bad session", "calendar:\n  sessions:\n    - {name: x, start: \"25:00\", end: \"26:00\"}\n"},
		{"bad weekday", "calendar:\n  sessions:\n    - {name: x, start: \"09:00\", end: \"10:00\"}\n  excluded_weekdays:\n    - {day: someday}\n"},
		{"bad summary", "summary_window:\n  start: \"3pm\"\n"},
		{"pulse window too long", "pulse:\n  cadence_minutes: 10\n  window_minutes: 15\n"},
		{"telegram without chat", "notifier:\n  backend: telegram\n"},
		{"bad log level", "log:\n  level: loud\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TELEGRAM_CHAT_ID", "")
			cfg, err := Load(writeConfig(t, tt.yaml))
			if err != nil {
				if !errors.Is(err, ErrInvalid) {
					t.Fatalf("load error should wrap ErrInvalid: %v", err)
				}
				return
			}
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "feed: [unclosed\n"))
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestTradingCalendar_FromDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	cal, err := cfg.TradingCalendar()
	if err != nil {
		t.Fatal(err)
	}
	// Saturday 2026-10-17 03:00 in Shanghai is past the night-session cutoff.
	sat := time.Date(2026, time.October, 16, 19, 0, 0, 0, time.UTC)
	if cal.IsTradingNow(sat) {
		t.Error("saturday 03:00 should be closed")
	}
	satEarly := time.Date(2026, time.October, 16, 17, 0, 0, 0, time.UTC)
	if !cal.IsTradingNow(satEarly) {
		t.Error("saturday 01:00 should still be in the night session")
	}
}

func TestModeRules_PulseDisabled(t *testing.T) {
	t.Setenv("PULSE_DISABLED", "true")
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	rules, err := cfg.ModeRules()
	if err != nil {
		t.Fatal(err)
	}
	if rules.PulseCadence != 0 {
		t.Errorf("pulse cadence = %v, want disabled", rules.PulseCadence)
	}
}
