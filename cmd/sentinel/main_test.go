package main

import (
	"os"
	"path/filepath"
	"testing"

	"PriceSentinel/internal/config"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func TestRun_InvalidConfigExitsNonZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("thresholds:\n  buy: [-4.0, -1.0]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", path)
	if code := run(); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
}

func TestBuildRunner(t *testing.T) {
	t.Setenv("PUSHPLUS_TOKEN", "")
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	cfg.Thresholds.TargetPrice = 480
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	r, err := buildRunner(cfg, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if r.Calendar.Location == nil || r.Calendar.Location.String() != "Asia/Shanghai" {
		t.Errorf("calendar location = %v", r.Calendar.Location)
	}
	if !r.Engine.Floor.Equal(decimal.NewFromInt(480)) {
		t.Errorf("floor = %s", r.Engine.Floor)
	}
	if r.Notifier.Name() != "pushplus" || r.Metrics == nil {
		t.Errorf("notifier = %s, metrics = %v", r.Notifier.Name(), r.Metrics)
	}
}
