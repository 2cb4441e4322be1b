package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"PriceSentinel/internal/collector"
	"PriceSentinel/internal/config"
	"PriceSentinel/internal/logger"
	"PriceSentinel/internal/metrics"
	"PriceSentinel/internal/notifier"
	"PriceSentinel/internal/scheduler"
	"PriceSentinel/internal/strategy"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code. Only configuration errors are fatal.
func run() int {
	boot := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}).With().Timestamp().Logger()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		boot.Error().Err(err).Str("path", cfgPath).Msg("load config")
		return 1
	}
	if err := cfg.Validate(); err != nil {
		boot.Error().Err(err).Msg("config validation")
		return 1
	}

	log, closer, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		boot.Error().Err(err).Msg("init logger")
		return 1
	}
	defer closer.Close()

	runner, err := buildRunner(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("init runner")
		return 1
	}
	log.Info().
		Str("source", runner.Source.Name()).
		Str("backend", runner.Notifier.Name()).
		Str("topic", runner.Topic).
		Str("token", cfg.MaskedToken()).
		Msg("PriceSentinel starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Schedule.Cron == "" {
		runner.RunOnce(ctx)
		return 0
	}

	sched := scheduler.NewScheduler(ctx, runner, runner.Calendar.Location, log)
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		log.Error().Err(err).Msg("register cron task")
		return 1
	}
	sched.Start()

	log.Info().Msg("PriceSentinel is running. Press Ctrl+C to stop.")
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping...")
	cancel()
	sched.Stop()
	log.Info().Msg("PriceSentinel stopped")
	return 0
}

func buildRunner(cfg *config.Config, log zerolog.Logger) (*scheduler.Runner, error) {
	buy, sell, err := cfg.Tiers()
	if err != nil {
		return nil, err
	}
	cal, err := cfg.TradingCalendar()
	if err != nil {
		return nil, err
	}
	rules, err := cfg.ModeRules()
	if err != nil {
		return nil, err
	}
	src, err := collector.NewSinaSource(cfg.SinaOptions())
	if err != nil {
		return nil, err
	}

	engine := strategy.NewEngine(buy, sell)
	engine.Floor = decimal.NewFromFloat(cfg.Thresholds.TargetPrice)

	var n notifier.Notifier
	switch cfg.Notifier.Backend {
	case "telegram":
		n = notifier.NewTelegramNotifier(cfg.Notifier.Token, cfg.Notifier.ChatID, cfg.Proxy, cfg.Notifier.Timeout)
	default:
		n = notifier.NewPushPlusNotifier(cfg.Notifier.Token, cfg.Notifier.Endpoint, cfg.Proxy, cfg.Notifier.Timeout)
	}

	return &scheduler.Runner{
		Calendar:     cal,
		Engine:       engine,
		Rules:        rules,
		Composer:     notifier.Composer{Instrument: cfg.Instrument.Name, Unit: cfg.Instrument.Unit},
		Source:       src,
		Notifier:     n,
		Topic:        cfg.Notifier.Topic,
		Metrics:      metrics.New(cfg.Metrics.PushgatewayURL, cfg.Metrics.Job, cfg.Metrics.Timeout),
		Log:          log,
		FetchTimeout: cfg.Feed.Timeout,
		SendTimeout:  cfg.Notifier.Timeout,
	}, nil
}
