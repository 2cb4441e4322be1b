package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"PriceSentinel/internal/calendar"
	"PriceSentinel/internal/collector"
	"PriceSentinel/internal/strategy"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every configuration error. A deployment with an invalid
// configuration must not start.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all application configuration.
type Config struct {
	Instrument struct {
		Name string `yaml:"name" default:"黄金9999"`
		Unit string `yaml:"unit" default:"元/克"`
	} `yaml:"instrument"`
	Feed struct {
		Variant string        `yaml:"variant" default:"gold" validate:"oneof=gold forex"`
		Symbol  string        `yaml:"symbol" default:"AU9999" validate:"required"`
		BaseURL string        `yaml:"base_url" validate:"omitempty,url"`
		Timeout time.Duration `yaml:"timeout" default:"10s" validate:"gt=0"`
		Layout  *LayoutConfig `yaml:"layout"`
	} `yaml:"feed"`
	Thresholds struct {
		Buy        []float64 `yaml:"buy" default:"[-1.0,-2.5,-4.0]" validate:"min=1"`
		Sell       []float64 `yaml:"sell" default:"[1.5,3.0,5.0]" validate:"min=1"`
		BuyAdvice  []string  `yaml:"buy_advice"`
		SellAdvice []string  `yaml:"sell_advice"`
		// TargetPrice is an absolute buy floor, checked when no tier fires.
		TargetPrice float64 `yaml:"target_price" validate:"gte=0"`
	} `yaml:"thresholds"`
	Calendar struct {
		Timezone string            `yaml:"timezone" default:"Asia/Shanghai"`
		Sessions []SessionConfig   `yaml:"sessions" validate:"dive"`
		Excluded []ExclusionConfig `yaml:"excluded_weekdays" validate:"dive"`
	} `yaml:"calendar"`
	Pulse struct {
		Disabled       bool `yaml:"disabled"`
		CadenceMinutes int  `yaml:"cadence_minutes" default:"120" validate:"gte=1,lte=1440"`
		WindowMinutes  int  `yaml:"window_minutes" default:"15" validate:"gte=1"`
	} `yaml:"pulse"`
	SummaryWindow struct {
		Start string `yaml:"start" default:"15:20"`
		End   string `yaml:"end" default:"15:35"`
	} `yaml:"summary_window"`
	Notifier struct {
		Backend  string        `yaml:"backend" default:"pushplus" validate:"oneof=pushplus telegram"`
		Topic    string        `yaml:"topic" default:"gold_pro_trading"`
		Endpoint string        `yaml:"endpoint" validate:"omitempty,url"`
		Timeout  time.Duration `yaml:"timeout" default:"10s" validate:"gt=0"`
		ChatID   string        `yaml:"chat_id"`
		// Credentials come from the environment only.
		Token string `yaml:"-"`
	} `yaml:"notifier"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Metrics struct {
		PushgatewayURL string        `yaml:"pushgateway_url" validate:"omitempty,url"`
		Job            string        `yaml:"job" default:"price_sentinel"`
		Timeout        time.Duration `yaml:"timeout" default:"10s" validate:"gt=0"`
	} `yaml:"metrics"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Proxy string `yaml:"proxy"`
}

// LayoutConfig overrides feed field positions.
type LayoutConfig struct {
	Current int `yaml:"current" validate:"gte=0"`
	High    int `yaml:"high" validate:"gte=0"`
	Low     int `yaml:"low" validate:"gte=0"`
	Open    int `yaml:"open" validate:"gte=0"`
}

// SessionConfig is one trading session in HH:MM form.
type SessionConfig struct {
	Name  string `yaml:"name"`
	Start string `yaml:"start" validate:"required"`
	End   string `yaml:"end" validate:"required"`
}

// ExclusionConfig takes a weekday out of trading, optionally only after Until.
type ExclusionConfig struct {
	Day   string `yaml:"day" validate:"required"`
	Until string `yaml:"until"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides and fills defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalid, path, err)
		}
	}

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	applyEnv(cfg)
	applyListDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	switch cfg.Notifier.Backend {
	case "telegram":
		cfg.Notifier.Token = os.Getenv("TELEGRAM_BOT_TOKEN")
	default:
		cfg.Notifier.Token = os.Getenv("PUSHPLUS_TOKEN")
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Notifier.ChatID = v
	}
	if v := os.Getenv("PUSH_TOPIC"); v != "" {
		cfg.Notifier.Topic = v
	}
	if v := os.Getenv("FEED_VARIANT"); v != "" {
		cfg.Feed.Variant = v
	}
	if v := os.Getenv("FEED_SYMBOL"); v != "" {
		cfg.Feed.Symbol = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("PUSHGATEWAY_URL"); v != "" {
		cfg.Metrics.PushgatewayURL = v
	}
	if v := os.Getenv("SCHEDULE_CRON"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("PULSE_DISABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Pulse.Disabled = b
		}
	}
}

// applyListDefaults installs the Shanghai Gold Exchange sessions when none
// are configured, and the stock advice texts for three-tier tables.
func applyListDefaults(cfg *Config) {
	if len(cfg.Calendar.Sessions) == 0 {
		cfg.Calendar.Sessions = []SessionConfig{
			{Name: "morning", Start: "09:00", End: "11:35"},
			{Name: "afternoon", Start: "13:30", End: "15:35"},
			{Name: "night", Start: "20:00", End: "02:35"},
		}
		if len(cfg.Calendar.Excluded) == 0 {
			cfg.Calendar.Excluded = []ExclusionConfig{
				{Day: "saturday", Until: "02:35"},
				{Day: "sunday"},
			}
		}
	}
	if len(cfg.Thresholds.BuyAdvice) == 0 && len(cfg.Thresholds.Buy) == len(strategy.DefaultBuyAdvice) {
		cfg.Thresholds.BuyAdvice = strategy.DefaultBuyAdvice
	}
	if len(cfg.Thresholds.SellAdvice) == 0 && len(cfg.Thresholds.Sell) == len(strategy.DefaultSellAdvice) {
		cfg.Thresholds.SellAdvice = strategy.DefaultSellAdvice
	}
}

var validate = validator.New()

// Validate checks struct constraints and that every derived value (tiers,
// calendar, windows) can be built.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, _, err := c.Tiers(); err != nil {
		return err
	}
	if _, err := c.TradingCalendar(); err != nil {
		return err
	}
	if _, err := c.ModeRules(); err != nil {
		return err
	}
	if c.Pulse.WindowMinutes >= c.Pulse.CadenceMinutes {
		return fmt.Errorf("%w: pulse.window_minutes must be shorter than pulse.cadence_minutes", ErrInvalid)
	}
	if c.Notifier.Backend == "telegram" && c.Notifier.ChatID == "" {
		return fmt.Errorf("%w: notifier.chat_id is required for telegram", ErrInvalid)
	}
	return nil
}

// Tiers builds the buy and sell tier tables.
func (c *Config) Tiers() (buy, sell strategy.TierTable, err error) {
	buy, err = strategy.NewBuyTable(c.Thresholds.Buy, c.Thresholds.BuyAdvice)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: thresholds: %v", ErrInvalid, err)
	}
	sell, err = strategy.NewSellTable(c.Thresholds.Sell, c.Thresholds.SellAdvice)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: thresholds: %v", ErrInvalid, err)
	}
	return buy, sell, nil
}

// Location loads the calendar timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Calendar.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: calendar.timezone: %v", ErrInvalid, err)
	}
	return loc, nil
}

// TradingCalendar builds the session calendar.
func (c *Config) TradingCalendar() (calendar.Calendar, error) {
	loc, err := c.Location()
	if err != nil {
		return calendar.Calendar{}, err
	}
	cal := calendar.Calendar{Location: loc}
	for _, s := range c.Calendar.Sessions {
		w, err := parseWindow(s.Start, s.End)
		if err != nil {
			return calendar.Calendar{}, fmt.Errorf("%w: calendar session %q: %v", ErrInvalid, s.Name, err)
		}
		cal.Sessions = append(cal.Sessions, calendar.Session{Name: s.Name, Window: w})
	}
	for _, ex := range c.Calendar.Excluded {
		day, err := parseWeekday(ex.Day)
		if err != nil {
			return calendar.Calendar{}, fmt.Errorf("%w: calendar.excluded_weekdays: %v", ErrInvalid, err)
		}
		rule := calendar.ExcludedWeekday{Day: day}
		if ex.Until != "" {
			until, err := calendar.ParseTimeOfDay(ex.Until)
			if err != nil {
				return calendar.Calendar{}, fmt.Errorf("%w: calendar.excluded_weekdays %s: %v", ErrInvalid, ex.Day, err)
			}
			rule.Until = &until
		}
		cal.Excluded = append(cal.Excluded, rule)
	}
	return cal, nil
}

// ModeRules builds the message mode rules.
func (c *Config) ModeRules() (strategy.ModeRules, error) {
	loc, err := c.Location()
	if err != nil {
		return strategy.ModeRules{}, err
	}
	w, err := parseWindow(c.SummaryWindow.Start, c.SummaryWindow.End)
	if err != nil {
		return strategy.ModeRules{}, fmt.Errorf("%w: summary_window: %v", ErrInvalid, err)
	}
	rules := strategy.ModeRules{Location: loc, SummaryWindow: w}
	if !c.Pulse.Disabled {
		rules.PulseCadence = time.Duration(c.Pulse.CadenceMinutes) * time.Minute
		rules.PulseWindow = time.Duration(c.Pulse.WindowMinutes) * time.Minute
	}
	return rules, nil
}

// SinaOptions builds the quote feed options.
func (c *Config) SinaOptions() collector.SinaOptions {
	opts := collector.SinaOptions{
		Variant: collector.Variant(c.Feed.Variant),
		Symbol:  c.Feed.Symbol,
		BaseURL: c.Feed.BaseURL,
		Timeout: c.Feed.Timeout,
		Proxy:   c.Proxy,
	}
	if l := c.Feed.Layout; l != nil {
		opts.Layout = &collector.FieldLayout{Current: l.Current, High: l.High, Low: l.Low, Open: l.Open}
	}
	return opts
}

// MaskedToken returns the notifier credential with most characters hidden.
func (c *Config) MaskedToken() string {
	return maskSecret(c.Notifier.Token)
}

func maskSecret(s string) string {
	if len(s) <= 8 {
		if len(s) == 0 {
			return "(not set)"
		}
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

func parseWindow(start, end string) (calendar.Window, error) {
	s, err := calendar.ParseTimeOfDay(start)
	if err != nil {
		return calendar.Window{}, err
	}
	e, err := calendar.ParseTimeOfDay(end)
	if err != nil {
		return calendar.Window{}, err
	}
	return calendar.Window{Start: s, End: e}, nil
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

func parseWeekday(s string) (time.Weekday, error) {
	d, ok := weekdays[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q", s)
	}
	return d, nil
}
