package scheduler

import (
	"context"
	"errors"
	"time"

	"PriceSentinel/internal/calendar"
	"PriceSentinel/internal/collector"
	"PriceSentinel/internal/metrics"
	"PriceSentinel/internal/model"
	"PriceSentinel/internal/notifier"
	"PriceSentinel/internal/strategy"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RunOutcome is how a single run ended. Every outcome is a clean exit.
type RunOutcome int

const (
	OutcomeOutsideSession RunOutcome = iota
	OutcomeFeedUnavailable
	OutcomeSuppressed
	OutcomeSent
	OutcomeDeliveryFailed
	OutcomeCredentialMissing
)

func (o RunOutcome) String() string {
	switch o {
	case OutcomeOutsideSession:
		return "outside_session"
	case OutcomeFeedUnavailable:
		return "feed_unavailable"
	case OutcomeSuppressed:
		return "suppressed"
	case OutcomeSent:
		return "sent"
	case OutcomeDeliveryFailed:
		return "delivery_failed"
	case OutcomeCredentialMissing:
		return "credential_missing"
	default:
		return "unknown"
	}
}

// Runner performs one fetch, evaluation and at most one notification.
type Runner struct {
	Calendar calendar.Calendar
	Engine   *strategy.Engine
	Rules    strategy.ModeRules
	Composer notifier.Composer
	Source   collector.QuoteSource
	Notifier notifier.Notifier
	Topic    string
	Metrics  *metrics.Recorder // optional
	Log      zerolog.Logger

	FetchTimeout time.Duration
	SendTimeout  time.Duration

	Now func() time.Time
}

// RunOnce executes the pipeline once. Failures are logged and reported as
// an outcome; nothing is returned as an error.
func (r *Runner) RunOnce(ctx context.Context) RunOutcome {
	log := r.Log.With().Str("run_id", uuid.NewString()).Logger()
	outcome := r.run(ctx, log)
	log.Info().Stringer("outcome", outcome).Msg("run finished")
	if r.Metrics != nil {
		r.Metrics.RecordRun(outcome.String())
		r.pushMetrics(ctx, log)
	}
	return outcome
}

func (r *Runner) pushMetrics(ctx context.Context, log zerolog.Logger) {
	ctx, cancel := withTimeout(ctx, r.SendTimeout)
	defer cancel()
	if err := r.Metrics.Push(ctx); err != nil {
		log.Warn().Err(err).Msg("metrics push failed")
	}
}

func (r *Runner) run(ctx context.Context, log zerolog.Logger) RunOutcome {
	now := r.now()
	if !r.Calendar.IsTradingNow(now) {
		log.Info().Time("now", r.Calendar.In(now)).Msg("outside trading session, skipped")
		return OutcomeOutsideSession
	}

	quote, err := r.fetch(ctx)
	if err != nil {
		var fe *collector.FetchError
		var pf *collector.ParseFailure
		switch {
		case errors.As(err, &fe):
			log.Warn().Err(err).Str("source", fe.Source).Msg("quote fetch failed")
		case errors.As(err, &pf):
			log.Warn().Err(err).Str("reason", string(pf.Reason)).Msg("quote payload rejected")
		default:
			log.Warn().Err(err).Msg("quote unavailable")
		}
		return OutcomeFeedUnavailable
	}

	sig, err := r.Engine.Evaluate(quote)
	if err != nil {
		log.Error().Err(err).Msg("evaluate quote")
		return OutcomeFeedUnavailable
	}
	log.Debug().
		Str("symbol", quote.Symbol).
		Str("current", quote.Current.String()).
		Str("drawdown", sig.Drawdown.String()).
		Str("rebound", sig.Rebound.String()).
		Stringer("direction", sig.Direction).
		Int("level", sig.Level).
		Msg("quote evaluated")
	r.recordQuote(quote, sig)

	mode := strategy.SelectMode(now, sig, r.Rules)
	if mode == model.ModeSuppressed {
		log.Info().Str("current", quote.Current.String()).Msg("no signal, nothing sent")
		return OutcomeSuppressed
	}

	msg := r.Composer.Compose(quote, sig, mode, now)
	return r.send(ctx, log, msg)
}

func (r *Runner) fetch(ctx context.Context) (model.Quote, error) {
	ctx, cancel := withTimeout(ctx, r.FetchTimeout)
	defer cancel()

	start := time.Now()
	raw, err := r.Source.Fetch(ctx)
	r.recordLatency("fetch", start)
	if err != nil {
		return model.Quote{}, err
	}
	return collector.Normalize(raw)
}

func (r *Runner) send(ctx context.Context, log zerolog.Logger, msg model.Message) RunOutcome {
	ctx, cancel := withTimeout(ctx, r.SendTimeout)
	defer cancel()

	start := time.Now()
	err := r.Notifier.Send(ctx, r.Topic, msg)
	r.recordLatency("send", start)

	var de *notifier.DeliveryError
	switch {
	case err == nil:
		log.Info().Stringer("mode", msg.Mode).Str("title", msg.Title).Str("backend", r.Notifier.Name()).Msg("notification sent")
		return OutcomeSent
	case errors.Is(err, notifier.ErrMissingCredential):
		log.Warn().Str("backend", r.Notifier.Name()).Msg("notifier credential not configured, message dropped")
		return OutcomeCredentialMissing
	case errors.As(err, &de):
		log.Error().Err(err).Int("status", de.StatusCode).Msg("notification delivery failed")
		return OutcomeDeliveryFailed
	default:
		log.Error().Err(err).Msg("notification delivery failed")
		return OutcomeDeliveryFailed
	}
}

func (r *Runner) recordQuote(q model.Quote, sig model.Signal) {
	if r.Metrics == nil {
		return
	}
	price, _ := q.Current.Float64()
	change, _ := sig.DayChange.Float64()
	r.Metrics.RecordQuote(q.Symbol, price, change, sig.Direction.String(), sig.Level)
}

func (r *Runner) recordLatency(op string, start time.Time) {
	if r.Metrics != nil {
		r.Metrics.RecordLatency(op, time.Since(start))
	}
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
