package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Recorder collects per-run metrics. The process usually exits after one
// run, so metrics are pushed to a Pushgateway instead of scraped.
type Recorder struct {
	registry *prometheus.Registry
	gateway  string
	job      string
	client   *http.Client

	runs        *prometheus.CounterVec
	lastPrice   *prometheus.GaugeVec
	signalLevel *prometheus.GaugeVec
	dayChange   *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
}

// New creates a Recorder. An empty gateway disables Push. timeout bounds
// each push; zero means 10s.
func New(gateway, job string, timeout time.Duration) *Recorder {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		registry: reg,
		gateway:  gateway,
		job:      job,
		client:   &http.Client{Timeout: timeout},
		runs: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_runs_total",
				Help: "Total number of evaluation runs by outcome",
			},
			[]string{"outcome"},
		),
		lastPrice: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sentinel_last_price",
				Help: "Last fetched price for an instrument",
			},
			[]string{"symbol"},
		),
		signalLevel: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sentinel_signal_level",
				Help: "Signal level of the last evaluation, 0 when no tier matched",
			},
			[]string{"symbol", "direction"},
		),
		dayChange: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sentinel_day_change_percent",
				Help: "Percentage change from the open at the last evaluation",
			},
			[]string{"symbol"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sentinel_operation_duration_seconds",
				Help:    "Duration of external calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordRun counts a finished run.
func (r *Recorder) RecordRun(outcome string) {
	r.runs.WithLabelValues(outcome).Inc()
}

// RecordQuote records the price and signal state of an evaluation.
func (r *Recorder) RecordQuote(symbol string, price, dayChange float64, direction string, level int) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
	r.dayChange.WithLabelValues(symbol).Set(dayChange)
	r.signalLevel.Reset()
	r.signalLevel.WithLabelValues(symbol, direction).Set(float64(level))
}

// RecordLatency records how long an external call took.
func (r *Recorder) RecordLatency(op string, d time.Duration) {
	r.latency.WithLabelValues(op).Observe(d.Seconds())
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Enabled reports whether a Pushgateway is configured.
func (r *Recorder) Enabled() bool {
	return r.gateway != ""
}

// Push sends all metrics to the Pushgateway, replacing the job's group.
func (r *Recorder) Push(ctx context.Context) error {
	if !r.Enabled() {
		return nil
	}
	if err := push.New(r.gateway, r.job).Client(r.client).Gatherer(r.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
