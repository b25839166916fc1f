package calculator

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metric instruments. They discard measurements until InitMetrics replaces
// them, so a Service is usable before startup wiring has run.
var (
	eventsCounter  metric.Int64Counter
	eventHistogram metric.Float64Histogram
	errorCounter   metric.Int64Counter
	resultGauge    metric.Float64Gauge
)

func init() {
	resetMetrics()
}

// resetMetrics installs no-op instruments.
func resetMetrics() {
	eventsCounter = noop.Int64Counter{}
	eventHistogram = noop.Float64Histogram{}
	errorCounter = noop.Int64Counter{}
	resultGauge = noop.Float64Gauge{}
}

// Session gauges are scraped from /metrics.
var (
	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "calculator",
		Name:      "sessions_active",
		Help:      "Number of calculator sessions held in memory.",
	})
	sessionsEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "calculator",
		Name:      "sessions_evicted_total",
		Help:      "Calculator sessions dropped after sitting idle past the TTL.",
	})
)

// InitMetrics registers custom OTel metric instruments for the calculator domain.
// Call this once at startup (after observability.InitMetrics).
func InitMetrics() error {
	meter := otel.Meter("calculator")

	var err error

	eventsCounter, err = meter.Int64Counter("calculator.events.total",
		metric.WithDescription("Total number of button presses applied to calculator sessions"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return fmt.Errorf("creating events counter: %w", err)
	}

	eventHistogram, err = meter.Float64Histogram("calculator.event.duration",
		metric.WithDescription("Duration of calculator event handling in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 10),
	)
	if err != nil {
		return fmt.Errorf("creating event histogram: %w", err)
	}

	errorCounter, err = meter.Int64Counter("calculator.errors.total",
		metric.WithDescription("Total number of rejected calculator requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	resultGauge, err = meter.Float64Gauge("calculator.last_result",
		metric.WithDescription("The most recent value produced by an operator or equals press"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("creating result gauge: %w", err)
	}

	return nil
}
