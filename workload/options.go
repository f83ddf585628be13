package workload

import (
	"errors"
	"io"

	"github.com/AntonStoeckl/closed-economy-workload/economy"
	"github.com/AntonStoeckl/closed-economy-workload/generator"
)

var ErrNilOption = errors.New("option value must not be nil")

// Option defines a functional option for configuring a Workload.
type Option func(*Workload) error

// WithLogger sets the logger for the Workload.
// Debug level receives every outcome, Warn level receives store failures, Error level receives fatal errors.
func WithLogger(logger economy.Logger) Option {
	return func(w *Workload) error {
		w.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger for trace correlated log records.
func WithContextualLogger(logger economy.ContextualLogger) Option {
	return func(w *Workload) error {
		w.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for operation durations, outcome counters and the bank balance.
func WithMetrics(collector economy.MetricsCollector) Option {
	return func(w *Workload) error {
		w.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector, which receives one span per operation.
func WithTracing(collector economy.TracingCollector) Option {
	return func(w *Workload) error {
		w.tracingCollector = collector
		return nil
	}
}

// WithMeasurements sets the collector for per operation latencies and statuses.
func WithMeasurements(measurements Measurements) Option {
	return func(w *Workload) error {
		if measurements == nil {
			return ErrNilOption
		}
		w.measurements = measurements
		return nil
	}
}

// WithTraceWriter sets where the transaction trace and printed keys go, stdout by default.
func WithTraceWriter(out io.Writer) Option {
	return func(w *Workload) error {
		if out == nil {
			return ErrNilOption
		}
		w.trace.out = out
		return nil
	}
}

// WithReportWriter sets where the validation summary goes, stdout by default.
func WithReportWriter(out io.Writer) Option {
	return func(w *Workload) error {
		if out == nil {
			return ErrNilOption
		}
		w.report = out
		return nil
	}
}

// WithRand sets the random source of all selectors and generators, e.g. a seeded one for reproducible runs.
func WithRand(rnd generator.Rand) Option {
	return func(w *Workload) error {
		if rnd == nil {
			return ErrNilOption
		}
		w.rnd = rnd
		return nil
	}
}

// WithMaxDistinctAttempts bounds the search for a second distinct account.
func WithMaxDistinctAttempts(attempts int64) Option {
	return func(w *Workload) error {
		if attempts < 1 {
			return errors.New("max distinct attempts must be positive")
		}
		w.maxDistinctAttempts = attempts
		return nil
	}
}
