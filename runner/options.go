package runner

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/closed-economy-workload/economy"
	"github.com/AntonStoeckl/closed-economy-workload/measurement"
)

var ErrInvalidThreadCount = errors.New("thread count must be positive")
var ErrInvalidTarget = errors.New("target throughput must not be negative")
var ErrInvalidDuration = errors.New("duration must not be negative")
var ErrNilOption = errors.New("option value must not be nil")

// Option defines a functional option for configuring a Client.
type Option func(*Client) error

// WithThreads sets the number of concurrent workers, 1 by default.
func WithThreads(threads int) Option {
	return func(c *Client) error {
		if threads < 1 {
			return ErrInvalidThreadCount
		}
		c.threads = threads
		return nil
	}
}

// WithOperationCount overrides the operationcount of the workload config. 0 runs until stopped.
func WithOperationCount(operations int64) Option {
	return func(c *Client) error {
		if operations < 0 {
			return errors.New("operation count must not be negative")
		}
		c.operationCount = operations
		return nil
	}
}

// WithTarget throttles all workers together to the given operations per second. 0 means unthrottled.
func WithTarget(opsPerSecond float64) Option {
	return func(c *Client) error {
		if opsPerSecond < 0 {
			return ErrInvalidTarget
		}
		c.target = opsPerSecond
		return nil
	}
}

// WithMaxExecutionTime ends the transaction phase after the given time. 0 means no limit.
func WithMaxExecutionTime(d time.Duration) Option {
	return func(c *Client) error {
		if d < 0 {
			return ErrInvalidDuration
		}
		c.maxExecutionTime = d
		return nil
	}
}

// WithStatusInterval sets the interval of the status reporter. 0 disables it.
func WithStatusInterval(d time.Duration) Option {
	return func(c *Client) error {
		if d < 0 {
			return ErrInvalidDuration
		}
		c.statusInterval = d
		return nil
	}
}

// WithMeasurements adds the interval latency summary of the collector to every status report.
func WithMeasurements(collector *measurement.Collector) Option {
	return func(c *Client) error {
		if collector == nil {
			return ErrNilOption
		}
		c.measurements = collector
		return nil
	}
}

// WithRunID sets the run ID; a new version 7 UUID is used by default.
func WithRunID(id uuid.UUID) Option {
	return func(c *Client) error {
		c.runID = id
		return nil
	}
}

// WithLogger sets the logger for phase start and end, status reports and worker failures.
func WithLogger(logger economy.Logger) Option {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger for trace correlated log records.
func WithContextualLogger(logger economy.ContextualLogger) Option {
	return func(c *Client) error {
		c.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for phase durations and the current throughput.
func WithMetrics(collector economy.MetricsCollector) Option {
	return func(c *Client) error {
		c.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector, which receives one span per phase.
func WithTracing(collector economy.TracingCollector) Option {
	return func(c *Client) error {
		c.tracingCollector = collector
		return nil
	}
}
