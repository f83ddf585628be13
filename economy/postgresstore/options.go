package postgresstore

import (
	"github.com/AntonStoeckl/closed-economy-workload/economy"
)

// Option defines a functional option for configuring a Database.
type Option func(*Database) error

// WithTableName sets the table the schema helpers work on.
func WithTableName(tableName string) Option {
	return func(db *Database) error {
		if tableName == "" {
			return economy.ErrEmptyTableNameSupplied
		}

		db.tableName = tableName

		return nil
	}
}

// WithIsolationLevel sets the isolation level of the transactions opened by Start.
// A level stored in the context with economy.WithIsolationLevel takes precedence.
func WithIsolationLevel(level economy.IsolationLevel) Option {
	return func(db *Database) error {
		db.isolation = level
		return nil
	}
}

// WithLockingReads makes reads inside a transaction take row locks (SELECT ... FOR UPDATE).
func WithLockingReads() Option {
	return func(db *Database) error {
		db.lockingReads = true
		return nil
	}
}

// WithLogger sets the logger for the Database.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: missing or duplicate records
// Warn level: failed rollbacks and row cleanup
// Error level: failed statements and transactions.
func WithLogger(logger economy.Logger) Option {
	return func(db *Database) error {
		db.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger, which receives the same records correlated with the active span.
func WithContextualLogger(logger economy.ContextualLogger) Option {
	return func(db *Database) error {
		db.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector, which receives durations of all store operations and error counts.
func WithMetrics(collector economy.MetricsCollector) Option {
	return func(db *Database) error {
		db.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector, which receives one span per store operation.
func WithTracing(collector economy.TracingCollector) Option {
	return func(db *Database) error {
		db.tracingCollector = collector
		return nil
	}
}
