package memorystore

import (
	"github.com/AntonStoeckl/closed-economy-workload/economy"
)

// FaultHook is consulted before every store operation. A non-nil error fails the operation.
// For commit and abort the table and key are empty.
type FaultHook func(op economy.StoreOperation, table, key string) error

// Option defines a functional option for configuring a Database.
type Option func(*Database) error

// WithIsolationLevel sets the isolation level for transaction scopes.
func WithIsolationLevel(level economy.IsolationLevel) Option {
	return func(db *Database) error {
		db.isolation = level
		return nil
	}
}

// WithFaultHook installs a hook that can fail individual operations.
func WithFaultHook(hook FaultHook) Option {
	return func(db *Database) error {
		db.faultHook = hook
		return nil
	}
}

// WithLogger sets the logger for the Database.
// Debug level receives every operation, Warn level receives failed commits.
func WithLogger(logger economy.Logger) Option {
	return func(db *Database) error {
		db.logger = logger
		return nil
	}
}
