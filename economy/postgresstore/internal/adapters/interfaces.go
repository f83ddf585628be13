package adapters

import (
	"context"

	"github.com/AntonStoeckl/closed-economy-workload/economy"
)

// Querier runs SQL either directly on the pool or inside a transaction.
type Querier interface {
	Query(ctx context.Context, query string) (DBRows, error)
	Exec(ctx context.Context, query string) (DBResult, error)
}

// DBAdapter defines the interface for database operations needed by the store.
type DBAdapter interface {
	Querier
	BeginTx(ctx context.Context, level economy.IsolationLevel) (DBTx, error)
}

// DBTx is an open transaction.
type DBTx interface {
	Querier
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// DBRows defines the interface for query result rows.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// DBResult defines the interface for execution results.
type DBResult interface {
	RowsAffected() (int64, error)
}
