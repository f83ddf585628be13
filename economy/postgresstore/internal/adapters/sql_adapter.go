package adapters

import (
	"context"
	"database/sql"

	"github.com/AntonStoeckl/closed-economy-workload/economy"
)

// SQLAdapter implements DBAdapter for sql.DB
type SQLAdapter struct {
	db *sql.DB
}

// NewSQLAdapter creates a new SQL adapter
func NewSQLAdapter(db *sql.DB) *SQLAdapter {
	return &SQLAdapter{db: db}
}

func (s *SQLAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	return stdQuery(ctx, s.db, query)
}

func (s *SQLAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	return stdExec(ctx, s.db, query)
}

// BeginTx opens a transaction with the given isolation level.
func (s *SQLAdapter) BeginTx(ctx context.Context, level economy.IsolationLevel) (DBTx, error) {
	tx, err := s.db.BeginTx(ctx, stdTxOptions(level))
	if err != nil {
		return nil, err
	}

	return &stdTx{tx: tx}, nil
}
