package economy

import "context"

// Store is one session against a transactional key-value backend.
//
// A session is owned by a single worker and is not safe for concurrent use. Operations issued
// between Start and Commit/Abort belong to one transaction scope; operations outside a scope
// are applied individually. Commit and Abort without an active scope are no-ops.
// A nil fields argument to Read and Scan selects all fields of a record.
type Store interface {
	Start(ctx context.Context) error
	Commit(ctx context.Context) error
	Abort(ctx context.Context) error
	Read(ctx context.Context, table, key string, fields []string) (Fields, error)
	Scan(ctx context.Context, table, startKey string, count int, fields []string) ([]Fields, error)
	Update(ctx context.Context, table, key string, values Fields) error
	Insert(ctx context.Context, table, key string, values Fields) error
}

// SessionFactory hands out independent Store sessions against the same backend.
type SessionFactory interface {
	NewSession() Store
}

// StoreOperation names a Store method, e.g. for fault injection and metrics labels.
type StoreOperation string

const (
	OperationStart  StoreOperation = "start"
	OperationCommit StoreOperation = "commit"
	OperationAbort  StoreOperation = "abort"
	OperationRead   StoreOperation = "read"
	OperationScan   StoreOperation = "scan"
	OperationUpdate StoreOperation = "update"
	OperationInsert StoreOperation = "insert"
)
