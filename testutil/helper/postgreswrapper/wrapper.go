package postgreswrapper

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/closed-economy-workload/economy/postgresstore"
)

// Environment variables of the PostgreSQL integration tests.
const (
	EnvPostgresTestDSN     = "CEW_POSTGRES_TEST_DSN"
	EnvPostgresTestAdapter = "CEW_POSTGRES_TEST_ADAPTER"
)

const (
	adapterPGXPool = "pgx.pool"
	adapterSQLDB   = "sql.db"
	adapterSQLXDB  = "sqlx.db"
)

// PostgresTestDSN returns the DSN of the integration test database and skips the test when none is configured.
func PostgresTestDSN(t testing.TB) string {
	t.Helper()

	dsn := os.Getenv(EnvPostgresTestDSN)
	if dsn == "" {
		t.Skipf("%s is not set", EnvPostgresTestDSN)
	}

	return dsn
}

// ConnectPostgresDatabase opens a Database with the adapter chosen by CEW_POSTGRES_TEST_ADAPTER (pgx.pool by default),
// creates a fresh table and registers the cleanup.
func ConnectPostgresDatabase(t testing.TB, options ...postgresstore.Option) *postgresstore.Database {
	t.Helper()

	dsn := PostgresTestDSN(t)

	var db *postgresstore.Database
	var err error

	switch adapter := os.Getenv(EnvPostgresTestAdapter); adapter {
	case "", adapterPGXPool:
		pool, connectErr := pgxpool.New(context.Background(), dsn)
		require.NoError(t, connectErr)
		t.Cleanup(pool.Close)
		db, err = postgresstore.NewDatabaseFromPGXPool(pool, options...)

	case adapterSQLDB:
		sqlDB, connectErr := sql.Open("postgres", dsn)
		require.NoError(t, connectErr)
		t.Cleanup(func() { _ = sqlDB.Close() })
		db, err = postgresstore.NewDatabaseFromSQLDB(sqlDB, options...)

	case adapterSQLXDB:
		sqlxDB, connectErr := sqlx.Connect("postgres", dsn)
		require.NoError(t, connectErr)
		t.Cleanup(func() { _ = sqlxDB.Close() })
		db, err = postgresstore.NewDatabaseFromSQLX(sqlxDB, options...)

	default:
		t.Fatalf("unsupported %s %q", EnvPostgresTestAdapter, adapter)
	}

	require.NoError(t, err)
	require.NoError(t, db.DropTable(context.Background()))
	require.NoError(t, db.CreateTable(context.Background()))
	t.Cleanup(func() { _ = db.DropTable(context.Background()) })

	return db
}
