package main

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver for database/sql and sqlx

	"github.com/AntonStoeckl/closed-economy-workload/economy"
	"github.com/AntonStoeckl/closed-economy-workload/economy/memorystore"
	"github.com/AntonStoeckl/closed-economy-workload/economy/postgresstore"
)

var ErrPostgresOnly = errors.New("this command needs --db postgres")

const (
	extraConnections       = 2
	defaultMaxConnLifetime = time.Hour
	defaultMaxConnIdleTime = time.Minute * 5
	defaultHealthCheck     = time.Minute
	defaultConnectTimeout  = time.Second * 5
)

// storeHandle is the opened backend. Exactly one of memory and postgres is set.
type storeHandle struct {
	sessions economy.SessionFactory
	memory   *memorystore.Database
	postgres *postgresstore.Database
	close    func()
}

func openStore(ctx context.Context, s settings, table string, obs *observability) (*storeHandle, error) {
	if s.db == dbMemory {
		db, err := memorystore.New(
			memorystore.WithIsolationLevel(s.memoryIsolation),
			memorystore.WithLogger(obs.logger),
		)
		if err != nil {
			return nil, err
		}

		return &storeHandle{sessions: db, memory: db, close: func() {}}, nil
	}

	options := []postgresstore.Option{
		postgresstore.WithTableName(table),
		postgresstore.WithIsolationLevel(s.postgresIsolation),
		postgresstore.WithLogger(obs.logger),
	}

	if s.postgresLocking {
		options = append(options, postgresstore.WithLockingReads())
	}

	if obs.contextualLogger != nil {
		options = append(options, postgresstore.WithContextualLogger(obs.contextualLogger))
	}

	if obs.metrics != nil {
		options = append(options, postgresstore.WithMetrics(obs.metrics))
	}

	if obs.tracing != nil {
		options = append(options, postgresstore.WithTracing(obs.tracing))
	}

	switch s.postgresDriver {
	case driverSQL:
		return openSQLDB(ctx, s, options)
	case driverSQLX:
		return openSQLX(ctx, s, options)
	default:
		return openPGXPool(ctx, s, options)
	}
}

func openPGXPool(ctx context.Context, s settings, options []postgresstore.Option) (*storeHandle, error) {
	pool, err := newPGXPool(ctx, s.postgresDSN, s.threads)
	if err != nil {
		return nil, err
	}

	if s.postgresReplicaDSN == "" {
		db, err := postgresstore.NewDatabaseFromPGXPool(pool, options...)
		if err != nil {
			pool.Close()
			return nil, err
		}

		return &storeHandle{sessions: db, postgres: db, close: pool.Close}, nil
	}

	replica, err := newPGXPool(ctx, s.postgresReplicaDSN, s.threads)
	if err != nil {
		pool.Close()
		return nil, err
	}

	closeBoth := func() {
		replica.Close()
		pool.Close()
	}

	db, err := postgresstore.NewDatabaseFromPGXPoolWithReplica(pool, replica, options...)
	if err != nil {
		closeBoth()
		return nil, err
	}

	return &storeHandle{sessions: db, postgres: db, close: closeBoth}, nil
}

// newPGXPool sizes the pool to the worker count, every worker holds one connection for its scope.
func newPGXPool(ctx context.Context, dsn string, threads int) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = int32(threads + extraConnections) //nolint:gosec // thread counts are small
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = defaultMaxConnLifetime
	poolConfig.MaxConnIdleTime = defaultMaxConnIdleTime
	poolConfig.HealthCheckPeriod = defaultHealthCheck
	poolConfig.ConnConfig.ConnectTimeout = defaultConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

func openSQLDB(ctx context.Context, s settings, options []postgresstore.Option) (*storeHandle, error) {
	db, err := sql.Open("postgres", s.postgresDSN)
	if err != nil {
		return nil, err
	}

	configurePool(db, s.threads)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	store, err := postgresstore.NewDatabaseFromSQLDB(db, options...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &storeHandle{sessions: store, postgres: store, close: func() { _ = db.Close() }}, nil
}

func openSQLX(ctx context.Context, s settings, options []postgresstore.Option) (*storeHandle, error) {
	db, err := sqlx.Open("postgres", s.postgresDSN)
	if err != nil {
		return nil, err
	}

	configurePool(db.DB, s.threads)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	store, err := postgresstore.NewDatabaseFromSQLX(db, options...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &storeHandle{sessions: store, postgres: store, close: func() { _ = db.Close() }}, nil
}

func configurePool(db *sql.DB, threads int) {
	db.SetMaxOpenConns(threads + extraConnections)
	db.SetMaxIdleConns(threads + extraConnections)
	db.SetConnMaxLifetime(defaultMaxConnLifetime)
	db.SetConnMaxIdleTime(defaultMaxConnIdleTime)
}
