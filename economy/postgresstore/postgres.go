package postgresstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/closed-economy-workload/economy"
	"github.com/AntonStoeckl/closed-economy-workload/economy/postgresstore/internal/adapters"
)

const defaultTableName = "usertable"

var ErrBuildingQueryFailed = errors.New("building query failed")
var ErrQueryingFailed = errors.New("querying the database failed")
var ErrExecutingFailed = errors.New("executing the statement failed")
var ErrScanningDBRowFailed = errors.New("scanning the database row failed")
var ErrGettingRowsAffectedFailed = errors.New("getting rows affected failed")
var ErrEncodingFieldsFailed = errors.New("encoding the field map failed")
var ErrDecodingFieldsFailed = errors.New("decoding the field map failed")
var ErrBeginningTransactionFailed = errors.New("beginning the transaction failed")
var ErrCommittingTransactionFailed = errors.New("committing the transaction failed")
var ErrRollingBackTransactionFailed = errors.New("rolling back the transaction failed")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Database hands out Store sessions against one PostgreSQL database. It is safe for concurrent use.
type Database struct {
	db               adapters.DBAdapter
	tableName        string
	isolation        economy.IsolationLevel
	lockingReads     bool
	logger           economy.Logger
	contextualLogger economy.ContextualLogger
	metricsCollector economy.MetricsCollector
	tracingCollector economy.TracingCollector
}

// NewDatabaseFromPGXPool creates a new Database using a pgx Pool with optional configuration.
func NewDatabaseFromPGXPool(pool *pgxpool.Pool, options ...Option) (*Database, error) {
	if pool == nil {
		return nil, economy.ErrNilDatabaseConnection
	}

	return newDatabase(adapters.NewPGXAdapter(pool), options...)
}

// NewDatabaseFromPGXPoolWithReplica creates a new Database that sends reads outside a transaction to a replica pool.
func NewDatabaseFromPGXPoolWithReplica(pool *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*Database, error) {
	if pool == nil || replica == nil {
		return nil, economy.ErrNilDatabaseConnection
	}

	return newDatabase(adapters.NewPGXAdapterWithReplica(pool, replica), options...)
}

// NewDatabaseFromSQLDB creates a new Database using a sql.DB with optional configuration.
func NewDatabaseFromSQLDB(db *sql.DB, options ...Option) (*Database, error) {
	if db == nil {
		return nil, economy.ErrNilDatabaseConnection
	}

	return newDatabase(adapters.NewSQLAdapter(db), options...)
}

// NewDatabaseFromSQLX creates a new Database using a sqlx.DB with optional configuration.
func NewDatabaseFromSQLX(db *sqlx.DB, options ...Option) (*Database, error) {
	if db == nil {
		return nil, economy.ErrNilDatabaseConnection
	}

	return newDatabase(adapters.NewSQLXAdapter(db), options...)
}

func newDatabase(adapter adapters.DBAdapter, options ...Option) (*Database, error) {
	db := &Database{
		db:        adapter,
		tableName: defaultTableName,
		isolation: economy.Serializable,
	}

	for _, option := range options {
		if err := option(db); err != nil {
			return nil, err
		}
	}

	return db, nil
}

// NewSession returns a new session. Sessions are cheap; each worker should own one.
func (db *Database) NewSession() economy.Store {
	return &Session{db: db}
}

// IsolationLevel returns the configured default isolation level.
func (db *Database) IsolationLevel() economy.IsolationLevel {
	return db.isolation
}

// Session is one economy.Store session. It is not safe for concurrent use.
type Session struct {
	db *Database
	tx adapters.DBTx
}

// Start opens a database transaction.
func (s *Session) Start(ctx context.Context) error {
	if s.tx != nil {
		return economy.ErrTransactionInProgress
	}

	level := economy.GetIsolationLevel(ctx, s.db.isolation)
	ctx, observer := s.db.observe(ctx, economy.OperationStart, "")

	tx, err := s.db.db.BeginTx(ctx, level)
	if err != nil {
		err = errors.Join(ErrBeginningTransactionFailed, err)
		observer.finish(ctx, err, "")
		return err
	}

	s.tx = tx
	observer.finish(ctx, nil, "")

	return nil
}

// Commit commits the open transaction. The session is free for a new scope afterward, whatever the result.
func (s *Session) Commit(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}

	tx := s.tx
	s.tx = nil

	ctx, observer := s.db.observe(ctx, economy.OperationCommit, "")

	if err := tx.Commit(ctx); err != nil {
		err = errors.Join(ErrCommittingTransactionFailed, err)
		observer.finish(ctx, err, "")
		return err
	}

	observer.finish(ctx, nil, "")

	return nil
}

// Abort rolls the open transaction back.
func (s *Session) Abort(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}

	tx := s.tx
	s.tx = nil

	ctx, observer := s.db.observe(ctx, economy.OperationAbort, "")

	if err := tx.Rollback(ctx); err != nil {
		err = errors.Join(ErrRollingBackTransactionFailed, err)
		observer.finish(ctx, err, "")
		return err
	}

	observer.finish(ctx, nil, "")

	return nil
}

// Read returns the requested fields of one record.
func (s *Session) Read(ctx context.Context, table, key string, fields []string) (economy.Fields, error) {
	ctx, observer := s.db.observe(ctx, economy.OperationRead, table)

	sqlQuery, err := buildReadQuery(table, key, s.tx != nil && s.db.lockingReads)
	if err != nil {
		observer.finish(ctx, err, "")
		return nil, err
	}

	records, err := s.query(ctx, sqlQuery)
	if err != nil {
		observer.finish(ctx, err, sqlQuery)
		return nil, err
	}

	if len(records) == 0 {
		err = errors.Join(economy.ErrRecordNotFound, fmt.Errorf("%s/%s", table, key))
		observer.finish(ctx, err, sqlQuery)
		return nil, err
	}

	observer.finish(ctx, nil, sqlQuery)

	return records[0].Clone(fields...), nil
}

// Scan returns up to count records with keys >= startKey in key order.
func (s *Session) Scan(
	ctx context.Context,
	table, startKey string,
	count int,
	fields []string,
) ([]economy.Fields, error) {

	ctx, observer := s.db.observe(ctx, economy.OperationScan, table)

	sqlQuery, err := buildScanQuery(table, startKey, count)
	if err != nil {
		observer.finish(ctx, err, "")
		return nil, err
	}

	records, err := s.query(ctx, sqlQuery)
	if err != nil {
		observer.finish(ctx, err, sqlQuery)
		return nil, err
	}

	for i := range records {
		records[i] = records[i].Clone(fields...)
	}

	observer.finish(ctx, nil, sqlQuery)

	return records, nil
}

// Update merges values into an existing record.
func (s *Session) Update(ctx context.Context, table, key string, values economy.Fields) error {
	ctx, observer := s.db.observe(ctx, economy.OperationUpdate, table)

	sqlQuery, err := buildUpdateQuery(table, key, values)
	if err != nil {
		observer.finish(ctx, err, "")
		return err
	}

	rowsAffected, err := s.exec(ctx, sqlQuery)
	if err == nil && rowsAffected == 0 {
		err = errors.Join(economy.ErrRecordNotFound, fmt.Errorf("%s/%s", table, key))
	}

	observer.finish(ctx, err, sqlQuery)

	return err
}

// Insert creates a new record. An existing key is reported as economy.ErrDuplicateKey.
func (s *Session) Insert(ctx context.Context, table, key string, values economy.Fields) error {
	ctx, observer := s.db.observe(ctx, economy.OperationInsert, table)

	sqlQuery, err := buildInsertQuery(table, key, values)
	if err != nil {
		observer.finish(ctx, err, "")
		return err
	}

	rowsAffected, err := s.exec(ctx, sqlQuery)
	if err == nil && rowsAffected == 0 {
		err = errors.Join(economy.ErrDuplicateKey, fmt.Errorf("%s/%s", table, key))
	}

	observer.finish(ctx, err, sqlQuery)

	return err
}

func (s *Session) querier() adapters.Querier {
	if s.tx != nil {
		return s.tx
	}

	return s.db.db
}

func (s *Session) query(ctx context.Context, sqlQuery string) ([]economy.Fields, error) {
	rows, err := s.querier().Query(ctx, sqlQuery)
	if err != nil {
		return nil, errors.Join(ErrQueryingFailed, err)
	}
	defer s.db.closeRows(rows)

	records := make([]economy.Fields, 0)

	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, errors.Join(ErrScanningDBRowFailed, err)
		}

		record, err := decodeFields(raw)
		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrQueryingFailed, err)
	}

	return records, nil
}

func (s *Session) exec(ctx context.Context, sqlQuery string) (int64, error) {
	result, err := s.querier().Exec(ctx, sqlQuery)
	if err != nil {
		return 0, errors.Join(ErrExecutingFailed, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Join(ErrGettingRowsAffectedFailed, err)
	}

	return rowsAffected, nil
}

// closeRows closes database rows and logs any errors.
func (db *Database) closeRows(rows adapters.DBRows) {
	if err := rows.Close(); err != nil {
		db.logWarn(logMsgCloseRowsFailed, err)
	}
}

func encodeFields(values economy.Fields) (string, error) {
	encoded, err := json.Marshal(values)
	if err != nil {
		return "", errors.Join(ErrEncodingFieldsFailed, err)
	}

	return string(encoded), nil
}

func decodeFields(raw []byte) (economy.Fields, error) {
	record := economy.Fields{}
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, errors.Join(ErrDecodingFieldsFailed, err)
	}

	return record, nil
}

var _ economy.Store = (*Session)(nil)
var _ economy.SessionFactory = (*Database)(nil)
