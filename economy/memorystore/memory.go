package memorystore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/AntonStoeckl/closed-economy-workload/economy"
)

const (
	logMsgOperation    = "memorystore operation: "
	logMsgCommitFailed = "commit failed, pending writes discarded"
	logAttrTable       = "table"
	logAttrKey         = "key"
	logAttrError       = "error"
	logAttrWrites      = "pending_writes"
	logAttrIsolation   = "isolation"
)

// Database is an in-memory key-value backend. Sessions created with NewSession share its tables.
type Database struct {
	mu        sync.RWMutex
	tables    map[string]map[string]economy.Fields
	txLock    chan struct{}
	isolation economy.IsolationLevel
	faultHook FaultHook
	logger    economy.Logger
}

type recordRef struct {
	table string
	key   string
}

type pendingWrite struct {
	values economy.Fields
	insert bool
}

// Session is one economy.Store session against a Database.
type Session struct {
	db        *Database
	active    bool
	level     economy.IsolationLevel
	holdsLock bool
	pending   map[recordRef]pendingWrite
	order     []recordRef
}

// New creates an empty Database.
func New(options ...Option) (*Database, error) {
	db := &Database{
		tables:    make(map[string]map[string]economy.Fields),
		txLock:    make(chan struct{}, 1),
		isolation: economy.Serializable,
	}

	for _, option := range options {
		if err := option(db); err != nil {
			return nil, err
		}
	}

	return db, nil
}

// NewSession returns a new session. Each worker needs its own.
func (db *Database) NewSession() economy.Store {
	return &Session{db: db}
}

// IsolationLevel returns the configured default isolation level.
func (db *Database) IsolationLevel() economy.IsolationLevel {
	return db.isolation
}

// Snapshot returns a copy of all committed records of a table.
func (db *Database) Snapshot(table string) map[string]economy.Fields {
	db.mu.RLock()
	defer db.mu.RUnlock()

	snapshot := make(map[string]economy.Fields, len(db.tables[table]))
	for key, fields := range db.tables[table] {
		snapshot[key] = fields.Clone()
	}

	return snapshot
}

// Len returns the number of committed records in a table.
func (db *Database) Len(table string) int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return len(db.tables[table])
}

// Start opens a transaction scope.
func (s *Session) Start(ctx context.Context) error {
	if s.active {
		return economy.ErrTransactionInProgress
	}

	if err := s.db.fault(economy.OperationStart, "", ""); err != nil {
		return err
	}

	s.level = economy.GetIsolationLevel(ctx, s.db.isolation)
	if s.level == economy.Serializable {
		if err := s.db.acquire(ctx); err != nil {
			return err
		}
		s.holdsLock = true
	}

	s.active = true
	s.pending = make(map[recordRef]pendingWrite)
	s.order = s.order[:0]
	s.db.logDebug(economy.OperationStart, logAttrIsolation, s.level.String())

	return nil
}

// Commit applies all buffered writes atomically and closes the scope.
func (s *Session) Commit(_ context.Context) error {
	if !s.active {
		return nil
	}

	defer s.finish()

	if err := s.db.fault(economy.OperationCommit, "", ""); err != nil {
		s.db.logWarn(logMsgCommitFailed, err, logAttrWrites, len(s.order))
		return err
	}

	if err := s.db.apply(s.pending, s.order); err != nil {
		s.db.logWarn(logMsgCommitFailed, err, logAttrWrites, len(s.order))
		return err
	}

	s.db.logDebug(economy.OperationCommit, logAttrWrites, len(s.order))

	return nil
}

// Abort discards all buffered writes and closes the scope.
func (s *Session) Abort(_ context.Context) error {
	if !s.active {
		return nil
	}

	defer s.finish()

	if err := s.db.fault(economy.OperationAbort, "", ""); err != nil {
		return err
	}

	s.db.logDebug(economy.OperationAbort, logAttrWrites, len(s.order))

	return nil
}

// Read returns the requested fields of one record, including the scope's own buffered writes.
func (s *Session) Read(ctx context.Context, table, key string, fields []string) (economy.Fields, error) {
	if err := s.db.fault(economy.OperationRead, table, key); err != nil {
		return nil, err
	}

	unlock, err := s.autocommitLock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	s.db.mu.RLock()
	committed, exists := s.db.tables[table][key]
	record := committed.Clone()
	s.db.mu.RUnlock()

	if pw, ok := s.pending[recordRef{table: table, key: key}]; ok {
		if !exists {
			record = economy.Fields{}
			exists = true
		}
		for k, v := range pw.values {
			record[k] = v
		}
	}

	if !exists {
		return nil, errors.Join(economy.ErrRecordNotFound, fmt.Errorf("%s/%s", table, key))
	}

	s.db.logDebug(economy.OperationRead, logAttrTable, table, logAttrKey, key)

	return record.Clone(fields...), nil
}

// Scan returns up to count committed records with keys >= startKey in key order.
func (s *Session) Scan(
	ctx context.Context,
	table, startKey string,
	count int,
	fields []string,
) ([]economy.Fields, error) {

	if err := s.db.fault(economy.OperationScan, table, startKey); err != nil {
		return nil, err
	}

	unlock, err := s.autocommitLock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	keys := make([]string, 0, len(s.db.tables[table]))
	for key := range s.db.tables[table] {
		if strings.Compare(key, startKey) >= 0 {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	if count < len(keys) {
		keys = keys[:count]
	}

	result := make([]economy.Fields, 0, len(keys))
	for _, key := range keys {
		result = append(result, s.db.tables[table][key].Clone(fields...))
	}

	s.db.logDebug(economy.OperationScan, logAttrTable, table, logAttrKey, startKey)

	return result, nil
}

// Update merges values into an existing record.
func (s *Session) Update(ctx context.Context, table, key string, values economy.Fields) error {
	if err := s.db.fault(economy.OperationUpdate, table, key); err != nil {
		return err
	}

	ref := recordRef{table: table, key: key}
	_, buffered := s.pending[ref]

	if !buffered && !s.db.exists(table, key) {
		return errors.Join(economy.ErrRecordNotFound, fmt.Errorf("%s/%s", table, key))
	}

	s.db.logDebug(economy.OperationUpdate, logAttrTable, table, logAttrKey, key)

	if s.buffering() {
		s.buffer(ref, values, false)
		return nil
	}

	unlock, err := s.autocommitLock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	return s.db.apply(map[recordRef]pendingWrite{ref: {values: values}}, []recordRef{ref})
}

// Insert creates a new record.
func (s *Session) Insert(ctx context.Context, table, key string, values economy.Fields) error {
	if err := s.db.fault(economy.OperationInsert, table, key); err != nil {
		return err
	}

	ref := recordRef{table: table, key: key}
	if _, buffered := s.pending[ref]; buffered || s.db.exists(table, key) {
		return errors.Join(economy.ErrDuplicateKey, fmt.Errorf("%s/%s", table, key))
	}

	s.db.logDebug(economy.OperationInsert, logAttrTable, table, logAttrKey, key)

	if s.buffering() {
		s.buffer(ref, values, true)
		return nil
	}

	unlock, err := s.autocommitLock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	return s.db.apply(map[recordRef]pendingWrite{ref: {values: values, insert: true}}, []recordRef{ref})
}

func (s *Session) buffering() bool {
	return s.active && s.level != economy.ReadUncommitted
}

func (s *Session) buffer(ref recordRef, values economy.Fields, insert bool) {
	pw, ok := s.pending[ref]
	if !ok {
		pw = pendingWrite{values: economy.Fields{}, insert: insert}
		s.order = append(s.order, ref)
	}

	for k, v := range values {
		pw.values[k] = v
	}

	s.pending[ref] = pw
}

// autocommitLock serializes single operations outside a scope against serializable scopes.
func (s *Session) autocommitLock(ctx context.Context) (func(), error) {
	if s.active || s.db.isolation != economy.Serializable {
		return func() {}, nil
	}

	if err := s.db.acquire(ctx); err != nil {
		return nil, err
	}

	return s.db.release, nil
}

func (s *Session) finish() {
	if s.holdsLock {
		s.db.release()
		s.holdsLock = false
	}

	s.active = false
	s.pending = nil
	s.order = s.order[:0]
}

func (db *Database) acquire(ctx context.Context) error {
	select {
	case db.txLock <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (db *Database) release() {
	<-db.txLock
}

func (db *Database) exists(table, key string) bool {
	db.mu.RLock()
	defer db.mu.RUnlock()

	_, ok := db.tables[table][key]

	return ok
}

// apply validates all writes first and then applies them, so a commit is all or nothing.
func (db *Database) apply(writes map[recordRef]pendingWrite, order []recordRef) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, ref := range order {
		_, exists := db.tables[ref.table][ref.key]
		switch {
		case writes[ref].insert && exists:
			return errors.Join(economy.ErrDuplicateKey, fmt.Errorf("%s/%s", ref.table, ref.key))
		case !writes[ref].insert && !exists:
			return errors.Join(economy.ErrRecordNotFound, fmt.Errorf("%s/%s", ref.table, ref.key))
		}
	}

	for _, ref := range order {
		table, ok := db.tables[ref.table]
		if !ok {
			table = make(map[string]economy.Fields)
			db.tables[ref.table] = table
		}

		record, ok := table[ref.key]
		if !ok {
			record = economy.Fields{}
			table[ref.key] = record
		}

		for k, v := range writes[ref].values {
			record[k] = v
		}
	}

	return nil
}

func (db *Database) fault(op economy.StoreOperation, table, key string) error {
	if db.faultHook == nil {
		return nil
	}

	return db.faultHook(op, table, key)
}

func (db *Database) logDebug(op economy.StoreOperation, args ...any) {
	if db.logger != nil {
		db.logger.Debug(logMsgOperation+string(op), args...)
	}
}

func (db *Database) logWarn(msg string, err error, args ...any) {
	if db.logger != nil {
		allArgs := []any{logAttrError, err.Error()}
		allArgs = append(allArgs, args...)
		db.logger.Warn(msg, allArgs...)
	}
}

// Ensure Session implements economy.Store.
var _ economy.Store = (*Session)(nil)

// Ensure Database implements economy.SessionFactory.
var _ economy.SessionFactory = (*Database)(nil)
