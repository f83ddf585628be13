package memorystore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/closed-economy-workload/economy"
	"github.com/AntonStoeckl/closed-economy-workload/economy/memorystore"
)

const table = "usertable"

func newDatabase(t *testing.T, options ...memorystore.Option) *memorystore.Database {
	t.Helper()

	db, err := memorystore.New(options...)
	require.NoError(t, err)

	return db
}

func seed(t *testing.T, db *memorystore.Database, balances ...int64) {
	t.Helper()

	session := db.NewSession()
	for i, balance := range balances {
		require.NoError(t, session.Insert(context.Background(), table, economy.AccountKey(int64(i)), economy.BalanceFields(balance)))
	}
}

func balanceOf(t *testing.T, db *memorystore.Database, index int64) int64 {
	t.Helper()

	balance, err := economy.BalanceOf(db.Snapshot(table)[economy.AccountKey(index)])
	require.NoError(t, err)

	return balance
}

func Test_Session_InsertAndRead(t *testing.T) {
	// setup
	ctx := context.Background()
	db := newDatabase(t)
	session := db.NewSession()

	// act
	err := session.Insert(ctx, table, "user1", economy.Fields{"field0": "10", "field1": "filler"})
	require.NoError(t, err)

	all, allErr := session.Read(ctx, table, "user1", nil)
	some, someErr := session.Read(ctx, table, "user1", []string{"field0"})

	// assert
	require.NoError(t, allErr)
	require.NoError(t, someErr)
	assert.Equal(t, economy.Fields{"field0": "10", "field1": "filler"}, all)
	assert.Equal(t, economy.Fields{"field0": "10"}, some)
	assert.Equal(t, 1, db.Len(table))
}

func Test_Session_Errors_When_RecordMissingOrDuplicate(t *testing.T) {
	// setup
	ctx := context.Background()
	db := newDatabase(t)
	seed(t, db, 5)
	session := db.NewSession()

	// act
	_, readErr := session.Read(ctx, table, "user9", nil)
	updateErr := session.Update(ctx, table, "user9", economy.BalanceFields(1))
	insertErr := session.Insert(ctx, table, "user0", economy.BalanceFields(1))

	// assert
	assert.ErrorIs(t, readErr, economy.ErrRecordNotFound)
	assert.ErrorIs(t, updateErr, economy.ErrRecordNotFound)
	assert.ErrorIs(t, insertErr, economy.ErrDuplicateKey)
}

func Test_Session_Commit_AppliesBufferedWrites(t *testing.T) {
	for _, level := range []economy.IsolationLevel{economy.Serializable, economy.ReadCommitted} {
		t.Run(level.String(), func(t *testing.T) {
			// setup
			ctx := context.Background()
			db := newDatabase(t, memorystore.WithIsolationLevel(level))
			seed(t, db, 5, 0)
			session := db.NewSession()

			// act
			require.NoError(t, session.Start(ctx))
			require.NoError(t, session.Update(ctx, table, "user0", economy.BalanceFields(4)))
			require.NoError(t, session.Update(ctx, table, "user1", economy.BalanceFields(1)))

			ownView, err := session.Read(ctx, table, "user0", nil)
			require.NoError(t, err)

			// assert
			assert.Equal(t, "4", ownView[economy.BalanceField], "a scope reads its own writes")
			assert.Equal(t, int64(5), balanceOf(t, db, 0), "nothing is visible before commit")

			require.NoError(t, session.Commit(ctx))
			assert.Equal(t, int64(4), balanceOf(t, db, 0))
			assert.Equal(t, int64(1), balanceOf(t, db, 1))
		})
	}
}

func Test_Session_Abort_DiscardsBufferedWrites(t *testing.T) {
	// setup
	ctx := context.Background()
	db := newDatabase(t)
	seed(t, db, 5, 0)
	session := db.NewSession()

	// act
	require.NoError(t, session.Start(ctx))
	require.NoError(t, session.Update(ctx, table, "user0", economy.BalanceFields(4)))
	require.NoError(t, session.Abort(ctx))

	// assert
	assert.Equal(t, int64(5), balanceOf(t, db, 0))
}

func Test_Session_Abort_When_ReadUncommitted_CanNotUndo(t *testing.T) {
	// setup
	ctx := context.Background()
	db := newDatabase(t, memorystore.WithIsolationLevel(economy.ReadUncommitted))
	seed(t, db, 5)
	session := db.NewSession()

	// act
	require.NoError(t, session.Start(ctx))
	require.NoError(t, session.Update(ctx, table, "user0", economy.BalanceFields(4)))
	require.NoError(t, session.Abort(ctx))

	// assert
	assert.Equal(t, int64(4), balanceOf(t, db, 0))
}

func Test_Session_Start_When_AlreadyStarted(t *testing.T) {
	// setup
	ctx := context.Background()
	db := newDatabase(t, memorystore.WithIsolationLevel(economy.ReadCommitted))
	session := db.NewSession()

	// act
	require.NoError(t, session.Start(ctx))
	err := session.Start(ctx)

	// assert
	assert.ErrorIs(t, err, economy.ErrTransactionInProgress)
	assert.Equal(t, economy.StatusTransactionInProgress, economy.StatusOf(err))
}

func Test_Session_Start_When_Serializable_BlocksConcurrentScope(t *testing.T) {
	// setup
	db := newDatabase(t, memorystore.WithIsolationLevel(economy.Serializable))
	first := db.NewSession()
	second := db.NewSession()

	require.NoError(t, first.Start(context.Background()))

	// act
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	blockedErr := second.Start(ctx)

	require.NoError(t, first.Commit(context.Background()))
	freedErr := second.Start(context.Background())

	// assert
	assert.ErrorIs(t, blockedErr, context.DeadlineExceeded)
	assert.NoError(t, freedErr)
}

func Test_Session_Commit_When_ReadCommitted_LosesConcurrentUpdate(t *testing.T) {
	// setup
	ctx := context.Background()
	db := newDatabase(t, memorystore.WithIsolationLevel(economy.ReadCommitted))
	seed(t, db, 10)
	first := db.NewSession()
	second := db.NewSession()

	// act: both scopes read 10 and both write back their own decrement
	require.NoError(t, first.Start(ctx))
	require.NoError(t, second.Start(ctx))

	for _, session := range []economy.Store{first, second} {
		fields, err := session.Read(ctx, table, "user0", nil)
		require.NoError(t, err)
		balance, err := economy.BalanceOf(fields)
		require.NoError(t, err)
		require.NoError(t, session.Update(ctx, table, "user0", economy.BalanceFields(balance-1)))
	}

	require.NoError(t, first.Commit(ctx))
	require.NoError(t, second.Commit(ctx))

	// assert
	assert.Equal(t, int64(9), balanceOf(t, db, 0))
}

func Test_Session_FaultHook(t *testing.T) {
	// setup
	ctx := context.Background()
	injected := errors.New("injected")
	db := newDatabase(t, memorystore.WithFaultHook(func(op economy.StoreOperation, _, key string) error {
		if op == economy.OperationUpdate && key == "user1" {
			return injected
		}
		if op == economy.OperationCommit {
			return injected
		}
		return nil
	}))
	seed(t, db, 5, 0)
	session := db.NewSession()

	// act
	require.NoError(t, session.Start(ctx))
	firstErr := session.Update(ctx, table, "user0", economy.BalanceFields(4))
	secondErr := session.Update(ctx, table, "user1", economy.BalanceFields(1))
	commitErr := session.Commit(ctx)

	// assert
	assert.NoError(t, firstErr)
	assert.ErrorIs(t, secondErr, injected)
	assert.ErrorIs(t, commitErr, injected)
	assert.Equal(t, int64(5), balanceOf(t, db, 0), "a failed commit applies nothing")
	assert.NoError(t, session.Start(ctx), "a failed commit closes the scope")
}

func Test_Session_Scan(t *testing.T) {
	// setup
	ctx := context.Background()
	db := newDatabase(t)
	seed(t, db, 0, 1, 2, 3, 4)
	session := db.NewSession()

	// act
	records, err := session.Scan(ctx, table, "user2", 2, []string{economy.BalanceField})

	// assert
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2", records[0][economy.BalanceField])
	assert.Equal(t, "3", records[1][economy.BalanceField])
}
