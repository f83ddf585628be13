package postgresstore_test

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/closed-economy-workload/economy"
	"github.com/AntonStoeckl/closed-economy-workload/economy/postgresstore"
	"github.com/AntonStoeckl/closed-economy-workload/testutil/helper/postgreswrapper"
	"github.com/AntonStoeckl/closed-economy-workload/workload"
)

const table = "usertable"

func Test_FactoryFunctions_ShouldFail_WithNilDatabaseConnection(t *testing.T) {
	testCases := []struct {
		name        string
		factoryFunc func() (*postgresstore.Database, error)
	}{
		{
			name: "NewDatabaseFromPGXPool with nil",
			factoryFunc: func() (*postgresstore.Database, error) {
				return postgresstore.NewDatabaseFromPGXPool(nil)
			},
		},
		{
			name: "NewDatabaseFromPGXPoolWithReplica with nil",
			factoryFunc: func() (*postgresstore.Database, error) {
				return postgresstore.NewDatabaseFromPGXPoolWithReplica(nil, nil)
			},
		},
		{
			name: "NewDatabaseFromSQLDB with nil",
			factoryFunc: func() (*postgresstore.Database, error) {
				return postgresstore.NewDatabaseFromSQLDB(nil)
			},
		},
		{
			name: "NewDatabaseFromSQLX with nil",
			factoryFunc: func() (*postgresstore.Database, error) {
				return postgresstore.NewDatabaseFromSQLX(nil)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db, err := tc.factoryFunc()
			assert.ErrorIs(t, err, economy.ErrNilDatabaseConnection)
			assert.Nil(t, db)
		})
	}
}

func Test_InsertReadUpdate(t *testing.T) {
	// setup
	db := postgreswrapper.ConnectPostgresDatabase(t)
	session := db.NewSession()
	ctx := context.Background()

	// arrange
	require.NoError(t, session.Insert(ctx, table, "user0", economy.Fields{"field0": "10", "field1": "filler"}))

	// act
	require.NoError(t, session.Update(ctx, table, "user0", economy.BalanceFields(9)))
	all, err := session.Read(ctx, table, "user0", nil)
	require.NoError(t, err)
	balanceOnly, err := session.Read(ctx, table, "user0", []string{economy.BalanceField})
	require.NoError(t, err)

	// assert
	assert.Equal(t, economy.Fields{"field0": "9", "field1": "filler"}, all)
	assert.Equal(t, economy.Fields{"field0": "9"}, balanceOnly)
}

func Test_MissingAndDuplicateRecords(t *testing.T) {
	// setup
	db := postgreswrapper.ConnectPostgresDatabase(t)
	session := db.NewSession()
	ctx := context.Background()
	require.NoError(t, session.Insert(ctx, table, "user0", economy.BalanceFields(1)))

	// act
	_, readErr := session.Read(ctx, table, "user1", nil)
	updateErr := session.Update(ctx, table, "user1", economy.BalanceFields(1))
	insertErr := session.Insert(ctx, table, "user0", economy.BalanceFields(2))

	// assert
	assert.ErrorIs(t, readErr, economy.ErrRecordNotFound)
	assert.ErrorIs(t, updateErr, economy.ErrRecordNotFound)
	assert.ErrorIs(t, insertErr, economy.ErrDuplicateKey)
}

func Test_Scan_ReturnsRecordsInKeyOrder(t *testing.T) {
	// setup
	db := postgreswrapper.ConnectPostgresDatabase(t)
	session := db.NewSession()
	ctx := context.Background()

	for i := int64(0); i < 5; i++ {
		require.NoError(t, session.Insert(ctx, table, economy.AccountKey(i), economy.BalanceFields(i)))
	}

	// act
	records, err := session.Scan(ctx, table, "user2", 2, []string{economy.BalanceField})

	// assert
	require.NoError(t, err)
	assert.Equal(t, []economy.Fields{{"field0": "2"}, {"field0": "3"}}, records)
}

func Test_Abort_DiscardsWrites(t *testing.T) {
	// setup
	db := postgreswrapper.ConnectPostgresDatabase(t)
	session := db.NewSession()
	ctx := context.Background()
	require.NoError(t, session.Insert(ctx, table, "user0", economy.BalanceFields(5)))

	// act
	require.NoError(t, session.Start(ctx))
	assert.ErrorIs(t, session.Start(ctx), economy.ErrTransactionInProgress)
	require.NoError(t, session.Update(ctx, table, "user0", economy.BalanceFields(0)))
	require.NoError(t, session.Abort(ctx))

	// assert
	record, err := session.Read(ctx, table, "user0", nil)
	require.NoError(t, err)
	assert.Equal(t, "5", record[economy.BalanceField])
	assert.NoError(t, session.Commit(ctx), "commit without a scope is a no-op")
}

func Test_Workload_ConservesMoney_When_Serializable(t *testing.T) {
	// setup
	db := postgreswrapper.ConnectPostgresDatabase(t,
		postgresstore.WithIsolationLevel(economy.Serializable),
		postgresstore.WithLockingReads())

	cfg, err := workload.NewConfig(workload.Properties{
		"recordcount":         "20",
		"initialcash":         "10",
		"fieldcount":          "2",
		"fieldlength":         "10",
		"requestdistribution": "zipfian",
	})
	require.NoError(t, err)

	w, err := workload.New(cfg, workload.WithReportWriter(io.Discard), workload.WithTraceWriter(io.Discard))
	require.NoError(t, err)

	loader := db.NewSession()
	for i := 0; i < 20; i++ {
		require.NoError(t, w.DoInsert(context.Background(), loader))
	}

	wg := sync.WaitGroup{}

	// act
	for worker := 0; worker < 4; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session := db.NewSession()
			for i := 0; i < 50; i++ {
				_, txErr := w.DoTransaction(context.Background(), session)
				assert.NoError(t, txErr)
			}
		}()
	}
	wg.Wait()

	result, err := w.Validate(context.Background(), db.NewSession())

	// assert
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, int64(200), result.CountedTotal)
}
