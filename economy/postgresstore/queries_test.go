package postgresstore

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/closed-economy-workload/economy"
	"github.com/AntonStoeckl/closed-economy-workload/testutil/helper"
)

func Test_BuildReadQuery(t *testing.T) {
	// act
	plain, err := buildReadQuery("usertable", "user7", false)
	require.NoError(t, err)
	locking, err := buildReadQuery("usertable", "user7", true)
	require.NoError(t, err)

	// assert
	assert.Equal(t, `SELECT "fields" FROM "usertable" WHERE ("ycsb_key" = 'user7')`, plain)
	assert.Equal(t, `SELECT "fields" FROM "usertable" WHERE ("ycsb_key" = 'user7') FOR UPDATE`, strings.TrimSpace(locking))
}

func Test_BuildScanQuery(t *testing.T) {
	// act
	sqlQuery, err := buildScanQuery("usertable", "user10", 5)

	// assert
	require.NoError(t, err)
	assert.Equal(t, `SELECT "fields" FROM "usertable" WHERE ("ycsb_key" >= 'user10') ORDER BY "ycsb_key" ASC LIMIT 5`, sqlQuery)
}

func Test_BuildUpdateQuery_MergesIntoTheStoredObject(t *testing.T) {
	// act
	sqlQuery, err := buildUpdateQuery("usertable", "user1", economy.BalanceFields(42))

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `UPDATE "usertable" SET "fields"="fields" || '{"field0":"42"}'::jsonb`)
	assert.Contains(t, sqlQuery, `WHERE ("ycsb_key" = 'user1')`)
}

func Test_BuildInsertQuery_SkipsExistingKeys(t *testing.T) {
	// act
	sqlQuery, err := buildInsertQuery("usertable", "user1", economy.Fields{"field0": "10", "field1": "it's"})

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `INSERT INTO "usertable"`)
	assert.Contains(t, sqlQuery, `'{"field0":"10","field1":"it''s"}'::jsonb`)
	assert.Contains(t, sqlQuery, `'user1'`)
	assert.Contains(t, sqlQuery, `ON CONFLICT DO NOTHING`)
}

func Test_BuildQueries_When_TableNameIsEmpty(t *testing.T) {
	_, err := buildReadQuery("", "user1", false)
	assert.ErrorIs(t, err, economy.ErrEmptyTableNameSupplied)

	_, err = buildScanQuery("", "user1", 1)
	assert.ErrorIs(t, err, economy.ErrEmptyTableNameSupplied)

	_, err = buildUpdateQuery("", "user1", economy.BalanceFields(1))
	assert.ErrorIs(t, err, economy.ErrEmptyTableNameSupplied)

	_, err = buildInsertQuery("", "user1", economy.BalanceFields(1))
	assert.ErrorIs(t, err, economy.ErrEmptyTableNameSupplied)
}

func Test_SchemaStatements(t *testing.T) {
	assert.Equal(t,
		`CREATE TABLE IF NOT EXISTS "usertable" ("ycsb_key" VARCHAR(255) PRIMARY KEY, "fields" JSONB NOT NULL)`,
		buildCreateTableStatement("usertable"))
	assert.Equal(t, `DROP TABLE IF EXISTS "my""table"`, buildDropTableStatement(`my"table`))
}

func Test_DecodeFields(t *testing.T) {
	// act
	record, err := decodeFields([]byte(`{"field0": "5", "field1": "abc"}`))
	require.NoError(t, err)
	_, decodeErr := decodeFields([]byte(`{"field0": 5`))

	// assert
	assert.Equal(t, economy.Fields{"field0": "5", "field1": "abc"}, record)
	assert.ErrorIs(t, decodeErr, ErrDecodingFieldsFailed)
}

func Test_OperationObserver_ReportsSuccessAndFailures(t *testing.T) {
	// setup
	metrics := helper.NewMetricsCollectorSpy(true)
	tracing := helper.NewTracingCollectorSpy(true)
	logger := helper.NewContextualLoggerSpy()
	db := &Database{metricsCollector: metrics, tracingCollector: tracing, contextualLogger: logger}

	// act
	ctx, observer := db.observe(context.Background(), economy.OperationRead, "usertable")
	observer.finish(ctx, nil, "SELECT 1")

	ctx, observer = db.observe(context.Background(), economy.OperationUpdate, "usertable")
	observer.finish(ctx, errors.Join(economy.ErrRecordNotFound, errors.New("usertable/user9")), "UPDATE 1")

	ctx, observer = db.observe(context.Background(), economy.OperationCommit, "")
	observer.finish(ctx, errors.Join(ErrCommittingTransactionFailed, errors.New("could not serialize access")), "")

	// assert
	assert.True(t, metrics.HasDurationRecordForMetric(metricStoreDuration).WithOperation("read").WithStatus(statusSuccess).Assert())
	assert.True(t, metrics.HasCounterRecordForMetric(metricStoreErrors).WithOperation("update").WithErrorType(errorTypeNotFound).Assert())
	assert.True(t, metrics.HasCounterRecordForMetric(metricStoreErrors).WithOperation("commit").WithErrorType(errorTypeDatabaseError).Assert())

	spans := tracing.GetSpanRecords()
	require.Len(t, spans, 3)
	assert.Equal(t, "postgresstore.read", spans[0].Name)
	assert.Equal(t, statusSuccess, spans[0].Status)
	assert.Equal(t, statusError, spans[2].Status)
	assert.Equal(t, errorTypeDatabaseError, spans[2].EndAttributes[spanAttrErrorType])

	assert.Len(t, logger.GetRecordsByLevel("debug"), 2)
	assert.Len(t, logger.GetRecordsByLevel("info"), 1)
	assert.Len(t, logger.GetRecordsByLevel("error"), 1)
}
