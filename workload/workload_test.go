package workload_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/closed-economy-workload/economy"
	"github.com/AntonStoeckl/closed-economy-workload/economy/memorystore"
	"github.com/AntonStoeckl/closed-economy-workload/generator"
	"github.com/AntonStoeckl/closed-economy-workload/workload"
)

const table = "usertable"

type fixture struct {
	db       *memorystore.Database
	workload *workload.Workload
	report   *bytes.Buffer
	trace    *bytes.Buffer
}

func newFixture(t *testing.T, props workload.Properties, dbOptions []memorystore.Option, options ...workload.Option) fixture {
	t.Helper()

	cfg, err := workload.NewConfig(props)
	require.NoError(t, err)

	db, err := memorystore.New(dbOptions...)
	require.NoError(t, err)

	report := &bytes.Buffer{}
	trace := &bytes.Buffer{}

	allOptions := []workload.Option{
		workload.WithRand(generator.NewRand(1)),
		workload.WithReportWriter(report),
		workload.WithTraceWriter(trace),
	}
	allOptions = append(allOptions, options...)

	w, err := workload.New(cfg, allOptions...)
	require.NoError(t, err)

	return fixture{db: db, workload: w, report: report, trace: trace}
}

func (f fixture) load(t *testing.T) {
	t.Helper()

	session := f.db.NewSession()
	for i := int64(0); i < f.workload.Config().RecordCount; i++ {
		require.NoError(t, f.workload.DoInsert(context.Background(), session))
	}
}

func (f fixture) setBalances(t *testing.T, balances ...int64) {
	t.Helper()

	session := f.db.NewSession()
	for i, balance := range balances {
		require.NoError(t, session.Update(context.Background(), table, economy.AccountKey(int64(i)), economy.BalanceFields(balance)))
	}
}

func (f fixture) balances(t *testing.T) []int64 {
	t.Helper()

	snapshot := f.db.Snapshot(table)
	balances := make([]int64, f.workload.Config().RecordCount)

	for i := range balances {
		balance, err := economy.BalanceOf(snapshot[economy.AccountKey(int64(i))])
		require.NoError(t, err)
		balances[i] = balance
	}

	return balances
}

func sum(values []int64) int64 {
	total := int64(0)
	for _, v := range values {
		total += v
	}

	return total
}
