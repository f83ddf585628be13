package workload_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/closed-economy-workload/economy"
	"github.com/AntonStoeckl/closed-economy-workload/economy/memorystore"
	"github.com/AntonStoeckl/closed-economy-workload/workload"
)

func bankEconomy() workload.Properties {
	return workload.Properties{
		"workload":                 "bank",
		"recordcount":              "2",
		"initialcash":              "3",
		"fieldcount":               "2",
		"fieldlength":              "8",
		"rewardcustomerproportion": "0.5",
		"paytobankproportion":      "0.5",
	}
}

func Test_RewardCustomer_MovesOneUnitFromTheBank(t *testing.T) {
	// setup
	f := newFixture(t, bankEconomy(), nil)
	f.load(t)

	// act
	outcome := f.workload.RewardCustomer(context.Background(), f.db.NewSession())

	// assert
	assert.Equal(t, workload.OutcomeCommitted, outcome)
	assert.Equal(t, int64(2), f.workload.Bank().Balance())
	assert.Equal(t, int64(7), sum(f.balances(t)))
}

func Test_RewardCustomer_When_BankIsEmpty(t *testing.T) {
	// setup
	f := newFixture(t, bankEconomy(), nil)
	f.load(t)

	for i := 0; i < 3; i++ {
		require.Equal(t, workload.OutcomeCommitted, f.workload.RewardCustomer(context.Background(), f.db.NewSession()))
	}
	before := f.balances(t)

	// act
	outcome := f.workload.RewardCustomer(context.Background(), f.db.NewSession())

	// assert
	assert.Equal(t, workload.OutcomeUnexpectedState, outcome)
	assert.Equal(t, int64(0), f.workload.Bank().Balance())
	assert.Equal(t, before, f.balances(t))
	assert.Equal(t, int64(9), sum(before))
}

func Test_RewardCustomer_When_UpdateFails_GivesTheUnitBack(t *testing.T) {
	// setup
	f := newFixture(t, bankEconomy(), []memorystore.Option{
		memorystore.WithFaultHook(func(op economy.StoreOperation, _, _ string) error {
			if op == economy.OperationUpdate {
				return errors.New("update refused")
			}
			return nil
		}),
	})
	f.load(t)

	// act
	outcome := f.workload.RewardCustomer(context.Background(), f.db.NewSession())

	// assert
	assert.Equal(t, workload.OutcomeUnexpectedState, outcome)
	assert.Equal(t, int64(3), f.workload.Bank().Balance())
	assert.Equal(t, []int64{3, 3}, f.balances(t))
}

func Test_PayToBank_MovesOneUnitToTheBank(t *testing.T) {
	// setup
	f := newFixture(t, bankEconomy(), nil)
	f.load(t)

	// act
	outcome := f.workload.PayToBank(context.Background(), f.db.NewSession())

	// assert
	assert.Equal(t, workload.OutcomeCommitted, outcome)
	assert.Equal(t, int64(4), f.workload.Bank().Balance())
	assert.Equal(t, int64(5), sum(f.balances(t)))
}

func Test_PayToBank_When_AccountIsEmpty(t *testing.T) {
	// setup
	f := newFixture(t, bankEconomy(), nil)
	f.load(t)
	f.setBalances(t, 0, 0)

	// act
	outcome := f.workload.PayToBank(context.Background(), f.db.NewSession())

	// assert
	assert.Equal(t, workload.OutcomeUnexpectedState, outcome)
	assert.Equal(t, int64(3), f.workload.Bank().Balance())
	assert.Equal(t, []int64{0, 0}, f.balances(t))
}

func Test_PayToBank_When_CommitIsRejected_TheBankGetsNothing(t *testing.T) {
	// setup
	f := newFixture(t, bankEconomy(), []memorystore.Option{
		memorystore.WithFaultHook(func(op economy.StoreOperation, _, _ string) error {
			if op == economy.OperationCommit {
				return errors.New("serialization failure")
			}
			return nil
		}),
	})
	f.load(t)

	// act
	outcome := f.workload.PayToBank(context.Background(), f.db.NewSession())

	// assert
	assert.Equal(t, workload.OutcomeUnexpectedState, outcome)
	assert.Equal(t, int64(3), f.workload.Bank().Balance())
	assert.Equal(t, []int64{3, 3}, f.balances(t))
}

func Test_BankEconomy_ConservesMoneyAcrossManyOperations(t *testing.T) {
	// setup
	f := newFixture(t, bankEconomy(), nil)
	f.load(t)
	session := f.db.NewSession()

	// act
	for i := 0; i < 500; i++ {
		_, err := f.workload.DoTransaction(context.Background(), session)
		require.NoError(t, err)
	}

	result, err := f.workload.Validate(context.Background(), f.db.NewSession())
	require.NoError(t, err)

	// assert
	assert.True(t, result.OK)
	assert.Equal(t, int64(9), result.ExpectedTotal)
	assert.Equal(t, int64(9), result.CountedTotal)
	assert.Equal(t, f.workload.Bank().Balance(), result.BankBalance)
	assert.Zero(t, result.AnomalyScore)
	assert.True(t, strings.Contains(f.report.String(), "Validation successful"))
}

func Test_Read_When_BankVariant_HonorsReadAllFields(t *testing.T) {
	// setup
	props := bankEconomy()
	props["readproportion"] = "1"
	props["rewardcustomerproportion"] = "0"
	props["paytobankproportion"] = "0"
	props["printKeysInReadOperation"] = "true"
	f := newFixture(t, props, nil)
	f.load(t)

	// act
	outcome, err := f.workload.DoTransaction(context.Background(), f.db.NewSession())

	// assert
	require.NoError(t, err)
	assert.Equal(t, workload.OutcomeCommitted, outcome)
	assert.Regexp(t, `^\*\*\* R\t[01]\n$`, f.trace.String())
}
