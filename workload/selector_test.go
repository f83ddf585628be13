package workload_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/closed-economy-workload/generator"
	"github.com/AntonStoeckl/closed-economy-workload/workload"
)

func Test_BoundedKeySelector_IsFlatOverTheInsertedAccounts(t *testing.T) {
	// setup
	rnd := generator.NewRand(7)
	chooser, err := generator.NewUniform(0, 99, rnd)
	require.NoError(t, err)
	selector := workload.NewBoundedKeySelector(chooser, generator.NewCounter(100))

	counts := make([]int, 100)
	draws := 10000

	// act
	for i := 0; i < draws; i++ {
		index := selector.Next()
		require.GreaterOrEqual(t, index, int64(0))
		require.LessOrEqual(t, index, int64(99))
		counts[index]++
	}

	// assert
	for index, count := range counts {
		assert.Positive(t, count, "index %d never drawn", index)
		assert.InDelta(t, 0.01, float64(count)/float64(draws), 0.004, "index %d", index)
	}
}

func Test_BoundedKeySelector_RejectsIndicesNotInsertedYet(t *testing.T) {
	// setup
	chooser, err := generator.NewUniform(0, 999, generator.NewRand(3))
	require.NoError(t, err)
	inserted := generator.NewCounter(10)
	selector := workload.NewBoundedKeySelector(chooser, inserted)

	// act & assert
	for i := 0; i < 1000; i++ {
		assert.LessOrEqual(t, selector.Next(), int64(9))
	}

	inserted.Next()
	seen := false
	for i := 0; i < 20000 && !seen; i++ {
		seen = selector.Next() == 10
	}
	assert.True(t, seen, "a newly inserted account becomes selectable")
}

func Test_OffsetKeySelector_CountsBackFromTheLatestAccount(t *testing.T) {
	// setup
	selector := workload.NewOffsetKeySelector(generator.NewConstant(3), generator.NewCounter(10))

	// act & assert
	assert.Equal(t, int64(6), selector.Next())
}

func Test_KeySelector_When_ZipfianOverTwoAccounts(t *testing.T) {
	// setup
	f := newFixture(t, workload.Properties{
		"recordcount":         "2",
		"fieldcount":          "1",
		"requestdistribution": "zipfian",
	}, nil)

	// act & assert
	for i := 0; i < 1000; i++ {
		index := f.workload.KeySelector().Next()
		assert.True(t, index == 0 || index == 1, "got %d", index)
	}
}

func Test_OperationSelector_FollowsTheWeights(t *testing.T) {
	// setup
	selector := workload.NewOperationSelector(generator.NewRand(11))
	selector.Add(0.25, workload.OperationRead)
	selector.Add(0, workload.OperationScan)
	selector.Add(0.75, workload.OperationTransfer)

	counts := map[workload.Operation]int{}
	draws := 20000

	// act
	for i := 0; i < draws; i++ {
		counts[selector.Next()]++
	}

	// assert
	assert.Equal(t, 1.0, selector.Total())
	assert.Zero(t, counts[workload.OperationScan])
	assert.InDelta(t, 0.25, float64(counts[workload.OperationRead])/float64(draws), 0.02)
	assert.InDelta(t, 0.75, float64(counts[workload.OperationTransfer])/float64(draws), 0.02)
}

func Test_OperationSelector_When_WeightsDoNotSumToOne(t *testing.T) {
	// setup
	selector := workload.NewOperationSelector(generator.NewRand(5))
	assert.True(t, selector.Empty())
	selector.Add(3, workload.OperationPayToBank)
	selector.Add(1, workload.OperationRewardCustomer)

	payments := 0
	draws := 10000

	// act
	for i := 0; i < draws; i++ {
		if selector.Next() == workload.OperationPayToBank {
			payments++
		}
	}

	// assert
	assert.False(t, selector.Empty())
	assert.InDelta(t, 0.75, float64(payments)/float64(draws), 0.02)
}

func Test_Operation_MeasurementName(t *testing.T) {
	assert.Equal(t, "TX-READ", workload.OperationRead.MeasurementName())
	assert.Equal(t, "TX-SCAN", workload.OperationScan.MeasurementName())
	assert.Equal(t, "TX-TransferBetweenAcc", workload.OperationTransfer.MeasurementName())
	assert.Equal(t, "TX-PayToBank", workload.OperationPayToBank.MeasurementName())
	assert.Equal(t, "TX-RewardCustomer", workload.OperationRewardCustomer.MeasurementName())
}
