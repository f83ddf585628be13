package measurement_test

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/closed-economy-workload/economy"
	"github.com/AntonStoeckl/closed-economy-workload/measurement"
	"github.com/AntonStoeckl/closed-economy-workload/testutil/helper"
)

func Test_Collector_Snapshot(t *testing.T) {
	// setup
	collector, err := measurement.New()
	require.NoError(t, err)

	// act
	collector.Measure("TX-READ", 2500*time.Microsecond)
	collector.Measure("TX-READ", 500*time.Microsecond)
	collector.ReportStatus("TX-READ", economy.StatusOK)
	collector.ReportStatus("TX-READ", economy.StatusErrorWhileReading)
	collector.Measure("INSERT", time.Millisecond)
	collector.ReportStatus("INSERT", economy.StatusOK)

	// assert
	snapshot := collector.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "INSERT", snapshot[0].Name)

	read := snapshot[1]
	assert.Equal(t, int64(2), read.Count)
	assert.Equal(t, 500*time.Microsecond, read.Min)
	assert.Equal(t, 2500*time.Microsecond, read.Max)
	assert.Equal(t, 1500*time.Microsecond, read.Average())
	assert.Equal(t, 3*time.Millisecond, read.P99)
	assert.Equal(t, map[string]int64{"OK": 1, "ERROR_WHILE_READING": 1}, read.Statuses)
	assert.Equal(t, []string{"ERROR_WHILE_READING", "OK"}, read.StatusNames())
	assert.Equal(t, int64(3), collector.Operations())
}

func Test_Collector_Percentile_When_LatencyExceedsBuckets_It_ReportsMax(t *testing.T) {
	// setup
	collector, err := measurement.New(measurement.WithHistogramBuckets(2))
	require.NoError(t, err)

	// act
	collector.Measure("TX-SCAN", 50*time.Millisecond)

	// assert
	assert.Equal(t, 50*time.Millisecond, collector.Snapshot()[0].P95)
}

func Test_New_When_BucketCountIsInvalid_It_Fails(t *testing.T) {
	_, err := measurement.New(measurement.WithHistogramBuckets(0))

	assert.ErrorIs(t, err, measurement.ErrInvalidBucketCount)
}

func Test_Collector_Export(t *testing.T) {
	// setup
	collector, err := measurement.New()
	require.NoError(t, err)

	collector.Measure("TX-TransferBetweenAcc", 1200*time.Microsecond)
	collector.ReportStatus("TX-TransferBetweenAcc", economy.StatusOK)
	collector.ReportStatus("TX-TransferBetweenAcc", economy.StatusInsufficientBalance)

	out := &bytes.Buffer{}

	// act
	err = collector.Export(out, 2*time.Second, 10)

	// assert
	require.NoError(t, err)
	assert.Equal(t,
		"[OVERALL], RunTime(ms), 2000\n"+
			"[OVERALL], Throughput(ops/sec), 5\n"+
			"[TX-TransferBetweenAcc], Operations, 1\n"+
			"[TX-TransferBetweenAcc], AverageLatency(us), 1200\n"+
			"[TX-TransferBetweenAcc], MinLatency(us), 1200\n"+
			"[TX-TransferBetweenAcc], MaxLatency(us), 1200\n"+
			"[TX-TransferBetweenAcc], 95thPercentileLatency(us), 2000\n"+
			"[TX-TransferBetweenAcc], 99thPercentileLatency(us), 2000\n"+
			"[TX-TransferBetweenAcc], Return=INSUFFICIENT_BALANCE, 1\n"+
			"[TX-TransferBetweenAcc], Return=OK, 1\n",
		out.String())
}

func Test_Collector_Summary_When_Called_Twice_It_StartsANewInterval(t *testing.T) {
	// setup
	collector, err := measurement.New()
	require.NoError(t, err)

	collector.Measure("TX-READ", 100*time.Microsecond)
	collector.Measure("TX-READ", 300*time.Microsecond)

	// act
	first := collector.Summary()
	second := collector.Summary()

	// assert
	assert.Equal(t, "[TX-READ: Count=2, Max=300, Min=100, Avg=200.00]", first)
	assert.Empty(t, second)
	assert.Equal(t, int64(2), collector.Snapshot()[0].Count)
}

func Test_Collector_When_MetricsAreEnabled_It_ForwardsMeasurements(t *testing.T) {
	// setup
	spy := helper.NewMetricsCollectorSpy(true)
	collector, err := measurement.New(measurement.WithMetrics(spy))
	require.NoError(t, err)

	// act
	collector.Measure("TX-PayToBank", time.Millisecond)
	collector.ReportStatus("TX-PayToBank", economy.StatusUnexpectedState)

	// assert
	require.Len(t, spy.GetDurationRecords(), 1)
	assert.Equal(t, 1, spy.CountCounterRecordsForMetric(
		"closedeconomy_measurement_returns_total",
		map[string]string{"measurement": "TX-PayToBank", "status": "UNEXPECTED_STATE"},
	))
}

func Test_Collector_When_UsedConcurrently_It_CountsEveryOperation(t *testing.T) {
	// setup
	collector, err := measurement.New()
	require.NoError(t, err)

	// act
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				collector.Measure("TX-READ", time.Microsecond)
				collector.ReportStatus("TX-READ", economy.StatusOK)
			}
		}()
	}
	wg.Wait()

	// assert
	snapshot := collector.Snapshot()
	assert.Equal(t, int64(1000), snapshot[0].Count)
	assert.Equal(t, int64(1000), snapshot[0].Statuses["OK"])
}
