package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/closed-economy-workload/economy"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()

	return out.String(), err
}

func writeProperties(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "workload.properties")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func Test_Run_When_DBIsMemory_It_LoadsRunsAndValidates(t *testing.T) {
	// setup
	file := writeProperties(t, "recordcount=10\n"+
		"operationcount=200\n"+
		"initialcash=100\n"+
		"fieldcount=2\n"+
		"fieldlength=5\n"+
		"requestdistribution=zipfian\n"+
		"transferbetweencustomerproportion=1\n")

	// act
	out, err := execute(t, "run", "-P", file, "--threads", "4", "-p", "status.interval=0")

	// assert
	require.NoError(t, err)
	assert.Contains(t, out, "[INSERT], Operations, 10\n")
	assert.Contains(t, out, "[TX-TransferBetweenAcc], Operations, 200\n")
	assert.Contains(t, out, "[Initial TOTAL CASH], 1000\n")
	assert.Contains(t, out, "[After Operation, TOTAL COUNTED CASH], 1000\n")
	assert.Contains(t, out, "[ACTUAL OPERATIONS], 210\n")
	assert.Contains(t, out, "Validation successful\n")
}

func Test_Run_When_BankWorkloadIsConfigured_It_Validates(t *testing.T) {
	// act
	out, err := execute(t, "run",
		"-p", "workload=bank",
		"-p", "recordcount=5",
		"-p", "operationcount=100",
		"-p", "initial_cash=20",
		"-p", "fieldcount=1",
		"-p", "readproportion=0.4",
		"-p", "paytobankproportion=0.3",
		"-p", "rewardcustomerproportion=0.3",
		"-p", "status.interval=0",
	)

	// assert
	require.NoError(t, err)
	assert.Contains(t, out, "[Initial TOTAL CASH], 120\n")
	assert.Contains(t, out, "Validation successful\n")
}

func Test_Run_When_RecordCountIsMissing_It_Fails(t *testing.T) {
	_, err := execute(t, "run", "-p", "operationcount=10")

	assert.Error(t, err)
}

func Test_Schema_When_DBIsMemory_It_Fails(t *testing.T) {
	_, err := execute(t, "schema", "create", "-p", "recordcount=1")

	assert.ErrorIs(t, err, ErrPostgresOnly)
}

func Test_ReadSettings_Precedence(t *testing.T) {
	// setup
	file := writeProperties(t, "recordcount=10\n"+
		"threadcount=3\n"+
		"printTransactionTrace=true\n"+
		"exponential.percentile=90\n"+
		"postgres.isolation=read_committed\n"+
		"maxexecutiontime=30\n")
	second := writeProperties(t, "recordcount=20\n")
	t.Setenv("CEW_OPERATIONCOUNT", "500")

	// act
	s, err := readSettings(viper.New(), []string{file, second}, []string{"initialcash=7", "db=postgres"})

	// assert
	require.NoError(t, err)
	assert.Equal(t, "20", s.properties["recordcount"])
	assert.Equal(t, "7", s.properties["initialcash"])
	assert.Equal(t, "500", s.properties["operationcount"])
	assert.Equal(t, "true", s.properties["printtransactiontrace"])
	assert.Equal(t, "90", s.properties["exponential.percentile"])
	assert.NotContains(t, s.properties, "fieldcount")
	assert.Equal(t, 3, s.threads)
	assert.Equal(t, dbPostgres, s.db)
	assert.Equal(t, driverPGX, s.postgresDriver)
	assert.Equal(t, economy.ReadCommitted, s.postgresIsolation)
	assert.Equal(t, economy.Serializable, s.memoryIsolation)
	assert.Equal(t, 30*time.Second, s.maxExecutionTime)
	assert.Equal(t, 10*time.Second, s.statusInterval)
}

func Test_ReadSettings_Errors(t *testing.T) {
	tests := []struct {
		name      string
		overrides []string
		expected  error
	}{
		{name: "override without value", overrides: []string{"recordcount"}, expected: ErrInvalidOverride},
		{name: "override without key", overrides: []string{"=5"}, expected: ErrInvalidOverride},
		{name: "unknown db", overrides: []string{"db=cassandra"}, expected: ErrUnknownDatabase},
		{name: "unknown driver", overrides: []string{"postgres.driver=odbc"}, expected: ErrUnknownDriver},
		{name: "unknown log format", overrides: []string{"log.format=xml"}, expected: ErrUnknownLogFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readSettings(viper.New(), nil, tt.overrides)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func Test_ReadSettings_When_IsolationIsUnknown_It_Fails(t *testing.T) {
	_, err := readSettings(viper.New(), nil, []string{"memory.isolation=snapshot"})

	assert.ErrorContains(t, err, "unknown isolation level")
}

func Test_ReadSettings_When_PropertiesFileIsMissing_It_Fails(t *testing.T) {
	_, err := readSettings(viper.New(), []string{filepath.Join(t.TempDir(), "missing.properties")}, nil)

	assert.ErrorContains(t, err, "missing.properties")
}
