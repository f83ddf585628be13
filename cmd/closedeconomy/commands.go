package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AntonStoeckl/closed-economy-workload/measurement"
	"github.com/AntonStoeckl/closed-economy-workload/runner"
	"github.com/AntonStoeckl/closed-economy-workload/workload"
)

var ErrValidationFailed = errors.New("validation failed: the total money changed")

// app carries the flag values and the merged settings from the root command to the subcommands.
type app struct {
	v             *viper.Viper
	propertyFiles []string
	overrides     []string
	settings      settings
}

func newRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:          "closedeconomy",
		Short:        "closed-economy transactional workload for key-value stores",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			s, err := readSettings(a.v, a.propertyFiles, a.overrides)
			if err != nil {
				return err
			}
			a.settings = s

			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringArrayVarP(&a.propertyFiles, "properties", "P", nil, "properties file, may be repeated")
	flags.StringArrayVarP(&a.overrides, "property", "p", nil, "property override as key=value, may be repeated")
	flags.Int("threads", 1, "number of concurrent workers")
	flags.Float64("target", 0, "target operations per second over all workers, 0 is unthrottled")
	flags.String("db", dbMemory, "store backend: memory or postgres")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("log-format", "text", "log format: text or json")

	bindings := map[string]string{
		keyThreadCount: "threads",
		keyTarget:      "target",
		keyDB:          "db",
		keyLogLevel:    "log-level",
		keyLogFormat:   "log-format",
	}
	for key, flag := range bindings {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		newLoadCommand(a),
		newRunCommand(a),
		newValidateCommand(a),
		newSchemaCommand(a),
	)

	return root
}

func newLoadCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "insert recordcount accounts with the initial cash",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := newEnvironment(cmd, a.settings)
			if err != nil {
				return err
			}
			defer env.close(cmd.Context())

			return env.load(cmd)
		},
	}
}

func newRunCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "execute the transaction phase and validate the total money",
		Long: "Executes operationcount operations, or runs until maxexecutiontime or an interrupt, " +
			"then validates. With --db memory the accounts are loaded first. " +
			"Exits non-zero when the validation fails.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := newEnvironment(cmd, a.settings)
			if err != nil {
				return err
			}
			defer env.close(cmd.Context())

			if env.store.memory != nil {
				if err := env.load(cmd); err != nil {
					return err
				}
			}

			result, err := env.client.Run(cmd.Context())
			if err != nil {
				return err
			}

			if err := env.collector.Export(cmd.OutOrStdout(), result.Duration, result.Operations); err != nil {
				return err
			}

			return env.validate(cmd)
		},
	}
}

func newValidateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "sum all balances and compare them against the initial total",
		Long: "Validates a store after a run in another process. The bank of the bank workload lives in the " +
			"run process, so here it counts with its initial balance.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := newEnvironment(cmd, a.settings)
			if err != nil {
				return err
			}
			defer env.close(cmd.Context())

			return env.validate(cmd)
		},
	}
}

func newSchemaCommand(a *app) *cobra.Command {
	schema := &cobra.Command{
		Use:   "schema",
		Short: "manage the PostgreSQL table",
	}

	actions := []struct {
		use   string
		short string
	}{
		{use: "create", short: "create the table if it does not exist"},
		{use: "drop", short: "drop the table if it exists"},
		{use: "truncate", short: "delete all accounts"},
	}

	for _, action := range actions {
		schema.AddCommand(&cobra.Command{
			Use:   action.use,
			Short: action.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runSchema(cmd, a.settings, action.use)
			},
		})
	}

	return schema
}

func runSchema(cmd *cobra.Command, s settings, action string) error {
	if s.db != dbPostgres {
		return ErrPostgresOnly
	}

	env, err := newEnvironment(cmd, s)
	if err != nil {
		return err
	}
	defer env.close(cmd.Context())

	db := env.store.postgres

	switch action {
	case "create":
		err = db.CreateTable(cmd.Context())
	case "drop":
		err = db.DropTable(cmd.Context())
	default:
		err = db.TruncateTable(cmd.Context())
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "schema %s: %s done\n", env.workload.Config().Table, action)

	return err
}

// environment is everything a phase command needs, built from the settings.
type environment struct {
	obs       *observability
	store     *storeHandle
	collector *measurement.Collector
	workload  *workload.Workload
	client    *runner.Client
}

func newEnvironment(cmd *cobra.Command, s settings) (*environment, error) {
	ctx := cmd.Context()

	obs, err := setupObservability(ctx, s, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	cfg, err := workload.NewConfig(s.properties)
	if err != nil {
		return nil, errors.Join(err, obs.shutdown(ctx))
	}

	store, err := openStore(ctx, s, cfg.Table, obs)
	if err != nil {
		return nil, errors.Join(err, obs.shutdown(ctx))
	}

	env := &environment{obs: obs, store: store}

	if err := env.build(cmd.OutOrStdout(), cfg, s); err != nil {
		env.close(ctx)
		return nil, err
	}

	return env, nil
}

func (e *environment) build(out io.Writer, cfg workload.Config, s settings) error {
	var err error

	measurementOptions := []measurement.Option{}
	if e.obs.metrics != nil {
		measurementOptions = append(measurementOptions, measurement.WithMetrics(e.obs.metrics))
	}

	if e.collector, err = measurement.New(measurementOptions...); err != nil {
		return err
	}

	workloadOptions := []workload.Option{
		workload.WithLogger(e.obs.logger),
		workload.WithMeasurements(e.collector),
		workload.WithTraceWriter(out),
		workload.WithReportWriter(out),
	}

	if e.obs.contextualLogger != nil {
		workloadOptions = append(workloadOptions, workload.WithContextualLogger(e.obs.contextualLogger))
	}

	if e.obs.metrics != nil {
		workloadOptions = append(workloadOptions, workload.WithMetrics(e.obs.metrics))
	}

	if e.obs.tracing != nil {
		workloadOptions = append(workloadOptions, workload.WithTracing(e.obs.tracing))
	}

	if e.workload, err = workload.New(cfg, workloadOptions...); err != nil {
		return err
	}

	clientOptions := []runner.Option{
		runner.WithThreads(s.threads),
		runner.WithTarget(s.target),
		runner.WithMaxExecutionTime(s.maxExecutionTime),
		runner.WithStatusInterval(s.statusInterval),
		runner.WithMeasurements(e.collector),
		runner.WithLogger(e.obs.logger),
	}

	if e.obs.metrics != nil {
		clientOptions = append(clientOptions, runner.WithMetrics(e.obs.metrics))
	}

	if e.obs.tracing != nil {
		clientOptions = append(clientOptions, runner.WithTracing(e.obs.tracing))
	}

	e.client, err = runner.NewClient(e.workload, e.store.sessions, clientOptions...)

	return err
}

func (e *environment) load(cmd *cobra.Command) error {
	result, err := e.client.Load(cmd.Context())
	if err != nil {
		return err
	}

	return e.collector.Export(cmd.OutOrStdout(), result.Duration, result.Operations)
}

func (e *environment) validate(cmd *cobra.Command) error {
	result, err := e.client.Validate(cmd.Context())
	if err != nil {
		return err
	}

	if !result.OK {
		return ErrValidationFailed
	}

	return nil
}

func (e *environment) close(ctx context.Context) {
	e.store.close()

	if err := e.obs.shutdown(context.WithoutCancel(ctx)); err != nil {
		e.obs.logger.Warn("observability shutdown failed", "error", err.Error())
	}
}
