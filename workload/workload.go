package workload

import (
	"context"
	"errors"
	"io"
	"math"
	"os"
	"sync/atomic"
	"time"

	"github.com/AntonStoeckl/closed-economy-workload/economy"
	"github.com/AntonStoeckl/closed-economy-workload/generator"
)

// Workload runs the closed-economy operations against economy.Store sessions.
// A single Workload is shared by all workers; every worker passes its own session.
type Workload struct {
	cfg Config

	keySelector    KeySelector
	operations     *OperationSelector
	loadSequence   *generator.Counter
	insertSequence *generator.Counter
	fieldChooser   generator.Generator
	fieldLength    generator.Generator
	scanLength     generator.Generator
	bank           *BankAccount

	opsExecuted         atomic.Int64
	maxDistinctAttempts int64
	rnd                 generator.Rand

	trace            *tracePrinter
	report           io.Writer
	measurements     Measurements
	logger           economy.Logger
	contextualLogger economy.ContextualLogger
	metricsCollector economy.MetricsCollector
	tracingCollector economy.TracingCollector
}

// New builds a Workload from a checked Config. Every failure is a *FatalError.
func New(cfg Config, options ...Option) (*Workload, error) {
	w := &Workload{
		cfg:                 cfg,
		maxDistinctAttempts: math.MaxInt32,
		rnd:                 generator.DefaultRand(),
		report:              os.Stdout,
		measurements:        noMeasurements{},
		trace: &tracePrinter{
			out:          os.Stdout,
			transactions: cfg.PrintTransactionTrace,
			readKeys:     cfg.PrintKeysInRead,
			transferKeys: cfg.PrintKeysInTransfer,
		},
	}

	for _, option := range options {
		if err := option(w); err != nil {
			return nil, fatal("init", err)
		}
	}

	if err := w.init(); err != nil {
		return nil, fatal("init", err)
	}

	return w, nil
}

func (w *Workload) init() error {
	var err error

	if err = w.cfg.check(); err != nil {
		return err
	}

	w.loadSequence = generator.NewCounter(w.cfg.InsertStart)
	w.insertSequence = generator.NewCounter(w.cfg.RecordCount)

	if w.keySelector, err = newKeySelector(w.cfg, w.insertSequence, w.rnd); err != nil {
		return err
	}

	if w.fieldChooser, err = generator.NewUniform(0, w.cfg.FieldCount-1, w.rnd); err != nil {
		return err
	}

	if w.fieldLength, err = newLengthGenerator(w.cfg.FieldLengthDistribution, w.cfg.FieldLength, w.cfg.FieldLengthHistogram, w.rnd); err != nil {
		return err
	}

	if w.cfg.ScanLengthDistribution != DistributionUniform && w.cfg.ScanLengthDistribution != DistributionZipfian {
		return errors.Join(ErrUnknownDistribution, errors.New("scan length distribution must be uniform or zipfian"))
	}

	if w.scanLength, err = newLengthGenerator(w.cfg.ScanLengthDistribution, w.cfg.MaxScanLength, "", w.rnd); err != nil {
		return err
	}

	w.operations = NewOperationSelector(w.rnd)
	w.operations.Add(w.cfg.Proportions.Read, OperationRead)
	w.operations.Add(w.cfg.Proportions.Scan, OperationScan)
	w.operations.Add(w.cfg.Proportions.Transfer, OperationTransfer)
	w.operations.Add(w.cfg.Proportions.PayToBank, OperationPayToBank)
	w.operations.Add(w.cfg.Proportions.RewardCustomer, OperationRewardCustomer)

	if w.operations.Empty() {
		return ErrNoOperations
	}

	if w.operations.Total() > 1.0 {
		w.logWarn(logMsgProportionsAboveOne, logAttrTotal, w.operations.Total())
	}

	if w.cfg.Variant == BankMediated {
		w.bank = NewBankAccount(w.cfg.InitialCash)
	}

	return nil
}

// Config returns the configuration the Workload was built with.
func (w *Workload) Config() Config {
	return w.cfg
}

// Bank returns the in-process bank account, nil in the peer-to-peer variant.
func (w *Workload) Bank() *BankAccount {
	return w.bank
}

// OperationsExecuted counts successful inserts and all executed transactions.
func (w *Workload) OperationsExecuted() int64 {
	return w.opsExecuted.Load()
}

// KeySelector exposes the key selector, e.g. for sampling the configured distribution.
func (w *Workload) KeySelector() KeySelector {
	return w.keySelector
}

// DoTransaction selects one operation and runs it. A returned error is always fatal for the run;
// transaction-local failures are reported through the Outcome.
func (w *Workload) DoTransaction(ctx context.Context, store economy.Store) (Outcome, error) {
	return w.Run(ctx, store, w.operations.Next())
}

// Run executes the given operation and reports its latency and outcome.
func (w *Workload) Run(ctx context.Context, store economy.Store, op Operation) (Outcome, error) {
	ctx, span := w.startOperationSpan(ctx, op)
	start := time.Now()

	outcome, err := w.dispatch(ctx, store, op)
	if err != nil {
		w.finishOperationSpan(span, op, outcome, err)
		w.logErrorContext(ctx, logMsgFatal, err, logAttrOperation, op.String())
		return outcome, err
	}

	elapsed := time.Since(start)

	w.measurements.Measure(op.MeasurementName(), elapsed)
	w.measurements.ReportStatus(op.MeasurementName(), outcome.Status())
	w.opsExecuted.Add(1)

	w.recordOperationMetrics(ctx, op, outcome, elapsed)
	w.finishOperationSpan(span, op, outcome, nil)
	w.logDebugContext(ctx, logMsgOperationDone+op.String(),
		logAttrOutcome, outcome.String(),
		logAttrDurationMS, toMilliseconds(elapsed))

	return outcome, nil
}

func (w *Workload) dispatch(ctx context.Context, store economy.Store, op Operation) (Outcome, error) {
	switch op {
	case OperationRead:
		return w.Read(ctx, store), nil
	case OperationScan:
		return w.Scan(ctx, store), nil
	case OperationTransfer:
		return w.TransferBetweenAccounts(ctx, store)
	case OperationPayToBank:
		return w.PayToBank(ctx, store), nil
	case OperationRewardCustomer:
		return w.RewardCustomer(ctx, store), nil
	default:
		return OutcomeUnexpectedState, fatal("dispatch", ErrUnknownOperation)
	}
}

// readBalance reads one account's balance. A malformed balance counts as a failed read.
func (w *Workload) readBalance(ctx context.Context, store economy.Store, key string) (int64, error) {
	fields, err := store.Read(ctx, w.cfg.Table, key, []string{economy.BalanceField})
	if err != nil {
		return 0, err
	}

	return economy.BalanceOf(fields)
}

func (w *Workload) writeBalance(ctx context.Context, store economy.Store, key string, balance int64) error {
	return store.Update(ctx, w.cfg.Table, key, economy.BalanceFields(balance))
}

// finishScope commits a committed outcome and aborts anything else.
// A rejected commit turns the outcome into OutcomeAborted, a failed abort into OutcomeUnexpectedState.
func (w *Workload) finishScope(ctx context.Context, store economy.Store, op Operation, outcome Outcome) Outcome {
	if outcome == OutcomeCommitted {
		if err := store.Commit(ctx); err != nil {
			w.logStoreFailure(ctx, op, economy.OperationCommit, err)
			_ = store.Abort(ctx)
			return OutcomeAborted
		}

		return outcome
	}

	if err := store.Abort(ctx); err != nil {
		w.logStoreFailure(ctx, op, economy.OperationAbort, err)
		return OutcomeUnexpectedState
	}

	return outcome
}
