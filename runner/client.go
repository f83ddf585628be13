package runner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/AntonStoeckl/closed-economy-workload/economy"
	"github.com/AntonStoeckl/closed-economy-workload/measurement"
	"github.com/AntonStoeckl/closed-economy-workload/workload"
)

var ErrNilWorkload = errors.New("workload must not be nil")
var ErrNilSessionFactory = errors.New("session factory must not be nil")
var ErrLoadFailed = errors.New("load phase failed")

const (
	phaseLoad        = "load"
	phaseTransaction = "run"
	phaseValidation  = "validate"

	outcomeKinds = int(workload.OutcomeUnexpectedState) + 1
)

// Client executes the phases of a workload run. Load and Run must not be called concurrently.
type Client struct {
	workload *workload.Workload
	sessions economy.SessionFactory

	threads          int
	operationCount   int64
	target           float64
	maxExecutionTime time.Duration
	statusInterval   time.Duration
	measurements     *measurement.Collector
	runID            uuid.UUID

	logger           economy.Logger
	contextualLogger economy.ContextualLogger
	metricsCollector economy.MetricsCollector
	tracingCollector economy.TracingCollector

	progress progress
}

// Result summarizes one phase.
type Result struct {
	RunID      uuid.UUID
	Phase      string
	Operations int64
	Failures   int64
	Duration   time.Duration
	Outcomes   map[workload.Outcome]int64
}

// Throughput returns the operations per second of the phase.
func (r Result) Throughput() float64 {
	if r.Duration <= 0 {
		return 0
	}

	return float64(r.Operations) / r.Duration.Seconds()
}

// progress is shared by the workers and the status reporter of the current phase.
type progress struct {
	mu        sync.RWMutex
	phase     string
	startTime time.Time
	done      atomic.Int64
	failures  atomic.Int64
	outcomes  [outcomeKinds]atomic.Int64
}

// NewClient creates a Client for the workload. The session factory creates one session per worker.
func NewClient(w *workload.Workload, sessions economy.SessionFactory, options ...Option) (*Client, error) {
	if w == nil {
		return nil, ErrNilWorkload
	}

	if sessions == nil {
		return nil, ErrNilSessionFactory
	}

	c := &Client{
		workload:       w,
		sessions:       sessions,
		threads:        1,
		operationCount: w.Config().OperationCount,
		statusInterval: 10 * time.Second,
		runID:          newRunID(),
	}

	for _, option := range options {
		if err := option(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// RunID identifies the run in logs and spans.
func (c *Client) RunID() uuid.UUID {
	return c.runID
}

// Load inserts recordcount accounts, split across the workers. A failed insert ends the load phase,
// since a missing account makes every later validation fail.
func (c *Client) Load(ctx context.Context) (Result, error) {
	return c.execute(ctx, phaseLoad, c.workload.Config().RecordCount, func(ctx context.Context, store economy.Store) error {
		if err := c.workload.DoInsert(ctx, store); err != nil {
			c.progress.failures.Add(1)
			return errors.Join(ErrLoadFailed, err)
		}

		c.progress.done.Add(1)

		return nil
	})
}

// Run executes the transaction phase. It stops after operationcount operations, after the maximum
// execution time, or when ctx is cancelled. Only a fatal workload error is returned as an error.
func (c *Client) Run(ctx context.Context) (Result, error) {
	if c.maxExecutionTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.maxExecutionTime)
		defer cancel()
	}

	total := c.operationCount
	if total == 0 {
		total = math.MaxInt64
	}

	return c.execute(ctx, phaseTransaction, total, func(ctx context.Context, store economy.Store) error {
		outcome, err := c.workload.DoTransaction(ctx, store)
		if err != nil {
			return err
		}

		c.progress.done.Add(1)
		c.progress.outcomes[outcome].Add(1)
		if outcome != workload.OutcomeCommitted {
			c.progress.failures.Add(1)
		}

		return nil
	})
}

// Validate runs the validation on a new session. All workers must be done.
func (c *Client) Validate(ctx context.Context) (workload.ValidationResult, error) {
	ctx, span := c.startPhaseSpan(ctx, phaseValidation)
	start := time.Now()

	result, err := c.workload.Validate(ctx, c.sessions.NewSession())

	c.recordPhaseDuration(ctx, phaseValidation, time.Since(start))
	c.finishPhaseSpan(span, err)

	return result, err
}

// execute splits total operations across the workers and runs op until every worker is done.
// Cancellation of ctx stops the workers between operations; an operation in flight completes.
func (c *Client) execute(
	ctx context.Context,
	phase string,
	total int64,
	op func(ctx context.Context, store economy.Store) error,
) (Result, error) {

	ctx, span := c.startPhaseSpan(ctx, phase)
	c.resetProgress(phase)
	c.logInfoContext(ctx, logMsgPhaseStarted+phase,
		logAttrRunID, c.runID.String(),
		logAttrThreads, c.threads,
		logAttrTarget, c.target,
		logAttrOperations, total)

	limiter := c.newLimiter()
	stopReporter := c.startStatusReporter(ctx)

	g, gCtx := errgroup.WithContext(ctx)
	for _, count := range splitOperations(total, c.threads) {
		store := c.sessions.NewSession()

		g.Go(func() error {
			opCtx := context.WithoutCancel(gCtx)

			for i := int64(0); i < count; i++ {
				if gCtx.Err() != nil {
					return nil
				}

				if limiter != nil {
					if err := limiter.Wait(gCtx); err != nil {
						return nil
					}
				}

				if err := op(opCtx, store); err != nil {
					return err
				}
			}

			return nil
		})
	}

	err := g.Wait()
	stopReporter()

	result := c.result()
	c.recordPhaseDuration(ctx, phase, result.Duration)
	c.finishPhaseSpan(span, err)

	if err != nil {
		c.logErrorContext(ctx, logMsgPhaseFailed+phase, err, logAttrRunID, c.runID.String())
		return result, fmt.Errorf("%s phase: %w", phase, err)
	}

	c.logFinalStats(ctx, result)

	return result, nil
}

func (c *Client) newLimiter() *rate.Limiter {
	if c.target <= 0 {
		return nil
	}

	return rate.NewLimiter(rate.Limit(c.target), 1)
}

func (c *Client) resetProgress(phase string) {
	c.progress.mu.Lock()
	defer c.progress.mu.Unlock()

	c.progress.phase = phase
	c.progress.startTime = time.Now()
	c.progress.done.Store(0)
	c.progress.failures.Store(0)
	for i := range c.progress.outcomes {
		c.progress.outcomes[i].Store(0)
	}
}

func (c *Client) result() Result {
	c.progress.mu.RLock()
	defer c.progress.mu.RUnlock()

	result := Result{
		RunID:      c.runID,
		Phase:      c.progress.phase,
		Operations: c.progress.done.Load(),
		Failures:   c.progress.failures.Load(),
		Duration:   time.Since(c.progress.startTime),
		Outcomes:   make(map[workload.Outcome]int64),
	}

	for i := range c.progress.outcomes {
		if n := c.progress.outcomes[i].Load(); n > 0 {
			result.Outcomes[workload.Outcome(i)] = n
		}
	}

	return result
}

// splitOperations gives every worker total/threads operations and the remainder to the first workers.
func splitOperations(total int64, threads int) []int64 {
	counts := make([]int64, threads)
	per := total / int64(threads)
	remainder := total % int64(threads)

	for i := range counts {
		counts[i] = per
		if int64(i) < remainder {
			counts[i]++
		}
	}

	return counts
}

func newRunID() uuid.UUID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}

	return id
}
