package runner

import (
	"context"
	"math"
	"runtime"
	"time"

	"github.com/AntonStoeckl/closed-economy-workload/economy"
)

const (
	logMsgPhaseStarted = "phase started: "
	logMsgPhaseFailed  = "phase failed: "
	logMsgStats        = "stats"
	logMsgFinalStats   = "final stats"
	logAttrRunID       = "run_id"
	logAttrPhase       = "phase"
	logAttrThreads     = "threads"
	logAttrTarget      = "target_ops_per_sec"
	logAttrOperations  = "operations"
	logAttrFailures    = "failures"
	logAttrOpsPerSec   = "ops_per_sec"
	logAttrFailureRate = "failure_rate_pct"
	logAttrElapsed     = "elapsed"
	logAttrGoroutines  = "goroutines"
	logAttrLatencies   = "latencies"
	logAttrError       = "error"

	metricPhaseDuration = "closedeconomy_phase_duration_seconds"
	metricThroughput    = "closedeconomy_throughput_ops_per_second"

	spanNamePrefix = "closedeconomy."
	spanAttrRunID  = "run_id"
	spanAttrPhase  = "phase"

	statusSuccess = "success"
	statusError   = "error"
)

// startStatusReporter logs the progress every status interval until the returned stop function is called.
func (c *Client) startStatusReporter(ctx context.Context) func() {
	if c.statusInterval <= 0 {
		return func() {}
	}

	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)

		ticker := time.NewTicker(c.statusInterval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				c.logCurrentStats(ctx)
			}
		}
	}()

	return func() {
		close(stop)
		<-done
	}
}

// logCurrentStats logs the current performance statistics.
func (c *Client) logCurrentStats(ctx context.Context) {
	result := c.result()
	if result.Duration <= 0 {
		return
	}

	args := []any{
		logAttrRunID, c.runID.String(),
		logAttrPhase, result.Phase,
		logAttrElapsed, result.Duration.Truncate(time.Second).String(),
		logAttrOperations, result.Operations,
		logAttrOpsPerSec, round(result.Throughput()),
		logAttrFailures, result.Failures,
		logAttrGoroutines, runtime.NumGoroutine(),
	}

	if c.measurements != nil {
		args = append(args, logAttrLatencies, c.measurements.Summary())
	}

	c.logInfoContext(ctx, logMsgStats, args...)
	c.recordThroughput(ctx, result.Phase, result.Throughput())
}

// logFinalStats logs the final performance statistics of a phase.
func (c *Client) logFinalStats(ctx context.Context, result Result) {
	failureRate := 0.0
	if result.Operations > 0 {
		failureRate = float64(result.Failures) / float64(result.Operations) * 100
	}

	args := []any{
		logAttrRunID, c.runID.String(),
		logAttrPhase, result.Phase,
		logAttrElapsed, result.Duration.Truncate(time.Millisecond).String(),
		logAttrOperations, result.Operations,
		logAttrOpsPerSec, round(result.Throughput()),
		logAttrFailures, result.Failures,
		logAttrFailureRate, round(failureRate),
	}

	for outcome, n := range result.Outcomes {
		args = append(args, outcome.String(), n)
	}

	c.logInfoContext(ctx, logMsgFinalStats, args...)
	c.recordThroughput(ctx, result.Phase, result.Throughput())
}

func round(f float64) float64 {
	return math.Round(f*100) / 100
}

func (c *Client) startPhaseSpan(ctx context.Context, phase string) (context.Context, economy.SpanContext) {
	if c.tracingCollector == nil {
		return ctx, nil
	}

	return c.tracingCollector.StartSpan(ctx, spanNamePrefix+phase, map[string]string{
		spanAttrRunID: c.runID.String(),
		spanAttrPhase: phase,
	})
}

func (c *Client) finishPhaseSpan(span economy.SpanContext, err error) {
	if c.tracingCollector == nil || span == nil {
		return
	}

	if err != nil {
		c.tracingCollector.FinishSpan(span, statusError, map[string]string{logAttrError: err.Error()})
		return
	}

	c.tracingCollector.FinishSpan(span, statusSuccess, nil)
}

func (c *Client) recordPhaseDuration(ctx context.Context, phase string, d time.Duration) {
	if c.metricsCollector == nil {
		return
	}

	labels := map[string]string{logAttrPhase: phase}

	if contextual, ok := c.metricsCollector.(economy.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metricPhaseDuration, d, labels)
		return
	}

	c.metricsCollector.RecordDuration(metricPhaseDuration, d, labels)
}

func (c *Client) recordThroughput(ctx context.Context, phase string, opsPerSecond float64) {
	if c.metricsCollector == nil {
		return
	}

	labels := map[string]string{logAttrPhase: phase}

	if contextual, ok := c.metricsCollector.(economy.ContextualMetricsCollector); ok {
		contextual.RecordValueContext(ctx, metricThroughput, opsPerSecond, labels)
		return
	}

	c.metricsCollector.RecordValue(metricThroughput, opsPerSecond, labels)
}

func (c *Client) logInfoContext(ctx context.Context, msg string, args ...any) {
	if c.contextualLogger != nil {
		c.contextualLogger.InfoContext(ctx, msg, args...)
		return
	}

	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}

func (c *Client) logErrorContext(ctx context.Context, msg string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if c.contextualLogger != nil {
		c.contextualLogger.ErrorContext(ctx, msg, allArgs...)
		return
	}

	if c.logger != nil {
		c.logger.Error(msg, allArgs...)
	}
}
