package workload

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/AntonStoeckl/closed-economy-workload/economy"
)

const (
	logMsgProportionsAboveOne = "operation proportions sum up to more than 1"
	logMsgOperationDone       = "workload operation: "
	logMsgStoreFailure        = "store operation failed"
	logMsgInsertFailed        = "insert failed"
	logMsgFatal               = "fatal workload error"
	logMsgValidated           = "validation completed"
	logAttrTotal              = "total"
	logAttrOperation          = "operation"
	logAttrStoreOperation     = "store_operation"
	logAttrOutcome            = "outcome"
	logAttrDurationMS         = "duration_ms"
	logAttrKey                = "key"
	logAttrError              = "error"
	logAttrExpected           = "expected_total"
	logAttrCounted            = "counted_total"
	logAttrOperations         = "operations"
	logAttrAnomalyScore       = "anomaly_score"
	logAttrValid              = "valid"

	metricOperationDuration = "closedeconomy_operation_duration_seconds"
	metricOperations        = "closedeconomy_operations_total"
	metricStoreFailures     = "closedeconomy_store_failures_total"
	metricBankBalance       = "closedeconomy_bank_balance"
	metricAnomalyScore      = "closedeconomy_anomaly_score"

	spanNameOperation  = "closedeconomy.operation"
	spanNameValidation = "closedeconomy.validate"
	spanAttrOperation  = "operation"
	spanAttrOutcome    = "outcome"
	spanAttrStatus     = "status"
	spanAttrError      = "error"
	spanAttrCounted    = "counted_total"
	spanAttrExpected   = "expected_total"

	statusSuccess = "success"
	statusError   = "error"
)

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// logStoreFailure reports a transaction-local store failure; the run goes on.
func (w *Workload) logStoreFailure(ctx context.Context, op Operation, storeOp economy.StoreOperation, err error) {
	w.logWarnContext(ctx, logMsgStoreFailure,
		logAttrOperation, op.String(),
		logAttrStoreOperation, string(storeOp),
		logAttrError, err.Error())

	w.incrementCounterContext(ctx, metricStoreFailures, map[string]string{
		spanAttrOperation: op.String(),
		"store_operation": string(storeOp),
	})
}

func (w *Workload) logDebugContext(ctx context.Context, msg string, args ...any) {
	if w.contextualLogger != nil {
		w.contextualLogger.DebugContext(ctx, msg, args...)
	}

	if w.logger != nil {
		w.logger.Debug(msg, args...)
	}
}

func (w *Workload) logInfoContext(ctx context.Context, msg string, args ...any) {
	if w.contextualLogger != nil {
		w.contextualLogger.InfoContext(ctx, msg, args...)
	}

	if w.logger != nil {
		w.logger.Info(msg, args...)
	}
}

func (w *Workload) logWarnContext(ctx context.Context, msg string, args ...any) {
	if w.contextualLogger != nil {
		w.contextualLogger.WarnContext(ctx, msg, args...)
	}

	if w.logger != nil {
		w.logger.Warn(msg, args...)
	}
}

func (w *Workload) logWarn(msg string, args ...any) {
	w.logWarnContext(context.Background(), msg, args...)
}

func (w *Workload) logErrorContext(ctx context.Context, msg string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if w.contextualLogger != nil {
		w.contextualLogger.ErrorContext(ctx, msg, allArgs...)
	}

	if w.logger != nil {
		w.logger.Error(msg, allArgs...)
	}
}

// recordOperationMetrics records the duration and the outcome counter of one operation.
func (w *Workload) recordOperationMetrics(ctx context.Context, op Operation, outcome Outcome, elapsed time.Duration) {
	if w.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: op.String(),
		spanAttrStatus:    outcome.Status().String(),
	}

	if contextual, ok := w.metricsCollector.(economy.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metricOperationDuration, elapsed, labels)
		contextual.IncrementCounterContext(ctx, metricOperations, labels)
		return
	}

	w.metricsCollector.RecordDuration(metricOperationDuration, elapsed, labels)
	w.metricsCollector.IncrementCounter(metricOperations, labels)
}

func (w *Workload) incrementCounterContext(ctx context.Context, metric string, labels map[string]string) {
	if w.metricsCollector == nil {
		return
	}

	if contextual, ok := w.metricsCollector.(economy.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metric, labels)
		return
	}

	w.metricsCollector.IncrementCounter(metric, labels)
}

func (w *Workload) recordValueContext(ctx context.Context, metric string, value float64, labels map[string]string) {
	if w.metricsCollector == nil {
		return
	}

	if contextual, ok := w.metricsCollector.(economy.ContextualMetricsCollector); ok {
		contextual.RecordValueContext(ctx, metric, value, labels)
		return
	}

	w.metricsCollector.RecordValue(metric, value, labels)
}

func (w *Workload) recordBankBalance(ctx context.Context) {
	if w.bank != nil {
		w.recordValueContext(ctx, metricBankBalance, float64(w.bank.Balance()), nil)
	}
}

func (w *Workload) startOperationSpan(ctx context.Context, op Operation) (context.Context, economy.SpanContext) {
	if w.tracingCollector == nil {
		return ctx, nil
	}

	return w.tracingCollector.StartSpan(ctx, spanNameOperation, map[string]string{spanAttrOperation: op.String()})
}

func (w *Workload) finishOperationSpan(span economy.SpanContext, op Operation, outcome Outcome, err error) {
	if w.tracingCollector == nil || span == nil {
		return
	}

	attrs := map[string]string{
		spanAttrOperation: op.String(),
		spanAttrOutcome:   outcome.String(),
	}

	status := statusSuccess
	if err != nil {
		status = statusError
		attrs[spanAttrError] = err.Error()
	}

	w.tracingCollector.FinishSpan(span, status, attrs)
}

func (w *Workload) startValidationSpan(ctx context.Context) (context.Context, economy.SpanContext) {
	if w.tracingCollector == nil {
		return ctx, nil
	}

	return w.tracingCollector.StartSpan(ctx, spanNameValidation, map[string]string{
		spanAttrExpected: strconv.FormatInt(w.cfg.ExpectedTotal(), 10),
	})
}

func (w *Workload) finishValidationSpan(span economy.SpanContext, result ValidationResult, err error) {
	if err == nil {
		w.recordValueContext(context.Background(), metricAnomalyScore, result.AnomalyScore, nil)
	}

	if w.tracingCollector == nil || span == nil {
		return
	}

	if err != nil {
		w.tracingCollector.FinishSpan(span, statusError, map[string]string{spanAttrError: err.Error()})
		return
	}

	status := statusSuccess
	if !result.OK {
		status = statusError
	}

	w.tracingCollector.FinishSpan(span, status, map[string]string{
		spanAttrCounted: strconv.FormatInt(result.CountedTotal, 10),
		"anomaly_score": fmt.Sprintf("%v", result.AnomalyScore),
	})
}
