package postgresstore

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/AntonStoeckl/closed-economy-workload/economy"
)

const (
	logMsgSQLExecuted      = "executed sql for: "
	logMsgOperationFailed  = "store operation failed: "
	logMsgRecordMissing    = "record missing or duplicate: "
	logMsgCloseRowsFailed  = "failed to close database rows"
	logAttrError           = "error"
	logAttrQuery           = "query"
	logAttrTable           = "table"
	logAttrDurationMS      = "duration_ms"
	metricStoreDuration    = "closedeconomy_store_operation_duration_seconds"
	metricStoreErrors      = "closedeconomy_store_errors_total"
	spanNamePrefix         = "postgresstore."
	spanAttrOperation      = "operation"
	spanAttrTable          = "table"
	spanAttrErrorType      = "error_type"
	spanAttrStatus         = "status"
	statusSuccess          = "success"
	statusError            = "error"
	errorTypeNotFound      = "record_not_found"
	errorTypeDuplicate     = "duplicate_key"
	errorTypeDatabaseError = "database_error"
)

// operationObserver times one store operation and reports it to the configured logger, metrics and tracing.
type operationObserver struct {
	db    *Database
	op    economy.StoreOperation
	table string
	span  economy.SpanContext
	start time.Time
}

func (db *Database) observe(ctx context.Context, op economy.StoreOperation, table string) (context.Context, *operationObserver) {
	observer := &operationObserver{db: db, op: op, table: table, start: time.Now()}

	if db.tracingCollector != nil {
		ctx, observer.span = db.tracingCollector.StartSpan(ctx, spanNamePrefix+string(op), map[string]string{
			spanAttrOperation: string(op),
			spanAttrTable:     table,
		})
	}

	return ctx, observer
}

func (o *operationObserver) finish(ctx context.Context, err error, sqlQuery string) {
	duration := time.Since(o.start)
	db := o.db

	if sqlQuery != "" {
		db.logDebugContext(ctx, logMsgSQLExecuted+string(o.op), logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery)
	}

	status := statusSuccess
	attrs := map[string]string{}

	if err != nil {
		status = statusError
		errorType := classifyError(err)
		attrs[spanAttrErrorType] = errorType

		if errorType == errorTypeDatabaseError {
			db.logErrorContext(ctx, logMsgOperationFailed+string(o.op), err, logAttrTable, o.table, logAttrQuery, sqlQuery)
		} else {
			db.logInfoContext(ctx, logMsgRecordMissing+string(o.op), logAttrError, err.Error(), logAttrTable, o.table)
		}

		db.incrementCounterContext(ctx, metricStoreErrors, map[string]string{
			spanAttrOperation: string(o.op),
			spanAttrErrorType: errorType,
		})
	}

	db.recordDurationContext(ctx, metricStoreDuration, duration, map[string]string{
		spanAttrOperation: string(o.op),
		spanAttrStatus:    status,
	})

	if db.tracingCollector != nil && o.span != nil {
		db.tracingCollector.FinishSpan(o.span, status, attrs)
	}
}

func classifyError(err error) string {
	switch {
	case errors.Is(err, economy.ErrRecordNotFound):
		return errorTypeNotFound
	case errors.Is(err, economy.ErrDuplicateKey):
		return errorTypeDuplicate
	default:
		return errorTypeDatabaseError
	}
}

func (db *Database) recordDurationContext(ctx context.Context, metric string, duration time.Duration, labels map[string]string) {
	if db.metricsCollector == nil {
		return
	}

	// Use context-aware method if available
	if contextual, ok := db.metricsCollector.(economy.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	db.metricsCollector.RecordDuration(metric, duration, labels)
}

func (db *Database) incrementCounterContext(ctx context.Context, metric string, labels map[string]string) {
	if db.metricsCollector == nil {
		return
	}

	if contextual, ok := db.metricsCollector.(economy.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metric, labels)
		return
	}

	db.metricsCollector.IncrementCounter(metric, labels)
}

func (db *Database) logDebugContext(ctx context.Context, msg string, args ...any) {
	if db.contextualLogger != nil {
		db.contextualLogger.DebugContext(ctx, msg, args...)
	}

	if db.logger != nil {
		db.logger.Debug(msg, args...)
	}
}

func (db *Database) logInfoContext(ctx context.Context, msg string, args ...any) {
	if db.contextualLogger != nil {
		db.contextualLogger.InfoContext(ctx, msg, args...)
	}

	if db.logger != nil {
		db.logger.Info(msg, args...)
	}
}

// logErrorContext logs error information at the error level if a logger is configured.
func (db *Database) logErrorContext(ctx context.Context, msg string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if db.contextualLogger != nil {
		db.contextualLogger.ErrorContext(ctx, msg, allArgs...)
	}

	if db.logger != nil {
		db.logger.Error(msg, allArgs...)
	}
}

func (db *Database) logWarn(msg string, err error) {
	if db.logger != nil {
		db.logger.Warn(msg, logAttrError, err.Error())
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
