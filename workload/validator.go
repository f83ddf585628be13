package workload

import (
	"context"
	"errors"
	"fmt"

	"github.com/AntonStoeckl/closed-economy-workload/economy"
)

// ValidationResult is the outcome of comparing the counted money against the invariant total.
type ValidationResult struct {
	ExpectedTotal int64
	CountedTotal  int64
	BankBalance   int64
	Operations    int64
	AnomalyScore  float64
	OK            bool
}

// Validate sums the balance of every account, each read in its own scope, adds the bank and compares
// the sum against the invariant total. It must only run after all workers are done. A summary goes to
// the report writer. Read failures and corrupt balances make the result meaningless and are fatal.
func (w *Workload) Validate(ctx context.Context, store economy.Store) (ValidationResult, error) {
	ctx, span := w.startValidationSpan(ctx)

	counted := int64(0)
	for i := int64(0); i < w.cfg.RecordCount; i++ {
		key := economy.AccountKey(w.cfg.InsertStart + i)

		balance, err := w.validationRead(ctx, store, key)
		if err != nil {
			w.finishValidationSpan(span, ValidationResult{}, err)
			return ValidationResult{}, err
		}

		counted += balance
	}

	result := ValidationResult{
		ExpectedTotal: w.cfg.ExpectedTotal(),
		Operations:    w.OperationsExecuted(),
	}

	if w.bank != nil {
		result.BankBalance = w.bank.Balance()
		counted += result.BankBalance
	}

	result.CountedTotal = counted
	result.OK = counted == result.ExpectedTotal
	result.AnomalyScore = anomalyScore(result.ExpectedTotal, counted, result.Operations)

	w.printValidation(result)
	w.finishValidationSpan(span, result, nil)
	w.logInfoContext(ctx, logMsgValidated,
		logAttrExpected, result.ExpectedTotal,
		logAttrCounted, result.CountedTotal,
		logAttrOperations, result.Operations,
		logAttrAnomalyScore, result.AnomalyScore,
		logAttrValid, result.OK)

	return result, nil
}

func (w *Workload) validationRead(ctx context.Context, store economy.Store, key string) (int64, error) {
	if err := store.Start(ctx); err != nil {
		return 0, fatal("validate", errors.Join(ErrValidationRead, fmt.Errorf("%s: %w", key, err)))
	}

	fields, err := store.Read(ctx, w.cfg.Table, key, []string{economy.BalanceField})
	if err != nil {
		_ = store.Abort(ctx)
		return 0, fatal("validate", errors.Join(ErrValidationRead, fmt.Errorf("%s: %w", key, err)))
	}

	if err := store.Commit(ctx); err != nil {
		return 0, fatal("validate", errors.Join(ErrValidationRead, fmt.Errorf("%s: %w", key, err)))
	}

	balance, err := economy.BalanceOf(fields)
	if err != nil {
		return 0, fatal("validate", errors.Join(ErrCorruptBalance, fmt.Errorf("%s: %w", key, err)))
	}

	return balance, nil
}

// anomalyScore is the deviation per executed operation. Without operations the deviation itself is used.
func anomalyScore(expected, counted, operations int64) float64 {
	deviation := expected - counted
	if deviation < 0 {
		deviation = -deviation
	}

	if operations <= 0 {
		return float64(deviation)
	}

	return float64(deviation) / float64(operations)
}

func (w *Workload) printValidation(result ValidationResult) {
	verdict := "Validation successful"
	if !result.OK {
		verdict = "Validation failed"
	}

	_, _ = fmt.Fprintf(w.report,
		"-------------------------\n"+
			"[Initial TOTAL CASH], %d\n"+
			"[After Operation, TOTAL COUNTED CASH], %d\n"+
			"[ACTUAL OPERATIONS], %d\n"+
			"[ANOMALY SCORE], %v\n"+
			"-------------------------\n"+
			"%s\n"+
			"-------------------------\n",
		result.ExpectedTotal, result.CountedTotal, result.Operations, result.AnomalyScore, verdict)
}
