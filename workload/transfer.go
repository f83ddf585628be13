package workload

import (
	"context"
	"errors"
	"fmt"

	"github.com/AntonStoeckl/closed-economy-workload/economy"
)

// TransferBetweenAccounts moves one unit between two distinct accounts inside one transaction scope.
//
// The direction follows the balances read, not the order the accounts were drawn in: the first
// account pays if it has money, otherwise the second one does, otherwise nothing moves and the
// outcome is OutcomeInsufficientBalance. A committed transfer therefore never creates, destroys or
// overdraws value. The only returned error is the fatal ErrNoDistinctAccount.
func (w *Workload) TransferBetweenAccounts(ctx context.Context, store economy.Store) (Outcome, error) {
	op := OperationTransfer
	w.trace.start(op)

	first := w.keySelector.Next()
	second, err := w.distinctAccount(first)
	if err != nil {
		return OutcomeUnexpectedState, err
	}

	w.trace.transferPair(first, second)

	if err := store.Start(ctx); err != nil {
		w.logStoreFailure(ctx, op, economy.OperationStart, err)
		w.trace.end(op, false)
		return OutcomeUnexpectedState, nil
	}

	outcome := w.transfer(ctx, store, economy.AccountKey(first), economy.AccountKey(second))

	return w.finishScope(ctx, store, op, outcome), nil
}

func (w *Workload) transfer(ctx context.Context, store economy.Store, firstKey, secondKey string) Outcome {
	op := OperationTransfer

	firstBalance, err := w.readBalance(ctx, store, firstKey)
	if err != nil {
		w.logStoreFailure(ctx, op, economy.OperationRead, err)
		w.trace.end(op, false)
		return OutcomeReadFailed
	}

	secondBalance, err := w.readBalance(ctx, store, secondKey)
	if err != nil {
		w.logStoreFailure(ctx, op, economy.OperationRead, err)
		w.trace.end(op, false)
		return OutcomeReadFailed
	}

	from, to := firstKey, secondKey

	switch {
	case firstBalance > 0:
		firstBalance--
		secondBalance++
	case secondBalance > 0:
		firstBalance++
		secondBalance--
		from, to = secondKey, firstKey
	default:
		w.trace.end(op, false)
		return OutcomeInsufficientBalance
	}

	if err := w.writeBalance(ctx, store, firstKey, firstBalance); err != nil {
		w.logStoreFailure(ctx, op, economy.OperationUpdate, err)
		w.trace.end(op, false)
		return OutcomeUpdateFailed
	}

	if err := w.writeBalance(ctx, store, secondKey, secondBalance); err != nil {
		w.logStoreFailure(ctx, op, economy.OperationUpdate, err)
		w.trace.end(op, false)
		return OutcomeUpdateFailed
	}

	fromBalance, toBalance := firstBalance, secondBalance
	if from != firstKey {
		fromBalance, toBalance = secondBalance, firstBalance
	}

	w.trace.trace("transfer -from %s -to %s", from, to)
	w.trace.trace("current money -from $%d -to $%d", fromBalance, toBalance)
	w.trace.end(op, true)

	return OutcomeCommitted
}

// distinctAccount draws until it finds an index other than first. Running out of attempts means
// the keyspace effectively holds a single account, which is a configuration error.
func (w *Workload) distinctAccount(first int64) (int64, error) {
	for attempt := int64(0); attempt < w.maxDistinctAttempts; attempt++ {
		if second := w.keySelector.Next(); second != first {
			return second, nil
		}
	}

	return 0, fatal(
		"transfer",
		errors.Join(ErrNoDistinctAccount, fmt.Errorf("no second account after %d attempts", w.maxDistinctAttempts)),
	)
}
