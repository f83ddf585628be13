package workload

import (
	"context"

	"github.com/AntonStoeckl/closed-economy-workload/economy"
)

// RewardCustomer moves one unit from the bank to a customer account.
//
// The unit is reserved from the bank first. If the bank is empty, nothing is touched and the outcome
// is OutcomeUnexpectedState. If the account can not be read, written or committed, the reserved unit
// goes back to the bank.
func (w *Workload) RewardCustomer(ctx context.Context, store economy.Store) Outcome {
	op := OperationRewardCustomer
	w.trace.start(op)

	if w.bank == nil || !w.bank.Withdraw() {
		w.trace.end(op, false)
		return OutcomeUnexpectedState
	}

	index := w.keySelector.Next()
	key := economy.AccountKey(index)

	outcome := w.singleAccountScope(ctx, store, op, key, func(balance int64) (int64, bool) {
		return balance + 1, true
	})

	if outcome != OutcomeCommitted {
		w.bank.Deposit()
		w.trace.end(op, false)
		return OutcomeUnexpectedState
	}

	w.recordBankBalance(ctx)
	w.trace.trace("reward -to %s", key)
	w.trace.end(op, true)

	return OutcomeCommitted
}

// PayToBank moves one unit from a customer account to the bank.
//
// An account without money is left alone with OutcomeUnexpectedState. The bank only receives the
// unit once the account write is committed.
func (w *Workload) PayToBank(ctx context.Context, store economy.Store) Outcome {
	op := OperationPayToBank
	w.trace.start(op)

	if w.bank == nil {
		w.trace.end(op, false)
		return OutcomeUnexpectedState
	}

	index := w.keySelector.Next()
	key := economy.AccountKey(index)

	outcome := w.singleAccountScope(ctx, store, op, key, func(balance int64) (int64, bool) {
		if balance <= 0 {
			return balance, false
		}
		return balance - 1, true
	})

	if outcome != OutcomeCommitted {
		w.trace.end(op, false)
		return OutcomeUnexpectedState
	}

	w.bank.Deposit()
	w.recordBankBalance(ctx)
	w.trace.trace("payment -from %s", key)
	w.trace.end(op, true)

	return OutcomeCommitted
}

// singleAccountScope reads one balance, applies change and writes the result back in one scope.
// A change reporting false aborts the scope with OutcomeInsufficientBalance.
func (w *Workload) singleAccountScope(
	ctx context.Context,
	store economy.Store,
	op Operation,
	key string,
	change func(balance int64) (int64, bool),
) Outcome {

	if err := store.Start(ctx); err != nil {
		w.logStoreFailure(ctx, op, economy.OperationStart, err)
		return OutcomeUnexpectedState
	}

	outcome := func() Outcome {
		balance, err := w.readBalance(ctx, store, key)
		if err != nil {
			w.logStoreFailure(ctx, op, economy.OperationRead, err)
			return OutcomeReadFailed
		}

		changed, ok := change(balance)
		if !ok {
			return OutcomeInsufficientBalance
		}

		if err := w.writeBalance(ctx, store, key, changed); err != nil {
			w.logStoreFailure(ctx, op, economy.OperationUpdate, err)
			return OutcomeUpdateFailed
		}

		return OutcomeCommitted
	}()

	return w.finishScope(ctx, store, op, outcome)
}
