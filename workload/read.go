package workload

import (
	"context"
	"strconv"

	"github.com/AntonStoeckl/closed-economy-workload/economy"
)

// Read reads one account without changing it. The peer-to-peer variant reads the balance only,
// the bank variant reads all fields or one random field, depending on readallfields.
func (w *Workload) Read(ctx context.Context, store economy.Store) Outcome {
	index := w.keySelector.Next()
	w.trace.readKey(index)

	if _, err := store.Read(ctx, w.cfg.Table, economy.AccountKey(index), w.readFields()); err != nil {
		w.logStoreFailure(ctx, OperationRead, economy.OperationRead, err)
		return OutcomeReadFailed
	}

	return OutcomeCommitted
}

// Scan reads a range of accounts starting at a random one, with a length from the scan length distribution.
func (w *Workload) Scan(ctx context.Context, store economy.Store) Outcome {
	index := w.keySelector.Next()
	length := w.scanLength.Next()
	w.trace.readKey(index)

	if _, err := store.Scan(ctx, w.cfg.Table, economy.AccountKey(index), int(length), w.readFields()); err != nil {
		w.logStoreFailure(ctx, OperationScan, economy.OperationScan, err)
		return OutcomeReadFailed
	}

	return OutcomeCommitted
}

func (w *Workload) readFields() []string {
	if w.cfg.Variant == PeerToPeer {
		return []string{economy.BalanceField}
	}

	if w.cfg.ReadAllFields {
		return nil
	}

	return []string{"field" + strconv.FormatInt(w.fieldChooser.Next(), 10)}
}
