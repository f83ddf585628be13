package workload

import (
	"context"
	"strconv"
	"time"

	"github.com/AntonStoeckl/closed-economy-workload/economy"
)

const fillerAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DoInsert loads the next account of the load sequence with the initial cash.
// Insert failures are not fatal; the caller decides whether to retry or count them.
func (w *Workload) DoInsert(ctx context.Context, store economy.Store) error {
	index := w.loadSequence.Next()
	key := economy.AccountKey(index)
	start := time.Now()

	err := store.Insert(ctx, w.cfg.Table, key, w.buildValues())
	elapsed := time.Since(start)

	w.measurements.Measure(MeasurementInsert, elapsed)
	w.measurements.ReportStatus(MeasurementInsert, economy.StatusOf(err))

	if err != nil {
		w.logWarnContext(ctx, logMsgInsertFailed, logAttrKey, key, logAttrError, err.Error())
		return err
	}

	w.opsExecuted.Add(1)

	return nil
}

// buildValues creates a record with the initial balance in field0 and filler in the other fields.
func (w *Workload) buildValues() economy.Fields {
	values := economy.BalanceFields(w.cfg.InitialCash)

	for i := int64(1); i < w.cfg.FieldCount; i++ {
		values["field"+strconv.FormatInt(i, 10)] = w.filler(w.fieldLength.Next())
	}

	return values
}

func (w *Workload) filler(length int64) string {
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = fillerAlphabet[w.rnd.Int64N(int64(len(fillerAlphabet)))]
	}

	return string(buf)
}
