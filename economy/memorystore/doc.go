// Package memorystore provides an in-process transactional implementation of economy.Store.
//
// The store keeps tables as maps in memory and runs transaction scopes with a configurable
// economy.IsolationLevel, which makes it suitable both as a stand-alone backend for quick runs
// and as the mock store for exercising the workload under different interleavings:
//
//   - Serializable scopes hold a database-wide lock from Start until Commit or Abort and buffer
//     their writes until Commit.
//   - ReadCommitted scopes buffer their writes until Commit but take no lock, so two scopes can
//     read the same balance and lose one of the updates.
//   - ReadUncommitted applies writes immediately; Abort can not undo them.
//
// A FaultHook can fail any operation on demand to drive the workload's error paths.
package memorystore
