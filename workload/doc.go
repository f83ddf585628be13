// Package workload implements the closed-economy transactional workload.
//
// A fixed population of accounts ("user<n>", balance in field0) starts with the same initial cash.
// Concurrent workers run operations against their own economy.Store session:
//
//   - TransferBetweenAccounts moves one unit between two distinct accounts, in the direction the
//     read balances allow, inside one transaction scope.
//   - PayToBank and RewardCustomer move one unit between an account and the in-process BankAccount
//     of the bank-mediated variant.
//   - Read and Scan only read.
//
// No operation creates or destroys money, so after the run Validate must count exactly
// initialCash*recordCount, plus initialCash for the bank in the bank-mediated variant. Any deviation
// is a consistency failure of the store under test, e.g. a lost update under weak isolation.
//
// Transaction-local failures (failed reads or writes, empty accounts, rejected commits) are reported
// as an Outcome and the run goes on. Configuration and invariant failures are returned as *FatalError
// and have to end the run.
//
//	cfg, err := workload.NewConfig(properties)
//	...
//	w, err := workload.New(cfg, workload.WithLogger(logger))
//	...
//	outcome, err := w.DoTransaction(ctx, session) // from each worker
//	...
//	result, err := w.Validate(ctx, session)       // after all workers are done
package workload
