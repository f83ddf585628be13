// Package economy provides the core abstractions shared by the closed-economy workload
// and the storage engines it drives.
//
// The package defines the Store contract a transactional key-value backend has to fulfill,
// the Fields record shape, the Status taxonomy reported by operations, the transaction
// IsolationLevel a store runs its scopes with, and the dependency-free observability
// interfaces (Logger, ContextualLogger, MetricsCollector, TracingCollector).
//
// An account is a record keyed "user<n>" whose balance lives in the BalanceField:
//
//	session := factory.NewSession()
//	if err := session.Start(ctx); err != nil {
//		// handle error
//	}
//
//	fields, err := session.Read(ctx, "usertable", economy.AccountKey(7), []string{economy.BalanceField})
//	if err != nil {
//		_ = session.Abort(ctx)
//		// handle error
//	}
//
//	balance, err := economy.BalanceOf(fields)
//	...
//	err = session.Update(ctx, "usertable", economy.AccountKey(7), economy.BalanceFields(balance-1))
//	...
//	err = session.Commit(ctx)
package economy
