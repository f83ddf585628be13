// Package adapters hides the differences between pgx.Pool, sql.DB and sqlx.DB behind one DBAdapter.
//
// Every adapter runs plain queries, executes statements and opens transactions with a given isolation
// level. A DBTx offers the same query surface as the adapter, so callers switch between autocommit and
// transactional execution without knowing the driver.
package adapters
