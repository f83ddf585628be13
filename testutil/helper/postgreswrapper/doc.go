// Package postgreswrapper opens postgresstore.Database instances for integration tests.
//
// The tests run only when CEW_POSTGRES_TEST_DSN points at a database. CEW_POSTGRES_TEST_ADAPTER selects
// the driver: pgx.pool (default), sql.db or sqlx.db.
package postgreswrapper
