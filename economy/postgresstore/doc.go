// Package postgresstore provides a PostgreSQL implementation of the economy.Store contract.
//
// Every record lives in one row of a two column table: the record key and a JSONB object holding
// the field map. Reads project fields in Go, updates merge into the JSONB object, so a partial
// update never drops the filler fields written by the load phase.
//
// A Database can be built from a pgx pool, a database/sql DB (e.g. with lib/pq) or a sqlx DB.
// It hands out sessions; each session maps a transaction scope onto a database transaction
// opened with the configured isolation level.
//
// Usage examples:
//
//	pool, _ := pgxpool.New(ctx, dsn)
//	db, _ := postgresstore.NewDatabaseFromPGXPool(
//		pool,
//		postgresstore.WithIsolationLevel(economy.ReadCommitted),
//		postgresstore.WithLogger(logger),
//	)
//	_ = db.CreateTable(ctx)
//
//	session := db.NewSession()
//	_ = session.Start(ctx)
//	fields, _ := session.Read(ctx, "usertable", "user1", nil)
//	_ = session.Commit(ctx)
package postgresstore
