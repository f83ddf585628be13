package postgresstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"
)

const (
	logMsgSchemaChanged = "schema changed: "
	logActionCreate     = "create table"
	logActionDrop       = "drop table"
	logActionTruncate   = "truncate table"
)

// CreateTable creates the record table unless it exists.
func (db *Database) CreateTable(ctx context.Context) error {
	return db.execSchema(ctx, logActionCreate, buildCreateTableStatement(db.tableName))
}

// DropTable drops the record table if it exists.
func (db *Database) DropTable(ctx context.Context) error {
	return db.execSchema(ctx, logActionDrop, buildDropTableStatement(db.tableName))
}

// TruncateTable removes all records, e.g. before a new load phase.
func (db *Database) TruncateTable(ctx context.Context) error {
	sqlQuery, err := toSQL(goqu.Dialect(dialectPostgres).Truncate(db.tableName).ToSQL())
	if err != nil {
		return err
	}

	return db.execSchema(ctx, logActionTruncate, sqlQuery)
}

func (db *Database) execSchema(ctx context.Context, action, statement string) error {
	if _, err := db.db.Exec(ctx, statement); err != nil {
		db.logErrorContext(ctx, logMsgSchemaChanged+action, err, logAttrQuery, statement)
		return errors.Join(ErrExecutingFailed, err)
	}

	db.logInfoContext(ctx, logMsgSchemaChanged+action, logAttrTable, db.tableName)

	return nil
}

func buildCreateTableStatement(table string) string {
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (%s VARCHAR(255) PRIMARY KEY, %s JSONB NOT NULL)",
		pgx.Identifier{table}.Sanitize(),
		pgx.Identifier{colKey}.Sanitize(),
		pgx.Identifier{colFields}.Sanitize(),
	)
}

func buildDropTableStatement(table string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", pgx.Identifier{table}.Sanitize())
}
