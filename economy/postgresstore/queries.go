package postgresstore

import (
	"errors"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/closed-economy-workload/economy"
)

const (
	dialectPostgres = "postgres"
	colKey          = "ycsb_key"
	colFields       = "fields"
	mergeJsonb      = "? || ?::jsonb"
	castJsonb       = "?::jsonb"
)

func buildReadQuery(table, key string, forUpdate bool) (string, error) {
	if table == "" {
		return "", economy.ErrEmptyTableNameSupplied
	}

	selectStmt := goqu.Dialect(dialectPostgres).
		From(table).
		Select(colFields).
		Where(goqu.C(colKey).Eq(key))

	if forUpdate {
		selectStmt = selectStmt.ForUpdate(exp.Wait)
	}

	return toSQL(selectStmt.ToSQL())
}

func buildScanQuery(table, startKey string, count int) (string, error) {
	if table == "" {
		return "", economy.ErrEmptyTableNameSupplied
	}

	if count < 0 {
		count = 0
	}

	selectStmt := goqu.Dialect(dialectPostgres).
		From(table).
		Select(colFields).
		Where(goqu.C(colKey).Gte(startKey)).
		Order(goqu.I(colKey).Asc()).
		Limit(uint(count))

	return toSQL(selectStmt.ToSQL())
}

// buildUpdateQuery merges the values into the stored JSONB object, so fields not named keep their value.
func buildUpdateQuery(table, key string, values economy.Fields) (string, error) {
	if table == "" {
		return "", economy.ErrEmptyTableNameSupplied
	}

	encoded, err := encodeFields(values)
	if err != nil {
		return "", err
	}

	updateStmt := goqu.Dialect(dialectPostgres).
		Update(table).
		Set(goqu.Record{colFields: goqu.L(mergeJsonb, goqu.I(colFields), encoded)}).
		Where(goqu.C(colKey).Eq(key))

	return toSQL(updateStmt.ToSQL())
}

// buildInsertQuery skips existing keys, so a duplicate shows as zero affected rows instead of a failed transaction.
func buildInsertQuery(table, key string, values economy.Fields) (string, error) {
	if table == "" {
		return "", economy.ErrEmptyTableNameSupplied
	}

	encoded, err := encodeFields(values)
	if err != nil {
		return "", err
	}

	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(table).
		Rows(goqu.Record{colKey: key, colFields: goqu.L(castJsonb, encoded)}).
		OnConflict(goqu.DoNothing())

	return toSQL(insertStmt.ToSQL())
}

func toSQL(sqlQuery string, _ []any, err error) (string, error) {
	if err != nil {
		return "", errors.Join(ErrBuildingQueryFailed, err)
	}

	return sqlQuery, nil
}
