package economy

import (
	"errors"
	"fmt"
	"strconv"
)

// BalanceField is the name of the field that carries an account's balance.
const BalanceField = "field0"

const accountKeyPrefix = "user"

var ErrEmptyTableNameSupplied = errors.New("empty table name supplied")
var ErrNilDatabaseConnection = errors.New("database connection must not be nil")
var ErrRecordNotFound = errors.New("record not found")
var ErrDuplicateKey = errors.New("record with this key already exists")
var ErrTransactionInProgress = errors.New("a transaction scope is already in progress")
var ErrMissingBalance = errors.New("record has no balance field")
var ErrMalformedBalance = errors.New("balance field is not an integer")

// Fields is one record of the store, mapping field names to their string encoded values.
type Fields map[string]string

// Clone returns a copy of the Fields, restricted to the given field names if any are given.
func (f Fields) Clone(only ...string) Fields {
	if len(only) == 0 {
		clone := make(Fields, len(f))
		for k, v := range f {
			clone[k] = v
		}

		return clone
	}

	clone := make(Fields, len(only))
	for _, name := range only {
		if v, ok := f[name]; ok {
			clone[name] = v
		}
	}

	return clone
}

// AccountKey builds the record key of the account with the given index.
func AccountKey(index int64) string {
	return accountKeyPrefix + strconv.FormatInt(index, 10)
}

// BalanceOf extracts the balance from a record.
func BalanceOf(fields Fields) (int64, error) {
	raw, ok := fields[BalanceField]
	if !ok {
		return 0, ErrMissingBalance
	}

	balance, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.Join(ErrMalformedBalance, fmt.Errorf("value %q: %w", raw, err))
	}

	return balance, nil
}

// BalanceFields builds the field set that writes the given balance.
func BalanceFields(balance int64) Fields {
	return Fields{BalanceField: strconv.FormatInt(balance, 10)}
}
