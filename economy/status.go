package economy

import "errors"

// Status is the result taxonomy reported for store and workload operations.
type Status int

const (
	StatusOK Status = iota
	StatusError
	StatusUnexpectedState
	StatusInsufficientBalance
	StatusErrorWhileReading
	StatusErrorWhileUpdating

	// StatusTransactionInProgress is the initial value of an operation that has not finished yet.
	StatusTransactionInProgress
)

// String returns the name used in reports, e.g. "ERROR_WHILE_READING".
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusError:
		return "ERROR"
	case StatusUnexpectedState:
		return "UNEXPECTED_STATE"
	case StatusInsufficientBalance:
		return "INSUFFICIENT_BALANCE"
	case StatusErrorWhileReading:
		return "ERROR_WHILE_READING"
	case StatusErrorWhileUpdating:
		return "ERROR_WHILE_UPDATING"
	case StatusTransactionInProgress:
		return "TRANSACTION_IN_PROGRESS"
	default:
		return "UNKNOWN"
	}
}

// StatusOf classifies an error returned by a Store method.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrTransactionInProgress):
		return StatusTransactionInProgress
	default:
		return StatusError
	}
}
