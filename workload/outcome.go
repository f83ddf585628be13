package workload

import (
	"github.com/AntonStoeckl/closed-economy-workload/economy"
)

// Outcome classifies how one operation ended.
type Outcome int

const (
	OutcomeCommitted Outcome = iota
	OutcomeInsufficientBalance
	OutcomeReadFailed
	OutcomeUpdateFailed

	// OutcomeAborted means the store rejected the commit of a scope whose reads and writes succeeded.
	OutcomeAborted

	// OutcomeUnexpectedState covers a failed abort, a failed scope start and the bank preconditions.
	OutcomeUnexpectedState
)

// Status maps the Outcome onto the reporting taxonomy.
func (o Outcome) Status() economy.Status {
	switch o {
	case OutcomeCommitted:
		return economy.StatusOK
	case OutcomeInsufficientBalance:
		return economy.StatusInsufficientBalance
	case OutcomeReadFailed:
		return economy.StatusErrorWhileReading
	case OutcomeUpdateFailed:
		return economy.StatusErrorWhileUpdating
	case OutcomeAborted:
		return economy.StatusError
	default:
		return economy.StatusUnexpectedState
	}
}

// String provides a string representation of Outcome for logging and debugging.
func (o Outcome) String() string {
	switch o {
	case OutcomeCommitted:
		return "committed"
	case OutcomeInsufficientBalance:
		return "insufficient_balance"
	case OutcomeReadFailed:
		return "read_failed"
	case OutcomeUpdateFailed:
		return "update_failed"
	case OutcomeAborted:
		return "aborted"
	case OutcomeUnexpectedState:
		return "unexpected_state"
	default:
		return "unknown"
	}
}
