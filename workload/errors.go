package workload

import (
	"errors"
	"fmt"
)

var ErrMissingProperty = errors.New("required property is missing")
var ErrInvalidProperty = errors.New("property value can not be parsed")
var ErrCashOverflow = errors.New("initial cash times record count overflows the invariant total")
var ErrUnknownDistribution = errors.New("unknown distribution")
var ErrUnknownWorkload = errors.New("unknown workload variant")
var ErrNoOperations = errors.New("no operation has a positive proportion")
var ErrNoDistinctAccount = errors.New("can not find a second distinct account, the population is probably a single account")
var ErrUnknownOperation = errors.New("operation kind is not handled")
var ErrValidationRead = errors.New("account could not be read during validation")
var ErrCorruptBalance = errors.New("account balance is corrupt")

// FatalError marks a configuration or invariant failure that has to end the whole run.
// Transaction-local failures are reported as an Outcome instead.
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal error in %s: %v", e.Op, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err, or an error it wraps, is a *FatalError.
func IsFatal(err error) bool {
	var fatalErr *FatalError

	return errors.As(err, &fatalErr)
}

func fatal(op string, err error) error {
	return &FatalError{Op: op, Err: err}
}
