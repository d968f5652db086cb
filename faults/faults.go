// Package faults classifies errors the background loops must treat as
// non-retryable logic failures rather than transient conditions.
package faults

import "errors"

// CriticalError marks a failure caused by an application bug or broken
// environment (missing migration, bad configuration) rather than bad data or
// a flaky dependency. A loop that hits one should stop instead of spinning.
type CriticalError struct {
	Err error
}

func (e *CriticalError) Error() string { return "critical: " + e.Err.Error() }

func (e *CriticalError) Unwrap() error { return e.Err }

// Critical wraps err as a CriticalError. A nil err stays nil.
func Critical(err error) error {
	if err == nil {
		return nil
	}
	return &CriticalError{Err: err}
}

// IsCritical reports whether any error in the chain is a CriticalError.
func IsCritical(err error) bool {
	var ce *CriticalError
	return errors.As(err, &ce)
}
