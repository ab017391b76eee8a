// Package apperr defines the error kinds shared by the circulation and catalog
// services. Callers match them with errors.Is.
package apperr

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotAvailable      = errors.New("copy is not available")
	ErrDateInPast        = errors.New("invalid date - renewal in past")
	ErrDateTooFarAhead   = errors.New("invalid date - renewal more than 4 weeks ahead")
	ErrConflict          = errors.New("concurrent modification")
	ErrValidation        = errors.New("validation failed")
)

// Kind returns the sentinel err wraps, or nil for an unclassified error.
func Kind(err error) error {
	for _, k := range []error{
		ErrNotFound,
		ErrForbidden,
		ErrInvalidTransition,
		ErrNotAvailable,
		ErrDateInPast,
		ErrDateTooFarAhead,
		ErrConflict,
		ErrValidation,
	} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
