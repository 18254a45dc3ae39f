package service

import (
	"errors"
	"fmt"
)

var (
	// ErrOrderNumberExhausted is returned when checkout keeps colliding on
	// the order number after the maximum number of attempts.
	ErrOrderNumberExhausted = errors.New("could not allocate a unique order number")

	// ErrForbidden is returned when the caller is authenticated but not
	// allowed to perform the operation.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError carries per-field messages for a rejected request. A batch
// is validated as a whole, so Fields may name several items at once.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d invalid field(s)", len(e.Fields))
}
