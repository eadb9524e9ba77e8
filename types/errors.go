package types

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig  = errors.New("invalid clustering config")
	ErrInvalidReports = errors.New("invalid report batch")
	ErrMissingMember  = errors.New("cluster member not found")
	ErrComputation    = errors.New("clustering computation failed")
)

// ComputationError is the single failure type returned by engine operations.
// Issues carries the individual problems behind Message.
type ComputationError struct {
	Op      string   `json:"op"`
	Message string   `json:"message"`
	Issues  []string `json:"issues,omitempty"`
	Cause   error    `json:"-"`
}

func (e *ComputationError) Error() string {
	if e.Op == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *ComputationError) Unwrap() error {
	return e.Cause
}

// Recovered converts a recovered panic value into a ComputationError.
func Recovered(op string, r any) *ComputationError {
	msg := fmt.Sprint(r)
	if err, ok := r.(error); ok {
		msg = err.Error()
	}
	return &ComputationError{
		Op:      op,
		Message: msg,
		Issues:  []string{msg},
		Cause:   ErrComputation,
	}
}
