package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for integration runs.
var (
	// ErrInvalidState indicates a state vector containing NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrNonMonotonic indicates a time sequence that is not strictly monotonic.
	ErrNonMonotonic = errors.New("dynamo: time sequence is not strictly monotonic")

	// ErrShape indicates a vector whose length differs from the system order.
	ErrShape = errors.New("dynamo: state length mismatch")

	ErrUnknownModel  = errors.New("dynamo: unknown model")
	ErrUnknownMethod = errors.New("dynamo: unknown integration method")

	// ErrParameter indicates an unknown or out-of-range model parameter.
	ErrParameter = errors.New("dynamo: invalid parameter")
)

// ShapeError reports a derivative or step result whose length does not match
// the order fixed by the initial state.
type ShapeError struct {
	Want int
	Got  int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("dynamo: state length mismatch: want %d, got %d", e.Want, e.Got)
}

func (e *ShapeError) Is(target error) bool {
	return target == ErrShape
}

// CheckShape returns a *ShapeError when len(y) != want.
func CheckShape(y State, want int) error {
	if len(y) != want {
		return &ShapeError{Want: want, Got: len(y)}
	}
	return nil
}

// SimulationError wraps an error with the interval at which it happened.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
