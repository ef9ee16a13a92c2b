package inference

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrModelUnavailable     = errors.New("model unavailable")
	ErrIncompleteArtifacts  = errors.New("artifact set is incomplete")
	ErrDimensionMismatch    = errors.New("dimension mismatch")
	ErrClassCountMismatch   = errors.New("classifier classes do not match risk encoding")
	ErrInvalidProbabilities = errors.New("classifier returned no usable probabilities")
)

// ModelUnavailableError means no prediction is possible because the
// artifact set is missing, unreadable or inconsistent.
type ModelUnavailableError struct {
	Source string
	Err    error
}

func (e *ModelUnavailableError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("model unavailable: %v", e.Err)
	}
	return fmt.Sprintf("model unavailable (%s): %v", e.Source, e.Err)
}

func (e *ModelUnavailableError) Unwrap() error { return e.Err }

// Is matches ErrModelUnavailable.
func (e *ModelUnavailableError) Is(target error) bool {
	return target == ErrModelUnavailable
}
