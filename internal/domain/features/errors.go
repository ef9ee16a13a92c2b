package features

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is from callers.
var (
	ErrUnknownCategory  = errors.New("unknown category")
	ErrInvalidRange     = errors.New("value out of range")
	ErrInvalidEncoding  = errors.New("invalid category encoding")
	ErrMissingEncodings = errors.New("encoder requires gender and parent education encodings")
)

// UnknownCategoryError reports a label outside an encoding's trained domain.
type UnknownCategoryError struct {
	Encoding string
	Label    string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown %s category %q", e.Encoding, e.Label)
}

// Is matches ErrUnknownCategory.
func (e *UnknownCategoryError) Is(target error) bool {
	return target == ErrUnknownCategory
}

// InvalidRangeError reports a numeric input outside its documented domain.
type InvalidRangeError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("%s=%g outside [%g, %g]", e.Field, e.Value, e.Min, e.Max)
}

// Is matches ErrInvalidRange.
func (e *InvalidRangeError) Is(target error) bool {
	return target == ErrInvalidRange
}
