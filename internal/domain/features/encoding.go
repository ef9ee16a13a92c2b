package features

import (
	"fmt"
	"strings"
)

// Encoding names used by the model bundle.
const (
	EncodingGender          = "gender"
	EncodingParentEducation = "parent_education"
	EncodingRisk            = "risk"
)

// CategoryEncoding is a closed, ordered label set. A label's code is its
// position in canonical order, so codes are dense and start at zero.
type CategoryEncoding struct {
	name   string
	labels []string
	index  map[string]int
}

// NewCategoryEncoding builds an encoding from labels in canonical order.
// Empty, blank and duplicate labels are rejected.
func NewCategoryEncoding(name string, labels []string) (*CategoryEncoding, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: %s has no labels", ErrInvalidEncoding, name)
	}
	e := &CategoryEncoding{
		name:   name,
		labels: make([]string, len(labels)),
		index:  make(map[string]int, len(labels)),
	}
	for i, l := range labels {
		if strings.TrimSpace(l) == "" {
			return nil, fmt.Errorf("%w: %s has a blank label at %d", ErrInvalidEncoding, name, i)
		}
		if _, dup := e.index[l]; dup {
			return nil, fmt.Errorf("%w: %s has duplicate label %q", ErrInvalidEncoding, name, l)
		}
		e.labels[i] = l
		e.index[l] = i
	}
	return e, nil
}

// Name returns the encoding name.
func (e *CategoryEncoding) Name() string { return e.name }

// Len returns the number of known labels.
func (e *CategoryEncoding) Len() int { return len(e.labels) }

// Labels returns a copy of the labels in canonical order.
func (e *CategoryEncoding) Labels() []string {
	out := make([]string, len(e.labels))
	copy(out, e.labels)
	return out
}

// Encode maps a label to its code. Matching is exact.
func (e *CategoryEncoding) Encode(label string) (int, error) {
	code, ok := e.index[label]
	if !ok {
		return 0, &UnknownCategoryError{Encoding: e.name, Label: label}
	}
	return code, nil
}

// Decode maps a code back to its label.
func (e *CategoryEncoding) Decode(code int) (string, error) {
	if code < 0 || code >= len(e.labels) {
		return "", fmt.Errorf("%w: %s code %d", ErrUnknownCategory, e.name, code)
	}
	return e.labels[code], nil
}
