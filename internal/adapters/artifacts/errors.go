package artifacts

import "errors"

// Sentinel kinds for artifact bundle errors. Load wraps each of them in an
// inference.ModelUnavailableError.
var (
	ErrEmptyPath         = errors.New("artifact path is empty")
	ErrUnsupportedBundle = errors.New("unsupported artifact bundle")
	ErrFeatureOrder      = errors.New("bundle feature order does not match the encoder")
)
