package repository

import "errors"

// Sentinel kinds for history store errors.
var (
	ErrInvalidLimit = errors.New("invalid history limit")
	ErrEmptyDSN     = errors.New("history dsn is empty")
)
