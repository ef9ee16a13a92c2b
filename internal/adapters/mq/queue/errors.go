package queue

import "errors"

// Sentinel kinds for enqueue failures.
var (
	ErrFull   = errors.New("history queue is full")
	ErrClosed = errors.New("history queue is closed")
)
