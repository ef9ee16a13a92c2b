package repository

import "time"

// Option applies a configuration option to the SQLiteStore.
type Option func(*SQLiteStore)

// WithMaxLimit caps how many records ListByUser returns.
func WithMaxLimit(n int) Option {
	return func(s *SQLiteStore) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithBusyTimeout sets how long SQLite waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(s *SQLiteStore) {
		if d > 0 {
			s.busyTimeout = d
		}
	}
}

