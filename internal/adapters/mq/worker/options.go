package worker

import (
	"time"

	"github.com/okian/edupredict/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithRetry sets how often a failed write is attempted and the base
// backoff between attempts (multiplied by the attempt number).
func WithRetry(maxAttempts int, backoff time.Duration) Option {
	return func(w *InMemoryWorker) {
		if maxAttempts > 0 {
			w.maxAttempts = maxAttempts
		}
		if backoff >= 0 {
			w.retryBackoff = backoff
		}
	}
}

func withCounters(c *Counters) Option {
	return func(w *InMemoryWorker) {
		w.counters = c
	}
}
