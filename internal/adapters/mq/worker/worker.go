// Package worker persists queued history records in the background.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/edupredict/internal/adapters/mq/queue"
	"github.com/okian/edupredict/pkg/logger"
	"github.com/okian/edupredict/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount  = 4
	defaultMaxAttempts  = 3
	defaultRetryBackoff = 50 * time.Millisecond
)

// Record is what workers read off the queue.
type Record = queue.Record

// Writer persists one record. It reports false for a record that already
// exists.
type Writer interface {
	Save(ctx context.Context, rec Record) (bool, error)
}

// Queue defines how workers receive records.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Record
}

// Worker drains records from a queue into a Writer.
type Worker interface {
	// Run processes records until the queue channel closes, ctx is
	// canceled or the worker is stopped.
	Run(ctx context.Context)

	// Shutdown stops the worker without draining.
	Shutdown(ctx context.Context) error
}

// Counters are shared by the workers of one pool.
type Counters struct {
	Written    atomic.Int64
	Duplicates atomic.Int64
	Failed     atomic.Int64
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue  Queue
	writer Writer
	name   string

	maxAttempts  int
	retryBackoff time.Duration
	counters     *Counters

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, w Writer, opts ...Option) *InMemoryWorker {
	wk := &InMemoryWorker{
		queue:        q,
		writer:       w,
		name:         "worker",
		maxAttempts:  defaultMaxAttempts,
		retryBackoff: defaultRetryBackoff,
		counters:     &Counters{},
		shutdown:     make(chan struct{}),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(wk)
	}
	if wk.logger == nil {
		wk.logger = logger.Get().Named(wk.name)
	}
	return wk
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	records := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case rec, ok := <-records:
			if !ok {
				return
			}
			if err := w.process(ctx, rec); err != nil {
				w.logger.Error(ctx, "history write failed",
					logger.String("recordID", rec.ID),
					logger.String("userID", rec.UserID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown stops the worker and waits for its loop to exit.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

// process writes one record, retrying transient failures.
func (w *InMemoryWorker) process(ctx context.Context, rec Record) error { //nolint:gocritic // hugeParam: Record is passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	var err error
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return w.fail(rec, ctx.Err())
			case <-time.After(w.retryBackoff * time.Duration(attempt-1)):
			}
		}

		var inserted bool
		inserted, err = w.writer.Save(ctx, rec)
		if err == nil {
			if inserted {
				w.counters.Written.Add(1)
			} else {
				w.counters.Duplicates.Add(1)
			}
			return nil
		}
		w.logger.Debug(ctx, "history write attempt failed",
			logger.String("recordID", rec.ID),
			logger.Int("attempt", attempt),
			logger.Error(err),
		)
	}
	return w.fail(rec, err)
}

func (w *InMemoryWorker) fail(rec Record, err error) error { //nolint:gocritic // hugeParam
	w.counters.Failed.Add(1)
	metrics.RecordWorkerError()
	metrics.RecordErrorByComponent("worker", "write_failed")
	return fmt.Errorf("save record %s: %w", rec.ID, err)
}

// Pool manages multiple workers over one queue.
type Pool struct {
	workers  []*InMemoryWorker
	queue    Queue
	counters *Counters

	mu      sync.Mutex
	started bool

	logger logger.Logger
}

// NewPool creates a pool of workerCount writers. Options apply to every
// worker; names are assigned per worker.
func NewPool(workerCount int, q Queue, w Writer, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	p := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    q,
		counters: &Counters{},
		logger:   logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		workerOpts := append([]Option{}, opts...)
		workerOpts = append(workerOpts, WithName("worker-"+strconv.Itoa(i)), withCounters(p.counters))
		p.workers[i] = NewInMemoryWorker(q, w, workerOpts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)

	return p
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	for _, w := range p.workers {
		go w.Run(ctx)
	}
	metrics.UpdateWorkerActiveCount(len(p.workers))
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Written returns how many records the pool persisted.
func (p *Pool) Written() int64 { return p.counters.Written.Load() }

// Duplicates returns how many records already existed in the store.
func (p *Pool) Duplicates() int64 { return p.counters.Duplicates.Load() }

// Failed returns how many records could not be persisted.
func (p *Pool) Failed() int64 { return p.counters.Failed.Load() }

// Shutdown closes the queue and lets workers drain what is left. Workers
// still running when ctx expires are stopped and the error is returned.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.Done():
		case <-ctx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
			_ = w.Shutdown(context.Background())
		}
	}
	metrics.UpdateWorkerActiveCount(0)

	if timedOut {
		return fmt.Errorf("drain history queue: %w", ctx.Err())
	}
	return nil
}
