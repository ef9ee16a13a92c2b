// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/edupredict/internal/adapters/artifacts"
	"github.com/okian/edupredict/internal/adapters/mq/queue"
	"github.com/okian/edupredict/internal/adapters/mq/worker"
	"github.com/okian/edupredict/internal/adapters/repository"
	"github.com/okian/edupredict/internal/domain/dedupe"
	"github.com/okian/edupredict/internal/domain/features"
	"github.com/okian/edupredict/internal/domain/inference"
	"github.com/okian/edupredict/internal/domain/model"
	"github.com/okian/edupredict/internal/domain/prediction"
	"github.com/okian/edupredict/internal/domain/simulation"
	"github.com/okian/edupredict/pkg/logger"
	"github.com/okian/edupredict/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultArtifactPath    = "models/student_model_v1.json"
	defaultHistoryDSN      = "history.db"
	defaultWorkerCount     = 4
	defaultQueueSize       = 10_000
	defaultDedupeSize      = 50_000
	defaultMaxHistoryLimit = 500
)

// Prediction error kinds reported to metrics.
const (
	kindUnknownCategory  = "unknown_category"
	kindInvalidRange     = "invalid_range"
	kindModelUnavailable = "model_unavailable"
	kindInternal         = "internal"
)

// ErrNotStarted is returned by operations that need a started service.
var ErrNotStarted = errors.New("service not started")

// Service implements the API dependencies for the prediction system.
type Service struct {
	mu sync.RWMutex

	// Core components
	cache        *artifacts.Cache
	orchestrator *prediction.Orchestrator
	modelErr     error
	store        repository.Store
	deduper      dedupe.Deduper
	queue        *queue.InMemoryQueue
	pool         *worker.Pool

	// saveMu makes the dedupe check and the enqueue one step.
	saveMu sync.Mutex

	// Configuration
	artifactPath    string
	historyDSN      string
	busyTimeout     time.Duration
	workerCount     int
	queueSize       int
	dedupeSize      int
	maxHistoryLimit int
	validateRanges  bool
	now             func() time.Time

	// State
	started bool
	cancel  context.CancelFunc

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithArtifactPath sets the model bundle loaded on Start.
func WithArtifactPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.artifactPath = path
		}
	}
}

// WithArtifactCache supplies the cache the model is read from instead of
// the process-wide one for the artifact path.
func WithArtifactCache(c *artifacts.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithHistoryDSN sets the SQLite database for the performance log.
func WithHistoryDSN(dsn string) Option {
	return func(s *Service) {
		if dsn != "" {
			s.historyDSN = dsn
		}
	}
}

// WithHistoryBusyTimeout sets how long history writes wait on a locked
// database. Zero keeps the store default.
func WithHistoryBusyTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.busyTimeout = d
	}
}

// WithHistoryStore supplies an already opened history store. The service
// closes it on Stop.
func WithHistoryStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithWorkerCount sets the number of history writers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the history queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxHistoryLimit caps how many records a history read returns.
func WithMaxHistoryLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxHistoryLimit = n
		}
	}
}

// WithRangeValidation rejects numeric inputs outside the form ranges.
func WithRangeValidation(enabled bool) Option {
	return func(s *Service) {
		s.validateRanges = enabled
	}
}

// WithClock overrides the clock used to timestamp history records.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		artifactPath:    defaultArtifactPath,
		historyDSN:      defaultHistoryDSN,
		workerCount:     defaultWorkerCount,
		queueSize:       defaultQueueSize,
		dedupeSize:      defaultDedupeSize,
		maxHistoryLimit: defaultMaxHistoryLimit,
		now:             time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the model, opens the history store and starts the writers.
// A model that cannot be loaded does not stop the service: predictions fail
// with the load error while history stays readable.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting prediction service...")

	if s.cache == nil {
		s.cache = artifacts.Shared(s.artifactPath)
	}
	set, err := s.cache.Get(ctx)
	if err == nil {
		s.orchestrator, err = prediction.New(set, prediction.WithRangeValidation(s.validateRanges))
	}
	if err != nil {
		s.modelErr = err
		metrics.RecordErrorByComponent("service", kindModelUnavailable)
		s.logger.Error(ctx, "model unavailable, predictions disabled",
			logger.String("path", s.cache.Path()),
			logger.Error(err),
		)
	}

	if s.store == nil {
		store, err := repository.OpenSQLite(ctx, s.historyDSN,
			repository.WithMaxLimit(s.maxHistoryLimit),
			repository.WithBusyTimeout(s.busyTimeout),
		)
		if err != nil {
			return fmt.Errorf("open history store: %w", err)
		}
		s.store = store
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s.store)

	// Writers outlive the caller's context; Stop ends them.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "prediction service started",
		logger.Bool("modelReady", s.orchestrator != nil),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)

	return nil
}

// Stop drains queued history writes and closes the store. Records still
// queued when ctx expires are lost and the error is returned.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping prediction service...")

	drainErr := s.pool.Shutdown(ctx)
	s.cancel()

	var closeErr error
	if s.store != nil {
		closeErr = s.store.Close()
		s.store = nil
	}

	s.started = false
	s.logger.Info(ctx, "prediction service stopped",
		logger.Int64("written", s.pool.Written()),
		logger.Int64("failed", s.pool.Failed()),
	)

	return errors.Join(drainErr, closeErr)
}

// Predict encodes raw, runs both models and derives indicators.
func (s *Service) Predict(ctx context.Context, raw features.RawInputs) (prediction.Report, error) {
	o, err := s.model()
	if err != nil {
		s.recordError(ctx, err)
		return prediction.Report{}, err
	}

	start := time.Now()
	report, err := o.Run(raw)
	metrics.RecordInferenceLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		s.recordError(ctx, err)
		return prediction.Report{}, err
	}

	metrics.RecordPrediction(report.Prediction.RiskLabel, report.Prediction.PredictedScore)
	return report, nil
}

// Simulate predicts raw as a baseline and again with the deltas applied.
// Nothing is saved.
func (s *Service) Simulate(ctx context.Context, raw features.RawInputs, d simulation.Deltas) (prediction.ScenarioReport, error) {
	o, err := s.model()
	if err != nil {
		s.recordError(ctx, err)
		return prediction.ScenarioReport{}, err
	}

	report, err := o.RunScenario(raw, d)
	if err != nil {
		s.recordError(ctx, err)
		return prediction.ScenarioReport{}, err
	}

	metrics.RecordSimulation(report.Scenario.DeltaScore)
	return report, nil
}

// SaveHistory runs a prediction for req and queues it for the user's log.
// It reports duplicate=true, without queueing, only when the record id was
// already queued. A full queue returns queue.ErrFull and the id may be
// retried.
func (s *Service) SaveHistory(ctx context.Context, req model.HistoryRequest) (model.HistoryRecord, bool, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return model.HistoryRecord{}, false, model.ErrMissingUserID
	}
	if !s.isStarted() {
		return model.HistoryRecord{}, false, ErrNotStarted
	}

	report, err := s.Predict(ctx, req.Inputs)
	if err != nil {
		return model.HistoryRecord{}, false, err
	}

	rec := model.NewHistoryRecord(req.ID, req.UserID, s.now(),
		report.Prediction.PredictedScore, report.Prediction.RiskLabel,
		req.Inputs.StudyHours, req.Inputs.AttendancePercent)

	// A concurrent save of the same id must not be told "duplicate" while
	// this one can still be rejected by a full queue.
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if s.deduper.SeenAndRecord(ctx, rec.ID) {
		metrics.RecordHistoryDuplicate()
		s.logger.Debug(ctx, "duplicate history record, skipping",
			logger.String("recordID", rec.ID),
			logger.String("userID", rec.UserID),
		)
		return rec, true, nil
	}

	if err := s.queue.Enqueue(ctx, rec); err != nil {
		s.deduper.Unrecord(ctx, rec.ID)
		s.logger.Warn(ctx, "history record rejected",
			logger.String("recordID", rec.ID),
			logger.Error(err),
		)
		return model.HistoryRecord{}, false, err
	}

	return rec, false, nil
}

// History returns up to limit of the user's most recent records, oldest
// first. A zero limit means the configured maximum.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]model.HistoryRecord, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, model.ErrMissingUserID
	}

	s.mu.RLock()
	store := s.store
	s.mu.RUnlock()
	if store == nil {
		return nil, ErrNotStarted
	}

	return store.ListByUser(ctx, userID, limit)
}

// Categories returns the labels the loaded model accepts and predicts.
func (s *Service) Categories() (prediction.Categories, error) {
	o, err := s.model()
	if err != nil {
		return prediction.Categories{}, err
	}
	return o.Categories(), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"modelReady":  s.orchestrator != nil,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}
	if s.orchestrator != nil {
		stats["modelVersion"] = s.orchestrator.Artifacts().Version
	}

	if s.started {
		ctx := context.Background()
		stats["queueLength"] = s.queue.Len(ctx)
		stats["dedupeEntries"] = s.deduper.Size()
		stats["historyWritten"] = s.pool.Written()
		stats["historyDuplicates"] = s.pool.Duplicates()
		stats["historyFailed"] = s.pool.Failed()

		if n, err := s.store.Count(ctx); err == nil {
			stats["historyRecords"] = n
		}
	}

	return stats
}

func (s *Service) isStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

func (s *Service) model() (*prediction.Orchestrator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case s.orchestrator != nil:
		return s.orchestrator, nil
	case s.modelErr != nil:
		return nil, s.modelErr
	default:
		return nil, ErrNotStarted
	}
}

func (s *Service) recordError(ctx context.Context, err error) {
	kind := ErrorKind(err)
	metrics.RecordPredictionError(kind)
	if kind == kindInternal && s.logger != nil {
		s.logger.Error(ctx, "prediction failed", logger.Error(err))
	}
}

// ErrorKind classifies a prediction error for metrics and status mapping.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, features.ErrUnknownCategory):
		return kindUnknownCategory
	case errors.Is(err, features.ErrInvalidRange):
		return kindInvalidRange
	case errors.Is(err, inference.ErrModelUnavailable):
		return kindModelUnavailable
	default:
		return kindInternal
	}
}
