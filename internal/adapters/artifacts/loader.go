// Package artifacts loads the fitted model bundle and keeps one decoded copy
// per process.
package artifacts

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/okian/edupredict/internal/domain/inference"
	"github.com/okian/edupredict/pkg/logger"
	"github.com/okian/edupredict/pkg/metrics"
)

// Load status labels.
const (
	statusOK     = "ok"
	statusFailed = "failed"
)

// LoadFunc reads an artifact set from a storage location.
type LoadFunc func(ctx context.Context, path string) (*inference.ArtifactSet, error)

// Load reads and validates the bundle at path. Every failure is a
// *inference.ModelUnavailableError naming the path.
func Load(ctx context.Context, path string) (*inference.ArtifactSet, error) {
	start := time.Now()
	set, err := load(ctx, path)
	elapsed := float64(time.Since(start).Microseconds()) / 1000

	log := logger.Named("artifacts")
	if err != nil {
		metrics.RecordArtifactLoad(statusFailed, elapsed)
		log.Error(ctx, "artifact load failed", logger.String("path", path), logger.Error(err))
		return nil, &inference.ModelUnavailableError{Source: path, Err: err}
	}

	metrics.RecordArtifactLoad(statusOK, elapsed)
	metrics.UpdateArtifactLoadedAt(time.Now().Unix())
	metrics.UpdateKnownCategories(set.Gender.Name(), set.Gender.Len())
	metrics.UpdateKnownCategories(set.ParentEducation.Name(), set.ParentEducation.Len())
	metrics.UpdateKnownCategories(set.Risk.Name(), set.Risk.Len())
	log.Info(ctx, "artifacts loaded",
		logger.String("path", path),
		logger.String("version", set.Version),
		logger.Float64("durationMs", elapsed),
	)
	return set, nil
}

func load(ctx context.Context, path string) (*inference.ArtifactSet, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path) //nolint:gosec // path comes from trusted configuration
	if err != nil {
		return nil, fmt.Errorf("open bundle: %w", err)
	}
	defer func() { _ = f.Close() }()

	b, err := Decode(f)
	if err != nil {
		return nil, err
	}
	return b.ArtifactSet()
}

// Option applies a configuration option to the Cache.
type Option func(*Cache)

// WithLoadFunc replaces the function the cache loads with.
func WithLoadFunc(fn LoadFunc) Option {
	return func(c *Cache) {
		if fn != nil {
			c.load = fn
		}
	}
}

// Cache loads an artifact set at most once. The first result, success or
// failure, is kept for the cache's lifetime: a failed load is not retried.
type Cache struct {
	path string
	load LoadFunc

	once sync.Once
	set  *inference.ArtifactSet
	err  error
}

// NewCache creates a cache for the bundle at path. Nothing is read until Get.
func NewCache(path string, opts ...Option) *Cache {
	c := &Cache{path: path, load: Load}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached set, loading it on the first call. Concurrent first
// calls block until that single load finishes.
func (c *Cache) Get(ctx context.Context) (*inference.ArtifactSet, error) {
	c.once.Do(func() {
		c.set, c.err = c.load(ctx, c.path)
	})
	return c.set, c.err
}

// Path returns the bundle location.
func (c *Cache) Path() string { return c.path }

// shared holds one Cache per bundle path for the whole process.
var shared sync.Map //nolint:gochecknoglobals // process-wide artifact cache

// Shared returns the process-wide cache for path.
func Shared(path string) *Cache {
	if c, ok := shared.Load(path); ok {
		return c.(*Cache)
	}
	c, _ := shared.LoadOrStore(path, NewCache(path))
	return c.(*Cache)
}
