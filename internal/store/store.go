// Package store holds the currently loaded telemetry series and serves
// consistent snapshots of it to concurrent readers.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Chuchoruto/ISS-Tracker/internal/domain"
	"github.com/Chuchoruto/ISS-Tracker/internal/observability"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

// Loader produces a complete series from the upstream feed.
type Loader interface {
	Load(ctx context.Context) (*domain.Series, error)
}

// Store owns the current series. Readers take the pointer and work on that
// generation only; writers replace it wholesale, never in place.
type Store struct {
	series atomic.Pointer[domain.Series]
	mu     sync.Mutex // serializes swaps and clears
	group  singleflight.Group

	loader  Loader
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates an empty Store.
func New(loader Loader, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{
		loader:  loader,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

// Load fetches a new series and installs it. On failure the previous series,
// if any, stays in place. Concurrent callers share a single fetch.
func (s *Store) Load(ctx context.Context) (*domain.Series, error) {
	v, err, shared := s.group.Do("load", func() (any, error) {
		return s.load(ctx)
	})
	if shared {
		s.logger.Debug("joined in-flight load")
	}
	if err != nil {
		return nil, err
	}
	return v.(*domain.Series), nil
}

func (s *Store) load(ctx context.Context) (*domain.Series, error) {
	start := s.clock.Now()
	next, err := s.loader.Load(ctx)
	s.metrics.LoadDuration.Observe(s.clock.Since(start).Seconds())
	if err != nil {
		outcome := "unavailable"
		if errors.Is(err, domain.ErrFeedMalformed) {
			outcome = "malformed"
		}
		s.metrics.Loads.WithLabelValues(outcome).Inc()
		s.logger.Warn("telemetry load failed, keeping previous series",
			"error", err,
			"has_previous", s.series.Load() != nil,
		)
		return nil, err
	}

	s.mu.Lock()
	s.series.Store(next)
	s.mu.Unlock()

	s.metrics.Loads.WithLabelValues("success").Inc()
	s.metrics.SeriesLoaded.Set(1)
	s.metrics.SeriesVectors.Set(float64(len(next.Vectors)))
	s.metrics.SeriesLoadedAt.Set(float64(next.LoadedAt.Unix()))
	s.logger.Info("telemetry series loaded",
		"vectors", len(next.Vectors),
		"object", next.Metadata["OBJECT_NAME"],
	)
	return next, nil
}

// Clear drops the current series. Subsequent reads fail with domain.ErrNoData
// until the next successful Load.
func (s *Store) Clear() domain.ClearOutcome {
	s.mu.Lock()
	prev := s.series.Swap(nil)
	s.mu.Unlock()

	outcome := domain.Cleared
	if prev == nil {
		outcome = domain.AlreadyEmpty
	}
	s.metrics.Clears.WithLabelValues(outcome.String()).Inc()
	s.metrics.SeriesLoaded.Set(0)
	s.metrics.SeriesVectors.Set(0)
	s.logger.Info("telemetry series cleared", "outcome", outcome.String())
	return outcome
}

// Snapshot returns the current series generation.
func (s *Store) Snapshot() (*domain.Series, error) {
	series := s.series.Load()
	if series == nil {
		return nil, domain.ErrNoData
	}
	return series, nil
}

// All returns every state vector in stored order.
func (s *Store) All() ([]domain.StateVector, error) {
	return s.Paginate(0, domain.NoLimit)
}

// Paginate returns a window of state vectors from the current series.
func (s *Store) Paginate(offset, limit int) ([]domain.StateVector, error) {
	series, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return series.Paginate(offset, limit)
}

// FindByEpoch returns the state vector with exactly this epoch string.
func (s *Store) FindByEpoch(epoch string) (domain.StateVector, error) {
	series, err := s.Snapshot()
	if err != nil {
		return domain.StateVector{}, err
	}
	return series.FindByEpoch(epoch)
}

// FindNearestToNow returns the record closest to the current instant within window.
func (s *Store) FindNearestToNow(window time.Duration) (domain.NearestMatch, error) {
	series, err := s.Snapshot()
	if err != nil {
		return domain.NearestMatch{}, err
	}
	return series.FindNearest(s.clock.Now(), window)
}

// Now reports the store's notion of the current instant.
func (s *Store) Now() time.Time {
	return s.clock.Now()
}

// CheckReadiness reports ready once a series is loaded.
func (s *Store) CheckReadiness(_ context.Context) error {
	if s.series.Load() == nil {
		return fmt.Errorf("telemetry: %w", domain.ErrNoData)
	}
	return nil
}
