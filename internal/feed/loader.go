package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Chuchoruto/ISS-Tracker/internal/domain"
	"github.com/jonboulle/clockwork"
)

// Loader fetches and parses one generation of telemetry.
type Loader struct {
	provider Provider
	timeout  time.Duration
	maxBytes int64
	clock    clockwork.Clock
	logger   *slog.Logger
}

// NewLoader creates a Loader. Every fetch is bounded by timeout and a gzip
// payload may expand to at most maxBytes; non-positive selects DefaultMaxBytes.
func NewLoader(provider Provider, timeout time.Duration, maxBytes int64, clock clockwork.Clock, logger *slog.Logger) *Loader {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Loader{
		provider: provider,
		timeout:  timeout,
		maxBytes: maxBytes,
		clock:    clock,
		logger:   logger,
	}
}

// Load returns a fully parsed series or an error matching
// domain.ErrFeedUnavailable or domain.ErrFeedMalformed.
func (l *Loader) Load(ctx context.Context) (*domain.Series, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	raw, err := l.provider.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFeedUnavailable, err)
	}

	series, err := ParseOEMLimit(raw, l.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFeedMalformed, err)
	}
	series.LoadedAt = l.clock.Now()

	l.logger.Debug("feed parsed", "source", fmt.Sprint(l.provider), "vectors", len(series.Vectors))
	return series, nil
}
