// Package refresher periodically reloads the telemetry series.
package refresher

import (
	"context"
	"log/slog"
	"time"

	"github.com/Chuchoruto/ISS-Tracker/internal/domain"
	"github.com/Chuchoruto/ISS-Tracker/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/jonboulle/clockwork"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Reloader installs a fresh series.
type Reloader interface {
	Reload(ctx context.Context) (domain.SeriesSummary, error)
}

// Refresher calls Reload every interval. A failed reload is retried with
// exponential backoff until the backoff reaches its cap; after that the
// cycle is abandoned and the previous series keeps serving until the next tick.
type Refresher struct {
	reloader Reloader
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// New creates a Refresher. An interval of zero or less disables it.
func New(reloader Reloader, interval time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Refresher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Refresher{
		reloader: reloader,
		interval: interval,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
	}
}

// Run reloads on every tick until the context is cancelled.
func (r *Refresher) Run(ctx context.Context) error {
	if r.interval <= 0 {
		r.logger.Info("periodic refresh disabled")
		return nil
	}

	r.logger.Info("refresher started", "interval", r.interval)
	r.metrics.RefreshRunning.Set(1)
	defer r.metrics.RefreshRunning.Set(0)

	for {
		if !r.sleep(ctx, r.interval) {
			r.logger.Info("refresher stopping", "reason", ctx.Err())
			return nil
		}
		if !r.refresh(ctx) {
			r.logger.Info("refresher stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// refresh runs one reload cycle. Returns false if the refresher should stop.
func (r *Refresher) refresh(ctx context.Context) bool {
	backoff := initialBackoff
	for {
		summary, err := r.reloader.Reload(ctx)
		if err == nil {
			r.logger.Debug("periodic refresh complete",
				"count", summary.Count,
				"last_epoch", summary.LastEpoch,
			)
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		if backoff == maxBackoff {
			r.logger.Error("periodic refresh failed, giving up until next tick",
				"error", err,
				"next_attempt_in", r.interval,
			)
			return true
		}
		r.logger.Warn("periodic refresh failed", "error", err, "retry_in", backoff)
		if !r.sleep(ctx, backoff) {
			return false
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
}

func (r *Refresher) sleep(ctx context.Context, d time.Duration) bool {
	timer := r.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
