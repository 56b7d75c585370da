package refresher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Chuchoruto/ISS-Tracker/internal/domain"
	"github.com/Chuchoruto/ISS-Tracker/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

const interval = time.Hour

// scriptedReloader fails the first failures calls, then succeeds.
type scriptedReloader struct {
	failures int32
	calls    atomic.Int32
	called   chan struct{}
}

func newScriptedReloader(failures int32) *scriptedReloader {
	return &scriptedReloader{failures: failures, called: make(chan struct{}, 64)}
}

func (r *scriptedReloader) Reload(context.Context) (domain.SeriesSummary, error) {
	n := r.calls.Add(1)
	r.called <- struct{}{}
	if n <= r.failures {
		return domain.SeriesSummary{}, errors.New("feed down")
	}
	return domain.SeriesSummary{Count: 4}, nil
}

func waitCall(t *testing.T, r *scriptedReloader) {
	t.Helper()
	select {
	case <-r.called:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func startRefresher(t *testing.T, reloader Reloader) (*clockwork.FakeClock, *observability.Metrics, context.CancelFunc, <-chan error) {
	t.Helper()
	fc := clockwork.NewFakeClock()
	m := observability.NewMetricsForTesting()
	r := New(reloader, interval, fc, testLogger, m)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	t.Cleanup(cancel)
	return fc, m, cancel, done
}

// advance waits for the refresher to arm its next timer, then fires it.
func advance(t *testing.T, fc *clockwork.FakeClock, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, fc.BlockUntilContext(ctx, 1))
	fc.Advance(d)
}

func TestRefresher_Disabled(t *testing.T) {
	reloader := newScriptedReloader(0)
	r := New(reloader, 0, clockwork.NewFakeClock(), testLogger, observability.NewMetricsForTesting())

	require.NoError(t, r.Run(context.Background()))
	assert.Zero(t, reloader.calls.Load())
}

func TestRefresher_ReloadsEveryInterval(t *testing.T) {
	reloader := newScriptedReloader(0)
	fc, m, _, _ := startRefresher(t, reloader)

	advance(t, fc, interval)
	waitCall(t, reloader)
	advance(t, fc, interval)
	waitCall(t, reloader)

	assert.Equal(t, int32(2), reloader.calls.Load())
	assert.InDelta(t, 1, testutil.ToFloat64(m.RefreshRunning), 0)
}

func TestRefresher_RetriesWithBackoff(t *testing.T) {
	reloader := newScriptedReloader(2)
	fc, _, _, _ := startRefresher(t, reloader)

	advance(t, fc, interval)
	waitCall(t, reloader)
	advance(t, fc, 200*time.Millisecond)
	waitCall(t, reloader)
	advance(t, fc, 400*time.Millisecond)
	waitCall(t, reloader)

	assert.Equal(t, int32(3), reloader.calls.Load())
}

func TestRefresher_GivesUpAtBackoffCap(t *testing.T) {
	reloader := newScriptedReloader(1000)
	fc, _, _, _ := startRefresher(t, reloader)

	advance(t, fc, interval)
	waitCall(t, reloader)
	for _, d := range []time.Duration{200, 400, 800, 1600, 3200} {
		advance(t, fc, d*time.Millisecond)
		waitCall(t, reloader)
	}
	assert.Equal(t, int32(6), reloader.calls.Load())

	// The next attempt waits for the regular interval, not another backoff.
	advance(t, fc, maxBackoff)
	select {
	case <-reloader.called:
		t.Fatal("reload attempted before the next interval")
	case <-time.After(50 * time.Millisecond):
	}
	fc.Advance(interval)
	waitCall(t, reloader)
}

func TestRefresher_StopsOnCancel(t *testing.T) {
	reloader := newScriptedReloader(0)
	fc, m, cancel, done := startRefresher(t, reloader)

	ctx, stop := context.WithTimeout(context.Background(), 2*time.Second)
	defer stop()
	require.NoError(t, fc.BlockUntilContext(ctx, 1))
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("refresher did not stop")
	}
	assert.Zero(t, reloader.calls.Load())
	assert.InDelta(t, 0, testutil.ToFloat64(m.RefreshRunning), 0)
}
