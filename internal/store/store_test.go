package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Chuchoruto/ISS-Tracker/internal/domain"
	"github.com/Chuchoruto/ISS-Tracker/internal/observability"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
	refNow     = time.Date(2023, time.March, 4, 12, 0, 0, 0, time.UTC)
)

type mockLoader struct {
	mock.Mock
}

func (m *mockLoader) Load(ctx context.Context) (*domain.Series, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*domain.Series)
	return s, args.Error(1)
}

// funcLoader adapts a function to the Loader interface.
type funcLoader func(ctx context.Context) (*domain.Series, error)

func (f funcLoader) Load(ctx context.Context) (*domain.Series, error) { return f(ctx) }

func makeSeries(name string, offsets ...time.Duration) *domain.Series {
	s := &domain.Series{
		Metadata: map[string]string{"OBJECT_NAME": name, "OBJECT_ID": "1998-067-A"},
		LoadedAt: refNow,
	}
	for i, off := range offsets {
		ts := refNow.Add(off)
		s.Vectors = append(s.Vectors, domain.StateVector{
			Epoch:    fmt.Sprintf("%s.%03dZ", ts.Format("2006-002T15:04:05"), i),
			Time:     ts,
			Position: domain.Vector3{X: 6800, Y: float64(i)},
			Velocity: domain.Vector3{X: 3, Y: 4},
		})
	}
	return s
}

func newTestStore(loader Loader) (*Store, *observability.Metrics) {
	m := observability.NewMetricsForTesting()
	return New(loader, clockwork.NewFakeClockAt(refNow), testLogger, m), m
}

func TestStore_EmptyReadsFailWithNoData(t *testing.T) {
	s, _ := newTestStore(&mockLoader{})

	_, err := s.Snapshot()
	require.ErrorIs(t, err, domain.ErrNoData)
	_, err = s.All()
	require.ErrorIs(t, err, domain.ErrNoData)
	_, err = s.Paginate(0, 1)
	require.ErrorIs(t, err, domain.ErrNoData)
	_, err = s.FindByEpoch("2023-063T12:00:00.000Z")
	require.ErrorIs(t, err, domain.ErrNoData)
	_, err = s.FindNearestToNow(time.Minute)
	require.ErrorIs(t, err, domain.ErrNoData)
	require.ErrorIs(t, s.CheckReadiness(context.Background()), domain.ErrNoData)
}

func TestStore_LoadInstallsSeries(t *testing.T) {
	loader := &mockLoader{}
	series := makeSeries("ISS", 0, 4*time.Minute, 8*time.Minute)
	loader.On("Load", mock.Anything).Return(series, nil).Once()
	s, m := newTestStore(loader)

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Same(t, series, got)

	all, err := s.All()
	require.NoError(t, err)
	assert.Len(t, all, 3)
	require.NoError(t, s.CheckReadiness(context.Background()))

	assert.InDelta(t, 1, testutil.ToFloat64(m.Loads.WithLabelValues("success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SeriesLoaded), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(m.SeriesVectors), 0)
	loader.AssertExpectations(t)
}

func TestStore_FailedReloadKeepsPreviousSeries(t *testing.T) {
	loader := &mockLoader{}
	first := makeSeries("ISS", 0, time.Minute)
	loader.On("Load", mock.Anything).Return(first, nil).Once()
	loader.On("Load", mock.Anything).Return(nil, fmt.Errorf("%w: bad xml", domain.ErrFeedMalformed)).Once()
	loader.On("Load", mock.Anything).Return(nil, fmt.Errorf("%w: dial tcp", domain.ErrFeedUnavailable)).Once()
	s, m := newTestStore(loader)

	_, err := s.Load(context.Background())
	require.NoError(t, err)

	_, err = s.Load(context.Background())
	require.ErrorIs(t, err, domain.ErrFeedMalformed)
	_, err = s.Load(context.Background())
	require.ErrorIs(t, err, domain.ErrFeedUnavailable)

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Same(t, first, snap)

	assert.InDelta(t, 1, testutil.ToFloat64(m.Loads.WithLabelValues("malformed")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Loads.WithLabelValues("unavailable")), 0)
	loader.AssertExpectations(t)
}

func TestStore_FailedInitialLoadLeavesStoreEmpty(t *testing.T) {
	loader := &mockLoader{}
	loader.On("Load", mock.Anything).Return(nil, domain.ErrFeedUnavailable)
	s, _ := newTestStore(loader)

	_, err := s.Load(context.Background())
	require.ErrorIs(t, err, domain.ErrFeedUnavailable)
	_, err = s.Snapshot()
	require.ErrorIs(t, err, domain.ErrNoData)
}

func TestStore_Clear(t *testing.T) {
	loader := &mockLoader{}
	loader.On("Load", mock.Anything).Return(makeSeries("ISS", 0), nil)
	s, m := newTestStore(loader)

	assert.Equal(t, domain.AlreadyEmpty, s.Clear())

	_, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Cleared, s.Clear())
	assert.Equal(t, domain.AlreadyEmpty, s.Clear())

	_, err = s.All()
	require.ErrorIs(t, err, domain.ErrNoData)
	assert.InDelta(t, 0, testutil.ToFloat64(m.SeriesLoaded), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Clears.WithLabelValues("cleared")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.Clears.WithLabelValues("already_empty")), 0)

	_, err = s.Load(context.Background())
	require.NoError(t, err)
	_, err = s.All()
	require.NoError(t, err)
}

func TestStore_FindNearestToNowUsesClock(t *testing.T) {
	loader := &mockLoader{}
	loader.On("Load", mock.Anything).Return(makeSeries("ISS", -300*time.Second, -50*time.Second, 10*time.Second, 500*time.Second), nil)
	s, _ := newTestStore(loader)
	_, err := s.Load(context.Background())
	require.NoError(t, err)

	match, err := s.FindNearestToNow(120 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, 2, match.Index)
	assert.Equal(t, 10*time.Second, match.Delta)
	assert.Equal(t, refNow, s.Now())
}

func TestStore_ReloadIsDeterministic(t *testing.T) {
	loader := funcLoader(func(context.Context) (*domain.Series, error) {
		return makeSeries("ISS", 0, time.Minute, 2*time.Minute), nil
	})
	s, _ := newTestStore(loader)

	_, err := s.Load(context.Background())
	require.NoError(t, err)
	first, err := s.All()
	require.NoError(t, err)

	_, err = s.Load(context.Background())
	require.NoError(t, err)
	second, err := s.All()
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("reload changed series (-first +second):\n%s", diff)
	}
}

func TestStore_ConcurrentLoadsShareOneFetch(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	loader := funcLoader(func(context.Context) (*domain.Series, error) {
		calls.Add(1)
		<-release
		return makeSeries("ISS", 0), nil
	})
	s, _ := newTestStore(loader)

	const callers = 8
	var started, done sync.WaitGroup
	started.Add(callers)
	done.Add(callers)
	for range callers {
		go func() {
			defer done.Done()
			started.Done()
			_, err := s.Load(context.Background())
			assert.NoError(t, err)
		}()
	}
	started.Wait()
	// Give every goroutine time to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(release)
	done.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

// Readers never observe a mix of two generations: every snapshot is one of
// the series handed out by the loader, in full.
func TestStore_ReadersSeeWholeGenerations(t *testing.T) {
	small := makeSeries("small", 0)
	large := makeSeries("large", 0, time.Minute, 2*time.Minute, 3*time.Minute)
	var flip atomic.Bool
	loader := funcLoader(func(context.Context) (*domain.Series, error) {
		if flip.Load() {
			flip.Store(false)
			return small, nil
		}
		flip.Store(true)
		return large, nil
	})
	s, _ := newTestStore(loader)
	_, err := s.Load(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ctx.Err() == nil {
			_, _ = s.Load(ctx)
			if s.Clear() == domain.Cleared {
				_, _ = s.Load(ctx)
			}
		}
	}()

	var violations atomic.Int32
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 2000 {
				snap, err := s.Snapshot()
				if errors.Is(err, domain.ErrNoData) {
					continue
				}
				name := snap.Metadata["OBJECT_NAME"]
				if (name == "small" && len(snap.Vectors) != 1) || (name == "large" && len(snap.Vectors) != 4) {
					violations.Add(1)
				}
			}
		}()
	}

	time.Sleep(100 * time.Millisecond)
	cancel()
	wg.Wait()
	assert.Zero(t, violations.Load())
}
