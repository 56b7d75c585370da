// Package service maps the tracker's query operations onto the telemetry
// store, the geodetic resolver and the address resolver.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/Chuchoruto/ISS-Tracker/internal/domain"
	"github.com/Chuchoruto/ISS-Tracker/internal/observability"
)

// Defaults applied when Options leaves a field zero.
const (
	DefaultFreshnessWindow = 120 * time.Second
	DefaultGeocodeTimeout  = 5 * time.Second
)

// SeriesStore is the subset of the telemetry store the service reads and writes.
// Each read call works on a single series generation.
type SeriesStore interface {
	Load(ctx context.Context) (*domain.Series, error)
	Clear() domain.ClearOutcome
	Snapshot() (*domain.Series, error)
	All() ([]domain.StateVector, error)
	Paginate(offset, limit int) ([]domain.StateVector, error)
	FindByEpoch(epoch string) (domain.StateVector, error)
	FindNearestToNow(window time.Duration) (domain.NearestMatch, error)
}

// LoadNotifier is told about every successfully installed series.
type LoadNotifier interface {
	NotifyLoaded(ctx context.Context, summary domain.SeriesSummary) error
}

// Options carries the optional collaborators and tuning of a Service.
type Options struct {
	// Geocoder is nil when address enrichment is disabled.
	Geocoder        domain.Geocoder
	GeocodeTimeout  time.Duration
	FreshnessWindow time.Duration
	Notifier        LoadNotifier
}

// Speed is the instantaneous speed at one epoch.
type Speed struct {
	Epoch    string  `json:"epoch"`
	SpeedKMS float64 `json:"speed_km_s"`
}

// Location is a geodetic fix with the address attached to it.
type Location struct {
	Epoch string `json:"epoch"`
	domain.GeodeticFix
	Address       string        `json:"address"`
	AddressSource AddressSource `json:"address_source"`
}

// Current is the location of the record nearest to now.
type Current struct {
	Location
	// SecondsFromNow is the record's epoch minus now; negative means past.
	SecondsFromNow float64 `json:"seconds_from_now"`
	SpeedKMS       float64 `json:"speed_km_s"`
}

// Service implements the query operations.
type Service struct {
	store           SeriesStore
	resolver        domain.Resolver
	geocoder        domain.Geocoder
	geocodeTimeout  time.Duration
	freshnessWindow time.Duration
	notifier        LoadNotifier
	logger          *slog.Logger
	metrics         *observability.Metrics
}

// New creates a Service.
func New(store SeriesStore, resolver domain.Resolver, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Service {
	if opts.GeocodeTimeout <= 0 {
		opts.GeocodeTimeout = DefaultGeocodeTimeout
	}
	if opts.FreshnessWindow <= 0 {
		opts.FreshnessWindow = DefaultFreshnessWindow
	}
	if opts.Geocoder != nil {
		metrics.GeocodeEnabled.Set(1)
	} else {
		metrics.GeocodeEnabled.Set(0)
	}
	return &Service{
		store:           store,
		resolver:        resolver,
		geocoder:        opts.Geocoder,
		geocodeTimeout:  opts.GeocodeTimeout,
		freshnessWindow: opts.FreshnessWindow,
		notifier:        opts.Notifier,
		logger:          logger,
		metrics:         metrics,
	}
}

// Snapshot returns every state vector of the current series.
func (s *Service) Snapshot() (_ []domain.StateVector, err error) {
	defer s.observe("snapshot", time.Now(), &err)
	return s.store.All()
}

// ListEpochs returns epoch strings for a page of the series. Empty arguments
// take their defaults: offset 0 and every remaining record.
func (s *Service) ListEpochs(limitArg, offsetArg string) (_ []string, err error) {
	defer s.observe("list_epochs", time.Now(), &err)

	limit, err := parseCount("limit", limitArg, domain.NoLimit)
	if err != nil {
		return nil, err
	}
	offset, err := parseCount("offset", offsetArg, 0)
	if err != nil {
		return nil, err
	}

	vectors, err := s.store.Paginate(offset, limit)
	if err != nil {
		return nil, err
	}
	epochs := make([]string, len(vectors))
	for i, sv := range vectors {
		epochs[i] = sv.Epoch
	}
	return epochs, nil
}

// GetEpoch returns the state vector with exactly this epoch.
func (s *Service) GetEpoch(epoch string) (_ domain.StateVector, err error) {
	defer s.observe("get_epoch", time.Now(), &err)
	return s.store.FindByEpoch(epoch)
}

// GetSpeed returns the speed at an epoch.
func (s *Service) GetSpeed(epoch string) (_ Speed, err error) {
	defer s.observe("get_speed", time.Now(), &err)
	sv, err := s.store.FindByEpoch(epoch)
	if err != nil {
		return Speed{}, err
	}
	return Speed{Epoch: sv.Epoch, SpeedKMS: sv.Speed()}, nil
}

// GetLocation returns the geodetic fix and address at an epoch.
func (s *Service) GetLocation(ctx context.Context, epoch string) (_ Location, err error) {
	defer s.observe("get_location", time.Now(), &err)
	sv, err := s.store.FindByEpoch(epoch)
	if err != nil {
		return Location{}, err
	}
	return s.locate(ctx, sv), nil
}

// GetCurrent returns the location of the record nearest to now, within the
// freshness window.
func (s *Service) GetCurrent(ctx context.Context) (_ Current, err error) {
	defer s.observe("get_current", time.Now(), &err)
	match, err := s.store.FindNearestToNow(s.freshnessWindow)
	if err != nil {
		return Current{}, err
	}
	return Current{
		Location:       s.locate(ctx, match.Vector),
		SecondsFromNow: match.Delta.Seconds(),
		SpeedKMS:       match.Vector.Speed(),
	}, nil
}

func (s *Service) locate(ctx context.Context, sv domain.StateVector) Location {
	fix := s.resolver.ResolveVector(sv)
	address, source := s.resolveAddress(ctx, fix)
	return Location{
		Epoch:         sv.Epoch,
		GeodeticFix:   fix,
		Address:       address,
		AddressSource: source,
	}
}

// Reload fetches a new series and installs it, returning its summary. On
// failure the previous series stays in place.
func (s *Service) Reload(ctx context.Context) (_ domain.SeriesSummary, err error) {
	defer s.observe("reload", time.Now(), &err)
	series, err := s.store.Load(ctx)
	if err != nil {
		return domain.SeriesSummary{}, err
	}
	summary := series.Summary()
	if s.notifier != nil {
		if nerr := s.notifier.NotifyLoaded(ctx, summary); nerr != nil {
			s.logger.Warn("failed to publish load event", "error", nerr)
		}
	}
	return summary, nil
}

// Clear drops the current series.
func (s *Service) Clear() domain.ClearOutcome {
	start := time.Now()
	outcome := s.store.Clear()
	s.observe("clear", start, new(error))
	return outcome
}

// Header returns the feed header of the current series.
func (s *Service) Header() (_ map[string]string, err error) {
	defer s.observe("header", time.Now(), &err)
	series, err := s.store.Snapshot()
	if err != nil {
		return nil, err
	}
	return maps.Clone(series.Header), nil
}

// Metadata returns the feed metadata of the current series.
func (s *Service) Metadata() (_ map[string]string, err error) {
	defer s.observe("metadata", time.Now(), &err)
	series, err := s.store.Snapshot()
	if err != nil {
		return nil, err
	}
	return maps.Clone(series.Metadata), nil
}

// Comments returns the feed comments of the current series.
func (s *Service) Comments() (_ []string, err error) {
	defer s.observe("comments", time.Now(), &err)
	series, err := s.store.Snapshot()
	if err != nil {
		return nil, err
	}
	return slices.Clone(series.Comments), nil
}

// parseCount reads a non-negative integer argument, or def when empty.
func parseCount(name, arg string, def int) (int, error) {
	if arg == "" {
		return def, nil
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer, got %q", domain.ErrBadArgument, name, arg)
	}
	return n, nil
}

func (s *Service) observe(op string, start time.Time, errp *error) {
	s.metrics.QueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	s.metrics.Queries.WithLabelValues(op, outcome(*errp)).Inc()
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	return domain.Kind(err)
}
