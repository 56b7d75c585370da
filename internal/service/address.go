package service

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/Chuchoruto/ISS-Tracker/internal/domain"
)

// NoAddress is reported when no place can be attached to a fix. Most of the
// orbit is over ocean, so a missing match is the common case, not a fault.
const NoAddress = "no resolvable address, likely over open water"

// AddressSource records how the address on a location was obtained.
type AddressSource string

const (
	AddressResolved    AddressSource = "resolved"
	AddressNotFound    AddressSource = "not_found"
	AddressTimeout     AddressSource = "timeout"
	AddressUnavailable AddressSource = "unavailable"
	AddressDisabled    AddressSource = "disabled"
)

// resolveAddress asks the geocoder for a place at the fix. Resolver failures
// are never returned: they degrade to NoAddress with the reason recorded in
// the source, and a warning is logged.
func (s *Service) resolveAddress(ctx context.Context, fix domain.GeodeticFix) (string, AddressSource) {
	if s.geocoder == nil {
		s.metrics.GeocodeFallbacks.WithLabelValues(string(AddressDisabled)).Inc()
		return NoAddress, AddressDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, s.geocodeTimeout)
	defer cancel()

	result, err := s.geocoder.ReverseGeocode(ctx, fix.Latitude, fix.Longitude)
	if err != nil {
		err = classifyResolverError(ctx, err)
		source := AddressUnavailable
		if errors.Is(err, domain.ErrResolverTimeout) {
			source = AddressTimeout
		}
		s.logger.Warn("reverse geocoding failed",
			"lat", fix.Latitude,
			"lon", fix.Longitude,
			"error", err,
		)
		s.metrics.GeocodeFallbacks.WithLabelValues(string(source)).Inc()
		return NoAddress, source
	}
	if result.FormattedAddress == "" {
		s.metrics.GeocodeFallbacks.WithLabelValues(string(AddressNotFound)).Inc()
		return NoAddress, AddressNotFound
	}
	return result.FormattedAddress, AddressResolved
}

// classifyResolverError tags a geocoder error as a timeout or an outage.
func classifyResolverError(ctx context.Context, err error) error {
	if errors.Is(err, domain.ErrResolverTimeout) || errors.Is(err, domain.ErrResolverUnavailable) {
		return err
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %w", domain.ErrResolverTimeout, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrResolverUnavailable, err)
}
