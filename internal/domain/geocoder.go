package domain

import "context"

// GeocodingResult contains place data returned by an address resolver.
type GeocodingResult struct {
	FormattedAddress string
	PlaceName        string
	Confidence       float64 // 0.0 to 1.0 provider confidence score
}

// Geocoder resolves coordinates to a place. An empty FormattedAddress with a
// nil error means the provider had no match.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (GeocodingResult, error)
}
