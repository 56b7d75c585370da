package domain

import (
	"math"
	"time"
)

const (
	// EarthRadiusKM is the mean Earth radius. No oblateness correction.
	EarthRadiusKM = 6371.0

	// DefaultLongitudeOffsetDeg aligns the inertial frame with the
	// rotating Earth for this feed. Empirically fit; keep the literal value.
	DefaultLongitudeOffsetDeg = 32.0

	degreesPerHour = 360.0 / 24.0
)

// Resolver converts an inertial position into a geodetic fix.
type Resolver struct {
	EarthRadiusKM      float64
	LongitudeOffsetDeg float64
}

// NewResolver returns a Resolver with the default radius and the given
// longitude offset.
func NewResolver(longitudeOffsetDeg float64) Resolver {
	return Resolver{
		EarthRadiusKM:      EarthRadiusKM,
		LongitudeOffsetDeg: longitudeOffsetDeg,
	}
}

// DefaultResolver uses the mean Earth radius and the default offset.
func DefaultResolver() Resolver {
	return NewResolver(DefaultLongitudeOffsetDeg)
}

// Resolve computes latitude, longitude and altitude for a position at epoch.
// Only the hour and minute of the epoch (UTC) enter the rotation correction.
//
// The position must be non-zero; atan2 at the origin is not handled.
func (r Resolver) Resolve(pos Vector3, epoch time.Time) GeodeticFix {
	epoch = epoch.UTC()
	rho := math.Sqrt(pos.X*pos.X + pos.Y*pos.Y)

	lat := degrees(math.Atan2(pos.Z, rho))
	rotation := (float64(epoch.Hour()-12) + float64(epoch.Minute())/60) * degreesPerHour
	lon := degrees(math.Atan2(pos.Y, pos.X)) - rotation + r.LongitudeOffsetDeg
	alt := math.Sqrt(pos.X*pos.X+pos.Y*pos.Y+pos.Z*pos.Z) - r.EarthRadiusKM

	return GeodeticFix{
		Latitude:   NormalizeLatitude(lat),
		Longitude:  NormalizeLongitude(lon),
		AltitudeKM: alt,
	}
}

// ResolveVector is Resolve applied to a state vector's position and epoch.
func (r Resolver) ResolveVector(sv StateVector) GeodeticFix {
	return r.Resolve(sv.Position, sv.Time)
}

// NormalizeLongitude folds a longitude into [-180, 180] by whole turns.
// Values already in range are returned unchanged. Non-finite input yields NaN.
func NormalizeLongitude(lon float64) float64 {
	return fold(lon, 180)
}

// NormalizeLatitude folds a latitude into [-90, 90] by half turns.
func NormalizeLatitude(lat float64) float64 {
	return fold(lat, 90)
}

// fold maps x into [-bound, bound] modulo 2*bound. Values above the range land
// in (-bound, bound], values below it in [-bound, bound).
func fold(x, bound float64) float64 {
	switch {
	case x >= -bound && x <= bound:
		return x
	case math.IsInf(x, 0) || math.IsNaN(x):
		return math.NaN()
	case x > bound:
		r := math.Mod(x-bound, 2*bound)
		if r == 0 {
			return bound
		}
		return r - bound
	default:
		r := math.Mod(x+bound, 2*bound)
		if r == 0 {
			return -bound
		}
		return r + bound
	}
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
