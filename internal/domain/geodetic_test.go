package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const geoTolerance = 1e-9

func TestResolver_Resolve_ReferencePoint(t *testing.T) {
	epoch := time.Date(2023, time.March, 4, 14, 30, 0, 0, time.UTC)
	fix := DefaultResolver().Resolve(Vector3{X: -6000, Y: 2000, Z: 1000}, epoch)

	assert.InDelta(t, 8.984876931685683, fix.Latitude, geoTolerance)
	assert.InDelta(t, 156.065051177078, fix.Longitude, geoTolerance)
	assert.InDelta(t, 32.12423743284853, fix.AltitudeKM, geoTolerance)
}

func TestResolver_Resolve_LongitudeWraps(t *testing.T) {
	// Raw longitude is ~196.045, folded to ~-163.955.
	epoch := time.Date(2023, time.March, 4, 1, 0, 0, 0, time.UTC)
	fix := DefaultResolver().Resolve(Vector3{X: 6000, Y: -100, Z: 0}, epoch)

	assert.InDelta(t, -163.9548412538722, fix.Longitude, geoTolerance)
	assert.InDelta(t, 0, fix.Latitude, geoTolerance)
}

func TestResolver_Resolve_IgnoresSeconds(t *testing.T) {
	r := DefaultResolver()
	pos := Vector3{X: 4000, Y: 4000, Z: 3000}
	a := r.Resolve(pos, time.Date(2023, time.March, 4, 9, 15, 0, 0, time.UTC))
	b := r.Resolve(pos, time.Date(2023, time.March, 4, 9, 15, 59, 999, time.UTC))
	assert.Equal(t, a, b)
}

func TestResolver_Resolve_OffsetIsConfigurable(t *testing.T) {
	epoch := time.Date(2023, time.March, 4, 12, 0, 0, 0, time.UTC)
	pos := Vector3{X: 6800, Y: 0, Z: 0}

	assert.InDelta(t, 32.0, DefaultResolver().Resolve(pos, epoch).Longitude, geoTolerance)
	assert.InDelta(t, 0.0, NewResolver(0).Resolve(pos, epoch).Longitude, geoTolerance)
}

func TestResolver_Resolve_BoundsForOrbitalPositions(t *testing.T) {
	r := DefaultResolver()
	for hour := 0; hour < 24; hour++ {
		for deg := 0; deg < 360; deg += 15 {
			rad := float64(deg) * math.Pi / 180
			pos := Vector3{
				X: 6780 * math.Cos(rad),
				Y: 6780 * math.Sin(rad),
				Z: 3000 * math.Sin(2*rad),
			}
			fix := r.Resolve(pos, time.Date(2023, time.March, 4, hour, 45, 0, 0, time.UTC))
			assert.GreaterOrEqual(t, fix.Latitude, -90.0)
			assert.LessOrEqual(t, fix.Latitude, 90.0)
			assert.GreaterOrEqual(t, fix.Longitude, -180.0)
			assert.LessOrEqual(t, fix.Longitude, 180.0)
			assert.Greater(t, fix.AltitudeKM, 0.0)
		}
	}
}

func TestNormalizeLongitude(t *testing.T) {
	cases := map[float64]float64{
		0:      0,
		180:    180,
		-180:   -180,
		181:    -179,
		-181:   179,
		540:    180,
		725:    5,
		-725:   -5,
		359.5:  -0.5,
		-359.5: 0.5,
	}
	for in, want := range cases {
		got := NormalizeLongitude(in)
		assert.InDelta(t, want, got, geoTolerance, "NormalizeLongitude(%v)", in)
		assert.Equal(t, got, NormalizeLongitude(got), "idempotent for %v", in)
	}
}

func TestNormalizeLatitude(t *testing.T) {
	cases := map[float64]float64{
		0:    0,
		90:   90,
		-90:  -90,
		91:   -89,
		-91:  89,
		270:  90,
		-200: -20,
		400:  40,
	}
	for in, want := range cases {
		got := NormalizeLatitude(in)
		assert.InDelta(t, want, got, geoTolerance, "NormalizeLatitude(%v)", in)
		assert.Equal(t, got, NormalizeLatitude(got), "idempotent for %v", in)
	}
}

func TestNormalize_RangeSweep(t *testing.T) {
	for v := -2000.0; v <= 2000.0; v += 7.3 {
		lon := NormalizeLongitude(v)
		assert.True(t, lon >= -180 && lon <= 180, "longitude %v -> %v", v, lon)
		lat := NormalizeLatitude(v)
		assert.True(t, lat >= -90 && lat <= 90, "latitude %v -> %v", v, lat)
	}
}

func TestNormalize_LargeMagnitudes(t *testing.T) {
	for _, v := range []float64{1e16, -1e16, 1e17, -3.7e300, math.MaxFloat64, -math.MaxFloat64} {
		lon := NormalizeLongitude(v)
		assert.True(t, lon >= -180 && lon <= 180, "longitude %v -> %v", v, lon)
		assert.Equal(t, lon, NormalizeLongitude(lon))
		lat := NormalizeLatitude(v)
		assert.True(t, lat >= -90 && lat <= 90, "latitude %v -> %v", v, lat)
		assert.Equal(t, lat, NormalizeLatitude(lat))
	}
}

func TestNormalize_NonFinite(t *testing.T) {
	assert.True(t, math.IsNaN(NormalizeLongitude(math.Inf(1))))
	assert.True(t, math.IsNaN(NormalizeLongitude(math.Inf(-1))))
	assert.True(t, math.IsNaN(NormalizeLatitude(math.NaN())))
}

func TestResolver_Resolve_LeapSecondUsesWrittenMinute(t *testing.T) {
	leap, err := ParseEpoch("2023-063T23:59:60.500Z")
	if !assert.NoError(t, err) {
		return
	}
	r := DefaultResolver()
	pos := Vector3{X: -6000, Y: 2000, Z: 1000}
	assert.Equal(t, r.Resolve(pos, time.Date(2023, time.March, 4, 23, 59, 0, 0, time.UTC)), r.Resolve(pos, leap))
}
