package domain

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// epochRe matches YYYY-DDDTHH:MM:SS[.sss][Z].
var epochRe = regexp.MustCompile(`^(\d{4})-(\d{3})T(\d{2}):(\d{2}):(\d{2}(?:\.\d+)?)Z?$`)

// errEmptySeries is returned when a feed yields no state vectors at all.
var errEmptySeries = errors.New("series has no state vectors")

// ParseEpoch parses a day-of-year epoch into a UTC time.
func ParseEpoch(s string) (time.Time, error) {
	m := epochRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, fmt.Errorf("epoch %q does not match YYYY-DDDTHH:MM:SS.sss", s)
	}

	year, _ := strconv.Atoi(m[1])
	yday, _ := strconv.Atoi(m[2])
	hour, _ := strconv.Atoi(m[3])
	minute, _ := strconv.Atoi(m[4])
	sec, err := strconv.ParseFloat(m[5], 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("epoch %q: seconds: %w", s, err)
	}

	if yday < 1 || yday > daysIn(year) {
		return time.Time{}, fmt.Errorf("epoch %q: day of year %d out of range", s, yday)
	}
	if hour > 23 || minute > 59 || sec >= 61 {
		return time.Time{}, fmt.Errorf("epoch %q: time of day out of range", s)
	}

	whole := math.Floor(sec)
	nanos := int(math.Round((sec - whole) * 1e9))
	if nanos > 999_999_999 {
		nanos = 999_999_999
	}
	// A leap second is held at the end of its minute so hour and minute stay
	// as written.
	if whole >= 60 {
		whole, nanos = 59, 999_999_999
	}
	t := time.Date(year, time.January, 1, hour, minute, int(whole), nanos, time.UTC)
	return t.AddDate(0, 0, yday-1), nil
}

func daysIn(year int) int {
	if time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay() == 366 {
		return 366
	}
	return 365
}

// ParseStateVector validates one raw record. Any missing or non-numeric
// component, or an epoch outside the grammar, yields a *RecordError.
func ParseStateVector(raw RawRecord) (StateVector, error) {
	epoch := strings.TrimSpace(raw[FieldEpoch])
	if epoch == "" {
		return StateVector{}, &RecordError{Index: -1, Field: FieldEpoch, cause: errors.New("missing")}
	}
	t, err := ParseEpoch(epoch)
	if err != nil {
		return StateVector{}, &RecordError{Index: -1, Epoch: epoch, Field: FieldEpoch, cause: err}
	}

	var comps [6]float64
	for i, field := range [6]string{FieldX, FieldY, FieldZ, FieldXDot, FieldYDot, FieldZDot} {
		v, err := parseComponent(raw, field)
		if err != nil {
			return StateVector{}, &RecordError{Index: -1, Epoch: epoch, Field: field, cause: err}
		}
		comps[i] = v
	}

	return StateVector{
		Epoch:    epoch,
		Time:     t,
		Position: Vector3{X: comps[0], Y: comps[1], Z: comps[2]},
		Velocity: Vector3{X: comps[3], Y: comps[4], Z: comps[5]},
	}, nil
}

func parseComponent(raw RawRecord, field string) (float64, error) {
	s, ok := raw[field]
	s = strings.TrimSpace(s)
	if !ok || s == "" {
		return 0, errors.New("missing")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not numeric: %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not finite: %q", s)
	}
	return v, nil
}

// BuildSeries parses every record and assembles a Series. The first bad record
// aborts the build; no partial series is returned.
func BuildSeries(header, metadata map[string]string, comments []string, records []RawRecord) (*Series, error) {
	if len(records) == 0 {
		return nil, errEmptySeries
	}

	vectors := make([]StateVector, 0, len(records))
	for i, raw := range records {
		sv, err := ParseStateVector(raw)
		if err != nil {
			var re *RecordError
			if errors.As(err, &re) {
				re.Index = i
			}
			return nil, err
		}
		vectors = append(vectors, sv)
	}

	return &Series{
		Header:   header,
		Metadata: metadata,
		Comments: comments,
		Vectors:  vectors,
	}, nil
}

// Speed is the magnitude of the velocity vector in km/s.
func (sv StateVector) Speed() float64 {
	v := sv.Velocity
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}
