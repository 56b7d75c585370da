package domain

import (
	"fmt"
	"time"
)

// NoLimit asks Paginate for every record from the offset onward.
const NoLimit = -1

// Summary describes the series without copying its vectors.
func (s *Series) Summary() SeriesSummary {
	sum := SeriesSummary{
		ObjectName: s.Metadata["OBJECT_NAME"],
		ObjectID:   s.Metadata["OBJECT_ID"],
		Count:      len(s.Vectors),
		LoadedAt:   s.LoadedAt,
	}
	if n := len(s.Vectors); n > 0 {
		sum.FirstEpoch = s.Vectors[0].Epoch
		sum.LastEpoch = s.Vectors[n-1].Epoch
	}
	return sum
}

// Paginate returns up to limit vectors starting at offset, in stored order.
// An offset past the end yields an empty slice. A negative limit means NoLimit.
func (s *Series) Paginate(offset, limit int) ([]StateVector, error) {
	if offset < 0 {
		return nil, fmt.Errorf("%w: offset %d is negative", ErrBadArgument, offset)
	}
	n := len(s.Vectors)
	if offset >= n {
		return []StateVector{}, nil
	}
	end := n
	if limit >= 0 && limit < n-offset {
		end = offset + limit
	}
	out := make([]StateVector, end-offset)
	copy(out, s.Vectors[offset:end])
	return out, nil
}

// FindByEpoch scans for an exact epoch string match.
func (s *Series) FindByEpoch(epoch string) (StateVector, error) {
	for _, sv := range s.Vectors {
		if sv.Epoch == epoch {
			return sv, nil
		}
	}
	return StateVector{}, fmt.Errorf("%w: %s", ErrEpochNotFound, epoch)
}

// FindNearest returns the record whose epoch is closest to now among those no
// more than window away. Ties go to the earliest record in stored order.
func (s *Series) FindNearest(now time.Time, window time.Duration) (NearestMatch, error) {
	best := -1
	var bestAbs, bestDelta time.Duration
	for i, sv := range s.Vectors {
		delta := sv.Time.Sub(now)
		abs := delta
		if abs < 0 {
			abs = -abs
		}
		if abs > window {
			continue
		}
		if best < 0 || abs < bestAbs {
			best, bestAbs, bestDelta = i, abs, delta
		}
	}
	if best < 0 {
		return NearestMatch{}, fmt.Errorf("%w: none within %s of %s", ErrNoRecordNearNow, window, now.UTC().Format(time.RFC3339))
	}
	return NearestMatch{Vector: s.Vectors[best], Index: best, Delta: bestDelta}, nil
}
