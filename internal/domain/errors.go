package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNoData              = errors.New("no telemetry data loaded")
	ErrFeedUnavailable     = errors.New("telemetry feed unavailable")
	ErrFeedMalformed       = errors.New("telemetry feed malformed")
	ErrEpochNotFound       = errors.New("epoch not found")
	ErrNoRecordNearNow     = errors.New("no state vector near the current time")
	ErrBadArgument         = errors.New("bad argument")
	ErrMalformedRecord     = errors.New("malformed state vector record")
	ErrResolverTimeout     = errors.New("address resolver timed out")
	ErrResolverUnavailable = errors.New("address resolver unavailable")
)

// RecordError identifies the record and field that failed to parse.
//
// It matches ErrMalformedRecord with errors.Is; the underlying parse error (if
// any) is reachable through errors.Unwrap as well.
type RecordError struct {
	Index int
	Epoch string
	Field string
	cause error
}

func (e *RecordError) Error() string {
	msg := fmt.Sprintf("record %d", e.Index)
	if e.Epoch != "" {
		msg += fmt.Sprintf(" (epoch %q)", e.Epoch)
	}
	msg += fmt.Sprintf(": field %s", e.Field)
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *RecordError) Unwrap() []error {
	if e.cause == nil {
		return []error{ErrMalformedRecord}
	}
	return []error{ErrMalformedRecord, e.cause}
}

var kinds = []struct {
	err  error
	name string
}{
	{ErrNoData, "no_data"},
	{ErrEpochNotFound, "epoch_not_found"},
	{ErrNoRecordNearNow, "no_record_near_now"},
	{ErrBadArgument, "bad_argument"},
	{ErrFeedMalformed, "feed_malformed"},
	{ErrFeedUnavailable, "feed_unavailable"},
	{ErrMalformedRecord, "malformed_record"},
	{ErrResolverTimeout, "resolver_timeout"},
	{ErrResolverUnavailable, "resolver_unavailable"},
}

// Kind names the taxonomy entry err belongs to: "" for nil, "internal" when
// it matches none.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "internal"
}
