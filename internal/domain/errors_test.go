package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	recordErr := &RecordError{Index: 3, Field: FieldX, cause: errors.New("bad float")}

	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrNoData, "no_data"},
		{fmt.Errorf("lookup: %w", ErrEpochNotFound), "epoch_not_found"},
		{ErrNoRecordNearNow, "no_record_near_now"},
		{fmt.Errorf("%w: limit", ErrBadArgument), "bad_argument"},
		// A malformed record inside a load is reported as a malformed feed.
		{fmt.Errorf("%w: %w", ErrFeedMalformed, recordErr), "feed_malformed"},
		{recordErr, "malformed_record"},
		{fmt.Errorf("%w: dial", ErrFeedUnavailable), "feed_unavailable"},
		{ErrResolverTimeout, "resolver_timeout"},
		{errors.New("boom"), "internal"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Kind(tt.err), "%v", tt.err)
	}
}

func TestRecordError(t *testing.T) {
	err := &RecordError{Index: 2, Epoch: "2023-063T12:08:00.000Z", Field: FieldYDot, cause: errors.New("not finite")}

	assert.ErrorIs(t, err, ErrMalformedRecord)
	assert.Equal(t, `record 2 (epoch "2023-063T12:08:00.000Z"): field Y_DOT: not finite`, err.Error())
}
