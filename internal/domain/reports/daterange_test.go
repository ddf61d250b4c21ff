package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restopos/internal/core/apperror"
)

func TestParseDateRange_SingleDay(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	p, err := ParseDateRange("2024-01-05", "2024-01-05", now, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), p.StartDate)
	assert.Equal(t, time.Date(2024, 1, 5, 23, 59, 59, 999_000_000, time.UTC), p.EndDate)
}

func TestParseDateRange_Defaults(t *testing.T) {
	now := time.Date(2024, 3, 31, 15, 4, 5, 0, time.UTC)

	p, err := ParseDateRange("", "", now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), p.StartDate)
	assert.Equal(t, time.Date(2024, 3, 31, 23, 59, 59, 999_000_000, time.UTC), p.EndDate)

	p, err = ParseDateRange("", "2024-02-10", now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC), p.StartDate)
}

func TestParseDateRange_RFC3339UsesReportLocation(t *testing.T) {
	loc := time.FixedZone("NPT", 5*3600+45*60)
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, loc)

	// 20:00 UTC on Jan 4 is already Jan 5 in a +05:45 zone.
	p, err := ParseDateRange("2024-01-04T20:00:00Z", "2024-01-05", now, loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, loc), p.StartDate)
	assert.Equal(t, time.Date(2024, 1, 5, 23, 59, 59, 999_000_000, loc), p.EndDate)
}

func TestParseDateRange_Errors(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name       string
		start, end string
	}{
		{"bad start", "05/01/2024", ""},
		{"bad end", "", "yesterday"},
		{"reversed", "2024-02-01", "2024-01-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDateRange(tt.start, tt.end, now, time.UTC)
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))
		})
	}
}
