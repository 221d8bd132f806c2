package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openshelf/circulation-engine-go/circulation/core"
)

func Test_StartOfDay_TruncatesToMidnightUTC(t *testing.T) {
	// arrange
	ts := time.Date(2025, 3, 14, 17, 45, 12, 999, time.UTC)

	// act
	result := core.StartOfDay(ts)

	// assert
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), result, "Expected midnight of the same day")
}

func Test_StartOfDay_ConvertsOtherZonesToUTCFirst(t *testing.T) {
	// arrange
	zone := time.FixedZone("UTC+5", 5*60*60)
	ts := time.Date(2025, 3, 14, 2, 30, 0, 0, zone) // 2025-03-13 21:30 UTC

	// act
	result := core.StartOfDay(ts)

	// assert
	assert.Equal(t, time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC), result, "Expected midnight of the UTC day")
}

func Test_WholeDaysBetween(t *testing.T) {
	tests := []struct {
		name     string
		from     time.Time
		to       time.Time
		expected int
	}{
		{
			name:     "same day ignores time of day",
			from:     time.Date(2025, 3, 14, 1, 0, 0, 0, time.UTC),
			to:       time.Date(2025, 3, 14, 23, 59, 0, 0, time.UTC),
			expected: 0,
		},
		{
			name:     "next day counts one even just past midnight",
			from:     time.Date(2025, 3, 14, 23, 0, 0, 0, time.UTC),
			to:       time.Date(2025, 3, 15, 0, 30, 0, 0, time.UTC),
			expected: 1,
		},
		{
			name:     "three full days",
			from:     time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC),
			to:       time.Date(2025, 3, 17, 8, 0, 0, 0, time.UTC),
			expected: 3,
		},
		{
			name:     "negative when to lies earlier",
			from:     time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
			to:       time.Date(2025, 3, 12, 23, 0, 0, 0, time.UTC),
			expected: -2,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// act
			result := core.WholeDaysBetween(tc.from, tc.to)

			// assert
			assert.Equal(t, tc.expected, result)
		})
	}
}

func Test_AddDays_ShiftsByCalendarDays(t *testing.T) {
	// arrange
	ts := time.Date(2025, 2, 27, 10, 0, 0, 0, time.UTC)

	// act
	result := core.AddDays(ts, 2)

	// assert
	assert.Equal(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), result, "Expected rollover into March")
}

func Test_ToOccurredAt_NormalizesToUTCMicroseconds(t *testing.T) {
	// arrange
	zone := time.FixedZone("UTC-3", -3*60*60)
	ts := time.Date(2025, 3, 14, 9, 0, 0, 1999, zone)

	// act
	result := core.ToOccurredAt(ts)

	// assert
	assert.Equal(t, time.UTC, result.Location(), "Expected UTC location")
	assert.Equal(t, time.Date(2025, 3, 14, 12, 0, 0, 1000, time.UTC), result, "Expected microsecond truncation")
}
