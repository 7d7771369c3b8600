package selector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Skipf("time zone %s unavailable: %v", name, err)
	}
	return loc
}

func TestSelect(t *testing.T) {
	epoch := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		today  time.Time
		length int
		want   int
	}{
		{"epoch day", epoch, 10, 0},
		{"day 23 of 10", epoch.AddDate(0, 0, 23), 10, 3},
		{"late in the day", time.Date(2025, 1, 24, 23, 59, 59, 0, time.UTC), 10, 3},
		{"single quote", epoch.AddDate(0, 0, 400), 1, 0},
		{"one day before epoch", epoch.AddDate(0, 0, -1), 10, 9},
		{"across a year", time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC), 100, 65},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(tt.today, epoch, time.UTC, tt.length)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelect_InvalidCorpus(t *testing.T) {
	_, err := Select(time.Now(), time.Now(), time.UTC, 0)
	assert.ErrorIs(t, err, ErrInvalidCorpus)
}

func TestSelect_RangeAndDeterminism(t *testing.T) {
	epoch := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, length := range []int{1, 2, 7, 10, 365} {
		for offset := -800; offset <= 800; offset += 7 {
			today := epoch.AddDate(0, 0, offset).Add(5 * time.Hour)
			first, err := Select(today, epoch, time.UTC, length)
			require.NoError(t, err)
			second, err := Select(today, epoch, time.UTC, length)
			require.NoError(t, err)

			assert.GreaterOrEqual(t, first, 0)
			assert.Less(t, first, length)
			assert.Equal(t, first, second)
		}
	}
}

func TestSelect_Cyclic(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	epoch := time.Date(2025, 1, 1, 0, 0, 0, 0, loc)

	for _, length := range []int{3, 10, 31} {
		for offset := 0; offset < 120; offset++ {
			a := time.Date(2025, 1, 1+offset, 9, 0, 0, 0, loc)
			b := time.Date(2025, 1, 1+offset+length, 9, 0, 0, 0, loc)

			ia, err := Select(a, epoch, loc, length)
			require.NoError(t, err)
			ib, err := Select(b, epoch, loc, length)
			require.NoError(t, err)
			assert.Equal(t, ia, ib, "offset %d length %d", offset, length)
		}
	}
}

func TestSelect_DSTDoesNotDrift(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	epoch := time.Date(2025, 1, 1, 0, 0, 0, 0, loc)

	// 2025-03-09 is 23h long and 2025-11-02 is 25h long in New York.
	// Consecutive days must advance the index by exactly one.
	prev := -1
	for d := time.Date(2025, 3, 1, 0, 30, 0, 0, loc); d.Before(time.Date(2025, 11, 10, 0, 0, 0, 0, loc)); d = d.AddDate(0, 0, 1) {
		idx, err := Select(d, epoch, loc, 1000)
		require.NoError(t, err)
		if prev >= 0 {
			assert.Equal(t, prev+1, idx, "day %s", d.Format(DateLayout))
		}
		prev = idx
	}
}

func TestSelect_ZoneNotMachineLocal(t *testing.T) {
	tokyo := mustLoc(t, "Asia/Tokyo")
	epoch := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// 2025-01-10 20:00 UTC is already 2025-01-11 in Tokyo.
	instant := time.Date(2025, 1, 10, 20, 0, 0, 0, time.UTC)

	utcIdx, err := Select(instant, epoch, time.UTC, 100)
	require.NoError(t, err)
	tokyoIdx, err := Select(instant, epoch, tokyo, 100)
	require.NoError(t, err)

	assert.Equal(t, 9, utcIdx)
	assert.Equal(t, 10, tokyoIdx)
}

func TestSelector(t *testing.T) {
	epoch := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := New(epoch, nil)

	day, err := s.ParseDay("2025-01-24")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-24", s.Day(day))

	idx, err := s.Select(day, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, idx)

	_, err = s.ParseDay("24/01/2025")
	assert.Error(t, err)

	next := s.NextMidnight(time.Date(2025, 1, 24, 15, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 1, 25, 0, 0, 0, 0, time.UTC), next)
}

func TestDaysBetween(t *testing.T) {
	epoch := time.Date(2025, 1, 1, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, int64(0), DaysBetween(time.Date(2025, 1, 1, 1, 0, 0, 0, time.UTC), epoch, time.UTC))
	assert.Equal(t, int64(1), DaysBetween(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), epoch, time.UTC))
	assert.Equal(t, int64(-1), DaysBetween(time.Date(2024, 12, 31, 12, 0, 0, 0, time.UTC), epoch, time.UTC))
}
