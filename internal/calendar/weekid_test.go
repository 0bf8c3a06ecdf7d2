package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekIDFor_MidYear(t *testing.T) {
	// Wednesday 2025-03-12 is in ISO week 11.
	d := time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-W11", WeekIDFor(d))
}

func TestWeekIDFor_DecemberRollsForward(t *testing.T) {
	// Monday 2024-12-30 belongs to ISO week 1 of 2025.
	d := time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-W01", WeekIDFor(d))
}

func TestWeekIDFor_JanuaryRollsBackward(t *testing.T) {
	// Friday 2021-01-01 belongs to ISO week 53 of 2020.
	d := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2020-W53", WeekIDFor(d))
}

func TestBounds_ContainsSourceDate(t *testing.T) {
	dates := []time.Time{
		time.Date(2024, 12, 30, 12, 0, 0, 0, time.UTC),
		time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC), // a Sunday
		time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),    // a Monday
	}
	for _, d := range dates {
		start, end, err := Bounds(WeekIDFor(d))
		require.NoError(t, err)
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		assert.False(t, day.Before(start), "%v before start %v", d, start)
		assert.False(t, day.After(end), "%v after end %v", d, end)
	}
}

func TestBounds_MondayToSunday(t *testing.T) {
	start, end, err := Bounds("2025-W11")
	require.NoError(t, err)
	assert.Equal(t, time.Monday, start.Weekday())
	assert.Equal(t, time.Sunday, end.Weekday())
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC), end)
}

func TestParse_RejectsMalformed(t *testing.T) {
	for _, id := range []string{"", "2025W11", "2025-w11", "25-W11", "2025-W1", "2025-W00", "2025-W54", "2025-W53", "garbage!"} {
		_, _, err := Parse(id)
		assert.Error(t, err, "expected %q to be rejected", id)
	}
}

func TestParse_Accepts53rdWeekWhenYearHasOne(t *testing.T) {
	y, w, err := Parse("2020-W53")
	require.NoError(t, err)
	assert.Equal(t, 2020, y)
	assert.Equal(t, 53, w)
}

func TestWeeksInYear(t *testing.T) {
	assert.Equal(t, 53, WeeksInYear(2020)) // Dec 31 2020 is a Thursday
	assert.Equal(t, 53, WeeksInYear(2015)) // Jan 1 2015 is a Thursday
	assert.Equal(t, 52, WeeksInYear(2021))
	assert.Equal(t, 52, WeeksInYear(2025))
}

func TestPrevious_CrossesYearBoundary(t *testing.T) {
	prev, err := Previous("2025-W01")
	require.NoError(t, err)
	assert.Equal(t, "2024-W52", prev)

	prev, err = Previous("2021-W01")
	require.NoError(t, err)
	assert.Equal(t, "2020-W53", prev)
}

func TestAddWeeks(t *testing.T) {
	next, err := AddWeeks("2020-W52", 1)
	require.NoError(t, err)
	assert.Equal(t, "2020-W53", next)

	next, err = AddWeeks("2020-W53", 1)
	require.NoError(t, err)
	assert.Equal(t, "2021-W01", next)

	back, err := AddWeeks("2025-W10", -10)
	require.NoError(t, err)
	assert.Equal(t, "2024-W52", back)
}

func TestCompare_ConsecutiveWeeksOrdered(t *testing.T) {
	id := "2024-W40"
	for i := 0; i < 30; i++ {
		next, err := AddWeeks(id, 1)
		require.NoError(t, err)
		assert.Equal(t, -1, Compare(id, next), "%s should sort before %s", id, next)
		assert.True(t, IsAfter(next, id))
		assert.True(t, IsBeforeOrEqual(id, next))
		id = next
	}
	assert.Equal(t, 0, Compare(id, id))
	assert.True(t, IsBeforeOrEqual(id, id))
}
