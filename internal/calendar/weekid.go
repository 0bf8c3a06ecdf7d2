// Package calendar converts between dates and canonical ISO-8601 week
// identifiers of the form "2025-W07". Identifiers are zero-padded so their
// lexical order matches chronological order.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// WeekIDFor returns the canonical week identifier for the given date.
// Weeks start Monday; week 1 is the week containing the year's first
// Thursday, so late-December dates may map into (year+1)-W01 and
// early-January dates into (year-1)-Wnn.
func WeekIDFor(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// Parse validates an identifier and returns its ISO year and week number.
// Malformed identifiers are a caller error and are rejected, never coerced.
func Parse(id string) (year, week int, err error) {
	if len(id) != 8 || id[4] != '-' || id[5] != 'W' {
		return 0, 0, fmt.Errorf("malformed week identifier %q", id)
	}
	for _, i := range []int{0, 1, 2, 3, 6, 7} {
		if id[i] < '0' || id[i] > '9' {
			return 0, 0, fmt.Errorf("malformed week identifier %q", id)
		}
	}
	if _, err := fmt.Sscanf(id, "%4d-W%2d", &year, &week); err != nil {
		return 0, 0, fmt.Errorf("malformed week identifier %q", id)
	}
	if week < 1 || week > WeeksInYear(year) {
		return 0, 0, fmt.Errorf("week identifier %q out of range for year %d", id, year)
	}
	return year, week, nil
}

// Bounds returns the Monday start and Sunday end of the identified week.
func Bounds(id string) (start, end time.Time, err error) {
	year, week, err := Parse(id)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start = mondayOfWeek1(year).AddDate(0, 0, 7*(week-1))
	end = start.AddDate(0, 0, 6)
	return start, end, nil
}

// Previous returns the identifier of the week before id.
func Previous(id string) (string, error) {
	return AddWeeks(id, -1)
}

// AddWeeks returns the identifier n weeks after id (n may be negative).
func AddWeeks(id string, n int) (string, error) {
	start, _, err := Bounds(id)
	if err != nil {
		return "", err
	}
	return WeekIDFor(start.AddDate(0, 0, 7*n)), nil
}

// Compare orders two identifiers: -1 if a is before b, 0 if equal, 1 if after.
// Canonical identifiers are zero-padded, so lexical order is chronological.
func Compare(a, b string) int {
	return strings.Compare(a, b)
}

// IsAfter reports whether a falls strictly after b.
func IsAfter(a, b string) bool {
	return Compare(a, b) > 0
}

// IsBeforeOrEqual reports whether a falls on or before b.
func IsBeforeOrEqual(a, b string) bool {
	return Compare(a, b) <= 0
}

// WeeksInYear returns 52 or 53: a year has 53 ISO weeks when January 1 or
// December 31 falls on a Thursday.
func WeeksInYear(year int) int {
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	dec31 := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	if jan1.Weekday() == time.Thursday || dec31.Weekday() == time.Thursday {
		return 53
	}
	return 52
}

// mondayOfWeek1 returns the Monday of ISO week 1 for the given year.
// January 4 is always inside week 1.
func mondayOfWeek1(year int) time.Time {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := int(jan4.Weekday()+6) % 7 // Monday = 0
	return jan4.AddDate(0, 0, -offset)
}
