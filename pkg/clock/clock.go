// Package clock provides the calendar-day arithmetic used for purchase and
// reminder dates. Days are carried as "YYYY-MM-DD" strings so they compare
// lexicographically in every SQL driver.
package clock

import (
	"fmt"
	"time"
)

const DayLayout = "2006-01-02"

// Clock supplies the current instant. Services take one so tests can pin "today".
type Clock interface {
	Now() time.Time
}

// System reads the wall clock in a fixed location.
type System struct {
	Location *time.Location
}

func (s System) Now() time.Time {
	if s.Location == nil {
		return time.Now()
	}
	return time.Now().In(s.Location)
}

// Fixed always reports the same instant.
type Fixed struct {
	At time.Time
}

func (f Fixed) Now() time.Time { return f.At }

// Today formats the clock's current calendar day.
func Today(c Clock) string {
	return DayOf(c.Now())
}

// DayOf formats t as a calendar day in t's own location.
func DayOf(t time.Time) string {
	return t.Format(DayLayout)
}

// ParseDay parses a calendar day as midnight UTC.
func ParseDay(day string) (time.Time, error) {
	t, err := time.Parse(DayLayout, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q: %w", day, err)
	}
	return t, nil
}

// DaysBetween returns to - from in whole calendar days.
func DaysBetween(from, to string) (int, error) {
	start, err := ParseDay(from)
	if err != nil {
		return 0, err
	}
	end, err := ParseDay(to)
	if err != nil {
		return 0, err
	}
	return int(end.Sub(start).Hours() / 24), nil
}

// AddDays shifts day by n calendar days (n may be negative).
func AddDays(day string, n int) (string, error) {
	t, err := ParseDay(day)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(DayLayout), nil
}

// ISOWeek labels the week containing t, e.g. "2025-W41".
func ISOWeek(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
