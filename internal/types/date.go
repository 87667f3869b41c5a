package types

import (
	"time"
)

// Calendar dates in this package are time.Time values at midnight UTC. They
// carry no zone meaning of their own; StartOfDayIn and EndOfDayIn turn them
// into instants in a given location.

// Date returns the calendar date year-month-day
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf returns the calendar date of t as observed in t's own location
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return Date(y, m, d)
}

// DateIn returns the calendar date of instant t as observed in loc
func DateIn(t time.Time, loc *time.Location) time.Time {
	return DateOf(t.In(loc))
}

// DaysInMonth returns the number of days of the given month
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// BuildDate returns a valid calendar date for an anniversary day that may not
// exist in the target month. A day beyond the end of the month is clamped to
// the last day of that month. A day of zero means the last day of the previous
// month, rolling the year back when month is January.
func BuildDate(year int, month time.Month, day int) time.Time {
	for month < time.January {
		month += 12
		year--
	}
	for month > time.December {
		month -= 12
		year++
	}

	if day == 0 {
		day = 31
		month--
		if month < time.January {
			month = time.December
			year--
		}
	}

	if last := DaysInMonth(year, month); day > last {
		day = last
	}

	return Date(year, month, day)
}

// AddClampedDate adds years, months and days to t. Adding months never
// overflows into the following month: Jan 31 + 1 month is Feb 28 (or 29).
func AddClampedDate(t time.Time, years, months, days int) time.Time {
	y, m, d := t.Date()
	h, min, sec := t.Clock()

	// Calculate the proposed year and month
	newY := y + years
	newM := time.Month(int(m) + months)

	// If we move beyond December, it adjusts correctly,
	// for example adding 2 months to November will land on January next year.
	for newM > 12 {
		newM -= 12
		newY++
	}
	for newM < 1 {
		newM += 12
		newY--
	}

	// Clamp to the last valid day of the new month
	if lastDay := DaysInMonth(newY, newM); d > lastDay {
		d = lastDay
	}

	// Days are applied after the clamp so they can cross month boundaries
	return time.Date(newY, newM, d+days, h, min, sec, t.Nanosecond(), t.Location())
}

// BeginningOfWeek returns the Monday of the week containing date
func BeginningOfWeek(date time.Time) time.Time {
	offset := (int(date.Weekday()) + 6) % 7
	return DateOf(date).AddDate(0, 0, -offset)
}

// DaysBetween returns the number of whole days from from to to
func DaysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)).Hours() / 24)
}

// StartOfDayIn returns the instant, in UTC, at which date begins in loc
func StartOfDayIn(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc).UTC()
}

// EndOfDayIn returns the last instant, in UTC, of date in loc
func EndOfDayIn(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), loc).UTC()
}
