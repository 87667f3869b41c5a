package period

import (
	"time"

	ierr "github.com/flexprice/invoicer/internal/errors"
	"github.com/flexprice/invoicer/internal/types"
)

// cadence holds the calendar arithmetic of one billing interval. Every date
// it takes and returns is a calendar date as built by types.Date.
type cadence struct {
	interval types.BillingInterval

	// periodStart returns the first day of the period containing date
	periodStart func(date time.Time) time.Time
	// periodEnd returns the last day of the period beginning on start
	periodEnd func(start time.Time) time.Time
}

// newCadence selects the date arithmetic for interval. Anniversary periods
// are anchored on the calendar date of anchor.
func newCadence(interval types.BillingInterval, calendar bool, anchor time.Time) (cadence, error) {
	if err := interval.Validate(); err != nil {
		return cadence{}, err
	}

	c := cadence{interval: interval}
	switch interval {
	case types.BillingIntervalWeekly:
		c.periodEnd = weekEnd
		if calendar {
			c.periodStart = types.BeginningOfWeek
		} else {
			c.periodStart = weekAnniversaryStart(anchor.Weekday())
		}
	case types.BillingIntervalMonthly:
		if calendar {
			c.periodStart = monthStart
			c.periodEnd = monthEnd
		} else {
			c.periodStart = monthAnniversaryStart(anchor.Day())
			c.periodEnd = monthAnniversaryEnd(anchor.Day())
		}
	case types.BillingIntervalYearly:
		if calendar {
			c.periodStart = yearStart
			c.periodEnd = yearEnd
		} else {
			c.periodStart = yearAnniversaryStart(anchor.Month(), anchor.Day())
			c.periodEnd = yearAnniversaryEnd(anchor.Month(), anchor.Day())
		}
	default:
		return cadence{}, ierr.NewError("unsupported billing interval").
			WithHintf("Plan interval %q is not supported", interval).
			Mark(ierr.ErrConfiguration)
	}
	return c, nil
}

// durationOf returns the day count of the period containing date
func (c cadence) durationOf(date time.Time) int {
	start := c.periodStart(date)
	return types.DaysBetween(start, c.periodEnd(start)) + 1
}

func weekEnd(start time.Time) time.Time {
	return start.AddDate(0, 0, 6)
}

func weekAnniversaryStart(weekday time.Weekday) func(time.Time) time.Time {
	return func(date time.Time) time.Time {
		offset := (int(date.Weekday()) - int(weekday) + 7) % 7
		return types.DateOf(date).AddDate(0, 0, -offset)
	}
}

func monthStart(date time.Time) time.Time {
	return types.Date(date.Year(), date.Month(), 1)
}

func monthEnd(start time.Time) time.Time {
	return types.Date(start.Year(), start.Month(), types.DaysInMonth(start.Year(), start.Month()))
}

func monthAnniversaryStart(day int) func(time.Time) time.Time {
	return func(date time.Time) time.Time {
		date = types.DateOf(date)
		start := types.BuildDate(date.Year(), date.Month(), day)
		if start.After(date) {
			start = types.BuildDate(date.Year(), date.Month()-1, day)
		}
		return start
	}
}

// monthAnniversaryEnd returns the day before the next anniversary. A next
// anniversary on the 1st yields day zero, i.e. the last day of start's month.
func monthAnniversaryEnd(day int) func(time.Time) time.Time {
	return func(start time.Time) time.Time {
		next := types.BuildDate(start.Year(), start.Month()+1, day)
		return types.BuildDate(next.Year(), next.Month(), next.Day()-1)
	}
}

func yearStart(date time.Time) time.Time {
	return types.Date(date.Year(), time.January, 1)
}

func yearEnd(start time.Time) time.Time {
	return types.Date(start.Year(), time.December, 31)
}

func yearAnniversaryStart(month time.Month, day int) func(time.Time) time.Time {
	return func(date time.Time) time.Time {
		date = types.DateOf(date)
		start := types.BuildDate(date.Year(), month, day)
		if start.After(date) {
			start = types.BuildDate(date.Year()-1, month, day)
		}
		return start
	}
}

func yearAnniversaryEnd(month time.Month, day int) func(time.Time) time.Time {
	return func(start time.Time) time.Time {
		next := types.BuildDate(start.Year()+1, month, day)
		return types.BuildDate(next.Year(), next.Month(), next.Day()-1)
	}
}
