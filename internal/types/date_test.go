package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var (
	la  = mustLoad("America/Los_Angeles")
	ist = time.FixedZone("IST", 5*60*60+30*60)
)

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func TestBuildDate(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month time.Month
		day   int
		want  time.Time
	}{
		{
			name:  "existing day",
			year:  2022,
			month: time.March,
			day:   15,
			want:  Date(2022, time.March, 15),
		},
		{
			name:  "day 31 in a 30 day month",
			year:  2022,
			month: time.April,
			day:   31,
			want:  Date(2022, time.April, 30),
		},
		{
			name:  "day 31 in february of a non leap year",
			year:  2023,
			month: time.February,
			day:   31,
			want:  Date(2023, time.February, 28),
		},
		{
			name:  "day 31 in february of a leap year",
			year:  2024,
			month: time.February,
			day:   31,
			want:  Date(2024, time.February, 29),
		},
		{
			name:  "day 29 in february of a non leap year",
			year:  2023,
			month: time.February,
			day:   29,
			want:  Date(2023, time.February, 28),
		},
		{
			name:  "zero day rolls back to the end of the previous month",
			year:  2022,
			month: time.May,
			day:   0,
			want:  Date(2022, time.April, 30),
		},
		{
			name:  "zero day in march lands on the end of february",
			year:  2024,
			month: time.March,
			day:   0,
			want:  Date(2024, time.February, 29),
		},
		{
			name:  "zero day in january rolls back the year",
			year:  2023,
			month: time.January,
			day:   0,
			want:  Date(2022, time.December, 31),
		},
		{
			name:  "month overflow moves to the next year",
			year:  2022,
			month: time.Month(13),
			day:   31,
			want:  Date(2023, time.January, 31),
		},
		{
			name:  "month underflow moves to the previous year",
			year:  2022,
			month: time.Month(0),
			day:   15,
			want:  Date(2021, time.December, 15),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildDate(tt.year, tt.month, tt.day)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func TestAddClampedDate(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		years  int
		months int
		days   int
		want   time.Time
	}{
		{
			name:   "jan 31 plus one month",
			start:  Date(2023, time.January, 31),
			months: 1,
			want:   Date(2023, time.February, 28),
		},
		{
			name:   "jan 31 plus one month in a leap year",
			start:  Date(2024, time.January, 31),
			months: 1,
			want:   Date(2024, time.February, 29),
		},
		{
			name:   "mar 31 minus one month",
			start:  Date(2022, time.March, 31),
			months: -1,
			want:   Date(2022, time.February, 28),
		},
		{
			name:   "jan 15 minus one month crosses the year",
			start:  Date(2022, time.January, 15),
			months: -1,
			want:   Date(2021, time.December, 15),
		},
		{
			name:  "feb 29 plus one year",
			start: Date(2024, time.February, 29),
			years: 1,
			want:  Date(2025, time.February, 28),
		},
		{
			name:  "minus one day crosses the month",
			start: Date(2022, time.March, 1),
			days:  -1,
			want:  Date(2022, time.February, 28),
		},
		{
			name:   "keeps the clock and location",
			start:  time.Date(2024, time.January, 31, 23, 30, 0, 0, ist),
			months: 1,
			want:   time.Date(2024, time.February, 29, 23, 30, 0, 0, ist),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddClampedDate(tt.start, tt.years, tt.months, tt.days)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func TestBeginningOfWeek(t *testing.T) {
	// 2022-03-10 is a Thursday
	assert.Equal(t, Date(2022, time.March, 7), BeginningOfWeek(Date(2022, time.March, 10)))
	assert.Equal(t, Date(2022, time.March, 7), BeginningOfWeek(Date(2022, time.March, 7)))
	// Sunday belongs to the week that started the previous Monday
	assert.Equal(t, Date(2022, time.March, 7), BeginningOfWeek(Date(2022, time.March, 13)))
}

func TestDayBoundariesInLocation(t *testing.T) {
	day := Date(2022, time.February, 15)

	start := StartOfDayIn(day, la)
	assert.Equal(t, time.Date(2022, time.February, 15, 8, 0, 0, 0, time.UTC), start)

	end := EndOfDayIn(day, la)
	assert.Equal(t, time.Date(2022, time.February, 16, 7, 59, 59, 999999999, time.UTC), end)
	assert.Equal(t, time.UTC, end.Location())

	// daylight saving time started on 2022-03-13 in Los Angeles
	assert.Equal(t,
		time.Date(2022, time.March, 14, 7, 0, 0, 0, time.UTC),
		StartOfDayIn(Date(2022, time.March, 14), la),
	)
}

func TestDateIn(t *testing.T) {
	instant := time.Date(2022, time.March, 10, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, Date(2022, time.March, 9), DateIn(instant, la))
	assert.Equal(t, Date(2022, time.March, 10), DateIn(instant, time.UTC))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 28, DaysBetween(Date(2023, time.February, 1), Date(2023, time.March, 1)))
	assert.Equal(t, 366, DaysBetween(Date(2024, time.January, 1), Date(2025, time.January, 1)))
	assert.Equal(t, 0, DaysBetween(Date(2024, time.January, 1), Date(2024, time.January, 1)))
}
