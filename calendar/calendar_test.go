package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeekend(t *testing.T) {
	t.Parallel()

	cal := US{}

	reason, ok := cal.Holiday(Date(2018, time.June, 2)) // Saturday
	assert.True(t, ok)
	assert.Equal(t, "Weekend (Saturday)", reason)

	reason, ok = cal.Holiday(Date(2018, time.June, 3)) // Sunday
	assert.True(t, ok)
	assert.Equal(t, "Weekend (Sunday)", reason)

	_, ok = cal.Holiday(Date(2018, time.June, 4)) // Monday
	assert.False(t, ok)
}

func TestFixedHolidays(t *testing.T) {
	t.Parallel()

	cal := US{}

	cases := []struct {
		date time.Time
		name string
	}{
		{Date(2018, time.January, 1), "New Year's Day"},
		{Date(2018, time.July, 4), "Independence Day"},
		{Date(2016, time.December, 25), "Weekend (Sunday)"}, // unobserved: weekend wins
		{Date(2017, time.December, 25), "Christmas Day"},
	}

	for _, c := range cases {
		reason, ok := cal.Holiday(c.date)
		assert.True(t, ok, c.date)
		assert.Equal(t, c.name, reason)
	}
}

func TestFloatingHolidays(t *testing.T) {
	t.Parallel()

	cal := US{}

	cases := []struct {
		date time.Time
		name string
	}{
		{Date(2018, time.January, 15), "Martin Luther King Jr. Day"},
		{Date(2018, time.February, 19), "Washington's Birthday"},
		{Date(2018, time.May, 28), "Memorial Day"},
		{Date(2018, time.September, 3), "Labor Day"},
		{Date(2018, time.November, 22), "Thanksgiving"},
	}

	for _, c := range cases {
		reason, ok := cal.Holiday(c.date)
		assert.True(t, ok, c.date)
		assert.Equal(t, c.name, reason)
	}

	// No MLK day before 1986.
	_, ok := cal.Holiday(Date(1985, time.January, 21))
	assert.False(t, ok)
}

func TestNextTradingDay(t *testing.T) {
	t.Parallel()

	cal := US{}

	// Friday -> Monday
	assert.Equal(t, Date(2018, time.June, 4), NextTradingDay(cal, Date(2018, time.June, 1)))

	// Friday before Memorial Day -> Tuesday
	assert.Equal(t, Date(2018, time.May, 29), NextTradingDay(cal, Date(2018, time.May, 25)))
}

func TestRollForward(t *testing.T) {
	t.Parallel()

	cal := US{}

	// Trading day stays put.
	d := Date(2018, time.June, 4)
	assert.Equal(t, d, RollForward(cal, d))

	// New Year 2018 is a Monday holiday -> Tuesday.
	assert.Equal(t, Date(2018, time.January, 2), RollForward(cal, Date(2018, time.January, 1)))
}

func TestMidnight(t *testing.T) {
	t.Parallel()

	ts := time.Date(2018, time.June, 4, 15, 30, 12, 99, time.UTC)
	assert.Equal(t, Date(2018, time.June, 4), Midnight(ts))
}
