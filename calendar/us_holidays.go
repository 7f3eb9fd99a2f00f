package calendar

import "time"

// usHoliday implements the federal holiday list, unobserved: a holiday
// that lands on a weekend is not shifted to the nearest weekday. This
// matches the calendar the historical event files were filtered with.
func usHoliday(t time.Time) (string, bool) {
	y, m, d := t.Year(), t.Month(), t.Day()

	switch {
	case m == time.January && d == 1:
		return "New Year's Day", true
	case m == time.July && d == 4:
		return "Independence Day", true
	case m == time.November && d == 11:
		return "Veterans Day", true
	case m == time.December && d == 25:
		return "Christmas Day", true
	}

	switch {
	case m == time.January && y >= 1986 && d == nthWeekday(y, time.January, time.Monday, 3):
		return "Martin Luther King Jr. Day", true
	case m == time.February && d == nthWeekday(y, time.February, time.Monday, 3):
		return "Washington's Birthday", true
	case m == time.May && d == lastWeekday(y, time.May, time.Monday):
		return "Memorial Day", true
	case m == time.September && d == nthWeekday(y, time.September, time.Monday, 1):
		return "Labor Day", true
	case m == time.October && d == nthWeekday(y, time.October, time.Monday, 2):
		return "Columbus Day", true
	case m == time.November && d == nthWeekday(y, time.November, time.Thursday, 4):
		return "Thanksgiving", true
	}

	return "", false
}

// nthWeekday returns the day-of-month of the nth given weekday.
func nthWeekday(year int, month time.Month, wd time.Weekday, n int) int {
	first := Date(year, month, 1)
	offset := (int(wd) - int(first.Weekday()) + 7) % 7
	return 1 + offset + (n-1)*7
}

// lastWeekday returns the day-of-month of the last given weekday.
func lastWeekday(year int, month time.Month, wd time.Weekday) int {
	last := Date(year, month+1, 1).AddDate(0, 0, -1)
	offset := (int(last.Weekday()) - int(wd) + 7) % 7
	return last.Day() - offset
}
