// Package calendar answers one question for the simulation: is a given
// date a US trading day, and if not, what is the next one.
package calendar

import "time"

// Calendar reports non-trading days. The simulation and the event
// validator only ever consult this interface.
type Calendar interface {
	// Holiday returns a human-readable reason when t falls on a
	// weekend or exchange holiday.
	Holiday(t time.Time) (reason string, ok bool)
}

// US is the NYSE calendar: weekends plus the fixed US exchange
// holidays, unobserved (a holiday falling on a weekend is already a
// weekend).
type US struct{}

func (US) Holiday(t time.Time) (string, bool) {
	switch t.Weekday() {
	case time.Saturday:
		return "Weekend (Saturday)", true
	case time.Sunday:
		return "Weekend (Sunday)", true
	}
	if name, ok := usHoliday(t); ok {
		return name, true
	}
	return "", false
}

// Date builds a normalized UTC date key. All bar and event dates in
// this module are midnight UTC.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Midnight truncates t to its UTC date.
func Midnight(t time.Time) time.Time {
	t = t.UTC()
	return Date(t.Year(), t.Month(), t.Day())
}

// NextTradingDay advances one calendar day at a time until the day is
// neither a weekend nor a holiday.
func NextTradingDay(cal Calendar, from time.Time) time.Time {
	d := from
	for {
		d = d.AddDate(0, 0, 1)
		if _, ok := cal.Holiday(d); !ok {
			return d
		}
	}
}

// RollForward returns t itself when it is a trading day, otherwise the
// next trading day after it.
func RollForward(cal Calendar, t time.Time) time.Time {
	if _, ok := cal.Holiday(t); ok {
		return NextTradingDay(cal, t)
	}
	return t
}
