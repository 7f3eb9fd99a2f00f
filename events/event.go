// Package events models corporate-earnings surprise events, validates
// them against the trading calendar and bar history, and ingests them
// from the various report feeds.
package events

import (
	"math"
	"time"
)

// Timing is when the report hits relative to the session.
type Timing int8

const (
	BMO Timing = iota // before market open
	AMC               // after market close
)

func (t Timing) String() string {
	if t == BMO {
		return "BMO"
	}
	return "AMC"
}

// ParseTiming maps the feed's timing column. Anything but BMO/AMC is a
// malformed record.
func ParseTiming(s string) (Timing, bool) {
	switch s {
	case "BMO":
		return BMO, true
	case "AMC":
		return AMC, true
	}
	return 0, false
}

// Type tags which surprise figures an event carries.
type Type int8

const (
	EPSOnly Type = iota
	EPSAndRev
)

func (t Type) String() string {
	if t == EPSOnly {
		return "eps_only"
	}
	return "eps_rev"
}

// Event is one earnings report in canonical shape. The consensus and
// actual figures are pointers because feeds routinely omit them; a nil
// figure makes the event invalid for its type.
//
// EntryDate and NextDate are filled by the Validator: EntryDate is the
// trading day a position could open, NextDate the following trading
// day (zero when no usable bar exists there, which only restricts
// next-day-exit entries).
type Event struct {
	Ticker string
	Date   time.Time
	Timing Timing
	Type   Type

	EPSCon *float64
	EPSAct *float64
	RevCon *float64
	RevAct *float64

	EntryDate time.Time
	NextDate  time.Time
}

// EPSChange is the relative earnings surprise (act-con)/|con|. It is
// undefined when either figure is missing or zero.
func (e *Event) EPSChange() (float64, bool) {
	return change(e.EPSCon, e.EPSAct)
}

// RevChange is the relative revenue surprise.
func (e *Event) RevChange() (float64, bool) {
	return change(e.RevCon, e.RevAct)
}

func change(con, act *float64) (float64, bool) {
	if con == nil || act == nil || *con == 0 || *act == 0 {
		return 0, false
	}
	return (*act - *con) / math.Abs(*con), true
}

// Valid reports whether every figure the event's type needs is present.
func (e *Event) Valid() bool {
	switch e.Type {
	case EPSOnly:
		return e.EPSCon != nil && e.EPSAct != nil
	case EPSAndRev:
		return e.EPSCon != nil && e.EPSAct != nil && e.RevCon != nil && e.RevAct != nil
	}
	return false
}

// HasNextDate reports whether a usable bar exists on the trading day
// after the entry date.
func (e *Event) HasNextDate() bool { return !e.NextDate.IsZero() }

// Buckets groups validated events by their entry date.
type Buckets map[time.Time][]*Event

// On returns the events entering on the given (midnight UTC) date.
func (b Buckets) On(date time.Time) []*Event { return b[date] }

func (b Buckets) add(e *Event) { b[e.EntryDate] = append(b[e.EntryDate], e) }

// Len counts all bucketed events.
func (b Buckets) Len() int {
	n := 0
	for _, evs := range b {
		n += len(evs)
	}
	return n
}
