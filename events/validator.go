package events

import (
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/earnings/calendar"
	"github.com/rustyeddy/earnings/market"
)

// Counters audits every way an event can be dropped, so data loss is
// never silent. The final report prints all of them.
type Counters struct {
	HolidayEvents int // announcement on weekend/holiday
	MissedBars    int // no bar at a required date
	ErrorBars     int // bar present but error-flagged
	InvalidEvents int // malformed or incomplete records
	ValidEvents   int
}

// Validator resolves a raw announcement into an actionable entry/exit
// date pair. Rejections are counted and logged, never fatal.
type Validator struct {
	Cal  calendar.Calendar
	Bars market.BarSource
	Log  *zap.SugaredLogger

	Counters Counters
}

// Validate fills EntryDate/NextDate and reports tradability.
//
// BMO reports trade on the announcement day itself; AMC reports trade
// on the next trading day. Either way the entry day must have a usable
// bar. The day after entry is resolved best-effort: its absence only
// rules out next-day exits, not the event.
func (v *Validator) Validate(e *Event) bool {
	if reason, ok := v.Cal.Holiday(e.Date); ok {
		v.Counters.HolidayEvents++
		v.Log.Errorw("event on a non-trading day",
			"ticker", e.Ticker, "date", day(e.Date), "reason", reason)
		return false
	}

	entry := e.Date
	if e.Timing == AMC {
		entry = calendar.NextTradingDay(v.Cal, entry)
	}
	if !v.usableBar(e.Ticker, entry, true) {
		return false
	}

	next := calendar.NextTradingDay(v.Cal, entry)
	if !v.usableBar(e.Ticker, next, false) {
		next = time.Time{}
	}

	v.Counters.ValidEvents++
	e.EntryDate = entry
	e.NextDate = next
	return true
}

// usableBar distinguishes a missing bar from one that is present but
// error-flagged; the two failure modes are counted separately.
func (v *Validator) usableBar(ticker string, date time.Time, logged bool) bool {
	bar, ok := v.Bars.Bar(ticker, date)
	if !ok {
		v.Counters.MissedBars++
		if logged {
			v.Log.Errorw("no bar data", "ticker", ticker, "date", day(date))
		}
		return false
	}
	if bar.Err {
		v.Counters.ErrorBars++
		if logged {
			v.Log.Errorw("error bar rejected", "ticker", ticker, "date", day(date))
		}
		return false
	}
	return true
}

// BucketAll runs every raw event through the validity and tradability
// checks and buckets the survivors by entry date. The ticker list
// covers all raw events, valid or not, so callers can preload data.
func (v *Validator) BucketAll(raws []*Event) ([]string, Buckets) {
	buckets := make(Buckets)
	seen := make(map[string]bool)
	var tickers []string

	for _, e := range raws {
		if !seen[e.Ticker] {
			seen[e.Ticker] = true
			tickers = append(tickers, e.Ticker)
		}

		if !e.Valid() {
			v.Counters.InvalidEvents++
			v.Log.Errorw("invalid or missing event data",
				"ticker", e.Ticker, "date", day(e.Date))
			continue
		}
		if !v.Validate(e) {
			continue
		}
		buckets.add(e)
	}

	return tickers, buckets
}

func day(t time.Time) string { return t.Format("2006-01-02") }
