package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/rustyeddy/earnings/calendar"
	"github.com/rustyeddy/earnings/market"
)

// fakeBars is a minimal in-memory market.BarSource.
type fakeBars map[string]map[int64]market.Bar

func (f fakeBars) Bar(ticker string, date time.Time) (market.Bar, bool) {
	bar, ok := f[ticker][date.Unix()]
	return bar, ok
}

func (f fakeBars) add(ticker string, date time.Time, bar market.Bar) {
	if f[ticker] == nil {
		f[ticker] = make(map[int64]market.Bar)
	}
	bar.Date = date
	f[ticker][date.Unix()] = bar
}

func newValidator(bars fakeBars) *Validator {
	return &Validator{
		Cal:  calendar.US{},
		Bars: bars,
		Log:  zap.NewNop().Sugar(),
	}
}

var (
	mon = calendar.Date(2018, time.June, 4)
	tue = calendar.Date(2018, time.June, 5)
	wed = calendar.Date(2018, time.June, 6)
	sat = calendar.Date(2018, time.June, 2)
)

func TestValidateSaturdayEventDiscarded(t *testing.T) {
	t.Parallel()

	v := newValidator(fakeBars{})
	e := &Event{Ticker: "ABC", Date: sat, Timing: BMO}

	assert.False(t, v.Validate(e))
	assert.Equal(t, 1, v.Counters.HolidayEvents)
	assert.Equal(t, 0, v.Counters.ValidEvents)
}

func TestValidateBMOEntersSameDay(t *testing.T) {
	t.Parallel()

	bars := fakeBars{}
	bars.add("ABC", mon, market.Bar{Open: 50})
	bars.add("ABC", tue, market.Bar{Open: 51})

	v := newValidator(bars)
	e := &Event{Ticker: "ABC", Date: mon, Timing: BMO}

	assert.True(t, v.Validate(e))
	assert.Equal(t, mon, e.EntryDate)
	assert.Equal(t, tue, e.NextDate)
	assert.Equal(t, 1, v.Counters.ValidEvents)
}

func TestValidateAMCEntersNextTradingDay(t *testing.T) {
	t.Parallel()

	bars := fakeBars{}
	bars.add("ABC", tue, market.Bar{Open: 50})
	bars.add("ABC", wed, market.Bar{Open: 51})

	v := newValidator(bars)
	e := &Event{Ticker: "ABC", Date: mon, Timing: AMC}

	assert.True(t, v.Validate(e))
	assert.Equal(t, tue, e.EntryDate)
	assert.Equal(t, wed, e.NextDate)
}

func TestValidateMissingEntryBar(t *testing.T) {
	t.Parallel()

	v := newValidator(fakeBars{})
	e := &Event{Ticker: "ABC", Date: mon, Timing: BMO}

	assert.False(t, v.Validate(e))
	assert.Equal(t, 1, v.Counters.MissedBars)
	assert.Equal(t, 0, v.Counters.ErrorBars)
}

func TestValidateErrorEntryBar(t *testing.T) {
	t.Parallel()

	bars := fakeBars{}
	bars.add("ABC", mon, market.Bar{Open: 50, Err: true})

	v := newValidator(bars)
	e := &Event{Ticker: "ABC", Date: mon, Timing: BMO}

	assert.False(t, v.Validate(e))
	assert.Equal(t, 1, v.Counters.ErrorBars)
	assert.Equal(t, 0, v.Counters.MissedBars)
}

func TestValidateMissingNextBarOnlyClearsNextDate(t *testing.T) {
	t.Parallel()

	bars := fakeBars{}
	bars.add("ABC", mon, market.Bar{Open: 50})

	v := newValidator(bars)
	e := &Event{Ticker: "ABC", Date: mon, Timing: BMO}

	assert.True(t, v.Validate(e))
	assert.Equal(t, mon, e.EntryDate)
	assert.False(t, e.HasNextDate())
	// The missed next bar still counts, the event is still tradable.
	assert.Equal(t, 1, v.Counters.MissedBars)
	assert.Equal(t, 1, v.Counters.ValidEvents)
}

func TestBucketAll(t *testing.T) {
	t.Parallel()

	bars := fakeBars{}
	bars.add("AAA", mon, market.Bar{Open: 10})
	bars.add("AAA", tue, market.Bar{Open: 11})
	bars.add("BBB", tue, market.Bar{Open: 20})
	bars.add("BBB", wed, market.Bar{Open: 21})

	v := newValidator(bars)
	raws := []*Event{
		{Ticker: "AAA", Date: mon, Timing: BMO, Type: EPSOnly, EPSCon: fp(1), EPSAct: fp(2)},
		{Ticker: "BBB", Date: mon, Timing: AMC, Type: EPSOnly, EPSCon: fp(1), EPSAct: fp(2)},
		{Ticker: "CCC", Date: mon, Timing: BMO, Type: EPSOnly}, // incomplete
	}

	tickers, buckets := v.BucketAll(raws)
	assert.ElementsMatch(t, []string{"AAA", "BBB", "CCC"}, tickers)
	assert.Len(t, buckets.On(mon), 1)
	assert.Len(t, buckets.On(tue), 1)
	assert.Equal(t, 2, buckets.Len())
	assert.Equal(t, 1, v.Counters.InvalidEvents)
}
