package events

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/earnings/market"
)

func writeCSV(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.csv")
	data := ""
	for _, l := range lines {
		data += l + "\n"
	}
	assert.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoadCSVEstimize(t *testing.T) {
	t.Parallel()

	bars := fakeBars{}
	bars.add("AAPL", mon, market.Bar{Open: 150})
	bars.add("AAPL", tue, market.Bar{Open: 151})

	path := writeCSV(t,
		"ticker,date,reports,epsWallStreet,epsActual,revWallStreet,revActual",
		"aapl,2018-06-04,BMO,1.00,1.20,100,110",
	)

	spec, err := Source("estimize")
	assert.NoError(t, err)

	v := newValidator(bars)
	tickers, buckets, err := LoadCSV(path, spec, v)
	assert.NoError(t, err)
	assert.Equal(t, []string{"AAPL"}, tickers)

	evs := buckets.On(mon)
	assert.Len(t, evs, 1)
	assert.Equal(t, EPSAndRev, evs[0].Type)
	assert.Equal(t, BMO, evs[0].Timing)

	change, ok := evs[0].RevChange()
	assert.True(t, ok)
	assert.InDelta(t, 0.1, change, 1e-9)
}

func TestLoadCSVTOSIsEPSOnly(t *testing.T) {
	t.Parallel()

	bars := fakeBars{}
	bars.add("MSFT", mon, market.Bar{Open: 100})

	path := writeCSV(t,
		"ticker,date,reports,eps_con,eps_act",
		"MSFT,2018-06-04,BMO,0.50,0.55",
	)

	spec, err := Source("tos")
	assert.NoError(t, err)

	v := newValidator(bars)
	_, buckets, err := LoadCSV(path, spec, v)
	assert.NoError(t, err)

	evs := buckets.On(mon)
	assert.Len(t, evs, 1)
	assert.Equal(t, EPSOnly, evs[0].Type)
	assert.Nil(t, evs[0].RevCon)
}

func TestLoadCSVBadTimingCounted(t *testing.T) {
	t.Parallel()

	path := writeCSV(t,
		"ticker,date,reports,eps_con,eps_act",
		"MSFT,2018-06-04,NOON,0.50,0.55",
	)

	spec, _ := Source("tos")
	v := newValidator(fakeBars{})
	_, buckets, err := LoadCSV(path, spec, v)
	assert.NoError(t, err)
	assert.Equal(t, 0, buckets.Len())
	assert.Equal(t, 1, v.Counters.InvalidEvents)
}

func TestLoadCSVPortfolio123(t *testing.T) {
	t.Parallel()

	bars := fakeBars{}
	// Announcement-day volume heavier than next day: BMO inferred,
	// entry on the announcement day itself.
	bars.add("IBM", mon, market.Bar{Open: 140, Volume: 2000})
	bars.add("IBM", tue, market.Bar{Open: 141, Volume: 1000})
	// Next-day volume heavier: AMC inferred, entry on the next day.
	bars.add("HPQ", mon, market.Bar{Open: 20, Volume: 500})
	bars.add("HPQ", tue, market.Bar{Open: 21, Volume: 900})
	bars.add("HPQ", wed, market.Bar{Open: 22, Volume: 400})

	path := writeCSV(t,
		"Ticker,@date_,@est_eps,@act_eps,@est_sales,@act_sales",
		"123IBM^NYSE,2018-06-04,1.0,1.1,50,55",
		"HPQ,2018-06-04,0.4,0.5,10,11",
		"BAD.L,2018-06-04,1.0,1.1,1,2",
	)

	spec, err := Source("portfolio123")
	assert.NoError(t, err)

	v := newValidator(bars)
	tickers, buckets, err := LoadCSV(path, spec, v)
	assert.NoError(t, err)

	// The dotted foreign listing is dropped before validation.
	assert.ElementsMatch(t, []string{"IBM", "HPQ"}, tickers)

	ibm := buckets.On(mon)
	assert.Len(t, ibm, 1)
	assert.Equal(t, "IBM", ibm[0].Ticker)
	assert.Equal(t, BMO, ibm[0].Timing)

	hpq := buckets.On(tue)
	assert.Len(t, hpq, 1)
	assert.Equal(t, AMC, hpq[0].Timing)
}

func TestSourceUnknown(t *testing.T) {
	t.Parallel()

	_, err := Source("bloomberg")
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestCacheRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cachePath := filepath.Join(dir, "estimize_events_cache.dat")

	buckets := make(Buckets)
	buckets.add(&Event{
		Ticker:    "AAPL",
		Date:      mon,
		EntryDate: mon,
		Type:      EPSAndRev,
		EPSCon:    fp(1), EPSAct: fp(1.2),
	})
	counters := Counters{ValidEvents: 1, HolidayEvents: 2}

	assert.NoError(t, SaveCache(cachePath, "abc123", buckets, counters))

	got, gotCounters, ok, err := LoadCache(cachePath, "abc123")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, counters, gotCounters)
	assert.Len(t, got.On(mon), 1)
	assert.Equal(t, "AAPL", got.On(mon)[0].Ticker)

	// A different hash is a miss, not an error.
	_, _, ok, err = LoadCache(cachePath, "other")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheMissingFile(t *testing.T) {
	t.Parallel()

	_, _, ok, err := LoadCache(filepath.Join(t.TempDir(), "none.dat"), "x")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestFileHashChangesWithSalt(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, "ticker,date", "A,2018-06-04")

	h1, err := FileHash(path, "yahoo")
	assert.NoError(t, err)
	h2, err := FileHash(path, "alpha")
	assert.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}
