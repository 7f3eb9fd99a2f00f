package events

import (
	"encoding/csv"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/earnings/calendar"
)

// The report feeds all carry the same information under different
// column names, so ingestion is one CSV reader driven by a per-source
// column map instead of a parser per feed.

// ColumnMap names the feed's columns for each canonical field. Empty
// revenue columns mean the feed is EPS-only; an empty Timing column
// means the feed has no BMO/AMC flag and timing must be inferred.
type ColumnMap struct {
	Ticker string
	Date   string
	Timing string
	EPSCon string
	EPSAct string
	RevCon string
	RevAct string
}

// SourceSpec describes one report feed.
type SourceSpec struct {
	Name    string
	Type    Type
	Columns ColumnMap

	// InferTiming compares announcement-day volume against next-day
	// volume: the heavier day is taken as the reaction day, so heavier
	// announcement-day volume means the report was out before the open.
	InferTiming bool

	// SanitizeTicker strips exchange suffixes ("^...") and leading
	// digits, and drops tickers with dots (foreign listings).
	SanitizeTicker bool
}

var sources = map[string]SourceSpec{
	"estimize": {
		Name: "estimize",
		Type: EPSAndRev,
		Columns: ColumnMap{
			Ticker: "ticker", Date: "date", Timing: "reports",
			EPSCon: "epsWallStreet", EPSAct: "epsActual",
			RevCon: "revWallStreet", RevAct: "revActual",
		},
	},
	"estimize_final": {
		Name: "estimize_final",
		Type: EPSAndRev,
		Columns: ColumnMap{
			Ticker: "ticker", Date: "date", Timing: "reports",
			EPSCon: "epsWallStreet", EPSAct: "epsActual",
			RevCon: "revWallStreet", RevAct: "revActual",
		},
	},
	"tos": {
		Name: "tos",
		Type: EPSOnly,
		Columns: ColumnMap{
			Ticker: "ticker", Date: "date", Timing: "reports",
			EPSCon: "eps_con", EPSAct: "eps_act",
		},
	},
	"zacks": {
		Name: "zacks",
		Type: EPSAndRev,
		Columns: ColumnMap{
			Ticker: "ticker", Date: "date", Timing: "reports",
			EPSCon: "epsEst", EPSAct: "epsAct",
			RevCon: "revEst", RevAct: "revAct",
		},
	},
	"ib": {
		Name: "ib",
		Type: EPSAndRev,
		Columns: ColumnMap{
			Ticker: "ticker", Date: "date", Timing: "reports",
			EPSCon: "eps_con", EPSAct: "eps_act",
			RevCon: "rev_con", RevAct: "rev_act",
		},
	},
	"portfolio123": {
		Name: "portfolio123",
		Type: EPSAndRev,
		Columns: ColumnMap{
			Ticker: "Ticker", Date: "@date_",
			EPSCon: "@est_eps", EPSAct: "@act_eps",
			RevCon: "@est_sales", RevAct: "@act_sales",
		},
		InferTiming:    true,
		SanitizeTicker: true,
	},
}

// ErrUnknownSource is a configuration error: the run aborts.
var ErrUnknownSource = fmt.Errorf("unknown event source")

// Source looks up a built-in feed spec by name.
func Source(name string) (SourceSpec, error) {
	spec, ok := sources[name]
	if !ok {
		return SourceSpec{}, fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
	return spec, nil
}

// SourceNames lists the built-in feeds.
func SourceNames() []string {
	names := make([]string, 0, len(sources))
	for n := range sources {
		names = append(names, n)
	}
	return names
}

var (
	tickerSuffix = regexp.MustCompile(`\^.*$`)
	tickerDigits = regexp.MustCompile(`^\d+`)
)

// LoadCSV reads a feed file into canonical raw events, then validates
// and buckets them. Malformed rows are dropped with a counter, never
// an error; only an unreadable file or header aborts.
func LoadCSV(path string, spec SourceSpec, v *Validator) ([]string, Buckets, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open events %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read events header %s: %w", path, err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{spec.Columns.Ticker, spec.Columns.Date} {
		if _, ok := col[required]; !ok {
			return nil, nil, fmt.Errorf("events %s: missing column %q", path, required)
		}
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read events %s: %w", path, err)
	}

	var raws []*Event
	for _, row := range rows {
		e, ok := parseRow(row, col, spec, v)
		if !ok {
			continue
		}
		raws = append(raws, e)
	}

	tickers, buckets := v.BucketAll(raws)
	return tickers, buckets, nil
}

func parseRow(row []string, col map[string]int, spec SourceSpec, v *Validator) (*Event, bool) {
	field := func(name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	ticker := strings.ToUpper(field(spec.Columns.Ticker))
	if spec.SanitizeTicker {
		ticker = tickerSuffix.ReplaceAllString(ticker, "")
		ticker = tickerDigits.ReplaceAllString(ticker, "")
		if strings.Contains(ticker, ".") {
			return nil, false
		}
	}
	if ticker == "" {
		return nil, false
	}

	date, err := time.ParseInLocation("2006-01-02", field(spec.Columns.Date), time.UTC)
	if err != nil {
		v.Counters.InvalidEvents++
		v.Log.Errorw("bad event date", "ticker", ticker, "value", field(spec.Columns.Date))
		return nil, false
	}

	e := &Event{
		Ticker: ticker,
		Date:   date,
		Type:   spec.Type,
		EPSCon: parseFigure(field(spec.Columns.EPSCon)),
		EPSAct: parseFigure(field(spec.Columns.EPSAct)),
		RevCon: parseFigure(field(spec.Columns.RevCon)),
		RevAct: parseFigure(field(spec.Columns.RevAct)),
	}

	if spec.InferTiming {
		timing, ok := inferTiming(v, ticker, date)
		if !ok {
			return nil, false
		}
		e.Timing = timing
		return e, true
	}

	timing, ok := ParseTiming(field(spec.Columns.Timing))
	if !ok {
		v.Counters.InvalidEvents++
		v.Log.Errorw("invalid event timing",
			"ticker", ticker, "date", day(date), "value", field(spec.Columns.Timing))
		return nil, false
	}
	e.Timing = timing
	return e, true
}

// inferTiming needs bars on both the announcement day and the next
// trading day; without them the row is silently dropped, matching the
// feed's original handling.
func inferTiming(v *Validator, ticker string, date time.Time) (Timing, bool) {
	bar0, ok0 := v.Bars.Bar(ticker, date)
	bar1, ok1 := v.Bars.Bar(ticker, calendar.NextTradingDay(v.Cal, date))
	if !ok0 || !ok1 {
		return 0, false
	}
	if bar0.Volume > bar1.Volume {
		return BMO, true
	}
	return AMC, true
}

func parseFigure(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
