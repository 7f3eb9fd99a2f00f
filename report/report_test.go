package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/earnings/events"
	"github.com/rustyeddy/earnings/sim"
)

func sampleInput() Input {
	return Input{
		DataFeed:        "csv",
		EventsFeed:      "portfolio123",
		Broker:          "ib_cfd_strict",
		DayMargin:       4,
		OvernightMargin: 4,
		Result: &sim.Result{
			RunID:        "01H",
			Name:         "Earnings",
			Start:        time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC),
			End:          time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC),
			StartBalance: 10000,
			GrossBalance: 21000,
			NetBalance:   20000,
			MaxDrawdown:  12.5,
			Counters: sim.Counters{
				CommissionTotal: 800,
				SlippageTotal:   200,
				TotalVolume:     50000,
				TotalWinnings:   15000,
				TotalLosings:    4000,
				TotalTrades:     100,
				LongTrades:      60,
				ShortTrades:     40,
				LongWins:        40,
				ShortWins:       20,
				ReachedStops:    10,
			},
		},
		Validation: events.Counters{
			HolidayEvents: 3,
			MissedBars:    7,
			ErrorBars:     2,
			ValidEvents:   500,
		},
	}
}

func lineValue(t *testing.T, lines []Line, label string) string {
	t.Helper()
	for _, l := range lines {
		if l.Label == label {
			return l.Value
		}
	}
	t.Fatalf("no line with label %q", label)
	return ""
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	lines := Generate(sampleInput())

	assert.Equal(t, "$10000.00", lineValue(t, lines, "Beginning balance"))
	assert.Equal(t, "$20000.00", lineValue(t, lines, "Ending balance (Net)"))
	assert.Equal(t, "100 (60 long, 40 short)", lineValue(t, lines, "Total trades"))
	assert.Equal(t, "60.00% (66.67% long, 33.33% short)", lineValue(t, lines, "Winning percentage"))
	assert.Equal(t, "$250.00", lineValue(t, lines, "Average profit per trade"))
	assert.Equal(t, "-$100.00", lineValue(t, lines, "Average loss per trade"))
	assert.Equal(t, "3.75", lineValue(t, lines, "Profit factor"))
	// (2/1)^(1/4) - 1 over the four-year window
	assert.Equal(t, "18.92%", lineValue(t, lines, "Y/y yield"))
	assert.Equal(t, "7", lineValue(t, lines, "Bars missed"))
	assert.Equal(t, "4/4", lineValue(t, lines, "Intraday/overnight margins"))
}

func TestGenerateZeroTrades(t *testing.T) {
	t.Parallel()

	in := sampleInput()
	in.Result.Counters = sim.Counters{}
	in.Result.GrossBalance = 10000
	in.Result.NetBalance = 10000

	lines := Generate(in)

	assert.Equal(t, "0.00% (0.00% long, 0.00% short)", lineValue(t, lines, "Winning percentage"))
	assert.Equal(t, "$0.00", lineValue(t, lines, "Average profit per trade"))
	assert.Equal(t, "0.00", lineValue(t, lines, "Profit factor"))
	assert.Equal(t, "0.00%", lineValue(t, lines, "Y/y yield"))
}

func TestGenerateExtraLines(t *testing.T) {
	t.Parallel()

	in := sampleInput()
	in.Result.ExtraLines = []sim.ReportLine{{Label: "Long exits", Value: "same day"}}

	lines := Generate(in)

	var foundHeader bool
	for _, l := range lines {
		if l.Label == "**** Additional info" {
			foundHeader = true
		}
	}
	assert.True(t, foundHeader)
	assert.Equal(t, "same day", lineValue(t, lines, "Long exits"))
}

func TestYearYieldMinimumOneYear(t *testing.T) {
	t.Parallel()

	// Same-year runs are annualized as one whole year.
	assert.InDelta(t, 10.0, yearYield(10000, 11000, 2016, 2016), 1e-9)
	assert.InDelta(t, 0.0, yearYield(0, 11000, 2012, 2016), 1e-9)
}

func TestRender(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Generate(sampleInput())))

	out := buf.String()
	assert.Contains(t, out, "**** Backtest statistics")
	assert.Contains(t, out, "Beginning balance")

	// Labels are padded so values line up in one column.
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "Beginning balance") {
			assert.Equal(t, strings.Index(line, "$"), labelWidth+1)
		}
	}
}
