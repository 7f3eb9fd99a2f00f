// Package report turns a finished run into the printable statistics
// table.
package report

import (
	"fmt"
	"io"
	"math"

	"github.com/rustyeddy/earnings/events"
	"github.com/rustyeddy/earnings/sim"
)

const labelWidth = 40

// Line is one row of the report. A line with an empty value is a
// section header; a fully empty line is a separator.
type Line struct {
	Label string
	Value string
}

// Input collects everything the table shows beyond the run result
// itself.
type Input struct {
	DataFeed        string
	EventsFeed      string
	Broker          string
	DayMargin       float64
	OvernightMargin float64
	Result          *sim.Result
	Validation      events.Counters
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// yearYield is the geometric yearly return over the run, counting at
// least one whole year.
func yearYield(start, net float64, startYear, endYear int) float64 {
	years := endYear - startYear
	if years < 1 {
		years = 1
	}
	if start == 0 {
		return 0
	}
	return (math.Pow(net/start, 1/float64(years)) - 1) * 100
}

// Generate builds the report rows in presentation order.
func Generate(in Input) []Line {
	r := in.Result
	c := r.Counters
	v := in.Validation

	totalWins := c.TotalWins()
	yield := yearYield(r.StartBalance, r.NetBalance, r.Start.Year(), r.End.Year())

	lines := []Line{
		{},
		{Label: "**** Backtest statistics"},
		{"Data feed", in.DataFeed},
		{"Events feed", in.EventsFeed},
		{"Date range", fmt.Sprintf("%s..%s", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))},
		{"Broker profile", in.Broker},
		{"Intraday/overnight margins", fmt.Sprintf("%.0f/%.0f", in.DayMargin, in.OvernightMargin)},
		{"Beginning balance", fmt.Sprintf("$%.2f", r.StartBalance)},
		{"Ending balance (Gross)", fmt.Sprintf("$%.2f", r.GrossBalance)},
		{"Ending balance (Net)", fmt.Sprintf("$%.2f", r.NetBalance)},
		{"Trade volume", fmt.Sprintf("%d", c.TotalVolume)},
		{"Commissions paid", fmt.Sprintf("$%.2f", c.CommissionTotal)},
		{"Slippage paid", fmt.Sprintf("$%.2f", c.SlippageTotal)},
		{"Maximum drawdown", fmt.Sprintf("%.2f%%", r.MaxDrawdown)},
		{"Total trades", fmt.Sprintf("%d (%d long, %d short)", c.TotalTrades, c.LongTrades, c.ShortTrades)},
		{"Winning percentage", fmt.Sprintf("%.2f%% (%.2f%% long, %.2f%% short)",
			safeDiv(float64(totalWins)*100, float64(c.TotalTrades)),
			safeDiv(float64(c.LongWins)*100, float64(totalWins)),
			safeDiv(float64(c.ShortWins)*100, float64(totalWins)))},
		{"Stops reached", fmt.Sprintf("%d", c.ReachedStops)},
		{"Average profit per trade", fmt.Sprintf("$%.2f", safeDiv(c.TotalWinnings, float64(totalWins)))},
		{"Average loss per trade", fmt.Sprintf("-$%.2f", safeDiv(c.TotalLosings, float64(c.TotalTrades-totalWins)))},
		{"Largest winning streak, days", fmt.Sprintf("%d", c.MaxWinningStreak)},
		{"Largest losing streak, days", fmt.Sprintf("%d", c.MaxLosingStreak)},
		{"Profit factor", fmt.Sprintf("%.2f", safeDiv(c.TotalWinnings, c.TotalLosings))},
		{"Y/y yield", fmt.Sprintf("%.2f%%", yield)},
		{"Holiday events detected", fmt.Sprintf("%d", v.HolidayEvents)},
		{"Bars missed", fmt.Sprintf("%d", v.MissedBars)},
		{"Error bars skipped", fmt.Sprintf("%d", v.ErrorBars)},
		{"Valid events count", fmt.Sprintf("%d", v.ValidEvents)},
		{"Trades removed (no bar)", fmt.Sprintf("%d", c.RemovedTrades)},
		{"No day/overnight margins", fmt.Sprintf("%d/%d", c.NoDayMargin, c.NoOvernightMargin)},
	}

	if len(r.ExtraLines) > 0 {
		lines = append(lines, Line{}, Line{Label: "**** Additional info"})
		for _, l := range r.ExtraLines {
			lines = append(lines, Line{Label: l.Label, Value: l.Value})
		}
	}

	return lines
}

// Render writes the rows with labels padded into a fixed column.
func Render(w io.Writer, lines []Line) error {
	for _, l := range lines {
		var err error
		switch {
		case l.Label != "" && l.Value != "":
			_, err = fmt.Fprintf(w, "%-*s %s\n", labelWidth, l.Label, l.Value)
		case l.Label != "":
			_, err = fmt.Fprintln(w, l.Label)
		default:
			_, err = fmt.Fprintln(w)
		}
		if err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
