package sim

import (
	"time"

	"github.com/rustyeddy/earnings/journal"
)

// ReportLine is one label/value row a strategy can append to the
// report.
type ReportLine struct {
	Label string
	Value string
}

// Result is everything a finished run produced.
type Result struct {
	RunID        string
	Name         string
	Start        time.Time
	End          time.Time
	StartBalance float64
	GrossBalance float64
	NetBalance   float64

	BalanceSeries  Series
	DrawdownSeries Series
	MaxDrawdown    float64

	// Every settled trade in close order, including force-removed
	// ones (Reason no_bar, no exit price).
	Trades []journal.TradeRecord

	Counters   Counters
	ExtraLines []ReportLine
}

func (e *Engine) result(name string) *Result {
	net := e.grossBalance - e.counters.CommissionTotal - e.counters.SlippageTotal
	return &Result{
		RunID:          e.runID,
		Name:           name,
		Start:          e.cfg.Start,
		End:            e.cfg.End,
		StartBalance:   e.cfg.StartBalance,
		GrossBalance:   e.grossBalance,
		NetBalance:     net,
		BalanceSeries:  e.balanceSeries,
		DrawdownSeries: e.drawdownSeries,
		MaxDrawdown:    e.drawdownSeries.Max(),
		Trades:         e.closed,
		Counters:       e.counters,
	}
}
