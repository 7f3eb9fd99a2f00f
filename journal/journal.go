// Package journal persists what a backtest did: every closed trade,
// one row per trading day, and a summary row per run. Backends share
// the Journal interface so the engine does not care where rows land.
package journal

import "time"

// Close reasons recorded with each trade.
const (
	ReasonScheduled     = "close"
	ReasonStop          = "stop"
	ReasonOvernightStop = "overnight_stop"
	ReasonNoBar         = "no_bar"
)

type TradeRecord struct {
	RunID      string
	TradeID    int
	Ticker     string
	Direction  string
	Volume     int
	EntryPrice float64
	ExitPrice  float64
	EntryDate  time.Time
	ExitDate   time.Time
	Commission float64
	RealizedPL float64
	Reason     string
}

type DayRecord struct {
	RunID      string
	Date       time.Time
	Balance    float64
	Drawdown   float64
	OpenLongs  int
	OpenShorts int
}

type RunRecord struct {
	RunID        string
	Name         string
	Start        time.Time
	End          time.Time
	StartBalance float64
	GrossBalance float64
	NetBalance   float64
	Trades       int
	MaxDrawdown  float64
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordDay(DayRecord) error
	RecordRun(RunRecord) error
	Close() error
}

// Nop discards everything. Used when journaling is disabled and in
// benchmarks.
type Nop struct{}

func (Nop) RecordTrade(TradeRecord) error { return nil }
func (Nop) RecordDay(DayRecord) error     { return nil }
func (Nop) RecordRun(RunRecord) error     { return nil }
func (Nop) Close() error                  { return nil }
