// Package market holds daily OHLCV price history and the process-wide
// store the simulation reads bars from. Data is materialized (CSV files,
// a ClickHouse table, or a saved snapshot) before a run starts; the
// simulation itself only performs lookups.
package market

import "time"

// Bar is one daily candle for a ticker. Err marks a bar that was
// present in the source but failed sanity checks (zero/NaN prices,
// missing volume); such bars exist so downstream code can count them
// separately from missing bars.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
	Err    bool

	// Derived by Series.preprocess. NaN until the rolling window is
	// filled.
	ATR       float64 // 10-day mean of High-Low
	AvgVolume float64 // 20-day mean of Volume
}

const (
	atrWindow       = 10
	avgVolumeWindow = 20
)
