package sim

import "time"

// Direction: +1 long, -1 short
type Direction int8

const (
	Long  Direction = +1
	Short Direction = -1
)

func (d Direction) String() string {
	if d == Short {
		return "short"
	}
	return "long"
}

// Trade is an open position in the ledger. Fields are fixed at entry;
// the exit is resolved by the engine when the exit date or a stop is
// reached.
type Trade struct {
	ID         int
	Ticker     string
	EntryDate  time.Time
	ExitDate   time.Time
	Direction  Direction
	EntryPrice float64
	Stop       float64 // distance from entry, 0 disables
	Volume     int
	MarginUsed float64
	PosRisk    float64
}

// DayTrade reports whether the trade is scheduled to exit on its entry
// day.
func (t *Trade) DayTrade() bool {
	return t.ExitDate.Equal(t.EntryDate)
}

// kind labels log lines for positions held past the entry day.
func (t *Trade) kind() string {
	if t.DayTrade() {
		return ""
	}
	return "overnight "
}

// TradeRequest is what a strategy submits to open a position.
type TradeRequest struct {
	Ticker    string
	EntryDate time.Time
	ExitDate  time.Time
	Direction Direction
	Price     float64
	Stop      float64
	Volume    int
	PosRisk   float64
}
