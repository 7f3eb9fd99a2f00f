package sim

// Counters accumulate over a run and feed the final report.
type Counters struct {
	CommissionTotal float64
	SlippageTotal   float64
	TotalVolume     int64
	TotalWinnings   float64
	TotalLosings    float64

	TotalTrades int
	LongTrades  int
	ShortTrades int
	LongWins    int
	ShortWins   int

	ReachedStops    int
	RemovedTrades   int
	RejectedEntries int

	WinningStreak    int
	LosingStreak     int
	MaxWinningStreak int
	MaxLosingStreak  int

	NoDayMargin       int
	NoOvernightMargin int
}

func (c Counters) TotalWins() int {
	return c.LongWins + c.ShortWins
}
