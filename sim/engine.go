// Package sim is the day-stepping simulation ledger. The engine walks
// trading days between a start and end date, hands each day to a
// strategy, and settles open positions against that day's bar: stops
// first, scheduled exits at the close, then the day's balance and
// drawdown points.
package sim

import (
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/earnings/broker"
	"github.com/rustyeddy/earnings/calendar"
	"github.com/rustyeddy/earnings/events"
	"github.com/rustyeddy/earnings/internal/id"
	"github.com/rustyeddy/earnings/journal"
	"github.com/rustyeddy/earnings/market"
)

type Config struct {
	StartBalance    float64
	Start           time.Time
	End             time.Time
	DayMargin       float64
	OvernightMargin float64
	Slippage        float64
}

// Deps are the collaborators the engine settles trades against.
type Deps struct {
	Calendar calendar.Calendar
	Bars     market.BarSource
	Broker   *broker.Broker
	Events   events.Buckets
	Journal  journal.Journal
	Log      *zap.SugaredLogger
}

// Strategy is called once per trading day.
type Strategy interface {
	Name() string
	OnDay(ctx *Context)
	// OnFinish may append extra report lines after the run.
	OnFinish(add func(label, value string))
}

type Engine struct {
	cfg  Config
	deps Deps

	runID   string
	current time.Time // zero until the first NextDay

	balance         float64
	grossBalance    float64
	dayStartBalance float64
	balanceHigh     float64

	balanceSeries  Series
	drawdownSeries Series

	// Open positions. Day trades exit on their entry day; overnight
	// trades were carried in from earlier days; pending overnight
	// trades were opened today and promoted at day end.
	dayTrades        []*Trade
	overnightTrades  []*Trade
	pendingOvernight []*Trade

	// Every settled trade, in close order. The journal gets the same
	// records; this copy travels on the Result.
	closed []journal.TradeRecord

	counters Counters
}

func NewEngine(cfg Config, deps Deps) *Engine {
	if deps.Journal == nil {
		deps.Journal = journal.Nop{}
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop().Sugar()
	}
	return &Engine{
		cfg:             cfg,
		deps:            deps,
		runID:           id.New(),
		balance:         cfg.StartBalance,
		grossBalance:    cfg.StartBalance,
		dayStartBalance: cfg.StartBalance,
	}
}

func (e *Engine) RunID() string      { return e.runID }
func (e *Engine) Current() time.Time { return e.current }
func (e *Engine) Balance() float64   { return e.balance }
func (e *Engine) Counters() Counters { return e.counters }
func (e *Engine) Balances() Series   { return e.balanceSeries }
func (e *Engine) Drawdowns() Series  { return e.drawdownSeries }

// ClosedTrades returns every settled trade so far, in close order.
func (e *Engine) ClosedTrades() []journal.TradeRecord { return e.closed }

// AllTrades returns every open position across the three sets.
func (e *Engine) AllTrades() []*Trade {
	all := make([]*Trade, 0, len(e.dayTrades)+len(e.overnightTrades)+len(e.pendingOvernight))
	all = append(all, e.dayTrades...)
	all = append(all, e.overnightTrades...)
	all = append(all, e.pendingOvernight...)
	return all
}

func (e *Engine) MarginUsed() float64 {
	var used float64
	for _, t := range e.AllTrades() {
		used += t.MarginUsed
	}
	return used
}

// DayBP is the intraday buying power left. It can go negative; sizing
// callers floor it at zero.
func (e *Engine) DayBP() float64 {
	return e.balance*e.cfg.DayMargin - e.MarginUsed()
}

func (e *Engine) OvernightBP() float64 {
	return e.balance*e.cfg.OvernightMargin - e.MarginUsed()
}

func (e *Engine) ActiveLongs() int {
	var n int
	for _, t := range e.AllTrades() {
		if t.Direction == Long {
			n++
		}
	}
	return n
}

func (e *Engine) ActiveShorts() int {
	var n int
	for _, t := range e.AllTrades() {
		if t.Direction == Short {
			n++
		}
	}
	return n
}

// NoteMarginShortfall records a day the strategy wanted to enter but
// had no buying power on one or both margin classes.
func (e *Engine) NoteMarginShortfall(day, overnight bool) {
	if day {
		e.counters.NoDayMargin++
	}
	if overnight {
		e.counters.NoOvernightMargin++
	}
}

// NextDay advances the clock one trading day. The first call rolls the
// start date forward to a trading day and seeds the series; later
// calls settle the previous day first. Returns false once the clock
// passes the end date.
func (e *Engine) NextDay() bool {
	if e.current.IsZero() {
		e.current = calendar.RollForward(e.deps.Calendar, calendar.Midnight(e.cfg.Start))

		e.balance = e.cfg.StartBalance
		e.grossBalance = e.cfg.StartBalance

		e.balanceSeries = e.balanceSeries.Append(e.current, e.balance)
		e.drawdownSeries = e.drawdownSeries.Append(e.current, 0)
	} else {
		e.finishDay()
		e.current = calendar.NextTradingDay(e.deps.Calendar, e.current)
	}

	if e.current.After(calendar.Midnight(e.cfg.End)) {
		return false
	}

	e.deps.Log.Infow("day started",
		"date", day(e.current),
		"day_bp", e.DayBP(),
		"overnight_bp", e.OvernightBP(),
		"balance", e.balance,
		"prev_longs", e.ActiveLongs(),
		"prev_shorts", e.ActiveShorts())

	e.pendingOvernight = nil
	e.dayStartBalance = e.balance
	return true
}

// Run drives the full backtest for one strategy.
func (e *Engine) Run(s Strategy) *Result {
	for e.NextDay() {
		s.OnDay(&Context{engine: e})
	}

	res := e.result(s.Name())
	s.OnFinish(func(label, value string) {
		res.ExtraLines = append(res.ExtraLines, ReportLine{Label: label, Value: value})
	})

	e.deps.Journal.RecordRun(journal.RunRecord{
		RunID:        e.runID,
		Name:         s.Name(),
		Start:        e.cfg.Start,
		End:          e.cfg.End,
		StartBalance: e.cfg.StartBalance,
		GrossBalance: e.grossBalance,
		NetBalance:   res.NetBalance,
		Trades:       e.counters.TotalTrades,
		MaxDrawdown:  e.drawdownSeries.Max(),
	})

	return res
}

// OpenTrade books a new position. Entries are only accepted for the
// current day; anything else is a strategy bug, logged and dropped.
// The commission is deducted from the balance up front.
func (e *Engine) OpenTrade(req TradeRequest) {
	if !req.EntryDate.Equal(e.current) {
		e.deps.Log.Errorw("entry date does not match current day",
			"ticker", req.Ticker, "entry", day(req.EntryDate), "current", day(e.current))
		e.counters.RejectedEntries++
		return
	}

	e.counters.TotalTrades++
	trade := &Trade{
		ID:         e.counters.TotalTrades,
		Ticker:     req.Ticker,
		EntryDate:  req.EntryDate,
		ExitDate:   req.ExitDate,
		Direction:  req.Direction,
		EntryPrice: req.Price,
		Stop:       req.Stop,
		Volume:     req.Volume,
		MarginUsed: req.Price * float64(req.Volume),
		PosRisk:    req.PosRisk,
	}

	if !trade.ExitDate.Equal(e.current) {
		e.pendingOvernight = append(e.pendingOvernight, trade)
	} else {
		e.dayTrades = append(e.dayTrades, trade)
	}

	comm := e.deps.Broker.Commission(trade.Volume, trade.EntryPrice)
	e.balance -= comm
	e.counters.CommissionTotal += comm
	e.counters.TotalVolume += int64(trade.Volume)

	if trade.Direction == Long {
		e.counters.LongTrades++
		e.deps.Log.Infow("open BUY",
			"kind", trade.kind(), "id", trade.ID, "ticker", trade.Ticker,
			"price", trade.EntryPrice, "stop", trade.Stop,
			"commission", comm, "volume", trade.Volume, "risk", trade.PosRisk)
	} else {
		e.counters.ShortTrades++
		e.deps.Log.Infow("open SELL",
			"kind", trade.kind(), "id", trade.ID, "ticker", trade.Ticker,
			"price", trade.EntryPrice, "stop", trade.Stop,
			"commission", comm, "volume", trade.Volume, "risk", trade.PosRisk)
	}
}

func (e *Engine) removeTrade(trade *Trade) {
	if removed := remove(e.overnightTrades, trade); removed != nil {
		e.overnightTrades = removed
		return
	}
	if removed := remove(e.pendingOvernight, trade); removed != nil {
		e.pendingOvernight = removed
		return
	}
	if removed := remove(e.dayTrades, trade); removed != nil {
		e.dayTrades = removed
	}
}

func remove(trades []*Trade, trade *Trade) []*Trade {
	for i, t := range trades {
		if t == trade {
			return append(trades[:i:i], trades[i+1:]...)
		}
	}
	return nil
}

// settle keeps the record on the engine and forwards it to the
// journal.
func (e *Engine) settle(rec journal.TradeRecord) {
	e.closed = append(e.closed, rec)
	e.deps.Journal.RecordTrade(rec)
}

func (e *Engine) removeZombie(trade *Trade, overnight bool) {
	e.removeTrade(trade)
	e.counters.RemovedTrades++
	e.deps.Log.Errorw("removed trade, no bar data",
		"id", trade.ID, "ticker", trade.Ticker,
		"date", day(e.current), "overnight", overnight)
	e.settle(journal.TradeRecord{
		RunID: e.runID, TradeID: trade.ID, Ticker: trade.Ticker,
		Direction: trade.Direction.String(), Volume: trade.Volume,
		EntryPrice: trade.EntryPrice, EntryDate: trade.EntryDate,
		ExitDate: e.current, Reason: journal.ReasonNoBar,
	})
}

// bookStop settles a stopped-out trade. Stop exits always count as
// losses even when the arithmetic comes out positive.
func (e *Engine) bookStop(trade *Trade, result, comm, exitPrice float64, reason string) {
	e.counters.CommissionTotal += comm
	e.balance -= comm
	e.balance -= result
	e.counters.TotalVolume += int64(trade.Volume)
	e.counters.ReachedStops++
	e.counters.SlippageTotal += e.cfg.Slippage * float64(trade.Volume)
	e.grossBalance -= result
	e.counters.TotalLosings += result

	e.removeTrade(trade)

	e.deps.Log.Infow("close STOP",
		"kind", trade.kind(), "id", trade.ID, "ticker", trade.Ticker,
		"price", exitPrice, "result", -result, "commission", comm,
		"volume", trade.Volume, "balance", e.balance)
	e.settle(journal.TradeRecord{
		RunID: e.runID, TradeID: trade.ID, Ticker: trade.Ticker,
		Direction: trade.Direction.String(), Volume: trade.Volume,
		EntryPrice: trade.EntryPrice, ExitPrice: exitPrice,
		EntryDate: trade.EntryDate, ExitDate: e.current,
		Commission: comm, RealizedPL: -result, Reason: reason,
	})
}

// bookClose settles a scheduled exit at the day close.
func (e *Engine) bookClose(trade *Trade, result, comm, exitPrice float64) {
	e.counters.CommissionTotal += comm
	e.balance -= comm
	e.balance += result
	e.grossBalance += result
	e.counters.TotalVolume += int64(trade.Volume)

	if result >= 0 {
		if trade.Direction == Long {
			e.counters.LongWins++
		} else {
			e.counters.ShortWins++
		}
		e.counters.TotalWinnings += result
	} else {
		e.counters.TotalLosings += -result
	}

	e.removeTrade(trade)

	e.deps.Log.Infow("close",
		"kind", trade.kind(), "id", trade.ID, "ticker", trade.Ticker,
		"price", exitPrice, "result", result, "commission", comm,
		"volume", trade.Volume, "balance", e.balance)
	e.settle(journal.TradeRecord{
		RunID: e.runID, TradeID: trade.ID, Ticker: trade.Ticker,
		Direction: trade.Direction.String(), Volume: trade.Volume,
		EntryPrice: trade.EntryPrice, ExitPrice: exitPrice,
		EntryDate: trade.EntryDate, ExitDate: e.current,
		Commission: comm, RealizedPL: result, Reason: journal.ReasonScheduled,
	})
}

// finishDay settles the day being closed, strictly in this order:
// overnight stops against the day open, intraday stops against the
// low/high, scheduled exits at the close, then the day's series points
// and the overnight promotion.
func (e *Engine) finishDay() {
	e.overnightStops()
	e.intradayStops()
	e.scheduledExits()

	dayResult := e.balance - e.dayStartBalance
	if dayResult > 0 {
		e.counters.WinningStreak++
		if e.counters.LosingStreak > e.counters.MaxLosingStreak {
			e.counters.MaxLosingStreak = e.counters.LosingStreak
		}
		e.counters.LosingStreak = 0
	} else {
		e.counters.LosingStreak++
		if e.counters.WinningStreak > e.counters.MaxWinningStreak {
			e.counters.MaxWinningStreak = e.counters.WinningStreak
		}
		e.counters.WinningStreak = 0
	}

	if e.balance > e.balanceHigh {
		e.balanceHigh = e.balance
	}
	drawdown := (1 - e.balance/e.balanceHigh) * 100
	e.drawdownSeries = e.drawdownSeries.Append(e.current, drawdown)

	e.overnightTrades = append(e.overnightTrades, e.pendingOvernight...)
	e.pendingOvernight = nil
	e.balanceSeries = e.balanceSeries.Append(e.current, e.balance)

	e.deps.Journal.RecordDay(journal.DayRecord{
		RunID: e.runID, Date: e.current,
		Balance: e.balance, Drawdown: drawdown,
		OpenLongs: e.ActiveLongs(), OpenShorts: e.ActiveShorts(),
	})

	e.deps.Log.Infow("day finished",
		"date", day(e.current),
		"balance", e.balance,
		"open_longs", e.ActiveLongs(),
		"open_shorts", e.ActiveShorts(),
		"day_result", dayResult)
}

// overnightStops checks positions carried in overnight against the
// day's opening price. A gap past the stop distance exits at the open.
func (e *Engine) overnightStops() {
	for _, trade := range snapshot(e.overnightTrades) {
		bar, ok := e.deps.Bars.Bar(trade.Ticker, e.current)
		if !ok {
			e.removeZombie(trade, true)
			continue
		}

		if trade.Stop == 0 {
			continue
		}

		var loss float64
		switch trade.Direction {
		case Long:
			loss = trade.EntryPrice - bar.Open
		case Short:
			loss = bar.Open - trade.EntryPrice
		}
		if loss <= trade.Stop {
			continue
		}

		slip := e.slippageFor(trade)
		comm := e.deps.Broker.Commission(trade.Volume, bar.Open)
		result := (loss + slip) * float64(trade.Volume)
		e.bookStop(trade, result, comm, bar.Open, journal.ReasonOvernightStop)
	}
}

// intradayStops checks every open position against the day's extremes.
// The exit is modeled at the stop distance from entry, not the extreme
// itself.
func (e *Engine) intradayStops() {
	for _, trade := range e.AllTrades() {
		bar, ok := e.deps.Bars.Bar(trade.Ticker, e.current)
		if !ok {
			e.removeZombie(trade, false)
			continue
		}

		if trade.Stop == 0 {
			continue
		}

		var hit bool
		var exitPrice float64
		switch trade.Direction {
		case Long:
			hit = trade.EntryPrice-bar.Low > trade.Stop
			exitPrice = trade.EntryPrice - trade.Stop
		case Short:
			hit = bar.High-trade.EntryPrice > trade.Stop
			exitPrice = trade.EntryPrice + trade.Stop
		}
		if !hit {
			continue
		}

		slip := e.slippageFor(trade)
		comm := e.deps.Broker.Commission(trade.Volume, exitPrice)
		result := (trade.Stop + slip) * float64(trade.Volume)
		e.bookStop(trade, result, comm, exitPrice, journal.ReasonStop)
	}
}

// scheduledExits closes trades whose exit date is today at the close.
func (e *Engine) scheduledExits() {
	for _, trade := range e.AllTrades() {
		if !trade.ExitDate.Equal(e.current) {
			continue
		}

		bar, ok := e.deps.Bars.Bar(trade.Ticker, e.current)
		if !ok {
			e.removeZombie(trade, false)
			continue
		}

		comm := e.deps.Broker.Commission(trade.Volume, bar.Close)
		var result float64
		switch trade.Direction {
		case Long:
			result = (bar.Close - trade.EntryPrice) * float64(trade.Volume)
		case Short:
			result = (trade.EntryPrice - bar.Close) * float64(trade.Volume)
		}
		e.bookClose(trade, result, comm, bar.Close)
	}
}

// slippageFor charges slippage only when the stop sits below the entry
// price.
func (e *Engine) slippageFor(trade *Trade) float64 {
	if trade.Stop < trade.EntryPrice {
		return e.cfg.Slippage
	}
	return 0
}

// snapshot copies a trade slice so settlement can remove entries while
// iterating.
func snapshot(trades []*Trade) []*Trade {
	out := make([]*Trade, len(trades))
	copy(out, trades)
	return out
}

func day(t time.Time) string {
	return t.Format("2006-01-02")
}
