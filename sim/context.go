package sim

import (
	"time"

	"github.com/rustyeddy/earnings/broker"
	"github.com/rustyeddy/earnings/events"
	"github.com/rustyeddy/earnings/market"
)

// Context is the strategy's window into one trading day.
type Context struct {
	engine *Engine
}

func (c *Context) Date() time.Time { return c.engine.current }

// Events returns the events whose entry date is today, nil when none.
func (c *Context) Events() []*events.Event {
	return c.engine.deps.Events.On(c.engine.current)
}

// Bar looks up a ticker's bar for today.
func (c *Context) Bar(ticker string) (market.Bar, bool) {
	return c.engine.deps.Bars.Bar(ticker, c.engine.current)
}

func (c *Context) Broker() *broker.Broker { return c.engine.deps.Broker }

func (c *Context) DayBP() float64       { return c.engine.DayBP() }
func (c *Context) OvernightBP() float64 { return c.engine.OvernightBP() }
func (c *Context) ActiveLongs() int     { return c.engine.ActiveLongs() }
func (c *Context) ActiveShorts() int    { return c.engine.ActiveShorts() }

func (c *Context) OpenTrade(req TradeRequest) { c.engine.OpenTrade(req) }

func (c *Context) NoteMarginShortfall(day, overnight bool) {
	c.engine.NoteMarginShortfall(day, overnight)
}
