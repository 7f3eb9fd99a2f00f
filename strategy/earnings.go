// Package strategy holds trading policies run against the simulation
// engine. Earnings is the reference policy: trade the open after an
// earnings surprise, long beats and short misses, sized across a fixed
// portfolio of slots.
package strategy

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/rustyeddy/earnings/events"
	"github.com/rustyeddy/earnings/sim"
)

// Candidate is a ranked event with the side it would be traded on.
type Candidate struct {
	Event *events.Event
	Rank  float64
	Side  sim.Direction
}

type EarningsConfig struct {
	Name          string
	PriceMin      float64
	PriceMax      float64
	MinAvgVolume  float64
	PortfolioSize int
	MaxVolume     int
	LongSameDay   bool
}

func DefaultEarningsConfig() EarningsConfig {
	return EarningsConfig{
		Name:          "Earnings",
		PriceMin:      5,
		PriceMax:      100,
		MinAvgVolume:  0,
		PortfolioSize: 20,
		MaxVolume:     15000,
		LongSameDay:   true,
	}
}

type Earnings struct {
	cfg EarningsConfig
	log *zap.SugaredLogger

	smallVolumeSkipped int
}

func NewEarnings(cfg EarningsConfig, log *zap.SugaredLogger) *Earnings {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Earnings{cfg: cfg, log: log}
}

func (s *Earnings) Name() string { return s.cfg.Name }

// rank scores the day's events. A positive surprise ranks above 1 and
// trades long, a negative one below -1 and trades short. Longs that
// would be held overnight need a known next trading session.
func (s *Earnings) rank(evs []*events.Event) (longs, shorts []Candidate) {
	for _, e := range evs {
		eps, ok := e.EPSChange()
		if !ok {
			continue
		}

		switch e.Type {
		case events.EPSOnly:
			if eps > 0 && (s.cfg.LongSameDay || e.HasNextDate()) {
				longs = append(longs, Candidate{Event: e, Rank: eps + 1, Side: sim.Long})
			} else if eps < 0 {
				shorts = append(shorts, Candidate{Event: e, Rank: eps - 1, Side: sim.Short})
			}

		case events.EPSAndRev:
			rev, ok := e.RevChange()
			if !ok {
				continue
			}
			if eps > 0 && rev > 0 && (s.cfg.LongSameDay || e.HasNextDate()) {
				longs = append(longs, Candidate{Event: e, Rank: (eps + 1) * (rev + 1), Side: sim.Long})
			} else if eps < 0 && rev < 0 {
				shorts = append(shorts, Candidate{Event: e, Rank: -math.Abs((eps - 1) * (rev - 1)), Side: sim.Short})
			}
		}
	}

	sort.SliceStable(longs, func(i, j int) bool { return longs[i].Rank > longs[j].Rank })
	sort.SliceStable(shorts, func(i, j int) bool { return shorts[i].Rank < shorts[j].Rank })
	return longs, shorts
}

func (s *Earnings) filterAvailable(ctx *sim.Context, cands []Candidate) []Candidate {
	out := cands[:0]
	for _, c := range cands {
		if ctx.Broker().Available(c.Event.Ticker) {
			out = append(out, c)
		}
	}
	return out
}

func (s *Earnings) filterPrice(ctx *sim.Context, cands []Candidate) []Candidate {
	out := cands[:0]
	for _, c := range cands {
		bar, ok := ctx.Bar(c.Event.Ticker)
		if !ok {
			continue
		}
		if s.cfg.PriceMin <= bar.Open && bar.Open <= s.cfg.PriceMax {
			out = append(out, c)
		} else {
			s.log.Warnw("skipped event, price not in range",
				"ticker", c.Event.Ticker, "open", bar.Open)
		}
	}
	return out
}

func (s *Earnings) filterVolume(ctx *sim.Context, cands []Candidate) []Candidate {
	out := cands[:0]
	for _, c := range cands {
		bar, ok := ctx.Bar(c.Event.Ticker)
		if !ok {
			continue
		}
		if math.IsNaN(bar.AvgVolume) {
			s.log.Warnw("skipped event, no volume data", "ticker", c.Event.Ticker)
			continue
		}
		if bar.AvgVolume < s.cfg.MinAvgVolume {
			s.smallVolumeSkipped++
			s.log.Warnw("skipped event, average volume too small",
				"ticker", c.Event.Ticker, "avg_volume", bar.AvgVolume, "min", s.cfg.MinAvgVolume)
			continue
		}
		out = append(out, c)
	}
	return out
}

func (s *Earnings) OnDay(ctx *sim.Context) {
	evs := ctx.Events()
	if len(evs) == 0 {
		return
	}

	longs, shorts := s.rank(evs)
	longs = s.filterVolume(ctx, s.filterPrice(ctx, s.filterAvailable(ctx, longs)))
	shorts = s.filterVolume(ctx, s.filterPrice(ctx, s.filterAvailable(ctx, shorts)))

	cLong, cShort := len(longs), len(shorts)
	if cLong+cShort == 0 {
		return
	}

	posLeft := s.cfg.PortfolioSize - ctx.ActiveLongs() - ctx.ActiveShorts()
	if posLeft <= 0 {
		return
	}

	// Too many candidates for the open slots: split the slots between
	// sides in proportion to candidate counts, best ranked first. The
	// long share truncates, so the odd slot goes to the shorts.
	var picks []Candidate
	if cLong+cShort <= posLeft {
		picks = append(longs, shorts...)
	} else {
		pLong := float64(cLong) / float64(cLong+cShort)
		nLong := int(float64(posLeft) * pLong)
		picks = append(longs[:nLong], shorts[:posLeft-nLong]...)
	}

	dayBP := math.Max(0, ctx.DayBP())
	overnightBP := math.Max(0, ctx.OvernightBP())
	bp := dayBP
	if !s.cfg.LongSameDay {
		bp = math.Min(dayBP, overnightBP)
	}
	if bp == 0 {
		ctx.NoteMarginShortfall(dayBP == 0, !s.cfg.LongSameDay && overnightBP == 0)
		return
	}
	posRisk := bp / float64(posLeft)

	for _, c := range picks {
		bar, ok := ctx.Bar(c.Event.Ticker)
		if !ok {
			continue
		}

		b := ctx.Broker()
		volume := b.LotVolume(b.MaxAffordableVolume(posRisk, bar.Open))
		if volume > s.cfg.MaxVolume {
			volume = s.cfg.MaxVolume
		}
		if volume <= 0 {
			continue
		}

		exit := c.Event.EntryDate
		if c.Side == sim.Long && !s.cfg.LongSameDay {
			exit = c.Event.NextDate
		}

		ctx.OpenTrade(sim.TradeRequest{
			Ticker:    c.Event.Ticker,
			EntryDate: c.Event.EntryDate,
			ExitDate:  exit,
			Direction: c.Side,
			Price:     bar.Open,
			Stop:      bar.Open,
			Volume:    volume,
			PosRisk:   posRisk,
		})
	}
}

func (s *Earnings) OnFinish(add func(label, value string)) {
	add("Selected stocks range", fmt.Sprintf("$%.2f..$%.2f", s.cfg.PriceMin, s.cfg.PriceMax))
	add("Maximum volume per trade", fmt.Sprintf("%d", s.cfg.MaxVolume))
	add("Portfolio size", fmt.Sprintf("%d positions", s.cfg.PortfolioSize))
	add("Small average volume skipped", fmt.Sprintf("%d, volume < %.0f", s.smallVolumeSkipped, s.cfg.MinAvgVolume))
	if s.cfg.LongSameDay {
		add("Long exits", "same day")
	} else {
		add("Long exits", "next day")
	}
}
