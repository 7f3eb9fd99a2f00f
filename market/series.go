package market

import (
	"math"
	"sort"
	"time"
)

// Series is the full daily history for one ticker, in date order with
// O(1) date lookup. Bars are immutable once the series is built.
type Series struct {
	Ticker string
	Bars   []Bar

	index map[int64]int // unix seconds of the bar date
}

// NewSeries sorts the bars by date, computes the rolling fields and
// builds the lookup index.
func NewSeries(ticker string, bars []Bar) *Series {
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	s := &Series{Ticker: ticker, Bars: bars}
	s.preprocess()
	s.reindex()
	return s
}

// Bar returns the bar for the given date.
func (s *Series) Bar(date time.Time) (Bar, bool) {
	i, ok := s.index[date.Unix()]
	if !ok {
		return Bar{}, false
	}
	return s.Bars[i], true
}

// Len returns the number of bars.
func (s *Series) Len() int { return len(s.Bars) }

// preprocess fills the rolling ATR and AvgVolume fields the way the
// strategies expect them: NaN until the window has enough bars.
func (s *Series) preprocess() {
	var rangeSum, volSum float64
	for i := range s.Bars {
		rangeSum += s.Bars[i].High - s.Bars[i].Low
		volSum += float64(s.Bars[i].Volume)

		if i >= atrWindow {
			rangeSum -= s.Bars[i-atrWindow].High - s.Bars[i-atrWindow].Low
		}
		if i >= avgVolumeWindow {
			volSum -= float64(s.Bars[i-avgVolumeWindow].Volume)
		}

		if i >= atrWindow-1 {
			s.Bars[i].ATR = rangeSum / atrWindow
		} else {
			s.Bars[i].ATR = math.NaN()
		}
		if i >= avgVolumeWindow-1 {
			s.Bars[i].AvgVolume = volSum / avgVolumeWindow
		} else {
			s.Bars[i].AvgVolume = math.NaN()
		}
	}
}

// reindex rebuilds the date index. Needed after gob decoding, which
// only restores the exported fields.
func (s *Series) reindex() {
	s.index = make(map[int64]int, len(s.Bars))
	for i := range s.Bars {
		s.index[s.Bars[i].Date.Unix()] = i
	}
}
