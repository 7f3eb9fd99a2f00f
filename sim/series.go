package sim

import "time"

// Point is one daily observation in a balance or drawdown series.
type Point struct {
	Date  time.Time
	Value float64
}

// Series holds one value per trading day in date order. The first day
// of a run is seeded before any trading happens and then finalized
// with the day's closing value, so appending the same date twice
// overwrites instead of duplicating.
type Series []Point

func (s Series) Append(date time.Time, value float64) Series {
	if n := len(s); n > 0 && s[n-1].Date.Equal(date) {
		s[n-1].Value = value
		return s
	}
	return append(s, Point{Date: date, Value: value})
}

func (s Series) Max() float64 {
	var max float64
	for _, p := range s {
		if p.Value > max {
			max = p.Value
		}
	}
	return max
}

func (s Series) Last() (Point, bool) {
	if len(s) == 0 {
		return Point{}, false
	}
	return s[len(s)-1], true
}
