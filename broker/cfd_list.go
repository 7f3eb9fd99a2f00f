package broker

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// Availability is the set of tickers offered as CFDs. Lookups are
// case-insensitive on the ticker.
type Availability struct {
	tickers map[string]struct{}
}

// NewAvailability builds a list from explicit tickers.
func NewAvailability(tickers ...string) *Availability {
	a := &Availability{tickers: make(map[string]struct{}, len(tickers))}
	for _, t := range tickers {
		a.tickers[strings.ToUpper(t)] = struct{}{}
	}
	return a
}

// LoadAvailability reads a product export where share rows look like
// "Share,TICKER,...". Rows whose first column is not "Share" are
// skipped, so the raw export can be loaded without preprocessing.
func LoadAvailability(path string) (*Availability, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cfd list: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	a := &Availability{tickers: make(map[string]struct{})}
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read cfd list %s: %w", path, err)
	}
	for _, row := range rows {
		if len(row) < 2 || row[0] != "Share" {
			continue
		}
		ticker := strings.ToUpper(strings.TrimSpace(row[1]))
		if ticker == "" {
			continue
		}
		a.tickers[ticker] = struct{}{}
	}
	return a, nil
}

func (a *Availability) Contains(ticker string) bool {
	_, ok := a.tickers[strings.ToUpper(ticker)]
	return ok
}

func (a *Availability) Len() int { return len(a.tickers) }
