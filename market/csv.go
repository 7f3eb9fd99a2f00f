package market

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// Loader materializes one ticker's daily series from wherever the data
// lives. Implementations must be safe for concurrent use; Store calls
// Load from its preload worker pool.
type Loader interface {
	Load(ctx context.Context, ticker string) (*Series, error)
}

// CSVLoader reads <Dir>/<TICKER>.csv files in the layout
// Date,Open,High,Low,Close,Volume,Error (Error is 0/1). A missing file
// yields an empty series rather than an error: every lookup against it
// misses, which the consumers count and skip.
type CSVLoader struct {
	Dir string

	badLines atomic.Int64
}

const csvDateLayout = "2006-01-02"

func (l *CSVLoader) Load(ctx context.Context, ticker string) (*Series, error) {
	ticker = strings.ToUpper(ticker)

	f, err := os.Open(filepath.Join(l.Dir, ticker+".csv"))
	if os.IsNotExist(err) {
		return NewSeries(ticker, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", ticker, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 7

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", ticker, err)
	}

	var bars []Bar
	for i, row := range rows {
		if i == 0 && strings.EqualFold(row[0], "date") {
			continue
		}

		bar, ok := parseBarRow(row)
		if !ok {
			l.badLines.Add(1)
			continue
		}
		bars = append(bars, bar)
	}

	return NewSeries(ticker, bars), nil
}

// BadLines reports how many rows were dropped during parsing.
func (l *CSVLoader) BadLines() int64 { return l.badLines.Load() }

func parseBarRow(row []string) (Bar, bool) {
	date, err := time.ParseInLocation(csvDateLayout, row[0], time.UTC)
	if err != nil {
		return Bar{}, false
	}

	prices := make([]float64, 4)
	for i := 1; i <= 4; i++ {
		prices[i-1], err = strconv.ParseFloat(row[i], 64)
		if err != nil {
			return Bar{}, false
		}
	}

	vol, err := strconv.ParseInt(row[5], 10, 64)
	if err != nil {
		return Bar{}, false
	}

	return Bar{
		Date:   date,
		Open:   prices[0],
		High:   prices[1],
		Low:    prices[2],
		Close:  prices[3],
		Volume: vol,
		Err:    row[6] == "1" || strings.EqualFold(row[6], "true"),
	}, true
}

// WriteCSV saves a series back in the same layout the loader reads.
// Rolling fields are recomputed on load, so only raw bars are written.
func WriteCSV(dir string, s *Series) error {
	f, err := os.Create(filepath.Join(dir, strings.ToUpper(s.Ticker)+".csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Date", "Open", "High", "Low", "Close", "Volume", "Error"}); err != nil {
		return err
	}

	for _, b := range s.Bars {
		errFlag := "0"
		if b.Err {
			errFlag = "1"
		}
		err := w.Write([]string{
			b.Date.Format(csvDateLayout),
			fprice(b.Open), fprice(b.High), fprice(b.Low), fprice(b.Close),
			strconv.FormatInt(b.Volume, 10),
			errFlag,
		})
		if err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fprice(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
