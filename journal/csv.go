package journal

import (
	"encoding/csv"
	"os"
	"strconv"
)

const dateLayout = "2006-01-02"

// CSVJournal writes trades and day rows to two CSV files. Run records
// have no natural place in either file and are dropped.
type CSVJournal struct {
	trades *csv.Writer
	days   *csv.Writer
	tf, df *os.File
}

func NewCSV(tradesPath, daysPath string) (*CSVJournal, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	df, err := os.Create(daysPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	dw := csv.NewWriter(df)

	if err := tw.Write([]string{"run_id", "trade_id", "ticker", "direction", "volume", "entry_price", "exit_price", "entry_date", "exit_date", "commission", "realized_pl", "reason"}); err != nil {
		return nil, err
	}
	if err := dw.Write([]string{"run_id", "date", "balance", "drawdown", "open_longs", "open_shorts"}); err != nil {
		return nil, err
	}

	tw.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}
	dw.Flush()
	if err := dw.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{tw, dw, tf, df}, nil
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	j.trades.Write([]string{
		t.RunID,
		strconv.Itoa(t.TradeID),
		t.Ticker,
		t.Direction,
		strconv.Itoa(t.Volume),
		f(t.EntryPrice),
		f(t.ExitPrice),
		t.EntryDate.Format(dateLayout),
		t.ExitDate.Format(dateLayout),
		f(t.Commission),
		f(t.RealizedPL),
		t.Reason,
	})
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) RecordDay(d DayRecord) error {
	err := j.days.Write([]string{
		d.RunID,
		d.Date.Format(dateLayout),
		f(d.Balance),
		f(d.Drawdown),
		strconv.Itoa(d.OpenLongs),
		strconv.Itoa(d.OpenShorts),
	})
	if err != nil {
		return err
	}

	j.days.Flush()
	return j.days.Error()
}

func (j *CSVJournal) RecordRun(RunRecord) error { return nil }

func (j *CSVJournal) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.days.Flush()
	if err := j.days.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	if err := j.df.Close(); err != nil {
		return err
	}
	return nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
