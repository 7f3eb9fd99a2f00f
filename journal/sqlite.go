package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(run_id, trade_id, ticker, direction, volume, entry_price, exit_price, entry_date, exit_date, commission, realized_pl, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.RunID, t.TradeID, t.Ticker, t.Direction, t.Volume,
		t.EntryPrice, t.ExitPrice, t.EntryDate, t.ExitDate,
		t.Commission, t.RealizedPL, t.Reason,
	)
	return err
}

func (j *SQLite) RecordDay(d DayRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO days
		(run_id, date, balance, drawdown, open_longs, open_shorts)
		VALUES (?, ?, ?, ?, ?, ?)`,
		d.RunID, d.Date, d.Balance, d.Drawdown, d.OpenLongs, d.OpenShorts,
	)
	return err
}

func (j *SQLite) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, name, start_date, end_date, start_balance, gross_balance, net_balance, trades, max_drawdown)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Name, r.Start, r.End,
		r.StartBalance, r.GrossBalance, r.NetBalance, r.Trades, r.MaxDrawdown,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
