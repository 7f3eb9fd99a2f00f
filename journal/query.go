package journal

import (
	"database/sql"
	"fmt"
)

// Run returns the summary row for one run.
func (j *SQLite) Run(runID string) (RunRecord, error) {
	var rec RunRecord

	row := j.db.QueryRow(`
		SELECT run_id, name, start_date, end_date, start_balance, gross_balance, net_balance, trades, max_drawdown
		FROM runs
		WHERE run_id = ?`, runID)

	err := row.Scan(
		&rec.RunID,
		&rec.Name,
		&rec.Start,
		&rec.End,
		&rec.StartBalance,
		&rec.GrossBalance,
		&rec.NetBalance,
		&rec.Trades,
		&rec.MaxDrawdown,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return RunRecord{}, fmt.Errorf("run %q not found", runID)
		}
		return RunRecord{}, err
	}
	return rec, nil
}

// TradesByRun returns every trade closed during a run in exit order.
func (j *SQLite) TradesByRun(runID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, trade_id, ticker, direction, volume, entry_price, exit_price, entry_date, exit_date, commission, realized_pl, reason
		FROM trades
		WHERE run_id = ?
		ORDER BY exit_date ASC, trade_id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		if err := rows.Scan(
			&rec.RunID,
			&rec.TradeID,
			&rec.Ticker,
			&rec.Direction,
			&rec.Volume,
			&rec.EntryPrice,
			&rec.ExitPrice,
			&rec.EntryDate,
			&rec.ExitDate,
			&rec.Commission,
			&rec.RealizedPL,
			&rec.Reason,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DaysByRun returns the balance and drawdown rows for a run in date
// order.
func (j *SQLite) DaysByRun(runID string) ([]DayRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, date, balance, drawdown, open_longs, open_shorts
		FROM days
		WHERE run_id = ?
		ORDER BY date ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DayRecord
	for rows.Next() {
		var rec DayRecord
		if err := rows.Scan(
			&rec.RunID,
			&rec.Date,
			&rec.Balance,
			&rec.Drawdown,
			&rec.OpenLongs,
			&rec.OpenShorts,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
