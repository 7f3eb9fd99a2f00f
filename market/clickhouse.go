package market

import (
	"context"
	"fmt"
	"strings"
	"time"

	clickhouse "github.com/ClickHouse/clickhouse-go/v2"
)

// ClickHouseLoader serves daily bars from a ClickHouse table with the
// columns (ticker String, date Date, open/high/low/close Float64,
// volume Int64, error UInt8). Useful when the bar history is shared
// with other tooling instead of living in per-ticker CSV files.
type ClickHouseLoader struct {
	conn  clickhouse.Conn
	table string
}

func NewClickHouseLoader(ctx context.Context, dsn, table string) (*ClickHouseLoader, error) {
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("clickhouse dsn: %w", err)
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("clickhouse open: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}

	if table == "" {
		table = "daily_bars"
	}
	return &ClickHouseLoader{conn: conn, table: table}, nil
}

func (l *ClickHouseLoader) Load(ctx context.Context, ticker string) (*Series, error) {
	ticker = strings.ToUpper(ticker)

	query := fmt.Sprintf(
		"SELECT date, open, high, low, close, volume, error FROM %s WHERE ticker = ? ORDER BY date",
		l.table)

	rows, err := l.conn.Query(ctx, query, ticker)
	if err != nil {
		return nil, fmt.Errorf("clickhouse load %s: %w", ticker, err)
	}
	defer rows.Close()

	var bars []Bar
	for rows.Next() {
		var (
			date    time.Time
			bar     Bar
			errFlag uint8
		)
		if err := rows.Scan(&date, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume, &errFlag); err != nil {
			return nil, fmt.Errorf("clickhouse scan %s: %w", ticker, err)
		}
		bar.Date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
		bar.Err = errFlag != 0
		bars = append(bars, bar)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("clickhouse rows %s: %w", ticker, err)
	}

	return NewSeries(ticker, bars), nil
}

func (l *ClickHouseLoader) Close() error { return l.conn.Close() }
