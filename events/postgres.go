package events

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSource reads canonical events from a Postgres table with the
// columns (ticker text, date date, timing text, event_type text,
// eps_con/eps_act/rev_con/rev_act double precision null). Teams that
// keep their earnings history in a database use this instead of the
// CSV feeds.
type PostgresSource struct {
	pool  *pgxpool.Pool
	table string
}

func NewPostgresSource(ctx context.Context, dsn, table string) (*PostgresSource, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if table == "" {
		table = "earnings_events"
	}
	return &PostgresSource{pool: pool, table: table}, nil
}

// Load fetches every row, then validates and buckets through the same
// pipeline as the CSV feeds.
func (s *PostgresSource) Load(ctx context.Context, v *Validator) ([]string, Buckets, error) {
	query := fmt.Sprintf(
		"SELECT ticker, date, timing, event_type, eps_con, eps_act, rev_con, rev_act FROM %s ORDER BY date, ticker",
		s.table)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var raws []*Event
	for rows.Next() {
		var (
			e         Event
			date      time.Time
			timing    string
			eventType string
		)
		err := rows.Scan(&e.Ticker, &date, &timing, &eventType,
			&e.EPSCon, &e.EPSAct, &e.RevCon, &e.RevAct)
		if err != nil {
			return nil, nil, fmt.Errorf("scan event: %w", err)
		}

		e.Date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

		tm, ok := ParseTiming(timing)
		if !ok {
			v.Counters.InvalidEvents++
			v.Log.Errorw("invalid event timing", "ticker", e.Ticker, "value", timing)
			continue
		}
		e.Timing = tm

		if eventType == EPSAndRev.String() {
			e.Type = EPSAndRev
		} else {
			e.Type = EPSOnly
		}

		raws = append(raws, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("read events: %w", err)
	}

	tickers, buckets := v.BucketAll(raws)
	return tickers, buckets, nil
}

func (s *PostgresSource) Close() { s.pool.Close() }
