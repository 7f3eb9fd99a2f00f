package market

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BarSource is the lookup the simulation core and the event validator
// depend on. Missing bars are an expected condition, not an error.
type BarSource interface {
	Bar(ticker string, date time.Time) (Bar, bool)
}

var _ BarSource = (*Store)(nil)

// Store is a read-through cache of loaded series. Populate it up front
// with Preload (or a snapshot) so the simulation never blocks on I/O;
// lazy population during a run still works and is lock-guarded.
type Store struct {
	mu     sync.Mutex
	loader Loader
	series map[string]*Series
	log    *zap.SugaredLogger
}

func NewStore(loader Loader, log *zap.SugaredLogger) *Store {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Store{
		loader: loader,
		series: make(map[string]*Series),
		log:    log,
	}
}

// Series returns the history for a ticker, loading it on first use.
func (s *Store) Series(ctx context.Context, ticker string) (*Series, error) {
	ticker = strings.ToUpper(ticker)

	s.mu.Lock()
	if sr, ok := s.series[ticker]; ok {
		s.mu.Unlock()
		return sr, nil
	}
	s.mu.Unlock()

	sr, err := s.loader.Load(ctx, ticker)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	// Another goroutine may have loaded it meanwhile; keep the first.
	if prev, ok := s.series[ticker]; ok {
		sr = prev
	} else {
		s.series[ticker] = sr
	}
	s.mu.Unlock()

	return sr, nil
}

// Bar looks up a single daily bar. A loader failure is a data gap: it
// is logged, an empty series is cached so the failure is not retried,
// and the lookup reports a miss.
func (s *Store) Bar(ticker string, date time.Time) (Bar, bool) {
	sr, err := s.Series(context.Background(), ticker)
	if err != nil {
		s.log.Errorw("bar load failed", "ticker", ticker, "err", err)
		s.mu.Lock()
		s.series[strings.ToUpper(ticker)] = NewSeries(ticker, nil)
		s.mu.Unlock()
		return Bar{}, false
	}
	return sr.Bar(date)
}

// Preload materializes the given tickers with a bounded worker pool.
// The pool exists for load time only; once Preload returns, every
// reader sees fully-built immutable series.
func (s *Store) Preload(ctx context.Context, tickers []string, workers int) error {
	if workers <= 0 {
		workers = 8
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, ticker := range tickers {
		ticker := ticker
		g.Go(func() error {
			_, err := s.Series(ctx, ticker)
			return err
		})
	}

	return g.Wait()
}

// Tickers lists everything currently cached, unordered.
func (s *Store) Tickers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.series))
	for t := range s.series {
		out = append(out, t)
	}
	return out
}

func (s *Store) put(sr *Series) {
	s.mu.Lock()
	s.series[strings.ToUpper(sr.Ticker)] = sr
	s.mu.Unlock()
}
