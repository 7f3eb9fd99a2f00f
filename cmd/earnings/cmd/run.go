package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/earnings/broker"
	"github.com/rustyeddy/earnings/calendar"
	"github.com/rustyeddy/earnings/config"
	"github.com/rustyeddy/earnings/events"
	"github.com/rustyeddy/earnings/internal/logging"
	"github.com/rustyeddy/earnings/journal"
	"github.com/rustyeddy/earnings/market"
	"github.com/rustyeddy/earnings/report"
	"github.com/rustyeddy/earnings/sim"
	"github.com/rustyeddy/earnings/strategy"
)

var (
	runConfigPath string
	runWorkers    int
	runStart      string
	runEnd        string
	runBalance    float64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest",
	Long:  `Run a full backtest: load bars and events, replay the window day by day and print the report.`,
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON)")
	runCmd.Flags().IntVar(&runWorkers, "workers", 8, "parallel loaders when preloading price series")
	runCmd.Flags().StringVar(&runStart, "start", "", "override start date (YYYY-MM-DD)")
	runCmd.Flags().StringVar(&runEnd, "end", "", "override end date (YYYY-MM-DD)")
	runCmd.Flags().Float64Var(&runBalance, "balance", 0, "override starting balance")
	_ = runCmd.MarkFlagRequired("config")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return err
	}
	if runStart != "" {
		cfg.Sim.Start = runStart
	}
	if runEnd != "" {
		cfg.Sim.End = runEnd
	}
	if runBalance != 0 {
		cfg.Sim.StartBalance = runBalance
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := cmd.Context()

	store, closeData, err := openData(ctx, cfg, log.Named("data"))
	if err != nil {
		return err
	}
	defer closeData()

	bkr, err := openBroker(cfg)
	if err != nil {
		return err
	}

	validator := &events.Validator{
		Cal:  calendar.US{},
		Bars: store,
		Log:  log.Named("events"),
	}
	buckets, err := loadEvents(ctx, cfg, validator, log.Named("events"))
	if err != nil {
		return err
	}

	jnl, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer jnl.Close()

	engine := sim.NewEngine(sim.Config{
		StartBalance:    cfg.Sim.StartBalance,
		Start:           cfg.StartDate(),
		End:             cfg.EndDate(),
		DayMargin:       cfg.Sim.DayMargin,
		OvernightMargin: cfg.Sim.OvernightMargin,
		Slippage:        cfg.Sim.Slippage,
	}, sim.Deps{
		Calendar: calendar.US{},
		Bars:     store,
		Broker:   bkr,
		Events:   buckets,
		Journal:  jnl,
		Log:      log.Named("sim"),
	})

	policy := strategy.NewEarnings(strategy.EarningsConfig{
		Name:          cfg.Strategy.Name,
		PriceMin:      cfg.Strategy.PriceMin,
		PriceMax:      cfg.Strategy.PriceMax,
		MinAvgVolume:  cfg.Strategy.MinAvgVolume,
		PortfolioSize: cfg.Strategy.PortfolioSize,
		MaxVolume:     cfg.Strategy.MaxVolume,
		LongSameDay:   cfg.Strategy.LongSameDay,
	}, log.Named("strategy"))

	result := engine.Run(policy)

	lines := report.Generate(report.Input{
		DataFeed:        cfg.Data.Source,
		EventsFeed:      cfg.Events.Source,
		Broker:          cfg.Broker.Profile,
		DayMargin:       cfg.Sim.DayMargin,
		OvernightMargin: cfg.Sim.OvernightMargin,
		Result:          result,
		Validation:      validator.Counters,
	})
	return report.Render(os.Stdout, lines)
}

// openData builds the bar store for the configured source. The
// returned closer releases the underlying connection, if any.
func openData(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*market.Store, func(), error) {
	switch cfg.Data.Source {
	case "clickhouse":
		loader, err := market.NewClickHouseLoader(ctx, os.ExpandEnv(cfg.Data.ClickHouseDSN), cfg.Data.Table)
		if err != nil {
			return nil, nil, fmt.Errorf("open clickhouse: %w", err)
		}
		return market.NewStore(loader, log), func() { loader.Close() }, nil

	default: // "csv", validated by config
		store := market.NewStore(&market.CSVLoader{Dir: cfg.Data.BaseDir}, log)
		if cfg.Data.SnapshotDir != "" {
			if err := store.EnsureSnapshot(ctx, cfg.Data.SnapshotDir, cfg.Data.BaseDir, runWorkers); err != nil {
				return nil, nil, fmt.Errorf("price snapshot: %w", err)
			}
		}
		return store, func() {}, nil
	}
}

func openBroker(cfg *config.Config) (*broker.Broker, error) {
	b, err := broker.New(broker.Profile(cfg.Broker.Profile))
	if err != nil {
		return nil, err
	}
	if cfg.Broker.CFDListPath != "" {
		avail, err := broker.LoadAvailability(cfg.Broker.CFDListPath)
		if err != nil {
			return nil, fmt.Errorf("load cfd list: %w", err)
		}
		b.SetAvailability(avail)
	}
	return b, nil
}

// loadEvents validates the configured events feed into day buckets.
// CSV feeds go through the gob cache when a cache dir is configured:
// validation walks every ticker's bars, which is the slow part of
// startup on large event files.
func loadEvents(ctx context.Context, cfg *config.Config, v *events.Validator, log *zap.SugaredLogger) (events.Buckets, error) {
	if cfg.Events.Source == "postgres" {
		src, err := events.NewPostgresSource(ctx, os.ExpandEnv(cfg.Events.PostgresDSN), cfg.Events.Table)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		defer src.Close()

		_, buckets, err := src.Load(ctx, v)
		return buckets, err
	}

	spec, err := events.Source(cfg.Events.Source)
	if err != nil {
		return nil, err
	}

	cachePath := ""
	hash := ""
	if cfg.Events.CacheDir != "" {
		hash, err = events.FileHash(cfg.Events.Path, cfg.Data.BaseDir)
		if err != nil {
			return nil, fmt.Errorf("hash events file: %w", err)
		}
		cachePath = filepath.Join(cfg.Events.CacheDir, "events.gob")

		buckets, counters, ok, err := events.LoadCache(cachePath, hash)
		if err != nil {
			log.Warnw("events cache unreadable, rebuilding", "path", cachePath, "error", err)
		} else if ok {
			log.Infow("events loaded from cache", "path", cachePath)
			v.Counters = counters
			return buckets, nil
		}
	}

	_, buckets, err := events.LoadCSV(cfg.Events.Path, spec, v)
	if err != nil {
		return nil, err
	}

	if cachePath != "" {
		if err := os.MkdirAll(cfg.Events.CacheDir, 0o755); err != nil {
			return nil, err
		}
		if err := events.SaveCache(cachePath, hash, buckets, v.Counters); err != nil {
			log.Warnw("events cache not saved", "path", cachePath, "error", err)
		}
	}
	return buckets, nil
}

func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "csv":
		return journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.DaysFile)
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	default: // "none", validated by config
		return journal.Nop{}, nil
	}
}
