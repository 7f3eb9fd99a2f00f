// Package config is the single configuration surface for a backtest
// run: where bars and events come from, which broker profile prices
// fills, the simulation window and the strategy knobs.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/earnings/broker"
	"github.com/rustyeddy/earnings/events"
)

const dateLayout = "2006-01-02"

// Config represents the complete backtest configuration
type Config struct {
	Data     DataConfig     `json:"data" yaml:"data"`
	Events   EventsConfig   `json:"events" yaml:"events"`
	Broker   BrokerConfig   `json:"broker" yaml:"broker"`
	Sim      SimConfig      `json:"sim" yaml:"sim"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	LogLevel string         `json:"log_level,omitempty" yaml:"log_level,omitempty"`
}

// DataConfig says where daily bars come from
type DataConfig struct {
	Source        string `json:"source" yaml:"source"` // "csv" or "clickhouse"
	BaseDir       string `json:"base_dir,omitempty" yaml:"base_dir,omitempty"`
	SnapshotDir   string `json:"snapshot_dir,omitempty" yaml:"snapshot_dir,omitempty"`
	ClickHouseDSN string `json:"clickhouse_dsn,omitempty" yaml:"clickhouse_dsn,omitempty"`
	Table         string `json:"table,omitempty" yaml:"table,omitempty"`
}

// EventsConfig says where earnings events come from
type EventsConfig struct {
	Source      string `json:"source" yaml:"source"` // a CSV source name or "postgres"
	Path        string `json:"path,omitempty" yaml:"path,omitempty"`
	PostgresDSN string `json:"postgres_dsn,omitempty" yaml:"postgres_dsn,omitempty"`
	Table       string `json:"table,omitempty" yaml:"table,omitempty"`
	CacheDir    string `json:"cache_dir,omitempty" yaml:"cache_dir,omitempty"`
}

type BrokerConfig struct {
	Profile     string `json:"profile" yaml:"profile"`
	CFDListPath string `json:"cfd_list_path,omitempty" yaml:"cfd_list_path,omitempty"`
}

// SimConfig contains the simulation window and margin model
type SimConfig struct {
	StartBalance    float64 `json:"start_balance" yaml:"start_balance"`
	Start           string  `json:"start" yaml:"start"` // 2006-01-02
	End             string  `json:"end" yaml:"end"`
	DayMargin       float64 `json:"day_margin" yaml:"day_margin"`
	OvernightMargin float64 `json:"overnight_margin" yaml:"overnight_margin"`
	Slippage        float64 `json:"slippage,omitempty" yaml:"slippage,omitempty"`
}

// StrategyConfig contains the earnings policy knobs
type StrategyConfig struct {
	Name          string  `json:"name" yaml:"name"`
	PriceMin      float64 `json:"price_min" yaml:"price_min"`
	PriceMax      float64 `json:"price_max" yaml:"price_max"`
	MinAvgVolume  float64 `json:"min_avg_volume,omitempty" yaml:"min_avg_volume,omitempty"`
	PortfolioSize int     `json:"portfolio_size" yaml:"portfolio_size"`
	MaxVolume     int     `json:"max_volume" yaml:"max_volume"`
	LongSameDay   bool    `json:"long_same_day" yaml:"long_same_day"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	DaysFile   string `json:"days_file,omitempty" yaml:"days_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML or JSON)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (format by extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if (len(path) > 5 && path[len(path)-5:] == ".yaml") || (len(path) > 4 && path[len(path)-4:] == ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// StartDate parses the simulation start. Validate must have passed.
func (c *Config) StartDate() time.Time {
	t, _ := time.Parse(dateLayout, c.Sim.Start)
	return t
}

func (c *Config) EndDate() time.Time {
	t, _ := time.Parse(dateLayout, c.Sim.End)
	return t
}

// Validate checks if the configuration is valid. Unknown source,
// profile and journal names are configuration errors that abort the
// run.
func (c *Config) Validate() error {
	switch c.Data.Source {
	case "csv":
		if c.Data.BaseDir == "" {
			return fmt.Errorf("data.base_dir required for csv source")
		}
	case "clickhouse":
		if c.Data.ClickHouseDSN == "" {
			return fmt.Errorf("data.clickhouse_dsn required for clickhouse source")
		}
	default:
		return fmt.Errorf("unknown data source: %s", c.Data.Source)
	}

	if c.Events.Source == "postgres" {
		if c.Events.PostgresDSN == "" {
			return fmt.Errorf("events.postgres_dsn required for postgres source")
		}
	} else {
		if _, err := events.Source(c.Events.Source); err != nil {
			return fmt.Errorf("unknown events source: %s", c.Events.Source)
		}
		if c.Events.Path == "" {
			return fmt.Errorf("events.path is required")
		}
	}

	if _, err := broker.New(broker.Profile(c.Broker.Profile)); err != nil {
		return fmt.Errorf("unknown broker profile: %s", c.Broker.Profile)
	}

	if c.Sim.StartBalance <= 0 {
		return fmt.Errorf("sim.start_balance must be positive")
	}
	start, err := time.Parse(dateLayout, c.Sim.Start)
	if err != nil {
		return fmt.Errorf("sim.start: %w", err)
	}
	end, err := time.Parse(dateLayout, c.Sim.End)
	if err != nil {
		return fmt.Errorf("sim.end: %w", err)
	}
	if end.Before(start) {
		return fmt.Errorf("sim.end before sim.start")
	}
	if c.Sim.DayMargin <= 0 || c.Sim.OvernightMargin <= 0 {
		return fmt.Errorf("sim margins must be positive")
	}
	if c.Sim.Slippage < 0 {
		return fmt.Errorf("sim.slippage must not be negative")
	}

	if c.Strategy.PriceMin < 0 || c.Strategy.PriceMax < c.Strategy.PriceMin {
		return fmt.Errorf("strategy price range is invalid")
	}
	if c.Strategy.PortfolioSize <= 0 {
		return fmt.Errorf("strategy.portfolio_size must be positive")
	}
	if c.Strategy.MaxVolume <= 0 {
		return fmt.Errorf("strategy.max_volume must be positive")
	}

	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.DaysFile == "" {
			return fmt.Errorf("journal trades_file and days_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}

	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Source:  "csv",
			BaseDir: "data/daily",
		},
		Events: EventsConfig{
			Source: "portfolio123",
			Path:   "data/events/portfolio123.csv",
		},
		Broker: BrokerConfig{
			Profile: string(broker.IBCFDStrict),
		},
		Sim: SimConfig{
			StartBalance:    10000,
			Start:           "2012-01-01",
			End:             "2018-09-01",
			DayMargin:       4,
			OvernightMargin: 4,
		},
		Strategy: StrategyConfig{
			Name:          "Earnings",
			PriceMin:      5,
			PriceMax:      100,
			PortfolioSize: 20,
			MaxVolume:     15000,
			LongSameDay:   true,
		},
		Journal: JournalConfig{
			Type: "none",
		},
		LogLevel: "info",
	}
}
