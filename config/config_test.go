package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, "csv", cfg.Data.Source)
	assert.Equal(t, "portfolio123", cfg.Events.Source)
	assert.Equal(t, "ib_cfd_strict", cfg.Broker.Profile)
	assert.Equal(t, 10000.0, cfg.Sim.StartBalance)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC), cfg.StartDate())
}

func TestValidate(t *testing.T) {
	mod := func(f func(*Config)) *Config {
		cfg := Default()
		f(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid config",
			config:  Default(),
			wantErr: false,
		},
		{
			name:    "unknown data source",
			config:  mod(func(c *Config) { c.Data.Source = "parquet" }),
			wantErr: true,
			errMsg:  "unknown data source: parquet",
		},
		{
			name:    "clickhouse needs dsn",
			config:  mod(func(c *Config) { c.Data.Source = "clickhouse" }),
			wantErr: true,
			errMsg:  "data.clickhouse_dsn required",
		},
		{
			name:    "unknown events source",
			config:  mod(func(c *Config) { c.Events.Source = "bloomberg" }),
			wantErr: true,
			errMsg:  "unknown events source: bloomberg",
		},
		{
			name: "postgres events need dsn",
			config: mod(func(c *Config) {
				c.Events.Source = "postgres"
				c.Events.PostgresDSN = ""
			}),
			wantErr: true,
			errMsg:  "events.postgres_dsn required",
		},
		{
			name:    "unknown broker profile",
			config:  mod(func(c *Config) { c.Broker.Profile = "etrade" }),
			wantErr: true,
			errMsg:  "unknown broker profile: etrade",
		},
		{
			name:    "bad start date",
			config:  mod(func(c *Config) { c.Sim.Start = "01/02/2012" }),
			wantErr: true,
			errMsg:  "sim.start",
		},
		{
			name: "end before start",
			config: mod(func(c *Config) {
				c.Sim.Start = "2018-01-01"
				c.Sim.End = "2012-01-01"
			}),
			wantErr: true,
			errMsg:  "sim.end before sim.start",
		},
		{
			name:    "zero margins",
			config:  mod(func(c *Config) { c.Sim.DayMargin = 0 }),
			wantErr: true,
			errMsg:  "sim margins must be positive",
		},
		{
			name:    "zero portfolio",
			config:  mod(func(c *Config) { c.Strategy.PortfolioSize = 0 }),
			wantErr: true,
			errMsg:  "strategy.portfolio_size must be positive",
		},
		{
			name:    "unknown journal type",
			config:  mod(func(c *Config) { c.Journal.Type = "mongo" }),
			wantErr: true,
			errMsg:  "journal.type",
		},
		{
			name: "csv journal needs files",
			config: mod(func(c *Config) {
				c.Journal.Type = "csv"
			}),
			wantErr: true,
			errMsg:  "trades_file and days_file required",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadFromFileYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	data := `
data:
  source: csv
  base_dir: testdata/bars
events:
  source: estimize
  path: testdata/events.csv
broker:
  profile: ib_tiered
sim:
  start_balance: 5000
  start: "2014-01-01"
  end: "2015-01-01"
  day_margin: 2
  overnight_margin: 2
  slippage: 0.05
strategy:
  name: Earnings
  price_min: 5
  price_max: 100
  portfolio_size: 10
  max_volume: 5000
  long_same_day: true
journal:
  type: none
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "estimize", cfg.Events.Source)
	assert.Equal(t, "ib_tiered", cfg.Broker.Profile)
	assert.Equal(t, 5000.0, cfg.Sim.StartBalance)
	assert.Equal(t, 0.05, cfg.Sim.Slippage)
	assert.Equal(t, 10, cfg.Strategy.PortfolioSize)
}

func TestLoadFromFileJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := Default()
	cfg.Sim.StartBalance = 7500
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 7500.0, loaded.Sim.StartBalance)
	assert.Equal(t, cfg.Events.Source, loaded.Events.Source)
}

func TestLoadFromFileInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data:\n  source: nowhere\n"), 0o644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)

	_, err = LoadFromFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
