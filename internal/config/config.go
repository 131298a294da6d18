// Package config loads the YAML configuration file and applies environment
// variable overrides.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"saturn/internal/risk"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the saturn platform.
type Config struct {
	Storage  Storage        `yaml:"storage"`
	Server   Server         `yaml:"server"`
	Logging  Logging        `yaml:"logging"`
	Gather   GatherConfig   `yaml:"gather"`
	Backtest BacktestConfig `yaml:"backtest"`
}

// Storage holds paths and backend selection for data persistence.
type Storage struct {
	// Backend selects the bar store: "parquet" (default) or "sqlite".
	Backend    string `yaml:"backend"`
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Server holds network listener configuration.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns the host:port listen address.
func (s Server) Addr() string { return fmt.Sprintf("%s:%d", s.Host, s.Port) }

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// GatherConfig controls the daily candle gathering job.
type GatherConfig struct {
	Products        []string `yaml:"products"`
	StartDate       string   `yaml:"start_date"`
	MaxWorkers      int      `yaml:"max_workers"`
	RateLimitPerMin int      `yaml:"rate_limit_per_min"`
	BaseURL         string   `yaml:"base_url"`
}

// BacktestConfig defines one backtest run: universe, capital, schedule, and
// constraint parameters. Strategies lists catalog kind names applied to
// every product.
type BacktestConfig struct {
	Products       []string `yaml:"products"`
	Strategies     []string `yaml:"strategies"`
	StartDate      string   `yaml:"start_date"`
	EndDate        string   `yaml:"end_date"`
	InitialCash    float64  `yaml:"initial_cash"`
	CommissionRate float64  `yaml:"commission_rate"`
	WarmUp         int      `yaml:"warm_up"`

	GrowthAmount    float64 `yaml:"growth_amount"`
	GrowthPct       float64 `yaml:"growth_pct"`
	GrowthFrequency string  `yaml:"growth_frequency"`

	AssetParams     risk.AssetParams     `yaml:"asset_params"`
	PortfolioParams risk.PortfolioParams `yaml:"portfolio_params"`

	ReportDir string `yaml:"report_dir"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, and then applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// Default returns the built-in configuration, used as the base for Load and
// directly when no config file is given.
func Default() *Config {
	return &Config{
		Storage: Storage{
			Backend:    "parquet",
			DataDir:    "data",
			SQLitePath: "data/saturn.db",
		},
		Server: Server{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
		},
		Gather: GatherConfig{
			StartDate:       "2020-01-01",
			MaxWorkers:      4,
			RateLimitPerMin: 300,
		},
		Backtest: BacktestConfig{
			InitialCash:     100_000,
			CommissionRate:  0.001,
			WarmUp:          50,
			AssetParams:     risk.DefaultAssetParams(),
			PortfolioParams: risk.DefaultPortfolioParams(),
		},
	}
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SATURN_DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}

	if v := os.Getenv("SATURN_SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}

	if v := os.Getenv("SATURN_SERVER_ADDR"); v != "" {
		if host, port, err := net.SplitHostPort(v); err == nil {
			cfg.Server.Host = host
			if p, err := strconv.Atoi(port); err == nil {
				cfg.Server.Port = p
			}
		}
	}

	if v := os.Getenv("SATURN_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
