package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete, immutable backtest configuration. It is built
// once and threaded explicitly through every component so parameter
// sweeps can run side by side without shared state.
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Session  SessionConfig  `json:"session" yaml:"session"`
	Costs    CostsConfig    `json:"costs" yaml:"costs"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Data     DataConfig     `json:"data" yaml:"data"`
}

// AccountConfig holds the portfolio starting point.
type AccountConfig struct {
	StartingCapital float64 `json:"starting_capital" yaml:"starting_capital"`
	RiskFreeRate    float64 `json:"risk_free_rate" yaml:"risk_free_rate"`
	// RefreshAllocations recomputes per-ticker allocation from running
	// capital after each close instead of holding the day-start split.
	// Off by default: the day's allocation stays fixed.
	RefreshAllocations bool `json:"refresh_allocations" yaml:"refresh_allocations"`
}

// StopMode selects how the stop distance is derived from the entry price.
type StopMode string

const (
	// StopPct uses stop_pct of the entry price directly.
	StopPct StopMode = "pct"
	// StopATR scales stop_pct by the bar's ATR_14, capped at max_atr.
	StopATR StopMode = "atr"
)

// StrategyConfig holds every strategy tunable. Nothing here is a code
// constant; variants are expressed as presets over these fields.
type StrategyConfig struct {
	OpeningRangeStart string `json:"opening_range_start" yaml:"opening_range_start"`
	OpeningRangeEnd   string `json:"opening_range_end" yaml:"opening_range_end"`

	// A window with at least PositiveHigh green bars classifies long;
	// at most PositiveLow green bars classifies short.
	PositiveHigh int `json:"positive_threshold_high" yaml:"positive_threshold_high"`
	PositiveLow  int `json:"positive_threshold_low" yaml:"positive_threshold_low"`

	ConfirmationPct float64  `json:"confirmation_pct" yaml:"confirmation_pct"`
	StopPct         float64  `json:"stop_pct" yaml:"stop_pct"`
	StopMode        StopMode `json:"stop_mode" yaml:"stop_mode"`
	MaxATR          float64  `json:"max_atr,omitempty" yaml:"max_atr,omitempty"`

	// MonitoringInterval coarsens the stop-loss scan (keep-last close
	// per interval). Empty or "1m" monitors every bar.
	MonitoringInterval string `json:"monitoring_interval,omitempty" yaml:"monitoring_interval,omitempty"`
}

// SessionConfig describes the trading session and half-day calendar.
type SessionConfig struct {
	Timezone     string   `json:"timezone" yaml:"timezone"`
	Close        string   `json:"close" yaml:"close"`
	HalfDayClose string   `json:"half_day_close" yaml:"half_day_close"`
	HalfDays     []string `json:"half_days,omitempty" yaml:"half_days,omitempty"`
}

// CostsConfig models commissions and short borrow cost.
type CostsConfig struct {
	CommissionPerShare float64 `json:"commission_per_share" yaml:"commission_per_share"`
	BorrowRate         float64 `json:"borrow_rate" yaml:"borrow_rate"`
	BorrowFeeEnabled   bool    `json:"borrow_fee_enabled" yaml:"borrow_fee_enabled"`
}

// JournalConfig selects the ledger backend and output files.
type JournalConfig struct {
	Type        string `json:"type" yaml:"type"` // "csv" or "sqlite"
	LedgerFile  string `json:"ledger_file,omitempty" yaml:"ledger_file,omitempty"`
	DBPath      string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	DetailsFile string `json:"details_file,omitempty" yaml:"details_file,omitempty"`
	MetricsFile string `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty"`
}

// DataConfig points at the market data and candidate inputs.
type DataConfig struct {
	BarsDir        string `json:"bars_dir" yaml:"bars_dir"`
	CandidatesFile string `json:"candidates_file" yaml:"candidates_file"`
	// BenchmarkFile is an optional daily-return series used for
	// alpha/beta. Without it those metrics are reported unsupported.
	BenchmarkFile string `json:"benchmark_file,omitempty" yaml:"benchmark_file,omitempty"`
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration, format chosen by extension.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
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

// MonitorEvery returns the parsed monitoring interval, 0 for every bar.
func (c *StrategyConfig) MonitorEvery() (time.Duration, error) {
	if c.MonitoringInterval == "" {
		return 0, nil
	}
	return time.ParseDuration(c.MonitoringInterval)
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Account.StartingCapital <= 0 {
		return fmt.Errorf("account.starting_capital must be positive")
	}
	if c.Strategy.OpeningRangeStart == "" || c.Strategy.OpeningRangeEnd == "" {
		return fmt.Errorf("strategy opening range window is required")
	}
	if c.Strategy.PositiveHigh <= c.Strategy.PositiveLow {
		return fmt.Errorf("strategy.positive_threshold_high must exceed positive_threshold_low")
	}
	if c.Strategy.PositiveLow < 0 {
		return fmt.Errorf("strategy.positive_threshold_low must not be negative")
	}
	if c.Strategy.ConfirmationPct <= 0 {
		return fmt.Errorf("strategy.confirmation_pct must be positive")
	}
	if c.Strategy.StopPct <= 0 {
		return fmt.Errorf("strategy.stop_pct must be positive")
	}
	switch c.Strategy.StopMode {
	case StopPct:
	case StopATR:
		if c.Strategy.MaxATR <= 0 {
			return fmt.Errorf("strategy.max_atr must be positive in atr stop mode")
		}
	default:
		return fmt.Errorf("strategy.stop_mode must be %q or %q", StopPct, StopATR)
	}
	if _, err := c.Strategy.MonitorEvery(); err != nil {
		return fmt.Errorf("strategy.monitoring_interval: %w", err)
	}
	if c.Session.Timezone == "" {
		return fmt.Errorf("session.timezone is required")
	}
	if c.Session.Close == "" || c.Session.HalfDayClose == "" {
		return fmt.Errorf("session close times are required")
	}
	if c.Costs.CommissionPerShare < 0 {
		return fmt.Errorf("costs.commission_per_share must not be negative")
	}
	if c.Costs.BorrowFeeEnabled && c.Costs.BorrowRate <= 0 {
		return fmt.Errorf("costs.borrow_rate must be positive when the borrow fee is enabled")
	}
	if c.Journal.Type != "csv" && c.Journal.Type != "sqlite" {
		return fmt.Errorf("journal.type must be 'csv' or 'sqlite'")
	}
	if c.Journal.Type == "csv" && c.Journal.LedgerFile == "" {
		return fmt.Errorf("journal.ledger_file required for CSV type")
	}
	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		return fmt.Errorf("journal.db_path required for SQLite type")
	}
	return nil
}

// Default returns the reference configuration: the strict opening-range
// variant with the modeled NYSE session.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			StartingCapital: 100_000,
			RiskFreeRate:    0.03,
		},
		Strategy: StrategyConfig{
			OpeningRangeStart:  "09:30",
			OpeningRangeEnd:    "09:35",
			PositiveHigh:       5,
			PositiveLow:        1,
			ConfirmationPct:    0.0025,
			StopPct:            0.0075,
			StopMode:           StopPct,
			MonitoringInterval: "5m",
		},
		Session: SessionConfig{
			Timezone:     "America/New_York",
			Close:        "15:55",
			HalfDayClose: "12:55",
			HalfDays:     []string{"2022-07-03", "2023-07-03", "2023-11-24", "2024-07-03"},
		},
		Costs: CostsConfig{
			CommissionPerShare: 0.005,
			BorrowRate:         0.005,
			BorrowFeeEnabled:   true,
		},
		Journal: JournalConfig{
			Type:        "csv",
			LedgerFile:  "./logs/trade_log.csv",
			DetailsFile: "./logs/trade_details.csv",
			MetricsFile: "./logs/final_metrics.csv",
		},
		Data: DataConfig{
			BarsDir:        "./processed_data",
			CandidatesFile: "./top_daily_stocks.csv",
		},
	}
}
