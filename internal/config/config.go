// Package config provides configuration management for the load-test
// driver's command-line entrypoint.
//
// Configuration is loaded from multiple sources in this order:
// 1. A YAML configuration file
// 2. Environment variables (LOADTEST_-prefixed, plus a few bare standard names)
// 3. Built-in defaults
//
// The driver itself never touches viper or the environment: cmd/loadtest
// loads a Config here and converts it into the plain typed records
// driver.Config and the chosen workload's own Config before construction.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the root configuration for the loadtest binary.
type Config struct {
	Driver   DriverConfig   `mapstructure:"driver"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Workload WorkloadConfig `mapstructure:"workload"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// MetricsConfig controls the optional Prometheus exporter that runs
// alongside the driver: a live queue-depth gauge during the run, and the
// report's completed/error/missed counters once the run has finished.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// DriverConfig mirrors the design's Driver Configuration data model
// (spec.md §3): everything needed to construct a driver.Config once the
// chosen workload's ItemsPerIteration is known.
type DriverConfig struct {
	Concurrency                int           `mapstructure:"concurrency"`
	TargetRequestRatePerSecond float64       `mapstructure:"target_request_rate_per_second"`
	DurationSeconds            float64       `mapstructure:"duration_seconds"`
	TimeoutValueMs             float64       `mapstructure:"timeout_value_ms"`
	SkipWarmup                 bool          `mapstructure:"skip_warmup"`
}

// LoggingConfig configures pkg/logging's slog construction.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "text"
}

// WorkloadConfig selects and configures one of the built-in workloads.
type WorkloadConfig struct {
	// Kind selects the workload: "http" or "ledger".
	Kind   string       `mapstructure:"kind"`
	HTTP   HTTPConfig   `mapstructure:"http"`
	Ledger LedgerConfig `mapstructure:"ledger"`
}

// HTTPConfig configures internal/workload/httpworkload.
type HTTPConfig struct {
	URL            string            `mapstructure:"url"`
	RequestTimeout time.Duration     `mapstructure:"request_timeout"`
	Headers        map[string]string `mapstructure:"headers"`
}

// LedgerConfig configures internal/workload/ledgerworkload.
type LedgerConfig struct {
	AccountIDs []string `mapstructure:"account_ids"`
	BatchSize  int      `mapstructure:"batch_size"`
	Amount     uint64   `mapstructure:"amount"`
}

// Validate checks the fields Load cannot sensibly default.
func (c *Config) Validate() error {
	if c.Driver.Concurrency < 1 {
		return fmt.Errorf("driver.concurrency must be >= 1, got %d", c.Driver.Concurrency)
	}
	if c.Driver.DurationSeconds <= 0 {
		return fmt.Errorf("driver.duration_seconds must be > 0, got %f", c.Driver.DurationSeconds)
	}
	if c.Driver.TargetRequestRatePerSecond < 0 {
		return fmt.Errorf("driver.target_request_rate_per_second must be >= 0, got %f", c.Driver.TargetRequestRatePerSecond)
	}

	switch c.Workload.Kind {
	case "http":
		if c.Workload.HTTP.URL == "" {
			return fmt.Errorf("workload.http.url must be set when workload.kind is \"http\"")
		}
	case "ledger":
		if len(c.Workload.Ledger.AccountIDs) < 2 {
			return fmt.Errorf("workload.ledger.account_ids must have at least 2 entries")
		}
		if c.Workload.Ledger.BatchSize < 1 {
			return fmt.Errorf("workload.ledger.batch_size must be >= 1")
		}
	default:
		return fmt.Errorf("workload.kind must be \"http\" or \"ledger\", got %q", c.Workload.Kind)
	}

	return nil
}

// Load loads configuration from an optional YAML file, environment
// variables, and defaults. Environment variables override the file, and the
// file overrides the defaults.
func Load() (*Config, error) {
	// Load .env file if present (optional, for local development). This
	// sets environment variables that viper then reads via AutomaticEnv.
	_ = godotenv.Load(".env")

	viper.SetConfigName("loadtest")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - continue with env vars and defaults.
	}

	viper.SetEnvPrefix("LOADTEST")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	//nolint:errcheck // BindEnv only errors with invalid args, safe with string literals
	viper.BindEnv("logging.level", "LOG_LEVEL")
	//nolint:errcheck
	viper.BindEnv("logging.format", "LOG_FORMAT")
	//nolint:errcheck
	viper.BindEnv("workload.http.url", "LOADTEST_TARGET_URL")

	setDefaults()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("driver.concurrency", 10)
	viper.SetDefault("driver.target_request_rate_per_second", 100)
	viper.SetDefault("driver.duration_seconds", 30)
	viper.SetDefault("driver.timeout_value_ms", 0) // 0 = default to worker cycle time
	viper.SetDefault("driver.skip_warmup", false)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	viper.SetDefault("workload.kind", "http")
	viper.SetDefault("workload.http.request_timeout", "10s")

	viper.SetDefault("workload.ledger.batch_size", 1)
	viper.SetDefault("workload.ledger.amount", 10)

	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.addr", ":9090")
}
