//-------------------------------------------------------------------------
//
// pgEdge ecomstats
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for ecomstats.
// Configuration is loaded from a config file, ECOMSTATS_* environment
// variables and CLI flags. CLI flags take precedence over the environment,
// which takes precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides, e.g.
// ECOMSTATS_DATABASE_PASSWORD for database.password.
const EnvPrefix = "ECOMSTATS"

// Supported database drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all configuration for ecomstats.
type Config struct {
	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Database holds connection settings.
	Database DatabaseConfig `mapstructure:"database"`

	// Load holds configuration for the load subcommand.
	Load LoadConfig `mapstructure:"load"`

	// Report holds configuration for the report subcommand.
	Report ReportConfig `mapstructure:"report"`

	// Sample holds configuration for the sample subcommand.
	Sample SampleConfig `mapstructure:"sample"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Driver is one of mysql, postgres, sqlite.
	Driver string `mapstructure:"driver"`

	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`

	// Name is the database name. For sqlite it is the database file path.
	Name string `mapstructure:"name"`

	// DSN, when set, is used verbatim instead of the fields above.
	DSN string `mapstructure:"dsn"`
}

// LoadConfig holds configuration for CSV ingestion.
type LoadConfig struct {
	// DataDir is the directory containing the CSV extracts.
	DataDir string `mapstructure:"data_dir"`

	// SchemaFile overrides the built-in schema mapping.
	SchemaFile string `mapstructure:"schema_file"`

	// BatchSize is the number of rows sent per insert batch.
	BatchSize int `mapstructure:"batch_size"`

	// ProgressInterval is how often to log progress (in rows).
	ProgressInterval int64 `mapstructure:"progress_interval"`

	// Tables restricts the load to the named tables. Empty means all.
	Tables []string `mapstructure:"tables"`
}

// ReportConfig holds configuration for the analytic report.
type ReportConfig struct {
	// OutputDir is where chart images are written.
	OutputDir string `mapstructure:"output_dir"`

	// Charts enables chart rendering.
	Charts bool `mapstructure:"charts"`

	// Queries restricts the report to the named queries. Empty means all.
	Queries []string `mapstructure:"queries"`
}

// SampleConfig holds configuration for synthetic CSV generation.
type SampleConfig struct {
	// Orders is the number of orders to generate; other tables scale from it.
	Orders int `mapstructure:"orders"`

	// Seed makes generation reproducible. Zero picks a random seed.
	Seed uint64 `mapstructure:"seed"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Database: DatabaseConfig{
			Driver: DriverMySQL,
			Host:   "localhost",
			User:   "root",
			Name:   "ecommerce",
		},
		Load: LoadConfig{
			DataDir:          ".",
			BatchSize:        1000,
			ProgressInterval: 100000,
		},
		Report: ReportConfig{
			OutputDir: ".",
			Charts:    true,
		},
		Sample: SampleConfig{
			Orders: 1000,
		},
	}
}

// DefaultPort returns the conventional port for a driver, or 0 when the
// driver does not listen on one.
func DefaultPort(driver string) int {
	switch driver {
	case DriverMySQL:
		return 3306
	case DriverPostgres:
		return 5432
	default:
		return 0
	}
}

// Load reads configuration from config files and the environment.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./ecomstats.yaml
// 3. ~/.config/ecomstats/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("ecomstats")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "ecomstats"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Unmarshal only sees environment values for keys viper knows about,
	// so every key is registered with its default first.
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("log_level", d.LogLevel)

	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.host", d.Database.Host)
	v.SetDefault("database.port", d.Database.Port)
	v.SetDefault("database.user", d.Database.User)
	v.SetDefault("database.password", d.Database.Password)
	v.SetDefault("database.name", d.Database.Name)
	v.SetDefault("database.dsn", d.Database.DSN)

	v.SetDefault("load.data_dir", d.Load.DataDir)
	v.SetDefault("load.schema_file", d.Load.SchemaFile)
	v.SetDefault("load.batch_size", d.Load.BatchSize)
	v.SetDefault("load.progress_interval", d.Load.ProgressInterval)
	v.SetDefault("load.tables", d.Load.Tables)

	v.SetDefault("report.output_dir", d.Report.OutputDir)
	v.SetDefault("report.charts", d.Report.Charts)
	v.SetDefault("report.queries", d.Report.Queries)

	v.SetDefault("sample.orders", d.Sample.Orders)
	v.SetDefault("sample.seed", d.Sample.Seed)
}

// Validate checks that the database configuration is usable.
func (c *Config) Validate() error {
	d := c.Database
	switch d.Driver {
	case DriverMySQL, DriverPostgres:
		if d.DSN == "" && d.Host == "" {
			return fmt.Errorf("database host is required for driver %s", d.Driver)
		}
		if d.DSN == "" && d.Name == "" {
			return fmt.Errorf("database name is required for driver %s", d.Driver)
		}
		if d.Port < 0 || d.Port > 65535 {
			return fmt.Errorf("database port %d is out of range", d.Port)
		}
	case DriverSQLite:
		if d.DSN == "" && d.Name == "" {
			return fmt.Errorf("database name (file path) is required for sqlite")
		}
	case "":
		return fmt.Errorf("database driver is required")
	default:
		return fmt.Errorf("unsupported database driver %q (mysql, postgres, sqlite)", d.Driver)
	}
	return nil
}

// ValidateLoad checks configuration required for the load command.
func (c *Config) ValidateLoad() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Load.DataDir == "" {
		return fmt.Errorf("data directory is required for load")
	}
	if c.Load.BatchSize < 1 {
		return fmt.Errorf("batch_size must be at least 1")
	}
	if c.Load.ProgressInterval < 1 {
		return fmt.Errorf("progress_interval must be at least 1")
	}
	return nil
}

// ValidateReport checks configuration required for the report command.
func (c *Config) ValidateReport() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Report.Charts && c.Report.OutputDir == "" {
		return fmt.Errorf("output directory is required when charts are enabled")
	}
	return nil
}

// ValidateSample checks configuration required for the sample command.
func (c *Config) ValidateSample() error {
	if c.Load.DataDir == "" {
		return fmt.Errorf("data directory is required for sample")
	}
	if c.Sample.Orders < 1 {
		return fmt.Errorf("orders must be at least 1")
	}
	return nil
}
