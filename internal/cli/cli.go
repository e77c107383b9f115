//-------------------------------------------------------------------------
//
// pgEdge ecomstats
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for ecomstats.
package cli

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-ecomstats/internal/config"
	"github.com/pgEdge/pgedge-ecomstats/internal/db"
	"github.com/pgEdge/pgedge-ecomstats/internal/logging"
	"github.com/pgEdge/pgedge-ecomstats/internal/schema"
	"github.com/pgEdge/pgedge-ecomstats/pkg/version"
)

var (
	// Global flags
	cfgFile    string
	dbDriver   string
	dbHost     string
	dbPort     int
	dbUser     string
	dbPassword string
	dbName     string
	dbDSN      string
	logLevel   string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "ecomstats",
		Short: "Load an e-commerce extract and report on it",
		Long: `ecomstats loads the seven CSV files of an e-commerce extract
(customers, geolocation, orders, order items, products, sellers and
payments) into MySQL, PostgreSQL or SQLite, then runs a fixed set of
analytic queries over them, printing tables and writing charts.

Typical use:
  ecomstats sample --data-dir ./data
  ecomstats load --data-dir ./data --driver sqlite --database ecommerce.db
  ecomstats report --driver sqlite --database ecommerce.db --output-dir ./charts`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "",
		"config file (default: ./ecomstats.yaml)")
	flags.StringVar(&dbDriver, "driver", "",
		"database driver (mysql, postgres, sqlite)")
	flags.StringVar(&dbHost, "host", "", "database host")
	flags.IntVar(&dbPort, "port", 0, "database port (default: driver's standard port)")
	flags.StringVar(&dbUser, "user", "", "database user")
	flags.StringVar(&dbPassword, "password", "", "database password")
	flags.StringVar(&dbName, "database", "",
		"database name (file path for sqlite)")
	flags.StringVar(&dbDSN, "dsn", "",
		"driver connection string, overrides host/port/user/password/database")
	flags.StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(queriesCmd)
	rootCmd.AddCommand(sampleCmd)
}

func initConfig() error {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if dbDriver != "" {
		cfg.Database.Driver = dbDriver
	}
	if dbHost != "" {
		cfg.Database.Host = dbHost
	}
	if dbPort > 0 {
		cfg.Database.Port = dbPort
	}
	if dbUser != "" {
		cfg.Database.User = dbUser
	}
	if dbPassword != "" {
		cfg.Database.Password = dbPassword
	}
	if dbName != "" {
		cfg.Database.Name = dbName
	}
	if dbDSN != "" {
		cfg.Database.DSN = dbDSN
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return nil
}

// openStore connects to the configured database.
func openStore(ctx context.Context) (db.Store, error) {
	logging.Info().
		Str("driver", cfg.Database.Driver).
		Str("database", cfg.Database.Name).
		Msg("Connecting to database")

	store, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return store, nil
}

// loadSchema returns the configured schema mapping.
func loadSchema() (*schema.Schema, error) {
	return schema.Load(cfg.Load.SchemaFile)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}
