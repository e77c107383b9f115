//-------------------------------------------------------------------------
//
// pgEdge ecomstats
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-ecomstats/internal/db"
	"github.com/pgEdge/pgedge-ecomstats/internal/loader"
)

var (
	loadDataDir          string
	loadSchemaFile       string
	loadBatchSize        int
	loadProgressInterval int64
	loadTables           []string
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load the CSV extract into the database",
	Long: `Load the seven CSV files of the extract into the database. Each
table is dropped, recreated from the schema mapping and filled with the
rows of its file. Tables are loaded in mapping order and the command stops
at the first table that fails; tables already loaded stay in place.

Files may be plain (orders.csv) or gzip-compressed (orders.csv.gz).

Example:
  ecomstats load --data-dir ./data --driver mysql --host localhost --user root
  ecomstats load --data-dir ./data --driver sqlite --database ecommerce.db --tables orders,payments`,
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringVar(&loadDataDir, "data-dir", "",
		"directory containing the CSV files")
	loadCmd.Flags().StringVar(&loadSchemaFile, "schema-file", "",
		"schema mapping file (default: built-in mapping)")
	loadCmd.Flags().IntVar(&loadBatchSize, "batch-size", 0,
		"rows sent per insert batch")
	loadCmd.Flags().Int64Var(&loadProgressInterval, "progress-interval", 0,
		"log progress every N rows")
	loadCmd.Flags().StringSliceVar(&loadTables, "tables", nil,
		"comma-separated list of tables to load (default: all)")
}

func runLoad(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if loadDataDir != "" {
		cfg.Load.DataDir = loadDataDir
	}
	if loadSchemaFile != "" {
		cfg.Load.SchemaFile = loadSchemaFile
	}
	if loadBatchSize > 0 {
		cfg.Load.BatchSize = loadBatchSize
	}
	if loadProgressInterval > 0 {
		cfg.Load.ProgressInterval = loadProgressInterval
	}
	if len(loadTables) > 0 {
		cfg.Load.Tables = loadTables
	}

	if err := cfg.ValidateLoad(); err != nil {
		return err
	}

	s, err := loadSchema()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	l := loader.New(store, s, loader.Options{
		DataDir: cfg.Load.DataDir,
		Tables:  cfg.Load.Tables,
		Insert: db.InsertOptions{
			BatchSize:        cfg.Load.BatchSize,
			ProgressInterval: cfg.Load.ProgressInterval,
		},
	})

	results, err := l.Run(ctx)
	loader.PrintSummary(cmd.OutOrStdout(), results)
	return err
}
