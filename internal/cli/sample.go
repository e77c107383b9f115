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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-ecomstats/internal/datagen"
	"github.com/pgEdge/pgedge-ecomstats/internal/logging"
)

var (
	sampleOrders int
	sampleSeed   uint64
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Write a synthetic CSV extract",
	Long: `Write a synthetic, referentially consistent set of the seven CSV
files into the data directory. Customers, sellers and products scale with
the number of orders; every order has items and payments that add up.

Example:
  ecomstats sample --data-dir ./data --orders 5000 --seed 42`,
	RunE: runSample,
}

func init() {
	sampleCmd.Flags().StringVar(&loadDataDir, "data-dir", "",
		"directory to write the CSV files to")
	sampleCmd.Flags().IntVar(&sampleOrders, "orders", 0,
		"number of orders to generate")
	sampleCmd.Flags().Uint64Var(&sampleSeed, "seed", 0,
		"random seed for reproducible output (default: random)")
}

func runSample(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if loadDataDir != "" {
		cfg.Load.DataDir = loadDataDir
	}
	if sampleOrders > 0 {
		cfg.Sample.Orders = sampleOrders
	}
	if sampleSeed > 0 {
		cfg.Sample.Seed = sampleSeed
	}

	if err := cfg.ValidateSample(); err != nil {
		return err
	}

	s, err := loadSchema()
	if err != nil {
		return err
	}

	logging.Info().
		Int("orders", cfg.Sample.Orders).
		Uint64("seed", cfg.Sample.Seed).
		Msg("Generating sample data")

	d := datagen.Generate(datagen.Config{
		Orders: cfg.Sample.Orders,
		Seed:   cfg.Sample.Seed,
	})
	written, err := datagen.WriteCSV(cfg.Load.DataDir, s, d)
	if err != nil {
		return err
	}

	total := 0
	for _, n := range written {
		total += n
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d files (%d rows) to %s\n",
		len(written), total, cfg.Load.DataDir)
	return nil
}
