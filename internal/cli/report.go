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

	"github.com/pgEdge/pgedge-ecomstats/internal/report"
)

var (
	reportOutputDir string
	reportNoCharts  bool
	reportQueries   []string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run the analytic queries against a loaded database",
	Long: `Run the analytic queries against a database filled by 'load'.
Queries run one at a time in a fixed order. Tabular results are printed;
four queries also render a chart into the output directory:

  customers_by_state.png   customers per state
  monthly_orders_2018.png  orders per month in 2018
  top_sellers.png          top 10 sellers by revenue
  cumulative_sales.png     cumulative sales per month, one line per year

Use 'ecomstats queries' to list the query names.

Example:
  ecomstats report --driver sqlite --database ecommerce.db --output-dir ./charts
  ecomstats report --queries orders_2017,top_sellers --no-charts`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportOutputDir, "output-dir", "",
		"directory for chart images")
	reportCmd.Flags().BoolVar(&reportNoCharts, "no-charts", false,
		"print chart queries as tables instead of rendering images")
	reportCmd.Flags().StringSliceVar(&reportQueries, "queries", nil,
		"comma-separated list of queries to run (default: all)")
}

func runReport(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if reportOutputDir != "" {
		cfg.Report.OutputDir = reportOutputDir
	}
	if reportNoCharts {
		cfg.Report.Charts = false
	}
	if len(reportQueries) > 0 {
		cfg.Report.Queries = reportQueries
	}

	if err := cfg.ValidateReport(); err != nil {
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

	r := report.New(store, cmd.OutOrStdout(), report.Options{
		OutputDir: cfg.Report.OutputDir,
		Charts:    cfg.Report.Charts,
		Queries:   cfg.Report.Queries,
		Tables:    s.Names(),
	})

	if err := r.Run(ctx); err != nil {
		return err
	}
	r.PrintSummary()
	return nil
}
