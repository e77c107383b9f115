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

	"github.com/pgEdge/pgedge-ecomstats/internal/db"
	"github.com/pgEdge/pgedge-ecomstats/internal/report"
	"github.com/pgEdge/pgedge-ecomstats/internal/termui"
)

var queriesShowSQL bool

var queriesCmd = &cobra.Command{
	Use:   "queries",
	Short: "List the report queries",
	Long: `List the report queries in run order with what each computes and
how its result is presented. Names can be passed to 'report --queries'.`,
	RunE: runQueries,
}

func init() {
	queriesCmd.Flags().BoolVar(&queriesShowSQL, "sql", false,
		"print each statement for the selected driver")
}

func runQueries(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	queries := report.Queries()

	if !queriesShowSQL {
		rows := make([][]string, len(queries))
		for i, q := range queries {
			rows[i] = []string{q.Name, q.Description, q.Output()}
		}
		fmt.Fprintln(out, termui.Table([]string{"Name", "Description", "Output"}, rows))
		return nil
	}

	dialect, err := db.ParseDialect(cfg.Database.Driver)
	if err != nil {
		return err
	}
	for _, q := range queries {
		stmt, err := q.Statement(dialect)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "-- %s: %s\n%s;\n\n", q.Name, q.Description, stmt)
	}
	return nil
}
