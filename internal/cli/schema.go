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
	"github.com/pgEdge/pgedge-ecomstats/internal/loader"
	"github.com/pgEdge/pgedge-ecomstats/internal/termui"
)

var schemaTables []string

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the table definitions for the selected driver",
	Long: `Print the DROP and CREATE TABLE statements the load command issues
for each mapped table, in the dialect of the selected driver. No database
connection is made.

Example:
  ecomstats schema --driver postgres
  ecomstats schema --driver mysql --tables orders`,
	RunE: runSchema,
}

var schemaCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check CSV headers against the schema mapping",
	Long: `Check that each CSV file in the data directory exists and that its
header matches the mapped column order. No database connection is made.

Example:
  ecomstats schema check --data-dir ./data`,
	RunE: runSchemaCheck,
}

func init() {
	schemaCmd.PersistentFlags().StringSliceVar(&schemaTables, "tables", nil,
		"comma-separated list of tables (default: all)")
	schemaCmd.PersistentFlags().StringVar(&loadSchemaFile, "schema-file", "",
		"schema mapping file (default: built-in mapping)")
	schemaCheckCmd.Flags().StringVar(&loadDataDir, "data-dir", "",
		"directory containing the CSV files")

	schemaCmd.AddCommand(schemaCheckCmd)
}

func runSchema(cmd *cobra.Command, args []string) error {
	if loadSchemaFile != "" {
		cfg.Load.SchemaFile = loadSchemaFile
	}

	dialect, err := db.ParseDialect(cfg.Database.Driver)
	if err != nil {
		return err
	}

	s, err := loadSchema()
	if err != nil {
		return err
	}
	tables, err := s.Select(schemaTables)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, t := range tables {
		fmt.Fprintf(out, "-- %s (%s)\n", t.Name, t.File)
		fmt.Fprintf(out, "%s;\n", dialect.DropTableSQL(t))
		fmt.Fprintf(out, "%s;\n\n", dialect.CreateTableSQL(t))
	}
	return nil
}

func runSchemaCheck(cmd *cobra.Command, args []string) error {
	if loadSchemaFile != "" {
		cfg.Load.SchemaFile = loadSchemaFile
	}
	if loadDataDir != "" {
		cfg.Load.DataDir = loadDataDir
	}

	s, err := loadSchema()
	if err != nil {
		return err
	}
	tables, err := s.Select(schemaTables)
	if err != nil {
		return err
	}

	checks := loader.CheckHeaders(cfg.Load.DataDir, tables)
	rows := make([][]string, 0, len(checks))
	failed := 0
	for _, c := range checks {
		status := termui.SuccessStyle.Render("ok")
		if c.Err != nil {
			status = termui.WarningStyle.Render(c.Err.Error())
			failed++
		}
		rows = append(rows, []string{c.Table, c.File, status})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, termui.Table([]string{"Table", "File", "Status"}, rows))
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed the header check", failed, len(checks))
	}
	fmt.Fprintf(out, "%d files match the schema mapping\n", len(checks))
	return nil
}
