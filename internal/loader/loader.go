//-------------------------------------------------------------------------
//
// pgEdge ecomstats
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package loader ingests the CSV extracts: for each mapped table it reads
// the file, converts values by declared column type and replaces the
// destination table.
package loader

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/pgEdge/pgedge-ecomstats/internal/db"
	"github.com/pgEdge/pgedge-ecomstats/internal/logging"
	"github.com/pgEdge/pgedge-ecomstats/internal/schema"
	"github.com/pgEdge/pgedge-ecomstats/internal/termui"
	"github.com/pgEdge/pgedge-ecomstats/pkg/version"
)

// Options configures a load run.
type Options struct {
	// DataDir is the directory holding the CSV files.
	DataDir string

	// Tables restricts the run to the named tables. Empty means all.
	Tables []string

	// Insert configures batching and progress logging.
	Insert db.InsertOptions
}

// TableResult summarizes the load of one table.
type TableResult struct {
	Table           string
	File            string
	Rows            int64
	InvalidTemporal int
	Duration        time.Duration
}

// Loader replaces database tables with the contents of CSV files.
type Loader struct {
	store  db.Store
	schema *schema.Schema
	opts   Options
}

// New creates a loader.
func New(store db.Store, s *schema.Schema, opts Options) *Loader {
	return &Loader{
		store:  store,
		schema: s,
		opts:   opts,
	}
}

// Run loads every selected table in mapping order and stops at the first
// failure. Tables loaded before the failure stay committed.
func (l *Loader) Run(ctx context.Context) ([]TableResult, error) {
	tables, err := l.schema.Select(l.opts.Tables)
	if err != nil {
		return nil, err
	}

	results := make([]TableResult, 0, len(tables))
	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := l.LoadTable(ctx, t)
		if err != nil {
			return results, fmt.Errorf("failed to load %s: %w", t.Name, err)
		}
		results = append(results, res)
	}

	return results, nil
}

// LoadTable reads the source file for t and replaces the table with it.
func (l *Loader) LoadTable(ctx context.Context, t schema.Table) (TableResult, error) {
	start := time.Now()

	batch, err := ReadTable(l.opts.DataDir, t)
	if err != nil {
		return TableResult{}, err
	}

	file := filepath.Base(batch.Path)
	logging.Info().
		Str("file", file).
		Str("table", t.Name).
		Int("rows", len(batch.Rows)).
		Msg("Processing file")

	if len(batch.Temporal) > 0 {
		logging.Debug().
			Str("table", t.Name).
			Strs("columns", batch.Temporal).
			Msg("Parsed temporal columns")
	}

	invalid := 0
	for _, col := range sortedKeys(batch.InvalidTemporal) {
		n := batch.InvalidTemporal[col]
		invalid += n
		logging.Warn().
			Str("table", t.Name).
			Str("column", col).
			Int("values", n).
			Msg("Unparseable timestamps stored as NULL")
	}

	inserted, err := l.store.ReplaceTable(ctx, t, batch.Rows, l.opts.Insert)
	if err != nil {
		return TableResult{}, err
	}

	if err := l.store.SaveLoadRecord(ctx, db.LoadRecord{
		Table:      t.Name,
		SourceFile: file,
		RowCount:   inserted,
		LoadedAt:   time.Now(),
		Version:    version.Short(),
	}); err != nil {
		return TableResult{}, err
	}

	return TableResult{
		Table:           t.Name,
		File:            file,
		Rows:            inserted,
		InvalidTemporal: invalid,
		Duration:        time.Since(start),
	}, nil
}

// HeaderCheck is the outcome of comparing one file's header to the mapping.
type HeaderCheck struct {
	Table string
	File  string
	Err   error
}

// CheckHeaders compares the header of each table's source file with its
// mapped columns without touching the database.
func CheckHeaders(dir string, tables []schema.Table) []HeaderCheck {
	checks := make([]HeaderCheck, 0, len(tables))
	for _, t := range tables {
		check := HeaderCheck{Table: t.Name, File: t.File}
		header, err := ReadHeader(dir, t)
		if err == nil {
			err = CheckHeader(t, header)
		}
		check.Err = err
		checks = append(checks, check)
	}
	return checks
}

// PrintSummary writes a table of load results.
func PrintSummary(w io.Writer, results []TableResult) {
	var total int64
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		total += r.Rows
		rows = append(rows, []string{
			r.Table,
			r.File,
			strconv.FormatInt(r.Rows, 10),
			strconv.Itoa(r.InvalidTemporal),
			r.Duration.Round(time.Millisecond).String(),
		})
	}

	fmt.Fprintln(w, termui.TitleStyle.Render("Load summary"))
	fmt.Fprintln(w, termui.Table(
		[]string{"Table", "File", "Rows", "Invalid timestamps", "Duration"}, rows))
	fmt.Fprintln(w, termui.SuccessStyle.Render(
		fmt.Sprintf("%d tables, %d rows loaded", len(results), total)))
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
