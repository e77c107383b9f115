//-------------------------------------------------------------------------
//
// pgEdge ecomstats
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package report runs the analytic queries against a loaded database and
// prints or charts each result.
package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pgEdge/pgedge-ecomstats/internal/db"
	"github.com/pgEdge/pgedge-ecomstats/internal/logging"
)

// Options configures a report run.
type Options struct {
	// OutputDir is where charts are written.
	OutputDir string

	// Charts enables chart rendering. Chart queries print their frame
	// instead when disabled.
	Charts bool

	// Queries restricts the run to the named queries. Empty means all.
	Queries []string

	// Tables are the tables the queries expect to have been loaded.
	Tables []string
}

// QueryMetric records one query execution.
type QueryMetric struct {
	Name     string
	Rows     int
	Duration time.Duration
}

// Reporter executes report queries in sequence.
type Reporter struct {
	store db.Store
	out   io.Writer
	opts  Options

	startTime time.Time
	metrics   []QueryMetric
}

// New creates a reporter writing to out.
func New(store db.Store, out io.Writer, opts Options) *Reporter {
	return &Reporter{
		store: store,
		out:   out,
		opts:  opts,
	}
}

// Run executes the selected queries and stops at the first failure.
func (r *Reporter) Run(ctx context.Context) error {
	queries, err := Select(r.opts.Queries)
	if err != nil {
		return err
	}

	if r.opts.Charts && r.opts.OutputDir != "" {
		if err := os.MkdirAll(r.opts.OutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	r.startTime = time.Now()
	r.checkLoaded(ctx)

	logging.Info().
		Str("driver", string(r.store.Dialect())).
		Int("queries", len(queries)).
		Msg("Starting report")

	for _, q := range queries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.runQuery(ctx, q); err != nil {
			return fmt.Errorf("query %s: %w", q.Name, err)
		}
	}

	return nil
}

func (r *Reporter) runQuery(ctx context.Context, q Query) error {
	start := time.Now()
	f, err := r.Execute(ctx, q)
	if err != nil {
		return err
	}
	duration := time.Since(start)

	r.metrics = append(r.metrics, QueryMetric{Name: q.Name, Rows: f.Len(), Duration: duration})
	logging.Debug().
		Str("query", q.Name).
		Int("rows", f.Len()).
		Dur("duration", duration).
		Msg("Query complete")

	if err := q.present(r, q, f); err != nil {
		return err
	}
	fmt.Fprintln(r.out)
	return nil
}

// Execute runs one query and binds its result to the query's columns.
func (r *Reporter) Execute(ctx context.Context, q Query) (*Frame, error) {
	stmt, err := q.Statement(r.store.Dialect())
	if err != nil {
		return nil, err
	}
	res, err := r.store.Query(ctx, stmt)
	if err != nil {
		return nil, err
	}
	return NewFrame(q.Columns, res)
}

// checkLoaded warns about expected tables with no load record. Reports
// still run; missing tables fail their queries.
func (r *Reporter) checkLoaded(ctx context.Context) {
	if len(r.opts.Tables) == 0 {
		return
	}
	records, err := r.store.LoadRecords(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("Could not read load records")
		return
	}

	loaded := make(map[string]db.LoadRecord, len(records))
	for _, rec := range records {
		loaded[rec.Table] = rec
	}
	for _, t := range r.opts.Tables {
		rec, ok := loaded[t]
		if !ok {
			logging.Warn().Str("table", t).Msg("Table has no load record; run load first")
			continue
		}
		logging.Debug().
			Str("table", t).
			Int64("rows", rec.RowCount).
			Time("loaded_at", rec.LoadedAt).
			Msg("Table loaded")
	}
}

// Metrics returns the per-query metrics of the last run.
func (r *Reporter) Metrics() []QueryMetric {
	return r.metrics
}

// PrintSummary logs a final summary of the report run.
func (r *Reporter) PrintSummary() {
	elapsed := time.Since(r.startTime)

	var totalRows int
	var queryTime time.Duration
	for _, m := range r.metrics {
		totalRows += m.Rows
		queryTime += m.Duration
		logging.Info().
			Str("query", m.Name).
			Int("rows", m.Rows).
			Float64("duration_ms", float64(m.Duration.Microseconds())/1000).
			Msg("Query statistics")
	}

	var avgLatencyMs float64
	if len(r.metrics) > 0 {
		avgLatencyMs = float64(queryTime.Microseconds()) / 1000 / float64(len(r.metrics))
	}

	logging.Info().
		Dur("duration", elapsed).
		Int("total_queries", len(r.metrics)).
		Int("total_rows", totalRows).
		Float64("avg_latency_ms", avgLatencyMs).
		Msg("Report complete")
}
