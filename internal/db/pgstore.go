//-------------------------------------------------------------------------
//
// pgEdge ecomstats
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-ecomstats/internal/config"
	"github.com/pgEdge/pgedge-ecomstats/internal/schema"
)

func init() {
	Register(config.DriverPostgres, OpenPostgres)
}

// pgStore is the pgx backed Store for PostgreSQL.
type pgStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to PostgreSQL.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	pool, err := Connect(ctx, PostgresConnString(cfg))
	if err != nil {
		return nil, err
	}
	return &pgStore{pool: pool}, nil
}

func (s *pgStore) Dialect() Dialect {
	return Postgres
}

func (s *pgStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *pgStore) ReplaceTable(ctx context.Context, t schema.Table, rows [][]any, opts InsertOptions) (int64, error) {
	opts = opts.withDefaults()
	d := Postgres

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, d.DropTableSQL(t)); err != nil {
		return 0, fmt.Errorf("failed to drop table %s: %w", t.Name, err)
	}
	if _, err := tx.Exec(ctx, d.CreateTableSQL(t)); err != nil {
		return 0, fmt.Errorf("failed to create table %s: %w", t.Name, err)
	}

	insert := d.InsertSQL(t)
	progress := NewProgressReporter(t.Name, int64(len(rows)), opts.ProgressInterval)
	for start := 0; start < len(rows); start += opts.BatchSize {
		end := min(start+opts.BatchSize, len(rows))

		batch := &pgx.Batch{}
		for _, row := range rows[start:end] {
			batch.Queue(insert, row...)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return 0, fmt.Errorf("failed to insert rows %d-%d into %s: %w", start+1, end, t.Name, err)
		}
		progress.Update(int64(end - start))
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit %s: %w", t.Name, err)
	}
	progress.Done()

	return progress.Rows(), nil
}

func (s *pgStore) Query(ctx context.Context, query string, args ...any) (*Result, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	result := &Result{Columns: make([]string, len(fields))}
	for i, f := range fields {
		result.Columns[i] = f.Name
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		for i, v := range values {
			values[i] = normalizePgValue(v)
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return result, nil
}

func (s *pgStore) Columns(ctx context.Context, table string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		fmt.Sprintf("SELECT * FROM %s WHERE 1 = 0", Postgres.QuoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	// Drain so the error, if any, surfaces here.
	for rows.Next() {
	}
	return names, rows.Err()
}

func (s *pgStore) Count(ctx context.Context, table string) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s", Postgres.QuoteIdent(table))).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

func (s *pgStore) SaveLoadRecord(ctx context.Context, rec LoadRecord) error {
	d := Postgres
	if _, err := s.pool.Exec(ctx, d.createLoadsTableSQL()); err != nil {
		return fmt.Errorf("failed to create %s: %w", LoadsTable, err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, d.deleteLoadRecordSQL(), rec.Table); err != nil {
		return fmt.Errorf("failed to clear load record: %w", err)
	}
	if _, err := tx.Exec(ctx, d.insertLoadRecordSQL(), loadRecordArgs(rec)...); err != nil {
		return fmt.Errorf("failed to save load record: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *pgStore) LoadRecords(ctx context.Context) ([]LoadRecord, error) {
	d := Postgres
	if _, err := s.pool.Exec(ctx, d.createLoadsTableSQL()); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", LoadsTable, err)
	}

	rows, err := s.pool.Query(ctx, d.selectLoadRecordsSQL())
	if err != nil {
		return nil, fmt.Errorf("failed to read load records: %w", err)
	}
	defer rows.Close()

	var records []LoadRecord
	for rows.Next() {
		var rec LoadRecord
		var loadedAt string
		if err := rows.Scan(&rec.Table, &rec.SourceFile, &rec.RowCount, &loadedAt, &rec.Version); err != nil {
			return nil, fmt.Errorf("failed to scan load record: %w", err)
		}
		rec.LoadedAt = parseLoadedAt(loadedAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// normalizePgValue maps pgx values onto the same Go types the database/sql
// stores produce.
func normalizePgValue(v any) any {
	switch x := v.(type) {
	case pgtype.Numeric:
		if !x.Valid {
			return nil
		}
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	default:
		return v
	}
}
