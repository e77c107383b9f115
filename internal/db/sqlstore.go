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
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/pgEdge/pgedge-ecomstats/internal/schema"
)

// sqlStore is the database/sql backed Store shared by MySQL and SQLite.
type sqlStore struct {
	db      *sql.DB
	dialect Dialect
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *sqlStore) Dialect() Dialect {
	return s.dialect
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

func (s *sqlStore) recreate(ctx context.Context, ex execer, t schema.Table) error {
	if _, err := ex.ExecContext(ctx, s.dialect.DropTableSQL(t)); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", t.Name, err)
	}
	if _, err := ex.ExecContext(ctx, s.dialect.CreateTableSQL(t)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", t.Name, err)
	}
	return nil
}

func (s *sqlStore) ReplaceTable(ctx context.Context, t schema.Table, rows [][]any, opts InsertOptions) (int64, error) {
	opts = opts.withDefaults()

	// MySQL commits around DDL, so the table is rebuilt before the insert
	// transaction takes the only connection.
	if !s.dialect.TransactionalDDL() {
		if err := s.recreate(ctx, s.db, t); err != nil {
			return 0, err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if s.dialect.TransactionalDDL() {
		if err := s.recreate(ctx, tx, t); err != nil {
			return 0, err
		}
	}

	stmt, err := tx.PrepareContext(ctx, s.dialect.InsertSQL(t))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert for %s: %w", t.Name, err)
	}
	defer stmt.Close()

	progress := NewProgressReporter(t.Name, int64(len(rows)), opts.ProgressInterval)
	for start := 0; start < len(rows); start += opts.BatchSize {
		end := min(start+opts.BatchSize, len(rows))
		for i := start; i < end; i++ {
			if _, err := stmt.ExecContext(ctx, s.dialect.BindRow(rows[i])...); err != nil {
				return 0, fmt.Errorf("failed to insert row %d into %s: %w", i+1, t.Name, err)
			}
		}
		progress.Update(int64(end - start))
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit %s: %w", t.Name, err)
	}
	progress.Done()

	return progress.Rows(), nil
}

func (s *sqlStore) Query(ctx context.Context, query string, args ...any) (*Result, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read column types: %w", err)
	}

	result := &Result{Columns: make([]string, len(types))}
	for i, ct := range types {
		result.Columns[i] = ct.Name()
	}

	for rows.Next() {
		values := make([]any, len(types))
		dest := make([]any, len(types))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range values {
			values[i] = normalizeValue(v, types[i].DatabaseTypeName())
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return result, nil
}

func (s *sqlStore) Columns(ctx context.Context, table string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT * FROM %s WHERE 1 = 0", s.dialect.QuoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	defer rows.Close()

	return rows.Columns()
}

func (s *sqlStore) Count(ctx context.Context, table string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s", s.dialect.QuoteIdent(table))).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

func (s *sqlStore) SaveLoadRecord(ctx context.Context, rec LoadRecord) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.createLoadsTableSQL()); err != nil {
		return fmt.Errorf("failed to create %s: %w", LoadsTable, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.dialect.deleteLoadRecordSQL(), rec.Table); err != nil {
		return fmt.Errorf("failed to clear load record: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.dialect.insertLoadRecordSQL(), loadRecordArgs(rec)...); err != nil {
		return fmt.Errorf("failed to save load record: %w", err)
	}
	return tx.Commit()
}

func (s *sqlStore) LoadRecords(ctx context.Context) ([]LoadRecord, error) {
	if _, err := s.db.ExecContext(ctx, s.dialect.createLoadsTableSQL()); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", LoadsTable, err)
	}

	rows, err := s.db.QueryContext(ctx, s.dialect.selectLoadRecordsSQL())
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

// normalizeValue maps driver values onto string, int64, float64, time.Time
// or nil. The MySQL text protocol returns DECIMAL and some integer results
// as bytes; the declared column type decides how to read them.
func normalizeValue(v any, dbType string) any {
	switch x := v.(type) {
	case []byte:
		return parseTyped(string(x), dbType)
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int16:
		return int64(x)
	case uint64:
		return int64(x)
	case float32:
		return float64(x)
	default:
		return v
	}
}

func parseTyped(s, dbType string) any {
	t := strings.ToUpper(dbType)
	switch {
	case strings.Contains(t, "DECIMAL"), strings.Contains(t, "NUMERIC"),
		strings.Contains(t, "FLOAT"), strings.Contains(t, "DOUBLE"), t == "REAL":
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case strings.Contains(t, "INT"):
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	}
	return s
}
