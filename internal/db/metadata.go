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
	"fmt"
	"time"
)

// LoadsTable is the table recording which CSV extracts were loaded.
const LoadsTable = "ecomstats_loads"

// LoadRecord describes one completed table load.
type LoadRecord struct {
	Table      string
	SourceFile string
	RowCount   int64
	LoadedAt   time.Time
	Version    string
}

// The timestamp is kept as RFC 3339 text so all three dialects read it back
// the same way.
func (d Dialect) createLoadsTableSQL() string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    %s VARCHAR(64) PRIMARY KEY,
    %s TEXT,
    %s BIGINT,
    %s VARCHAR(32),
    %s VARCHAR(32)
)`,
		d.QuoteIdent(LoadsTable),
		d.QuoteIdent("table_name"),
		d.QuoteIdent("source_file"),
		d.QuoteIdent("row_count"),
		d.QuoteIdent("loaded_at"),
		d.QuoteIdent("version"))
}

func (d Dialect) deleteLoadRecordSQL() string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s = %s",
		d.QuoteIdent(LoadsTable), d.QuoteIdent("table_name"), d.Placeholder(1))
}

func (d Dialect) insertLoadRecordSQL() string {
	return fmt.Sprintf("INSERT INTO %s (%s, %s, %s, %s, %s) VALUES (%s, %s, %s, %s, %s)",
		d.QuoteIdent(LoadsTable),
		d.QuoteIdent("table_name"),
		d.QuoteIdent("source_file"),
		d.QuoteIdent("row_count"),
		d.QuoteIdent("loaded_at"),
		d.QuoteIdent("version"),
		d.Placeholder(1), d.Placeholder(2), d.Placeholder(3), d.Placeholder(4), d.Placeholder(5))
}

func (d Dialect) selectLoadRecordsSQL() string {
	return fmt.Sprintf("SELECT %s, %s, %s, %s, %s FROM %s ORDER BY %s",
		d.QuoteIdent("table_name"),
		d.QuoteIdent("source_file"),
		d.QuoteIdent("row_count"),
		d.QuoteIdent("loaded_at"),
		d.QuoteIdent("version"),
		d.QuoteIdent(LoadsTable),
		d.QuoteIdent("table_name"))
}

func loadRecordArgs(rec LoadRecord) []any {
	return []any{
		rec.Table,
		rec.SourceFile,
		rec.RowCount,
		rec.LoadedAt.UTC().Format(time.RFC3339),
		rec.Version,
	}
}

func parseLoadedAt(s string) time.Time {
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return ts
}
