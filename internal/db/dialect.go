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
	"regexp"
	"strings"
	"time"

	"github.com/pgEdge/pgedge-ecomstats/internal/config"
	"github.com/pgEdge/pgedge-ecomstats/internal/schema"
)

// Dialect captures the SQL spelling differences between the supported
// databases. The schema mapping uses MySQL spellings.
type Dialect string

const (
	MySQL    Dialect = config.DriverMySQL
	Postgres Dialect = config.DriverPostgres
	SQLite   Dialect = config.DriverSQLite
)

// sqliteTimeLayout is the text form SQLite's date functions understand.
const sqliteTimeLayout = "2006-01-02 15:04:05"

var datetimeWord = regexp.MustCompile(`(?i)\bDATETIME\b`)

// Dialects lists the supported dialects.
func Dialects() []Dialect {
	return []Dialect{MySQL, Postgres, SQLite}
}

// ParseDialect maps a driver name to its dialect.
func ParseDialect(driver string) (Dialect, error) {
	for _, d := range Dialects() {
		if string(d) == driver {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
}

// QuoteIdent quotes a table or column name.
func (d Dialect) QuoteIdent(name string) string {
	switch d {
	case Postgres:
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	default:
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
}

// Placeholder returns the bind parameter marker for the 1-based index.
func (d Dialect) Placeholder(index int) string {
	if d == Postgres {
		return fmt.Sprintf("$%d", index)
	}
	return "?"
}

// ColumnType translates a declared column type for the dialect. Only
// PostgreSQL needs a change: it spells DATETIME as TIMESTAMP.
func (d Dialect) ColumnType(declared string) string {
	if d == Postgres {
		return datetimeWord.ReplaceAllString(declared, "TIMESTAMP")
	}
	return declared
}

// TransactionalDDL reports whether DROP/CREATE TABLE can be rolled back.
// MySQL commits implicitly around DDL.
func (d Dialect) TransactionalDDL() bool {
	return d != MySQL
}

// DropTableSQL returns the DROP TABLE IF EXISTS statement for t.
func (d Dialect) DropTableSQL(t schema.Table) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", d.QuoteIdent(t.Name))
}

// CreateTableSQL returns the CREATE TABLE statement for t, with columns
// and types in mapping order.
func (d Dialect) CreateTableSQL(t schema.Table) string {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = fmt.Sprintf("%s %s", d.QuoteIdent(c.Name), d.ColumnType(c.Type))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", d.QuoteIdent(t.Name), strings.Join(cols, ", "))
}

// InsertSQL returns the single-row parameterized INSERT statement for t.
func (d Dialect) InsertSQL(t schema.Table) string {
	cols := make([]string, len(t.Columns))
	params := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = d.QuoteIdent(c.Name)
		params[i] = d.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.QuoteIdent(t.Name), strings.Join(cols, ", "), strings.Join(params, ", "))
}

// BindRow converts row values into driver arguments. SQLite stores
// timestamps as text, so time values are formatted in UTC for its date
// functions, matching what the MySQL driver sends.
func (d Dialect) BindRow(row []any) []any {
	if d != SQLite {
		return row
	}
	args := make([]any, len(row))
	for i, v := range row {
		if ts, ok := v.(time.Time); ok {
			args[i] = ts.UTC().Format(sqliteTimeLayout)
			continue
		}
		args[i] = v
	}
	return args
}
