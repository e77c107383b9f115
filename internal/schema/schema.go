//-------------------------------------------------------------------------
//
// pgEdge ecomstats
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package schema holds the table mapping for the e-commerce extract: for
// each table, its source file and ordered columns with declared SQL types.
package schema

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CurrentVersion is the schema document version this build understands.
const CurrentVersion = 1

// TemporalMarker marks a declared type whose values are parsed as timestamps.
const TemporalMarker = "DATETIME"

// ErrUnknownTable is returned when a table name is not in the mapping.
var ErrUnknownTable = errors.New("unknown table")

//go:embed ecommerce.yaml
var defaultSchema []byte

// Kind classifies a declared column type for value conversion.
type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindFloat
	KindDecimal
	KindTemporal
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindDecimal:
		return "decimal"
	case KindTemporal:
		return "temporal"
	default:
		return "text"
	}
}

// Schema is the full table mapping.
type Schema struct {
	Version int     `yaml:"version"`
	Tables  []Table `yaml:"tables"`
}

// Table maps one CSV file to one destination table.
type Table struct {
	Name    string   `yaml:"name"`
	File    string   `yaml:"file"`
	Columns []Column `yaml:"columns"`
}

// Column is a column name with its declared SQL type, e.g.
// "VARCHAR(50) PRIMARY KEY" or "DECIMAL(10,2)".
type Column struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Default returns the built-in schema mapping.
func Default() (*Schema, error) {
	return Parse(defaultSchema)
}

// Load reads a schema mapping from path, or returns the built-in mapping
// when path is empty.
func Load(path string) (*Schema, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a schema document.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the mapping for structural problems.
func (s *Schema) Validate() error {
	if s.Version != CurrentVersion {
		return fmt.Errorf("unsupported schema version %d (want %d)", s.Version, CurrentVersion)
	}
	if len(s.Tables) == 0 {
		return fmt.Errorf("schema defines no tables")
	}

	tables := make(map[string]bool, len(s.Tables))
	for _, t := range s.Tables {
		if t.Name == "" {
			return fmt.Errorf("table with empty name")
		}
		if tables[t.Name] {
			return fmt.Errorf("duplicate table %q", t.Name)
		}
		tables[t.Name] = true

		if t.File == "" {
			return fmt.Errorf("table %q: source file is required", t.Name)
		}
		if len(t.Columns) == 0 {
			return fmt.Errorf("table %q: no columns", t.Name)
		}

		cols := make(map[string]bool, len(t.Columns))
		for _, c := range t.Columns {
			if c.Name == "" {
				return fmt.Errorf("table %q: column with empty name", t.Name)
			}
			if cols[c.Name] {
				return fmt.Errorf("table %q: duplicate column %q", t.Name, c.Name)
			}
			cols[c.Name] = true
			if strings.TrimSpace(c.Type) == "" {
				return fmt.Errorf("table %q: column %q has no type", t.Name, c.Name)
			}
		}
	}
	return nil
}

// Table returns the named table.
func (s *Schema) Table(name string) (Table, error) {
	for _, t := range s.Tables {
		if t.Name == name {
			return t, nil
		}
	}
	return Table{}, fmt.Errorf("%w: %s", ErrUnknownTable, name)
}

// Names returns the table names in mapping order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.Tables))
	for i, t := range s.Tables {
		names[i] = t.Name
	}
	return names
}

// Select returns the named tables in mapping order. An empty list selects
// every table.
func (s *Schema) Select(names []string) ([]Table, error) {
	if len(names) == 0 {
		return s.Tables, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if _, err := s.Table(n); err != nil {
			return nil, err
		}
		want[n] = true
	}
	selected := make([]Table, 0, len(names))
	for _, t := range s.Tables {
		if want[t.Name] {
			selected = append(selected, t)
		}
	}
	return selected, nil
}

// ColumnNames returns the column names in order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// TemporalColumns returns the names of columns that need timestamp parsing.
func (t Table) TemporalColumns() []string {
	var names []string
	for _, c := range t.Columns {
		if c.IsTemporal() {
			names = append(names, c.Name)
		}
	}
	return names
}

// IsTemporal reports whether the declared type carries the temporal marker.
func (c Column) IsTemporal() bool {
	return strings.Contains(strings.ToUpper(c.Type), TemporalMarker)
}

// BaseType returns the upper-cased type name without precision or
// constraints: "DECIMAL(10,2)" -> "DECIMAL", "VARCHAR(50) PRIMARY KEY" -> "VARCHAR".
func (c Column) BaseType() string {
	t := strings.ToUpper(strings.TrimSpace(c.Type))
	if i := strings.IndexAny(t, "( "); i >= 0 {
		t = t[:i]
	}
	return t
}

// Kind classifies the column for value conversion.
func (c Column) Kind() Kind {
	if c.IsTemporal() {
		return KindTemporal
	}
	switch c.BaseType() {
	case "INT", "INTEGER", "BIGINT", "SMALLINT", "TINYINT", "MEDIUMINT":
		return KindInteger
	case "FLOAT", "DOUBLE", "REAL":
		return KindFloat
	case "DECIMAL", "NUMERIC":
		return KindDecimal
	default:
		return KindText
	}
}
