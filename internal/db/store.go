//-------------------------------------------------------------------------
//
// pgEdge ecomstats
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package db provides database access for ecomstats: one Store per
// supported driver, each holding a single connection.
package db

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/pgEdge/pgedge-ecomstats/internal/config"
	"github.com/pgEdge/pgedge-ecomstats/internal/schema"
)

// ErrUnknownDriver is returned for a driver with no registered opener.
var ErrUnknownDriver = errors.New("unknown database driver")

// Store is the database surface the loader and reporter need.
type Store interface {
	// Dialect returns the SQL dialect of the connection.
	Dialect() Dialect

	// ReplaceTable drops t, recreates it from the mapping and inserts rows.
	// It returns the number of rows inserted.
	ReplaceTable(ctx context.Context, t schema.Table, rows [][]any, opts InsertOptions) (int64, error)

	// Query runs a read statement and returns every row.
	Query(ctx context.Context, query string, args ...any) (*Result, error)

	// Columns returns the column names of a table in table order.
	Columns(ctx context.Context, table string) ([]string, error)

	// Count returns the number of rows in a table.
	Count(ctx context.Context, table string) (int64, error)

	// SaveLoadRecord records a completed table load.
	SaveLoadRecord(ctx context.Context, rec LoadRecord) error

	// LoadRecords returns all recorded table loads.
	LoadRecords(ctx context.Context) ([]LoadRecord, error)

	// Close releases the connection.
	Close() error
}

// InsertOptions configures the bulk insert in ReplaceTable.
type InsertOptions struct {
	// BatchSize is the number of rows sent per batch.
	BatchSize int

	// ProgressInterval is how often to log progress (in rows).
	ProgressInterval int64
}

// DefaultInsertOptions returns default insert configuration.
func DefaultInsertOptions() InsertOptions {
	return InsertOptions{
		BatchSize:        1000,
		ProgressInterval: 100000,
	}
}

func (o InsertOptions) withDefaults() InsertOptions {
	d := DefaultInsertOptions()
	if o.BatchSize < 1 {
		o.BatchSize = d.BatchSize
	}
	if o.ProgressInterval < 1 {
		o.ProgressInterval = d.ProgressInterval
	}
	return o
}

// Result holds the rows of a query. Numeric values are normalized to
// int64 or float64 regardless of driver.
type Result struct {
	Columns []string
	Rows    [][]any
}

// Opener opens a Store for a database configuration.
type Opener func(ctx context.Context, cfg config.DatabaseConfig) (Store, error)

var (
	registry = make(map[string]Opener)
	mu       sync.RWMutex
)

// Register adds an opener for a driver name.
func Register(driver string, open Opener) {
	mu.Lock()
	defer mu.Unlock()
	registry[driver] = open
}

// Open connects to the database named by cfg.Driver.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	mu.RLock()
	open, ok := registry[cfg.Driver]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, cfg.Driver)
	}
	if cfg.Port == 0 {
		cfg.Port = config.DefaultPort(cfg.Driver)
	}
	return open(ctx, cfg)
}

// Drivers returns all registered driver names, sorted.
func Drivers() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
