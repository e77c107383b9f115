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

	_ "modernc.org/sqlite"

	"github.com/pgEdge/pgedge-ecomstats/internal/config"
	"github.com/pgEdge/pgedge-ecomstats/internal/logging"
)

func init() {
	Register(config.DriverSQLite, OpenSQLite)
}

// OpenSQLite opens (creating if needed) the SQLite file named by cfg.Name,
// or cfg.DSN when set.
func OpenSQLite(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	path := cfg.DSN
	if path == "" {
		path = cfg.Name
	}
	if path == "" {
		return nil, fmt.Errorf("sqlite database path is required")
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logging.Info().
		Str("driver", config.DriverSQLite).
		Str("path", path).
		Msg("Connected to database")

	return &sqlStore{db: conn, dialect: SQLite}, nil
}
