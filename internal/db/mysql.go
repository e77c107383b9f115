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
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/pgEdge/pgedge-ecomstats/internal/config"
	"github.com/pgEdge/pgedge-ecomstats/internal/logging"
)

func init() {
	Register(config.DriverMySQL, OpenMySQL)
}

// MySQLDSN builds a go-sql-driver DSN from the configuration. An explicit
// DSN is returned unchanged.
func MySQLDSN(cfg config.DatabaseConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	port := cfg.Port
	if port == 0 {
		port = config.DefaultPort(config.DriverMySQL)
	}

	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(port))
	mc.DBName = cfg.Name
	mc.ParseTime = true
	return mc.FormatDSN()
}

// OpenMySQL connects to a MySQL server with a single connection.
func OpenMySQL(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	dsn := MySQLDSN(cfg)

	logging.Debug().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Name).
		Msg("Connecting to database")

	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql connection: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxIdleTime(60 * time.Second)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logging.Info().
		Str("driver", config.DriverMySQL).
		Str("host", cfg.Host).
		Str("database", cfg.Name).
		Msg("Connected to database")

	return &sqlStore{db: conn, dialect: MySQL}, nil
}
