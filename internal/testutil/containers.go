//go:build integration

//-------------------------------------------------------------------------
//
// pgEdge ecomstats
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pgEdge/pgedge-ecomstats/internal/config"
)

const (
	MySQLImage    = "mysql:8.0.36"
	PostgresImage = "postgres:17-alpine"

	TestUser     = "ecomstats"
	TestPassword = "ecomstats"
	TestDatabase = "ecommerce"
)

// SkipIfNoDocker skips the test when ECOMSTATS_SKIP_CONTAINERS is set.
func SkipIfNoDocker(t *testing.T) {
	if os.Getenv("ECOMSTATS_SKIP_CONTAINERS") != "" {
		t.Skip("containers disabled, skipping integration test")
	}
}

// StartMySQL starts a MySQL container and returns a database config for it.
// The container is terminated when the test ends.
func StartMySQL(t *testing.T) config.DatabaseConfig {
	t.Helper()
	SkipIfNoDocker(t)

	ctx := context.Background()
	ctr, err := mysql.Run(ctx,
		MySQLImage,
		mysql.WithUsername(TestUser),
		mysql.WithPassword(TestPassword),
		mysql.WithDatabase(TestDatabase),
	)
	if err != nil {
		t.Skipf("MySQL container not available: %v", err)
	}
	t.Cleanup(func() {
		ctr.Terminate(context.Background()) //nolint:errcheck
	})

	dsn, err := ctr.ConnectionString(ctx, "parseTime=true")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	return config.DatabaseConfig{Driver: config.DriverMySQL, DSN: dsn}
}

// StartPostgres starts a PostgreSQL container and returns a database
// config for it. The container is terminated when the test ends.
func StartPostgres(t *testing.T) config.DatabaseConfig {
	t.Helper()
	SkipIfNoDocker(t)

	ctx := context.Background()
	ctr, err := postgres.Run(ctx,
		PostgresImage,
		postgres.WithUsername(TestUser),
		postgres.WithPassword(TestPassword),
		postgres.WithDatabase(TestDatabase),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("PostgreSQL container not available: %v", err)
	}
	t.Cleanup(func() {
		ctr.Terminate(context.Background()) //nolint:errcheck
	})

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("%v", fmt.Errorf("get connection string: %w", err))
	}

	return config.DatabaseConfig{Driver: config.DriverPostgres, DSN: connStr}
}
