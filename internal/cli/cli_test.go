//-------------------------------------------------------------------------
//
// pgEdge ecomstats
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-ecomstats/internal/report"
	"github.com/pgEdge/pgedge-ecomstats/pkg/version"
)

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "ecomstats "+version.Short())
}

func TestSchemaCommand(t *testing.T) {
	out, err := execute(t, "schema", "--driver", "postgres", "--log-level", "error")
	require.NoError(t, err)

	assert.Contains(t, out, `DROP TABLE IF EXISTS "orders";`)
	assert.Contains(t, out, `"order_purchase_timestamp" TIMESTAMP`)
	assert.NotContains(t, out, "DATETIME")
}

func TestSchemaCommandUnknownDriver(t *testing.T) {
	_, err := execute(t, "schema", "--driver", "oracle", "--log-level", "error")
	assert.Error(t, err)
}

func TestQueriesCommand(t *testing.T) {
	out, err := execute(t, "queries", "--log-level", "error")
	require.NoError(t, err)

	for _, q := range report.Queries() {
		assert.Contains(t, out, q.Name)
	}
}

func TestSampleLoadReport(t *testing.T) {
	dataDir := t.TempDir()
	chartDir := t.TempDir()
	dbPath := filepath.Join(t.TempDir(), "ecommerce.db")

	out, err := execute(t, "sample", "--data-dir", dataDir, "--orders", "120", "--seed", "5",
		"--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 7 files")

	out, err = execute(t, "schema", "check", "--data-dir", dataDir, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "7 files match the schema mapping")

	out, err = execute(t, "load", "--driver", "sqlite", "--database", dbPath,
		"--data-dir", dataDir, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "7 tables")

	out, err = execute(t, "report", "--driver", "sqlite", "--database", dbPath,
		"--output-dir", chartDir, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Total orders placed in 2017:")

	for _, name := range []string{
		report.ChartCustomersByState,
		report.ChartMonthlyOrders,
		report.ChartTopSellers,
		report.ChartCumulativeSales,
	} {
		_, err := os.Stat(filepath.Join(chartDir, name))
		assert.NoError(t, err, name)
	}
}

func TestLoadMissingDataDir(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ecommerce.db")
	_, err := execute(t, "load", "--driver", "sqlite", "--database", dbPath,
		"--data-dir", filepath.Join(t.TempDir(), "missing"), "--log-level", "error")
	assert.Error(t, err)
}
