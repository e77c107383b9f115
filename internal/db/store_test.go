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
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-ecomstats/internal/config"
	"github.com/pgEdge/pgedge-ecomstats/internal/schema"
)

func openTestStore(t *testing.T) Store {
	t.Helper()
	store, err := Open(context.Background(), config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Name:   filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sellerRows(n int) [][]any {
	rows := make([][]any, n)
	for i := range rows {
		rows[i] = []any{fmt.Sprintf("seller-%02d", i), int64(1000 + i), "campinas", "SP"}
	}
	return rows
}

func TestDrivers(t *testing.T) {
	assert.Equal(t, []string{"mysql", "postgres", "sqlite"}, Drivers())
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Driver: "oracle"})
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestMySQLDSN(t *testing.T) {
	dsn := MySQLDSN(config.DatabaseConfig{
		Host:     "localhost",
		User:     "root",
		Password: "pw",
		Name:     "ecommerce",
	})
	assert.True(t, strings.HasPrefix(dsn, "root:pw@tcp(localhost:3306)/ecommerce"), dsn)
	assert.Contains(t, dsn, "parseTime=true")

	explicit := "u:p@tcp(db:3307)/x"
	assert.Equal(t, explicit, MySQLDSN(config.DatabaseConfig{DSN: explicit}))
}

func TestPostgresConnString(t *testing.T) {
	got := PostgresConnString(config.DatabaseConfig{
		Host:     "db",
		User:     "app",
		Password: "secret",
		Name:     "ecommerce",
	})
	assert.Equal(t, "postgres://app:secret@db:5432/ecommerce", got)

	got = PostgresConnString(config.DatabaseConfig{Host: "db", Port: 6432, User: "app", Name: "x"})
	assert.Equal(t, "postgres://app@db:6432/x", got)
}

func TestReplaceTable(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	n, err := store.ReplaceTable(ctx, sellersTable, sellerRows(10), InsertOptions{BatchSize: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)

	count, err := store.Count(ctx, "sellers")
	require.NoError(t, err)
	assert.Equal(t, int64(10), count)

	cols, err := store.Columns(ctx, "sellers")
	require.NoError(t, err)
	assert.Equal(t, sellersTable.ColumnNames(), cols)
}

func TestReplaceTableOverwrites(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	_, err := store.ReplaceTable(ctx, sellersTable, sellerRows(10), DefaultInsertOptions())
	require.NoError(t, err)
	first, err := store.Query(ctx, "SELECT * FROM sellers ORDER BY seller_id")
	require.NoError(t, err)

	_, err = store.ReplaceTable(ctx, sellersTable, sellerRows(10), DefaultInsertOptions())
	require.NoError(t, err)
	second, err := store.Query(ctx, "SELECT * FROM sellers ORDER BY seller_id")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, second.Rows, 10)
}

func TestReplaceTableRollsBack(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	_, err := store.ReplaceTable(ctx, sellersTable, sellerRows(4), DefaultInsertOptions())
	require.NoError(t, err)

	// Duplicate primary key fails the second load
	dup := sellerRows(2)
	dup[1][0] = dup[0][0]
	_, err = store.ReplaceTable(ctx, sellersTable, dup, DefaultInsertOptions())
	require.Error(t, err)

	count, err := store.Count(ctx, "sellers")
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}

func TestNullsAndTimestamps(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	orders := schema.Table{
		Name: "orders",
		Columns: []schema.Column{
			{Name: "order_id", Type: "VARCHAR(50) PRIMARY KEY"},
			{Name: "order_status", Type: "TEXT"},
			{Name: "order_purchase_timestamp", Type: "DATETIME"},
			{Name: "order_delivered_customer_date", Type: "DATETIME"},
		},
	}
	ts := time.Date(2017, 10, 2, 10, 56, 33, 0, time.UTC)
	rows := [][]any{
		{"o1", "delivered", ts, ts.Add(72 * time.Hour)},
		{"o2", nil, ts, nil},
	}
	_, err := store.ReplaceTable(ctx, orders, rows, DefaultInsertOptions())
	require.NoError(t, err)

	res, err := store.Query(ctx,
		"SELECT COUNT(*) FROM orders WHERE order_status IS NULL AND order_delivered_customer_date IS NULL")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Rows[0][0])

	res, err = store.Query(ctx, "SELECT COUNT(*) FROM orders WHERE order_status = 'NaN'")
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Rows[0][0])

	res, err = store.Query(ctx,
		"SELECT strftime('%Y', order_purchase_timestamp) FROM orders WHERE order_id = 'o1'")
	require.NoError(t, err)
	assert.Equal(t, "2017", res.Rows[0][0])
}

func TestLoadRecords(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	records, err := store.LoadRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	loadedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, store.SaveLoadRecord(ctx, LoadRecord{
		Table: "sellers", SourceFile: "sellers.csv", RowCount: 5, LoadedAt: loadedAt, Version: "test",
	}))
	require.NoError(t, store.SaveLoadRecord(ctx, LoadRecord{
		Table: "sellers", SourceFile: "sellers.csv", RowCount: 10, LoadedAt: loadedAt, Version: "test",
	}))

	records, err = store.LoadRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(10), records[0].RowCount)
	assert.True(t, loadedAt.Equal(records[0].LoadedAt))
}
