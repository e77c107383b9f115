//-------------------------------------------------------------------------
//
// pgEdge ecomstats
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-ecomstats/internal/db"
)

func TestCatalogue(t *testing.T) {
	queries := Queries()
	assert.Len(t, queries, 14)

	names := make(map[string]bool)
	for _, q := range queries {
		assert.False(t, names[q.Name], "duplicate query %s", q.Name)
		names[q.Name] = true

		assert.NotEmpty(t, q.Description, q.Name)
		assert.NotEmpty(t, q.Columns, q.Name)
		assert.NotNil(t, q.present, q.Name)
		for _, d := range db.Dialects() {
			stmt, err := q.Statement(d)
			require.NoError(t, err, "%s/%s", q.Name, d)
			assert.NotEmpty(t, strings.TrimSpace(stmt))
		}
	}
}

func TestCharts(t *testing.T) {
	charts := map[string]string{}
	for _, q := range Queries() {
		if q.Chart != "" {
			charts[q.Name] = q.Chart
		}
	}
	assert.Equal(t, map[string]string{
		"customers_by_state":  "customers_by_state.png",
		"monthly_orders_2018": "monthly_orders_2018.png",
		"top_sellers":         "top_sellers.png",
		"cumulative_sales":    "cumulative_sales.png",
	}, charts)
}

func TestMySQLStatements(t *testing.T) {
	q, err := Lookup("orders_2017")
	require.NoError(t, err)
	stmt, _ := q.Statement(db.MySQL)
	assert.Equal(t, "SELECT COUNT(order_id) FROM orders WHERE YEAR(order_purchase_timestamp) = 2017", stmt)

	q, err = Lookup("top_sellers")
	require.NoError(t, err)
	stmt, _ = q.Statement(db.MySQL)
	assert.Contains(t, stmt, "DENSE_RANK() OVER (ORDER BY revenue DESC) AS rn")
}

func TestSQLiteDateParts(t *testing.T) {
	q, err := Lookup("orders_2017")
	require.NoError(t, err)
	stmt, _ := q.Statement(db.SQLite)
	assert.Contains(t, stmt, "CAST(strftime('%Y', order_purchase_timestamp) AS INTEGER) = 2017")
	assert.NotContains(t, stmt, "{col}")
}

func TestLookupAndSelect(t *testing.T) {
	_, err := Lookup("nope")
	assert.ErrorIs(t, err, ErrUnknownQuery)

	all, err := Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, 14)

	// Run order, not argument order
	some, err := Select([]string{"yoy_growth", "orders_2017"})
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, "orders_2017", some[0].Name)
	assert.Equal(t, "yoy_growth", some[1].Name)

	_, err = Select([]string{"orders_2017", "nope"})
	assert.ErrorIs(t, err, ErrUnknownQuery)
}
