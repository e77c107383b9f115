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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-ecomstats/internal/db"
	"github.com/pgEdge/pgedge-ecomstats/internal/schema"
	"github.com/pgEdge/pgedge-ecomstats/internal/testutil"
)

func execute(t *testing.T, store db.Store, name string) *Frame {
	t.Helper()
	q, err := Lookup(name)
	require.NoError(t, err)
	f, err := New(store, &bytes.Buffer{}, Options{}).Execute(context.Background(), q)
	require.NoError(t, err)
	return f
}

func TestOrders2017(t *testing.T) {
	store := seedStore(t)

	f := execute(t, store, "orders_2017")
	assert.Equal(t, int64(3), f.Value())
}

func TestTopSellersDenseRank(t *testing.T) {
	store := seedStore(t)

	f := execute(t, store, "top_sellers")
	require.Equal(t, 2, f.Len())

	ranks := map[any]any{}
	for _, row := range f.Rows {
		ranks[row[0]] = row[2]
	}
	assert.Equal(t, int64(1), ranks["seller-b"])
	assert.Equal(t, int64(2), ranks["seller-a"])
	assert.Equal(t, "seller-b", f.Rows[0][0])
}

func TestTopSellersTiesShareRank(t *testing.T) {
	store := seedStore(t)
	ctx := context.Background()

	s, err := schema.Default()
	require.NoError(t, err)
	items, err := s.Table("order_items")
	require.NoError(t, err)

	// seller-c collects three orders to tie seller-b
	_, err = store.ReplaceTable(ctx, items, [][]any{
		{"o1", int64(1), "p1", "seller-a", nil, 40.0, 5.0},
		{"o2", int64(1), "p2", "seller-b", nil, 250.0, 10.0},
		{"o3", int64(1), "p1", "seller-c", nil, 40.0, 5.0},
		{"o4", int64(1), "p1", "seller-c", nil, 40.0, 5.0},
		{"o5", int64(1), "p1", "seller-c", nil, 40.0, 5.0},
		{"o5", int64(2), "p1", "seller-d", nil, 40.0, 5.0},
	}, db.DefaultInsertOptions())
	require.NoError(t, err)

	// seller-c: 50 + 80 + 20 = 150, seller-a: 100, seller-d: 20
	_, err = store.ReplaceTable(ctx, mustTable(t, s, "payments"), [][]any{
		{"o1", int64(1), "credit_card", int64(1), 100.0},
		{"o2", int64(1), "boleto", int64(1), 150.0},
		{"o3", int64(1), "voucher", int64(1), 50.0},
		{"o4", int64(1), "credit_card", int64(1), 80.0},
		{"o5", int64(1), "credit_card", int64(1), 20.0},
	}, db.DefaultInsertOptions())
	require.NoError(t, err)

	f := execute(t, store, "top_sellers")
	ranks := map[any]int64{}
	for _, row := range f.Rows {
		ranks[row[0]] = row[2].(int64)
	}
	// o5 has two items from different sellers, each joined to its payment
	assert.Equal(t, int64(1), ranks["seller-b"])
	assert.Equal(t, int64(1), ranks["seller-c"])
	assert.Equal(t, int64(2), ranks["seller-a"])
	assert.Equal(t, int64(3), ranks["seller-d"])
}

func TestMonthlyOrders2018(t *testing.T) {
	store := seedStore(t)

	counts, err := MonthlyCounts(execute(t, store, "monthly_orders_2018"))
	require.NoError(t, err)
	require.Len(t, counts, 12)
	assert.Equal(t, 1.0, counts[2])
	assert.Equal(t, 1.0, counts[7])
	assert.Equal(t, 0.0, counts[0])
}

func TestInstallmentShare(t *testing.T) {
	store := seedStore(t)

	f := execute(t, store, "installment_share")
	v, err := f.Floats("percentage")
	require.NoError(t, err)
	assert.InDelta(t, 80.0, v[0], 1e-9)
}

func TestYearOverYear(t *testing.T) {
	store := seedStore(t)

	f := execute(t, store, "yoy_growth")
	require.Equal(t, 2, f.Len())
	assert.Nil(t, f.Rows[0][2])

	growth, err := f.Floats("Growth_Percentage")
	require.NoError(t, err)
	// 2017: 450, 2018: 100
	assert.InDelta(t, -77.778, growth[1], 1e-9)
}

func TestCumulativeSales(t *testing.T) {
	store := seedStore(t)

	f := execute(t, store, "cumulative_sales")
	assert.Equal(t, 4, f.Len())

	series, err := CumulativeSeries(f)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, int64(2017), series[0].Year)
	assert.Len(t, series[0].Points, 2)
}

func TestRunAllQueriesWritesCharts(t *testing.T) {
	store := seedStore(t)
	dir := filepath.Join(t.TempDir(), "charts")

	var out bytes.Buffer
	r := New(store, &out, Options{OutputDir: dir, Charts: true})
	require.NoError(t, r.Run(context.Background()))
	r.PrintSummary()

	assert.Len(t, r.Metrics(), len(Queries()))
	for _, name := range []string{ChartCustomersByState, ChartMonthlyOrders, ChartTopSellers, ChartCumulativeSales} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Greater(t, info.Size(), int64(0))
	}

	text := out.String()
	assert.Contains(t, text, "Total orders placed in 2017: 3")
	assert.Contains(t, text, "Percentage of orders paid in installments: 80")
	assert.Contains(t, text, "Correlation between order count and price:")
}

func TestRunWithoutCharts(t *testing.T) {
	store := seedStore(t)
	dir := t.TempDir()

	var out bytes.Buffer
	r := New(store, &out, Options{OutputDir: dir, Queries: []string{"customers_by_state", "monthly_orders_2018"}})
	require.NoError(t, r.Run(context.Background()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Contains(t, out.String(), "SP")
	assert.Contains(t, out.String(), "December")
}

func TestRunEmptyTablesWritesCharts(t *testing.T) {
	ctx := context.Background()
	store := testutil.OpenSQLite(t)
	s, err := schema.Default()
	require.NoError(t, err)
	for _, tbl := range s.Tables {
		_, err := store.ReplaceTable(ctx, tbl, nil, db.DefaultInsertOptions())
		require.NoError(t, err, tbl.Name)
	}

	dir := t.TempDir()
	r := New(store, &bytes.Buffer{}, Options{OutputDir: dir, Charts: true})
	require.NoError(t, r.Run(ctx))
	assert.Len(t, r.Metrics(), len(Queries()))

	for _, name := range []string{ChartCustomersByState, ChartMonthlyOrders, ChartTopSellers, ChartCumulativeSales} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Greater(t, info.Size(), int64(0), name)
	}
}

func TestSaveBarChartEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.png")
	err := saveBarChart(path, barSpec{
		Title:  "Top Sellers by Revenue",
		XLabel: "Seller_ID",
		YLabel: "Revenue",
		Color:  barBlue,
		Labels: true,
	})
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestRunUnknownQuery(t *testing.T) {
	r := New(seedStore(t), &bytes.Buffer{}, Options{Queries: []string{"nope"}})
	assert.ErrorIs(t, r.Run(context.Background()), ErrUnknownQuery)
}

func TestRunMissingTableFails(t *testing.T) {
	store := testutil.OpenSQLite(t)

	r := New(store, &bytes.Buffer{}, Options{Queries: []string{"distinct_cities"}, Tables: []string{"customers"}})
	assert.Error(t, r.Run(context.Background()))
}

func mustTable(t *testing.T, s *schema.Schema, name string) schema.Table {
	t.Helper()
	tbl, err := s.Table(name)
	require.NoError(t, err)
	return tbl
}
