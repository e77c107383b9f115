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
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-ecomstats/internal/db"
	"github.com/pgEdge/pgedge-ecomstats/internal/schema"
	"github.com/pgEdge/pgedge-ecomstats/internal/testutil"
)

func ts(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 10, 30, 0, 0, time.UTC)
}

// seedStore loads a small consistent data set:
//   - five orders, three placed in 2017 and two in 2018
//   - seller A earns 100, seller B earns 300
func seedStore(t *testing.T) db.Store {
	t.Helper()
	store := testutil.OpenSQLite(t)

	s, err := schema.Default()
	require.NoError(t, err)

	data := map[string][][]any{
		"customers": {
			{"c1", "u1", int64(1001), "sao paulo", "SP"},
			{"c2", "u2", int64(1002), "sao paulo", "SP"},
			{"c3", "u3", int64(1003), "campinas", "SP"},
			{"c4", "u4", int64(2001), "rio de janeiro", "RJ"},
			{"c5", "u5", int64(2002), "niteroi", "RJ"},
		},
		"geolocation": {
			{int64(1001), -23.55, -46.63, "sao paulo", "SP"},
		},
		"orders": {
			{"o1", "c1", "delivered", ts(2017, time.March, 4), ts(2017, time.March, 4), nil, nil, ts(2017, time.March, 20)},
			{"o2", "c2", "delivered", ts(2017, time.June, 9), nil, nil, nil, nil},
			{"o3", "c3", "delivered", ts(2017, time.June, 21), nil, nil, nil, nil},
			{"o4", "c4", "delivered", ts(2018, time.March, 2), nil, nil, nil, nil},
			{"o5", "c5", "shipped", ts(2018, time.August, 15), nil, nil, nil, nil},
		},
		"order_items": {
			{"o1", int64(1), "p1", "seller-a", ts(2017, time.March, 10), 40.0, 5.0},
			{"o2", int64(1), "p2", "seller-b", ts(2017, time.June, 15), 250.0, 10.0},
		},
		"products": {
			{"p1", "toys", int64(20), int64(300), int64(1), 500.0, 10.0, 10.0, 10.0},
			{"p2", "garden", int64(25), int64(400), int64(2), 900.0, 20.0, 15.0, 10.0},
		},
		"sellers": {
			{"seller-a", int64(13023), "campinas", "SP"},
			{"seller-b", int64(20000), "rio de janeiro", "RJ"},
		},
		"payments": {
			{"o1", int64(1), "credit_card", int64(3), 100.0},
			{"o2", int64(1), "boleto", int64(1), 300.0},
			{"o3", int64(1), "voucher", int64(0), 50.0},
			{"o4", int64(1), "credit_card", int64(2), 80.0},
			{"o5", int64(1), "credit_card", int64(1), 20.0},
		},
	}

	ctx := context.Background()
	for _, tbl := range s.Tables {
		_, err := store.ReplaceTable(ctx, tbl, data[tbl.Name], db.DefaultInsertOptions())
		require.NoError(t, err, "seeding %s", tbl.Name)
	}
	return store
}
