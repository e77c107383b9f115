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
	"errors"
	"testing"
	"time"

	"github.com/pgEdge/pgedge-ecomstats/internal/schema"
)

var sellersTable = schema.Table{
	Name: "sellers",
	File: "sellers.csv",
	Columns: []schema.Column{
		{Name: "seller_id", Type: "VARCHAR(50) PRIMARY KEY"},
		{Name: "seller_zip_code_prefix", Type: "INT"},
		{Name: "seller_city", Type: "TEXT"},
		{Name: "seller_state", Type: "TEXT"},
	},
}

func TestParseDialect(t *testing.T) {
	for _, name := range []string{"mysql", "postgres", "sqlite"} {
		d, err := ParseDialect(name)
		if err != nil {
			t.Fatalf("ParseDialect(%q) failed: %v", name, err)
		}
		if string(d) != name {
			t.Errorf("Expected dialect %s, got %s", name, d)
		}
	}

	_, err := ParseDialect("oracle")
	if !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("Expected ErrUnknownDriver, got %v", err)
	}
}

func TestQuoteIdent(t *testing.T) {
	tests := []struct {
		dialect Dialect
		name    string
		want    string
	}{
		{MySQL, "orders", "`orders`"},
		{SQLite, "orders", "`orders`"},
		{Postgres, "orders", `"orders"`},
		{MySQL, "we`ird", "`we``ird`"},
		{Postgres, `we"ird`, `"we""ird"`},
	}

	for _, tt := range tests {
		if got := tt.dialect.QuoteIdent(tt.name); got != tt.want {
			t.Errorf("%s.QuoteIdent(%q): expected %s, got %s", tt.dialect, tt.name, tt.want, got)
		}
	}
}

func TestPlaceholder(t *testing.T) {
	if got := Postgres.Placeholder(3); got != "$3" {
		t.Errorf("Expected $3, got %s", got)
	}
	if got := MySQL.Placeholder(3); got != "?" {
		t.Errorf("Expected ?, got %s", got)
	}
}

func TestCreateTableSQL(t *testing.T) {
	want := "CREATE TABLE `sellers` (`seller_id` VARCHAR(50) PRIMARY KEY, " +
		"`seller_zip_code_prefix` INT, `seller_city` TEXT, `seller_state` TEXT)"
	if got := MySQL.CreateTableSQL(sellersTable); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}

	orders := schema.Table{
		Name: "orders",
		Columns: []schema.Column{
			{Name: "order_id", Type: "VARCHAR(50) PRIMARY KEY"},
			{Name: "order_purchase_timestamp", Type: "DATETIME"},
		},
	}
	want = `CREATE TABLE "orders" ("order_id" VARCHAR(50) PRIMARY KEY, "order_purchase_timestamp" TIMESTAMP)`
	if got := Postgres.CreateTableSQL(orders); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestDropAndInsertSQL(t *testing.T) {
	if got := SQLite.DropTableSQL(sellersTable); got != "DROP TABLE IF EXISTS `sellers`" {
		t.Errorf("Unexpected drop statement: %s", got)
	}

	want := `INSERT INTO "sellers" ("seller_id", "seller_zip_code_prefix", "seller_city", "seller_state") VALUES ($1, $2, $3, $4)`
	if got := Postgres.InsertSQL(sellersTable); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}

	want = "INSERT INTO `sellers` (`seller_id`, `seller_zip_code_prefix`, `seller_city`, `seller_state`) VALUES (?, ?, ?, ?)"
	if got := MySQL.InsertSQL(sellersTable); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestTransactionalDDL(t *testing.T) {
	if MySQL.TransactionalDDL() {
		t.Error("Expected MySQL DDL to be non-transactional")
	}
	if !Postgres.TransactionalDDL() || !SQLite.TransactionalDDL() {
		t.Error("Expected PostgreSQL and SQLite DDL to be transactional")
	}
}

func TestBindRow(t *testing.T) {
	ts := time.Date(2017, 10, 2, 10, 56, 33, 0, time.UTC)
	row := []any{"a", int64(1), ts, nil}

	got := SQLite.BindRow(row)
	if got[2] != "2017-10-02 10:56:33" {
		t.Errorf("Expected formatted timestamp, got %v", got[2])
	}
	if got[3] != nil {
		t.Errorf("Expected nil to pass through, got %v", got[3])
	}

	got = MySQL.BindRow(row)
	if got[2] != ts {
		t.Errorf("Expected time value unchanged for mysql, got %v", got[2])
	}
}

func TestBindRowConvertsToUTC(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)
	ts := time.Date(2017, 12, 31, 23, 0, 0, 0, est)

	got := SQLite.BindRow([]any{ts})
	if got[0] != "2018-01-01 04:00:00" {
		t.Errorf("Expected 2018-01-01 04:00:00, got %v", got[0])
	}
}

func TestNormalizeValue(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		dbType string
		want   any
	}{
		{"decimal bytes", []byte("12.50"), "DECIMAL", 12.5},
		{"bigint bytes", []byte("42"), "BIGINT", int64(42)},
		{"unsigned bytes", []byte("7"), "UNSIGNED BIGINT", int64(7)},
		{"text bytes", []byte("sao paulo"), "VARCHAR", "sao paulo"},
		{"int32", int32(5), "", int64(5)},
		{"float32", float32(0.5), "", 0.5},
		{"nil", nil, "TEXT", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeValue(tt.value, tt.dbType); got != tt.want {
				t.Errorf("Expected %v (%T), got %v (%T)", tt.want, tt.want, got, got)
			}
		})
	}
}
