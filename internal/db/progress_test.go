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
	"bytes"
	"strings"
	"testing"

	"github.com/pgEdge/pgedge-ecomstats/internal/logging"
)

func TestProgressReporter(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(logging.Config{Level: "info", Output: &buf})
	defer logging.Init(logging.DefaultConfig())

	p := NewProgressReporter("orders", 250, 100)
	p.Update(50)
	if strings.Contains(buf.String(), "Inserting rows") {
		t.Error("Expected no progress line before the first interval")
	}

	p.Update(60)
	p.Update(140)
	if got := strings.Count(buf.String(), "Inserting rows"); got != 2 {
		t.Errorf("Expected 2 progress lines, got %d", got)
	}
	if p.Rows() != 250 {
		t.Errorf("Expected 250 rows, got %d", p.Rows())
	}

	p.Done()
	if !strings.Contains(buf.String(), "Table complete") {
		t.Error("Expected completion line")
	}
}
