//-------------------------------------------------------------------------
//
// pgEdge ecomstats
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package termui

import (
	"strings"
	"testing"
)

func TestTable(t *testing.T) {
	out := Table([]string{"State", "Customer_Count"}, [][]string{
		{"SP", "41746"},
		{"RJ", "12852"},
	})

	for _, want := range []string{"State", "Customer_Count", "SP", "41746", "RJ"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q:\n%s", want, out)
		}
	}
}
