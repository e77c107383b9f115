//-------------------------------------------------------------------------
//
// pgEdge ecomstats
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"testing"
	"time"
)

func TestNewFaker(t *testing.T) {
	f := NewFaker(0)
	if f == nil {
		t.Fatal("NewFaker returned nil")
	}
	if f.faker == nil {
		t.Fatal("faker field is nil")
	}
}

func TestNewFakerWithSeed(t *testing.T) {
	seed := uint64(12345)
	f1 := NewFaker(seed)
	f2 := NewFaker(seed)

	// Same seed should produce same sequence
	for i := 0; i < 10; i++ {
		v1 := f1.Int(0, 1000)
		v2 := f2.Int(0, 1000)
		if v1 != v2 {
			t.Errorf("Same seed produced different values: %d != %d", v1, v2)
		}
	}
}

func TestFakerID(t *testing.T) {
	f := NewFaker(1)
	id := f.ID()
	if len(id) != 32 {
		t.Errorf("Expected 32 character id, got %q", id)
	}
	if id == f.ID() {
		t.Error("Expected distinct ids")
	}
}

func TestFakerZipPrefix(t *testing.T) {
	f := NewFaker(1)
	for i := 0; i < 100; i++ {
		zip := f.ZipPrefix()
		if len(zip) != 5 {
			t.Fatalf("Expected 5 digit zip prefix, got %q", zip)
		}
	}
}

func TestFakerDateRange(t *testing.T) {
	f := NewFaker(1)
	start := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2018, 12, 31, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 100; i++ {
		d := f.DateRange(start, end)
		if d.Before(start) || d.After(end) {
			t.Errorf("Date %v out of range [%v, %v]", d, start, end)
		}
	}
}

func TestChoose(t *testing.T) {
	f := NewFaker(1)
	items := []string{"a", "b", "c"}

	for i := 0; i < 100; i++ {
		item := Choose(f, items)
		if item != "a" && item != "b" && item != "c" {
			t.Errorf("Choose returned unexpected item: %s", item)
		}
	}

	if got := Choose(f, []string{}); got != "" {
		t.Errorf("Expected zero value for empty slice, got %q", got)
	}
}

func TestChooseWeighted(t *testing.T) {
	f := NewFaker(1)
	items := []string{"common", "never"}
	weights := []int{100, 0}

	for i := 0; i < 100; i++ {
		if got := ChooseWeighted(f, items, weights); got != "common" {
			t.Errorf("Expected common, got %s", got)
		}
	}
}
