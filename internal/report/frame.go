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
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cast"

	"github.com/pgEdge/pgedge-ecomstats/internal/db"
	"github.com/pgEdge/pgedge-ecomstats/internal/termui"
)

// ErrColumnMismatch is returned when a result does not have the number of
// columns its query names.
var ErrColumnMismatch = errors.New("result column count does not match query")

// Frame is a query result bound to named columns.
type Frame struct {
	Columns []string
	Rows    [][]any
}

// NewFrame binds a result to the given column names.
func NewFrame(columns []string, res *db.Result) (*Frame, error) {
	if len(res.Columns) != len(columns) {
		return nil, fmt.Errorf("%w: got %d columns, expected %d", ErrColumnMismatch,
			len(res.Columns), len(columns))
	}
	return &Frame{Columns: columns, Rows: res.Rows}, nil
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.Rows)
}

// Head returns a frame with at most the first n rows.
func (f *Frame) Head(n int) *Frame {
	if n < 0 || n >= len(f.Rows) {
		return f
	}
	return &Frame{Columns: f.Columns, Rows: f.Rows[:n]}
}

// Index returns the position of the named column.
func (f *Frame) Index(name string) (int, error) {
	for i, c := range f.Columns {
		if c == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("no column %q", name)
}

// Value returns the first column of the first row, or nil for an empty frame.
func (f *Frame) Value() any {
	if len(f.Rows) == 0 || len(f.Rows[0]) == 0 {
		return nil
	}
	return f.Rows[0][0]
}

// Floats returns the named column as float64 values. NULL becomes NaN.
func (f *Frame) Floats(name string) ([]float64, error) {
	idx, err := f.Index(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(f.Rows))
	for i, row := range f.Rows {
		if row[idx] == nil {
			out[i] = math.NaN()
			continue
		}
		v, err := cast.ToFloat64E(row[idx])
		if err != nil {
			return nil, fmt.Errorf("column %q row %d: %w", name, i+1, err)
		}
		out[i] = v
	}
	return out, nil
}

// Strings returns the named column formatted as text.
func (f *Frame) Strings(name string) ([]string, error) {
	idx, err := f.Index(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(f.Rows))
	for i, row := range f.Rows {
		out[i] = FormatValue(row[idx])
	}
	return out, nil
}

// SortBy returns a copy of the frame stably sorted on a numeric column.
func (f *Frame) SortBy(name string, descending bool) (*Frame, error) {
	keys, err := f.Floats(name)
	if err != nil {
		return nil, err
	}

	order := make([]int, len(f.Rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ka, kb := keys[order[a]], keys[order[b]]
		if descending {
			return ka > kb
		}
		return ka < kb
	})

	rows := make([][]any, len(order))
	for i, idx := range order {
		rows[i] = f.Rows[idx]
	}
	return &Frame{Columns: f.Columns, Rows: rows}, nil
}

// Render writes the frame as a bordered table.
func (f *Frame) Render(w io.Writer) {
	rows := make([][]string, len(f.Rows))
	for i, row := range f.Rows {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = FormatValue(v)
		}
		rows[i] = cells
	}
	fmt.Fprintln(w, termui.Table(f.Columns, rows))
}

// FormatValue formats a result value for display.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case float64:
		if math.IsNaN(x) {
			return "NaN"
		}
		return strconv.FormatFloat(math.Round(x*1e6)/1e6, 'f', -1, 64)
	case time.Time:
		return x.Format("2006-01-02 15:04:05")
	case []byte:
		return string(x)
	default:
		return cast.ToString(v)
	}
}
