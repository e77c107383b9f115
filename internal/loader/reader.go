//-------------------------------------------------------------------------
//
// pgEdge ecomstats
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/pgEdge/pgedge-ecomstats/internal/schema"
)

// ErrHeaderMismatch is returned when a CSV header does not match the
// columns mapped for its table.
var ErrHeaderMismatch = errors.New("csv header does not match schema")

// nullMarkers are the cell values read as SQL NULL.
var nullMarkers = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// temporalLayouts are tried in order for DATETIME columns.
var temporalLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02",
}

// Batch is the parsed content of one CSV file.
type Batch struct {
	// Path is the file actually read, which may be the .gz variant.
	Path string

	Header []string
	Rows   [][]any

	// Temporal names the columns parsed as timestamps, in table order.
	Temporal []string

	// InvalidTemporal counts, per column, temporal values that did not
	// parse and were stored as NULL.
	InvalidTemporal map[string]int
}

// IsNull reports whether a raw cell is a null marker.
func IsNull(raw string) bool {
	_, ok := nullMarkers[raw]
	return ok
}

// ParseTemporal parses a timestamp using the supported layouts.
func ParseTemporal(raw string) (time.Time, bool) {
	for _, layout := range temporalLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// ConvertValue converts a raw cell for the column. The second result is
// false only for a temporal value that could not be parsed, which becomes
// nil. Numeric text that does not convert is returned unchanged so the
// database decides whether to accept it.
func ConvertValue(col schema.Column, raw string) (any, bool) {
	if IsNull(raw) {
		return nil, true
	}

	switch col.Kind() {
	case schema.KindTemporal:
		ts, ok := ParseTemporal(strings.TrimSpace(raw))
		if !ok {
			return nil, false
		}
		return ts, true
	case schema.KindInteger:
		s := strings.TrimSpace(raw)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		// Integer columns with missing values arrive as floats ("3.0").
		if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) &&
			math.Abs(f) < math.MaxInt64 {
			return int64(f), true
		}
		return raw, true
	case schema.KindFloat, schema.KindDecimal:
		if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return f, true
		}
		return raw, true
	default:
		return raw, true
	}
}

// SourcePath returns the path to read for t: the plain file when present,
// otherwise its .gz variant.
func SourcePath(dir string, t schema.Table) (string, error) {
	path := filepath.Join(dir, t.File)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	gz := path + ".gz"
	if _, err := os.Stat(gz); err == nil {
		return gz, nil
	}
	return "", fmt.Errorf("source file for table %s not found: %s", t.Name, path)
}

type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (g gzipFile) Close() error {
	gerr := g.Reader.Close()
	if err := g.f.Close(); err != nil {
		return err
	}
	return gerr
}

func openSource(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to open gzip stream %s: %w", path, err)
	}
	return gzipFile{Reader: zr, f: f}, nil
}

// ReadHeader returns the header line of the source file for t.
func ReadHeader(dir string, t schema.Table) ([]string, error) {
	path, err := SourcePath(dir, t)
	if err != nil {
		return nil, err
	}
	rc, err := openSource(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	header, err := csv.NewReader(rc).Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	return cleanHeader(header), nil
}

// CheckHeader verifies that header names the table's columns in order.
func CheckHeader(t schema.Table, header []string) error {
	want := t.ColumnNames()
	if len(header) != len(want) {
		return fmt.Errorf("%w: %s has %d columns, expected %d (%s)",
			ErrHeaderMismatch, t.File, len(header), len(want), strings.Join(want, ", "))
	}
	for i := range want {
		if header[i] != want[i] {
			return fmt.Errorf("%w: %s column %d is %q, expected %q",
				ErrHeaderMismatch, t.File, i+1, header[i], want[i])
		}
	}
	return nil
}

func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}

// ReadTable reads and converts every row of the source file for t.
func ReadTable(dir string, t schema.Table) (*Batch, error) {
	path, err := SourcePath(dir, t)
	if err != nil {
		return nil, err
	}
	rc, err := openSource(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	r := csv.NewReader(rc)
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	header = cleanHeader(header)
	if err := CheckHeader(t, header); err != nil {
		return nil, err
	}

	batch := &Batch{
		Path:            path,
		Header:          header,
		Temporal:        t.TemporalColumns(),
		InvalidTemporal: make(map[string]int),
	}
	temporal := make([]bool, len(t.Columns))
	for i, col := range t.Columns {
		temporal[i] = slices.Contains(batch.Temporal, col.Name)
	}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		row := make([]any, len(t.Columns))
		for i, col := range t.Columns {
			v, ok := ConvertValue(col, record[i])
			if !ok && temporal[i] {
				batch.InvalidTemporal[col.Name]++
			}
			row[i] = v
		}
		batch.Rows = append(batch.Rows, row)
	}

	return batch, nil
}
