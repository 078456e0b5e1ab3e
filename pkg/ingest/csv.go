package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// table is a parsed CSV file addressed by column name.
type table struct {
	name   string
	cols   map[string]int
	rows   [][]string
	absent bool // file not found
}

func (t table) has(col string) bool {
	_, ok := t.cols[col]
	return ok
}

// get returns the trimmed cell, or "" when the column is missing or the row is short.
func (t table) get(row []string, col string) string {
	i, ok := t.cols[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// readTable loads path. A missing file is reported through table.absent when
// optional, as an error otherwise. Missing required columns wrap ErrSchema.
func readTable(path string, optional bool, required ...string) (table, error) {
	t := table{name: path, cols: make(map[string]int)}
	f, err := os.Open(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			t.absent = true
			return t, nil
		}
		return t, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return t, fmt.Errorf("read header of %s: %w", path, err)
	}
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		t.cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range required {
		if !t.has(col) {
			return t, fmt.Errorf("%w: %s has no %s column", ErrSchema, path, col)
		}
	}

	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return t, fmt.Errorf("read %s line %d: %w", path, line, err)
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseTimestamp reads an Olist timestamp as UTC. Empty means missing.
func parseTimestamp(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			ts = ts.UTC()
			return &ts, nil
		}
	}
	return nil, fmt.Errorf("unrecognised timestamp %q", s)
}

func parseMoney(s, col string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: %s missing", ErrSchema, col)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s %q is not a number", ErrSchema, col, s)
	}
	return d, nil
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
