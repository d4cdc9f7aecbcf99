// Package csv implements a streaming CSV parser that turns raw bytes into a
// records.Batch for the validation layers. It avoids whole-file buffering
// until rows are materialized and keeps the folded column order of the source
// header so artifacts can be written back in the original shape.
//
// Width policy: rows with fewer cells than the header are padded with empty
// cells (missing values are a data-quality question, not a parse failure);
// rows with more cells than the header are a structural error, as are quoting
// errors from the underlying reader. A quality gate must not silently drop
// rows it cannot judge.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"dqcheck/pkg/records"
)

// Options configures the CSV parser. All fields are optional; sensible
// defaults are applied when a field is zero.
type Options struct {
	// HasHeader indicates whether the first row contains column headers.
	// The parser requires a header; HasHeader=false is rejected.
	HasHeader bool

	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each cell value.
	TrimSpace bool

	// HeaderMap maps source header names (exact, after trimming) to
	// canonical keys, overriding the default folding.
	HeaderMap map[string]string
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs, but Parser itself is not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "﻿"

// Parse consumes CSV records from r and returns the batch. Any structural
// problem (missing header, duplicate folded column, quoting error, row wider
// than the header) fails the whole parse.
func (p *Parser) Parse(r io.Reader) (*records.Batch, error) {
	if !p.opt.HasHeader {
		return nil, fmt.Errorf("csv: header row is required")
	}

	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	// Width is enforced after read so short rows can be padded.
	cr.FieldsPerRecord = -1

	h, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	headers, err := normalizeHeaders(h, p.opt)
	if err != nil {
		return nil, err
	}

	batch := &records.Batch{Columns: headers}

	for line := 1; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", line, err)
		}
		if len(row) > len(headers) {
			return nil, fmt.Errorf("csv row %d: %d fields exceed header width %d", line, len(row), len(headers))
		}

		rec := make(records.Record, len(headers))
		for i, col := range headers {
			val := ""
			if i < len(row) {
				val = row[i]
			}
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			rec[col] = emptyToNil(val)
		}
		batch.Rows = append(batch.Rows, rec)
	}

	return batch, nil
}

// emptyToNil converts an empty string to nil; all other values pass through.
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// normalizeHeaders produces canonical header keys using HeaderMap (when
// provided) and records.FoldKey otherwise. It strips a UTF-8 BOM from the
// first cell and rejects columns that collide after folding.
func normalizeHeaders(h []string, opt Options) ([]string, error) {
	res := make([]string, len(h))
	seen := make(map[string]int, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		key := ""
		if opt.HeaderMap != nil {
			if m, ok := opt.HeaderMap[c]; ok {
				key = m
			}
		}
		if key == "" {
			key = records.FoldKey(c)
		}
		if key == "" {
			return nil, fmt.Errorf("csv header column %d is empty", i+1)
		}
		if prev, dup := seen[key]; dup {
			return nil, fmt.Errorf("csv header columns %d and %d both fold to %q", prev+1, i+1, key)
		}
		seen[key] = i
		res[i] = key
	}
	return res, nil
}
