// Package artifact writes the files a run leaves behind for CI and triage:
// valid_rows.csv, invalid_rows.csv (raw columns plus row_index and
// validation_error) and report.json. Both CSV artifacts exist after every
// run, header-only when a class is empty and zero-byte when a structural
// failure prevented parsing, so downstream steps never miss a file.
package artifact

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"dqcheck/internal/validate"
	"dqcheck/pkg/records"
)

const (
	defaultValidName   = "valid_rows.csv"
	defaultInvalidName = "invalid_rows.csv"
	reportName         = "report.json"
)

// Writer writes run artifacts under Dir. Zero-value file names fall back to
// valid_rows.csv and invalid_rows.csv.
type Writer struct {
	Dir     string
	Valid   string
	Invalid string
}

func (w *Writer) validPath() string {
	name := w.Valid
	if name == "" {
		name = defaultValidName
	}
	return filepath.Join(w.Dir, name)
}

func (w *Writer) invalidPath() string {
	name := w.Invalid
	if name == "" {
		name = defaultInvalidName
	}
	return filepath.Join(w.Dir, name)
}

// Write writes both row artifacts from the batch columns and verdicts.
// Valid rows keep the source column order; invalid rows carry the original
// cells plus their 0-based batch position and failure reason. Skipped rows
// appear in neither file.
func (w *Writer) Write(batch *records.Batch, verdicts []validate.Verdict) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	if err := w.writeValid(batch, verdicts); err != nil {
		return err
	}
	return w.writeInvalid(batch, verdicts)
}

func (w *Writer) writeValid(batch *records.Batch, verdicts []validate.Verdict) error {
	f, err := os.Create(w.validPath())
	if err != nil {
		return fmt.Errorf("create %s: %w", w.validPath(), err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(batch.Columns); err != nil {
		return fmt.Errorf("write %s header: %w", w.validPath(), err)
	}
	for _, v := range verdicts {
		if !v.Valid {
			continue
		}
		if err := cw.Write(cells(v.Raw, batch.Columns)); err != nil {
			return fmt.Errorf("write %s row %d: %w", w.validPath(), v.Index, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", w.validPath(), err)
	}
	return f.Close()
}

func (w *Writer) writeInvalid(batch *records.Batch, verdicts []validate.Verdict) error {
	f, err := os.Create(w.invalidPath())
	if err != nil {
		return fmt.Errorf("create %s: %w", w.invalidPath(), err)
	}
	defer f.Close()

	header := append(append([]string{}, batch.Columns...), "row_index", "validation_error")
	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write %s header: %w", w.invalidPath(), err)
	}
	for _, v := range verdicts {
		if v.Valid || v.Skipped {
			continue
		}
		row := append(cells(v.Raw, batch.Columns), strconv.Itoa(v.Index), v.Reason)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write %s row %d: %w", w.invalidPath(), v.Index, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", w.invalidPath(), err)
	}
	return f.Close()
}

// WriteEmpty creates both CSV artifacts as zero-byte files. Used when a
// structural failure prevented parsing, so CI steps that collect the
// artifacts still find them.
func (w *Writer) WriteEmpty() error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	for _, path := range []string{w.validPath(), w.invalidPath()} {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", path, err)
		}
	}
	return nil
}

// WriteReport writes the run report as indented JSON next to the row
// artifacts.
func (w *Writer) WriteReport(report validate.Report) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	path := filepath.Join(w.Dir, reportName)
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// cells renders a record back into column order; absent cells become "".
func cells(rec records.Record, columns []string) []string {
	out := make([]string, len(columns))
	for i, col := range columns {
		if s, ok := rec.String(col); ok {
			out[i] = s
		}
	}
	return out
}
