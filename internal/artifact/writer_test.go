package artifact

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"dqcheck/internal/validate"
	"dqcheck/pkg/records"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func TestWrite_SplitsVerdicts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	batch := &records.Batch{
		Columns: []string{"order_id", "qty", "date"},
		Rows: []records.Record{
			{"order_id": "A-1", "qty": "1", "date": "2024-01-01"},
			{"order_id": nil, "qty": "1", "date": "2024-01-02"},
			{"order_id": "A-3", "qty": "x", "date": "2024-01-03"},
		},
	}
	verdicts := []validate.Verdict{
		{Index: 0, Raw: batch.Rows[0], Valid: true},
		{Index: 1, Raw: batch.Rows[1], Reason: "order id cannot be empty"},
		{Index: 2, Raw: batch.Rows[2], Reason: `quantity must be an integer, got "x"`},
	}

	w := &Writer{Dir: dir}
	if err := w.Write(batch, verdicts); err != nil {
		t.Fatalf("Write: %v", err)
	}

	valid := readCSV(t, filepath.Join(dir, "valid_rows.csv"))
	wantValid := [][]string{
		{"order_id", "qty", "date"},
		{"A-1", "1", "2024-01-01"},
	}
	if !reflect.DeepEqual(valid, wantValid) {
		t.Fatalf("valid artifact got=%v; want %v", valid, wantValid)
	}

	invalid := readCSV(t, filepath.Join(dir, "invalid_rows.csv"))
	wantInvalid := [][]string{
		{"order_id", "qty", "date", "row_index", "validation_error"},
		{"", "1", "2024-01-02", "1", "order id cannot be empty"},
		{"A-3", "x", "2024-01-03", "2", `quantity must be an integer, got "x"`},
	}
	if !reflect.DeepEqual(invalid, wantInvalid) {
		t.Fatalf("invalid artifact got=%v; want %v", invalid, wantInvalid)
	}
}

func TestWrite_SkippedRowsInNeitherFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	batch := &records.Batch{
		Columns: []string{"order_id"},
		Rows:    []records.Record{{"order_id": nil}},
	}
	verdicts := []validate.Verdict{{Index: 0, Raw: batch.Rows[0], Skipped: true}}

	w := &Writer{Dir: dir}
	if err := w.Write(batch, verdicts); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if got := readCSV(t, filepath.Join(dir, "valid_rows.csv")); len(got) != 1 {
		t.Fatalf("valid artifact got=%v; want header only", got)
	}
	if got := readCSV(t, filepath.Join(dir, "invalid_rows.csv")); len(got) != 1 {
		t.Fatalf("invalid artifact got=%v; want header only", got)
	}
}

func TestWrite_HeaderOnlyWhenAllValid(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	batch := &records.Batch{
		Columns: []string{"order_id"},
		Rows:    []records.Record{{"order_id": "A-1"}},
	}
	verdicts := []validate.Verdict{{Index: 0, Raw: batch.Rows[0], Valid: true}}

	w := &Writer{Dir: dir}
	if err := w.Write(batch, verdicts); err != nil {
		t.Fatalf("Write: %v", err)
	}

	invalid := readCSV(t, filepath.Join(dir, "invalid_rows.csv"))
	want := [][]string{{"order_id", "row_index", "validation_error"}}
	if !reflect.DeepEqual(invalid, want) {
		t.Fatalf("invalid artifact got=%v; want header only", invalid)
	}
}

func TestWrite_CustomFileNames(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := &Writer{Dir: dir, Valid: "ok.csv", Invalid: "rejects.csv"}

	batch := &records.Batch{Columns: []string{"order_id"}}
	if err := w.Write(batch, nil); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "ok.csv")); err != nil {
		t.Fatalf("custom valid name missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "rejects.csv")); err != nil {
		t.Fatalf("custom invalid name missing: %v", err)
	}
}

func TestWriteEmpty_CreatesZeroByteFiles(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "artifacts")
	w := &Writer{Dir: dir}

	if err := w.WriteEmpty(); err != nil {
		t.Fatalf("WriteEmpty: %v", err)
	}
	for _, name := range []string{"valid_rows.csv", "invalid_rows.csv"} {
		fi, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("stat %s: %v", name, err)
		}
		if fi.Size() != 0 {
			t.Fatalf("%s size got=%d; want 0", name, fi.Size())
		}
	}
}

func TestWriteReport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := &Writer{Dir: dir}

	rep := validate.Report{RunID: "run-1", Job: "orders", TotalRows: 3, OverallPass: true}
	if err := w.WriteReport(rep); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "report.json"))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var got validate.Report
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal report: %v", err)
	}
	if got.RunID != "run-1" || got.Job != "orders" || got.TotalRows != 3 || !got.OverallPass {
		t.Fatalf("report round-trip got=%+v", got)
	}
}
