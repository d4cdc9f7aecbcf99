package postgres

import (
	"strings"
	"testing"

	"dqcheck/internal/validate"
)

// Hermetic tests for the pure SQL-construction helpers. Connection-level
// behavior needs a live server and lives outside the unit suite.

func TestInsertSQL(t *testing.T) {
	t.Parallel()

	sql := insertSQL("dq_runs")
	if !strings.Contains(sql, `INSERT INTO "dq_runs"`) {
		t.Fatalf("insertSQL = %q; want quoted table identifier", sql)
	}
	// One placeholder per column, no more.
	if got := strings.Count(sql, "$"); got != 11 {
		t.Fatalf("placeholder count got=%d; want 11", got)
	}
	if !strings.Contains(sql, "$11") || strings.Contains(sql, "$12") {
		t.Fatalf("placeholders end at $11, sql=%q", sql)
	}

	// A hostile table name must come out quoted, not interpolated.
	evil := insertSQL(`runs"; DROP TABLE x; --`)
	if !strings.Contains(evil, `"runs""; DROP TABLE x; --"`) {
		t.Fatalf("identifier not sanitized: %q", evil)
	}
}

func TestFailureRows(t *testing.T) {
	t.Parallel()

	rep := validate.Report{
		RunID: "run-42",
		Failures: []validate.RowFailure{
			{Index: 3, Reason: "order id cannot be empty"},
			{Index: 9, Reason: "quantity must be >= 0, got -1"},
		},
	}

	rows := failureRows(rep)
	if len(rows) != 2 {
		t.Fatalf("rows got=%d; want 2", len(rows))
	}
	if rows[0][0] != "run-42" || rows[0][1] != 3 || rows[0][2] != "order id cannot be empty" {
		t.Fatalf("row 0 got=%#v", rows[0])
	}
	if rows[1][1] != 9 {
		t.Fatalf("row 1 got=%#v; want index 9 second", rows[1])
	}

	if got := failureRows(validate.Report{RunID: "r"}); len(got) != 0 {
		t.Fatalf("no failures should yield no rows, got=%#v", got)
	}
}
