package validate

import (
	"time"

	"github.com/google/uuid"
)

// RowFailure pairs a failed row's batch position with its reason.
type RowFailure struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Report is the aggregate outcome of one run. The batch passes overall iff
// no row failed and no constraint failed; skipped rows count toward the
// total but toward neither verdict.
type Report struct {
	RunID             string             `json:"run_id"`
	Job               string             `json:"job"`
	StartedAt         time.Time          `json:"started_at"`
	DurationMs        int64              `json:"duration_ms"`
	TotalRows         int                `json:"total_rows"`
	ValidRows         int                `json:"valid_rows"`
	InvalidRows       int                `json:"invalid_rows"`
	SkippedRows       int                `json:"skipped_rows"`
	FailedConstraints int                `json:"failed_constraints"`
	Constraints       []ConstraintResult `json:"constraints"`
	Failures          []RowFailure       `json:"failures,omitempty"`
	OverallPass       bool               `json:"overall_pass"`
	Fingerprint       string             `json:"fingerprint,omitempty"`
}

// Summarize folds both layers into the run report. Verdict order is
// preserved in Failures. RunID is freshly assigned; StartedAt, DurationMs
// and Fingerprint are the caller's to fill.
func Summarize(job string, verdicts []Verdict, constraints []ConstraintResult) Report {
	r := Report{
		RunID:       uuid.NewString(),
		Job:         job,
		TotalRows:   len(verdicts),
		Constraints: constraints,
	}
	for _, v := range verdicts {
		switch {
		case v.Skipped:
			r.SkippedRows++
		case v.Valid:
			r.ValidRows++
		default:
			r.InvalidRows++
			r.Failures = append(r.Failures, RowFailure{Index: v.Index, Reason: v.Reason})
		}
	}
	for _, c := range constraints {
		if !c.Pass {
			r.FailedConstraints++
		}
	}
	r.OverallPass = r.InvalidRows == 0 && r.FailedConstraints == 0
	return r
}
