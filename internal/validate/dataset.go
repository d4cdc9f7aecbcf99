package validate

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"dqcheck/pkg/records"
)

// Constraint is one whole-column expectation, evaluated over the raw batch
// regardless of row verdicts. Kinds: "not_null", "unique", "min" (numeric
// lower bound), "in_set" (exact membership).
type Constraint struct {
	ID     string
	Column string
	Kind   string
	Min    int64    // used by "min"
	Set    []string // used by "in_set"
}

// ConstraintResult reports one constraint evaluation. Samples holds up to
// three offending raw values for operator triage.
type ConstraintResult struct {
	ID         string   `json:"id"`
	Column     string   `json:"column"`
	Expression string   `json:"expression"`
	Pass       bool     `json:"pass"`
	Violations int      `json:"violations"`
	Samples    []string `json:"samples,omitempty"`
}

// sampleLimit caps the offending values carried per constraint result.
const sampleLimit = 3

// OrderConstraints returns the constraint table for the order dataset.
// statuses overrides the accepted status set; nil keeps the default.
func OrderConstraints(statuses []string) []Constraint {
	if len(statuses) == 0 {
		statuses = []string{"Delivered", "Shipped", "Processing", "Cancelled"}
	}
	return []Constraint{
		{ID: "order_id_not_null", Column: "order_id", Kind: "not_null"},
		{ID: "order_id_unique", Column: "order_id", Kind: "unique"},
		{ID: "qty_non_negative", Column: "qty", Kind: "min", Min: 0},
		{ID: "amount_non_negative", Column: "amount", Kind: "min", Min: 0},
		{ID: "status_in_set", Column: "status", Kind: "in_set", Set: statuses},
	}
}

// Dataset evaluates whole-column constraints over a batch.
type Dataset struct {
	Constraints []Constraint
}

// Check evaluates every constraint and returns one result per constraint, in
// table order. A constraint whose column is missing from the batch fails.
// Blank cells are ignored by "min" and "in_set" (absence is the not_null
// constraint's business); "unique" likewise skips blanks.
func (d *Dataset) Check(batch *records.Batch) []ConstraintResult {
	out := make([]ConstraintResult, 0, len(d.Constraints))
	for _, c := range d.Constraints {
		out = append(out, d.checkOne(c, batch))
	}
	return out
}

func (d *Dataset) checkOne(c Constraint, batch *records.Batch) ConstraintResult {
	res := ConstraintResult{
		ID:         c.ID,
		Column:     c.Column,
		Expression: expression(c),
	}

	if !hasColumn(batch, c.Column) {
		res.Expression += " (column missing)"
		return res
	}

	switch c.Kind {
	case "not_null":
		for _, row := range batch.Rows {
			if isNull(row[c.Column]) {
				res.Violations++
			}
		}
	case "unique":
		counts := make(map[string]int, batch.Len())
		for _, row := range batch.Rows {
			if v, ok := cell(row, c.Column); ok {
				counts[v]++
			}
		}
		// Every row carrying a duplicated value counts; samples list each
		// duplicated value once.
		sampled := make(map[string]struct{}, sampleLimit)
		for _, row := range batch.Rows {
			v, ok := cell(row, c.Column)
			if !ok || counts[v] < 2 {
				continue
			}
			res.Violations++
			if _, done := sampled[v]; !done && len(res.Samples) < sampleLimit {
				res.Samples = append(res.Samples, v)
				sampled[v] = struct{}{}
			}
		}
	case "min":
		bound := decimal.NewFromInt(c.Min)
		for _, row := range batch.Rows {
			v, ok := cell(row, c.Column)
			if !ok {
				continue
			}
			n, err := decimal.NewFromString(v)
			if err != nil || n.LessThan(bound) {
				res.Violations++
				addSample(&res, v)
			}
		}
	case "in_set":
		allowed := toSet(c.Set)
		for _, row := range batch.Rows {
			v, ok := cell(row, c.Column)
			if !ok {
				continue
			}
			if _, hit := allowed[v]; !hit {
				res.Violations++
				addSample(&res, v)
			}
		}
	default:
		res.Expression += " (unknown constraint kind)"
		return res
	}

	res.Pass = res.Violations == 0
	return res
}

// cell returns the trimmed string value of the column, ok=false for blanks
// and null markers.
func cell(row records.Record, col string) (string, bool) {
	v := row[col]
	if isNull(v) {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(s), true
}

func hasColumn(batch *records.Batch, col string) bool {
	for _, c := range batch.Columns {
		if c == col {
			return true
		}
	}
	return false
}

func addSample(res *ConstraintResult, v string) {
	if len(res.Samples) < sampleLimit {
		res.Samples = append(res.Samples, v)
	}
}

// expression renders the human-readable form of a constraint.
func expression(c Constraint) string {
	switch c.Kind {
	case "not_null":
		return "not_null"
	case "unique":
		return "unique"
	case "min":
		return fmt.Sprintf(">= %d", c.Min)
	case "in_set":
		return "in {" + strings.Join(c.Set, ", ") + "}"
	default:
		return c.Kind
	}
}
