// Package records defines the in-memory row representation shared by the
// parser, validators and sinks. A Record is a loosely typed map keyed by
// canonical (folded) column names; a Batch keeps the rows together with the
// column order of the source so artifacts can be written back faithfully.
package records

import "strings"

// Record is one parsed row. Values are strings as read from the source, or
// nil for cells that were empty. Keys are folded column names (see FoldKey).
type Record map[string]any

// String returns the value for key as a string. Nil and missing values yield
// "" with ok=false; non-string values are ignored (ok=false) since sources
// only produce strings.
func (r Record) String(key string) (string, bool) {
	v, exists := r[key]
	if !exists || v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return s, true
}

// Has reports whether key is present with a non-nil value.
func (r Record) Has(key string) bool {
	v, exists := r[key]
	return exists && v != nil
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// FoldKey canonicalizes a header name: trim, lowercase, and map spaces and
// hyphens to underscores, so "Order ID" and "ship-country" become "order_id"
// and "ship_country".
func FoldKey(name string) string {
	k := strings.ToLower(strings.TrimSpace(name))
	k = strings.ReplaceAll(k, " ", "_")
	k = strings.ReplaceAll(k, "-", "_")
	return k
}

// Batch is an ordered set of rows plus the folded column order of the source
// header. Columns drives artifact output; Rows preserve input order.
type Batch struct {
	Columns []string
	Rows    []Record
}

// Len returns the number of rows.
func (b *Batch) Len() int { return len(b.Rows) }
