package validate

import (
	"sync"

	"dqcheck/internal/schema"
	"dqcheck/pkg/records"
)

// Verdict is the row-layer outcome for a single record.
type Verdict struct {
	Index   int            `json:"index"`
	Raw     records.Record `json:"-"`
	Order   *Order         `json:"-"` // set when Valid
	Valid   bool           `json:"valid"`
	Skipped bool           `json:"skipped,omitempty"`
	Reason  string         `json:"reason,omitempty"`
}

// Row validates one record at a time: normalize, then the ordered field
// checks; the first failure decides the verdict. This optimized version
// precomputes the acceptance sets once and reuses them on the hot path.
//
// Zero-value acceptance fields fall back to the contract: currency INR,
// country IN, the contract's date layouts.
type Row struct {
	Contract   schema.Contract
	Currencies []string // accepted currency codes (uppercase)
	Countries  []string // accepted ship-country codes (uppercase)
	Layouts    []string // date layouts tried in order
	SkipBlank  bool     // skip rows whose id, qty and amount are all absent

	// ---- precomputed metadata (built lazily) ----
	metaOnce sync.Once
	norm     *Normalizer
	table    []fieldCheck
	meta     checkMeta
}

func (r *Row) build() {
	r.metaOnce.Do(func() {
		r.norm = NewNormalizer(r.Contract)
		r.table = checkTable()

		cur := r.Currencies
		if len(cur) == 0 {
			if f := r.Contract.Field("currency"); f != nil {
				cur = f.Enum
			}
		}
		ctry := r.Countries
		if len(ctry) == 0 {
			if f := r.Contract.Field("ship_country"); f != nil {
				ctry = f.Enum
			}
		}
		layouts := r.Layouts
		if len(layouts) == 0 {
			if f := r.Contract.Field("date"); f != nil {
				layouts = f.Layouts
			}
		}

		r.meta = checkMeta{
			currencies: toSet(cur),
			countries:  toSet(ctry),
			curList:    cur,
			ctryList:   ctry,
			layouts:    layouts,
		}
	})
}

func toSet(vals []string) map[string]struct{} {
	s := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

// blank reports whether the raw record carries no identifier, quantity or
// amount, in which case there is nothing to judge.
func (r *Row) blank(rec records.Record) bool {
	for _, key := range []string{"order_id", "qty", "amount"} {
		if v, exists := rec[key]; exists && !isNull(v) {
			return false
		}
	}
	return true
}

// ValidateRow produces the verdict for the record at position idx. It never
// returns an error: a bad value is a failed verdict, not a failure of the
// validator.
func (r *Row) ValidateRow(idx int, rec records.Record) Verdict {
	r.build()

	v := Verdict{Index: idx, Raw: rec}

	if r.SkipBlank && r.blank(rec) {
		v.Skipped = true
		return v
	}

	canon := r.norm.Normalize(rec)
	var o Order
	for _, fc := range r.table {
		if reason := fc.apply(&r.meta, canon, &o); reason != "" {
			v.Reason = reason
			return v
		}
	}
	v.Valid = true
	v.Order = &o
	return v
}
