// Package validate implements the two quality layers for order batches: the
// row layer (normalize each record, then run an ordered table of field
// checks; the first failure decides the verdict) and the dataset layer
// (whole-column constraints evaluated over the raw batch). Both layers are
// pure functions over values; failures are data, not errors.
package validate

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"dqcheck/internal/schema"
	"dqcheck/pkg/records"
)

// nullMarkers are cell values treated as absent, matching what spreadsheet
// exports and dataframe round-trips leave behind. Compared case-insensitively
// after trimming.
var nullMarkers = map[string]struct{}{
	"nan":  {},
	"null": {},
	"none": {},
}

// isNull reports whether a raw cell value counts as absent.
func isNull(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	_, hit := nullMarkers[strings.ToLower(s)]
	return hit
}

// Normalizer canonicalizes parsed records against a contract: header aliases
// resolve onto canonical names, values are trimmed and NFC-normalized, null
// markers map to absent, declared defaults fill absent optional fields, and
// enum-typed values are uppercased. Normalization never rejects; its output
// always feeds the field checks.
type Normalizer struct {
	contract schema.Contract
	aliases  map[string]string
	enums    map[string]struct{}
}

// NewNormalizer builds a Normalizer for the contract.
func NewNormalizer(c schema.Contract) *Normalizer {
	n := &Normalizer{
		contract: c,
		aliases:  c.AliasMap(),
		enums:    make(map[string]struct{}),
	}
	for _, f := range c.Fields {
		if f.Type == "enum" {
			n.enums[f.Name] = struct{}{}
		}
	}
	return n
}

// Normalize returns a new record keyed by canonical field names. The input
// record is not modified. Keys outside the contract pass through under their
// folded name.
func (n *Normalizer) Normalize(rec records.Record) records.Record {
	out := make(records.Record, len(rec))
	for k, v := range rec {
		name := k
		if canon, ok := n.aliases[k]; ok {
			name = canon
		}
		if isNull(v) {
			continue
		}
		s, ok := v.(string)
		if !ok {
			out[name] = v
			continue
		}
		s = norm.NFC.String(strings.TrimSpace(s))
		if _, enum := n.enums[name]; enum {
			s = strings.ToUpper(s)
		}
		out[name] = s
	}

	// Defaults fill absent optional fields only; required fields stay absent
	// so the field checks report them.
	for _, f := range n.contract.Fields {
		if f.Default == "" || out.Has(f.Name) {
			continue
		}
		out[f.Name] = f.Default
	}
	return out
}
