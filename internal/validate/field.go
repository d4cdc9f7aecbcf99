package validate

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"dqcheck/internal/schema"
	"dqcheck/pkg/records"
)

// Order is the canonical row produced when every field check passes.
type Order struct {
	ID       string
	Qty      int64
	Amount   decimal.Decimal // rounded to 2 places
	Currency string
	Country  string
	Date     string // ISO 2006-01-02
}

// fieldCheck validates one canonical field of the normalized record and, on
// success, writes it into the order under construction. A non-empty return
// is the failure reason.
type fieldCheck struct {
	field string
	apply func(m *checkMeta, rec records.Record, o *Order) string
}

// checkMeta carries the precomputed acceptance sets the checks close over.
type checkMeta struct {
	currencies map[string]struct{}
	countries  map[string]struct{}
	curList    []string
	ctryList   []string
	layouts    []string
}

// checkTable returns the ordered field checks. Order matters: the first
// failing check names the row's reason.
func checkTable() []fieldCheck {
	return []fieldCheck{
		{field: "order_id", apply: checkOrderID},
		{field: "qty", apply: checkQty},
		{field: "amount", apply: checkAmount},
		{field: "currency", apply: checkCurrency},
		{field: "ship_country", apply: checkCountry},
		{field: "date", apply: checkDate},
	}
}

func checkOrderID(_ *checkMeta, rec records.Record, o *Order) string {
	s, ok := rec.String("order_id")
	if !ok || s == "" {
		return "order id cannot be empty"
	}
	o.ID = s
	return ""
}

func checkQty(_ *checkMeta, rec records.Record, o *Order) string {
	s, _ := rec.String("qty") // normalization fills the default
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsInteger() {
		return fmt.Sprintf("quantity must be an integer, got %q", s)
	}
	n := d.IntPart()
	if n < 0 {
		return fmt.Sprintf("quantity must be >= 0, got %d", n)
	}
	o.Qty = n
	return ""
}

func checkAmount(_ *checkMeta, rec records.Record, o *Order) string {
	s, _ := rec.String("amount")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Sprintf("amount must be a number, got %q", s)
	}
	if d.IsNegative() {
		return fmt.Sprintf("amount must be >= 0, got %s", d.String())
	}
	o.Amount = d.Round(2)
	return ""
}

func checkCurrency(m *checkMeta, rec records.Record, o *Order) string {
	s, _ := rec.String("currency")
	if _, ok := m.currencies[s]; !ok {
		return fmt.Sprintf("currency must be %s, got %s", orOneOf(m.curList), s)
	}
	o.Currency = s
	return ""
}

func checkCountry(m *checkMeta, rec records.Record, o *Order) string {
	s, _ := rec.String("ship_country")
	if _, ok := m.countries[s]; !ok {
		return fmt.Sprintf("ship country must be %s, got %s", orOneOf(m.ctryList), s)
	}
	o.Country = s
	return ""
}

func checkDate(m *checkMeta, rec records.Record, o *Order) string {
	s, ok := rec.String("date")
	if !ok || s == "" {
		return "date cannot be empty"
	}
	for _, layout := range m.layouts {
		if t, err := time.Parse(layout, s); err == nil {
			o.Date = t.Format(schema.ISODate)
			return ""
		}
	}
	return fmt.Sprintf("invalid date format: %s", s)
}

// orOneOf renders an acceptance set for an error message: a single value
// reads as the value itself, larger sets as "one of [a b c]".
func orOneOf(vals []string) string {
	if len(vals) == 1 {
		return vals[0]
	}
	return "one of [" + strings.Join(vals, " ") + "]"
}
