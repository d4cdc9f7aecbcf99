// Package schema declares the dataset contract: which columns a batch is
// expected to carry, how header variants map onto canonical names, and the
// per-field rules the validators enforce.
package schema

import "dqcheck/pkg/records"

type Field struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"` // "text" | "int" | "decimal" | "enum" | "date"
	Required bool     `json:"required,omitempty"`
	Aliases  []string `json:"aliases,omitempty"`
	Enum     []string `json:"enum,omitempty"`
	Layouts  []string `json:"layouts,omitempty"` // date layouts, tried in order
	Default  string   `json:"default,omitempty"` // fill for absent optional values
	Min      *int64   `json:"min,omitempty"`     // lower bound for numeric types
}

type Contract struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Field returns the contract field named name, or nil.
func (c Contract) Field(name string) *Field {
	for i := range c.Fields {
		if c.Fields[i].Name == name {
			return &c.Fields[i]
		}
	}
	return nil
}

// AliasMap builds a folded-alias -> canonical-name map covering every field
// name and alias in the contract. Parser output keys are already folded, so
// lookups against this map resolve header variants like "Order ID".
func (c Contract) AliasMap() map[string]string {
	m := make(map[string]string, len(c.Fields)*2)
	for _, f := range c.Fields {
		m[records.FoldKey(f.Name)] = f.Name
		for _, a := range f.Aliases {
			m[records.FoldKey(a)] = f.Name
		}
	}
	return m
}

// DateLayouts are the accepted input forms for order dates, tried in order.
// The first two-digit-year layouts sit last so four-digit forms win ties.
var DateLayouts = []string{
	"01-02-2006",
	"2006-01-02",
	"02-01-2006",
	"01/02/2006",
	"2006/01/02",
	"01-02-06",
	"01/02/06",
}

// ISODate is the canonical output layout for normalized dates.
const ISODate = "2006-01-02"

// Statuses accepted by the dataset-level membership constraint.
var Statuses = []string{"Delivered", "Shipped", "Processing", "Cancelled"}

func minZero() *int64 { z := int64(0); return &z }

// Orders returns the contract for the order dataset: canonical names,
// header aliases, defaults and per-field rules.
func Orders() Contract {
	return Contract{
		Name: "orders",
		Fields: []Field{
			{Name: "order_id", Type: "text", Required: true, Aliases: []string{"Order ID"}},
			{Name: "qty", Type: "int", Aliases: []string{"Qty"}, Default: "0", Min: minZero()},
			{Name: "amount", Type: "decimal", Aliases: []string{"Amount"}, Default: "0.0", Min: minZero()},
			{Name: "currency", Type: "enum", Enum: []string{"INR"}, Default: "INR"},
			{Name: "ship_country", Type: "enum", Aliases: []string{"ship-country"}, Enum: []string{"IN"}, Default: "IN"},
			{Name: "date", Type: "date", Required: true, Aliases: []string{"Date"}, Layouts: DateLayouts},
			{Name: "status", Type: "text", Aliases: []string{"Status"}},
		},
	}
}
