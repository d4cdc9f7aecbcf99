package records

import "testing"

func TestFoldKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Order ID", "order_id"},
		{"order_id", "order_id"},
		{"  Qty ", "qty"},
		{"ship-country", "ship_country"},
		{"Ship-Country", "ship_country"},
		{"Date", "date"},
		{"AMOUNT", "amount"},
	}
	for _, c := range cases {
		if got := FoldKey(c.in); got != c.want {
			t.Fatalf("FoldKey(%q) got=%q; want %q", c.in, got, c.want)
		}
	}
}

func TestRecordString(t *testing.T) {
	r := Record{"order_id": "171-1", "qty": nil}

	if s, ok := r.String("order_id"); !ok || s != "171-1" {
		t.Fatalf("String(order_id) got=%q,%v; want 171-1,true", s, ok)
	}
	if _, ok := r.String("qty"); ok {
		t.Fatalf("String(qty) ok=true for nil value; want false")
	}
	if _, ok := r.String("missing"); ok {
		t.Fatalf("String(missing) ok=true; want false")
	}
}

func TestRecordHas(t *testing.T) {
	r := Record{"a": "x", "b": nil}
	if !r.Has("a") {
		t.Fatalf("Has(a)=false; want true")
	}
	if r.Has("b") {
		t.Fatalf("Has(b)=true for nil value; want false")
	}
	if r.Has("c") {
		t.Fatalf("Has(c)=true; want false")
	}
}

func TestRecordClone(t *testing.T) {
	r := Record{"a": "x"}
	c := r.Clone()
	c["a"] = "y"
	if got, _ := r.String("a"); got != "x" {
		t.Fatalf("original mutated through clone: got=%q; want x", got)
	}
}
