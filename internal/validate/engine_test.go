package validate

import (
	"context"
	"fmt"
	"testing"

	"dqcheck/internal/schema"
	"dqcheck/pkg/records"
)

func newEngine(workers int) *Engine {
	return &Engine{
		Row:     &Row{Contract: schema.Orders(), SkipBlank: true},
		Dataset: &Dataset{Constraints: OrderConstraints(nil)},
		Workers: workers,
	}
}

func row(id, qty, amount, currency, country, date, status string) records.Record {
	rec := records.Record{}
	set := func(k, v string) {
		if v == "" {
			rec[k] = nil
			return
		}
		rec[k] = v
	}
	set("order_id", id)
	set("qty", qty)
	set("amount", amount)
	set("currency", currency)
	set("ship_country", country)
	set("date", date)
	set("status", status)
	return rec
}

func fullBatch(rows ...records.Record) *records.Batch {
	return &records.Batch{
		Columns: []string{"order_id", "qty", "amount", "currency", "ship_country", "date", "status"},
		Rows:    rows,
	}
}

// Mixed batch: normalization fixes the two-digit year while the bad-currency
// row fails with its exact reason.
func TestRun_MixedBatch(t *testing.T) {
	t.Parallel()

	b := fullBatch(
		row("A-1", "2", "599.00", "INR", "IN", "05-25-22", "Delivered"),
		row("A-2", "1", "299.00", "USD", "IN", "2022-05-25", "Shipped"),
	)

	verdicts, constraints, err := newEngine(2).Run(context.Background(), b)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !verdicts[0].Valid {
		t.Fatalf("row 0 got=%+v; want valid", verdicts[0])
	}
	if verdicts[0].Order.Date != "2022-05-25" {
		t.Fatalf("row 0 date got=%q; want 2022-05-25", verdicts[0].Order.Date)
	}
	if verdicts[1].Valid || verdicts[1].Reason != "currency must be INR, got USD" {
		t.Fatalf("row 1 got=%+v", verdicts[1])
	}

	r := Summarize("orders", verdicts, constraints)
	if r.OverallPass {
		t.Fatalf("mixed batch must fail overall")
	}
	if r.ValidRows != 1 || r.InvalidRows != 1 {
		t.Fatalf("counts got=%+v", r)
	}
}

// Duplicate order IDs: both rows individually valid, the uniqueness
// constraint alone fails the batch.
func TestRun_DuplicateIDsFailDatasetOnly(t *testing.T) {
	t.Parallel()

	b := fullBatch(
		row("DUP-1", "1", "100", "INR", "IN", "2024-01-01", "Delivered"),
		row("DUP-1", "2", "200", "INR", "IN", "2024-01-02", "Shipped"),
	)

	verdicts, constraints, err := newEngine(0).Run(context.Background(), b)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, v := range verdicts {
		if !v.Valid {
			t.Fatalf("row %d got=%+v; want valid", v.Index, v)
		}
	}

	r := Summarize("orders", verdicts, constraints)
	if r.InvalidRows != 0 {
		t.Fatalf("invalid rows got=%d; want 0", r.InvalidRows)
	}
	if r.FailedConstraints != 1 {
		t.Fatalf("failed constraints got=%d; want 1 (unique)", r.FailedConstraints)
	}
	if r.OverallPass {
		t.Fatalf("duplicate ids must fail overall")
	}
}

// All-clean batch passes both layers.
func TestRun_CleanBatchPasses(t *testing.T) {
	t.Parallel()

	b := fullBatch(
		row("A-1", "1", "100.00", "INR", "IN", "2024-03-01", "Delivered"),
		row("A-2", "0", "0", "INR", "IN", "03/02/2024", "Processing"),
		row("A-3", "5", "12.50", "INR", "IN", "2024-03-03", "Cancelled"),
	)

	verdicts, constraints, err := newEngine(3).Run(context.Background(), b)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	r := Summarize("orders", verdicts, constraints)
	if !r.OverallPass {
		t.Fatalf("clean batch got=%+v; want pass", r)
	}
}

// Negative qty surfaces in both layers: the row verdict and the dataset
// range constraint.
func TestRun_NegativeQtyFailsBothLayers(t *testing.T) {
	t.Parallel()

	b := fullBatch(
		row("A-1", "-3", "100", "INR", "IN", "2024-01-01", "Delivered"),
	)

	verdicts, constraints, err := newEngine(1).Run(context.Background(), b)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if verdicts[0].Valid || verdicts[0].Reason != "quantity must be >= 0, got -3" {
		t.Fatalf("verdict got=%+v", verdicts[0])
	}

	var rangeRes *ConstraintResult
	for i := range constraints {
		if constraints[i].ID == "qty_non_negative" {
			rangeRes = &constraints[i]
		}
	}
	if rangeRes == nil || rangeRes.Pass || rangeRes.Violations != 1 {
		t.Fatalf("qty constraint got=%+v; want 1 violation", rangeRes)
	}
}

func TestRun_PreservesOrderAcrossWorkers(t *testing.T) {
	t.Parallel()

	const n = 500
	rows := make([]records.Record, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("ID-%04d", i)
		if i%7 == 0 {
			id = "" // every 7th row fails
		}
		rows = append(rows, row(id, "1", "10", "INR", "IN", "2024-01-01", "Delivered"))
	}

	verdicts, _, err := newEngine(8).Run(context.Background(), fullBatch(rows...))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(verdicts) != n {
		t.Fatalf("verdicts got=%d; want %d", len(verdicts), n)
	}
	for i, v := range verdicts {
		if v.Index != i {
			t.Fatalf("verdict %d carries index %d", i, v.Index)
		}
		wantValid := i%7 != 0
		if v.Valid != wantValid {
			t.Fatalf("verdict %d valid=%v; want %v", i, v.Valid, wantValid)
		}
	}
}

func TestRun_EmptyBatch(t *testing.T) {
	t.Parallel()

	verdicts, constraints, err := newEngine(4).Run(context.Background(), fullBatch())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(verdicts) != 0 {
		t.Fatalf("verdicts got=%d; want 0", len(verdicts))
	}
	if r := Summarize("orders", verdicts, constraints); !r.OverallPass {
		t.Fatalf("empty batch got=%+v; want pass", r)
	}
}

func TestRun_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rows := make([]records.Record, 1000)
	for i := range rows {
		rows[i] = row("A-1", "1", "10", "INR", "IN", "2024-01-01", "Delivered")
	}

	_, _, err := newEngine(1).Run(ctx, fullBatch(rows...))
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
}
