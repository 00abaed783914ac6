package invoice

import (
	"errors"
	"math"
	"testing"

	"billgen/pkg/models"
)

func consultingState(vat bool) models.InvoiceState {
	return models.InvoiceState{
		CustomerName: "Acme LLC",
		Date:         "2024-05-01",
		VATIncluded:  vat,
		LineItems: []models.LineItem{
			{Description: "Consulting", Quantity: "2", UnitPrice: "100"},
			{Description: "Travel", Quantity: "1", UnitPrice: "50.5"},
		},
	}
}

func TestComputeWithVAT(t *testing.T) {
	s := Compute(consultingState(true), DefaultOptions())

	if len(s.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(s.Rows))
	}
	wantCells := [][]string{
		{"1", "Consulting", "2", "100.000", "200.000"},
		{"2", "Travel", "1", "50.500", "50.500"},
	}
	for i, row := range s.Rows {
		cells := row.Cells()
		for j := range cells {
			if cells[j] != wantCells[i][j] {
				t.Errorf("row %d cell %d = %q, want %q", i, j, cells[j], wantCells[i][j])
			}
		}
	}

	if s.SubtotalText() != "250.500" {
		t.Errorf("Subtotal = %s, want 250.500", s.SubtotalText())
	}
	if s.VATText() != "12.525" {
		t.Errorf("VAT = %s, want 12.525", s.VATText())
	}
	if s.GrandTotalText() != "263.025" {
		t.Errorf("GrandTotal = %s, want 263.025", s.GrandTotalText())
	}
}

func TestComputeWithoutVAT(t *testing.T) {
	s := Compute(consultingState(false), DefaultOptions())
	if s.VAT != 0 || s.VATText() != "0.000" {
		t.Errorf("VAT = %v, want 0", s.VAT)
	}
	if s.GrandTotalText() != "250.500" {
		t.Errorf("GrandTotal = %s, want 250.500", s.GrandTotalText())
	}
	if s.VATLabel() != "VAT (5%)" {
		t.Errorf("VATLabel = %q", s.VATLabel())
	}
}

func TestComputeEmpty(t *testing.T) {
	s := Compute(models.InvoiceState{VATIncluded: true}, DefaultOptions())
	if len(s.Rows) != 0 {
		t.Errorf("rows = %d, want 0", len(s.Rows))
	}
	for _, line := range s.TotalLines() {
		if line[1] != "0.000" {
			t.Errorf("%s = %s, want 0.000", line[0], line[1])
		}
	}
}

func TestComputeInvalidNumbersCountAsZero(t *testing.T) {
	state := models.InvoiceState{
		LineItems: []models.LineItem{
			{Description: "bad", Quantity: "abc", UnitPrice: "10"},
			{Description: "blank"},
			{Description: "ok", Quantity: "3", UnitPrice: "2"},
		},
	}
	s := Compute(state, DefaultOptions())
	if s.Rows[0].Amount != "0.000" || s.Rows[1].Amount != "0.000" {
		t.Errorf("amounts = %q, %q, want 0.000", s.Rows[0].Amount, s.Rows[1].Amount)
	}
	if s.Rows[1].QuantityText() != "0" || s.Rows[1].UnitPrice != "0.000" {
		t.Errorf("blank row cells = %v", s.Rows[1].Cells())
	}
	if s.SubtotalText() != "6.000" {
		t.Errorf("Subtotal = %s, want 6.000", s.SubtotalText())
	}
}

func TestComputeNegativeValues(t *testing.T) {
	state := models.InvoiceState{
		VATIncluded: true,
		LineItems:   []models.LineItem{{Description: "Refund", Quantity: "1", UnitPrice: "-100"}},
	}
	s := Compute(state, DefaultOptions())
	if s.SubtotalText() != "-100.000" || s.VATText() != "-5.000" || s.GrandTotalText() != "-105.000" {
		t.Errorf("totals = %v", s.TotalLines())
	}
}

func TestComputeSubtotalPolicies(t *testing.T) {
	state := models.InvoiceState{
		LineItems: []models.LineItem{
			{Description: "a", Quantity: "1", UnitPrice: "0.3333"},
			{Description: "b", Quantity: "1", UnitPrice: "0.3333"},
			{Description: "c", Quantity: "1", UnitPrice: "0.3333"},
		},
	}

	exact := Compute(state, Options{VATRate: DefaultVATRate, Policy: PolicyExact})
	if exact.SubtotalText() != "1.000" {
		t.Errorf("exact subtotal = %s, want 1.000", exact.SubtotalText())
	}

	rounded := Compute(state, Options{VATRate: DefaultVATRate, Policy: PolicyRounded})
	if rounded.SubtotalText() != "0.999" {
		t.Errorf("rounded subtotal = %s, want 0.999", rounded.SubtotalText())
	}

	// An unset policy behaves like exact.
	if s := Compute(state, Options{VATRate: DefaultVATRate}); s.Policy != PolicyExact || s.SubtotalText() != "1.000" {
		t.Errorf("default policy = %s, subtotal %s", s.Policy, s.SubtotalText())
	}
}

func TestComputeIsPure(t *testing.T) {
	state := consultingState(true)
	a := Compute(state, DefaultOptions())
	b := Compute(state, DefaultOptions())
	if a.GrandTotal != b.GrandTotal || len(a.Rows) != len(b.Rows) {
		t.Error("Compute returned different results for the same input")
	}
	if state.LineItems[0].Quantity != "2" {
		t.Error("Compute modified its input")
	}
}

func TestVATLabel(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{0.05, "VAT (5%)"},
		{0.075, "VAT (7.5%)"},
		{0.07, "VAT (7%)"},
		{0.15, "VAT (15%)"},
		{0, "VAT (0%)"},
	}
	for _, tt := range tests {
		if got := VATLabel(tt.rate); got != tt.want {
			t.Errorf("VATLabel(%v) = %q, want %q", tt.rate, got, tt.want)
		}
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in   string
		want SubtotalPolicy
	}{
		{"", PolicyExact},
		{"exact", PolicyExact},
		{" Rounded ", PolicyRounded},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParsePolicy(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}

	_, err := ParsePolicy("banker")
	if !errors.Is(err, ErrUnknownPolicy) {
		t.Errorf("ParsePolicy(banker) error = %v, want ErrUnknownPolicy", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "subtotal_policy" {
		t.Errorf("expected ValidationError for subtotal_policy, got %v", err)
	}
}

func TestOptionsValidate(t *testing.T) {
	if err := DefaultOptions().Validate(); err != nil {
		t.Errorf("DefaultOptions().Validate() = %v", err)
	}
	for _, rate := range []float64{-0.01, math.NaN(), math.Inf(1)} {
		err := Options{VATRate: rate, Policy: PolicyExact}.Validate()
		if !errors.Is(err, ErrInvalidVATRate) {
			t.Errorf("Validate(rate=%v) = %v, want ErrInvalidVATRate", rate, err)
		}
	}
	if err := (Options{VATRate: 0.05, Policy: "other"}).Validate(); !errors.Is(err, ErrUnknownPolicy) {
		t.Errorf("Validate(policy=other) = %v, want ErrUnknownPolicy", err)
	}
}

func TestReport(t *testing.T) {
	r := Compute(consultingState(true), DefaultOptions()).Report()
	if len(r.Rows) != 2 || r.Rows[1].SNo != 2 || r.Rows[1].Quantity != "1" {
		t.Errorf("rows = %+v", r.Rows)
	}
	if r.Subtotal != "250.500" || r.VAT != "12.525" || r.GrandTotal != "263.025" {
		t.Errorf("report totals = %s / %s / %s", r.Subtotal, r.VAT, r.GrandTotal)
	}
	if r.VATLabel != "VAT (5%)" || r.Policy != PolicyExact {
		t.Errorf("label/policy = %s / %s", r.VATLabel, r.Policy)
	}
}

func TestTotalsCheck(t *testing.T) {
	tc := NewTotalsCheck()

	agree := tc.Check(consultingState(true), DefaultOptions())
	if agree.HasDiscrepancy || len(agree.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", agree.Warnings)
	}
	if agree.Exact != "250.500" || agree.Rounded != "250.500" {
		t.Errorf("subtotals = %s / %s", agree.Exact, agree.Rounded)
	}

	state := models.InvoiceState{
		LineItems: []models.LineItem{
			{Quantity: "1", UnitPrice: "0.3333"},
			{Quantity: "1", UnitPrice: "0.3333"},
			{Quantity: "1", UnitPrice: "0.3333"},
		},
	}
	differ := tc.Check(state, DefaultOptions())
	if !differ.HasDiscrepancy {
		t.Error("expected a discrepancy between policies")
	}
	if differ.Exact != "1.000" || differ.Rounded != "0.999" {
		t.Errorf("subtotals = %s / %s", differ.Exact, differ.Rounded)
	}
}
