package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"billgen/internal/invoice"
	"billgen/internal/render"
	"billgen/pkg/models"
)

func TestParseItemFlag(t *testing.T) {
	tests := []struct {
		raw  string
		want models.LineItem
	}{
		{"Consulting|2|100", models.LineItem{Description: "Consulting", Quantity: "2", UnitPrice: "100"}},
		{" Travel | 1 | 50.5 ", models.LineItem{Description: "Travel", Quantity: "1", UnitPrice: "50.5"}},
		{"Note only", models.LineItem{Description: "Note only"}},
		{"Pipes|1|2|3", models.LineItem{Description: "Pipes", Quantity: "1", UnitPrice: "2|3"}},
	}
	for _, tt := range tests {
		got, err := parseItemFlag(tt.raw)
		if err != nil {
			t.Errorf("parseItemFlag(%q) error: %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseItemFlag(%q) = %+v, want %+v", tt.raw, got, tt.want)
		}
	}

	if _, err := parseItemFlag(""); err == nil {
		t.Error("expected error for empty --item")
	}
}

func TestSafeFilename(t *testing.T) {
	tests := map[string]string{
		"invoice_Acme LLC.pdf": "invoice_Acme LLC.pdf",
		"invoice_A/B.pdf":      "invoice_A_B.pdf",
		`invoice_..\x.pdf`:     "invoice_.._x.pdf",
		"..":                   "_",
		".":                    "_",
	}
	for in, want := range tests {
		if got := safeFilename(in); got != want {
			t.Errorf("safeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadState(t *testing.T) {
	yamlDoc := `customer_name: Acme LLC
date: 2024-05-01
vat_included: true
line_items:
  - description: Consulting
    quantity: "2"
    unit_price: "100"
`
	path := filepath.Join(t.TempDir(), "invoice.yaml")
	if err := os.WriteFile(path, []byte(yamlDoc), 0644); err != nil {
		t.Fatal(err)
	}

	state, err := loadState(path, nil)
	if err != nil {
		t.Fatalf("loadState: %v", err)
	}
	if state.CustomerName != "Acme LLC" || state.Date != "2024-05-01" || !state.VATIncluded {
		t.Errorf("state = %+v", state)
	}
	if len(state.LineItems) != 1 || state.LineItems[0].UnitPrice != "100" {
		t.Errorf("items = %+v", state.LineItems)
	}

	jsonDoc := `{"customer_name":"Stdin Co","line_items":[{"description":"x","quantity":"1","unit_price":"2"}]}`
	state, err = loadState("-", strings.NewReader(jsonDoc))
	if err != nil {
		t.Fatalf("loadState(stdin): %v", err)
	}
	if state.CustomerName != "Stdin Co" || len(state.LineItems) != 1 {
		t.Errorf("stdin state = %+v", state)
	}

	state, err = loadState("-", strings.NewReader(""))
	if err != nil || len(state.LineItems) != 0 {
		t.Errorf("empty input = %+v, %v", state, err)
	}

	if _, err := loadState(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Error("expected error for a missing file")
	}
	if _, err := loadState("-", strings.NewReader("line_items: {")); err == nil {
		t.Error("expected error for malformed input")
	}
}

func TestWriteReport(t *testing.T) {
	state := models.InvoiceState{
		VATIncluded: true,
		LineItems:   []models.LineItem{{Description: "Consulting", Quantity: "2", UnitPrice: "100"}},
	}
	var buf bytes.Buffer
	if err := writeReport(&buf, invoice.Compute(state, invoice.DefaultOptions()).Report()); err != nil {
		t.Fatalf("writeReport: %v", err)
	}

	var report invoice.Report
	if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if report.Subtotal != "200.000" || report.VAT != "10.000" || report.GrandTotal != "210.000" {
		t.Errorf("report = %+v", report)
	}
}

func TestHandleRenderError(t *testing.T) {
	log := zerolog.Nop()
	tests := []struct {
		err  error
		want string
	}{
		{render.NewRenderError("Render", context.DeadlineExceeded, ""), "timed out"},
		{render.NewRenderError("Render", render.ErrCanceled, ""), "canceled"},
		{render.NewRenderError("Render", render.ErrLayoutFailed, "font"), "lay out"},
		{render.NewRenderError("Verify", render.ErrVerifyFailed, "xref"), "VERIFY_PDF"},
		{render.NewRenderError("Render", render.ErrOutputFailed, ""), "serialize"},
		{errors.New("other"), "rendering failed"},
	}
	for _, tt := range tests {
		got := handleRenderError(tt.err, log)
		if !strings.Contains(got.Error(), tt.want) {
			t.Errorf("handleRenderError(%v) = %q, want it to mention %q", tt.err, got, tt.want)
		}
	}
}

func TestGenerateCommandWritesPDF(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"generate",
		"--output-dir", dir,
		"--customer", "A/B Trading",
		"--date", "2024-05-01",
		"--vat",
		"--item", "Consulting|2|100",
		"--item", "Travel|1|50.5",
	})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("generate: %v", err)
	}

	want := filepath.Join(dir, "invoice_A_B Trading.pdf")
	if got := strings.TrimSpace(out.String()); got != want {
		t.Errorf("printed path = %q, want %q", got, want)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	pages, err := render.PageCount(data)
	if err != nil || pages != 1 {
		t.Errorf("PageCount = %d, %v", pages, err)
	}
}

func TestAmountCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"amount", "0.25", "0.25"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("amount: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "0.063" {
		t.Errorf("amount = %q, want 0.063", got)
	}
}
