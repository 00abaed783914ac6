package invoice

import (
	"fmt"
	"strconv"
	"strings"

	"billgen/pkg/models"
)

// DefaultVATRate is the flat VAT surcharge applied when VAT is included.
const DefaultVATRate = 0.05

// SubtotalPolicy selects how line amounts are summed.
type SubtotalPolicy string

const (
	// PolicyExact sums the unrounded per-line products and rounds once.
	PolicyExact SubtotalPolicy = "exact"

	// PolicyRounded sums the per-line amounts after rounding each to three
	// decimals, which is what the printed rows add up to.
	PolicyRounded SubtotalPolicy = "rounded"
)

// ParsePolicy maps a configuration value to a SubtotalPolicy.
func ParsePolicy(name string) (SubtotalPolicy, error) {
	switch SubtotalPolicy(strings.ToLower(strings.TrimSpace(name))) {
	case "", PolicyExact:
		return PolicyExact, nil
	case PolicyRounded:
		return PolicyRounded, nil
	}
	return "", NewValidationError("subtotal_policy", name, "must be 'exact' or 'rounded'", ErrUnknownPolicy)
}

// Row is one printed line of the items table.
type Row struct {
	SNo         int
	Description string
	Quantity    float64
	UnitPrice   string
	Amount      string
}

// QuantityText is the quantity as printed in the Qty. column.
func (r Row) QuantityText() string {
	return FormatNumber(r.Quantity)
}

// Cells returns the row in column order.
func (r Row) Cells() []string {
	return []string{strconv.Itoa(r.SNo), r.Description, r.QuantityText(), r.UnitPrice, r.Amount}
}

// Summary is the computed content of one invoice.
type Summary struct {
	Rows        []Row
	Subtotal    float64
	VAT         float64
	GrandTotal  float64
	VATIncluded bool
	VATRate     float64
	Policy      SubtotalPolicy
}

// Compute derives rows and totals from a state snapshot. It never fails:
// unparseable numbers are zero and an empty item list totals 0.000.
func Compute(state models.InvoiceState, opts Options) Summary {
	if opts.Policy == "" {
		opts.Policy = PolicyExact
	}

	rows := make([]Row, 0, len(state.LineItems))
	var subtotal float64
	for i, item := range state.LineItems {
		qty := ParseNumber(item.Quantity)
		rate := ParseNumber(item.UnitPrice)
		amount := qty * rate
		row := Row{
			SNo:         i + 1,
			Description: item.Description,
			Quantity:    qty,
			UnitPrice:   FormatFixed(rate),
			Amount:      FormatFixed(amount),
		}
		rows = append(rows, row)

		if opts.Policy == PolicyRounded {
			subtotal += ParseNumber(row.Amount)
		} else {
			subtotal += amount
		}
	}

	var vat float64
	if state.VATIncluded {
		vat = subtotal * opts.VATRate
	}

	return Summary{
		Rows:        rows,
		Subtotal:    subtotal,
		VAT:         vat,
		GrandTotal:  subtotal + vat,
		VATIncluded: state.VATIncluded,
		VATRate:     opts.VATRate,
		Policy:      opts.Policy,
	}
}

// SubtotalText is the subtotal rounded for printing.
func (s Summary) SubtotalText() string { return FormatFixed(s.Subtotal) }

// VATText is the VAT amount rounded for printing.
func (s Summary) VATText() string { return FormatFixed(s.VAT) }

// GrandTotalText is the grand total rounded for printing.
func (s Summary) GrandTotalText() string { return FormatFixed(s.GrandTotal) }

// VATLabel names the VAT line, e.g. "VAT (5%)".
func (s Summary) VATLabel() string {
	return VATLabel(s.VATRate)
}

// VATLabel formats a rate as a percentage label.
func VATLabel(rate float64) string {
	pct := strconv.FormatFloat(rate*100, 'f', -1, 64)
	if rounded := strconv.FormatFloat(rate*100, 'f', 2, 64); len(rounded) < len(pct) {
		pct = strings.TrimRight(strings.TrimRight(rounded, "0"), ".")
	}
	return fmt.Sprintf("VAT (%s%%)", pct)
}

// TotalLines returns the totals block as label/value pairs.
func (s Summary) TotalLines() [][2]string {
	return [][2]string{
		{"Total", s.SubtotalText()},
		{s.VATLabel(), s.VATText()},
		{"Grand Total", s.GrandTotalText()},
	}
}

// Report is the printable view of a Summary, with every amount already
// formatted.
type Report struct {
	Rows       []ReportRow    `json:"rows"`
	Subtotal   string         `json:"subtotal"`
	VATLabel   string         `json:"vat_label"`
	VAT        string         `json:"vat"`
	GrandTotal string         `json:"grand_total"`
	Policy     SubtotalPolicy `json:"policy"`
}

// ReportRow is a Row with the quantity as printed.
type ReportRow struct {
	SNo         int    `json:"sno"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Amount      string `json:"amount"`
}

// Report formats the summary for JSON output.
func (s Summary) Report() Report {
	rows := make([]ReportRow, 0, len(s.Rows))
	for _, r := range s.Rows {
		rows = append(rows, ReportRow{
			SNo:         r.SNo,
			Description: r.Description,
			Quantity:    r.QuantityText(),
			UnitPrice:   r.UnitPrice,
			Amount:      r.Amount,
		})
	}
	return Report{
		Rows:       rows,
		Subtotal:   s.SubtotalText(),
		VATLabel:   s.VATLabel(),
		VAT:        s.VATText(),
		GrandTotal: s.GrandTotalText(),
		Policy:     s.Policy,
	}
}
