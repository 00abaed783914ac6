package invoice

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"billgen/internal/logger"
	"billgen/pkg/models"
)

// TotalsCheck compares the two subtotal policies for one state.
type TotalsCheck struct {
	log zerolog.Logger
}

// NewTotalsCheck creates a totals checker.
func NewTotalsCheck() *TotalsCheck {
	return &TotalsCheck{
		log: logger.WithComponent("totals-check"),
	}
}

// TotalsCheckResult holds both subtotals and any warnings about them.
type TotalsCheckResult struct {
	Exact          string
	Rounded        string
	HasDiscrepancy bool
	Warnings       []string
}

// Check recomputes the subtotal under both policies. A difference is only
// reported, it never changes the invoice.
func (tc *TotalsCheck) Check(state models.InvoiceState, opts Options) *TotalsCheckResult {
	exactOpts, roundedOpts := opts, opts
	exactOpts.Policy = PolicyExact
	roundedOpts.Policy = PolicyRounded

	exact := Compute(state, exactOpts)
	rounded := Compute(state, roundedOpts)

	result := &TotalsCheckResult{
		Exact:    exact.SubtotalText(),
		Rounded:  rounded.SubtotalText(),
		Warnings: []string{},
	}

	if result.Exact != result.Rounded {
		result.HasDiscrepancy = true
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("subtotal differs by policy: exact=%s, rounded=%s", result.Exact, result.Rounded))
	}

	// Grand total must equal subtotal + VAT once printed.
	for _, s := range []Summary{exact, rounded} {
		printed := ParseNumber(s.SubtotalText()) + ParseNumber(s.VATText())
		if diff := math.Abs(printed - ParseNumber(s.GrandTotalText())); diff > 0.0015 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s: printed Total + VAT is off from Grand Total by %s", s.Policy, FormatFixed(diff)))
		}
	}

	if len(result.Warnings) > 0 {
		tc.log.Warn().
			Str("exact", result.Exact).
			Str("rounded", result.Rounded).
			Strs("warnings", result.Warnings).
			Msg("Subtotal rounding discrepancy")
	} else {
		tc.log.Debug().
			Str("subtotal", result.Exact).
			Int("rows", len(state.LineItems)).
			Msg("Subtotal policies agree")
	}

	return result
}
