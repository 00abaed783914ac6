// Package invoice holds the line-item editor and the invoice arithmetic.
//
// Quantities and unit prices are kept as the raw text the user typed and
// parsed only when an invoice is computed:
//   - Unparseable input counts as zero; nothing here returns an error for it
//   - Per-line amounts, the subtotal, VAT and grand total print with exactly
//     three decimals
//   - VAT is a flat rate on the subtotal, applied only when enabled
//
// The same ComputeAmount backs the live form column and the PDF rows, so the
// two can never disagree.
package invoice

import "math"

// Options controls the derived totals.
type Options struct {
	VATRate float64
	Policy  SubtotalPolicy
}

// DefaultOptions returns the 5% VAT rate with exact summation.
func DefaultOptions() Options {
	return Options{
		VATRate: DefaultVATRate,
		Policy:  PolicyExact,
	}
}

// Validate rejects rates that cannot be printed or applied.
func (o Options) Validate() error {
	if math.IsNaN(o.VATRate) || math.IsInf(o.VATRate, 0) || o.VATRate < 0 {
		return NewValidationError("vat_rate", o.VATRate, "must be a finite non-negative number", ErrInvalidVATRate)
	}
	if _, err := ParsePolicy(string(o.Policy)); err != nil {
		return err
	}
	return nil
}
