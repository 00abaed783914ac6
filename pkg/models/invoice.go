package models

// LineItem is one billable row as typed into the form. Quantity and UnitPrice
// stay raw text until the invoice is computed.
type LineItem struct {
	Description string `json:"description" yaml:"description"` // Free text, printed as-is
	Quantity    string `json:"quantity" yaml:"quantity"`       // Decimal text, zero when unparseable
	UnitPrice   string `json:"unit_price" yaml:"unit_price"`   // Decimal text, zero when unparseable
}

// InvoiceState is everything the form holds for one session.
type InvoiceState struct {
	CustomerName string     `json:"customer_name" yaml:"customer_name"`
	Date         string     `json:"date" yaml:"date"` // Printed verbatim, no date parsing
	VATIncluded  bool       `json:"vat_included" yaml:"vat_included"`
	LineItems    []LineItem `json:"line_items" yaml:"line_items"`
}

// Clone returns a deep copy so the caller can hand out a read-only snapshot.
func (s InvoiceState) Clone() InvoiceState {
	out := s
	if s.LineItems != nil {
		out.LineItems = make([]LineItem, len(s.LineItems))
		copy(out.LineItems, s.LineItems)
	}
	return out
}
