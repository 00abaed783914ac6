package invoice

import (
	"fmt"

	"github.com/rs/zerolog"

	"billgen/internal/logger"
	"billgen/pkg/models"
)

// Field names one editable column of a line item.
type Field int

const (
	FieldDescription Field = iota
	FieldQuantity
	FieldUnitPrice
)

// String returns the form name of the field.
func (f Field) String() string {
	switch f {
	case FieldDescription:
		return "description"
	case FieldQuantity:
		return "quantity"
	case FieldUnitPrice:
		return "unit_price"
	default:
		return fmt.Sprintf("Field(%d)", int(f))
	}
}

// ParseField maps a form name to a Field.
func ParseField(name string) (Field, error) {
	switch name {
	case "description":
		return FieldDescription, nil
	case "quantity":
		return FieldQuantity, nil
	case "unit_price", "unitPrice":
		return FieldUnitPrice, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// Editor owns the invoice state of one session. It is not safe for
// concurrent use; every form session gets its own Editor.
type Editor struct {
	state models.InvoiceState
	log   zerolog.Logger
}

// NewEditor returns an editor holding a single blank line item.
func NewEditor() *Editor {
	return &Editor{
		state: models.InvoiceState{LineItems: []models.LineItem{{}}},
		log:   logger.WithComponent("editor"),
	}
}

// NewEditorFromState adopts a copy of state.
func NewEditorFromState(state models.InvoiceState) *Editor {
	return &Editor{
		state: state.Clone(),
		log:   logger.WithComponent("editor"),
	}
}

// SetCustomerName sets the name printed after "Mr. / M/s".
func (e *Editor) SetCustomerName(name string) { e.state.CustomerName = name }

// SetDate sets the invoice date text.
func (e *Editor) SetDate(date string) { e.state.Date = date }

// SetVATIncluded toggles VAT on the totals.
func (e *Editor) SetVATIncluded(included bool) { e.state.VATIncluded = included }

// Len returns the number of line items.
func (e *Editor) Len() int { return len(e.state.LineItems) }

// AddLineItem appends a blank line item and returns its index.
func (e *Editor) AddLineItem() int {
	e.state.LineItems = append(e.state.LineItems, models.LineItem{})
	e.log.Debug().Int("count", len(e.state.LineItems)).Msg("Line item added")
	return len(e.state.LineItems) - 1
}

// RemoveLineItem deletes the item at index. Out-of-range indexes are ignored
// and report false.
func (e *Editor) RemoveLineItem(index int) bool {
	if index < 0 || index >= len(e.state.LineItems) {
		e.log.Debug().Int("index", index).Msg("Ignoring removal of missing line item")
		return false
	}
	items := make([]models.LineItem, 0, len(e.state.LineItems)-1)
	items = append(items, e.state.LineItems[:index]...)
	items = append(items, e.state.LineItems[index+1:]...)
	e.state.LineItems = items

	e.log.Debug().Int("index", index).Int("count", len(items)).Msg("Line item removed")
	return true
}

// UpdateField stores value verbatim in the given column of the item at
// index. Nothing is parsed until the invoice is computed.
func (e *Editor) UpdateField(index int, field Field, value string) bool {
	if index < 0 || index >= len(e.state.LineItems) {
		return false
	}
	item := &e.state.LineItems[index]
	switch field {
	case FieldDescription:
		item.Description = value
	case FieldQuantity:
		item.Quantity = value
	case FieldUnitPrice:
		item.UnitPrice = value
	default:
		return false
	}
	return true
}

// Amount is the live amount for the item at index, or "" when there is no
// such item.
func (e *Editor) Amount(index int) string {
	if index < 0 || index >= len(e.state.LineItems) {
		return ""
	}
	item := e.state.LineItems[index]
	return ComputeAmount(item.Quantity, item.UnitPrice)
}

// Snapshot returns a copy of the state that later edits cannot touch.
func (e *Editor) Snapshot() models.InvoiceState {
	return e.state.Clone()
}
