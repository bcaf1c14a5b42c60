// Package documents provides the shape shared by the two commercial
// document variants: line items and the totals arithmetic over them.
// Invoices and quotes differ only in status vocabulary and conversion
// rules; everything priced lives here.
package documents

import (
	"moneta/internal/core/apperror"
	"moneta/internal/core/id"
	"moneta/internal/core/types"
)

// Line is one priced row within a commercial document. The derived
// fields are recomputed from quantity, unit price and tax rate whenever
// the parent document changes structurally; they are never accepted as
// client input.
type Line struct {
	ID         id.ID `db:"id" json:"id"`
	DocumentID id.ID `db:"document_id" json:"-"`
	LineNo     int   `db:"line_no" json:"lineNo"`

	Description string      `db:"description" json:"description"`
	Quantity    types.Money `db:"quantity" json:"quantity"`
	UnitPrice   types.Money `db:"unit_price" json:"unitPrice"`
	TaxRate     types.Money `db:"tax_rate" json:"taxRate"`

	// Derived
	Subtotal  types.Money `db:"subtotal" json:"subtotal"`
	TaxAmount types.Money `db:"tax_amount" json:"taxAmount"`
	Total     types.Money `db:"total" json:"total"`
}

// Compute fills the derived fields:
//
//	subtotal   = quantity x unit_price
//	tax_amount = subtotal x tax_rate / 100
//	total      = subtotal + tax_amount
func (l *Line) Compute() {
	l.TaxRate = types.RoundRate(l.TaxRate)
	l.Subtotal = types.RoundAmount(l.Quantity.Mul(l.UnitPrice))
	l.TaxAmount = types.Percent(l.Subtotal, l.TaxRate)
	l.Total = l.Subtotal.Add(l.TaxAmount)
}

// Totals are the document-level sums over line items. They are derived,
// not authoritative: whenever lines change they are recomputed from
// scratch within the same unit of work.
type Totals struct {
	Subtotal  types.Money `db:"subtotal" json:"subtotal"`
	TaxAmount types.Money `db:"tax_amount" json:"taxAmount"`
	Total     types.Money `db:"total" json:"total"`
}

// Prepare validates raw lines, assigns identities and line numbers,
// computes per-line derived fields and returns the document totals.
// This is the single entry point every structural change goes through.
func Prepare(docID id.ID, lines []Line) ([]Line, Totals, error) {
	if err := validate(lines); err != nil {
		return nil, Totals{}, err
	}

	prepared := make([]Line, len(lines))
	totals := Totals{
		Subtotal:  types.Zero(),
		TaxAmount: types.Zero(),
		Total:     types.Zero(),
	}

	for i, line := range lines {
		line.ID = id.New()
		line.DocumentID = docID
		line.LineNo = i + 1
		line.Compute()

		totals.Subtotal = totals.Subtotal.Add(line.Subtotal)
		totals.TaxAmount = totals.TaxAmount.Add(line.TaxAmount)
		prepared[i] = line
	}
	totals.Total = totals.Subtotal.Add(totals.TaxAmount)

	return prepared, totals, nil
}

// Clone deep-copies lines for a new document: fresh identities, same
// description, quantity, unit price and tax rate. Later edits to either
// document never affect the other.
func Clone(docID id.ID, lines []Line) []Line {
	cloned := make([]Line, len(lines))
	for i, line := range lines {
		line.ID = id.New()
		line.DocumentID = docID
		cloned[i] = line
	}
	return cloned
}

func validate(lines []Line) error {
	if len(lines) == 0 {
		return apperror.NewValidation("at least one line item is required").
			WithDetail("field", "lines")
	}

	for i, line := range lines {
		lineNo := i + 1
		if line.Quantity.IsZero() || line.Quantity.IsNegative() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", lineNo)
		}
		if line.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price cannot be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", lineNo)
		}
		if line.TaxRate.IsNegative() {
			return apperror.NewValidation("tax rate cannot be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", lineNo)
		}
	}

	return nil
}
