// Package ledger provides the transaction store and its aggregation
// operations: period totals, category breakdowns and monthly summaries.
package ledger

import (
	"context"
	"time"

	"moneta/internal/core/apperror"
	"moneta/internal/core/entity"
	"moneta/internal/core/id"
	"moneta/internal/core/types"
)

// Transaction is a single categorized money movement. The amount is
// unsigned; whether it counts as income or expense is inherited from
// the category's kind at read time, never stored here.
type Transaction struct {
	entity.Base

	// CategoryID is optional; uncategorized transactions are excluded
	// from typed aggregates until assigned a category.
	CategoryID *id.ID `db:"category_id" json:"categoryId,omitempty"`

	// Amount is always non-negative
	Amount types.Money `db:"amount" json:"amount"`

	// Date is the business date of the movement
	Date time.Time `db:"date" json:"date"`

	Description string `db:"description" json:"description,omitempty"`

	// TaxRate is an optional flat percentage; TaxAmount is derived from
	// it when present.
	TaxRate   *types.Money `db:"tax_rate" json:"taxRate,omitempty"`
	TaxAmount *types.Money `db:"tax_amount" json:"taxAmount,omitempty"`
}

// New creates a transaction for the given owner.
func New(ownerID id.ID, amount types.Money, date time.Time) *Transaction {
	return &Transaction{
		Base:   entity.NewBase(ownerID),
		Amount: amount,
		Date:   date,
	}
}

// Validate implements entity.Validatable.
func (t *Transaction) Validate(ctx context.Context) error {
	if t.Amount.IsNegative() || t.Amount.IsZero() {
		return apperror.NewValidation("amount must be positive").
			WithDetail("field", "amount")
	}

	if t.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}

	if t.TaxRate != nil && t.TaxRate.IsNegative() {
		return apperror.NewValidation("tax rate cannot be negative").
			WithDetail("field", "taxRate")
	}

	return nil
}

// ApplyTaxRate recomputes the derived tax amount from the rate.
func (t *Transaction) ApplyTaxRate() {
	if t.TaxRate == nil {
		t.TaxAmount = nil
		return
	}
	rate := types.RoundRate(*t.TaxRate)
	amount := types.Percent(t.Amount, rate)
	t.TaxRate = &rate
	t.TaxAmount = &amount
}

// BreakdownEntry is one row of a category breakdown, ordered by total
// descending with category name as the deterministic tiebreak.
type BreakdownEntry struct {
	CategoryName string      `db:"category_name" json:"categoryName"`
	Total        types.Money `db:"total" json:"total"`
}

// MonthlySummary holds per-month income and expense totals for a
// trailing window of calendar months, oldest first. The last month is
// the current, possibly partial, one.
type MonthlySummary struct {
	Labels  []string      `json:"labels"`
	Income  []types.Money `json:"income"`
	Expense []types.Money `json:"expense"`
}
