package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"moneta/internal/core/apperror"
	"moneta/internal/core/id"
	"moneta/internal/core/types"
	"moneta/internal/domain/ledger"
)

// --- Request DTOs ---

// RecordTransactionRequest is the request body for recording a
// ledger transaction.
type RecordTransactionRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Date        time.Time       `json:"date" binding:"required"`
	CategoryID  *string         `json:"categoryId"`
	Description string          `json:"description"`
	TaxRate     *decimal.Decimal `json:"taxRate"`
}

// ToTransaction converts DTO to a transaction value. Ownership is
// assigned by the service from the request context.
func (r *RecordTransactionRequest) ToTransaction() (*ledger.Transaction, error) {
	tx := &ledger.Transaction{
		Amount:      r.Amount,
		Date:        r.Date,
		Description: r.Description,
	}

	if r.CategoryID != nil {
		catID, err := id.Parse(*r.CategoryID)
		if err != nil {
			return nil, apperror.NewValidation("invalid category id").
				WithDetail("field", "categoryId")
		}
		tx.CategoryID = &catID
	}

	if r.TaxRate != nil {
		rate := types.RoundRate(*r.TaxRate)
		tx.TaxRate = &rate
	}

	return tx, nil
}

// --- Response DTOs ---

// TransactionResponse is the response body for a transaction.
type TransactionResponse struct {
	ID          string       `json:"id"`
	CategoryID  *string      `json:"categoryId,omitempty"`
	Amount      types.Money  `json:"amount"`
	Date        time.Time    `json:"date"`
	Description string       `json:"description,omitempty"`
	TaxRate     *types.Money `json:"taxRate,omitempty"`
	TaxAmount   *types.Money `json:"taxAmount,omitempty"`
	Version     int          `json:"version"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// FromTransaction creates response DTO from domain entity.
func FromTransaction(t *ledger.Transaction) *TransactionResponse {
	resp := &TransactionResponse{
		ID:          t.ID.String(),
		Amount:      t.Amount,
		Date:        t.Date,
		Description: t.Description,
		TaxRate:     t.TaxRate,
		TaxAmount:   t.TaxAmount,
		Version:     t.Version,
		CreatedAt:   t.CreatedAt,
	}
	if t.CategoryID != nil {
		s := t.CategoryID.String()
		resp.CategoryID = &s
	}
	return resp
}
