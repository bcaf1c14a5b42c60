package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"moneta/internal/core/types"
	"moneta/internal/domain/documents"
	"moneta/internal/domain/documents/invoice"
	"moneta/internal/domain/documents/quote"
)

// --- Line DTOs ---

// LineRequest is one line item in a document create or replace body.
type LineRequest struct {
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unitPrice" binding:"required"`
	TaxRate     decimal.Decimal `json:"taxRate"`
}

// ToLine converts DTO to a raw line. Identity, numbering and derived
// amounts are assigned by the document engine.
func (r *LineRequest) ToLine() documents.Line {
	return documents.Line{
		Description: r.Description,
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
		TaxRate:     r.TaxRate,
	}
}

// ToLines converts a request slice to raw lines.
func ToLines(reqs []LineRequest) []documents.Line {
	lines := make([]documents.Line, len(reqs))
	for i, r := range reqs {
		lines[i] = r.ToLine()
	}
	return lines
}

// LineResponse is one computed line item in a document response.
type LineResponse struct {
	ID          string      `json:"id"`
	LineNo      int         `json:"lineNo"`
	Description string      `json:"description"`
	Quantity    types.Money `json:"quantity"`
	UnitPrice   types.Money `json:"unitPrice"`
	TaxRate     types.Money `json:"taxRate"`
	Subtotal    types.Money `json:"subtotal"`
	TaxAmount   types.Money `json:"taxAmount"`
	Total       types.Money `json:"total"`
}

// FromLines creates response DTOs from computed lines.
func FromLines(lines []documents.Line) []LineResponse {
	out := make([]LineResponse, len(lines))
	for i, l := range lines {
		out[i] = LineResponse{
			ID:          l.ID.String(),
			LineNo:      l.LineNo,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TaxRate:     l.TaxRate,
			Subtotal:    l.Subtotal,
			TaxAmount:   l.TaxAmount,
			Total:       l.Total,
		}
	}
	return out
}

// --- Shared request DTOs ---

// UpdateLinesRequest replaces the full line set of a document.
type UpdateLinesRequest struct {
	Lines []LineRequest `json:"lines" binding:"required"`
	Notes *string       `json:"notes"`
}

// SetStatusRequest requests a document status transition.
type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// --- Invoice DTOs ---

// CreateInvoiceRequest is the request body for creating an invoice.
type CreateInvoiceRequest struct {
	CustomerID string        `json:"customerId" binding:"required"`
	IssueDate  time.Time     `json:"issueDate"`
	DueDate    time.Time     `json:"dueDate"`
	Notes      string        `json:"notes"`
	Lines      []LineRequest `json:"lines" binding:"required"`
}

// InvoiceResponse is the response body for an invoice.
type InvoiceResponse struct {
	ID         string         `json:"id"`
	Number     string         `json:"number"`
	CustomerID string         `json:"customerId"`
	IssueDate  time.Time      `json:"issueDate"`
	DueDate    time.Time      `json:"dueDate"`
	Status     string         `json:"status"`
	Notes      string         `json:"notes,omitempty"`
	Subtotal   types.Money    `json:"subtotal"`
	TaxAmount  types.Money    `json:"taxAmount"`
	Total      types.Money    `json:"total"`
	Lines      []LineResponse `json:"lines"`
	Version    int            `json:"version"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// FromInvoice creates response DTO from domain entity.
func FromInvoice(inv *invoice.Invoice) *InvoiceResponse {
	return &InvoiceResponse{
		ID:         inv.ID.String(),
		Number:     inv.Number,
		CustomerID: inv.CustomerID.String(),
		IssueDate:  inv.IssueDate,
		DueDate:    inv.DueDate,
		Status:     string(inv.Status),
		Notes:      inv.Notes,
		Subtotal:   inv.Subtotal,
		TaxAmount:  inv.TaxAmount,
		Total:      inv.Total,
		Lines:      FromLines(inv.Lines),
		Version:    inv.Version,
		CreatedAt:  inv.CreatedAt,
		UpdatedAt:  inv.UpdatedAt,
	}
}

// --- Quote DTOs ---

// CreateQuoteRequest is the request body for creating a quote.
type CreateQuoteRequest struct {
	CustomerID string        `json:"customerId" binding:"required"`
	IssueDate  time.Time     `json:"issueDate"`
	ExpiryDate time.Time     `json:"expiryDate"`
	Notes      string        `json:"notes"`
	Lines      []LineRequest `json:"lines" binding:"required"`
}

// ConvertQuoteRequest is the optional body of a quote conversion.
type ConvertQuoteRequest struct {
	DueDate *time.Time `json:"dueDate"`
}

// QuoteResponse is the response body for a quote.
type QuoteResponse struct {
	ID         string         `json:"id"`
	Number     string         `json:"number"`
	CustomerID string         `json:"customerId"`
	IssueDate  time.Time      `json:"issueDate"`
	ExpiryDate time.Time      `json:"expiryDate"`
	Status     string         `json:"status"`
	InvoiceID  *string        `json:"invoiceId,omitempty"`
	Notes      string         `json:"notes,omitempty"`
	Subtotal   types.Money    `json:"subtotal"`
	TaxAmount  types.Money    `json:"taxAmount"`
	Total      types.Money    `json:"total"`
	Lines      []LineResponse `json:"lines"`
	Version    int            `json:"version"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// FromQuote creates response DTO from domain entity.
func FromQuote(q *quote.Quote) *QuoteResponse {
	resp := &QuoteResponse{
		ID:         q.ID.String(),
		Number:     q.Number,
		CustomerID: q.CustomerID.String(),
		IssueDate:  q.IssueDate,
		ExpiryDate: q.ExpiryDate,
		Status:     string(q.Status),
		Notes:      q.Notes,
		Subtotal:   q.Subtotal,
		TaxAmount:  q.TaxAmount,
		Total:      q.Total,
		Lines:      FromLines(q.Lines),
		Version:    q.Version,
		CreatedAt:  q.CreatedAt,
		UpdatedAt:  q.UpdatedAt,
	}
	if q.InvoiceID != nil {
		s := q.InvoiceID.String()
		resp.InvoiceID = &s
	}
	return resp
}
