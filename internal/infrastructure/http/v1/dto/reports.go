package dto

import (
	"moneta/internal/core/types"
	"moneta/internal/domain/forecast"
	"moneta/internal/domain/ledger"
)

// TotalResponse is the response body for a typed total.
type TotalResponse struct {
	Kind  string      `json:"kind"`
	Total types.Money `json:"total"`
}

// BreakdownEntryResponse is one category slice of a breakdown.
type BreakdownEntryResponse struct {
	CategoryName string      `json:"categoryName"`
	Total        types.Money `json:"total"`
}

// BreakdownResponse is the response body for a category breakdown.
type BreakdownResponse struct {
	Kind    string                   `json:"kind"`
	Entries []BreakdownEntryResponse `json:"entries"`
}

// FromBreakdown creates response DTO from domain entries.
func FromBreakdown(kind string, entries []ledger.BreakdownEntry) *BreakdownResponse {
	out := make([]BreakdownEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = BreakdownEntryResponse{
			CategoryName: e.CategoryName,
			Total:        e.Total,
		}
	}
	return &BreakdownResponse{Kind: kind, Entries: out}
}

// MonthlySummaryResponse is the response body for the trailing
// monthly summary. Series share index positions with labels.
type MonthlySummaryResponse struct {
	Labels  []string      `json:"labels"`
	Income  []types.Money `json:"income"`
	Expense []types.Money `json:"expense"`
}

// FromMonthlySummary creates response DTO from the domain summary.
func FromMonthlySummary(s *ledger.MonthlySummary) *MonthlySummaryResponse {
	return &MonthlySummaryResponse{
		Labels:  s.Labels,
		Income:  s.Income,
		Expense: s.Expense,
	}
}

// ForecastResponse is the response body for a cash flow projection.
type ForecastResponse struct {
	Labels  []string      `json:"labels"`
	Income  []types.Money `json:"income"`
	Expense []types.Money `json:"expense"`
	Balance []types.Money `json:"balance"`
}

// FromProjection creates response DTO from the domain projection.
func FromProjection(p *forecast.Projection) *ForecastResponse {
	return &ForecastResponse{
		Labels:  p.Labels,
		Income:  p.Income,
		Expense: p.Expense,
		Balance: p.Balance,
	}
}
