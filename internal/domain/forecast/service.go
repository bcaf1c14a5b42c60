// Package forecast projects income and expense for the coming months
// from the trailing monthly ledger aggregates. The model is a linear
// compounding of the average month-over-month growth; it carries no
// confidence bounds and degrades to zero on sparse data. That is a
// known limitation of the model, not an error condition.
package forecast

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"moneta/internal/core/apperror"
	"moneta/internal/core/types"
	"moneta/internal/domain/ledger"
)

const (
	// historyMonths is the trailing window the trend is fitted on.
	historyMonths = 12

	maxForecastMonths = 24
)

// Summarizer is the slice of the ledger the forecaster reads.
type Summarizer interface {
	MonthlySummary(ctx context.Context, monthCount int) (*ledger.MonthlySummary, error)
}

// Projection is a forward-looking cash-flow series. Balance is the
// per-month difference, not a running total.
type Projection struct {
	Labels  []string      `json:"labels"`
	Income  []types.Money `json:"income"`
	Expense []types.Money `json:"expense"`
	Balance []types.Money `json:"balance"`
}

// Service produces cash-flow projections.
type Service struct {
	ledger Summarizer
	now    func() time.Time
}

// NewService creates a new forecasting service.
func NewService(l Summarizer, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{ledger: l, now: now}
}

// GrowthTrend returns the average month-over-month relative growth of
// the series. Steps whose prior value is zero are skipped; with fewer
// than two points, or no valid step, the trend is zero.
func GrowthTrend(series []types.Money) types.Money {
	if len(series) < 2 {
		return types.Zero()
	}

	sum := types.Zero()
	steps := 0
	for i := 1; i < len(series); i++ {
		prev := series[i-1]
		if prev.IsZero() {
			continue
		}
		sum = sum.Add(series[i].Sub(prev).Div(prev))
		steps++
	}
	if steps == 0 {
		return types.Zero()
	}

	return sum.Div(decimal.NewFromInt(int64(steps)))
}

// Forecast projects the next months of income, expense and balance from
// the trailing twelve months of ledger history. The last (current,
// partial) month anchors the extrapolation:
//
//	predicted[i] = max(0, last x (1 + trend x i))
//
// An owner with no history gets an all-zero projection, never an error.
func (s *Service) Forecast(ctx context.Context, months int) (*Projection, error) {
	if months < 1 {
		return nil, apperror.NewValidation("months must be positive").
			WithDetail("field", "months")
	}
	if months > maxForecastMonths {
		months = maxForecastMonths
	}

	summary, err := s.ledger.MonthlySummary(ctx, historyMonths)
	if err != nil {
		return nil, err
	}

	incomeTrend := GrowthTrend(summary.Income)
	expenseTrend := GrowthTrend(summary.Expense)

	lastIncome := types.Zero()
	lastExpense := types.Zero()
	if n := len(summary.Income); n > 0 {
		lastIncome = summary.Income[n-1]
		lastExpense = summary.Expense[n-1]
	}

	p := &Projection{
		Labels:  make([]string, 0, months),
		Income:  make([]types.Money, 0, months),
		Expense: make([]types.Money, 0, months),
		Balance: make([]types.Money, 0, months),
	}

	currentMonth := monthStart(s.now())
	for i := 1; i <= months; i++ {
		factor := func(trend types.Money) types.Money {
			return decimal.NewFromInt(1).Add(trend.Mul(decimal.NewFromInt(int64(i))))
		}
		income := clampZero(types.RoundAmount(lastIncome.Mul(factor(incomeTrend))))
		expense := clampZero(types.RoundAmount(lastExpense.Mul(factor(expenseTrend))))

		p.Labels = append(p.Labels, currentMonth.AddDate(0, i, 0).Format("Jan 2006"))
		p.Income = append(p.Income, income)
		p.Expense = append(p.Expense, expense)
		p.Balance = append(p.Balance, income.Sub(expense))
	}

	return p, nil
}

func clampZero(m types.Money) types.Money {
	if m.IsNegative() {
		return types.Zero()
	}
	return m
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
