package forecast

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneta/internal/core/apperror"
	"moneta/internal/core/types"
	"moneta/internal/domain/ledger"
)

type mockSummarizer struct {
	summary *ledger.MonthlySummary
}

func (m *mockSummarizer) MonthlySummary(ctx context.Context, monthCount int) (*ledger.MonthlySummary, error) {
	return m.summary, nil
}

func moneys(values ...string) []types.Money {
	out := make([]types.Money, len(values))
	for i, v := range values {
		out[i] = types.MustMoney(v)
	}
	return out
}

func TestGrowthTrend(t *testing.T) {
	tests := []struct {
		name   string
		series []types.Money
		want   string
	}{
		{"empty", nil, "0"},
		{"single point", moneys("100"), "0"},
		{"zero prior skipped", moneys("0", "50"), "0"},
		{"steady ten percent", moneys("100", "110", "121"), "0.1"},
		{"decline", moneys("100", "50"), "-0.5"},
		{"zero step mid-series", moneys("100", "0", "50", "100"), "0"},
		{"all zero", moneys("0", "0", "0"), "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GrowthTrend(tt.series)
			assert.True(t, got.Equal(types.MustMoney(tt.want)),
				"got %s, want %s", got, tt.want)
		})
	}
}

func TestGrowthTrend_MidSeriesZeroAverages(t *testing.T) {
	// 100 -> 0 contributes -1; 0 -> 50 is skipped; 50 -> 100 contributes
	// +1. Mean over the two valid steps is zero.
	got := GrowthTrend(moneys("100", "0", "50", "100"))
	assert.True(t, got.IsZero(), "got %s", got)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestService_Forecast(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	svc := NewService(&mockSummarizer{summary: &ledger.MonthlySummary{
		Labels:  []string{"Apr 2025", "May 2025", "Jun 2025"},
		Income:  moneys("100", "110", "121"),
		Expense: moneys("50", "50", "50"),
	}}, fixedClock(now))

	p, err := svc.Forecast(context.Background(), 3)
	require.NoError(t, err)

	require.Len(t, p.Income, 3)
	assert.Equal(t, []string{"Jul 2025", "Aug 2025", "Sep 2025"}, p.Labels)

	// Income trend 0.1 compounds linearly off the last month.
	assert.True(t, p.Income[0].Equal(types.MustMoney("133.10")), "got %s", p.Income[0])
	assert.True(t, p.Income[1].Equal(types.MustMoney("145.20")), "got %s", p.Income[1])
	assert.True(t, p.Income[2].Equal(types.MustMoney("157.30")), "got %s", p.Income[2])

	// Flat expenses stay flat.
	for i, e := range p.Expense {
		assert.True(t, e.Equal(types.MustMoney("50.00")), "month %d: got %s", i, e)
	}

	for i := range p.Balance {
		assert.True(t, p.Balance[i].Equal(p.Income[i].Sub(p.Expense[i])))
	}
}

func TestService_Forecast_EmptyHistory(t *testing.T) {
	svc := NewService(&mockSummarizer{summary: &ledger.MonthlySummary{}}, nil)

	p, err := svc.Forecast(context.Background(), 6)
	require.NoError(t, err)

	require.Len(t, p.Income, 6)
	for i := range p.Income {
		assert.True(t, p.Income[i].IsZero())
		assert.True(t, p.Expense[i].IsZero())
		assert.True(t, p.Balance[i].IsZero())
	}
}

func TestService_Forecast_NeverNegative(t *testing.T) {
	// A steep decline would extrapolate below zero; projections clamp.
	svc := NewService(&mockSummarizer{summary: &ledger.MonthlySummary{
		Income:  moneys("100", "20"),
		Expense: moneys("10", "10"),
	}}, nil)

	p, err := svc.Forecast(context.Background(), 4)
	require.NoError(t, err)
	for i, inc := range p.Income {
		assert.False(t, inc.IsNegative(), "month %d: got %s", i, inc)
	}
	// Trend is -0.8: month 1 is 20 x 0.2 = 4, month 2 and on clamp to 0.
	assert.True(t, p.Income[0].Equal(types.MustMoney("4.00")), "got %s", p.Income[0])
	assert.True(t, p.Income[1].IsZero(), "got %s", p.Income[1])
}

func TestService_Forecast_InvalidMonths(t *testing.T) {
	svc := NewService(&mockSummarizer{summary: &ledger.MonthlySummary{}}, nil)

	_, err := svc.Forecast(context.Background(), 0)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestService_Forecast_CapsHorizon(t *testing.T) {
	svc := NewService(&mockSummarizer{summary: &ledger.MonthlySummary{
		Income:  moneys("100"),
		Expense: moneys("50"),
	}}, nil)

	p, err := svc.Forecast(context.Background(), 1000)
	require.NoError(t, err)
	assert.Len(t, p.Income, maxForecastMonths)
}
