package types

import (
	"testing"
)

func TestRoundAmount(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"NoRounding", "100.00", "100"},
		{"HalfUp", "0.005", "0.01"},
		{"Truncate", "19.994", "19.99"},
		{"Negative", "-2.555", "-2.56"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundAmount(MustMoney(tt.in))
			if got.String() != tt.want {
				t.Errorf("RoundAmount(%s) = %s, want %s", tt.in, got.String(), tt.want)
			}
		})
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name string
		base string
		rate string
		want string
	}{
		{"FlatTwenty", "100.00", "20", "20"},
		{"Fractional", "33.33", "20", "6.67"},
		{"FiveDigitRate", "1000.00", "5.12345", "51.23"},
		{"ZeroRate", "500.00", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percent(MustMoney(tt.base), MustMoney(tt.rate))
			if !got.Equal(MustMoney(tt.want)) {
				t.Errorf("Percent(%s, %s) = %s, want %s", tt.base, tt.rate, got.String(), tt.want)
			}
		})
	}
}

// Repeated addition of 0.1 must stay exact. This is the whole reason
// amounts are decimals and not float64.
func TestMoney_NoBinaryDrift(t *testing.T) {
	sum := Zero()
	tenth := MustMoney("0.10")
	for i := 0; i < 10; i++ {
		sum = sum.Add(tenth)
	}
	if !sum.Equal(MustMoney("1.00")) {
		t.Errorf("10 x 0.10 = %s, want 1.00", sum.String())
	}
}
