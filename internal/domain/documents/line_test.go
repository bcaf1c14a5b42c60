package documents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneta/internal/core/apperror"
	"moneta/internal/core/id"
	"moneta/internal/core/types"
)

func line(qty, price, rate string) Line {
	return Line{
		Description: "item",
		Quantity:    types.MustMoney(qty),
		UnitPrice:   types.MustMoney(price),
		TaxRate:     types.MustMoney(rate),
	}
}

// The end-to-end arithmetic example: 2 x 50.00 at 20% tax.
func TestPrepare_SingleLine(t *testing.T) {
	lines, totals, err := Prepare(id.New(), []Line{line("2", "50.00", "20")})
	require.NoError(t, err)
	require.Len(t, lines, 1)

	assert.True(t, lines[0].Subtotal.Equal(types.MustMoney("100.00")))
	assert.True(t, lines[0].TaxAmount.Equal(types.MustMoney("20.00")))
	assert.True(t, lines[0].Total.Equal(types.MustMoney("120.00")))

	assert.True(t, totals.Subtotal.Equal(types.MustMoney("100.00")))
	assert.True(t, totals.TaxAmount.Equal(types.MustMoney("20.00")))
	assert.True(t, totals.Total.Equal(types.MustMoney("120.00")))
}

// total == subtotal + tax_amount, and document sums equal line sums,
// for a mixed set of lines including zero-tax and fractional values.
func TestPrepare_TotalsInvariant(t *testing.T) {
	docID := id.New()
	lines, totals, err := Prepare(docID, []Line{
		line("2", "50.00", "20"),
		line("3", "19.99", "5.5"),
		line("1", "0.00", "20"),
		line("0.5", "99.99", "0"),
	})
	require.NoError(t, err)

	sumSubtotal := types.Zero()
	sumTax := types.Zero()
	for i, l := range lines {
		assert.Equal(t, i+1, l.LineNo)
		assert.Equal(t, docID, l.DocumentID)
		assert.True(t, l.Total.Equal(l.Subtotal.Add(l.TaxAmount)), "line %d", i+1)
		sumSubtotal = sumSubtotal.Add(l.Subtotal)
		sumTax = sumTax.Add(l.TaxAmount)
	}

	assert.True(t, totals.Subtotal.Equal(sumSubtotal))
	assert.True(t, totals.TaxAmount.Equal(sumTax))
	assert.True(t, totals.Total.Equal(totals.Subtotal.Add(totals.TaxAmount)))
}

func TestPrepare_Validation(t *testing.T) {
	tests := []struct {
		name  string
		lines []Line
	}{
		{"NoLines", nil},
		{"ZeroQuantity", []Line{line("0", "10.00", "0")}},
		{"NegativeQuantity", []Line{line("-1", "10.00", "0")}},
		{"NegativePrice", []Line{line("1", "-10.00", "0")}},
		{"NegativeTaxRate", []Line{line("1", "10.00", "-5")}},
		{"SecondLineBad", []Line{line("1", "10.00", "0"), line("1", "5.00", "-1")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Prepare(id.New(), tt.lines)
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))
		})
	}
}

func TestClone_FreshIdentities(t *testing.T) {
	src, _, err := Prepare(id.New(), []Line{line("2", "50.00", "20"), line("1", "10.00", "0")})
	require.NoError(t, err)

	target := id.New()
	cloned := Clone(target, src)
	require.Len(t, cloned, len(src))

	for i := range cloned {
		assert.NotEqual(t, src[i].ID, cloned[i].ID)
		assert.Equal(t, target, cloned[i].DocumentID)
		assert.Equal(t, src[i].Description, cloned[i].Description)
		assert.True(t, cloned[i].Quantity.Equal(src[i].Quantity))
		assert.True(t, cloned[i].UnitPrice.Equal(src[i].UnitPrice))
		assert.True(t, cloned[i].TaxRate.Equal(src[i].TaxRate))
	}
}
