package pos

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestComputeTotalsCashCart(t *testing.T) {
	lines := []PricedLine{
		{Quantity: 2, UnitPrice: dec("55000"), PointsPerUnit: 3},
		{Quantity: 1, UnitPrice: dec("30000"), PointsPerUnit: 1},
	}
	got := ComputeTotals(lines, decimal.Zero, 0)

	assert.True(t, got.TotalAmount.Equal(dec("140000")), got.TotalAmount.String())
	assert.True(t, got.FinalAmount.Equal(dec("140000")), got.FinalAmount.String())
	assert.Equal(t, 7, got.PointsEarned)
}

func TestComputeTotalsPointsRedemption(t *testing.T) {
	lines := []PricedLine{{Quantity: 1, UnitPrice: dec("50000"), PointsPerUnit: 5}}
	got := ComputeTotals(lines, decimal.Zero, 20000)

	assert.True(t, got.FinalAmount.Equal(dec("30000")), got.FinalAmount.String())
	assert.Equal(t, 20000, got.PointsUsed)
	assert.Equal(t, 5, got.PointsEarned)
}

func TestComputeTotalsFloorsAtZero(t *testing.T) {
	lines := []PricedLine{{Quantity: 1, UnitPrice: dec("10000")}}

	assert.True(t, ComputeTotals(lines, dec("25000"), 0).FinalAmount.IsZero())
	assert.True(t, ComputeTotals(lines, dec("8000"), 5000).FinalAmount.IsZero())
	assert.True(t, ComputeTotals(lines, dec("8000"), 1000).FinalAmount.Equal(dec("1000")))
}

func TestComputeTotalsProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(t, "lines")
		lines := make([]PricedLine, n)
		sum := decimal.Zero
		points := 0
		for i := range lines {
			lines[i] = PricedLine{
				Quantity:      rapid.IntRange(1, 50).Draw(t, "qty"),
				UnitPrice:     decimal.New(rapid.Int64Range(0, 10_000_000).Draw(t, "cents"), -2),
				PointsPerUnit: rapid.IntRange(0, 100).Draw(t, "ppu"),
			}
			sum = sum.Add(lines[i].Total())
			points += lines[i].Quantity * lines[i].PointsPerUnit
		}
		discount := decimal.New(rapid.Int64Range(0, 100_000_000).Draw(t, "discount"), -2)
		used := rapid.IntRange(0, 1_000_000).Draw(t, "used")

		got := ComputeTotals(lines, discount, used)

		if got.FinalAmount.IsNegative() {
			t.Fatalf("final amount %s is negative", got.FinalAmount)
		}
		if !got.TotalAmount.Equal(sum) {
			t.Fatalf("total %s, want %s", got.TotalAmount, sum)
		}
		if got.PointsEarned != points {
			t.Fatalf("points earned %d, want %d", got.PointsEarned, points)
		}
		want := decimal.Max(decimal.Zero, sum.Sub(discount).Sub(decimal.NewFromInt(int64(used))))
		if !got.FinalAmount.Equal(want) {
			t.Fatalf("final %s, want %s", got.FinalAmount, want)
		}
	})
}
