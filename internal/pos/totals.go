package pos

import "github.com/shopspring/decimal"

// PricedLine is a cart line joined with the catalog's points rule.
type PricedLine struct {
	Quantity      int
	UnitPrice     decimal.Decimal
	PointsPerUnit int
}

func (l PricedLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Totals are the amounts written on the transaction header.
type Totals struct {
	TotalAmount    decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalAmount    decimal.Decimal
	PointsUsed     int
	PointsEarned   int
}

// ComputeTotals sums the cart and applies the discount and redeemed points.
// One point is worth one currency unit. The final amount never drops below zero.
func ComputeTotals(lines []PricedLine, discount decimal.Decimal, pointsUsed int) Totals {
	t := Totals{
		TotalAmount:    decimal.Zero,
		DiscountAmount: discount,
		PointsUsed:     pointsUsed,
	}
	for _, l := range lines {
		t.TotalAmount = t.TotalAmount.Add(l.Total())
		t.PointsEarned += l.PointsPerUnit * l.Quantity
	}

	final := t.TotalAmount.Sub(discount)
	if pointsUsed > 0 {
		final = final.Sub(decimal.NewFromInt(int64(pointsUsed)))
	}
	t.FinalAmount = decimal.Max(decimal.Zero, final)
	return t
}
