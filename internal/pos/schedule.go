package pos

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScheduledPayment is one due of an installment plan.
type ScheduledPayment struct {
	Number  int
	Amount  decimal.Decimal
	DueDate time.Time
}

type Schedule struct {
	TotalAmount       decimal.Decimal
	DownPayment       decimal.Decimal
	RemainingAmount   decimal.Decimal
	InstallmentAmount decimal.Decimal
	Count             int
	StartDate         time.Time
	EndDate           time.Time
	Payments          []ScheduledPayment
}

// BuildSchedule splits what is left after the down payment into count monthly
// dues starting one month after createdAt. Each due is rounded down to scale
// decimal places and the last one absorbs the remainder, so the dues always
// add up to the remaining amount.
func BuildSchedule(createdAt time.Time, total, downPayment decimal.Decimal, count int, scale int32) Schedule {
	remaining := total.Sub(downPayment)
	n := decimal.NewFromInt(int64(count))
	per := remaining.Div(n).RoundFloor(scale)

	s := Schedule{
		TotalAmount:       total,
		DownPayment:       downPayment,
		RemainingAmount:   remaining,
		InstallmentAmount: per,
		Count:             count,
		StartDate:         createdAt.AddDate(0, 1, 0),
		EndDate:           createdAt.AddDate(0, count, 0),
		Payments:          make([]ScheduledPayment, count),
	}

	allocated := decimal.Zero
	for i := 1; i <= count; i++ {
		amount := per
		if i == count {
			amount = remaining.Sub(allocated)
		}
		allocated = allocated.Add(amount)
		s.Payments[i-1] = ScheduledPayment{
			Number:  i,
			Amount:  amount,
			DueDate: createdAt.AddDate(0, i, 0),
		}
	}
	return s
}
