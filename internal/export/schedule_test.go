package export

import (
	"testing"
	"time"

	"coop-pos/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestInstallmentScheduleXLSX(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	tx := &models.Transaction{
		TransactionNumber: "SAL20260310000001",
		CreatedAt:         start,
		Member:            &models.Member{Name: "Siti Aminah", MemberCode: "IBS000001"},
		Installment: &models.Installment{
			TotalAmount:      decimal.NewFromInt(600000),
			DownPayment:      decimal.NewFromInt(100000),
			RemainingAmount:  decimal.NewFromInt(500000),
			InstallmentCount: 2,
			Payments: []models.InstallmentPayment{
				{InstallmentNumber: 1, Amount: decimal.NewFromInt(250000), DueDate: start.AddDate(0, 1, 0), Status: models.PaymentPending},
				{InstallmentNumber: 2, Amount: decimal.NewFromInt(250000), DueDate: start.AddDate(0, 2, 0), Status: models.PaymentPending},
			},
		},
	}

	f, err := InstallmentScheduleXLSX(tx)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(scheduleSheet)
	require.NoError(t, err)
	require.Len(t, rows, 11)
	assert.Equal(t, []string{"Transaction", "SAL20260310000001"}, rows[0])
	assert.Equal(t, "Siti Aminah (IBS000001)", rows[1][1])
	assert.Equal(t, []string{"No", "Due date", "Amount", "Status"}, rows[8])
	assert.Equal(t, "1", rows[9][0])
	assert.Equal(t, "2026-04-10", rows[9][1])
	assert.Equal(t, "2026-05-10", rows[10][1])
	assert.Equal(t, "pending", rows[10][3])
}

func TestInstallmentScheduleXLSXNeedsPlan(t *testing.T) {
	_, err := InstallmentScheduleXLSX(&models.Transaction{TransactionNumber: "SAL20260310000002"})
	assert.ErrorIs(t, err, ErrNoInstallment)
}

func TestStyleScheduleReportsErrors(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	assert.Error(t, styleSchedule(f, "Missing", 9, 2))

	require.NoError(t, styleSchedule(f, "Sheet1", 9, 2))
	width, err := f.GetColWidth("Sheet1", "C")
	require.NoError(t, err)
	assert.Equal(t, 22.0, width)
}
