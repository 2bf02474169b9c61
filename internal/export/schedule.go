package export

import (
	"errors"
	"fmt"

	"coop-pos/internal/models"

	"github.com/xuri/excelize/v2"
)

const scheduleSheet = "Schedule"

var ErrNoInstallment = errors.New("transaction has no installment plan")

// InstallmentScheduleXLSX renders the repayment schedule of an installment
// sale. tx must be loaded with Member and Installment.Payments.
func InstallmentScheduleXLSX(tx *models.Transaction) (*excelize.File, error) {
	if tx.Installment == nil {
		return nil, ErrNoInstallment
	}
	plan := tx.Installment

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", scheduleSheet); err != nil {
		f.Close()
		return nil, err
	}

	member := ""
	if tx.Member != nil {
		member = fmt.Sprintf("%s (%s)", tx.Member.Name, tx.Member.MemberCode)
	}

	header := [][]interface{}{
		{"Transaction", tx.TransactionNumber},
		{"Member", member},
		{"Date", tx.CreatedAt.Format("2006-01-02")},
		{"Total", plan.TotalAmount.InexactFloat64()},
		{"Down payment", plan.DownPayment.InexactFloat64()},
		{"Remaining", plan.RemainingAmount.InexactFloat64()},
		{"Installments", plan.InstallmentCount},
	}
	for i, row := range header {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(scheduleSheet, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
	}

	first := len(header) + 2
	cell, _ := excelize.CoordinatesToCellName(1, first)
	if err := f.SetSheetRow(scheduleSheet, cell, &[]interface{}{"No", "Due date", "Amount", "Status"}); err != nil {
		f.Close()
		return nil, err
	}
	for i, p := range plan.Payments {
		cell, _ := excelize.CoordinatesToCellName(1, first+1+i)
		row := []interface{}{p.InstallmentNumber, p.DueDate.Format("2006-01-02"), p.Amount.InexactFloat64(), string(p.Status)}
		if err := f.SetSheetRow(scheduleSheet, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
	}

	if err := styleSchedule(f, scheduleSheet, first, len(plan.Payments)); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// styleSchedule formats the header amounts and the n dues listed below row first.
func styleSchedule(f *excelize.File, sheet string, first, n int) error {
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "B4", "B6", money); err != nil {
		return err
	}
	if n > 0 {
		from, _ := excelize.CoordinatesToCellName(3, first+1)
		to, _ := excelize.CoordinatesToCellName(3, first+n)
		if err := f.SetCellStyle(sheet, from, to, money); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheet, "A", "A", 14); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "B", "D", 22)
}
