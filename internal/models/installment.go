package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type InstallmentStatus string

const (
	InstallmentActive    InstallmentStatus = "active"
	InstallmentCompleted InstallmentStatus = "completed"
	InstallmentOverdue   InstallmentStatus = "overdue"
	InstallmentCancelled InstallmentStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentOverdue PaymentStatus = "overdue"
)

// Installment - credit plan opened by an installment sale
type Installment struct {
	ID                uint                 `gorm:"primaryKey" json:"id"`
	TransactionID     uint                 `gorm:"uniqueIndex" json:"transaction_id"`
	MemberID          uint                 `gorm:"index" json:"member_id"`
	TotalAmount       decimal.Decimal      `gorm:"type:decimal(15,2);not null" json:"total_amount"`
	DownPayment       decimal.Decimal      `gorm:"type:decimal(15,2);not null;default:0" json:"down_payment"`
	RemainingAmount   decimal.Decimal      `gorm:"type:decimal(15,2);not null" json:"remaining_amount"`
	InstallmentCount  int                  `gorm:"not null" json:"installment_count"`
	PaidInstallments  int                  `gorm:"not null;default:0" json:"paid_installments"`
	InstallmentAmount decimal.Decimal      `gorm:"type:decimal(15,2);not null" json:"installment_amount"`
	StartDate         time.Time            `gorm:"type:date" json:"start_date"`
	EndDate           time.Time            `gorm:"type:date" json:"end_date"`
	Status            InstallmentStatus    `gorm:"size:20;index;default:active" json:"status"`
	Payments          []InstallmentPayment `gorm:"foreignKey:InstallmentID" json:"payments"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

// InstallmentPayment - one scheduled due of a plan
type InstallmentPayment struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	InstallmentID     uint            `gorm:"index" json:"installment_id"`
	InstallmentNumber int             `gorm:"not null" json:"installment_number"`
	Amount            decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	PenaltyAmount     decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"penalty_amount"`
	DueDate           time.Time       `gorm:"type:date;index" json:"due_date"`
	PaidAt            *time.Time      `json:"paid_at"`
	Status            PaymentStatus   `gorm:"size:20;index;default:pending" json:"status"`
	Notes             string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
