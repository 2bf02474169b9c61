package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TypeSale            TransactionType = "sale"
	TypePurchase        TransactionType = "purchase"
	TypeContribution    TransactionType = "contribution"
	TypeReceivable      TransactionType = "receivable"
	TypeExpense         TransactionType = "expense"
	TypeSHUDistribution TransactionType = "shu_distribution"
)

// Prefix is the three-letter code used in transaction numbers.
func (t TransactionType) Prefix() string {
	switch t {
	case TypeSale:
		return "SAL"
	case TypePurchase:
		return "PUR"
	case TypeContribution:
		return "CON"
	case TypeReceivable:
		return "REC"
	case TypeExpense:
		return "EXP"
	case TypeSHUDistribution:
		return "SHU"
	default:
		return "TRX"
	}
}

type PaymentMethod string

const (
	PaymentCash        PaymentMethod = "cash"
	PaymentTransfer    PaymentMethod = "transfer"
	PaymentCredit      PaymentMethod = "credit"
	PaymentInstallment PaymentMethod = "installment"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentTransfer, PaymentCredit, PaymentInstallment:
		return true
	}
	return false
}

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusCancelled TransactionStatus = "cancelled"
	StatusRefunded  TransactionStatus = "refunded"
)

// Transaction - The Sale Header
type Transaction struct {
	ID                uint              `gorm:"primaryKey" json:"id"`
	TransactionNumber string            `gorm:"uniqueIndex;size:32" json:"transaction_number"`
	Type              TransactionType   `gorm:"size:20;index" json:"type"`
	MemberID          *uint             `gorm:"index" json:"member_id"`
	Member            *Member           `json:"member,omitempty"`
	UserID            uint              `json:"user_id"` // Who processed it
	User              *User             `json:"user,omitempty"`
	TotalAmount       decimal.Decimal   `gorm:"type:decimal(15,2);not null" json:"total_amount"`
	DiscountAmount    decimal.Decimal   `gorm:"type:decimal(15,2);not null;default:0" json:"discount_amount"`
	TaxAmount         decimal.Decimal   `gorm:"type:decimal(15,2);not null;default:0" json:"tax_amount"`
	FinalAmount       decimal.Decimal   `gorm:"type:decimal(15,2);not null" json:"final_amount"`
	PaymentMethod     PaymentMethod     `gorm:"size:20" json:"payment_method"`
	Status            TransactionStatus `gorm:"size:20;index;default:pending" json:"status"`
	Notes             string            `gorm:"type:text" json:"notes,omitempty"`
	PointsUsed        int               `gorm:"not null;default:0" json:"points_used"`
	PointsEarned      int               `gorm:"not null;default:0" json:"points_earned"`
	IdempotencyKey    *string           `gorm:"uniqueIndex;size:100" json:"-"`
	CompletedAt       *time.Time        `json:"completed_at"`
	Items             []TransactionItem `gorm:"foreignKey:TransactionID" json:"items"`
	Installment       *Installment      `gorm:"foreignKey:TransactionID" json:"installment,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// TransactionItem - The specific items in a cart
type TransactionItem struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	TransactionID  uint            `gorm:"index" json:"transaction_id"`
	ProductID      uint            `gorm:"index" json:"product_id"`
	Product        *Product        `json:"product,omitempty"` // Preload product details
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"unit_price"` // Snapshot of price at time of sale
	TotalPrice     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"total_price"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"discount_amount"`
	CreatedAt      time.Time       `json:"created_at"`
}

// TransactionSequence holds the last issued number per prefix and day.
type TransactionSequence struct {
	ID        uint   `gorm:"primaryKey"`
	Prefix    string `gorm:"size:3;uniqueIndex:idx_sequence_prefix_day"`
	Day       string `gorm:"size:8;uniqueIndex:idx_sequence_prefix_day"`
	LastValue int    `gorm:"not null;default:0"`
}
