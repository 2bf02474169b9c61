package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

// Product - The Inventory
type Product struct {
	ID               uint                `gorm:"primaryKey" json:"id"`
	SKU              string              `gorm:"uniqueIndex;size:64" json:"sku"`
	Name             string              `gorm:"size:255" json:"name"`
	Description      string              `gorm:"type:text" json:"description"`
	Category         string              `gorm:"size:100;index" json:"category"`
	PurchasePrice    decimal.Decimal     `gorm:"type:decimal(15,2);not null" json:"purchase_price"`
	SellingPrice     decimal.Decimal     `gorm:"type:decimal(15,2);not null" json:"selling_price"`
	MemberPrice      decimal.NullDecimal `gorm:"type:decimal(15,2)" json:"member_price"`
	StockQuantity    int                 `gorm:"not null;default:0" json:"stock_quantity"`
	MinimumStock     int                 `gorm:"not null;default:0" json:"minimum_stock"`
	Unit             string              `gorm:"size:20;default:pcs" json:"unit"`
	IsActive         bool                `gorm:"index" json:"is_active"`
	AllowInstallment bool                `json:"allow_installment"`
	PointsEarned     int                 `gorm:"not null;default:0" json:"points_earned"`
	ImagePath        string              `json:"image_path"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

var (
	ErrMemberPriceAboveSelling = errors.New("member price must not exceed selling price")
	ErrNegativeStock           = errors.New("stock quantity must not be negative")
	ErrNegativePrice           = errors.New("prices must not be negative")
)

// Validate checks the catalog invariants that the checkout relies on.
func (p *Product) Validate() error {
	if p.PurchasePrice.IsNegative() || p.SellingPrice.IsNegative() {
		return ErrNegativePrice
	}
	if p.MemberPrice.Valid {
		if p.MemberPrice.Decimal.IsNegative() {
			return ErrNegativePrice
		}
		if p.MemberPrice.Decimal.GreaterThan(p.SellingPrice) {
			return ErrMemberPriceAboveSelling
		}
	}
	if p.StockQuantity < 0 {
		return ErrNegativeStock
	}
	return nil
}

// PriceFor returns the member price when a member is buying and one is set,
// otherwise the selling price.
func (p *Product) PriceFor(member *Member) decimal.Decimal {
	if member != nil && p.MemberPrice.Valid && p.MemberPrice.Decimal.IsPositive() {
		return p.MemberPrice.Decimal
	}
	return p.SellingPrice
}

// ProfitMargin is the selling margin in percent of the purchase price.
func (p *Product) ProfitMargin() decimal.Decimal {
	if p.PurchasePrice.IsZero() {
		return decimal.Zero
	}
	return p.SellingPrice.Sub(p.PurchasePrice).Div(p.PurchasePrice).Mul(hundred).Round(2)
}

func (p *Product) IsLowStock() bool {
	return p.StockQuantity <= p.MinimumStock
}

// ActiveProducts is a gorm scope.
func ActiveProducts(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}

func LowStock(db *gorm.DB) *gorm.DB {
	return db.Where("stock_quantity <= minimum_stock")
}
