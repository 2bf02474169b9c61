package pos

import (
	"fmt"

	"coop-pos/internal/models"

	"github.com/shopspring/decimal"
)

const (
	MinInstallments = 2
	MaxInstallments = 24

	// MaxQuantity bounds a product's quantity across the whole cart.
	MaxQuantity = 1_000_000

	// moneyDecimals matches the decimal(15,2) money columns.
	moneyDecimals = 2
)

// CartLine is one requested product with the price the counter offered.
type CartLine struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CheckoutRequest is the body of POST /api/pos/transactions.
type CheckoutRequest struct {
	Items            []CartLine           `json:"items"`
	MemberID         *uint                `json:"member_id"`
	PaymentMethod    models.PaymentMethod `json:"payment_method"`
	DiscountAmount   decimal.Decimal      `json:"discount_amount"`
	PointsUsed       int                  `json:"points_used"`
	InstallmentCount *int                 `json:"installment_count"`
	DownPayment      *decimal.Decimal     `json:"down_payment"`
	Notes            string               `json:"notes"`

	// IdempotencyKey comes from the Idempotency-Key header, not the body.
	IdempotencyKey string `json:"-"`
}

func (r *CheckoutRequest) IsInstallment() bool {
	return r.PaymentMethod == models.PaymentInstallment
}

// Validate checks the request shape. Lookups against the catalog and the
// member registry happen later, inside the unit of work.
func (r *CheckoutRequest) Validate() error {
	v := &ValidationError{}

	if len(r.Items) == 0 {
		v.Add("items", "at least one item is required")
	}
	perProduct := make(map[uint]int, len(r.Items))
	for i, line := range r.Items {
		if line.ProductID == 0 {
			v.Add(fmt.Sprintf("items.%d.product_id", i), "product is required")
		}
		switch {
		case line.Quantity < 1:
			v.Add(fmt.Sprintf("items.%d.quantity", i), "quantity must be at least 1")
		case line.Quantity > MaxQuantity || perProduct[line.ProductID] > MaxQuantity-line.Quantity:
			v.Add(fmt.Sprintf("items.%d.quantity", i), fmt.Sprintf("quantity must not exceed %d per product", MaxQuantity))
		default:
			perProduct[line.ProductID] += line.Quantity
		}
		if line.UnitPrice.IsNegative() {
			v.Add(fmt.Sprintf("items.%d.unit_price", i), "unit price must not be negative")
		} else if !moneyScaleOK(line.UnitPrice) {
			v.Add(fmt.Sprintf("items.%d.unit_price", i), "unit price must have at most 2 decimal places")
		}
	}

	if !r.PaymentMethod.Valid() {
		v.Add("payment_method", "payment method must be one of cash, transfer, credit, installment")
	}
	if r.DiscountAmount.IsNegative() {
		v.Add("discount_amount", "discount must not be negative")
	} else if !moneyScaleOK(r.DiscountAmount) {
		v.Add("discount_amount", "discount must have at most 2 decimal places")
	}
	if r.PointsUsed < 0 {
		v.Add("points_used", "points must not be negative")
	}
	if r.PointsUsed > 0 && r.MemberID == nil {
		v.Add("points_used", "points can only be redeemed by a member")
	}

	if r.IsInstallment() {
		if r.InstallmentCount == nil {
			v.Add("installment_count", "installment count is required for installment payments")
		}
		if r.DownPayment == nil {
			v.Add("down_payment", "down payment is required for installment payments")
		}
		if r.MemberID == nil {
			v.Add("member_id", "installment payments require a member")
		}
	}
	if r.InstallmentCount != nil && (*r.InstallmentCount < MinInstallments || *r.InstallmentCount > MaxInstallments) {
		v.Add("installment_count", fmt.Sprintf("installment count must be between %d and %d", MinInstallments, MaxInstallments))
	}
	if r.DownPayment != nil && r.DownPayment.IsNegative() {
		v.Add("down_payment", "down payment must not be negative")
	} else if r.DownPayment != nil && !moneyScaleOK(*r.DownPayment) {
		v.Add("down_payment", "down payment must have at most 2 decimal places")
	}

	return v.orNil()
}

// moneyScaleOK rejects amounts the money columns would silently round.
// Trailing zeros such as 10.500 are fine.
func moneyScaleOK(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(moneyDecimals))
}

// downPayment is zero unless the request is an installment sale.
func (r *CheckoutRequest) downPayment() decimal.Decimal {
	if !r.IsInstallment() || r.DownPayment == nil {
		return decimal.Zero
	}
	return *r.DownPayment
}
