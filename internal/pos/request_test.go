package pos

import (
	"errors"
	"math"
	"testing"

	"coop-pos/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int    { return &v }
func uintPtr(v uint) *uint { return &v }
func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func validCash() CheckoutRequest {
	return CheckoutRequest{
		Items:         []CartLine{{ProductID: 1, Quantity: 2, UnitPrice: dec("55000")}},
		PaymentMethod: models.PaymentCash,
	}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var v *ValidationError
	require.True(t, errors.As(err, &v), "expected ValidationError, got %v", err)
	return v.Fields
}

func TestValidateAcceptsCashSale(t *testing.T) {
	req := validCash()
	assert.NoError(t, req.Validate())
}

func TestValidateRejectsBadLines(t *testing.T) {
	req := CheckoutRequest{
		Items: []CartLine{
			{ProductID: 0, Quantity: 1, UnitPrice: dec("1")},
			{ProductID: 2, Quantity: 0, UnitPrice: dec("-1")},
		},
		PaymentMethod:  "barter",
		DiscountAmount: dec("-5"),
		PointsUsed:     -1,
	}

	fields := fieldsOf(t, req.Validate())
	assert.Contains(t, fields, "items.0.product_id")
	assert.Contains(t, fields, "items.1.quantity")
	assert.Contains(t, fields, "items.1.unit_price")
	assert.Contains(t, fields, "payment_method")
	assert.Contains(t, fields, "discount_amount")
	assert.Contains(t, fields, "points_used")
}

func TestValidateRequiresItems(t *testing.T) {
	req := CheckoutRequest{PaymentMethod: models.PaymentCash}
	assert.Contains(t, fieldsOf(t, req.Validate()), "items")
}

func TestValidateInstallmentFields(t *testing.T) {
	t.Run("required for installment", func(t *testing.T) {
		req := validCash()
		req.PaymentMethod = models.PaymentInstallment
		req.MemberID = uintPtr(1)
		fields := fieldsOf(t, req.Validate())
		assert.Contains(t, fields, "installment_count")
		assert.Contains(t, fields, "down_payment")
	})

	t.Run("installment needs a member", func(t *testing.T) {
		req := validCash()
		req.PaymentMethod = models.PaymentInstallment
		req.InstallmentCount = intPtr(3)
		req.DownPayment = decPtr("0")
		assert.Contains(t, fieldsOf(t, req.Validate()), "member_id")
	})

	t.Run("count bounds", func(t *testing.T) {
		for _, n := range []int{1, 25} {
			req := validCash()
			req.PaymentMethod = models.PaymentInstallment
			req.MemberID = uintPtr(1)
			req.InstallmentCount = intPtr(n)
			req.DownPayment = decPtr("0")
			assert.Contains(t, fieldsOf(t, req.Validate()), "installment_count", "count %d", n)
		}
		for _, n := range []int{MinInstallments, MaxInstallments} {
			req := validCash()
			req.PaymentMethod = models.PaymentInstallment
			req.MemberID = uintPtr(1)
			req.InstallmentCount = intPtr(n)
			req.DownPayment = decPtr("0")
			assert.NoError(t, req.Validate(), "count %d", n)
		}
	})

	t.Run("not required otherwise", func(t *testing.T) {
		req := validCash()
		req.PaymentMethod = models.PaymentTransfer
		assert.NoError(t, req.Validate())
		assert.True(t, req.downPayment().IsZero())
	})

	t.Run("negative down payment", func(t *testing.T) {
		req := validCash()
		req.PaymentMethod = models.PaymentInstallment
		req.MemberID = uintPtr(1)
		req.InstallmentCount = intPtr(3)
		req.DownPayment = decPtr("-1")
		assert.Contains(t, fieldsOf(t, req.Validate()), "down_payment")
	})
}

func TestValidatePointsNeedMember(t *testing.T) {
	req := validCash()
	req.PointsUsed = 10
	assert.Contains(t, fieldsOf(t, req.Validate()), "points_used")

	req.MemberID = uintPtr(3)
	assert.NoError(t, req.Validate())
}

func TestValidationErrorMessageIsStable(t *testing.T) {
	v := &ValidationError{}
	v.Add("b", "second")
	v.Add("a", "first")
	v.Add("a", "ignored")
	assert.Equal(t, "validation failed: a: first; b: second", v.Error())
}

func TestValidateCapsQuantityPerProduct(t *testing.T) {
	t.Run("single line above the cap", func(t *testing.T) {
		req := validCash()
		req.Items[0].Quantity = MaxQuantity + 1
		assert.Contains(t, fieldsOf(t, req.Validate()), "items.0.quantity")
	})

	t.Run("lines that wrap when summed", func(t *testing.T) {
		req := validCash()
		req.Items = []CartLine{
			{ProductID: 2, Quantity: math.MaxInt, UnitPrice: dec("0")},
			{ProductID: 2, Quantity: math.MaxInt, UnitPrice: dec("0")},
		}
		fields := fieldsOf(t, req.Validate())
		assert.Contains(t, fields, "items.0.quantity")
		assert.Contains(t, fields, "items.1.quantity")
	})

	t.Run("sum over the cap flags the overflowing line", func(t *testing.T) {
		req := validCash()
		req.Items = []CartLine{
			{ProductID: 2, Quantity: MaxQuantity, UnitPrice: dec("1")},
			{ProductID: 3, Quantity: MaxQuantity, UnitPrice: dec("1")},
			{ProductID: 2, Quantity: 1, UnitPrice: dec("1")},
		}
		fields := fieldsOf(t, req.Validate())
		assert.Equal(t, map[string]string{
			"items.2.quantity": "quantity must not exceed 1000000 per product",
		}, fields)
	})

	t.Run("exactly the cap is allowed", func(t *testing.T) {
		req := validCash()
		req.Items[0].Quantity = MaxQuantity
		assert.NoError(t, req.Validate())
	})
}

func TestValidateMoneyDecimals(t *testing.T) {
	req := validCash()
	req.Items[0].UnitPrice = dec("1.005")
	req.DiscountAmount = dec("0.001")
	req.PaymentMethod = models.PaymentInstallment
	req.MemberID = uintPtr(1)
	req.InstallmentCount = intPtr(3)
	req.DownPayment = decPtr("10.125")

	fields := fieldsOf(t, req.Validate())
	assert.Contains(t, fields, "items.0.unit_price")
	assert.Contains(t, fields, "discount_amount")
	assert.Contains(t, fields, "down_payment")

	req.Items[0].UnitPrice = dec("1.50")
	req.DiscountAmount = dec("0.100")
	req.DownPayment = decPtr("10.12")
	assert.NoError(t, req.Validate())
}
