package ai

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"coop-pos/internal/database"
	"coop-pos/internal/models"
	"coop-pos/internal/pos"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seededDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	require.NoError(t, database.Seed(db))
	return db
}

func decodeRows(t *testing.T, resp map[string]interface{}, key string) []map[string]interface{} {
	t.Helper()
	raw, ok := resp[key].(string)
	require.True(t, ok, "missing %q in %v", key, resp)
	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &rows))
	return rows
}

func TestCheckInventoryFiltersByName(t *testing.T) {
	db := seededDB(t)

	resp, err := ExecuteTool(db, "check_inventory", map[string]interface{}{"query": "Beras"})
	require.NoError(t, err)

	rows := decodeRows(t, resp, "inventory")
	require.Len(t, rows, 1)
	assert.Equal(t, "BRS-001", rows[0]["sku"])
	assert.Equal(t, "65000.00", rows[0]["member_price"])
	assert.EqualValues(t, 50, rows[0]["stock"])

	resp, err = ExecuteTool(db, "check_inventory", nil)
	require.NoError(t, err)
	assert.Len(t, decodeRows(t, resp, "inventory"), 5)
}

func TestLowStock(t *testing.T) {
	db := seededDB(t)
	require.NoError(t, db.Model(&models.Product{}).Where("sku = ?", "GLA-001").Update("stock_quantity", 20).Error)

	resp, err := ExecuteTool(db, "low_stock", nil)
	require.NoError(t, err)

	rows := decodeRows(t, resp, "products")
	require.Len(t, rows, 1)
	assert.Equal(t, "Gula Pasir 1kg", rows[0]["name"])
}

func TestMemberPoints(t *testing.T) {
	db := seededDB(t)

	resp, err := ExecuteTool(db, "member_points", map[string]interface{}{"member_code": "IBS000002"})
	require.NoError(t, err)
	assert.Equal(t, "Sari Dewi", resp["name"])
	assert.Equal(t, 200, resp["points"])
	assert.Equal(t, "1050000.00", resp["total_savings"])

	resp, err = ExecuteTool(db, "member_points", map[string]interface{}{"member_code": "IBS999999"})
	require.NoError(t, err)
	assert.Equal(t, "Member not found", resp["status"])
}

func TestInstallmentScheduleTool(t *testing.T) {
	db := seededDB(t)
	now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	svc := pos.NewService(db, pos.Options{CurrencyScale: 2, Clock: func() time.Time { return now }})

	var fridge models.Product
	require.NoError(t, db.Where("sku = ?", "KLK-001").First(&fridge).Error)
	memberID := uint(1)
	count := 3
	down := decimal.NewFromInt(1000000)
	txn, err := svc.Checkout(context.Background(), pos.Operator{UserID: 1, Role: models.RoleAdmin}, pos.CheckoutRequest{
		Items:            []pos.CartLine{{ProductID: fridge.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(4000000)}},
		MemberID:         &memberID,
		PaymentMethod:    models.PaymentInstallment,
		InstallmentCount: &count,
		DownPayment:      &down,
	})
	require.NoError(t, err)

	resp, err := ExecuteTool(db, "installment_schedule", map[string]interface{}{"transaction_number": txn.TransactionNumber})
	require.NoError(t, err)
	assert.Equal(t, "3000000.00", resp["remaining_amount"])
	assert.Equal(t, "active", resp["status"])

	rows := decodeRows(t, resp, "payments")
	require.Len(t, rows, 3)
	assert.Equal(t, "2026-04-10", rows[0]["due_date"])
	assert.Equal(t, "1000000.00", rows[2]["amount"])
}

func TestSalesReportTool(t *testing.T) {
	db := seededDB(t)

	resp, err := ExecuteTool(db, "get_sales_report", map[string]interface{}{"start_date": "2026-03-01", "end_date": "2026-03-31"})
	require.NoError(t, err)
	assert.Equal(t, "0.00", resp["revenue"])
	assert.EqualValues(t, 0, resp["sales_count"])

	_, err = ExecuteTool(db, "get_sales_report", map[string]interface{}{"start_date": "March", "end_date": "2026-03-31"})
	assert.Error(t, err)
}

func TestUnknownTool(t *testing.T) {
	_, err := ExecuteTool(seededDB(t), "update_product_price", nil)
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestDeclarationsMatchTools(t *testing.T) {
	db := seededDB(t)
	for _, d := range declarations {
		_, err := ExecuteTool(db, d.Name, map[string]interface{}{})
		assert.NotErrorIs(t, err, ErrUnknownTool, d.Name)
	}
}
