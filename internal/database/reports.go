package database

import (
	"time"

	"coop-pos/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SalesReportResult holds the data the AI needs
type SalesReportResult struct {
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	TotalDiscounts decimal.Decimal `json:"total_discounts"`
	TotalCount     int64           `json:"total_count"`
	PointsIssued   int64           `json:"points_issued"`
	PointsRedeemed int64           `json:"points_redeemed"`
}

func completedSales(db *gorm.DB, start, end time.Time) *gorm.DB {
	return db.Model(&models.Transaction{}).
		Where("type = ? AND status = ?", models.TypeSale, models.StatusCompleted).
		Where("completed_at BETWEEN ? AND ?", start, end)
}

// GetSalesReport calculates completed sales within a date range
func GetSalesReport(db *gorm.DB, start, end time.Time) (*SalesReportResult, error) {
	var row struct {
		Revenue   decimal.NullDecimal
		Discounts decimal.NullDecimal
		Issued    int64
		Redeemed  int64
	}

	// COALESCE ensures we get 0 instead of NULL if no sales exist
	err := completedSales(db, start, end).
		Select("COALESCE(SUM(final_amount), 0) AS revenue, COALESCE(SUM(discount_amount), 0) AS discounts, " +
			"COALESCE(SUM(points_earned), 0) AS issued, COALESCE(SUM(points_used), 0) AS redeemed").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	result := SalesReportResult{
		TotalRevenue:   row.Revenue.Decimal,
		TotalDiscounts: row.Discounts.Decimal,
		PointsIssued:   row.Issued,
		PointsRedeemed: row.Redeemed,
	}
	if err := completedSales(db, start, end).Count(&result.TotalCount).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// TopSeller is one row of the best-seller ranking.
type TopSeller struct {
	ProductName string          `json:"product_name"`
	Sold        int             `json:"sold"`
	Revenue     decimal.Decimal `json:"revenue"`
}

func GetTopSellers(db *gorm.DB, limit int) ([]TopSeller, error) {
	var rows []TopSeller
	err := db.Table("transaction_items").
		Select("products.name AS product_name, SUM(transaction_items.quantity) AS sold, SUM(transaction_items.total_price) AS revenue").
		Joins("JOIN products ON transaction_items.product_id = products.id").
		Joins("JOIN transactions ON transaction_items.transaction_id = transactions.id").
		Where("transactions.status = ?", models.StatusCompleted).
		Group("products.name").
		Order("sold desc").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// DashboardStats are the headline counters of the back office home page.
type DashboardStats struct {
	TotalSalesToday     decimal.Decimal `json:"total_sales_today"`
	PendingInstallments int64           `json:"pending_installments"`
	ActiveMembers       int64           `json:"total_members"`
	ActiveProducts      int64           `json:"total_products"`
}

// GetDashboardStats sums today's completed sales and counts installment
// sales whose plan is still active.
func GetDashboardStats(db *gorm.DB, now time.Time) (*DashboardStats, error) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)

	var row struct{ Revenue decimal.NullDecimal }
	err := completedSales(db, start, end).
		Select("COALESCE(SUM(final_amount), 0) AS revenue").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	stats := DashboardStats{TotalSalesToday: row.Revenue.Decimal}

	err = db.Model(&models.Transaction{}).
		Joins("JOIN installments ON installments.transaction_id = transactions.id").
		Where("transactions.payment_method = ? AND transactions.status = ?", models.PaymentInstallment, models.StatusCompleted).
		Where("installments.status = ?", models.InstallmentActive).
		Count(&stats.PendingInstallments).Error
	if err != nil {
		return nil, err
	}
	if err := db.Model(&models.Member{}).Scopes(models.ActiveMembers).Count(&stats.ActiveMembers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Product{}).Scopes(models.ActiveProducts).Count(&stats.ActiveProducts).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}
