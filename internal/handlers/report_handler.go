package handlers

import (
	"net/http"
	"sort"
	"time"

	"coop-pos/internal/database"
	"coop-pos/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ReportData defines the shape of our analytics response
type ReportData struct {
	From        string                      `json:"from"`
	To          string                      `json:"to"`
	Summary     *database.SalesReportResult `json:"summary"`
	TopSelling  []database.TopSeller        `json:"top_selling"`
	RecentSales []models.Transaction        `json:"recent_sales"`
}

// reportRange reads ?from=YYYY-MM-DD&to=YYYY-MM-DD, defaulting to the current month.
func reportRange(c *gin.Context, now time.Time) (time.Time, time.Time, bool) {
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0).Add(-time.Nanosecond)

	if s := c.Query("from"); s != "" {
		d, err := time.ParseInLocation("2006-01-02", s, now.Location())
		if err != nil {
			return from, to, false
		}
		from = d
	}
	if s := c.Query("to"); s != "" {
		d, err := time.ParseInLocation("2006-01-02", s, now.Location())
		if err != nil {
			return from, to, false
		}
		to = d.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return from, to, !to.Before(from)
}

// --- GET: /api/reports ---
func (h *Handler) GetSalesReport(c *gin.Context) {
	from, to, ok := reportRange(c, time.Now())
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dates must be YYYY-MM-DD with from <= to"})
		return
	}

	data := ReportData{From: from.Format("2006-01-02"), To: to.Format("2006-01-02")}

	var err error
	data.Summary, err = database.GetSalesReport(h.DB, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate revenue"})
		return
	}

	data.TopSelling, err = database.GetTopSellers(h.DB, 5)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch top selling items"})
		return
	}

	// The last 10 sales, newest first
	err = h.DB.Preload("Member").
		Where("type = ?", models.TypeSale).
		Order("id desc").Limit(10).
		Find(&data.RecentSales).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recent sales"})
		return
	}

	c.JSON(http.StatusOK, data)
}

// --- DATA STRUCTURES FOR VALUATION REPORT ---

// ValuationItem is one product line of the stock valuation.
type ValuationItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	CostPrice decimal.Decimal `json:"cost_price"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

// CategoryGroup is one category table (e.g. "Sembako").
type CategoryGroup struct {
	CategoryName string          `json:"category_name"`
	Items        []ValuationItem `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

type ValuationResponse struct {
	Categories []CategoryGroup `json:"categories"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// --- GET: /api/reports/valuation ---
// GetStockValuation values the stock on hand at purchase price
func (h *Handler) GetStockValuation(c *gin.Context) {
	var products []models.Product
	if err := h.DB.Order("name").Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch inventory"})
		return
	}

	grandTotal := decimal.Zero
	groupedMap := make(map[string]*CategoryGroup)

	for _, p := range products {
		catName := p.Category
		if catName == "" {
			catName = "Uncategorized"
		}

		group, exists := groupedMap[catName]
		if !exists {
			group = &CategoryGroup{CategoryName: catName, Items: []ValuationItem{}, Subtotal: decimal.Zero}
			groupedMap[catName] = group
		}

		itemTotal := p.PurchasePrice.Mul(decimal.NewFromInt(int64(p.StockQuantity)))
		group.Items = append(group.Items, ValuationItem{
			Name:      p.Name,
			Quantity:  p.StockQuantity,
			CostPrice: p.PurchasePrice,
			TotalCost: itemTotal,
		})
		group.Subtotal = group.Subtotal.Add(itemTotal)
		grandTotal = grandTotal.Add(itemTotal)
	}

	response := ValuationResponse{Categories: []CategoryGroup{}, GrandTotal: grandTotal}
	for _, group := range groupedMap {
		response.Categories = append(response.Categories, *group)
	}
	sort.Slice(response.Categories, func(i, j int) bool {
		return response.Categories[i].CategoryName < response.Categories[j].CategoryName
	})

	c.JSON(http.StatusOK, response)
}
