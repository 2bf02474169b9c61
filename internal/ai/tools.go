package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"coop-pos/internal/database"
	"coop-pos/internal/models"

	"github.com/google/generative-ai-go/genai"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var declarations = []*genai.FunctionDeclaration{
	{
		Name:        "check_inventory",
		Description: "List active products with ID, SKU, Name, Category, Selling price, Member price and Stock.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"query": {Type: genai.TypeString, Description: "Optional part of the product name or SKU"},
			},
		},
	},
	{
		Name:        "low_stock",
		Description: "List products whose stock is at or below their minimum stock.",
	},
	{
		Name:        "member_points",
		Description: "Get a member's status, loyalty points and savings by member code.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"member_code": {Type: genai.TypeString, Description: "Member code, e.g. IBS000001"},
			},
			Required: []string{"member_code"},
		},
	},
	{
		Name:        "installment_schedule",
		Description: "Get the installment plan and due dates of a sale by transaction number.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"transaction_number": {Type: genai.TypeString, Description: "Transaction number, e.g. SAL20260310000001"},
			},
			Required: []string{"transaction_number"},
		},
	},
	{
		Name:        "get_sales_report",
		Description: "Get total sales revenue for a date range.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
				"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD)"},
			},
			Required: []string{"start_date", "end_date"},
		},
	},
}

var ErrUnknownTool = errors.New("unknown tool")

type inventoryRow struct {
	ID          uint            `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Stock       int             `json:"stock"`
	MinStock    int             `json:"minimum_stock"`
	Price       decimal.Decimal `json:"price"`
	MemberPrice *string         `json:"member_price,omitempty"`
}

func toInventory(products []models.Product) []inventoryRow {
	rows := make([]inventoryRow, 0, len(products))
	for _, p := range products {
		row := inventoryRow{
			ID: p.ID, SKU: p.SKU, Name: p.Name, Category: p.Category,
			Stock: p.StockQuantity, MinStock: p.MinimumStock, Price: p.SellingPrice,
		}
		if p.MemberPrice.Valid {
			s := p.MemberPrice.Decimal.StringFixed(2)
			row.MemberPrice = &s
		}
		rows = append(rows, row)
	}
	return rows
}

// ExecuteTool runs one assistant tool against db. The response only holds
// strings and numbers so it can travel back to the model as-is.
func ExecuteTool(db *gorm.DB, name string, args map[string]interface{}) (map[string]interface{}, error) {
	switch name {
	case "check_inventory":
		q := db.Scopes(models.ActiveProducts).Order("name")
		if query, _ := args["query"].(string); query != "" {
			like := "%" + query + "%"
			q = q.Where("name LIKE ? OR sku LIKE ?", like, like)
		}
		var products []models.Product
		if err := q.Find(&products).Error; err != nil {
			return nil, err
		}
		return jsonResponse("inventory", toInventory(products))

	case "low_stock":
		var products []models.Product
		if err := db.Scopes(models.ActiveProducts, models.LowStock).Order("stock_quantity").Find(&products).Error; err != nil {
			return nil, err
		}
		return jsonResponse("products", toInventory(products))

	case "member_points":
		code, _ := args["member_code"].(string)
		var m models.Member
		if err := db.Where("member_code = ?", code).First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return map[string]interface{}{"status": "Member not found"}, nil
			}
			return nil, err
		}
		return map[string]interface{}{
			"member_code":   m.MemberCode,
			"name":          m.Name,
			"status":        string(m.Status),
			"points":        m.Points,
			"total_savings": m.TotalSavings().StringFixed(2),
		}, nil

	case "installment_schedule":
		number, _ := args["transaction_number"].(string)
		var t models.Transaction
		err := db.Preload("Installment.Payments", func(db *gorm.DB) *gorm.DB { return db.Order("installment_number") }).
			Where("transaction_number = ?", number).First(&t).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return map[string]interface{}{"status": "Transaction not found"}, nil
		}
		if err != nil {
			return nil, err
		}
		if t.Installment == nil {
			return map[string]interface{}{"status": "Not an installment sale"}, nil
		}
		type due struct {
			Number int    `json:"number"`
			Due    string `json:"due_date"`
			Amount string `json:"amount"`
			Status string `json:"status"`
		}
		dues := make([]due, 0, len(t.Installment.Payments))
		for _, p := range t.Installment.Payments {
			dues = append(dues, due{p.InstallmentNumber, p.DueDate.Format("2006-01-02"), p.Amount.StringFixed(2), string(p.Status)})
		}
		resp, err := jsonResponse("payments", dues)
		if err != nil {
			return nil, err
		}
		resp["remaining_amount"] = t.Installment.RemainingAmount.StringFixed(2)
		resp["status"] = string(t.Installment.Status)
		return resp, nil

	case "get_sales_report":
		startStr, _ := args["start_date"].(string)
		endStr, _ := args["end_date"].(string)
		start, err1 := time.Parse("2006-01-02", startStr)
		end, err2 := time.Parse("2006-01-02", endStr)
		if err1 != nil || err2 != nil {
			return nil, errors.New("dates must be in YYYY-MM-DD format")
		}
		end = end.Add(24*time.Hour - time.Nanosecond)

		report, err := database.GetSalesReport(db, start, end)
		if err != nil {
			return nil, fmt.Errorf("sales report: %w", err)
		}
		return map[string]interface{}{
			"revenue":         report.TotalRevenue.StringFixed(2),
			"discounts":       report.TotalDiscounts.StringFixed(2),
			"sales_count":     report.TotalCount,
			"points_issued":   report.PointsIssued,
			"points_redeemed": report.PointsRedeemed,
		}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
}

func jsonResponse(key string, v interface{}) (map[string]interface{}, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{key: string(b)}, nil
}
