package handlers

import (
	"net/http"
	"time"

	"coop-pos/internal/database"
	"coop-pos/internal/models"

	"github.com/gin-gonic/gin"
)

const dashboardListSize = 5

type DashboardData struct {
	Stats              *database.DashboardStats `json:"stats"`
	RecentTransactions []models.Transaction     `json:"recent_transactions"`
	LowStockProducts   []models.Product         `json:"low_stock_products"`
	RecentMembers      []models.Member          `json:"recent_members"`
}

// --- GET: /api/dashboard ---
func (h *Handler) GetDashboard(c *gin.Context) {
	var (
		data DashboardData
		err  error
	)
	if data.Stats, err = database.GetDashboardStats(h.DB, time.Now()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	err = h.DB.Preload("Member").Preload("User").
		Order("id desc").Limit(dashboardListSize).
		Find(&data.RecentTransactions).Error
	if err == nil {
		err = h.DB.Scopes(models.ActiveProducts, models.LowStock).
			Order("stock_quantity").Limit(dashboardListSize).
			Find(&data.LowStockProducts).Error
	}
	if err == nil {
		err = h.DB.Scopes(models.ActiveMembers).
			Order("id desc").Limit(dashboardListSize).
			Find(&data.RecentMembers).Error
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	c.JSON(http.StatusOK, data)
}
