package handlers

import (
	"log"
	"net/http"
	"time"

	"coop-pos/internal/middleware"
	"coop-pos/internal/models"

	"github.com/gin-gonic/gin"
)

type RouteOptions struct {
	AllowRegistration  bool
	LoginRatePerMinute int
}

// Routes mounts the public and the authenticated API on r.
func (h *Handler) Routes(r *gin.Engine, opts RouteOptions) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "online", "timestamp": time.Now().Format(time.RFC3339)})
	})

	limiter := middleware.NewLoginLimiter(opts.LoginRatePerMinute)
	r.POST("/login", limiter.Middleware(), h.Login)
	if h.UploadDir != "" {
		r.Static("/uploads", h.UploadDir)
	}

	// --- FEATURE FLAG: Registration ---
	if opts.AllowRegistration {
		r.POST("/register", limiter.Middleware(), h.Register)
		log.Println("WARNING: Registration route is OPEN. Disable this in production!")
	} else {
		log.Println("Registration route is disabled")
	}

	// --- PROTECTED ROUTES ---
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(h.Tokens))
	{
		api.GET("/dashboard", h.GetDashboard)
		api.GET("/pos", h.GetPOS)
		api.POST("/pos/transactions", h.Checkout)
		api.GET("/pos/receipt/:id", h.GetReceipt)
		api.GET("/pos/receipt/:id/schedule.xlsx", h.ExportSchedule)

		api.GET("/products", h.GetProducts)
		api.GET("/products/sku/:sku", h.GetProductBySKU)
		api.GET("/products/low-stock", h.GetLowStock)
		api.GET("/members", h.GetMembers)
		api.GET("/members/:id", h.GetMember)

		// BACK OFFICE ONLY
		admin := api.Group("/")
		admin.Use(middleware.RequireRole(models.RoleAdmin, models.RoleManager))
		{
			admin.POST("/products", h.AddProduct)
			admin.PUT("/products/:id", h.UpdateProduct)
			admin.DELETE("/products/:id", h.DeleteProduct)
			admin.POST("/products/:id/image", h.UploadImage)
			admin.POST("/members", h.AddMember)
			admin.PUT("/members/:id", h.UpdateMember)
			admin.DELETE("/members/:id", h.DeleteMember)
			admin.GET("/reports", h.GetSalesReport)
			admin.GET("/reports/valuation", h.GetStockValuation)
			admin.POST("/ask", h.AskAI)
		}
	}
}
