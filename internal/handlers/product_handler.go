package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"coop-pos/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// --- GET: List products ---
// Optional filters: ?category=Sembako&active=true
func (h *Handler) GetProducts(c *gin.Context) {
	var products []models.Product

	q := h.DB.Order("name")
	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}
	if c.Query("active") == "true" {
		q = q.Scopes(models.ActiveProducts)
	}
	if err := q.Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, products)
}

// --- GET: Scanner lookup ---
func (h *Handler) GetProductBySKU(c *gin.Context) {
	var product models.Product
	err := h.DB.Scopes(models.ActiveProducts).Where("sku = ?", c.Param("sku")).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) GetLowStock(c *gin.Context) {
	var products []models.Product
	if err := h.DB.Scopes(models.ActiveProducts, models.LowStock).Order("stock_quantity").Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}
	c.JSON(http.StatusOK, products)
}

func productInvalid(c *gin.Context, err error) {
	field := "stock_quantity"
	switch {
	case errors.Is(err, models.ErrMemberPriceAboveSelling):
		field = "member_price"
	case errors.Is(err, models.ErrNegativePrice):
		field = "selling_price"
	}
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "The given data was invalid", "fields": gin.H{field: err.Error()}})
}

// --- POST: Add a new product ---
func (h *Handler) AddProduct(c *gin.Context) {
	// Defaults for fields the client leaves out
	newProduct := models.Product{IsActive: true, Unit: "pcs"}
	if err := c.ShouldBindJSON(&newProduct); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	newProduct.ID = 0
	if strings.TrimSpace(newProduct.SKU) == "" || strings.TrimSpace(newProduct.Name) == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "The given data was invalid", "fields": gin.H{"sku": "sku and name are required"}})
		return
	}
	if err := newProduct.Validate(); err != nil {
		productInvalid(c, err)
		return
	}

	if err := h.DB.Create(&newProduct).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to create product. The SKU may already exist."})
		return
	}

	c.JSON(http.StatusCreated, newProduct)
}

// --- PUT: Update price, stock or details ---
// Only the fields sent in the body change.
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	product.ID = id
	if err := product.Validate(); err != nil {
		productInvalid(c, err)
		return
	}

	if err := h.DB.Save(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully", "product": product})
}

// --- DELETE: Remove a product ---
// Products that appear on past sales are deactivated instead, so receipts keep their lines.
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var sold int64
	if err := h.DB.Model(&models.TransactionItem{}).Where("product_id = ?", id).Count(&sold).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}
	if sold > 0 {
		if err := h.DB.Model(&models.Product{}).Where("id = ?", id).Update("is_active", false).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate product"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product has past sales and was deactivated"})
		return
	}

	res := h.DB.Delete(&models.Product{}, id)
	if res.Error != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not delete product"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// --- UPLOAD: Product image ---
func (h *Handler) UploadImage(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if h.UploadDir == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Uploads are disabled"})
		return
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !imageExts[ext] {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "The given data was invalid", "fields": gin.H{"file": "only jpg, png or webp images"}})
		return
	}

	// e.g. "product_12_1678901230.jpg". The SKU is free text and stays out of the path.
	filename := fmt.Sprintf("product_%d_%d%s", product.ID, time.Now().Unix(), ext)
	if err := c.SaveUploadedFile(file, filepath.Join(h.UploadDir, filename)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	product.ImagePath = "/uploads/" + filename
	if err := h.DB.Model(&product).Update("image_path", product.ImagePath).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "File uploaded successfully",
		"url":     h.BaseURL + product.ImagePath,
	})
}
