package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"coop-pos/internal/export"
	"coop-pos/internal/middleware"
	"coop-pos/internal/pos"

	"github.com/gin-gonic/gin"
)

const IdempotencyHeader = "Idempotency-Key"

// --- GET: /api/pos ---
// Everything the till needs to build a cart.
func (h *Handler) GetPOS(c *gin.Context) {
	view, err := h.POS.Catalog(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// --- POST: /api/pos/transactions ---
func (h *Handler) Checkout(c *gin.Context) {
	var req pos.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, bindError(err))
		return
	}
	req.IdempotencyKey = c.GetHeader(IdempotencyHeader)

	op, _ := middleware.Operator(c)
	txn, err := h.POS.Checkout(c.Request.Context(), op, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Location", fmt.Sprintf("/api/pos/receipt/%d", txn.ID))
	c.JSON(http.StatusCreated, gin.H{
		"message":     "Transaction completed successfully",
		"transaction": txn,
	})
}

// --- GET: /api/pos/receipt/:id ---
func (h *Handler) GetReceipt(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	txn, err := h.POS.Receipt(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

// --- GET: /api/pos/receipt/:id/schedule.xlsx ---
func (h *Handler) ExportSchedule(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	txn, err := h.POS.Receipt(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	f, err := export.InstallmentScheduleXLSX(txn)
	if errors.Is(err, export.ErrNoInstallment) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction has no installment plan"})
		return
	}
	if err != nil {
		log.Printf("[api] export schedule %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build schedule"})
		return
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		log.Printf("[api] export schedule %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build schedule"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-schedule.xlsx"`, txn.TransactionNumber))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
