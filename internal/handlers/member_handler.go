package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"coop-pos/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func (h *Handler) GetMembers(c *gin.Context) {
	var members []models.Member

	q := h.DB.Order("member_code")
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		q = q.Scopes(models.SearchMembers(search))
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&members).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
		return
	}
	c.JSON(http.StatusOK, members)
}

func (h *Handler) GetMember(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var member models.Member
	err := h.DB.First(&member, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch member"})
		return
	}

	var recent []models.Transaction
	if err := h.DB.Where("member_id = ?", id).Order("id desc").Limit(10).Find(&recent).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch member"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"member":              member,
		"total_savings":       member.TotalSavings(),
		"recent_transactions": recent,
	})
}

type MemberRequest struct {
	Name             string          `json:"name" binding:"required"`
	Email            string          `json:"email" binding:"required,email"`
	Phone            string          `json:"phone"`
	Address          string          `json:"address"`
	JoinDate         string          `json:"join_date"`
	ShareCapital     decimal.Decimal `json:"share_capital"`
	MandatorySavings decimal.Decimal `json:"mandatory_savings"`
}

func invalidMember(c *gin.Context, field, msg string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "The given data was invalid", "fields": gin.H{field: msg}})
}

func parseJoinDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// --- POST: Register a member ---
// The member code is assigned here, never taken from the client.
func (h *Handler) AddMember(c *gin.Context) {
	var input MemberRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	joined := time.Now()
	if input.JoinDate != "" {
		d, err := parseJoinDate(input.JoinDate)
		if err != nil {
			invalidMember(c, "join_date", "use YYYY-MM-DD")
			return
		}
		joined = d
	}
	if input.ShareCapital.IsNegative() || input.MandatorySavings.IsNegative() {
		invalidMember(c, "share_capital", "must not be negative")
		return
	}

	member := models.Member{
		Name:             strings.TrimSpace(input.Name),
		Email:            strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:            input.Phone,
		Address:          input.Address,
		JoinDate:         joined,
		Status:           models.MemberActive,
		ShareCapital:     input.ShareCapital,
		MandatorySavings: input.MandatorySavings,
	}

	errEmailTaken := errors.New("email taken")
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Member{}).Where("email = ?", member.Email).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return errEmailTaken
		}
		code, err := models.NextMemberCode(tx)
		if err != nil {
			return err
		}
		member.MemberCode = code
		return tx.Create(&member).Error
	})
	if errors.Is(err, errEmailTaken) {
		invalidMember(c, "email", "email has already been taken")
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create member"})
		return
	}

	c.JSON(http.StatusCreated, member)
}

// MemberUpdate carries only the fields being changed. Points move through
// checkout and are not editable here.
type MemberUpdate struct {
	Name             *string              `json:"name"`
	Email            *string              `json:"email" binding:"omitempty,email"`
	Phone            *string              `json:"phone"`
	Address          *string              `json:"address"`
	JoinDate         *string              `json:"join_date"`
	Status           *models.MemberStatus `json:"status"`
	ShareCapital     *decimal.Decimal     `json:"share_capital"`
	MandatorySavings *decimal.Decimal     `json:"mandatory_savings"`
	VoluntarySavings *decimal.Decimal     `json:"voluntary_savings"`
}

// --- PUT: Edit a member, including suspending or deactivating them ---
func (h *Handler) UpdateMember(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var input MemberUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	var member models.Member
	err := h.DB.First(&member, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch member"})
		return
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			invalidMember(c, "name", "name is required")
			return
		}
		member.Name = name
	}
	if input.Phone != nil {
		member.Phone = *input.Phone
	}
	if input.Address != nil {
		member.Address = *input.Address
	}
	if input.JoinDate != nil {
		d, err := parseJoinDate(*input.JoinDate)
		if err != nil {
			invalidMember(c, "join_date", "use YYYY-MM-DD")
			return
		}
		member.JoinDate = d
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			invalidMember(c, "status", "status must be one of active, inactive, suspended")
			return
		}
		member.Status = *input.Status
	}
	for field, v := range map[string]*decimal.Decimal{
		"share_capital":     input.ShareCapital,
		"mandatory_savings": input.MandatorySavings,
		"voluntary_savings": input.VoluntarySavings,
	} {
		if v != nil && v.IsNegative() {
			invalidMember(c, field, "must not be negative")
			return
		}
	}
	if input.ShareCapital != nil {
		member.ShareCapital = *input.ShareCapital
	}
	if input.MandatorySavings != nil {
		member.MandatorySavings = *input.MandatorySavings
	}
	if input.VoluntarySavings != nil {
		member.VoluntarySavings = *input.VoluntarySavings
	}

	errEmailTaken := errors.New("email taken")
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if input.Email != nil {
			member.Email = strings.ToLower(strings.TrimSpace(*input.Email))
			var n int64
			if err := tx.Model(&models.Member{}).Where("email = ? AND id <> ?", member.Email, member.ID).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return errEmailTaken
			}
		}
		return tx.Save(&member).Error
	})
	if errors.Is(err, errEmailTaken) {
		invalidMember(c, "email", "email has already been taken")
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update member"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member updated successfully", "member": member})
}

// --- DELETE: Remove a member with no sales history or open plans ---
func (h *Handler) DeleteMember(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var member models.Member
	err := h.DB.First(&member, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch member"})
		return
	}

	var open int64
	err = h.DB.Model(&models.Transaction{}).
		Where("member_id = ? AND status <> ?", id, models.StatusCancelled).
		Count(&open).Error
	if err == nil && open == 0 {
		err = h.DB.Model(&models.Installment{}).
			Where("member_id = ? AND status = ?", id, models.InstallmentActive).
			Count(&open).Error
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete member"})
		return
	}
	if open > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Cannot delete member with active transactions or installments. Set the status to inactive instead."})
		return
	}

	if err := h.DB.Delete(&member).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete member"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Member deleted successfully"})
}
