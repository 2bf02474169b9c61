package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MemberStatus string

const (
	MemberActive    MemberStatus = "active"
	MemberInactive  MemberStatus = "inactive"
	MemberSuspended MemberStatus = "suspended"
)

func (s MemberStatus) Valid() bool {
	switch s {
	case MemberActive, MemberInactive, MemberSuspended:
		return true
	}
	return false
}

const memberCodePrefix = "IBS"

// Member - cooperative member and loyalty account
type Member struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	MemberCode       string          `gorm:"uniqueIndex;size:20" json:"member_code"`
	Name             string          `gorm:"size:255" json:"name"`
	Email            string          `gorm:"uniqueIndex;size:255" json:"email"`
	Phone            string          `gorm:"size:20" json:"phone"`
	Address          string          `gorm:"type:text" json:"address"`
	JoinDate         time.Time       `gorm:"type:date" json:"join_date"`
	Status           MemberStatus    `gorm:"size:20;index;default:active" json:"status"`
	ShareCapital     decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"share_capital"`
	MandatorySavings decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"mandatory_savings"`
	VoluntarySavings decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"voluntary_savings"`
	Points           int             `gorm:"not null;default:0" json:"points"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (m *Member) TotalSavings() decimal.Decimal {
	return m.MandatorySavings.Add(m.VoluntarySavings)
}

func ActiveMembers(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", MemberActive)
}

// NextMemberCode derives the next "IBS000001"-style code from the newest member.
// Callers should run it inside the transaction that inserts the member.
// SearchMembers matches term against name, email, member code and phone,
// ignoring case.
func SearchMembers(term string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		like := "%" + strings.ToLower(term) + "%"
		return db.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(member_code) LIKE ? OR phone LIKE ?",
			like, like, like, like)
	}
}

func NextMemberCode(db *gorm.DB) (string, error) {
	var last Member
	err := db.Order("id desc").Limit(1).Find(&last).Error
	if err != nil {
		return "", err
	}
	next := 1
	if last.ID != 0 && len(last.MemberCode) > len(memberCodePrefix) {
		n, err := strconv.Atoi(last.MemberCode[len(memberCodePrefix):])
		if err == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("%s%06d", memberCodePrefix, next), nil
}
