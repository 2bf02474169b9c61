package pos

import (
	"fmt"
	"time"

	"coop-pos/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxSequence = 999999

// NextNumber issues the next transaction number for txType on now's day,
// e.g. SAL20260310000042. It must run inside the caller's unit of work: the
// counter row stays locked until that transaction ends, so concurrent
// checkouts queue on it instead of racing.
func NextNumber(tx *gorm.DB, txType models.TransactionType, now time.Time) (string, error) {
	prefix := txType.Prefix()
	day := now.Format("20060102")

	seed := models.TransactionSequence{Prefix: prefix, Day: day}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return "", fmt.Errorf("init sequence %s/%s: %w", prefix, day, err)
	}

	var seq models.TransactionSequence
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("prefix = ? AND day = ?", prefix, day).
		First(&seq).Error
	if err != nil {
		return "", fmt.Errorf("lock sequence %s/%s: %w", prefix, day, err)
	}

	next := seq.LastValue + 1
	if next > maxSequence {
		return "", fmt.Errorf("sequence %s/%s exhausted", prefix, day)
	}
	if err := tx.Model(&seq).Update("last_value", next).Error; err != nil {
		return "", fmt.Errorf("advance sequence %s/%s: %w", prefix, day, err)
	}

	return fmt.Sprintf("%s%s%06d", prefix, day, next), nil
}
