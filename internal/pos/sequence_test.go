package pos

import (
	"testing"

	"coop-pos/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNextNumberPerPrefixAndDay(t *testing.T) {
	db := openDB(t, t.Name())

	next := func(typ models.TransactionType, day int) string {
		t.Helper()
		var number string
		require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
			var err error
			number, err = NextNumber(tx, typ, testNow.AddDate(0, 0, day))
			return err
		}))
		return number
	}

	assert.Equal(t, "SAL20260310000001", next(models.TypeSale, 0))
	assert.Equal(t, "SAL20260310000002", next(models.TypeSale, 0))
	assert.Equal(t, "PUR20260310000001", next(models.TypePurchase, 0))
	assert.Equal(t, "SHU20260310000001", next(models.TypeSHUDistribution, 0))
	assert.Equal(t, "SAL20260311000001", next(models.TypeSale, 1))
	assert.Equal(t, "SAL20260310000003", next(models.TypeSale, 0))
}

func TestNextNumberRolledBackIsReissued(t *testing.T) {
	db := openDB(t, t.Name())

	_ = db.Transaction(func(tx *gorm.DB) error {
		_, err := NextNumber(tx, models.TypeSale, testNow)
		require.NoError(t, err)
		return assert.AnError
	})

	var number string
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		var err error
		number, err = NextNumber(tx, models.TypeSale, testNow)
		return err
	}))
	assert.Equal(t, "SAL20260310000001", number)
}

func TestNextNumberExhausted(t *testing.T) {
	db := openDB(t, t.Name())
	require.NoError(t, db.Create(&models.TransactionSequence{Prefix: "SAL", Day: "20260310", LastValue: maxSequence}).Error)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := NextNumber(tx, models.TypeSale, testNow)
		return err
	})
	assert.ErrorContains(t, err, "exhausted")
}
