package pos

import (
	"strings"
	"testing"
	"time"

	"coop-pos/internal/database"
	"coop-pos/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

type fixture struct {
	db       *gorm.DB
	svc      *Service
	cashier  Operator
	rice     models.Product
	oil      models.Product
	fridge   models.Product
	member   models.Member
	clockNow time.Time
}

func openDB(t testing.TB, name string) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory(strings.NewReplacer("/", "_", " ", "_").Replace(name))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	f := &fixture{db: openDB(t, t.Name()), clockNow: testNow}

	user := models.User{Name: "Kasir Satu", Username: "kasir", PasswordHash: "x", Role: models.RoleCashier, IsActive: true}
	require.NoError(t, f.db.Create(&user).Error)
	f.cashier = Operator{UserID: user.ID, Role: user.Role}

	f.rice = models.Product{
		SKU: "BRS-001", Name: "Beras Premium 5kg", Category: "Sembako",
		PurchasePrice: dec("50000"), SellingPrice: dec("55000"),
		MemberPrice:   decimal.NewNullDecimal(dec("52000")),
		StockQuantity: 10, MinimumStock: 2, PointsEarned: 3, IsActive: true,
	}
	f.oil = models.Product{
		SKU: "MNY-001", Name: "Minyak Goreng 2L", Category: "Sembako",
		PurchasePrice: dec("25000"), SellingPrice: dec("30000"),
		StockQuantity: 5, MinimumStock: 1, PointsEarned: 1, IsActive: true,
	}
	f.fridge = models.Product{
		SKU: "KLK-001", Name: "Kulkas 2 Pintu", Category: "Elektronik",
		PurchasePrice: dec("500000"), SellingPrice: dec("600000"),
		StockQuantity: 3, PointsEarned: 50, IsActive: true, AllowInstallment: true,
	}
	for _, p := range []*models.Product{&f.rice, &f.oil, &f.fridge} {
		require.NoError(t, f.db.Create(p).Error)
	}

	f.member = models.Member{
		MemberCode: "IBS000001", Name: "Siti Aminah", Email: "siti@example.com",
		JoinDate: testNow.AddDate(-1, 0, 0), Status: models.MemberActive, Points: 20000,
	}
	require.NoError(t, f.db.Create(&f.member).Error)

	if opts.Clock == nil {
		opts.Clock = func() time.Time { return f.clockNow }
	}
	if opts.CurrencyScale == 0 {
		opts.CurrencyScale = 2
	}
	f.svc = NewService(f.db, opts)
	return f
}

func (f *fixture) stockOf(t *testing.T, id uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, f.db.First(&p, id).Error)
	return p.StockQuantity
}

func (f *fixture) pointsOf(t *testing.T, id uint) int {
	t.Helper()
	var m models.Member
	require.NoError(t, f.db.First(&m, id).Error)
	return m.Points
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func (f *fixture) assertNothingWritten(t *testing.T) {
	t.Helper()
	require.Zero(t, f.count(t, &models.Transaction{}), "transactions")
	require.Zero(t, f.count(t, &models.TransactionItem{}), "transaction items")
	require.Zero(t, f.count(t, &models.Installment{}), "installments")
	require.Zero(t, f.count(t, &models.InstallmentPayment{}), "installment payments")
	require.Equal(t, f.rice.StockQuantity, f.stockOf(t, f.rice.ID))
	require.Equal(t, f.oil.StockQuantity, f.stockOf(t, f.oil.ID))
	require.Equal(t, f.fridge.StockQuantity, f.stockOf(t, f.fridge.ID))
	require.Equal(t, f.member.Points, f.pointsOf(t, f.member.ID))
}
