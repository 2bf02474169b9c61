package database

import (
	"fmt"
	"log"
	"time"

	"coop-pos/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const defaultSeedPassword = "password"

// Seed fills an empty database with operators, members and a starter catalog.
// Tables that already hold rows are left alone.
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := seedUsers(tx); err != nil {
			return err
		}
		if err := seedMembers(tx); err != nil {
			return err
		}
		return seedProducts(tx)
	})
}

func isEmpty(tx *gorm.DB, model any) (bool, error) {
	var n int64
	if err := tx.Model(model).Count(&n).Error; err != nil {
		return false, err
	}
	return n == 0, nil
}

func seedUsers(tx *gorm.DB) error {
	empty, err := isEmpty(tx, &models.User{})
	if err != nil || !empty {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(defaultSeedPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}
	users := []models.User{
		{Name: "Ahmad Syukur", Username: "officer", Role: models.RoleAdmin},
		{Name: "Siti Nurhaliza", Username: "manager", Role: models.RoleManager},
		{Name: "Rina Kasir", Username: "cashier", Role: models.RoleCashier},
	}
	for i := range users {
		users[i].PasswordHash = string(hash)
		users[i].IsActive = true
	}
	log.Printf("Seeding %d users (password %q)", len(users), defaultSeedPassword)
	return tx.Create(&users).Error
}

func seedMembers(tx *gorm.DB) error {
	empty, err := isEmpty(tx, &models.Member{})
	if err != nil || !empty {
		return err
	}
	date := func(s string) time.Time {
		t, _ := time.Parse("2006-01-02", s)
		return t
	}
	members := []models.Member{
		{Name: "Budi Setiawan", Email: "budi@example.com", Phone: "081234567890", Address: "Jl. Merdeka No. 123, Jakarta",
			JoinDate: date("2023-01-15"), ShareCapital: decimal.NewFromInt(1000000), MandatorySavings: decimal.NewFromInt(500000),
			VoluntarySavings: decimal.NewFromInt(250000), Points: 150},
		{Name: "Sari Dewi", Email: "sari@example.com", Phone: "081234567891", Address: "Jl. Sudirman No. 456, Jakarta",
			JoinDate: date("2023-02-10"), ShareCapital: decimal.NewFromInt(1500000), MandatorySavings: decimal.NewFromInt(750000),
			VoluntarySavings: decimal.NewFromInt(300000), Points: 200},
		{Name: "Joko Prasetyo", Email: "joko@example.com", Phone: "081234567892", Address: "Jl. Thamrin No. 789, Jakarta",
			JoinDate: date("2023-03-05"), ShareCapital: decimal.NewFromInt(2000000), MandatorySavings: decimal.NewFromInt(1000000),
			VoluntarySavings: decimal.NewFromInt(500000), Points: 300},
	}
	for i := range members {
		members[i].MemberCode = fmt.Sprintf("IBS%06d", i+1)
		members[i].Status = models.MemberActive
	}
	log.Printf("Seeding %d members", len(members))
	return tx.Create(&members).Error
}

func seedProducts(tx *gorm.DB) error {
	empty, err := isEmpty(tx, &models.Product{})
	if err != nil || !empty {
		return err
	}
	price := decimal.NewFromInt
	member := func(v int64) decimal.NullDecimal {
		return decimal.NewNullDecimal(decimal.NewFromInt(v))
	}
	products := []models.Product{
		{SKU: "BRS-001", Name: "Beras Premium 5kg", Category: "Sembako", PurchasePrice: price(60000), SellingPrice: price(70000),
			MemberPrice: member(65000), StockQuantity: 50, MinimumStock: 10, Unit: "sak", PointsEarned: 7},
		{SKU: "MNY-001", Name: "Minyak Goreng 2L", Category: "Sembako", PurchasePrice: price(28000), SellingPrice: price(32000),
			MemberPrice: member(30000), StockQuantity: 80, MinimumStock: 15, Unit: "btl", PointsEarned: 3},
		{SKU: "GLA-001", Name: "Gula Pasir 1kg", Category: "Sembako", PurchasePrice: price(14000), SellingPrice: price(16000),
			StockQuantity: 100, MinimumStock: 20, Unit: "pcs", PointsEarned: 1},
		{SKU: "KLK-001", Name: "Kulkas 2 Pintu", Category: "Elektronik", PurchasePrice: price(3500000), SellingPrice: price(4200000),
			MemberPrice: member(4000000), StockQuantity: 5, MinimumStock: 1, Unit: "unit", AllowInstallment: true, PointsEarned: 400},
		{SKU: "MCN-001", Name: "Mesin Cuci 8kg", Category: "Elektronik", PurchasePrice: price(2800000), SellingPrice: price(3300000),
			MemberPrice: member(3150000), StockQuantity: 4, MinimumStock: 1, Unit: "unit", AllowInstallment: true, PointsEarned: 300},
	}
	for i := range products {
		products[i].IsActive = true
	}
	log.Printf("Seeding %d products", len(products))
	return tx.Create(&products).Error
}
