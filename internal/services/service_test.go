package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/bazaar/internal/database"
	"github.com/example/bazaar/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func createProduct(t *testing.T, db *gorm.DB, name, price string, stock int) *models.Product {
	t.Helper()

	product := models.Product{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		Category: "Test",
	}
	require.NoError(t, db.Create(&product).Error)
	return &product
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := models.User{
		Username:     username,
		PasswordHash: "x",
		Role:         models.RoleShopper,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createSession(t *testing.T, db *gorm.DB) *models.Session {
	t.Helper()

	sess := models.Session{}
	require.NoError(t, db.Create(&sess).Error)
	return &sess
}

func createPaymentMethod(t *testing.T, db *gorm.DB, svc *AccountService, user *models.User) *models.PaymentMethod {
	t.Helper()

	method := models.PaymentMethod{
		CardType:       "Visa",
		LastFour:       "4242",
		CardholderName: "Test Card",
		ExpiryMonth:    12,
		ExpiryYear:     2030,
	}
	require.NoError(t, svc.CreatePaymentMethod(user.ID, &method))
	return &method
}
