package services

import (
	"context"
	"testing"

	"storefront-backend/database"
	"storefront-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func freshDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func seedCategory(t *testing.T, db *gorm.DB, name string) models.Category {
	t.Helper()
	c := models.Category{Name: name}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func seedProduct(t *testing.T, db *gorm.DB, cat models.Category, title, price string, stock int) models.Product {
	t.Helper()
	p := models.Product{
		Title:      title,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		CategoryID: cat.ID,
		IsActive:   true,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func seedUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	u := models.User{Username: username, Email: username + "@example.com", Password: "x"}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var ctx = context.Background()

func validContact() Contact {
	return Contact{Email: "li@example.com", FirstName: "Li", LastName: "Wei", Address: "12 Rue de Paris", Phone: "0600000000"}
}
