package models

import (
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&User{}, &Category{}, &Product{}, &CartItem{}, &Order{}, &OrderItem{}); err != nil {
		t.Fatal(err)
	}
	return db
}

func createProduct(t *testing.T, db *gorm.DB, title string, price string, stock int) Product {
	t.Helper()
	cat := Category{Name: "Cat " + uuid.NewString()[:8]}
	if err := db.Create(&cat).Error; err != nil {
		t.Fatal(err)
	}
	prod := Product{Title: title, Price: decimal.RequireFromString(price), Stock: stock, CategoryID: cat.ID, IsActive: true}
	if err := db.Create(&prod).Error; err != nil {
		t.Fatal(err)
	}
	return prod
}

// ==================== BeforeCreate Hook Tests ====================

func TestUserBeforeCreateGeneratesUUID(t *testing.T) {
	db := setupTestDB(t)
	user := User{Username: "test", Email: "test@test.com", Password: "hash"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatal(err)
	}
	if user.ID == uuid.Nil {
		t.Error("UUID should have been generated")
	}
	if user.Role != RoleCustomer {
		t.Errorf("expected default role customer, got %s", user.Role)
	}
}

func TestUserBeforeCreatePreservesUUID(t *testing.T) {
	db := setupTestDB(t)
	existingID := uuid.New()
	user := User{ID: existingID, Username: "preserve", Email: "preserve@test.com", Password: "hash"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatal(err)
	}
	if user.ID != existingID {
		t.Error("UUID should have been preserved")
	}
}

func TestCategoryBeforeCreateDerivesSlug(t *testing.T) {
	db := setupTestDB(t)
	cat := Category{Name: "Électronique"}
	if err := db.Create(&cat).Error; err != nil {
		t.Fatal(err)
	}
	if cat.ID == uuid.Nil {
		t.Error("UUID should have been generated")
	}
	if cat.Slug != "electronique" {
		t.Errorf("expected slug electronique, got %q", cat.Slug)
	}
}

func TestCategoryKeepsExplicitSlug(t *testing.T) {
	db := setupTestDB(t)
	cat := Category{Name: "Maison", Slug: "home"}
	db.Create(&cat)
	if cat.Slug != "home" {
		t.Errorf("explicit slug should be kept, got %q", cat.Slug)
	}
}

func TestCategorySlugIsUnique(t *testing.T) {
	db := setupTestDB(t)
	if err := db.Create(&Category{Name: "Mode"}).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&Category{Name: "Mode"}).Error; err == nil {
		t.Error("duplicate slug should be rejected")
	}
}

func TestProductBeforeCreate(t *testing.T) {
	db := setupTestDB(t)
	prod := createProduct(t, db, "Sac à dos léger", "45.99", 30)
	if prod.ID == uuid.Nil {
		t.Error("UUID should have been generated")
	}
	if prod.Slug != "sac-a-dos-leger" {
		t.Errorf("expected derived slug, got %q", prod.Slug)
	}
}

func TestProductRejectsNonPositivePrice(t *testing.T) {
	db := setupTestDB(t)
	cat := Category{Name: "Cat"}
	db.Create(&cat)
	prod := Product{Title: "Free", Price: decimal.Zero, CategoryID: cat.ID}
	if err := db.Create(&prod).Error; err == nil {
		t.Error("zero price should be rejected")
	}
}

func TestProductRejectsNegativeStock(t *testing.T) {
	db := setupTestDB(t)
	cat := Category{Name: "Cat"}
	db.Create(&cat)
	prod := Product{Title: "Oversold", Price: decimal.NewFromInt(1), Stock: -1, CategoryID: cat.ID}
	if err := db.Create(&prod).Error; err == nil {
		t.Error("negative stock should be rejected")
	}
}

func TestProductColumnUpdateSkipsValidation(t *testing.T) {
	db := setupTestDB(t)
	prod := createProduct(t, db, "Lampe", "39.99", 12)
	if err := db.Model(&Product{}).Where("id = ?", prod.ID).Update("stock", 3).Error; err != nil {
		t.Fatalf("column update should not fail: %v", err)
	}
}

func TestCartItemBeforeCreate(t *testing.T) {
	db := setupTestDB(t)
	prod := createProduct(t, db, "Coussin", "19.99", 35)
	item := CartItem{CartKey: "session:abc", SessionID: "abc", ProductID: prod.ID, Quantity: 2, PriceSnapshot: prod.Price}
	if err := db.Create(&item).Error; err != nil {
		t.Fatal(err)
	}
	if item.ID == uuid.Nil {
		t.Error("UUID should have been generated")
	}
}

func TestCartItemUniquePerCartAndProduct(t *testing.T) {
	db := setupTestDB(t)
	prod := createProduct(t, db, "Coussin", "19.99", 35)
	first := CartItem{CartKey: "session:abc", SessionID: "abc", ProductID: prod.ID, Quantity: 1, PriceSnapshot: prod.Price}
	if err := db.Create(&first).Error; err != nil {
		t.Fatal(err)
	}
	dup := CartItem{CartKey: "session:abc", SessionID: "abc", ProductID: prod.ID, Quantity: 1, PriceSnapshot: prod.Price}
	if err := db.Create(&dup).Error; err == nil {
		t.Error("second row for the same cart and product should be rejected")
	}
	other := CartItem{CartKey: "session:xyz", SessionID: "xyz", ProductID: prod.ID, Quantity: 1, PriceSnapshot: prod.Price}
	if err := db.Create(&other).Error; err != nil {
		t.Errorf("another cart may hold the same product: %v", err)
	}
}

func TestCartItemLineTotal(t *testing.T) {
	item := CartItem{Quantity: 3, PriceSnapshot: decimal.RequireFromString("10.00")}
	if !item.LineTotal().Equal(decimal.RequireFromString("30.00")) {
		t.Errorf("expected 30.00, got %s", item.LineTotal())
	}
}

func TestOrderBeforeCreate(t *testing.T) {
	db := setupTestDB(t)
	order := Order{Email: "order@test.com", FirstName: "Li", LastName: "Wei", Address: "1 Road", Total: decimal.NewFromInt(10)}
	if err := db.Create(&order).Error; err != nil {
		t.Fatal(err)
	}
	if order.ID == uuid.Nil {
		t.Error("UUID should have been generated")
	}
	if !regexp.MustCompile(`^CTM-[0-9A-F]{8}$`).MatchString(order.OrderNumber) {
		t.Errorf("unexpected order number %q", order.OrderNumber)
	}
	if order.Status != OrderStatusPending {
		t.Errorf("expected pending status, got %s", order.Status)
	}
}

func TestOrderNumberNeverReassigned(t *testing.T) {
	db := setupTestDB(t)
	order := Order{OrderNumber: "CTM-FIXED001", Email: "a@b.c", FirstName: "A", LastName: "B", Address: "X", Total: decimal.NewFromInt(1)}
	if err := db.Create(&order).Error; err != nil {
		t.Fatal(err)
	}
	if order.OrderNumber != "CTM-FIXED001" {
		t.Errorf("existing number replaced: %s", order.OrderNumber)
	}

	order.Phone = "0600000000"
	if err := db.Save(&order).Error; err != nil {
		t.Fatal(err)
	}
	var reloaded Order
	db.First(&reloaded, "id = ?", order.ID)
	if reloaded.OrderNumber != "CTM-FIXED001" {
		t.Errorf("order number changed on re-save: %s", reloaded.OrderNumber)
	}
}

func TestOrderItemTotalComputedOnce(t *testing.T) {
	db := setupTestDB(t)
	prod := createProduct(t, db, "Kit", "69.99", 10)
	order := Order{Email: "a@b.c", FirstName: "A", LastName: "B", Address: "X", Total: decimal.NewFromInt(1)}
	db.Create(&order)

	computed := OrderItem{OrderID: order.ID, ProductID: prod.ID, Quantity: 2, Price: decimal.RequireFromString("69.99")}
	if err := db.Create(&computed).Error; err != nil {
		t.Fatal(err)
	}
	if !computed.Total.Equal(decimal.RequireFromString("139.98")) {
		t.Errorf("expected 139.98, got %s", computed.Total)
	}

	preset := OrderItem{OrderID: order.ID, ProductID: prod.ID, Quantity: 2, Price: decimal.RequireFromString("69.99"), Total: decimal.NewFromInt(100)}
	db.Create(&preset)
	if !preset.Total.Equal(decimal.NewFromInt(100)) {
		t.Errorf("populated total must not be re-derived, got %s", preset.Total)
	}
}

// ==================== Method Tests ====================

func TestIsInStock(t *testing.T) {
	if (&Product{Stock: 0}).IsInStock() {
		t.Error("zero stock should not be in stock")
	}
	if !(&Product{Stock: 1}).IsInStock() {
		t.Error("positive stock should be in stock")
	}
}

func TestOrderStatusLabel(t *testing.T) {
	if OrderStatusPending.Label() != "Pending" {
		t.Errorf("expected Pending, got %s", OrderStatusPending.Label())
	}
	if OrderStatus("weird").IsValid() {
		t.Error("unknown status should be invalid")
	}
}

func TestIsValidTransition(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusPending, OrderStatusDelivered, false},
		{OrderStatusDelivered, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusProcessing, false},
	}
	for _, tt := range tests {
		if got := IsValidTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("IsValidTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
