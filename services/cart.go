package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Cart is the content of one resolved cart.
type Cart struct {
	Items     []models.CartItem
	Total     decimal.Decimal
	ItemCount int
}

type CartService struct {
	db *gorm.DB
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// incrementOnConflict turns an insert into "add to the existing line" when the
// cart already holds the product. Only quantity changes; the snapshot price of
// the existing row is kept.
func incrementOnConflict() clause.OnConflict {
	return clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_key"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
			"updated_at": time.Now(),
		}),
	}
}

// Add puts quantity units of an active product into the cart of id.
func (s *CartService) Add(ctx context.Context, id Identity, productID uuid.UUID, quantity int) (models.CartItem, error) {
	if quantity <= 0 {
		return models.CartItem{}, ValidationError("Quantity must be greater than zero")
	}
	key := id.cartKey()
	if key == "" {
		return models.CartItem{}, ValidationError("A session is required to use the cart")
	}

	var item models.CartItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Where("id = ? AND is_active = ?", productID, true).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundError("Product not found")
			}
			return fmt.Errorf("load product: %w", err)
		}

		if product.Stock < quantity {
			return InsufficientStockError("Insufficient stock")
		}

		row := models.CartItem{
			CartKey:       key,
			SessionID:     id.SessionID,
			ProductID:     product.ID,
			Quantity:      quantity,
			PriceSnapshot: product.Price,
		}
		if id.IsAuthenticated() {
			row.UserID = id.UserID
		}
		if err := tx.Omit(clause.Associations).Clauses(incrementOnConflict()).Create(&row).Error; err != nil {
			return fmt.Errorf("upsert cart item: %w", err)
		}

		return tx.Preload("Product").
			Where("cart_key = ? AND product_id = ?", key, product.ID).
			First(&item).Error
	})
	if err != nil {
		return models.CartItem{}, err
	}
	return item, nil
}

// owns accepts a match on either axis. An empty session key or a missing user
// never matches, so two anonymous callers cannot claim each other's rows.
func owns(id Identity, item models.CartItem) bool {
	if id.SessionID != "" && item.SessionID == id.SessionID {
		return true
	}
	if id.IsAuthenticated() && item.UserID != nil && *item.UserID == *id.UserID {
		return true
	}
	return false
}

func (s *CartService) findOwned(tx *gorm.DB, id Identity, cartItemID uuid.UUID) (models.CartItem, error) {
	var item models.CartItem
	if err := tx.First(&item, "id = ?", cartItemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return item, NotFoundError("Cart item not found")
		}
		return item, fmt.Errorf("load cart item: %w", err)
	}
	if !owns(id, item) {
		return item, ForbiddenError("Access denied")
	}
	return item, nil
}

func (s *CartService) Remove(ctx context.Context, id Identity, cartItemID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.findOwned(tx, id, cartItemID)
		if err != nil {
			return err
		}
		return tx.Delete(&item).Error
	})
}

// UpdateQuantity sets the absolute quantity of a cart line.
func (s *CartService) UpdateQuantity(ctx context.Context, id Identity, cartItemID uuid.UUID, quantity int) (models.CartItem, error) {
	if quantity <= 0 {
		return models.CartItem{}, ValidationError("Quantity must be greater than zero")
	}

	var item models.CartItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		item, err = s.findOwned(tx, id, cartItemID)
		if err != nil {
			return err
		}

		var product models.Product
		if err := tx.First(&product, "id = ?", item.ProductID).Error; err != nil {
			return fmt.Errorf("load product: %w", err)
		}
		if product.Stock < quantity {
			return InsufficientStockError("Insufficient stock")
		}

		if err := tx.Model(&item).Update("quantity", quantity).Error; err != nil {
			return fmt.Errorf("update quantity: %w", err)
		}
		item.Product = product
		return nil
	})
	if err != nil {
		return models.CartItem{}, err
	}
	return item, nil
}

// List returns the cart of id. An identity with no user and no session has an
// empty cart.
func (s *CartService) List(ctx context.Context, id Identity) (Cart, error) {
	cart := Cart{Items: []models.CartItem{}, Total: decimal.Zero}
	key := id.cartKey()
	if key == "" {
		return cart, nil
	}

	if err := s.db.WithContext(ctx).
		Preload("Product").
		Where("cart_key = ?", key).
		Order("created_at asc").
		Find(&cart.Items).Error; err != nil {
		return Cart{}, fmt.Errorf("list cart: %w", err)
	}

	for i := range cart.Items {
		cart.Total = cart.Total.Add(cart.Items[i].LineTotal())
	}
	cart.ItemCount = len(cart.Items)
	return cart, nil
}

func (s *CartService) Clear(ctx context.Context, id Identity) error {
	key := id.cartKey()
	if key == "" {
		return nil
	}
	return s.db.WithContext(ctx).Where("cart_key = ?", key).Delete(&models.CartItem{}).Error
}

// MergeSessionCart moves the rows of an anonymous session cart into the cart of
// userID. Products already present in the user cart have their quantity
// increased and keep their snapshot price.
func (s *CartService) MergeSessionCart(ctx context.Context, sessionID string, userID uuid.UUID) error {
	if sessionID == "" || userID == uuid.Nil {
		return nil
	}
	from := sessionCartKey(sessionID)
	to := userCartKey(userID)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []models.CartItem
		if err := tx.Where("cart_key = ?", from).Order("created_at asc").Find(&rows).Error; err != nil {
			return fmt.Errorf("load session cart: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}

		for _, r := range rows {
			uid := userID
			moved := models.CartItem{
				CartKey:       to,
				UserID:        &uid,
				ProductID:     r.ProductID,
				Quantity:      r.Quantity,
				PriceSnapshot: r.PriceSnapshot,
			}
			if err := tx.Omit(clause.Associations).Clauses(incrementOnConflict()).Create(&moved).Error; err != nil {
				return fmt.Errorf("merge cart item: %w", err)
			}
		}

		if err := tx.Where("cart_key = ?", from).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("drop session cart: %w", err)
		}
		return nil
	})
}
