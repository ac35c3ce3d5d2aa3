package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"storefront-backend/models"
	"storefront-backend/notifier"
	"storefront-backend/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Contact holds the customer and shipping fields of a checkout.
type Contact struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Address   string `json:"address" validate:"required"`
	Phone     string `json:"phone" validate:"max=20"`
}

func (c Contact) trimmed() Contact {
	return Contact{
		Email:     strings.TrimSpace(c.Email),
		FirstName: strings.TrimSpace(c.FirstName),
		LastName:  strings.TrimSpace(c.LastName),
		Address:   strings.TrimSpace(c.Address),
		Phone:     strings.TrimSpace(c.Phone),
	}
}

// Receipt is what a successful checkout reports back.
type Receipt struct {
	OrderNumber string
	Total       decimal.Decimal
	Status      models.OrderStatus
	StatusLabel string
}

type CheckoutService struct {
	db       *gorm.DB
	notifier notifier.Notifier
	validate *validator.Validate
}

func NewCheckoutService(db *gorm.DB, n notifier.Notifier) *CheckoutService {
	if n == nil {
		n = notifier.LogNotifier{}
	}
	return &CheckoutService{db: db, notifier: n, validate: utils.NewValidator()}
}

// Checkout turns the cart of id into a pending order. Stock is debited, the
// order and its items are written and the cart is emptied in one transaction.
func (s *CheckoutService) Checkout(ctx context.Context, id Identity, contact Contact) (Receipt, error) {
	contact = contact.trimmed()
	if err := s.validate.Struct(contact); err != nil {
		return Receipt{}, ValidationError(utils.SanitizeValidationError(err))
	}

	key := id.cartKey()
	if key == "" {
		return Receipt{}, EmptyCartError()
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Preload("Product").Where("cart_key = ?", key).Order("created_at asc")
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var items []models.CartItem
		if err := q.Find(&items).Error; err != nil {
			return fmt.Errorf("load cart: %w", err)
		}
		if len(items) == 0 {
			return EmptyCartError()
		}

		total := decimal.Zero
		for i := range items {
			total = total.Add(items[i].LineTotal())
		}

		for _, it := range items {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", it.ProductID, it.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", it.Quantity))
			if res.Error != nil {
				return fmt.Errorf("debit stock: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return InsufficientStockError(fmt.Sprintf("Insufficient stock for %s", it.Product.Title))
			}
		}

		order = models.Order{
			Email:     contact.Email,
			FirstName: contact.FirstName,
			LastName:  contact.LastName,
			Address:   contact.Address,
			Phone:     contact.Phone,
			Total:     total,
			Status:    models.OrderStatusPending,
		}
		if id.IsAuthenticated() {
			order.UserID = id.UserID
		}
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		orderItems := make([]models.OrderItem, 0, len(items))
		for _, it := range items {
			orderItems = append(orderItems, models.OrderItem{
				OrderID:   order.ID,
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				Price:     it.PriceSnapshot,
				Total:     it.LineTotal(),
			})
		}
		if err := tx.Omit(clause.Associations).Create(&orderItems).Error; err != nil {
			return fmt.Errorf("create order items: %w", err)
		}

		if err := tx.Where("cart_key = ?", key).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		for i := range orderItems {
			orderItems[i].Product = items[i].Product
		}
		order.Items = orderItems
		return nil
	})
	if err != nil {
		return Receipt{}, err
	}

	go s.notify(order)

	return Receipt{
		OrderNumber: order.OrderNumber,
		Total:       order.Total,
		Status:      order.Status,
		StatusLabel: order.Status.Label(),
	}, nil
}

func (s *CheckoutService) notify(order models.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.notifier.OrderPlaced(ctx, order); err != nil {
		log.Printf("Failed to send order confirmation for %s: %v", order.OrderNumber, err)
	}
}

// ListOrders returns the orders of a user, newest first.
func (s *CheckoutService) ListOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.WithContext(ctx).
		Preload("Items.Product").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// GetOrder fetches one order of the authenticated caller by number.
func (s *CheckoutService) GetOrder(ctx context.Context, id Identity, orderNumber string) (models.Order, error) {
	var order models.Order
	if !id.IsAuthenticated() {
		return order, NotFoundError("Order not found")
	}
	err := s.db.WithContext(ctx).
		Preload("Items.Product").
		Where("order_number = ? AND user_id = ?", orderNumber, *id.UserID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return order, NotFoundError("Order not found")
	}
	if err != nil {
		return order, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// ListAllOrders is the admin view, optionally filtered by status.
func (s *CheckoutService) ListAllOrders(ctx context.Context, status string, pageParam string) ([]models.Order, utils.Page, error) {
	base := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.Order{})
		if status != "" {
			q = q.Where("status = ?", status)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, utils.Page{}, fmt.Errorf("count orders: %w", err)
	}
	page := utils.Paginate(total, pageParam, 20)

	var orders []models.Order
	if err := base().
		Preload("Items.Product").
		Order("created_at desc").
		Offset(page.Offset).
		Limit(page.Limit).
		Find(&orders).Error; err != nil {
		return nil, utils.Page{}, fmt.Errorf("list orders: %w", err)
	}
	return orders, page, nil
}

// UpdateStatus moves an order along the status machine. Cancelling returns
// the ordered quantities to stock.
func (s *CheckoutService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) (models.Order, error) {
	if !status.IsValid() {
		return models.Order{}, ValidationError("Invalid order status")
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundError("Order not found")
			}
			return fmt.Errorf("load order: %w", err)
		}

		if !models.IsValidTransition(order.Status, status) {
			return ValidationError(fmt.Sprintf("Cannot change status from %s to %s", order.Status, status))
		}

		if status == models.OrderStatusCancelled {
			for _, item := range order.Items {
				if err := tx.Model(&models.Product{}).
					Where("id = ?", item.ProductID).
					UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
					return fmt.Errorf("restock: %w", err)
				}
			}
		}

		if err := tx.Model(&order).Update("status", status).Error; err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		order.Status = status
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}
	return order, nil
}
