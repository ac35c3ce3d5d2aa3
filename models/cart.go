package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartItem is one product line of a cart. CartKey groups the rows of a cart
// ("user:<id>" or "session:<key>") and is unique together with ProductID.
type CartItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CartKey       string          `gorm:"size:150;not null;uniqueIndex:idx_cart_items_cart_product" json:"-"`
	SessionID     string          `gorm:"size:100;index" json:"-"`
	UserID        *uuid.UUID      `gorm:"type:uuid;index" json:"user_id,omitempty"`
	User          *User           `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_product" json:"product_id"`
	Product       Product         `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product"`
	Quantity      int             `gorm:"not null;default:1" json:"quantity"`
	PriceSnapshot decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price_snapshot"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// LineTotal is the snapshot price times the quantity.
func (c *CartItem) LineTotal() decimal.Decimal {
	return c.PriceSnapshot.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
