package models

import (
	"errors"
	"time"

	"storefront-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNonPositivePrice = errors.New("price must be greater than zero")
	ErrNegativeStock    = errors.New("stock cannot be negative")
)

type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string          `gorm:"size:200;not null" json:"title"`
	Slug        string          `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	CategoryID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"category_id"`
	Category    Category        `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	ImageURL    string          `json:"image_url"`
	IsActive    bool            `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// IsInStock reports whether at least one unit can be sold.
func (p *Product) IsInStock() bool {
	return p.Stock > 0
}

// Validate checks the price and stock invariants.
func (p *Product) Validate() error {
	if !p.Price.IsPositive() {
		return ErrNonPositivePrice
	}
	if p.Stock < 0 {
		return ErrNegativeStock
	}
	return nil
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return p.Validate()
}

// BeforeSave also runs for column updates issued through Model(&Product{}),
// so it must not validate the (possibly empty) receiver.
func (p *Product) BeforeSave(tx *gorm.DB) error {
	if p.Slug == "" && p.Title != "" {
		p.Slug = utils.Slugify(p.Title)
	}
	return nil
}
