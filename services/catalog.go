package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"storefront-backend/cache"
	"storefront-backend/models"
	"storefront-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	categoriesAllKey      = "categories:all"
	categoriesNonEmptyKey = "categories:non_empty"
)

// CategorySummary is a category annotated with its number of active products.
type CategorySummary struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"`
	ImageURL     string    `json:"image_url,omitempty"`
	ProductCount int64     `json:"product_count"`
}

// ProductFilter carries raw query parameters; bad numbers are ignored.
type ProductFilter struct {
	CategorySlug string
	MinPrice     string
	MaxPrice     string
	Query        string
	Page         string
}

type ProductPage struct {
	Products []models.Product
	Page     utils.Page
}

type CategoryInput struct {
	Name        string
	Slug        string
	Description string
	ImageURL    string
}

type ProductInput struct {
	Title       string
	Slug        string
	Description string
	Price       decimal.Decimal
	Stock       int
	CategoryID  uuid.UUID
	ImageURL    string
	IsActive    *bool
}

type CatalogService struct {
	db    *gorm.DB
	cache cache.CatalogCache
}

func NewCatalogService(db *gorm.DB, c cache.CatalogCache) *CatalogService {
	if c == nil {
		c = cache.NoopCache{}
	}
	return &CatalogService{db: db, cache: c}
}

// ListCategories returns every category by name with its active product count.
func (s *CatalogService) ListCategories(ctx context.Context, nonEmptyOnly bool) ([]CategorySummary, error) {
	key := categoriesAllKey
	if nonEmptyOnly {
		key = categoriesNonEmptyKey
	}

	var out []CategorySummary
	err := s.cache.Get(ctx, key, &out)
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		log.Printf("Warning: catalog cache read failed: %v", err)
	}

	q := s.db.WithContext(ctx).
		Model(&models.Category{}).
		Select("categories.id, categories.name, categories.slug, categories.description, categories.image_url, COUNT(products.id) AS product_count").
		Joins("LEFT JOIN products ON products.category_id = categories.id AND products.is_active = ?", true).
		Group("categories.id, categories.name, categories.slug, categories.description, categories.image_url").
		Order("categories.name asc")
	if nonEmptyOnly {
		q = q.Having("COUNT(products.id) > 0")
	}

	out = []CategorySummary{}
	if err := q.Scan(&out).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	if err := s.cache.Set(ctx, key, out); err != nil {
		log.Printf("Warning: catalog cache write failed: %v", err)
	}
	return out, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, slug string) (models.Category, error) {
	var category models.Category
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return category, NotFoundError("Category not found")
	}
	if err != nil {
		return category, fmt.Errorf("get category: %w", err)
	}
	return category, nil
}

// likeEscaper makes a search term match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func (s *CatalogService) productQuery(ctx context.Context, f ProductFilter) *gorm.DB {
	q := s.db.WithContext(ctx).
		Model(&models.Product{}).
		Joins("JOIN categories ON categories.id = products.category_id").
		Where("products.is_active = ?", true)

	if f.CategorySlug != "" {
		q = q.Where("categories.slug = ?", f.CategorySlug)
	}
	if lo, err := decimal.NewFromString(strings.TrimSpace(f.MinPrice)); err == nil {
		q = q.Where("products.price >= ?", lo)
	}
	if hi, err := decimal.NewFromString(strings.TrimSpace(f.MaxPrice)); err == nil {
		q = q.Where("products.price <= ?", hi)
	}
	if term := strings.TrimSpace(f.Query); term != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
		q = q.Where(`LOWER(products.title) LIKE ? ESCAPE '\' OR LOWER(products.description) LIKE ? ESCAPE '\' OR LOWER(categories.name) LIKE ? ESCAPE '\'`, like, like, like)
	}
	return q
}

// ListProducts returns one page of active products, newest first.
func (s *CatalogService) ListProducts(ctx context.Context, f ProductFilter) (ProductPage, error) {
	var total int64
	if err := s.productQuery(ctx, f).Count(&total).Error; err != nil {
		return ProductPage{}, fmt.Errorf("count products: %w", err)
	}
	page := utils.Paginate(total, f.Page, utils.PageSize)

	products := []models.Product{}
	if err := s.productQuery(ctx, f).
		Select("products.*").
		Preload("Category").
		Order("products.created_at desc").
		Offset(page.Offset).
		Limit(page.Limit).
		Find(&products).Error; err != nil {
		return ProductPage{}, fmt.Errorf("list products: %w", err)
	}
	return ProductPage{Products: products, Page: page}, nil
}

// GetProduct fetches an active product by slug.
func (s *CatalogService) GetProduct(ctx context.Context, slug string) (models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).
		Preload("Category").
		Where("slug = ? AND is_active = ?", slug, true).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return product, NotFoundError("Product not found")
	}
	if err != nil {
		return product, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// ListAllProducts is the admin listing and includes inactive products.
func (s *CatalogService) ListAllProducts(ctx context.Context, pageParam string) (ProductPage, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return ProductPage{}, fmt.Errorf("count products: %w", err)
	}
	page := utils.Paginate(total, pageParam, utils.PageSize)

	products := []models.Product{}
	if err := s.db.WithContext(ctx).
		Preload("Category").
		Order("created_at desc").
		Offset(page.Offset).
		Limit(page.Limit).
		Find(&products).Error; err != nil {
		return ProductPage{}, fmt.Errorf("list products: %w", err)
	}
	return ProductPage{Products: products, Page: page}, nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, categoriesAllKey, categoriesNonEmptyKey); err != nil {
		log.Printf("Warning: catalog cache invalidation failed: %v", err)
	}
}

func (s *CatalogService) slugTaken(tx *gorm.DB, model interface{}, slug string, except uuid.UUID) (bool, error) {
	var count int64
	err := tx.Model(model).Where("slug = ? AND id <> ?", slug, except).Count(&count).Error
	return count > 0, err
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (models.Category, error) {
	category := models.Category{
		Name:        strings.TrimSpace(in.Name),
		Slug:        strings.TrimSpace(in.Slug),
		Description: in.Description,
		ImageURL:    in.ImageURL,
	}
	if category.Name == "" {
		return category, ValidationError("name is required")
	}
	if category.Slug == "" {
		category.Slug = utils.Slugify(category.Name)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := s.slugTaken(tx, &models.Category{}, category.Slug, uuid.Nil)
		if err != nil {
			return fmt.Errorf("check slug: %w", err)
		}
		if taken {
			return ValidationError("A category with this slug already exists")
		}
		return tx.Create(&category).Error
	})
	if err != nil {
		return models.Category{}, err
	}
	s.invalidate(ctx)
	return category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, in CategoryInput) (models.Category, error) {
	var category models.Category
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&category, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundError("Category not found")
			}
			return fmt.Errorf("load category: %w", err)
		}

		if name := strings.TrimSpace(in.Name); name != "" {
			category.Name = name
		}
		if slug := strings.TrimSpace(in.Slug); slug != "" {
			category.Slug = slug
		}
		category.Description = in.Description
		category.ImageURL = in.ImageURL

		taken, err := s.slugTaken(tx, &models.Category{}, category.Slug, category.ID)
		if err != nil {
			return fmt.Errorf("check slug: %w", err)
		}
		if taken {
			return ValidationError("A category with this slug already exists")
		}
		return tx.Omit(clause.Associations).Save(&category).Error
	})
	if err != nil {
		return models.Category{}, err
	}
	s.invalidate(ctx)
	return category, nil
}

// DeleteCategory removes a category together with its products.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Category{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("delete category: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return NotFoundError("Category not found")
		}
		return tx.Where("category_id = ?", id).Delete(&models.Product{}).Error
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (models.Product, error) {
	product := models.Product{
		Title:       strings.TrimSpace(in.Title),
		Slug:        strings.TrimSpace(in.Slug),
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		CategoryID:  in.CategoryID,
		ImageURL:    in.ImageURL,
		IsActive:    in.IsActive == nil || *in.IsActive,
	}
	if product.Title == "" {
		return product, ValidationError("title is required")
	}
	if product.Slug == "" {
		product.Slug = utils.Slugify(product.Title)
	}
	if err := product.Validate(); err != nil {
		return product, ValidationError(err.Error())
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.requireCategory(tx, product.CategoryID); err != nil {
			return err
		}
		taken, err := s.slugTaken(tx, &models.Product{}, product.Slug, uuid.Nil)
		if err != nil {
			return fmt.Errorf("check slug: %w", err)
		}
		if taken {
			return ValidationError("A product with this slug already exists")
		}
		if err := tx.Omit(clause.Associations).Create(&product).Error; err != nil {
			return fmt.Errorf("create product: %w", err)
		}
		// A false is_active would otherwise fall back to the column default.
		if !product.IsActive {
			return tx.Model(&product).Update("is_active", false).Error
		}
		return nil
	})
	if err != nil {
		return models.Product{}, err
	}
	s.invalidate(ctx)
	return product, nil
}

func (s *CatalogService) requireCategory(tx *gorm.DB, id uuid.UUID) error {
	var count int64
	if err := tx.Model(&models.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if count == 0 {
		return ValidationError("Category not found")
	}
	return nil
}

// UpdateProduct replaces the editable fields of a product. Empty title and
// slug keep their current values.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput) (models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundError("Product not found")
			}
			return fmt.Errorf("load product: %w", err)
		}

		if title := strings.TrimSpace(in.Title); title != "" {
			product.Title = title
		}
		if slug := strings.TrimSpace(in.Slug); slug != "" {
			product.Slug = slug
		}
		product.Description = in.Description
		product.Price = in.Price
		product.Stock = in.Stock
		product.ImageURL = in.ImageURL
		if in.CategoryID != uuid.Nil {
			product.CategoryID = in.CategoryID
		}
		if in.IsActive != nil {
			product.IsActive = *in.IsActive
		}

		if err := product.Validate(); err != nil {
			return ValidationError(err.Error())
		}
		if err := s.requireCategory(tx, product.CategoryID); err != nil {
			return err
		}
		taken, err := s.slugTaken(tx, &models.Product{}, product.Slug, product.ID)
		if err != nil {
			return fmt.Errorf("check slug: %w", err)
		}
		if taken {
			return ValidationError("A product with this slug already exists")
		}
		return tx.Omit(clause.Associations).Save(&product).Error
	})
	if err != nil {
		return models.Product{}, err
	}
	s.invalidate(ctx)
	return product, nil
}

// DeactivateProduct hides a product from the storefront without deleting it.
func (s *CatalogService) DeactivateProduct(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return fmt.Errorf("deactivate product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return NotFoundError("Product not found")
	}
	s.invalidate(ctx)
	return nil
}
