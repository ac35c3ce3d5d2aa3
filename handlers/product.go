package handlers

import (
	"net/http"

	"storefront-backend/models"
	"storefront-backend/services"
	"storefront-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const listDescriptionLength = 200

type ProductHandler struct {
	Catalog *services.CatalogService
}

func productJSON(p models.Product, description string) gin.H {
	return gin.H{
		"id":          p.ID,
		"title":       p.Title,
		"slug":        p.Slug,
		"description": description,
		"price":       p.Price.InexactFloat64(),
		"stock":       p.Stock,
		"image_url":   p.ImageURL,
		"category": gin.H{
			"name": p.Category.Name,
			"slug": p.Category.Slug,
		},
		"is_in_stock": p.IsInStock(),
	}
}

func (h *ProductHandler) GetProducts(c *gin.Context) {
	result, err := h.Catalog.ListProducts(c.Request.Context(), services.ProductFilter{
		CategorySlug: c.Query("category"),
		MinPrice:     c.Query("min_price"),
		MaxPrice:     c.Query("max_price"),
		Query:        c.Query("q"),
		Page:         c.Query("page"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	products := make([]gin.H, 0, len(result.Products))
	for _, p := range result.Products {
		products = append(products, productJSON(p, utils.Truncate(p.Description, listDescriptionLength)))
	}

	c.JSON(http.StatusOK, gin.H{
		"products":   products,
		"pagination": result.Page,
	})
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.Catalog.GetProduct(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, productJSON(product, product.Description))
}

type productRequest struct {
	Title       string          `json:"title" binding:"required,max=200"`
	Slug        string          `json:"slug" binding:"max=200"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CategoryID  uuid.UUID       `json:"category_id" binding:"required"`
	ImageURL    string          `json:"image_url"`
	IsActive    *bool           `json:"is_active"`
}

func (r productRequest) input() services.ProductInput {
	return services.ProductInput{
		Title:       r.Title,
		Slug:        r.Slug,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		CategoryID:  r.CategoryID,
		ImageURL:    r.ImageURL,
		IsActive:    r.IsActive,
	}
}

// GetProductsPaginated lists active and inactive products for the admin.
func (h *ProductHandler) GetProductsPaginated(c *gin.Context) {
	result, err := h.Catalog.ListAllProducts(c.Request.Context(), c.Query("page"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"products":   result.Products,
		"pagination": result.Page,
	})
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req productRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.Catalog.CreateProduct(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req productRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.Catalog.UpdateProduct(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct hides the product from the storefront; order history keeps it.
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	if err := h.Catalog.DeactivateProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deactivated"})
}
