package handlers

import (
	"net/http"

	"storefront-backend/middleware"
	"storefront-backend/models"
	"storefront-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CartHandler struct {
	Cart *services.CartService
}

func cartLineJSON(item models.CartItem) gin.H {
	return gin.H{
		"id": item.ID,
		"product": gin.H{
			"id":        item.Product.ID,
			"title":     item.Product.Title,
			"slug":      item.Product.Slug,
			"image_url": item.Product.ImageURL,
		},
		"quantity": item.Quantity,
		"price":    item.PriceSnapshot.InexactFloat64(),
		"total":    item.LineTotal().InexactFloat64(),
	}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.Cart.List(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]gin.H, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, cartLineJSON(item))
	}

	c.JSON(http.StatusOK, gin.H{
		"items":      items,
		"total":      cart.Total.InexactFloat64(),
		"item_count": cart.ItemCount,
	})
}

func (h *CartHandler) AddToCart(c *gin.Context) {
	var req struct {
		ProductID uuid.UUID `json:"product_id" binding:"required"`
		Quantity  *int      `json:"quantity"`
	}
	if !bindJSON(c, &req) {
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	item, err := h.Cart.Add(c.Request.Context(), middleware.CurrentIdentity(c), req.ProductID, quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Product added to cart",
		"cart_item": gin.H{
			"id":            item.ID,
			"product_title": item.Product.Title,
			"quantity":      item.Quantity,
			"price":         item.PriceSnapshot.InexactFloat64(),
		},
	})
}

func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	var req struct {
		CartItemID uuid.UUID `json:"cart_item_id" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	if err := h.Cart.Remove(c.Request.Context(), middleware.CurrentIdentity(c), req.CartItemID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product removed from cart"})
}

func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Quantity int `json:"quantity" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.Cart.UpdateQuantity(c.Request.Context(), middleware.CurrentIdentity(c), id, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartLineJSON(item))
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.Cart.Clear(c.Request.Context(), middleware.CurrentIdentity(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cart cleared"})
}
