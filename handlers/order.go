package handlers

import (
	"net/http"

	"storefront-backend/middleware"
	"storefront-backend/models"
	"storefront-backend/services"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	Checkout *services.CheckoutService
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var contact services.Contact
	if !bindJSON(c, &contact) {
		return
	}

	receipt, err := h.Checkout.Checkout(c.Request.Context(), middleware.CurrentIdentity(c), contact)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order placed successfully",
		"order": gin.H{
			"order_number": receipt.OrderNumber,
			"total":        receipt.Total.InexactFloat64(),
			"status":       receipt.StatusLabel,
		},
	})
}

func (h *OrderHandler) GetOrders(c *gin.Context) {
	id := middleware.CurrentIdentity(c)
	orders, err := h.Checkout.ListOrders(c.Request.Context(), *id.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.Checkout.GetOrder(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// GetAllOrders is the admin listing, filtered by ?status= when given.
func (h *OrderHandler) GetAllOrders(c *gin.Context) {
	orders, page, err := h.Checkout.ListAllOrders(c.Request.Context(), c.Query("status"), c.Query("page"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "pagination": page})
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.Checkout.UpdateStatus(c.Request.Context(), id, models.OrderStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
