package handlers

import (
	"fmt"
	"log"
	"net/http"

	"storefront-backend/middleware"
	"storefront-backend/models"
	"storefront-backend/services"
	"storefront-backend/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	Accounts *services.AccountService
	Cart     *services.CartService
}

func userJSON(user models.User) gin.H {
	return gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	}
}

// startSession runs after a successful login or registration: the anonymous
// cart is merged into the user cart, then the session switches to the user.
// A failed merge leaves the session untouched so the guest cart survives.
func (h *AuthHandler) startSession(c *gin.Context, user models.User, status int, message string) {
	anonymous := middleware.CurrentIdentity(c).SessionID
	if err := h.Cart.MergeSessionCart(c.Request.Context(), anonymous, user.ID); err != nil {
		respondError(c, fmt.Errorf("merge cart of session into user %s: %w", user.ID, err))
		return
	}

	if err := middleware.LoginSession(c, user.ID, user.Role); err != nil {
		log.Printf("Failed to save session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(status, gin.H{
		"success": true,
		"message": message,
		"user":    userJSON(user),
		"token":   token,
	})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.Accounts.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.startSession(c, user, http.StatusOK, "Registration successful")
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.Accounts.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.startSession(c, user, http.StatusOK, "Login successful")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := middleware.LogoutSession(c); err != nil {
		log.Printf("Failed to clear session: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logout successful"})
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	id := middleware.CurrentIdentity(c)
	user, err := h.Accounts.GetUser(c.Request.Context(), *id.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"role":       user.Role,
		"created_at": user.CreatedAt,
	})
}
