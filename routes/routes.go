package routes

import (
	"time"

	"storefront-backend/cache"
	"storefront-backend/handlers"
	"storefront-backend/middleware"
	"storefront-backend/notifier"
	"storefront-backend/services"
	"storefront-backend/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const SessionCookieName = "storefront_session"

// Deps are the collaborators shared by every handler.
type Deps struct {
	DB           *gorm.DB
	SessionStore sessions.Store
	Cache        cache.CatalogCache
	Notifier     notifier.Notifier

	// AuthRateLimit is the number of login/register attempts allowed per IP per minute.
	AuthRateLimit int
}

func SetupRoutes(r *gin.Engine, deps Deps) {
	utils.RegisterJSONTagNames()

	catalog := services.NewCatalogService(deps.DB, deps.Cache)
	cart := services.NewCartService(deps.DB)

	authHandler := &handlers.AuthHandler{Accounts: services.NewAccountService(deps.DB), Cart: cart}
	productHandler := &handlers.ProductHandler{Catalog: catalog}
	categoryHandler := &handlers.CategoryHandler{Catalog: catalog}
	cartHandler := &handlers.CartHandler{Cart: cart}
	orderHandler := &handlers.OrderHandler{Checkout: services.NewCheckoutService(deps.DB, deps.Notifier)}

	authLimiter := middleware.NewRateLimiter(deps.AuthRateLimit, time.Minute)

	api := r.Group("/api")
	api.Use(sessions.Sessions(SessionCookieName, deps.SessionStore))
	api.Use(middleware.IdentityMiddleware())
	api.Use(middleware.AdoptSessionCart(cart))
	{
		// Auth routes
		api.POST("/auth/register", authLimiter.Middleware(), authHandler.Register)
		api.POST("/auth/login", authLimiter.Middleware(), authHandler.Login)
		api.POST("/auth/logout", authHandler.Logout)

		// Catalog
		api.GET("/products", productHandler.GetProducts)
		api.GET("/products/:slug", productHandler.GetProduct)
		api.GET("/categories", categoryHandler.GetCategories)
		api.GET("/categories/:slug", categoryHandler.GetCategory)

		// Cart: only mutations may open an anonymous session
		api.GET("/cart", cartHandler.GetCart)
		api.POST("/cart/add", middleware.EnsureSession(), cartHandler.AddToCart)
		api.POST("/cart/remove", cartHandler.RemoveFromCart)
		api.PUT("/cart/items/:id", cartHandler.UpdateCartItem)
		api.DELETE("/cart", cartHandler.ClearCart)

		api.POST("/checkout", orderHandler.CreateOrder)
	}

	// Protected routes (require authentication)
	protected := api.Group("")
	protected.Use(middleware.RequireAuth())
	{
		protected.GET("/auth/profile", authHandler.GetProfile)
		protected.GET("/orders", orderHandler.GetOrders)
		protected.GET("/orders/:number", orderHandler.GetOrder)
	}

	// Admin routes (require admin role)
	admin := api.Group("/admin")
	admin.Use(middleware.RequireAuth(), middleware.AdminMiddleware())
	{
		admin.GET("/products", productHandler.GetProductsPaginated)
		admin.POST("/products", productHandler.CreateProduct)
		admin.PUT("/products/:id", productHandler.UpdateProduct)
		admin.DELETE("/products/:id", productHandler.DeleteProduct)

		admin.POST("/categories", categoryHandler.CreateCategory)
		admin.PUT("/categories/:id", categoryHandler.UpdateCategory)
		admin.DELETE("/categories/:id", categoryHandler.DeleteCategory)

		admin.GET("/orders", orderHandler.GetAllOrders)
		admin.PUT("/orders/:id/status", orderHandler.UpdateOrderStatus)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
