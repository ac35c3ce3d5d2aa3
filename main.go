package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-backend/cache"
	"storefront-backend/config"
	"storefront-backend/database"
	"storefront-backend/notifier"
	"storefront-backend/routes"
	"storefront-backend/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	sessionMaxAge   = 14 * 24 * time.Hour
	shutdownTimeout = 30 * time.Second
)

func main() {
	if err := config.LoadEnv(); err != nil {
		log.Fatal("Error loading .env file:", err)
	}
	if err := config.ValidateEnv(); err != nil {
		log.Fatal("Environment validation failed: ", err)
	}
	cfg := config.Load()

	db := bootstrapDatabase(cfg)
	catalogCache, redisClient := openCatalogCache(cfg)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	routes.SetupRoutes(r, routes.Deps{
		DB:            db,
		SessionStore:  newSessionStore(cfg),
		Cache:         catalogCache,
		Notifier:      notifier.New(context.Background(), cfg.NotifierConfig()),
		AuthRateLimit: cfg.AuthRateLimit,
	})

	serve(&http.Server{Addr: ":" + cfg.Port, Handler: r})

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing redis client: %v", err)
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("Error closing database connection: %v", err)
		} else {
			log.Println("Database connection closed")
		}
	}
	log.Println("Server exited gracefully")
}

// bootstrapDatabase connects, migrates and seeds. Seeding failures only warn.
func bootstrapDatabase(cfg config.Config) *gorm.DB {
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	if cfg.SeedSampleData {
		if err := database.SeedSampleData(db); err != nil {
			log.Printf("Warning: Could not seed sample data: %v", err)
		}
	}

	created, err := services.NewAccountService(db).EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword)
	switch {
	case err != nil:
		log.Printf("Warning: Could not create default admin: %v", err)
	case created:
		log.Printf("Default admin %q created", cfg.AdminUsername)
	}
	return db
}

// openCatalogCache falls back to the no-op cache when redis is unset or down.
func openCatalogCache(cfg config.Config) (cache.CatalogCache, *redis.Client) {
	if cfg.RedisAddr == "" {
		return cache.NoopCache{}, nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis unreachable at %s, catalog cache disabled: %v", cfg.RedisAddr, err)
		client.Close()
		return cache.NoopCache{}, nil
	}
	return cache.NewRedisCache(client, cfg.CatalogCacheTTL), client
}

func newSessionStore(cfg config.Config) sessions.Store {
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(sessionMaxAge / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return store
}

// serve blocks until SIGINT or SIGTERM, then drains in-flight requests.
func serve(srv *http.Server) {
	go func() {
		log.Printf("Server starting on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}
}
