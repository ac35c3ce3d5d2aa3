package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"storefront-backend/notifier"

	"github.com/joho/godotenv"
)

// Config is the runtime configuration read from the environment.
type Config struct {
	Port          string
	DatabaseURL   string
	SessionSecret string
	FrontendURL   string
	AdminURL      string

	RedisAddr       string
	RedisPassword   string
	CatalogCacheTTL time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	AdminUsername string
	AdminEmail    string
	AdminPassword string

	SeedSampleData bool
	AuthRateLimit  int
}

func LoadEnv() error {
	// A missing .env is normal in production where variables are set directly.
	if err := godotenv.Load(); err != nil {
		return nil
	}
	return nil
}

// ValidateEnv checks that critical environment variables are set.
func ValidateEnv() error {
	var missing []string

	for _, key := range []string{"JWT_SECRET", "SESSION_SECRET", "DATABASE_URL"} {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("critical environment variables not set: %v", missing)
	}

	if os.Getenv("FRONTEND_URL") == "" {
		log.Println("WARNING: FRONTEND_URL not set - CORS may not work correctly")
	}
	if os.Getenv("REDIS_ADDR") == "" {
		log.Println("WARNING: REDIS_ADDR not set - catalog caching disabled")
	}
	if os.Getenv("AWS_REGION") == "" && os.Getenv("SMTP_HOST") == "" {
		log.Println("WARNING: neither AWS_REGION nor SMTP_HOST set - order emails will only be logged")
	}

	return nil
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("WARNING: %s=%q is not a number, using %d", key, raw, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("WARNING: %s=%q is not a boolean, using %t", key, raw, defaultValue)
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("WARNING: %s=%q is not a valid duration, using %s", key, raw, defaultValue)
		return defaultValue
	}
	return d
}

// Load reads the full configuration, applying defaults for optional values.
func Load() Config {
	return Config{
		Port:          GetEnv("PORT", "8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		FrontendURL:   os.Getenv("FRONTEND_URL"),
		AdminURL:      os.Getenv("ADMIN_URL"),

		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		CatalogCacheTTL: getEnvDuration("CATALOG_CACHE_TTL", 5*time.Minute),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     GetEnv("SMTP_PORT", "587"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     os.Getenv("SMTP_FROM"),

		AWSRegion:          os.Getenv("AWS_REGION"),
		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),

		AdminUsername: GetEnv("ADMIN_USERNAME", "admin"),
		AdminEmail:    GetEnv("ADMIN_EMAIL", "admin@storefront.local"),
		AdminPassword: GetEnv("ADMIN_PASSWORD", "admin123"),

		SeedSampleData: getEnvBool("SEED_SAMPLE_DATA", false),
		AuthRateLimit:  getEnvInt("AUTH_RATE_LIMIT", 10),
	}
}

// CORSOrigins lists the configured frontend origins, defaulting to localhost.
func (c Config) CORSOrigins() []string {
	var origins []string
	for _, o := range []string{c.FrontendURL, c.AdminURL} {
		if o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		log.Println("WARNING: No CORS origins configured, defaulting to http://localhost:3000")
		origins = []string{"http://localhost:3000"}
	}
	return origins
}

func (c Config) NotifierConfig() notifier.Config {
	return notifier.Config{
		SMTPHost:           c.SMTPHost,
		SMTPPort:           c.SMTPPort,
		SMTPUsername:       c.SMTPUsername,
		SMTPPassword:       c.SMTPPassword,
		From:               c.MailFrom,
		AWSRegion:          c.AWSRegion,
		AWSAccessKeyID:     c.AWSAccessKeyID,
		AWSSecretAccessKey: c.AWSSecretAccessKey,
	}
}
