package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadEnv(t *testing.T) {
	assert.NoError(t, LoadEnv())
}

func setCritical(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SESSION_SECRET", "session-secret")
	t.Setenv("DATABASE_URL", "test-db-url")
}

func TestValidateEnvAllSet(t *testing.T) {
	setCritical(t)
	assert.NoError(t, ValidateEnv())
}

func TestValidateEnvMissing(t *testing.T) {
	for _, key := range []string{"JWT_SECRET", "SESSION_SECRET", "DATABASE_URL"} {
		t.Run(key, func(t *testing.T) {
			setCritical(t)
			t.Setenv(key, "")
			err := ValidateEnv()
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), key)
			}
		})
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("TEST_GET_ENV_KEY", "test-value")
	assert.Equal(t, "test-value", GetEnv("TEST_GET_ENV_KEY", "default"))

	t.Setenv("TEST_GET_ENV_MISSING", "")
	assert.Equal(t, "fallback", GetEnv("TEST_GET_ENV_MISSING", "fallback"))
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "CATALOG_CACHE_TTL", "SMTP_PORT", "ADMIN_USERNAME", "ADMIN_EMAIL", "ADMIN_PASSWORD", "SEED_SAMPLE_DATA", "AUTH_RATE_LIMIT"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.CatalogCacheTTL)
	assert.Equal(t, "587", cfg.SMTPPort)
	assert.Equal(t, "admin", cfg.AdminUsername)
	assert.Equal(t, "admin123", cfg.AdminPassword)
	assert.False(t, cfg.SeedSampleData)
	assert.Equal(t, 10, cfg.AuthRateLimit)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CATALOG_CACHE_TTL", "30s")
	t.Setenv("SEED_SAMPLE_DATA", "true")
	t.Setenv("AUTH_RATE_LIMIT", "3")

	cfg := Load()
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.CatalogCacheTTL)
	assert.True(t, cfg.SeedSampleData)
	assert.Equal(t, 3, cfg.AuthRateLimit)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("CATALOG_CACHE_TTL", "soon")
	t.Setenv("SEED_SAMPLE_DATA", "maybe")
	t.Setenv("AUTH_RATE_LIMIT", "many")

	cfg := Load()
	assert.Equal(t, 5*time.Minute, cfg.CatalogCacheTTL)
	assert.False(t, cfg.SeedSampleData)
	assert.Equal(t, 10, cfg.AuthRateLimit)
}

func TestCORSOrigins(t *testing.T) {
	assert.Equal(t, []string{"http://localhost:3000"}, Config{}.CORSOrigins())
	assert.Equal(t, []string{"https://shop.example", "https://admin.example"},
		Config{FrontendURL: "https://shop.example", AdminURL: "https://admin.example"}.CORSOrigins())
}

func TestNotifierConfig(t *testing.T) {
	cfg := Config{SMTPHost: "smtp.example", SMTPPort: "25", MailFrom: "shop@example.com", AWSRegion: "eu-west-1"}
	nc := cfg.NotifierConfig()
	assert.Equal(t, "smtp.example", nc.SMTPHost)
	assert.Equal(t, "25", nc.SMTPPort)
	assert.Equal(t, "shop@example.com", nc.From)
	assert.Equal(t, "eu-west-1", nc.AWSRegion)
}
