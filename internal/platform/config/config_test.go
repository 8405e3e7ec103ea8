package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("SESSION_REFRESH_LEAD", "")
	t.Setenv("DOCSTORE_BACKEND", "")

	cfg := FromEnv()

	assert.Equal(t, 60*time.Second, cfg.Session.RefreshLead)
	assert.Equal(t, 3, cfg.Session.RetryBudget)
	assert.Equal(t, 500*time.Millisecond, cfg.Session.RetryDelay)
	assert.Equal(t, "memory", cfg.DocStore.Backend)
	assert.Equal(t, "customers", cfg.DocStore.CustomerCollection)
	assert.Equal(t, "https://securetoken.google.com/pilot-travelcard-webshop", cfg.Identity.Issuer())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("SESSION_REFRESH_LEAD", "90s")
	t.Setenv("SESSION_RETRY_BUDGET", "5")
	t.Setenv("DOCSTORE_BACKEND", "Redis")
	t.Setenv("REDIS_POOL_SIZE", "not-a-number")

	cfg := FromEnv()

	assert.Equal(t, 90*time.Second, cfg.Session.RefreshLead)
	assert.Equal(t, 5, cfg.Session.RetryBudget)
	assert.Equal(t, "redis", cfg.DocStore.Backend)
	assert.Equal(t, 20, cfg.Redis.PoolSize)
}

func TestFromEnv_Lists(t *testing.T) {
	t.Setenv("WEBSHOP_ALLOWED_ORIGINS", "https://shop.example, ,https://www.shop.example")
	t.Setenv("IDENTITY_PHONE_REGION", "")

	cfg := FromEnv()

	assert.Equal(t, []string{"https://shop.example", "https://www.shop.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "NO", cfg.Identity.PhoneRegion)
	assert.Equal(t, 15*time.Second, cfg.ShutdownGrace)
}
