package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, "mongodb://127.0.0.1:27017", cfg.MongoURI)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.AllowAllOrigins())
	assert.False(t, cfg.CacheEnabled())
	assert.True(t, cfg.MetricsEnabled)
	assert.True(t, cfg.IsDevelopment())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "8081")
	t.Setenv("STORE_DRIVER", " Memory ")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.True(t, cfg.CacheEnabled())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.AllowAllOrigins())
	assert.False(t, cfg.MetricsEnabled)
	assert.False(t, cfg.IsDevelopment())
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad port", key: "PORT", value: "abc"},
		{name: "port out of range", key: "PORT", value: "70000"},
		{name: "unknown driver", key: "STORE_DRIVER", value: "sqlite"},
		{name: "bad duration", key: "STORE_TIMEOUT", value: "soon"},
		{name: "zero body limit", key: "MAX_BODY_BYTES", value: "0"},
		{name: "origin without scheme", key: "CORS_ALLOWED_ORIGINS", value: "example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
