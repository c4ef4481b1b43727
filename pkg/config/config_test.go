package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "STORAGE", "MONGO_DATABASE", "AUTH_PROVIDER", "ENFORCE_OWNERSHIP", "REQUEST_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, StorageMongo, cfg.Storage)
	assert.Equal(t, "blog", cfg.MongoDatabase)
	assert.Equal(t, AuthProviderJWT, cfg.AuthProvider)
	assert.False(t, cfg.EnforceOwnership)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("STORAGE", StorageMemory)
	t.Setenv("ENFORCE_OWNERSHIP", "true")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")

	cfg := Load()
	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.True(t, cfg.EnforceOwnership)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}
