package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("APP_ENV", "")
	t.Setenv("STORAGE_DRIVER", "")

	cfg := Load()

	assert.Equal(t, "development", cfg.AppEnv)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, StorageDriverDisk, cfg.StorageDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 6, cfg.MaxUploadFiles)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("JWT_EXPIRY", "forever")
	t.Setenv("MAX_UPLOAD_FILES", "-3")

	cfg := Load()

	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 6, cfg.MaxUploadFiles)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("APP_ENV", "production")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("JWT_EXPIRY", "2h")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.EqualValues(t, 1024, cfg.MaxUploadBytes)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
}

func TestLoadMaintenanceSkipsSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORAGE_DRIVER", "")

	cfg := LoadMaintenance()

	assert.Empty(t, cfg.JWTSecret)
	assert.Equal(t, "./data/files", cfg.StorageRoot)
}
