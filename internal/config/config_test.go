package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "shopcore.events", cfg.RabbitMQExchange)
	assert.Equal(t, 5*time.Minute, cfg.ProductCacheTTL)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.MinioEndpoint)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("APP_PORT", ":9090")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("PRODUCT_CACHE_TTL", "30s")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.AppPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 30*time.Second, cfg.ProductCacheTTL)
	assert.True(t, cfg.MinioUseSSL)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := "APP_PORT: \":7070\"\nREDIS_ADDR: \"localhost:6379\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.AppPort)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)

	// The environment wins over the file.
	t.Setenv("APP_PORT", ":6060")
	cfg, err = Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ":6060", cfg.AppPort)
}

func TestLoad_MissingFileIsFine(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.NoError(t, err)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("PRODUCT_CACHE_TTL", "0s")
	_, err := Load("")
	assert.Error(t, err)
}
