package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "hub")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "hub")
	t.Setenv("JWT_SECRET", "a-secret-that-is-long-enough-for-hs256!")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, "local", cfg.StorageMode)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.UseS3())
	assert.Contains(t, cfg.DSN(), "host=db")
}

func TestLoadRequiresDatabase(t *testing.T) {
	setRequired(t)
	os.Unsetenv("DB_HOST")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadStorageMode(t *testing.T) {
	setRequired(t)

	t.Setenv("STORAGE_MODE", "s3")
	_, err := Load()
	assert.Error(t, err, "bucket and region are required")

	t.Setenv("S3_BUCKET", "hub-files")
	t.Setenv("S3_REGION", "eu-central-1")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.UseS3())

	t.Setenv("STORAGE_MODE", "ftp")
	_, err = Load()
	assert.Error(t, err)
}
