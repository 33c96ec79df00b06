package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/palate")
		t.Setenv("JWT_SECRET", "test-secret")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.ServerPort)
		assert.Equal(t, "localhost:6379", cfg.RedisAddr())
		assert.Equal(t, "https://api.openai.com/v1/chat/completions", cfg.OpenAIAPIURL)
		assert.Equal(t, "https://api.unsplash.com/search/photos", cfg.UnsplashAPIURL)
		assert.Empty(t, cfg.OpenAIAPIKey)
		assert.Empty(t, cfg.CORSOrigins)
	})

	t.Run("missing database url", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret")
		t.Setenv("DATABASE_URL", "")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("missing jwt secret", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/palate")
		t.Setenv("JWT_SECRET", "")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("cors origins are split and trimmed", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/palate")
		t.Setenv("JWT_SECRET", "test-secret")
		t.Setenv("CORS_ORIGINS", "https://app.example.com, https://staging.example.com ,")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, []string{"https://app.example.com", "https://staging.example.com"}, cfg.CORSOrigins)
	})

	t.Run("secrets from files", func(t *testing.T) {
		dir := t.TempDir()
		secretPath := filepath.Join(dir, "jwt_secret")
		require.NoError(t, os.WriteFile(secretPath, []byte("file-secret\n"), 0600))

		t.Setenv("DATABASE_URL", "postgres://localhost/palate")
		t.Setenv("JWT_SECRET", "")
		t.Setenv("JWT_SECRET_FILE", secretPath)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "file-secret", cfg.JWTSecret, "file values are trimmed")
	})

	t.Run("environment wins over file", func(t *testing.T) {
		dir := t.TempDir()
		secretPath := filepath.Join(dir, "jwt_secret")
		require.NoError(t, os.WriteFile(secretPath, []byte("file-secret"), 0600))

		t.Setenv("DATABASE_URL", "postgres://localhost/palate")
		t.Setenv("JWT_SECRET", "env-secret")
		t.Setenv("JWT_SECRET_FILE", secretPath)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "env-secret", cfg.JWTSecret)
	})

	t.Run("invalid redis db", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/palate")
		t.Setenv("JWT_SECRET", "test-secret")
		t.Setenv("REDIS_DB", "not-a-number")

		_, err := Load()
		assert.Error(t, err)
	})
}
