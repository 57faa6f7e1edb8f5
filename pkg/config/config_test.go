package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultImageModel, cfg.ImageModel)
	assert.Equal(t, DefaultHistoryLimit, cfg.HistoryLimit)
	assert.Equal(t, DefaultSelectionLimit, cfg.SelectionLimit)
	assert.Equal(t, DefaultStoreCapacity, cfg.StoreCapacity)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Empty(t, cfg.BaseURL)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("NANOBANANA_BASE_URL", "https://api.example.com")
	t.Setenv("GEMINI_API_KEY", "key-123")
	t.Setenv("IMAGE_GEMINI_MODEL", "gemini-custom")

	cfg := LoadConfig()

	assert.Equal(t, "https://api.example.com", cfg.BaseURL)
	assert.Equal(t, "key-123", cfg.GeminiAPIKey)
	assert.Equal(t, "gemini-custom", cfg.ImageModel)
}
