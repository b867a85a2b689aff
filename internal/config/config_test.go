package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gosseract", cfg.OCR.Engine)
	assert.Equal(t, "eng", cfg.OCR.Language)
	assert.GreaterOrEqual(t, cfg.OCR.Workers, 1)
	assert.Equal(t, 150, cfg.Render.DPI)
	assert.False(t, cfg.Render.KeepImages)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "text", cfg.Logger.Format)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PDFOCR_ENGINE", "tesseract")
	t.Setenv("PDFOCR_LANGUAGE", "eng+deu")
	t.Setenv("PDFOCR_DPI", "300")
	t.Setenv("PDFOCR_KEEP_IMAGES", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "tesseract", cfg.OCR.Engine)
	assert.Equal(t, "eng+deu", cfg.OCR.Language)
	assert.Equal(t, 300, cfg.Render.DPI)
	assert.True(t, cfg.Render.KeepImages)
}

func TestLoadClampsBadValues(t *testing.T) {
	t.Setenv("PDFOCR_WORKERS", "0")
	t.Setenv("PDFOCR_DPI", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.OCR.Workers)
	assert.Equal(t, 72, cfg.Render.DPI)
}
