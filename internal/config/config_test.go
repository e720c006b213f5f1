// internal/config/config_test.go
package config

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetViper clears viper's global state between tests. Viper is a package
// singleton, so tests that set env vars or config paths must not leak into
// one another.
func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
}

func TestLoadConfigAppliesDefaultsWhenEnvUnset(t *testing.T) {
	resetViper(t)

	cfg, err := LoadConfig(context.Background(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPServerAddress)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 8, cfg.WorkerPoolSize)
	assert.Equal(t, 8, cfg.BatchMaxParallel)
	assert.Equal(t, 200, cfg.MaxFileSizeMB)
	assert.Equal(t, 30*time.Second, cfg.ImageTimeout)
	assert.Equal(t, 60*time.Second, cfg.BatchItemTimeout)
	assert.Equal(t, 45*time.Second, cfg.VideoFrameTimeout)
	assert.Equal(t, 1000, cfg.CacheMaxSize)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, 0.5, cfg.MinOCRConfidence)
	assert.Equal(t, 700, cfg.MinWidthForOCR)
	assert.Equal(t, "eng", cfg.TesseractLang)
}

func TestLoadConfigHonoursEnvironmentOverrides(t *testing.T) {
	resetViper(t)

	t.Setenv("WORKER_POOL_SIZE", "16")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TESSERACT_LANG", "fra")
	t.Setenv("MIN_OCR_CONFIDENCE", "0.75")

	cfg, err := LoadConfig(context.Background(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.WorkerPoolSize)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "fra", cfg.TesseractLang)
	assert.Equal(t, 0.75, cfg.MinOCRConfidence)
}

func TestLoadConfigReturnsErrorOnCancelledContext(t *testing.T) {
	resetViper(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadConfig(ctx, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadConfigEnvironmentDefaultsToEmptyNotDevelopment(t *testing.T) {
	resetViper(t)

	cfg, err := LoadConfig(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.NotEqual(t, DevelopmentEnvironment, cfg.Environment)
}
