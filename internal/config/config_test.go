package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)

	assert.Equal(t, 500*time.Millisecond, cfg.Pipeline.Delay)
	assert.Equal(t, 55, cfg.Pipeline.QualityThreshold)
	assert.Equal(t, 4, cfg.Pipeline.GallerySize)
	assert.Equal(t, 15*time.Second, cfg.Pipeline.CallTimeout)
	assert.Equal(t, "Sola-ImagePipeline/1.0", cfg.Pipeline.UserAgent)

	assert.Equal(t, "file", cfg.Cache.Backend)
	assert.Equal(t, ".image-cache", cfg.Cache.Dir)
	assert.Equal(t, 72*time.Hour, cfg.Cache.MaxAge)

	assert.Equal(t, "sola-images", cfg.Storage.Bucket)
	assert.Equal(t, 10, cfg.Postgres.MaxOpen)
}
