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
	assert.Equal(t, 8080, cfg.HTTP.Port)

	// Pool bounds mirror the legacy deployment: 1..10 connections.
	assert.Equal(t, 10, cfg.Postgres.MaxOpen)
	assert.Equal(t, 1, cfg.Postgres.MaxIdle)

	assert.Equal(t, "codemint-barcodes", cfg.Storage.BucketBarcode)
	assert.Equal(t, "codemint-qrcodes", cfg.Storage.BucketQR)
	assert.Equal(t, "barcodes", cfg.Storage.FolderBarcode)
	assert.Equal(t, "qrcodes", cfg.Storage.FolderQR)
	assert.False(t, cfg.Storage.CompensateOnDBError, "legacy behaviour keeps orphans by default")

	assert.Equal(t, 256, cfg.Render.QRSize)
	assert.Equal(t, 10*time.Minute, cfg.Redis.ScanTTL)
	assert.False(t, cfg.Sweeper.Enabled)
}
