package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"SKYWATCH_API_BASE", "API_BASE", "SKYWATCH_LOAD_LIMIT", "SKYWATCH_LIST_LIMIT",
	"SKYWATCH_REQUEST_TIMEOUT_SEC", "SKYWATCH_RETRY_ATTEMPTS", "SKYWATCH_RETRY_BACKOFF_MS",
	"SKYWATCH_RATE_LIMIT", "SKYWATCH_GEOLOCATION_URL", "SKYWATCH_GEOLOCATION_TIMEOUT_SEC",
	"SKYWATCH_STATIC_LAT", "SKYWATCH_STATIC_LON", "SKYWATCH_MARKERS_FILE", "SKYWATCH_ADDR",
	"LOG_LEVEL", "SKYWATCH_LOG_FILE",
}

func clearEnv(t *testing.T) {
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()

	assert.Equal(t, DefaultAPIBase, cfg.APIBase)
	assert.Equal(t, 200, cfg.LoadLimit)
	assert.Equal(t, 20, cfg.ListLimit)
	assert.Equal(t, time.Duration(0), cfg.RequestTimeout)
	assert.Equal(t, 1, cfg.RetryAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryBackoff)
	assert.Equal(t, 10*time.Second, cfg.GeoTimeout)
	assert.Zero(t, cfg.RateLimit)
	assert.Nil(t, cfg.StaticPosition)
	assert.Equal(t, "markers.geojson", cfg.MarkersFile)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SKYWATCH_API_BASE", "https://skywatch.example.org")
	t.Setenv("SKYWATCH_REQUEST_TIMEOUT_SEC", "15")
	t.Setenv("SKYWATCH_RETRY_ATTEMPTS", "3")
	t.Setenv("SKYWATCH_RATE_LIMIT", "2.5")
	t.Setenv("SKYWATCH_STATIC_LAT", "-33.9")
	t.Setenv("SKYWATCH_STATIC_LON", "18.4")

	cfg := Load()
	assert.Equal(t, "https://skywatch.example.org", cfg.APIBase)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.Equal(t, 2.5, cfg.RateLimit)
	require.NotNil(t, cfg.StaticPosition)
	assert.Equal(t, -33.9, cfg.StaticPosition.Latitude)
	assert.Equal(t, 18.4, cfg.StaticPosition.Longitude)
}

func TestLoad_StaticPositionNeedsBothCoordinates(t *testing.T) {
	clearEnv(t)
	t.Setenv("SKYWATCH_STATIC_LAT", "-33.9")
	assert.Nil(t, Load().StaticPosition)
}
