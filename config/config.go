package config

import (
	"time"

	"skywatch/common"
	"skywatch/view"

	"github.com/apex/log"
	"github.com/joho/godotenv"
)

const DefaultAPIBase = "http://127.0.0.1:8000"

type Config struct {
	// Backend
	APIBase        string
	LoadLimit      int
	ListLimit      int
	RequestTimeout time.Duration // zero means unbounded
	RetryAttempts  int
	RetryBackoff   time.Duration
	RateLimit      float64 // requests per second, zero disables

	// Geolocation
	GeolocationURL string
	StaticPosition *view.Position
	GeoTimeout     time.Duration

	// Surfaces
	MarkersFile string
	Addr        string

	LogLevel string
	LogFile  string
}

// Load reads the configuration from the environment. An optional .env file
// in the working directory is applied first without overriding variables
// that are already set.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug(".env file not found, using system environment variables")
	}

	cfg := &Config{
		APIBase:        common.EnvString([]string{"SKYWATCH_API_BASE", "API_BASE"}, DefaultAPIBase),
		LoadLimit:      common.EnvInt([]string{"SKYWATCH_LOAD_LIMIT"}, 200),
		ListLimit:      common.EnvInt([]string{"SKYWATCH_LIST_LIMIT"}, 20),
		RequestTimeout: time.Duration(common.EnvInt([]string{"SKYWATCH_REQUEST_TIMEOUT_SEC"}, 0)) * time.Second,
		RetryAttempts:  common.EnvInt([]string{"SKYWATCH_RETRY_ATTEMPTS"}, 1),
		RetryBackoff:   time.Duration(common.EnvInt([]string{"SKYWATCH_RETRY_BACKOFF_MS"}, 500)) * time.Millisecond,
		GeolocationURL: common.EnvString([]string{"SKYWATCH_GEOLOCATION_URL"}, ""),
		GeoTimeout:     time.Duration(common.EnvInt([]string{"SKYWATCH_GEOLOCATION_TIMEOUT_SEC"}, 10)) * time.Second,
		MarkersFile:    common.EnvString([]string{"SKYWATCH_MARKERS_FILE"}, "markers.geojson"),
		Addr:           common.EnvString([]string{"SKYWATCH_ADDR"}, ":8080"),
		LogLevel:       common.EnvString([]string{"LOG_LEVEL"}, "info"),
		LogFile:        common.EnvString([]string{"SKYWATCH_LOG_FILE"}, ""),
	}
	if r, ok := common.EnvFloat([]string{"SKYWATCH_RATE_LIMIT"}); ok && r > 0 {
		cfg.RateLimit = r
	}

	lat, latOK := common.EnvFloat([]string{"SKYWATCH_STATIC_LAT"})
	lon, lonOK := common.EnvFloat([]string{"SKYWATCH_STATIC_LON"})
	if latOK && lonOK {
		cfg.StaticPosition = &view.Position{Latitude: lat, Longitude: lon}
	}
	return cfg
}
