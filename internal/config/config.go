package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port string

	// NWSBaseURL overrides the api.weather.gov endpoint, mainly for tests.
	NWSBaseURL string
	// UserAgent is sent on every NWS request; the API rejects anonymous
	// clients.
	UserAgent string

	// Default location served by the legacy *.ics routes.
	DefaultLat float64
	DefaultLon float64
	// AlertZone is the NWS forecast zone for /alerts.ics.
	AlertZone string
	// TimezoneName is the fallback when a gridpoint carries no timezone.
	TimezoneName string

	// Optional geocoding of WEATHER_LOCATION_CITY/COUNTRY at startup.
	GeocoderAPIKey  string
	LocationCity    string
	LocationCountry string

	// Reactive cache tuning.
	ForecastCacheSize  int
	ForecastCacheTTL   time.Duration
	GridpointCacheSize int
	GridpointCacheTTL  time.Duration
	FetchTimeout       time.Duration

	// Soloize feed processing.
	SoloizeTimeout         time.Duration
	SoloizeRefreshInterval time.Duration
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.NWSBaseURL = os.Getenv("NWS_BASE_URL")
	cfg.UserAgent = getenvDefault("NWS_USER_AGENT", "weathercal (github.com/weathercal/weathercal)")

	lat, err := getenvFloat("DEFAULT_LATITUDE", 37.3894)
	if err != nil {
		return nil, err
	}
	lon, err := getenvFloat("DEFAULT_LONGITUDE", -122.0819)
	if err != nil {
		return nil, err
	}
	cfg.DefaultLat = lat
	cfg.DefaultLon = lon

	cfg.AlertZone = getenvDefault("ALERT_ZONE", "CAZ508")
	cfg.TimezoneName = getenvDefault("TIMEZONE", "America/Los_Angeles")

	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")
	cfg.LocationCity = os.Getenv("WEATHER_LOCATION_CITY")
	cfg.LocationCountry = os.Getenv("WEATHER_LOCATION_COUNTRY")

	// Forecast entries go stale within the hour; gridpoint metadata barely
	// moves, so it keeps the upstream's long cache-control lifetime.
	cfg.ForecastCacheSize = getenvInt("FORECAST_CACHE_SIZE", 10)
	cfg.ForecastCacheTTL, err = getenvDuration("FORECAST_CACHE_TTL", "3600s")
	if err != nil {
		return nil, err
	}
	cfg.GridpointCacheSize = getenvInt("GRIDPOINT_CACHE_SIZE", 42)
	cfg.GridpointCacheTTL, err = getenvDuration("GRIDPOINT_CACHE_TTL", "77410s")
	if err != nil {
		return nil, err
	}
	cfg.FetchTimeout, err = getenvDuration("FETCH_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	cfg.SoloizeTimeout, err = getenvDuration("SOLOIZE_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	cfg.SoloizeRefreshInterval, err = getenvDuration("SOLOIZE_REFRESH_INTERVAL", "3h")
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
