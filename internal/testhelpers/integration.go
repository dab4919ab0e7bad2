//go:build integration
// +build integration

package testhelpers

import (
	"os"
	"testing"
	"time"

	"github.com/kjstillabower/weather-cli/internal/cache"
	"github.com/kjstillabower/weather-cli/internal/client"
	"github.com/kjstillabower/weather-cli/internal/config"
)

// IntegrationConfig holds configuration for live-API integration tests.
type IntegrationConfig struct {
	APIKey string
	APIURL string
	GeoURL string
}

// GetIntegrationConfig loads integration test configuration from environment.
// Skips the test if OPENWEATHER_API_KEY is not set.
func GetIntegrationConfig(t *testing.T) IntegrationConfig {
	t.Helper()

	apiKey := os.Getenv("OPENWEATHER_API_KEY")
	if apiKey == "" {
		t.Skip("OPENWEATHER_API_KEY not set, skipping integration test")
	}

	apiURL := os.Getenv("WEATHER_API_URL")
	if apiURL == "" {
		apiURL = config.DefaultAPIURL
	}
	geoURL := os.Getenv("WEATHER_GEO_URL")
	if geoURL == "" {
		geoURL = config.DefaultGeoURL
	}
	return IntegrationConfig{
		APIKey: apiKey,
		APIURL: apiURL,
		GeoURL: geoURL,
	}
}

// SetupIntegrationClient creates a weather client against the live API.
func SetupIntegrationClient(t *testing.T, cfg IntegrationConfig) *client.OpenWeatherClient {
	t.Helper()

	c, err := client.NewOpenWeatherClient(client.Options{
		APIKey:  cfg.APIKey,
		APIURL:  cfg.APIURL,
		GeoURL:  cfg.GeoURL,
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewOpenWeatherClient() error = %v", err)
	}
	return c
}

// SetupMemcached creates a memcached-backed cache against MEMCACHED_ADDRS,
// defaulting to localhost:11211. Reachability is probed by the caller's
// first operation.
func SetupMemcached(t *testing.T) *cache.MemcachedCache {
	t.Helper()

	addrs := os.Getenv("MEMCACHED_ADDRS")
	if addrs == "" {
		addrs = "localhost:11211"
	}
	mc, err := cache.NewMemcachedCache(addrs, 500*time.Millisecond, 2)
	if err != nil {
		t.Fatalf("NewMemcachedCache() error = %v", err)
	}
	t.Cleanup(func() { _ = mc.Close() })
	return mc
}
