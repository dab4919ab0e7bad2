//go:build integration
// +build integration

package client_test

import (
	"context"
	"testing"

	"github.com/kjstillabower/weather-cli/internal/testhelpers"
)

func TestOpenWeatherClient_ValidateAPIKey_Integration(t *testing.T) {
	cfg := testhelpers.GetIntegrationConfig(t)
	c := testhelpers.SetupIntegrationClient(t, cfg)

	ctx := context.Background()
	if err := c.ValidateAPIKey(ctx); err != nil {
		t.Errorf("ValidateAPIKey() error = %v, want nil (API key may not be activated yet)", err)
	}
}

func TestOpenWeatherClient_Geocode_Integration(t *testing.T) {
	cfg := testhelpers.GetIntegrationConfig(t)
	c := testhelpers.SetupIntegrationClient(t, cfg)

	ctx := context.Background()
	coord, err := c.Geocode(ctx, "London", "GB")
	if err != nil {
		t.Fatalf("Geocode() error = %v (API key may not be activated yet)", err)
	}
	if !coord.Valid() {
		t.Errorf("Geocode() = %+v, want valid coordinates", coord)
	}
}

func TestOpenWeatherClient_GetCurrentWeather_Integration(t *testing.T) {
	cfg := testhelpers.GetIntegrationConfig(t)
	c := testhelpers.SetupIntegrationClient(t, cfg)

	ctx := context.Background()
	coord, err := c.Geocode(ctx, "London", "GB")
	if err != nil {
		t.Fatalf("Geocode() error = %v (API key may not be activated yet)", err)
	}

	weather, err := c.GetCurrentWeather(ctx, coord)
	if err != nil {
		t.Fatalf("GetCurrentWeather() error = %v", err)
	}
	if weather.Conditions == "" {
		t.Error("GetCurrentWeather() returned empty conditions")
	}
}

func TestOpenWeatherClient_GetForecast_Integration(t *testing.T) {
	cfg := testhelpers.GetIntegrationConfig(t)
	c := testhelpers.SetupIntegrationClient(t, cfg)

	ctx := context.Background()
	coord, err := c.Geocode(ctx, "London", "GB")
	if err != nil {
		t.Fatalf("Geocode() error = %v (API key may not be activated yet)", err)
	}

	days, err := c.GetForecast(ctx, coord)
	if err != nil {
		t.Fatalf("GetForecast() error = %v", err)
	}
	if len(days) == 0 {
		t.Fatal("GetForecast() returned no days")
	}
	for _, d := range days {
		if d.Date == "" {
			t.Errorf("GetForecast() day has empty date: %+v", d)
		}
	}
}
