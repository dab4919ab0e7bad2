package format

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/kjstillabower/weather-cli/internal/models"
)

func fp(v float64) *float64 { return &v }

func sampleCurrent() models.CurrentWeather {
	return models.CurrentWeather{
		City:        "Puchong",
		Country:     "MY",
		Temperature: 28.5,
		Conditions:  "Scattered clouds",
		Humidity:    65,
		Pressure:    1009,
		WindSpeed:   3.2,
		Timestamp:   time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
	}
}

func sampleForecast() []models.DailyForecast {
	return []models.DailyForecast{
		{Date: "2024-01-16", TempMin: fp(25.0), TempMax: fp(30.0), Conditions: "Clouds"},
		{Date: "2024-01-17", TempMin: fp(24.5), TempMax: fp(31.2), Conditions: "Light rain"},
	}
}

func TestCurrent_Metric(t *testing.T) {
	got := New("metric").Current(sampleCurrent())

	if !strings.Contains(got, "Current: 28.5°C - Scattered clouds") {
		t.Errorf("missing current line, got:\n%s", got)
	}
	if !strings.Contains(got, "Humidity: 65%") {
		t.Errorf("missing humidity, got:\n%s", got)
	}
	// 3.2 m/s * 3.6 = 11.5 km/h
	if !strings.Contains(got, "Wind: 11.5 km/h") {
		t.Errorf("missing wind in km/h, got:\n%s", got)
	}
	if !strings.Contains(got, "Pressure: 1009hPa") {
		t.Errorf("missing pressure, got:\n%s", got)
	}
}

func TestCurrent_Imperial(t *testing.T) {
	got := New("imperial").Current(sampleCurrent())

	// 28.5C = 83.3F
	if !strings.Contains(got, "Current: 83.3°F - Scattered clouds") {
		t.Errorf("temperature not converted, got:\n%s", got)
	}
	// 3.2 m/s * 2.237 = 7.2 mph
	if !strings.Contains(got, "Wind: 7.2 mph") {
		t.Errorf("wind not converted, got:\n%s", got)
	}
}

func TestCurrent_OmitsAbsentDetails(t *testing.T) {
	cw := models.CurrentWeather{Temperature: 10, Conditions: "Clear sky"}
	got := New("metric").Current(cw)

	if strings.Contains(got, "Humidity") || strings.Contains(got, "Wind") || strings.Contains(got, "Pressure") {
		t.Errorf("absent details rendered, got:\n%s", got)
	}
}

func TestCurrent_UnknownConditions(t *testing.T) {
	got := New("metric").Current(models.CurrentWeather{Temperature: 10})
	if !strings.Contains(got, "- Unknown") {
		t.Errorf("missing Unknown placeholder, got:\n%s", got)
	}
}

func TestForecast(t *testing.T) {
	got := New("metric").Forecast(sampleForecast())

	lines := strings.Split(got, "\n")
	if lines[0] != "Forecast:" {
		t.Errorf("first line = %q, want Forecast:", lines[0])
	}
	if !strings.Contains(got, "Tue 16 Jan: 25°C - 30°C | Clouds") {
		t.Errorf("missing day line, got:\n%s", got)
	}
	if !strings.Contains(got, "Wed 17 Jan: 24.5°C - 31.2°C | Light rain") {
		t.Errorf("missing second day line, got:\n%s", got)
	}
}

func TestForecast_Empty(t *testing.T) {
	got := New("metric").Forecast(nil)
	if got != "No forecast data available" {
		t.Errorf("got %q", got)
	}
}

func TestForecast_PartialTemps(t *testing.T) {
	f := New("metric")
	tests := []struct {
		name string
		day  models.DailyForecast
		want string
	}{
		{"min only", models.DailyForecast{Date: "2024-01-16", TempMin: fp(25), Conditions: "X"}, "25°C"},
		{"max only", models.DailyForecast{Date: "2024-01-16", TempMax: fp(30), Conditions: "X"}, "30°C"},
		{"none", models.DailyForecast{Date: "2024-01-16", Conditions: "X"}, "No temp data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.Forecast([]models.DailyForecast{tt.day})
			if !strings.Contains(got, tt.want) {
				t.Errorf("got %q, want substring %q", got, tt.want)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	report := models.Report{
		Current:   sampleCurrent(),
		Forecast:  sampleForecast(),
		FetchedAt: time.Now(),
	}
	got := New("metric").Summary(report)

	if !strings.HasPrefix(got, "Location: Puchong, MY") {
		t.Errorf("missing location header, got:\n%s", got)
	}
	if !strings.Contains(got, "Current: 28.5°C") {
		t.Errorf("missing current section, got:\n%s", got)
	}
	if !strings.Contains(got, "Forecast:") {
		t.Errorf("missing forecast section, got:\n%s", got)
	}
}

func TestSummary_NoLocation(t *testing.T) {
	report := models.Report{Current: models.CurrentWeather{Temperature: 5, Conditions: "Snow"}}
	got := New("metric").Summary(report)
	if strings.Contains(got, "Location:") {
		t.Errorf("location header rendered without city, got:\n%s", got)
	}
}

func TestTable(t *testing.T) {
	got := New("metric").Table(sampleForecast())

	if !strings.Contains(got, "Date") || !strings.Contains(got, "Weather") || !strings.Contains(got, "Temp Range") {
		t.Errorf("missing header, got:\n%s", got)
	}
	if !strings.Contains(got, "25°C-30°C") {
		t.Errorf("missing temp range, got:\n%s", got)
	}
	if !strings.Contains(got, strings.Repeat("-", 50)) {
		t.Errorf("missing rule, got:\n%s", got)
	}
}

func TestTable_Empty(t *testing.T) {
	if got := New("metric").Table(nil); got != "No forecast data" {
		t.Errorf("got %q", got)
	}
}

func TestJSON_RoundTrips(t *testing.T) {
	report := models.Report{
		Current:   sampleCurrent(),
		Forecast:  sampleForecast(),
		FetchedAt: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
	}

	out, err := New("metric").JSON(report)
	if err != nil {
		t.Fatalf("JSON() error = %v", err)
	}

	var decoded models.Report
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Current.City != "Puchong" {
		t.Errorf("City = %q after round trip", decoded.Current.City)
	}
	if len(decoded.Forecast) != 2 {
		t.Errorf("len(Forecast) = %d, want 2", len(decoded.Forecast))
	}
	if !strings.Contains(out, "\n  ") {
		t.Error("output not indented")
	}
}

func TestNew_UnknownUnitsFallsBackToMetric(t *testing.T) {
	f := New("kelvin")
	if f.TempUnit() != "°C" {
		t.Errorf("TempUnit() = %q, want °C", f.TempUnit())
	}
}

func TestMessageHelpers(t *testing.T) {
	if got := Error("boom"); got != "Error: boom" {
		t.Errorf("Error() = %q", got)
	}
	if got := Warning("careful"); got != "Warning: careful" {
		t.Errorf("Warning() = %q", got)
	}
	if got := Success("done"); got != "Success: done" {
		t.Errorf("Success() = %q", got)
	}
}
