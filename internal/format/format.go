// Package format renders weather reports as plain terminal text or JSON.
// Output is clean text without icons or special characters.
package format

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/kjstillabower/weather-cli/internal/models"
)

// Unit systems accepted by New.
const (
	UnitsMetric   = "metric"
	UnitsImperial = "imperial"
)

// Formatter renders weather data in a fixed unit system. Upstream data is
// metric (Celsius, m/s); imperial output converts at display time.
type Formatter struct {
	units string
}

// New creates a Formatter. Anything other than "imperial" is treated as metric.
func New(units string) *Formatter {
	if units != UnitsImperial {
		units = UnitsMetric
	}
	return &Formatter{units: units}
}

// TempUnit returns the display suffix for temperatures.
func (f *Formatter) TempUnit() string {
	if f.units == UnitsImperial {
		return "°F"
	}
	return "°C"
}

// Current renders the current-conditions block:
//
//	Current: 28.5°C - Scattered clouds
//	  Humidity: 65% | Wind: 11.5 km/h | Pressure: 1012hPa
func (f *Formatter) Current(cw models.CurrentWeather) string {
	conditions := cw.Conditions
	if conditions == "" {
		conditions = "Unknown"
	}

	lines := []string{
		fmt.Sprintf("Current: %s%s - %s", trimFloat(f.temp(cw.Temperature)), f.TempUnit(), conditions),
	}

	var details []string
	if cw.Humidity > 0 {
		details = append(details, fmt.Sprintf("Humidity: %d%%", cw.Humidity))
	}
	if cw.WindSpeed > 0 {
		details = append(details, "Wind: "+f.wind(cw.WindSpeed))
	}
	if cw.Pressure > 0 {
		details = append(details, fmt.Sprintf("Pressure: %dhPa", cw.Pressure))
	}
	if len(details) > 0 {
		lines = append(lines, "  "+strings.Join(details, " | "))
	}

	return strings.Join(lines, "\n")
}

// Forecast renders the daily forecast block, one line per day:
//
//	Forecast:
//	Wed 15 Jan: 25°C - 30°C | Clouds
func (f *Formatter) Forecast(days []models.DailyForecast) string {
	if len(days) == 0 {
		return "No forecast data available"
	}

	lines := []string{"Forecast:"}
	for _, day := range days {
		lines = append(lines, fmt.Sprintf("%s: %s | %s",
			formatDate(day.Date), f.tempRange(day), dayConditions(day)))
	}
	return strings.Join(lines, "\n")
}

// Summary combines a location header, current conditions and forecast.
// Used by the detailed output format.
func (f *Formatter) Summary(r models.Report) string {
	var sections []string

	if loc := location(r.Current); loc != "" {
		sections = append(sections, "Location: "+loc)
	}
	sections = append(sections, f.Current(r.Current))
	if len(r.Forecast) > 0 {
		sections = append(sections, "", f.Forecast(r.Forecast))
	}

	return strings.Join(sections, "\n")
}

// Table renders the forecast as a plain-text table.
func (f *Formatter) Table(days []models.DailyForecast) string {
	if len(days) == 0 {
		return "No forecast data"
	}

	rule := strings.Repeat("-", 50)
	lines := []string{
		rule,
		fmt.Sprintf("%-12s %-15s %-20s", "Date", "Weather", "Temp Range"),
		rule,
	}
	for _, day := range days {
		weather := dayConditions(day)
		if len(weather) > 14 {
			weather = weather[:14]
		}
		var tempRange string
		if day.TempMin != nil && day.TempMax != nil {
			tempRange = fmt.Sprintf("%s%s-%s%s",
				trimFloat(f.temp(*day.TempMin)), f.TempUnit(),
				trimFloat(f.temp(*day.TempMax)), f.TempUnit())
		} else {
			tempRange = "N/A"
		}
		lines = append(lines, fmt.Sprintf("%-12s %-15s %-20s", formatDate(day.Date), weather, tempRange))
	}
	lines = append(lines, rule)

	return strings.Join(lines, "\n")
}

// JSON renders the whole report as indented JSON for scripted use.
func (f *Formatter) JSON(r models.Report) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	return string(data), nil
}

// Error formats a user-facing error line.
func Error(msg string) string {
	return "Error: " + msg
}

// Warning formats a user-facing warning line.
func Warning(msg string) string {
	return "Warning: " + msg
}

// Success formats a user-facing success line.
func Success(msg string) string {
	return "Success: " + msg
}

// temp converts a Celsius value to the display unit, rounded to 1 decimal.
func (f *Formatter) temp(celsius float64) float64 {
	v := celsius
	if f.units == UnitsImperial {
		v = celsius*9/5 + 32
	}
	return math.Round(v*10) / 10
}

// wind converts m/s to km/h (metric) or mph (imperial).
func (f *Formatter) wind(ms float64) string {
	if f.units == UnitsImperial {
		return fmt.Sprintf("%s mph", trimFloat(math.Round(ms*2.237*10)/10))
	}
	return fmt.Sprintf("%s km/h", trimFloat(math.Round(ms*3.6*10)/10))
}

func (f *Formatter) tempRange(day models.DailyForecast) string {
	switch {
	case day.TempMin != nil && day.TempMax != nil:
		return fmt.Sprintf("%s%s - %s%s",
			trimFloat(f.temp(*day.TempMin)), f.TempUnit(),
			trimFloat(f.temp(*day.TempMax)), f.TempUnit())
	case day.TempMin != nil:
		return trimFloat(f.temp(*day.TempMin)) + f.TempUnit()
	case day.TempMax != nil:
		return trimFloat(f.temp(*day.TempMax)) + f.TempUnit()
	default:
		return "No temp data"
	}
}

func dayConditions(day models.DailyForecast) string {
	if day.Conditions == "" {
		return "Unknown"
	}
	return day.Conditions
}

func location(cw models.CurrentWeather) string {
	if cw.City == "" {
		return ""
	}
	if cw.Country != "" {
		return cw.City + ", " + cw.Country
	}
	return cw.City
}

// formatDate renders YYYY-MM-DD as "Wed 15 Jan"; unparseable input passes
// through unchanged.
func formatDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Mon 02 Jan")
}

// trimFloat prints a float with at most one decimal, dropping a trailing ".0".
func trimFloat(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	return strings.TrimSuffix(s, ".0")
}
