package models

import "time"

// Coordinates is a geocoded latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the pair is within geographic bounds.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// CurrentWeather is a snapshot of conditions for a city at fetch time.
// Temperature is Celsius and WindSpeed is m/s as returned by the upstream API;
// unit conversion happens at display time.
type CurrentWeather struct {
	City        string    `json:"city"`
	Country     string    `json:"country"`
	Temperature float64   `json:"temperature"`
	Conditions  string    `json:"conditions"`
	Humidity    int       `json:"humidity"`
	Pressure    int       `json:"pressure"`
	WindSpeed   float64   `json:"windSpeed"`
	Timestamp   time.Time `json:"timestamp"`
}

// DailyForecast is one day's min/max summary aggregated from 3-hour forecast
// steps. TempMin/TempMax are nil when the upstream items carried no usable
// temperature for the day.
type DailyForecast struct {
	Date       string   `json:"date"` // YYYY-MM-DD
	TempMin    *float64 `json:"tempMin"`
	TempMax    *float64 `json:"tempMax"`
	Conditions string   `json:"conditions"`
}

// Report bundles current conditions with the short forecast for one lookup.
type Report struct {
	Current   CurrentWeather  `json:"current"`
	Forecast  []DailyForecast `json:"forecast"`
	FetchedAt time.Time       `json:"fetchedAt"`
}
