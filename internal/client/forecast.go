package client

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/kjstillabower/weather-cli/internal/models"
)

// forecastDays caps the aggregated forecast length.
const forecastDays = 3

type forecastResponse struct {
	List []forecastItem `json:"list"`
}

type forecastItem struct {
	DtTxt string `json:"dt_txt"` // "2006-01-02 15:04:05"
	Main  struct {
		Temp    *float64 `json:"temp"`
		TempMin *float64 `json:"temp_min"`
		TempMax *float64 `json:"temp_max"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

type dailyAccum struct {
	tempMin    *float64
	tempMax    *float64
	conditions string
}

// summarizeDaily reduces 3-hour forecast steps into per-day min/max summaries.
// Items are grouped by the date part of dt_txt; items without one are skipped.
// The day's condition comes from its first item. Today and past days are
// excluded, the result is date-ordered and capped at maxDays.
func summarizeDaily(items []forecastItem, now time.Time, maxDays int) []models.DailyForecast {
	daily := make(map[string]*dailyAccum)

	for _, item := range items {
		date, ok := itemDate(item.DtTxt)
		if !ok {
			continue
		}

		tmin := item.Main.TempMin
		tmax := item.Main.TempMax
		if tmin == nil {
			tmin = item.Main.Temp
		}
		if tmax == nil {
			tmax = item.Main.Temp
		}

		acc, exists := daily[date]
		if !exists {
			acc = &dailyAccum{
				tempMin:    tmin,
				tempMax:    tmax,
				conditions: itemConditions(item),
			}
			daily[date] = acc
			continue
		}

		acc.tempMin = lesser(acc.tempMin, tmin)
		acc.tempMax = greater(acc.tempMax, tmax)
	}

	dates := make([]string, 0, len(daily))
	for d := range daily {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	today := now.Format("2006-01-02")
	var result []models.DailyForecast
	for _, date := range dates {
		if date <= today {
			continue
		}
		acc := daily[date]
		result = append(result, models.DailyForecast{
			Date:       date,
			TempMin:    round1(acc.tempMin),
			TempMax:    round1(acc.tempMax),
			Conditions: capitalize(acc.conditions),
		})
		if len(result) >= maxDays {
			break
		}
	}
	return result
}

// itemDate extracts the YYYY-MM-DD part of dt_txt and verifies it parses.
func itemDate(dtTxt string) (string, bool) {
	parts := strings.SplitN(dtTxt, " ", 2)
	if len(parts) == 0 || parts[0] == "" {
		return "", false
	}
	if _, err := time.Parse("2006-01-02", parts[0]); err != nil {
		return "", false
	}
	return parts[0], true
}

func itemConditions(item forecastItem) string {
	if len(item.Weather) > 0 && item.Weather[0].Description != "" {
		return item.Weather[0].Description
	}
	return "unknown"
}

// lesser keeps the smaller of two optional temperatures, tolerating nils.
func lesser(a, b *float64) *float64 {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if *b < *a {
		return b
	}
	return a
}

func greater(a, b *float64) *float64 {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if *b > *a {
		return b
	}
	return a
}

func round1(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := math.Round(*v*10) / 10
	return &r
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
