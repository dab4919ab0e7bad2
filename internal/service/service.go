package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/weather-cli/internal/cache"
	"github.com/kjstillabower/weather-cli/internal/client"
	"github.com/kjstillabower/weather-cli/internal/models"
	"github.com/kjstillabower/weather-cli/internal/validation"
)

// WeatherService orchestrates one lookup: validate input, geocode the city,
// fetch current conditions and forecast, and assemble the Report. Geocode
// results and whole reports follow the cache-aside pattern; cache failures
// never fail a lookup.
type WeatherService struct {
	client     client.WeatherClient
	cache      cache.Cache // nil disables caching
	reportTTL  time.Duration
	geocodeTTL time.Duration
	logger     *zap.Logger
}

// NewWeatherService creates a WeatherService. cache may be nil to disable
// caching entirely (e.g. --no-cache).
func NewWeatherService(c client.WeatherClient, cch cache.Cache, reportTTL, geocodeTTL time.Duration, logger *zap.Logger) *WeatherService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeatherService{
		client:     c,
		cache:      cch,
		reportTTL:  reportTTL,
		geocodeTTL: geocodeTTL,
		logger:     logger,
	}
}

// Report performs the full lookup for a city/country pair.
func (s *WeatherService) Report(ctx context.Context, city, country string) (models.Report, error) {
	city, err := validation.ValidateCity(city)
	if err != nil {
		return models.Report{}, err
	}
	country, err = validation.ValidateCountry(country)
	if err != nil {
		return models.Report{}, err
	}

	key := normalizeKey(city, country)
	start := time.Now()

	if cached, ok := s.cachedReport(ctx, key); ok {
		s.logger.Debug("report served from cache",
			zap.String("key", key),
			zap.Duration("duration", time.Since(start)))
		return cached, nil
	}

	coord, err := s.geocode(ctx, key, city, country)
	if err != nil {
		return models.Report{}, err
	}

	current, err := s.client.GetCurrentWeather(ctx, coord)
	if err != nil {
		return models.Report{}, fmt.Errorf("weather for %s, %s: %w", city, country, err)
	}
	forecast, err := s.client.GetForecast(ctx, coord)
	if err != nil {
		return models.Report{}, fmt.Errorf("forecast for %s, %s: %w", city, country, err)
	}

	report := models.Report{
		Current:   current,
		Forecast:  forecast,
		FetchedAt: time.Now().UTC(),
	}
	s.storeReport(ctx, key, report)

	s.logger.Debug("report fetched from upstream",
		zap.String("key", key),
		zap.Int("forecast_days", len(forecast)),
		zap.Duration("duration", time.Since(start)))
	return report, nil
}

// geocode resolves coordinates, preferring the cache. Coordinates rarely
// change, so they get the long geocodeTTL.
func (s *WeatherService) geocode(ctx context.Context, key, city, country string) (models.Coordinates, error) {
	cacheKey := "geo:" + key

	if s.cache != nil {
		raw, ok, err := s.cache.Get(ctx, cacheKey)
		if err != nil {
			s.logger.Warn("geocode cache get failed", zap.String("key", cacheKey), zap.Error(err))
		} else if ok {
			var coord models.Coordinates
			if err := json.Unmarshal(raw, &coord); err == nil && coord.Valid() {
				s.logger.Debug("geocode cache hit", zap.String("key", cacheKey))
				return coord, nil
			}
		}
	}

	coord, err := s.client.Geocode(ctx, city, country)
	if err != nil {
		return models.Coordinates{}, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(coord); err == nil {
			if err := s.cache.Set(ctx, cacheKey, raw, s.geocodeTTL); err != nil {
				s.logger.Warn("geocode cache set failed", zap.String("key", cacheKey), zap.Error(err))
			}
		}
	}
	return coord, nil
}

func (s *WeatherService) cachedReport(ctx context.Context, key string) (models.Report, bool) {
	if s.cache == nil {
		return models.Report{}, false
	}
	raw, ok, err := s.cache.Get(ctx, "report:"+key)
	if err != nil {
		s.logger.Warn("report cache get failed", zap.String("key", key), zap.Error(err))
		return models.Report{}, false
	}
	if !ok {
		return models.Report{}, false
	}
	var report models.Report
	if err := json.Unmarshal(raw, &report); err != nil {
		s.logger.Warn("report cache entry corrupt", zap.String("key", key), zap.Error(err))
		return models.Report{}, false
	}
	return report, true
}

func (s *WeatherService) storeReport(ctx context.Context, key string, report models.Report) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, "report:"+key, raw, s.reportTTL); err != nil {
		s.logger.Warn("report cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// normalizeKey builds a stable cache key: lowercased city, uppercased country.
func normalizeKey(city, country string) string {
	return strings.ToLower(strings.TrimSpace(city)) + "," + strings.ToUpper(strings.TrimSpace(country))
}
