package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/weather-cli/internal/models"
)

// WeatherClient is the upstream API surface the service layer depends on.
type WeatherClient interface {
	Geocode(ctx context.Context, city, country string) (models.Coordinates, error)
	GetCurrentWeather(ctx context.Context, coord models.Coordinates) (models.CurrentWeather, error)
	GetForecast(ctx context.Context, coord models.Coordinates) ([]models.DailyForecast, error)
	ValidateAPIKey(ctx context.Context) error
}

var (
	ErrInvalidAPIKey      = errors.New("invalid API key")
	ErrCityNotFound       = errors.New("city not found")
	ErrRateLimited        = errors.New("rate limited")
	ErrServiceUnavailable = errors.New("weather service unavailable")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

const userAgent = "WeatherCLI/1.0.0"

// RateLimitError carries the upstream Retry-After hint alongside
// ErrRateLimited.
type RateLimitError struct {
	RetryAfter int // seconds, 0 when the header was absent
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	}
	return "rate limited"
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// Options configures an OpenWeatherClient.
type Options struct {
	APIKey  string
	APIURL  string // data API base, e.g. https://api.openweathermap.org/data/2.5
	GeoURL  string // geocoding API base, e.g. http://api.openweathermap.org/geo/1.0
	Timeout time.Duration

	RetryAttempts  int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration

	// Client-side budget protection for the upstream free tier.
	RateLimitRPS   float64
	RateLimitBurst int

	// CorrelationID is attached to every upstream request and log line.
	CorrelationID string

	Logger *zap.Logger
}

// OpenWeatherClient calls the OpenWeatherMap geocoding and data APIs with
// retry, backoff and client-side rate limiting.
type OpenWeatherClient struct {
	apiKey         string
	apiURL         string
	geoURL         string
	timeout        time.Duration
	client         *http.Client
	retryAttempts  int
	retryBaseDelay time.Duration
	retryMaxDelay  time.Duration
	limiter        *rate.Limiter
	correlationID  string
	logger         *zap.Logger

	// now is replaceable in tests for forecast day selection.
	now func() time.Time
}

// NewOpenWeatherClient validates the key and builds a client. Zero option
// fields fall back to sensible defaults.
func NewOpenWeatherClient(opts Options) (*OpenWeatherClient, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrInvalidAPIKey)
	}
	if len(opts.APIKey) < 10 {
		return nil, fmt.Errorf("%w: API key appears invalid (too short)", ErrInvalidAPIKey)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RetryAttempts <= 0 {
		opts.RetryAttempts = 3
	}
	if opts.RetryBaseDelay <= 0 {
		opts.RetryBaseDelay = 500 * time.Millisecond
	}
	if opts.RetryMaxDelay <= 0 {
		opts.RetryMaxDelay = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	var limiter *rate.Limiter
	if opts.RateLimitRPS > 0 {
		burst := opts.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), burst)
	}

	return &OpenWeatherClient{
		apiKey:         opts.APIKey,
		apiURL:         strings.TrimRight(opts.APIURL, "/"),
		geoURL:         strings.TrimRight(opts.GeoURL, "/"),
		timeout:        opts.Timeout,
		retryAttempts:  opts.RetryAttempts,
		retryBaseDelay: opts.RetryBaseDelay,
		retryMaxDelay:  opts.RetryMaxDelay,
		limiter:        limiter,
		correlationID:  opts.CorrelationID,
		logger:         opts.Logger,
		now:            time.Now,
		client: &http.Client{
			Timeout: opts.Timeout,
		},
	}, nil
}

type geoResult struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type currentResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
		Pressure int     `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
	Name string `json:"name"`
}

// Geocode resolves a city/country pair to coordinates via the geocoding API.
// An empty result set maps to ErrCityNotFound.
func (c *OpenWeatherClient) Geocode(ctx context.Context, city, country string) (models.Coordinates, error) {
	params := url.Values{}
	params.Set("q", strings.TrimSpace(city)+","+strings.ToUpper(strings.TrimSpace(country)))
	params.Set("limit", "1")
	params.Set("appid", c.apiKey)

	var results []geoResult
	if err := c.getJSON(ctx, c.geoURL+"/direct", params, &results); err != nil {
		return models.Coordinates{}, fmt.Errorf("geocode %s, %s: %w", city, country, err)
	}
	if len(results) == 0 {
		return models.Coordinates{}, fmt.Errorf("%w: %s, %s", ErrCityNotFound, city, country)
	}

	coord := models.Coordinates{Lat: results[0].Lat, Lon: results[0].Lon}
	c.logger.Debug("geocoded",
		zap.String("city", results[0].Name),
		zap.String("country", results[0].Country),
		zap.Float64("lat", coord.Lat),
		zap.Float64("lon", coord.Lon))
	return coord, nil
}

// GetCurrentWeather fetches current conditions for the coordinates.
// Data is always requested metric; display conversion is the formatter's job.
func (c *OpenWeatherClient) GetCurrentWeather(ctx context.Context, coord models.Coordinates) (models.CurrentWeather, error) {
	if !coord.Valid() {
		return models.CurrentWeather{}, fmt.Errorf("%w: lat=%g lon=%g", ErrInvalidCoordinates, coord.Lat, coord.Lon)
	}

	var resp currentResponse
	if err := c.getJSON(ctx, c.apiURL+"/weather", c.dataParams(coord), &resp); err != nil {
		return models.CurrentWeather{}, fmt.Errorf("fetch current weather: %w", err)
	}
	return mapCurrent(resp), nil
}

// GetForecast fetches the 3-hour step forecast and aggregates it into daily
// min/max summaries for the next forecastDays days.
func (c *OpenWeatherClient) GetForecast(ctx context.Context, coord models.Coordinates) ([]models.DailyForecast, error) {
	if !coord.Valid() {
		return nil, fmt.Errorf("%w: lat=%g lon=%g", ErrInvalidCoordinates, coord.Lat, coord.Lon)
	}

	var resp forecastResponse
	if err := c.getJSON(ctx, c.apiURL+"/forecast", c.dataParams(coord), &resp); err != nil {
		return nil, fmt.Errorf("fetch forecast: %w", err)
	}

	days := summarizeDaily(resp.List, c.now(), forecastDays)
	c.logger.Debug("forecast aggregated",
		zap.Int("items", len(resp.List)),
		zap.Int("days", len(days)))
	return days, nil
}

// ValidateAPIKey probes the geocoding endpoint with a known location.
// Used by the test-api subcommand.
func (c *OpenWeatherClient) ValidateAPIKey(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := c.Geocode(ctx, "London", "GB"); err != nil {
		if errors.Is(err, ErrInvalidAPIKey) {
			return fmt.Errorf("%w: API key is invalid or not activated", ErrInvalidAPIKey)
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

func (c *OpenWeatherClient) dataParams(coord models.Coordinates) url.Values {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(coord.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(coord.Lon, 'f', -1, 64))
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")
	params.Set("lang", "en")
	return params
}

// getJSON performs a GET with retry on transient failures and decodes the
// response body into out.
func (c *OpenWeatherClient) getJSON(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	var lastErr error

	for attempt := 0; attempt < c.retryAttempts; attempt++ {
		if attempt > 0 {
			delay := c.calculateBackoff(attempt)
			c.logger.Debug("retrying upstream call",
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := c.callAPI(ctx, endpoint, params, out)
		if err == nil {
			return nil
		}

		lastErr = err
		if !c.isRetryable(err) {
			return err
		}
	}

	return fmt.Errorf("exhausted retries: %w", lastErr)
}

func (c *OpenWeatherClient) callAPI(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.buildRequest(reqCtx, endpoint, params)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("request timeout: %w", err)
		}
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("upstream call",
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if err := c.handleErrorResponse(resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func (c *OpenWeatherClient) buildRequest(ctx context.Context, endpoint string, params url.Values) (*http.Request, error) {
	baseURL, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}
	baseURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", baseURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.correlationID != "" {
		req.Header.Set("X-Correlation-ID", c.correlationID)
	}
	return req, nil
}

func (c *OpenWeatherClient) handleErrorResponse(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: HTTP 401", ErrInvalidAPIKey)
	case http.StatusNotFound:
		return fmt.Errorf("%w", ErrCityNotFound)
	case http.StatusTooManyRequests:
		return &RateLimitError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: HTTP %d", ErrServiceUnavailable, resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: HTTP %d", ErrServiceUnavailable, resp.StatusCode)
	}
	return nil
}

func parseRetryAfter(header string) int {
	if header == "" {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || secs < 0 {
		return 0
	}
	return secs
}

func (c *OpenWeatherClient) isRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrRateLimited) {
		return true
	}
	if errors.Is(err, ErrServiceUnavailable) {
		return true
	}

	errStr := err.Error()
	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "context deadline exceeded") ||
		strings.Contains(errStr, "connection refused") {
		return true
	}
	return false
}

func (c *OpenWeatherClient) calculateBackoff(attempt int) time.Duration {
	delay := float64(c.retryBaseDelay) * math.Pow(2, float64(attempt-1))
	if delay > float64(c.retryMaxDelay) {
		delay = float64(c.retryMaxDelay)
	}

	jitter := delay * 0.1 * rand.Float64()
	return time.Duration(delay + jitter)
}

func mapCurrent(resp currentResponse) models.CurrentWeather {
	conditions := ""
	if len(resp.Weather) > 0 {
		conditions = resp.Weather[0].Main
		if resp.Weather[0].Description != "" {
			conditions = resp.Weather[0].Description
		}
	}

	return models.CurrentWeather{
		City:        resp.Name,
		Country:     resp.Sys.Country,
		Temperature: resp.Main.Temp,
		Conditions:  capitalize(conditions),
		Humidity:    resp.Main.Humidity,
		Pressure:    resp.Main.Pressure,
		WindSpeed:   resp.Wind.Speed,
		Timestamp:   time.Now(),
	}
}
