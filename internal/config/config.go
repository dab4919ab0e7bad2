package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultAPIURL is the OpenWeatherMap data API base.
const DefaultAPIURL = "https://api.openweathermap.org/data/2.5"

// DefaultGeoURL is the OpenWeatherMap geocoding API base.
const DefaultGeoURL = "http://api.openweathermap.org/geo/1.0"

// Config holds tool configuration loaded from YAML, .env and env vars.
// Flag overrides are applied by the CLI layer after Load.
type Config struct {
	APIKey  string
	APIURL  string
	GeoURL  string
	Timeout time.Duration

	DefaultCountry string
	DefaultUnits   string
	DefaultFormat  string

	CacheEnabled          bool
	CacheBackend          string // "file" or "memcached"
	CacheDir              string
	CacheTTL              time.Duration
	GeocodeTTL            time.Duration
	MemcachedAddrs        string
	MemcachedTimeout      time.Duration
	MemcachedMaxIdleConns int

	RetryAttempts  int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
}

type fileConfig struct {
	WeatherAPI struct {
		URL     string `yaml:"url"`
		GeoURL  string `yaml:"geo_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"weather_api"`

	Defaults struct {
		Country string `yaml:"country"`
		Units   string `yaml:"units"`
		Format  string `yaml:"format"`
	} `yaml:"defaults"`

	Cache struct {
		Enabled    *bool  `yaml:"enabled"`
		Backend    string `yaml:"backend"`
		Dir        string `yaml:"dir"`
		TTL        string `yaml:"ttl"`
		GeocodeTTL string `yaml:"geocode_ttl"`
		Memcached  struct {
			Addrs        string `yaml:"addrs"`
			Timeout      string `yaml:"timeout"`
			MaxIdleConns int    `yaml:"max_idle_conns"`
		} `yaml:"memcached"`
	} `yaml:"cache"`

	Reliability struct {
		RetryMaxAttempts int     `yaml:"retry_max_attempts"`
		RetryBaseDelay   string  `yaml:"retry_base_delay"`
		RetryMaxDelay    string  `yaml:"retry_max_delay"`
		RateLimitRPS     float64 `yaml:"rate_limit_rps"`
		RateLimitBurst   int     `yaml:"rate_limit_burst"`
	} `yaml:"reliability"`
}

// Load reads configuration from the first config file found and the
// environment. Lookup order for the file: $WEATHER_CLI_CONFIG,
// ~/.config/weather-cli/config.yaml, ./config/{ENV_NAME|dev}.yaml.
// A missing file is not an error; defaults apply. A .env in the working
// directory is loaded first so OPENWEATHER_API_KEY can live there.
func Load() (*Config, error) {
	// Best effort; absence of .env is the normal case.
	_ = godotenv.Load()

	cfg := defaults()

	path, err := resolveConfigPath()
	if err != nil {
		return nil, err
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
		apply(cfg, fc)
	}

	if key := strings.TrimSpace(os.Getenv("OPENWEATHER_API_KEY")); key != "" {
		cfg.APIKey = key
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		APIURL:  DefaultAPIURL,
		GeoURL:  DefaultGeoURL,
		Timeout: 10 * time.Second,

		DefaultUnits:  "metric",
		DefaultFormat: "simple",

		CacheEnabled:          true,
		CacheBackend:          "file",
		CacheTTL:              10 * time.Minute,
		GeocodeTTL:            24 * time.Hour,
		MemcachedAddrs:        "localhost:11211",
		MemcachedTimeout:      500 * time.Millisecond,
		MemcachedMaxIdleConns: 2,

		RetryAttempts:  3,
		RetryBaseDelay: 500 * time.Millisecond,
		RetryMaxDelay:  10 * time.Second,
		RateLimitRPS:   1,
		RateLimitBurst: 5,
	}
}

// resolveConfigPath returns the first existing config file, or "" when none
// exists. Only $WEATHER_CLI_CONFIG is required to exist when set.
func resolveConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv("WEATHER_CLI_CONFIG")); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("config file not found: %s", p)
		}
		return p, nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, ".config", "weather-cli", "config.yaml")
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}
	p := filepath.Join("config", env+".yaml")
	if _, err := os.Stat(p); err == nil {
		return p, nil
	}
	return "", nil
}

func apply(cfg *Config, fc fileConfig) {
	if fc.WeatherAPI.URL != "" {
		cfg.APIURL = fc.WeatherAPI.URL
	}
	if fc.WeatherAPI.GeoURL != "" {
		cfg.GeoURL = fc.WeatherAPI.GeoURL
	}
	cfg.Timeout = parseDuration(fc.WeatherAPI.Timeout, cfg.Timeout)

	if fc.Defaults.Country != "" {
		cfg.DefaultCountry = fc.Defaults.Country
	}
	if fc.Defaults.Units != "" {
		cfg.DefaultUnits = strings.ToLower(strings.TrimSpace(fc.Defaults.Units))
	}
	if fc.Defaults.Format != "" {
		cfg.DefaultFormat = strings.ToLower(strings.TrimSpace(fc.Defaults.Format))
	}

	if fc.Cache.Enabled != nil {
		cfg.CacheEnabled = *fc.Cache.Enabled
	}
	if fc.Cache.Backend != "" {
		cfg.CacheBackend = strings.ToLower(strings.TrimSpace(fc.Cache.Backend))
	}
	if fc.Cache.Dir != "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	cfg.CacheTTL = parseDuration(fc.Cache.TTL, cfg.CacheTTL)
	cfg.GeocodeTTL = parseDuration(fc.Cache.GeocodeTTL, cfg.GeocodeTTL)
	if fc.Cache.Memcached.Addrs != "" {
		cfg.MemcachedAddrs = strings.TrimSpace(fc.Cache.Memcached.Addrs)
	}
	cfg.MemcachedTimeout = parseDuration(fc.Cache.Memcached.Timeout, cfg.MemcachedTimeout)
	if fc.Cache.Memcached.MaxIdleConns > 0 {
		cfg.MemcachedMaxIdleConns = fc.Cache.Memcached.MaxIdleConns
	}

	if fc.Reliability.RetryMaxAttempts > 0 {
		cfg.RetryAttempts = fc.Reliability.RetryMaxAttempts
	}
	cfg.RetryBaseDelay = parseDuration(fc.Reliability.RetryBaseDelay, cfg.RetryBaseDelay)
	cfg.RetryMaxDelay = parseDuration(fc.Reliability.RetryMaxDelay, cfg.RetryMaxDelay)
	if fc.Reliability.RateLimitRPS > 0 {
		cfg.RateLimitRPS = fc.Reliability.RateLimitRPS
	}
	if fc.Reliability.RateLimitBurst > 0 {
		cfg.RateLimitBurst = fc.Reliability.RateLimitBurst
	}
}

// parseDuration parses a duration string and returns defaultVal if parsing
// fails or the result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

// validate performs post-load validation. The API key may still be empty here;
// the CLI layer checks presence after applying the --api-key flag.
func validate(cfg *Config) error {
	if cfg.Timeout <= 0 {
		return fmt.Errorf("weather_api.timeout must be positive")
	}
	switch cfg.DefaultUnits {
	case "metric", "imperial":
	default:
		return fmt.Errorf("defaults.units must be metric or imperial, got %q", cfg.DefaultUnits)
	}
	switch cfg.DefaultFormat {
	case "simple", "detailed", "json":
	default:
		return fmt.Errorf("defaults.format must be simple, detailed or json, got %q", cfg.DefaultFormat)
	}
	switch cfg.CacheBackend {
	case "file", "memcached":
	default:
		return fmt.Errorf("cache.backend must be file or memcached, got %q", cfg.CacheBackend)
	}
	return nil
}
