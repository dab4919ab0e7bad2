// Package cli wires flags, configuration, logging and the weather service
// into the weather-cli command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kjstillabower/weather-cli/internal/cache"
	"github.com/kjstillabower/weather-cli/internal/client"
	"github.com/kjstillabower/weather-cli/internal/config"
	"github.com/kjstillabower/weather-cli/internal/format"
	"github.com/kjstillabower/weather-cli/internal/observability"
	"github.com/kjstillabower/weather-cli/internal/service"
)

const version = "1.0.0"

// options carries flag values shared by the root command and subcommands.
type options struct {
	city    string
	country string
	units   string
	outFmt  string
	apiKey  string
	timeout time.Duration
	debug   bool
	logFile string
	noCache bool
	apiURL  string
	geoURL  string
}

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:   "weather-cli",
		Short: "Fetch and display weather for a city",
		Long: `Fetch and display current weather and a 3-day forecast for a given
city and country from OpenWeatherMap, as clean text or JSON.

The API key comes from --api-key, the OPENWEATHER_API_KEY environment
variable, or a .env file in the working directory.`,
		Example: `  weather-cli --city "Puchong" --country "MY"
  weather-cli --city "New York" --country "US" --units imperial --debug
  weather-cli --city "London" --country "GB" --debug --log-file weather.log
  weather-cli --city "Tokyo" --country "JP" --format detailed`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.city == "" {
				return usageError{fmt.Errorf("required flag --city not set")}
			}
			if o.country == "" {
				return usageError{fmt.Errorf("required flag --country not set")}
			}
			return runLookup(cmd, o)
		},
	}

	cmd.Flags().StringVar(&o.city, "city", "", `city name (e.g. "Puchong", "New York")`)
	cmd.Flags().StringVar(&o.country, "country", "", `two-letter country code (e.g. "MY", "US")`)
	addCommonFlags(cmd, o)

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	cmd.AddCommand(newTestAPICmd(o))
	cmd.AddCommand(newQuickCmd(o))
	return cmd
}

// addCommonFlags registers the flags shared by the root command and quick.
func addCommonFlags(cmd *cobra.Command, o *options) {
	cmd.Flags().StringVar(&o.units, "units", "", "temperature units: metric (Celsius) or imperial (Fahrenheit)")
	cmd.Flags().StringVar(&o.outFmt, "format", "", "output format: simple, detailed or json")
	cmd.Flags().StringVar(&o.apiKey, "api-key", "", "API key (overrides OPENWEATHER_API_KEY)")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 0, "request timeout (default 10s)")
	cmd.Flags().BoolVar(&o.debug, "debug", false, "enable debug logging")
	cmd.Flags().StringVar(&o.logFile, "log-file", "", "also log to a rotating file")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "bypass the lookup cache")
	cmd.Flags().StringVar(&o.apiURL, "api-url", "", "override the data API base URL")
	cmd.Flags().StringVar(&o.geoURL, "geo-url", "", "override the geocoding API base URL")
}

// Execute runs the command tree and maps errors to exit codes:
// 0 success, 1 runtime failure, 2 usage error.
func Execute() int {
	root := NewRootCmd()
	err := root.Execute()
	if err == nil {
		return 0
	}

	if isUsageError(err) {
		fmt.Fprintln(os.Stderr, format.Error(err.Error()))
		fmt.Fprintln(os.Stderr, "Run 'weather-cli --help' for usage.")
		return 2
	}

	fmt.Fprintln(os.Stderr, format.Error(userMessage(err)))
	return 1
}

// runLookup executes the full pipeline for one city/country lookup.
func runLookup(cmd *cobra.Command, o *options) error {
	cfg, logger, err := setup(o)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	outFmt := o.outFmt
	if outFmt == "" {
		outFmt = cfg.DefaultFormat
	}
	units := o.units
	if units == "" {
		units = cfg.DefaultUnits
	}
	if err := validateChoices(units, outFmt); err != nil {
		return err
	}

	corrID := uuid.NewString()
	logger = logger.With(zap.String("correlation_id", corrID))
	logger.Debug("lookup starting",
		zap.String("city", o.city),
		zap.String("country", o.country),
		zap.String("units", units),
		zap.String("format", outFmt))

	if cfg.APIKey == "" {
		return errNoAPIKey
	}

	weatherClient, err := client.NewOpenWeatherClient(client.Options{
		APIKey:         cfg.APIKey,
		APIURL:         cfg.APIURL,
		GeoURL:         cfg.GeoURL,
		Timeout:        cfg.Timeout,
		RetryAttempts:  cfg.RetryAttempts,
		RetryBaseDelay: cfg.RetryBaseDelay,
		RetryMaxDelay:  cfg.RetryMaxDelay,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		CorrelationID:  corrID,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	lookupCache := buildCache(cfg, o.noCache, logger)
	svc := service.NewWeatherService(weatherClient, lookupCache, cfg.CacheTTL, cfg.GeocodeTTL, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if !o.debug && outFmt != "json" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Fetching weather for %s, %s...\n", o.city, strings.ToUpper(o.country))
	}

	report, err := svc.Report(ctx, o.city, o.country)
	if err != nil {
		logger.Debug("lookup failed",
			zap.String("category", string(client.CategorizeError(err))),
			zap.Error(err))
		return lookupError{city: o.city, country: strings.ToUpper(o.country), err: err}
	}

	fmtr := format.New(units)
	w := cmd.OutOrStdout()
	switch outFmt {
	case "json":
		out, err := fmtr.JSON(report)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, out)
	case "detailed":
		rule := strings.Repeat("=", 60)
		fmt.Fprintln(w)
		fmt.Fprintln(w, rule)
		fmt.Fprintln(w, fmtr.Summary(report))
		fmt.Fprintln(w, rule)
	default:
		rule := strings.Repeat("=", 50)
		fmt.Fprintln(w)
		fmt.Fprintln(w, rule)
		fmt.Fprintln(w, fmtr.Current(report.Current))
		if len(report.Forecast) > 0 {
			fmt.Fprintln(w)
			fmt.Fprintln(w, fmtr.Forecast(report.Forecast))
		}
		fmt.Fprintln(w, rule)
	}

	logger.Debug("lookup complete")
	return nil
}

// setup loads configuration, applies flag overrides and builds the logger.
func setup(o *options) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	if o.apiKey != "" {
		cfg.APIKey = o.apiKey
	}
	if o.apiURL != "" {
		cfg.APIURL = o.apiURL
	}
	if o.geoURL != "" {
		cfg.GeoURL = o.geoURL
	}
	if o.timeout > 0 {
		cfg.Timeout = o.timeout
	}

	logger := observability.NewLogger(o.debug, o.logFile)
	return cfg, logger, nil
}

// buildCache selects the configured cache backend. Cache setup failures are
// logged and ignored; a lookup without cache still works.
func buildCache(cfg *config.Config, noCache bool, logger *zap.Logger) cache.Cache {
	if noCache || !cfg.CacheEnabled {
		return nil
	}

	switch cfg.CacheBackend {
	case "memcached":
		mc, err := cache.NewMemcachedCache(cfg.MemcachedAddrs, cfg.MemcachedTimeout, cfg.MemcachedMaxIdleConns)
		if err != nil {
			logger.Warn("memcached cache unavailable", zap.Error(err))
			fmt.Fprintln(os.Stderr, format.Warning("cache unavailable, continuing without cache"))
			return nil
		}
		logger.Debug("cache backend: memcached", zap.String("addrs", cfg.MemcachedAddrs))
		return mc
	default:
		fc, err := cache.NewFileCache(cfg.CacheDir)
		if err != nil {
			logger.Warn("file cache unavailable", zap.Error(err))
			fmt.Fprintln(os.Stderr, format.Warning("cache unavailable, continuing without cache"))
			return nil
		}
		logger.Debug("cache backend: file", zap.String("path", fc.Path()))
		return fc
	}
}

func validateChoices(units, outFmt string) error {
	switch units {
	case "metric", "imperial":
	default:
		return usageError{fmt.Errorf("invalid --units %q (metric or imperial)", units)}
	}
	switch outFmt {
	case "simple", "detailed", "json":
	default:
		return usageError{fmt.Errorf("invalid --format %q (simple, detailed or json)", outFmt)}
	}
	return nil
}
