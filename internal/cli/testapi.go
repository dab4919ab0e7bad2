package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kjstillabower/weather-cli/internal/client"
	"github.com/kjstillabower/weather-cli/internal/format"
)

// newTestAPICmd builds the test-api subcommand: probe the geocoding endpoint
// to confirm the configured API key works.
func newTestAPICmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test-api",
		Short: "Validate the configured API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(o)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if cfg.APIKey == "" {
				return errNoAPIKey
			}

			corrID := uuid.NewString()
			weatherClient, err := client.NewOpenWeatherClient(client.Options{
				APIKey:        cfg.APIKey,
				APIURL:        cfg.APIURL,
				GeoURL:        cfg.GeoURL,
				Timeout:       cfg.Timeout,
				CorrelationID: corrID,
				Logger:        logger.With(zap.String("correlation_id", corrID)),
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			if err := weatherClient.ValidateAPIKey(ctx); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), format.Success("API key is valid."))
			return nil
		},
	}

	cmd.Flags().StringVar(&o.apiKey, "api-key", "", "API key (overrides OPENWEATHER_API_KEY)")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 0, "request timeout (default 10s)")
	cmd.Flags().BoolVar(&o.debug, "debug", false, "enable debug logging")
	cmd.Flags().StringVar(&o.logFile, "log-file", "", "also log to a rotating file")
	cmd.Flags().StringVar(&o.geoURL, "geo-url", "", "override the geocoding API base URL")
	return cmd
}
