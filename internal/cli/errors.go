package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/kjstillabower/weather-cli/internal/client"
	"github.com/kjstillabower/weather-cli/internal/validation"
)

// errNoAPIKey is returned when no API key is configured anywhere.
var errNoAPIKey = errors.New("api key not configured")

// usageError marks flag and argument mistakes so Execute can exit 2.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func isUsageError(err error) bool {
	var u usageError
	return errors.As(err, &u)
}

// lookupError carries the searched city/country so user-facing messages can
// name them.
type lookupError struct {
	city    string
	country string
	err     error
}

func (e lookupError) Error() string { return e.err.Error() }
func (e lookupError) Unwrap() error { return e.err }

// userMessage maps an error to the single line shown on stderr. Full error
// chains go to the debug log, not the terminal.
func userMessage(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "Operation cancelled."
	case errors.Is(err, errNoAPIKey):
		return "API key not found. Set the OPENWEATHER_API_KEY environment variable or use --api-key."
	case errors.Is(err, client.ErrInvalidAPIKey):
		return "Invalid API key. Check the key or generate a new one at openweathermap.org."
	case errors.Is(err, client.ErrCityNotFound):
		var le lookupError
		if errors.As(err, &le) {
			return fmt.Sprintf("City '%s' in country '%s' not found. Check the spelling and use 2-letter country codes (e.g. 'US', 'GB', 'MY').", le.city, le.country)
		}
		return "City not found. Check the spelling and use 2-letter country codes (e.g. 'US', 'GB', 'MY')."
	case errors.Is(err, client.ErrRateLimited):
		var rle *client.RateLimitError
		if errors.As(err, &rle) && rle.RetryAfter > 0 {
			return fmt.Sprintf("API rate limit exceeded. Please retry after %d seconds.", rle.RetryAfter)
		}
		return "API rate limit exceeded. Please try again later."
	case errors.Is(err, client.ErrServiceUnavailable):
		return "Weather service is temporarily unavailable. Please try again later."
	case errors.Is(err, validation.ErrCityEmpty),
		errors.Is(err, validation.ErrCityTooLong),
		errors.Is(err, validation.ErrCityInvalidChars),
		errors.Is(err, validation.ErrCountryInvalid):
		return err.Error()
	}

	switch client.CategorizeError(err) {
	case client.ErrorCategoryTimeout:
		return "Request timed out - the weather service is not responding."
	case client.ErrorCategoryNetwork:
		return "Cannot connect to the weather service - check your internet connection."
	default:
		return "An unexpected error occurred: " + err.Error()
	}
}
