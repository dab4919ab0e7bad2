package validation

import (
	"errors"
	"strings"
	"unicode"
)

// ErrCityEmpty is returned when the city is empty or whitespace-only after trim.
var ErrCityEmpty = errors.New("city is required")

// ErrCityTooLong is returned when the city length exceeds the maximum.
var ErrCityTooLong = errors.New("city name too long")

// ErrCityInvalidChars is returned when the city contains disallowed characters.
var ErrCityInvalidChars = errors.New("city contains invalid characters")

// ErrCountryInvalid is returned when the country is not a 2-letter code.
var ErrCountryInvalid = errors.New("country must be a 2-letter code")

const maxCityLen = 100

// ValidateCity trims the input, enforces length bounds (in runes), and
// restricts to allowed characters: letters (Unicode), digits, space, comma,
// hyphen, period, apostrophe. Returns the trimmed string.
// Normalization (e.g. lowercase cache keys) is left to the service layer.
func ValidateCity(input string) (string, error) {
	s := strings.TrimSpace(input)
	r := []rune(s)
	if len(r) == 0 {
		return "", ErrCityEmpty
	}
	if len(r) > maxCityLen {
		return "", ErrCityTooLong
	}
	for _, c := range r {
		if !isAllowedCityRune(c) {
			return "", ErrCityInvalidChars
		}
	}
	return s, nil
}

// ValidateCountry trims the input and requires exactly two ASCII letters
// (an ISO 3166-1 alpha-2 code). Returns the code uppercased.
func ValidateCountry(input string) (string, error) {
	s := strings.TrimSpace(input)
	if len(s) != 2 {
		return "", ErrCountryInvalid
	}
	for _, c := range s {
		if !(c >= 'A' && c <= 'Z') && !(c >= 'a' && c <= 'z') {
			return "", ErrCountryInvalid
		}
	}
	return strings.ToUpper(s), nil
}

// isAllowedCityRune returns true for letters (Unicode), digits, space, comma,
// hyphen, period, apostrophe.
func isAllowedCityRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsNumber(r) {
		return true
	}
	switch r {
	case ' ', ',', '-', '.', '\'':
		return true
	}
	return false
}
