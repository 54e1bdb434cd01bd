package finance

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// ErrInvalidInput marks errors caused by bad request parameters.
var ErrInvalidInput = errors.New("invalid input")

// MaxKeys bounds the number of keys in one request.
const MaxKeys = 50

const (
	DefaultPeriod   = "1mo"
	DefaultInterval = "1d"

	DefaultSearchQuotes = 6
	MaxSearchQuotes     = 25
	DefaultSearchNews   = 4
	MaxSearchNews       = 25

	DefaultTrendingCount = 10
	MaxTrendingCount     = 50

	DefaultScreenerCount = 25
	MaxScreenerCount     = 100
)

// Periods lists the accepted history periods.
var Periods = []string{"1d", "5d", "1mo", "3mo", "6mo", "1y", "2y", "5y", "10y", "ytd", "max"}

// Intervals lists the accepted history intervals.
var Intervals = []string{"1m", "2m", "5m", "15m", "30m", "60m", "90m", "1h", "1d", "5d", "1wk", "1mo", "3mo"}

// ScreenerTypes lists the predefined screeners.
var ScreenerTypes = []string{
	"day_gainers",
	"day_losers",
	"most_actives",
	"aggressive_small_caps",
	"growth_technology_stocks",
	"undervalued_growth_stocks",
	"undervalued_large_caps",
	"small_cap_gainers",
	"most_shorted_stocks",
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// ParseSymbols splits a comma separated list, trims and uppercases each
// entry and drops empties. Duplicates are kept.
func ParseSymbols(raw string) ([]string, error) {
	return parseKeys(raw, "symbol")
}

// ParseRegions parses a comma separated list of region codes.
func ParseRegions(raw string) ([]string, error) {
	return parseKeys(raw, "region")
}

func parseKeys(raw, what string) ([]string, error) {
	var keys []string
	for _, part := range strings.Split(raw, ",") {
		key := strings.ToUpper(strings.TrimSpace(part))
		if key == "" {
			continue
		}
		keys = append(keys, key)
	}

	if len(keys) == 0 {
		return nil, invalid("at least one %s is required", what)
	}
	if len(keys) > MaxKeys {
		return nil, invalid("too many %ss: %d (max %d)", what, len(keys), MaxKeys)
	}
	return keys, nil
}

// ClampCount returns def for a non-positive n and limit for anything above limit.
func ClampCount(n, def, limit int) int {
	if n <= 0 {
		return def
	}
	return min(n, limit)
}

// ValidatePeriod returns period, or DefaultPeriod when empty.
func ValidatePeriod(period string) (string, error) {
	return validateEnum("period", period, DefaultPeriod, Periods)
}

// ValidateInterval returns interval, or DefaultInterval when empty.
func ValidateInterval(interval string) (string, error) {
	return validateEnum("interval", interval, DefaultInterval, Intervals)
}

// ValidateScreener checks that scrID names a predefined screener.
func ValidateScreener(scrID string) (string, error) {
	scrID = strings.ToLower(strings.TrimSpace(scrID))
	if scrID == "" {
		return "", invalid("screener type is required")
	}
	return validateEnum("screener type", scrID, "", ScreenerTypes)
}

func validateEnum(name, value, def string, allowed []string) (string, error) {
	if value == "" && def != "" {
		return def, nil
	}
	if !slices.Contains(allowed, value) {
		return "", invalid("%s %q must be one of %s", name, value, strings.Join(allowed, ", "))
	}
	return value, nil
}

// PeriodRange converts a period into the [period1, period2] window ending at now.
func PeriodRange(period string, now time.Time) (time.Time, time.Time, error) {
	var start time.Time
	switch period {
	case "1d":
		start = now.AddDate(0, 0, -1)
	case "5d":
		start = now.AddDate(0, 0, -5)
	case "1mo":
		start = now.AddDate(0, -1, 0)
	case "3mo":
		start = now.AddDate(0, -3, 0)
	case "6mo":
		start = now.AddDate(0, -6, 0)
	case "1y":
		start = now.AddDate(-1, 0, 0)
	case "2y":
		start = now.AddDate(-2, 0, 0)
	case "5y":
		start = now.AddDate(-5, 0, 0)
	case "10y":
		start = now.AddDate(-10, 0, 0)
	case "ytd":
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	case "max":
		start = time.Unix(0, 0).UTC()
	default:
		return time.Time{}, time.Time{}, invalid("unknown period %q", period)
	}
	return start, now, nil
}
