// Package normalize holds the pure parsing and normalization helpers the
// import pipeline applies to raw report records before anything touches the
// database.
package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrMalformedIdentifier = errors.New("malformed ticker identifier")
	ErrMalformedTimestamp  = errors.New("malformed timestamp")
	ErrMalformedNumber     = errors.New("malformed number")
)

// TimestampFormat matches source timestamps like "2026-01-16_13-48"
const TimestampFormat = "2006-01-02_15-04"

var whitespaceRun = regexp.MustCompile(`\s+`)

// ParseTickerRegion splits "COP US" into ("COP", "US"). The first token is
// the ticker, the second the region; anything after the second token is
// ignored. Case is left alone here — Identifier handles that at write time.
func ParseTickerRegion(s string) (ticker, region string, err error) {
	parts := strings.Fields(s)
	if len(parts) < 2 {
		return "", "", fmt.Errorf("%w: %q (expected like 'COP US')", ErrMalformedIdentifier, s)
	}
	return parts[0], parts[1], nil
}

// ParseTimestamp parses a source timestamp in loc. An empty string falls
// back to now — records without a timestamp are dated at import time.
func ParseTimestamp(s string, loc *time.Location, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	t, err := time.ParseInLocation(TimestampFormat, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
	}
	return t, nil
}

// ToDecimal coerces a raw JSON value to an exact decimal. Empty string and
// nil map to nil (absent), matching nullable numeric columns. Floats are
// stringified first so the decimal carries the value as printed, not the
// binary expansion.
func ToDecimal(v any) (*decimal.Decimal, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		if x == "" {
			return nil, nil
		}
		d, err := decimal.NewFromString(x)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedNumber, x)
		}
		return &d, nil
	case float64:
		d, err := decimal.NewFromString(strconv.FormatFloat(x, 'f', -1, 64))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedNumber, x)
		}
		return &d, nil
	case int:
		d := decimal.NewFromInt(int64(x))
		return &d, nil
	case int64:
		d := decimal.NewFromInt(x)
		return &d, nil
	default:
		return nil, fmt.Errorf("%w: %v (%T)", ErrMalformedNumber, v, v)
	}
}

// Identifier normalizes identifier-like fields (ticker, region, currency):
// trim and uppercase. Empty stays empty.
func Identifier(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Rating normalizes a rating code: trim, uppercase, and collapse internal
// whitespace runs to single underscores ("Not Rated" -> "NOT_RATED").
func Rating(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return s
	}
	return whitespaceRun.ReplaceAllString(s, "_")
}
