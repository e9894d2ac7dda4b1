package normalize

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseTickerRegion_HappyPath(t *testing.T) {
	ticker, region, err := ParseTickerRegion("COP US")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ticker != "COP" || region != "US" {
		t.Errorf("expected COP/US, got %q/%q", ticker, region)
	}
}

func TestParseTickerRegion_ExtraTokensIgnored(t *testing.T) {
	ticker, region, err := ParseTickerRegion("  BHP  AU  Equity ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ticker != "BHP" || region != "AU" {
		t.Errorf("expected BHP/AU, got %q/%q", ticker, region)
	}
}

func TestParseTickerRegion_MissingRegion(t *testing.T) {
	_, _, err := ParseTickerRegion("COP")
	if !errors.Is(err, ErrMalformedIdentifier) {
		t.Fatalf("expected ErrMalformedIdentifier, got %v", err)
	}
}

func TestParseTickerRegion_Empty(t *testing.T) {
	_, _, err := ParseTickerRegion("")
	if !errors.Is(err, ErrMalformedIdentifier) {
		t.Fatalf("expected ErrMalformedIdentifier, got %v", err)
	}
}

func TestParseTimestamp_Fixed(t *testing.T) {
	loc := time.UTC
	got, err := ParseTimestamp("2026-01-16_13-48", loc, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 1, 16, 13, 48, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestParseTimestamp_EmptyFallsBackToNow(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	got, err := ParseTimestamp("", time.UTC, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(now) {
		t.Errorf("expected fallback to now %v, got %v", now, got)
	}
}

func TestParseTimestamp_Malformed(t *testing.T) {
	for _, bad := range []string{"2026-01-16 13:48", "16/01/2026", "2026-01-16", "garbage"} {
		if _, err := ParseTimestamp(bad, time.UTC, time.Now()); !errors.Is(err, ErrMalformedTimestamp) {
			t.Errorf("%q: expected ErrMalformedTimestamp, got %v", bad, err)
		}
	}
}

func TestToDecimal(t *testing.T) {
	d, err := ToDecimal("123.45")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d == nil || d.String() != "123.45" {
		t.Errorf("expected 123.45, got %v", d)
	}

	d, err = ToDecimal("123.450")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d == nil || !d.Equal(decimal.RequireFromString("123.45")) {
		t.Errorf("expected value equal to 123.45, got %v", d)
	}

	d, err = ToDecimal("")
	if err != nil || d != nil {
		t.Errorf("empty string should map to nil, got %v / %v", d, err)
	}

	d, err = ToDecimal(nil)
	if err != nil || d != nil {
		t.Errorf("nil should map to nil, got %v / %v", d, err)
	}

	d, err = ToDecimal(float64(0.1234))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.String() != "0.1234" {
		t.Errorf("expected 0.1234, got %s", d.String())
	}

	if _, err := ToDecimal("not a number"); !errors.Is(err, ErrMalformedNumber) {
		t.Errorf("expected ErrMalformedNumber, got %v", err)
	}
}

func TestIdentifier(t *testing.T) {
	if got := Identifier(" cop "); got != "COP" {
		t.Errorf("expected COP, got %q", got)
	}
	if got := Identifier("us"); got != "US" {
		t.Errorf("expected US, got %q", got)
	}
	if got := Identifier(""); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}

func TestRating(t *testing.T) {
	if got := Rating("Not Rated"); got != "NOT_RATED" {
		t.Errorf("expected NOT_RATED, got %q", got)
	}
	if got := Rating("  buy "); got != "BUY" {
		t.Errorf("expected BUY, got %q", got)
	}
	if got := Rating("no   rating \t given"); got != "NO_RATING_GIVEN" {
		t.Errorf("expected NO_RATING_GIVEN, got %q", got)
	}
	if got := Rating(""); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}
