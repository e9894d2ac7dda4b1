package normalize

import (
	"testing"
)

func TestResolveEPS_PriorityOrder(t *testing.T) {
	record := map[string]any{
		"2027E_EPS": "1.1",
		"2027_EPS":  "1.0",
		"327_EPS":   "0.9",
	}
	vals := ResolveEPS(record)
	if len(vals) != 1 {
		t.Fatalf("expected 1 value, got %d", len(vals))
	}
	if vals[0].Year != 2027 {
		t.Errorf("expected year 2027, got %d", vals[0].Year)
	}
	if vals[0].EPS.String() != "1.1" {
		t.Errorf("expected estimate-key value 1.1 to win, got %s", vals[0].EPS.String())
	}
}

func TestResolveEPS_CodeMapping(t *testing.T) {
	vals := ResolveEPS(map[string]any{"325_EPS": "2.2"})
	if len(vals) != 1 {
		t.Fatalf("expected 1 value, got %d", len(vals))
	}
	if vals[0].Year != 2025 {
		t.Errorf("expected code 325 to map to year 2025, got %d", vals[0].Year)
	}
	if vals[0].EPS.String() != "2.2" {
		t.Errorf("expected 2.2, got %s", vals[0].EPS.String())
	}
}

func TestResolveEPS_SortedAscendingByYear(t *testing.T) {
	record := map[string]any{
		"2027_EPS": "3.3",
		"325_EPS":  "1.1",
		"2026_EPS": "2.2",
	}
	vals := ResolveEPS(record)
	if len(vals) != 3 {
		t.Fatalf("expected 3 values, got %d", len(vals))
	}
	years := []int{vals[0].Year, vals[1].Year, vals[2].Year}
	if years[0] != 2025 || years[1] != 2026 || years[2] != 2027 {
		t.Errorf("expected years ascending 2025,2026,2027, got %v", years)
	}
}

func TestResolveEPS_IgnoresNonEPSKeys(t *testing.T) {
	record := map[string]any{
		"Ticker":    "COP US",
		"Price":     "95.5",
		"12_EPS":    "1.0", // two-digit code: not an EPS key
		"20271_EPS": "1.0",
	}
	if vals := ResolveEPS(record); len(vals) != 0 {
		t.Errorf("expected no EPS values, got %v", vals)
	}
}

func TestResolveEPS_DropsEmptyAndUnparseable(t *testing.T) {
	record := map[string]any{
		"2026_EPS": "",
		"2027_EPS": "n/a",
		"325_EPS":  nil,
	}
	if vals := ResolveEPS(record); len(vals) != 0 {
		t.Errorf("expected no EPS values, got %v", vals)
	}
}

func TestResolveEPS_LowerPriorityDoesNotOverwrite(t *testing.T) {
	// The code key sorts after the year key lexicographically but must not
	// replace the higher-priority value.
	record := map[string]any{
		"2026_EPS": "5.0",
		"326_EPS":  "4.0",
	}
	vals := ResolveEPS(record)
	if len(vals) != 1 {
		t.Fatalf("expected 1 value, got %d", len(vals))
	}
	if vals[0].EPS.String() != "5" && vals[0].EPS.String() != "5.0" {
		t.Errorf("expected year-key value 5.0 to win, got %s", vals[0].EPS.String())
	}
}

func TestResolveEPS_HigherPriorityValueKeptEvenWhenUnparseableSeenLater(t *testing.T) {
	// A later lower-priority parseable value must not resurrect a year whose
	// higher-priority value already won.
	record := map[string]any{
		"2026E_EPS": "7.7",
		"2026_EPS":  "6.6",
		"326_EPS":   "5.5",
	}
	vals := ResolveEPS(record)
	if len(vals) != 1 || vals[0].EPS.String() != "7.7" {
		t.Errorf("expected single value 7.7, got %v", vals)
	}
}
