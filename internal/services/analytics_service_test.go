package services

import (
	"testing"
	"time"

	"github.com/equitywire/research/internal/models"
)

func makePoints(n int) []models.PricePoint {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]models.PricePoint, n)
	for i := range points {
		points[i] = models.PricePoint{T: base.Add(time.Duration(i) * 24 * time.Hour)}
	}
	return points
}

func TestCapTail_KeepsMostRecent(t *testing.T) {
	points := makePoints(100)
	capped := capTail(points, 60)
	if len(capped) != 60 {
		t.Fatalf("expected 60 points, got %d", len(capped))
	}
	// The tail must be the chronologically last 60 points, still ascending.
	if !capped[0].T.Equal(points[40].T) {
		t.Errorf("expected first kept point %v, got %v", points[40].T, capped[0].T)
	}
	if !capped[59].T.Equal(points[99].T) {
		t.Errorf("expected last kept point %v, got %v", points[99].T, capped[59].T)
	}
	for i := 1; i < len(capped); i++ {
		if !capped[i].T.After(capped[i-1].T) {
			t.Fatalf("points out of order at %d", i)
		}
	}
}

func TestCapTail_ShortSeriesUntouched(t *testing.T) {
	points := makePoints(10)
	capped := capTail(points, 60)
	if len(capped) != 10 {
		t.Errorf("expected 10 points, got %d", len(capped))
	}
}

func TestChartStockIDs(t *testing.T) {
	ranked := make([]models.CoverageRanked, 8)
	for i := range ranked {
		ranked[i].ID = int64(i + 1)
	}
	ids := chartStockIDs(ranked)
	if len(ids) != ChartStocksCount {
		t.Fatalf("expected %d ids, got %d", ChartStocksCount, len(ids))
	}
	for i, id := range ids {
		if id != int64(i+1) {
			t.Errorf("expected id %d at %d, got %d", i+1, i, id)
		}
	}

	if got := chartStockIDs(ranked[:2]); len(got) != 2 {
		t.Errorf("expected 2 ids for short ranking, got %d", len(got))
	}
}
