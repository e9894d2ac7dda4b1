package services

import (
	"context"
	"fmt"
	"time"

	"github.com/equitywire/research/internal/models"
	"github.com/equitywire/research/internal/repository"
)

// Reference deployment knobs for the dashboard
const (
	TopNUpside       = 10
	TopNMostCovered  = 10
	DowngradeLimit   = 5
	ChartStocksCount = 5  // how many of the most-covered stocks get charts
	ChartMaxPoints   = 60 // cap per-stock chart points
)

// AnalyticsService computes the read-only analytics views. Every entry
// point takes the invocation instant explicitly; callers capture time.Now()
// once and pass it to everything belonging to that invocation.
type AnalyticsService struct {
	analyticsRepo *repository.AnalyticsRepository
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(analyticsRepo *repository.AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{analyticsRepo: analyticsRepo}
}

// TopUpside ranks stocks by max upside within the trailing window
func (s *AnalyticsService) TopUpside(ctx context.Context, now time.Time, window time.Duration, limit int) ([]models.UpsideRanked, error) {
	return s.analyticsRepo.TopUpside(ctx, now, window, limit)
}

// MostCovered ranks stocks by report count within the trailing window
func (s *AnalyticsService) MostCovered(ctx context.Context, now time.Time, window time.Duration, limit int) ([]models.CoverageRanked, error) {
	return s.analyticsRepo.MostCovered(ctx, now, window, limit)
}

// RecentDowngrades lists the most recent BUY/NEUTRAL -> UNDERPERFORM
// transitions
func (s *AnalyticsService) RecentDowngrades(ctx context.Context, limit int) ([]models.DowngradeEvent, error) {
	return s.analyticsRepo.RecentDowngrades(ctx, limit)
}

// PriceSeries returns per-stock chronological price points from start
// onward, each series capped to the most recent maxPoints so recent data
// survives truncation.
func (s *AnalyticsService) PriceSeries(ctx context.Context, stockIDs []int64, start time.Time, maxPoints int) (map[int64][]models.PricePoint, error) {
	series, err := s.analyticsRepo.PriceSeries(ctx, stockIDs, start)
	if err != nil {
		return nil, err
	}
	for id, points := range series {
		series[id] = capTail(points, maxPoints)
	}
	return series, nil
}

// Dashboard assembles the full analytics view set for one instant: upside
// leaders over 7 and 30 days, coverage leaders over 30 and 365 days, recent
// downgrades, and price charts for the top covered stocks of each coverage
// window.
func (s *AnalyticsService) Dashboard(ctx context.Context, now time.Time) (*models.Dashboard, error) {
	defer TrackTime("Dashboard", time.Now())

	upside7, err := s.TopUpside(ctx, now, 7*24*time.Hour, TopNUpside)
	if err != nil {
		return nil, fmt.Errorf("top upside 7d: %w", err)
	}
	upside30, err := s.TopUpside(ctx, now, 30*24*time.Hour, TopNUpside)
	if err != nil {
		return nil, fmt.Errorf("top upside 30d: %w", err)
	}

	covered30, err := s.MostCovered(ctx, now, 30*24*time.Hour, TopNMostCovered)
	if err != nil {
		return nil, fmt.Errorf("most covered 30d: %w", err)
	}
	covered365, err := s.MostCovered(ctx, now, 365*24*time.Hour, TopNMostCovered)
	if err != nil {
		return nil, fmt.Errorf("most covered 365d: %w", err)
	}

	downgrades, err := s.RecentDowngrades(ctx, DowngradeLimit)
	if err != nil {
		return nil, fmt.Errorf("recent downgrades: %w", err)
	}

	series30, err := s.PriceSeries(ctx, chartStockIDs(covered30), now.Add(-30*24*time.Hour), ChartMaxPoints)
	if err != nil {
		return nil, fmt.Errorf("price series 30d: %w", err)
	}
	series365, err := s.PriceSeries(ctx, chartStockIDs(covered365), now.Add(-365*24*time.Hour), ChartMaxPoints)
	if err != nil {
		return nil, fmt.Errorf("price series 365d: %w", err)
	}

	return &models.Dashboard{
		GeneratedAt:    now,
		TopUpside7d:    upside7,
		TopUpside30d:   upside30,
		MostCovered30d: covered30,
		MostCovered365: covered365,
		Downgrades:     downgrades,
		Series30d:      series30,
		Series365d:     series365,
	}, nil
}

// chartStockIDs picks the stocks that get charts: the first
// ChartStocksCount entries of a coverage ranking
func chartStockIDs(ranked []models.CoverageRanked) []int64 {
	n := len(ranked)
	if n > ChartStocksCount {
		n = ChartStocksCount
	}
	ids := make([]int64, 0, n)
	for _, r := range ranked[:n] {
		ids = append(ids, r.ID)
	}
	return ids
}

// capTail keeps the last max elements of a chronological series
func capTail(points []models.PricePoint, max int) []models.PricePoint {
	if len(points) <= max {
		return points
	}
	return points[len(points)-max:]
}
