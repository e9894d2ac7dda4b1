package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/equitywire/research/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// AnalyticsRepository runs the read-only ranking and event queries over the
// persisted report facts. All methods take the invocation instant explicitly
// so one dashboard build sees a single consistent "now".
type AnalyticsRepository struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository creates a new AnalyticsRepository
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{pool: pool}
}

// TopUpside ranks stocks by their maximum non-null upside among reports in
// [now-window, now]. Stocks with no qualifying report are excluded. Ties on
// max upside break ascending by ticker so the ordering is deterministic.
func (r *AnalyticsRepository) TopUpside(ctx context.Context, now time.Time, window time.Duration, limit int) ([]models.UpsideRanked, error) {
	query := `
		SELECT s.id, s.ticker, s.region, s.company_name, s.currency_code,
		       MAX(rep.upside) AS max_upside
		FROM stocks s
		JOIN reports rep ON rep.stock_id = s.id
		WHERE rep.as_of_timestamp >= $1
		  AND rep.as_of_timestamp <= $2
		  AND rep.upside IS NOT NULL
		GROUP BY s.id, s.ticker, s.region, s.company_name, s.currency_code
		ORDER BY max_upside DESC, s.ticker ASC
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, now.Add(-window), now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top upside: %w", err)
	}
	defer rows.Close()

	var result []models.UpsideRanked
	for rows.Next() {
		var u models.UpsideRanked
		if err := rows.Scan(&u.ID, &u.Ticker, &u.Region, &u.CompanyName, &u.CurrencyCode, &u.MaxUpside); err != nil {
			return nil, fmt.Errorf("failed to scan upside ranking: %w", err)
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

// MostCovered ranks stocks by report count in [now-window, now]. Zero-count
// stocks are excluded; ties break ascending by ticker.
func (r *AnalyticsRepository) MostCovered(ctx context.Context, now time.Time, window time.Duration, limit int) ([]models.CoverageRanked, error) {
	query := `
		SELECT s.id, s.ticker, s.region, s.company_name, s.currency_code,
		       COUNT(rep.id) AS report_count
		FROM stocks s
		JOIN reports rep ON rep.stock_id = s.id
		WHERE rep.as_of_timestamp >= $1
		  AND rep.as_of_timestamp <= $2
		GROUP BY s.id, s.ticker, s.region, s.company_name, s.currency_code
		ORDER BY report_count DESC, s.ticker ASC
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, now.Add(-window), now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query most covered: %w", err)
	}
	defer rows.Close()

	var result []models.CoverageRanked
	for rows.Next() {
		var c models.CoverageRanked
		if err := rows.Scan(&c.ID, &c.Ticker, &c.Region, &c.CompanyName, &c.CurrencyCode, &c.ReportCount); err != nil {
			return nil, fmt.Errorf("failed to scan coverage ranking: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// RecentDowngrades finds UNDERPERFORM reports whose stock's immediately
// preceding report was rated BUY or NEUTRAL, newest first. The previous
// rating comes from a correlated lateral lookup per candidate report, so
// backfilled older reports are handled correctly without a materialized
// history. Reports with no predecessor never match.
func (r *AnalyticsRepository) RecentDowngrades(ctx context.Context, limit int) ([]models.DowngradeEvent, error) {
	query := `
		SELECT rep.id, rep.as_of_timestamp, rep.rating, prev.rating,
		       s.id, s.ticker, s.region, s.company_name, s.currency_code
		FROM reports rep
		JOIN stocks s ON s.id = rep.stock_id
		JOIN LATERAL (
			SELECT p.rating
			FROM reports p
			WHERE p.stock_id = rep.stock_id
			  AND p.as_of_timestamp < rep.as_of_timestamp
			ORDER BY p.as_of_timestamp DESC
			LIMIT 1
		) prev ON TRUE
		WHERE rep.rating = $1
		  AND prev.rating = ANY($2)
		ORDER BY rep.as_of_timestamp DESC
		LIMIT $3
	`
	fromRatings := []string{models.RatingBuy, models.RatingNeutral}
	rows, err := r.pool.Query(ctx, query, models.RatingUnderperform, fromRatings, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query downgrades: %w", err)
	}
	defer rows.Close()

	var result []models.DowngradeEvent
	for rows.Next() {
		var e models.DowngradeEvent
		if err := rows.Scan(
			&e.ReportID, &e.AsOfTimestamp, &e.Rating, &e.PrevRating,
			&e.Stock.ID, &e.Stock.Ticker, &e.Stock.Region, &e.Stock.CompanyName, &e.Stock.CurrencyCode,
		); err != nil {
			return nil, fmt.Errorf("failed to scan downgrade event: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// PriceSeries returns, per stock, the chronological (timestamp, price,
// price objective) points from reports at or after start. Points where both
// price and price objective are NULL are excluded. Capping to the most
// recent points is the caller's concern.
func (r *AnalyticsRepository) PriceSeries(ctx context.Context, stockIDs []int64, start time.Time) (map[int64][]models.PricePoint, error) {
	series := make(map[int64][]models.PricePoint, len(stockIDs))
	if len(stockIDs) == 0 {
		return series, nil
	}

	query := `
		SELECT stock_id, as_of_timestamp, price, price_objective
		FROM reports
		WHERE stock_id = ANY($1)
		  AND as_of_timestamp >= $2
		  AND NOT (price IS NULL AND price_objective IS NULL)
		ORDER BY stock_id, as_of_timestamp ASC
	`
	rows, err := r.pool.Query(ctx, query, stockIDs, start)
	if err != nil {
		return nil, fmt.Errorf("failed to query price series: %w", err)
	}
	defer rows.Close()

	for _, id := range stockIDs {
		series[id] = []models.PricePoint{}
	}
	for rows.Next() {
		var stockID int64
		var p models.PricePoint
		var price, po decimal.NullDecimal
		if err := rows.Scan(&stockID, &p.T, &price, &po); err != nil {
			return nil, fmt.Errorf("failed to scan price point: %w", err)
		}
		p.Price = fromNull(price)
		p.PriceObjective = fromNull(po)
		series[stockID] = append(series[stockID], p)
	}
	return series, rows.Err()
}
