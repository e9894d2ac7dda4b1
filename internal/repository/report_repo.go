package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/equitywire/research/internal/models"
	"github.com/equitywire/research/internal/normalize"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ReportRepository handles database operations for reports and their
// takeaway / EPS-forecast children
type ReportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// ReportInput carries the report fields seeded at creation. Nil decimals
// map to NULL columns.
type ReportInput struct {
	Link              string
	Blurb             string
	Rating            string
	AnalystTeam       string
	ReportSubtitle    string
	RawText           []string
	Price             *decimal.Decimal
	PriceObjective    *decimal.Decimal
	Upside            *decimal.Decimal
	AverageDailyValue *decimal.Decimal
	MarketCap         *decimal.Decimal
}

// GetOrCreate finds the report for (stockID, asOf), creating it with the
// given fields if absent. Reports are append-only: when the row already
// exists (including via a concurrent insert racing this one) the existing
// row's ID is returned untouched and wasCreated is false.
func (r *ReportRepository) GetOrCreate(ctx context.Context, tx pgx.Tx, stockID int64, asOf time.Time, in *ReportInput) (reportID int64, wasCreated bool, err error) {
	rawText := in.RawText
	if rawText == nil {
		rawText = []string{}
	}
	rawJSON, err := json.Marshal(rawText)
	if err != nil {
		return 0, false, fmt.Errorf("failed to encode raw_text: %w", err)
	}

	insert := `
		INSERT INTO reports (
			stock_id, link, as_of_timestamp, blurb, rating, analyst_team,
			report_subtitle, raw_text, price, price_objective, upside,
			average_daily_value, market_cap
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (stock_id, as_of_timestamp) DO NOTHING
		RETURNING id
	`
	err = tx.QueryRow(ctx, insert,
		stockID, in.Link, asOf, in.Blurb, normalize.Rating(in.Rating),
		in.AnalystTeam, in.ReportSubtitle, rawJSON,
		in.Price, in.PriceObjective, in.Upside,
		in.AverageDailyValue, in.MarketCap,
	).Scan(&reportID)
	if err == nil {
		return reportID, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, fmt.Errorf("failed to insert report for stock %d: %w", stockID, err)
	}

	sel := `SELECT id FROM reports WHERE stock_id = $1 AND as_of_timestamp = $2`
	if err := tx.QueryRow(ctx, sel, stockID, asOf).Scan(&reportID); err != nil {
		return 0, false, fmt.Errorf("failed to fetch report for stock %d after conflict: %w", stockID, err)
	}
	return reportID, false, nil
}

// InsertTakeaways bulk-inserts takeaway rows for a newly created report.
// texts must already be filtered to non-empty entries; order is the index.
func (r *ReportRepository) InsertTakeaways(ctx context.Context, tx pgx.Tx, reportID int64, texts []string) error {
	if len(texts) == 0 {
		return nil
	}

	query := `INSERT INTO report_takeaways (report_id, ord, text) VALUES ($1, $2, $3)`
	batch := &pgx.Batch{}
	for i, text := range texts {
		batch.Queue(query, reportID, i, text)
	}

	br := tx.SendBatch(ctx, batch)
	defer br.Close()
	for range texts {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert takeaway for report %d: %w", reportID, err)
		}
	}
	return nil
}

// InsertEPSForecasts bulk-inserts EPS rows for a newly created report.
// vals must be resolved (one value per year, ascending).
func (r *ReportRepository) InsertEPSForecasts(ctx context.Context, tx pgx.Tx, reportID int64, vals []normalize.EPSValue) error {
	if len(vals) == 0 {
		return nil
	}

	query := `INSERT INTO eps_forecasts (report_id, year, eps) VALUES ($1, $2, $3)`
	batch := &pgx.Batch{}
	for _, v := range vals {
		batch.Queue(query, reportID, v.Year, v.EPS)
	}

	br := tx.SendBatch(ctx, batch)
	defer br.Close()
	for range vals {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert EPS forecast for report %d: %w", reportID, err)
		}
	}
	return nil
}

// GetByID retrieves a single report with its scalar fields
func (r *ReportRepository) GetByID(ctx context.Context, id int64) (*models.Report, error) {
	query := `
		SELECT id, stock_id, link, as_of_timestamp, created_at, blurb, rating,
		       analyst_team, report_subtitle, raw_text, price, price_objective,
		       upside, average_daily_value, market_cap
		FROM reports
		WHERE id = $1
	`
	rep, err := scanReport(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("report %d not found", id)
	}
	return rep, err
}

// GetTakeaways retrieves a report's takeaways in order
func (r *ReportRepository) GetTakeaways(ctx context.Context, reportID int64) ([]models.Takeaway, error) {
	query := `
		SELECT id, report_id, ord, text
		FROM report_takeaways
		WHERE report_id = $1
		ORDER BY ord ASC
	`
	rows, err := r.pool.Query(ctx, query, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to query takeaways: %w", err)
	}
	defer rows.Close()

	var result []models.Takeaway
	for rows.Next() {
		var t models.Takeaway
		if err := rows.Scan(&t.ID, &t.ReportID, &t.Order, &t.Text); err != nil {
			return nil, fmt.Errorf("failed to scan takeaway: %w", err)
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// GetEPSForecasts retrieves a report's EPS forecasts ascending by year
func (r *ReportRepository) GetEPSForecasts(ctx context.Context, reportID int64) ([]models.EPSForecast, error) {
	query := `
		SELECT id, report_id, year, eps
		FROM eps_forecasts
		WHERE report_id = $1
		ORDER BY year ASC
	`
	rows, err := r.pool.Query(ctx, query, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to query EPS forecasts: %w", err)
	}
	defer rows.Close()

	var result []models.EPSForecast
	for rows.Next() {
		var f models.EPSForecast
		if err := rows.Scan(&f.ID, &f.ReportID, &f.Year, &f.EPS); err != nil {
			return nil, fmt.Errorf("failed to scan EPS forecast: %w", err)
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

// CountForStock returns how many reports exist for a stock
func (r *ReportRepository) CountForStock(ctx context.Context, stockID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM reports WHERE stock_id = $1`, stockID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return n, nil
}

// BeginTx starts a new transaction
func (r *ReportRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// scanReport scans the 15-column report row shape shared by report queries
func scanReport(row pgx.Row) (*models.Report, error) {
	rep := &models.Report{}
	var rawJSON []byte
	var price, po, upside, adv, mcap decimal.NullDecimal
	err := row.Scan(
		&rep.ID, &rep.StockID, &rep.Link, &rep.AsOfTimestamp, &rep.CreatedAt,
		&rep.Blurb, &rep.Rating, &rep.AnalystTeam, &rep.ReportSubtitle,
		&rawJSON, &price, &po, &upside, &adv, &mcap,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rawJSON, &rep.RawText); err != nil {
		return nil, fmt.Errorf("failed to decode raw_text: %w", err)
	}
	rep.Price = fromNull(price)
	rep.PriceObjective = fromNull(po)
	rep.Upside = fromNull(upside)
	rep.AverageDailyValue = fromNull(adv)
	rep.MarketCap = fromNull(mcap)
	return rep, nil
}

func fromNull(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}
