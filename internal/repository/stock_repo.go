package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/equitywire/research/internal/models"
	"github.com/equitywire/research/internal/normalize"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrStockNotFound = errors.New("stock not found")

// StockRepository handles database operations for stocks
type StockRepository struct {
	pool *pgxpool.Pool
}

// NewStockRepository creates a new StockRepository
func NewStockRepository(pool *pgxpool.Pool) *StockRepository {
	return &StockRepository{pool: pool}
}

// GetByID retrieves a stock by ID
func (r *StockRepository) GetByID(ctx context.Context, id int64) (*models.Stock, error) {
	query := `
		SELECT id, ticker, region, company_name, currency_code
		FROM stocks
		WHERE id = $1
	`
	s := &models.Stock{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Ticker, &s.Region, &s.CompanyName, &s.CurrencyCode,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrStockNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stock: %w", err)
	}
	return s, nil
}

// GetByTickerRegion retrieves a stock by its (ticker, region) identity.
// Inputs are normalized the same way GetOrCreate normalizes them.
func (r *StockRepository) GetByTickerRegion(ctx context.Context, ticker, region string) (*models.Stock, error) {
	query := `
		SELECT id, ticker, region, company_name, currency_code
		FROM stocks
		WHERE ticker = $1 AND region = $2
	`
	s := &models.Stock{}
	err := r.pool.QueryRow(ctx, query, normalize.Identifier(ticker), normalize.Identifier(region)).Scan(
		&s.ID, &s.Ticker, &s.Region, &s.CompanyName, &s.CurrencyCode,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrStockNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stock: %w", err)
	}
	return s, nil
}

// GetOrCreate finds the stock for (ticker, region), creating it with the
// given descriptive fields if it doesn't exist. Identifier fields are
// trimmed and uppercased before they hit the database. The insert uses
// ON CONFLICT DO NOTHING so a concurrent creator is never an error: when
// the insert returns no row we re-fetch whatever won the race.
// Returns (stock, wasCreated, error).
func (r *StockRepository) GetOrCreate(ctx context.Context, tx pgx.Tx, ticker, region, companyName, currency string) (*models.Stock, bool, error) {
	ticker = normalize.Identifier(ticker)
	region = normalize.Identifier(region)
	currency = normalize.Identifier(currency)

	insert := `
		INSERT INTO stocks (ticker, region, company_name, currency_code)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (ticker, region) DO NOTHING
		RETURNING id
	`
	var id int64
	err := tx.QueryRow(ctx, insert, ticker, region, companyName, currency).Scan(&id)
	if err == nil {
		return &models.Stock{
			ID:           id,
			Ticker:       ticker,
			Region:       region,
			CompanyName:  companyName,
			CurrencyCode: currency,
		}, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to insert stock %s %s: %w", ticker, region, err)
	}

	// Conflict: the row exists (possibly created concurrently). First-seen
	// descriptive fields win, so fetch rather than update.
	sel := `
		SELECT id, ticker, region, company_name, currency_code
		FROM stocks
		WHERE ticker = $1 AND region = $2
	`
	s := &models.Stock{}
	err = tx.QueryRow(ctx, sel, ticker, region).Scan(
		&s.ID, &s.Ticker, &s.Region, &s.CompanyName, &s.CurrencyCode,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch stock %s %s after conflict: %w", ticker, region, err)
	}
	return s, false, nil
}

// BeginTx starts a new transaction
func (r *StockRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}
