package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps the pgx connection pool
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a connection pool and verifies connectivity
func New(ctx context.Context, pgURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, pgURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close releases the connection pool
func (db *DB) Close() {
	db.Pool.Close()
}

// schema is the bootstrap DDL. Every statement is idempotent so EnsureSchema
// can run on every startup.
const schema = `
CREATE TABLE IF NOT EXISTS stocks (
	id            BIGSERIAL PRIMARY KEY,
	ticker        VARCHAR(16) NOT NULL,
	region        VARCHAR(8)  NOT NULL DEFAULT 'US',
	company_name  VARCHAR(255) NOT NULL DEFAULT '',
	currency_code VARCHAR(3)  NOT NULL DEFAULT 'USD',
	CONSTRAINT uniq_stock_ticker_region UNIQUE (ticker, region)
);

CREATE TABLE IF NOT EXISTS reports (
	id                  BIGSERIAL PRIMARY KEY,
	stock_id            BIGINT NOT NULL REFERENCES stocks(id) ON DELETE CASCADE,
	link                VARCHAR(500) NOT NULL DEFAULT '',
	as_of_timestamp     TIMESTAMPTZ NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	blurb               TEXT NOT NULL DEFAULT '',
	rating              VARCHAR(20) NOT NULL DEFAULT '',
	analyst_team        VARCHAR(128) NOT NULL DEFAULT '',
	report_subtitle     VARCHAR(255) NOT NULL DEFAULT '',
	raw_text            JSONB NOT NULL DEFAULT '[]',
	price               NUMERIC(20,6),
	price_objective     NUMERIC(20,6),
	upside              NUMERIC(10,6),
	average_daily_value NUMERIC(24,2),
	market_cap          NUMERIC(28,2),
	CONSTRAINT uniq_report_as_of_per_stock UNIQUE (stock_id, as_of_timestamp)
);

CREATE INDEX IF NOT EXISTS idx_reports_stock_as_of
	ON reports (stock_id, as_of_timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_reports_stock_rating_as_of
	ON reports (stock_id, rating, as_of_timestamp DESC);

CREATE TABLE IF NOT EXISTS report_takeaways (
	id        BIGSERIAL PRIMARY KEY,
	report_id BIGINT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
	ord       SMALLINT NOT NULL,
	text      TEXT NOT NULL,
	CONSTRAINT uniq_takeaway_ord_per_report UNIQUE (report_id, ord)
);

CREATE TABLE IF NOT EXISTS eps_forecasts (
	id        BIGSERIAL PRIMARY KEY,
	report_id BIGINT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
	year      SMALLINT NOT NULL,
	eps       NUMERIC(18,6) NOT NULL,
	CONSTRAINT uniq_eps_year_per_report UNIQUE (report_id, year)
);

CREATE INDEX IF NOT EXISTS idx_eps_forecasts_year ON eps_forecasts (year);
`

// EnsureSchema creates the tables and indexes if they don't exist yet
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
