package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Common normalized rating codes. Ratings are free-form in the source data;
// these are the ones the analytics queries care about.
const (
	RatingBuy          = "BUY"
	RatingNeutral      = "NEUTRAL"
	RatingUnderperform = "UNDERPERFORM"
)

// Stock identifies an equity by (ticker, region). Ticker, region and
// currency are stored trimmed and uppercased; descriptive fields keep their
// first-seen values and are never overwritten by later imports.
type Stock struct {
	ID           int64  `json:"id"`
	Ticker       string `json:"ticker"`
	Region       string `json:"region"`
	CompanyName  string `json:"company_name"`
	CurrencyCode string `json:"currency_code"`
}

// Report is one analyst research note for one stock at one instant.
// Reports are append-only: a (stock, as_of_timestamp) pair is written once
// and never updated.
type Report struct {
	ID                int64            `json:"id"`
	StockID           int64            `json:"stock_id"`
	Link              string           `json:"link"`
	AsOfTimestamp     time.Time        `json:"as_of_timestamp"`
	CreatedAt         time.Time        `json:"created_at"`
	Blurb             string           `json:"blurb"`
	Rating            string           `json:"rating"`
	AnalystTeam       string           `json:"analyst_team"`
	ReportSubtitle    string           `json:"report_subtitle"`
	RawText           []string         `json:"raw_text"`
	Price             *decimal.Decimal `json:"price"`
	PriceObjective    *decimal.Decimal `json:"price_objective"`
	Upside            *decimal.Decimal `json:"upside"`
	AverageDailyValue *decimal.Decimal `json:"average_daily_value"`
	MarketCap         *decimal.Decimal `json:"market_cap"`
}

// Takeaway is one key-takeaway line from a report. Order is zero-based and
// contiguous over the non-empty source entries.
type Takeaway struct {
	ID       int64  `json:"id"`
	ReportID int64  `json:"report_id"`
	Order    int    `json:"order"`
	Text     string `json:"text"`
}

// EPSForecast is one earnings-per-share estimate for a fiscal year.
// At most one row per (report, year).
type EPSForecast struct {
	ID       int64           `json:"id"`
	ReportID int64           `json:"report_id"`
	Year     int             `json:"year"`
	EPS      decimal.Decimal `json:"eps"`
}

// UpsideRanked is a stock ranked by its maximum upside within a window
type UpsideRanked struct {
	Stock
	MaxUpside decimal.Decimal `json:"max_upside"`
}

// CoverageRanked is a stock ranked by report count within a window
type CoverageRanked struct {
	Stock
	ReportCount int `json:"report_count"`
}

// DowngradeEvent is a report whose rating is UNDERPERFORM while the stock's
// immediately preceding report was rated BUY or NEUTRAL.
type DowngradeEvent struct {
	Stock         Stock     `json:"stock"`
	ReportID      int64     `json:"report_id"`
	AsOfTimestamp time.Time `json:"as_of_timestamp"`
	Rating        string    `json:"rating"`
	PrevRating    string    `json:"prev_rating"`
}

// PricePoint is one (timestamp, price, price objective) sample from a
// report. At least one of Price / PriceObjective is non-nil.
type PricePoint struct {
	T              time.Time        `json:"t"`
	Price          *decimal.Decimal `json:"price"`
	PriceObjective *decimal.Decimal `json:"po"`
}

// Dashboard aggregates the analytics views for one invocation instant
type Dashboard struct {
	GeneratedAt    time.Time              `json:"generated_at"`
	TopUpside7d    []UpsideRanked         `json:"top_upside_7d"`
	TopUpside30d   []UpsideRanked         `json:"top_upside_30d"`
	MostCovered30d []CoverageRanked       `json:"most_covered_30d"`
	MostCovered365 []CoverageRanked       `json:"most_covered_365d"`
	Downgrades     []DowngradeEvent       `json:"recent_downgrades"`
	Series30d      map[int64][]PricePoint `json:"chart_series_30d"`
	Series365d     map[int64][]PricePoint `json:"chart_series_365d"`
}
