package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/equitywire/research/internal/normalize"
	"github.com/equitywire/research/internal/reportfeed"
	"github.com/equitywire/research/internal/repository"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ImportSummary contains the counts for one batch import run. Skipped means
// the report already existed; record-level parse failures are not counted
// separately and never fail the run.
type ImportSummary struct {
	Parsed  int `json:"parsed"`
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// ImportService ingests raw report documents into the store
type ImportService struct {
	stockRepo  *repository.StockRepository
	reportRepo *repository.ReportRepository
	loc        *time.Location
	now        func() time.Time
}

// NewImportService creates a new ImportService. loc is the zone report
// timestamps are interpreted in.
func NewImportService(stockRepo *repository.StockRepository, reportRepo *repository.ReportRepository, loc *time.Location) *ImportService {
	return &ImportService{
		stockRepo:  stockRepo,
		reportRepo: reportRepo,
		loc:        loc,
		now:        time.Now,
	}
}

// canonicalRecord is one source record after parsing and normalization,
// ready to persist
type canonicalRecord struct {
	Ticker      string
	Region      string
	AsOf        time.Time
	CompanyName string
	Currency    string
	Report      repository.ReportInput
	Takeaways   []string
	EPS         []normalize.EPSValue
}

// parseRecord builds the canonical record from one raw JSON object. Any
// returned error is record-level: the caller skips the record and moves on.
func parseRecord(rec map[string]any, loc *time.Location, now time.Time) (*canonicalRecord, error) {
	ticker, region, err := normalize.ParseTickerRegion(strField(rec, "Ticker"))
	if err != nil {
		return nil, err
	}
	asOf, err := normalize.ParseTimestamp(strField(rec, "Timestamp"), loc, now)
	if err != nil {
		return nil, err
	}

	currency := strField(rec, "Currency")
	if currency == "" {
		currency = "USD"
	}

	price, err := decField(rec, "Price")
	if err != nil {
		return nil, err
	}
	po, err := decField(rec, "Price_Objective")
	if err != nil {
		return nil, err
	}
	upside, err := decField(rec, "Upside")
	if err != nil {
		return nil, err
	}
	adv, err := decField(rec, "Average_Daily_Value")
	if err != nil {
		return nil, err
	}
	mcap, err := decField(rec, "Market_Cap")
	if err != nil {
		return nil, err
	}

	// Empty takeaway entries are dropped; order stays contiguous over the
	// kept entries.
	var takeaways []string
	for _, t := range strList(rec, "Key_Takeaways") {
		if t != "" {
			takeaways = append(takeaways, t)
		}
	}

	return &canonicalRecord{
		Ticker:      ticker,
		Region:      region,
		AsOf:        asOf,
		CompanyName: strField(rec, "Company"),
		Currency:    currency,
		Report: repository.ReportInput{
			Link:              strField(rec, "Link"),
			Blurb:             strField(rec, "Blurb"),
			Rating:            strField(rec, "Rating"),
			AnalystTeam:       strField(rec, "Analyst_Team"),
			ReportSubtitle:    strField(rec, "Report_Subtitle"),
			RawText:           strList(rec, "Raw_Text"),
			Price:             price,
			PriceObjective:    po,
			Upside:            upside,
			AverageDailyValue: adv,
			MarketCap:         mcap,
		},
		Takeaways: takeaways,
		EPS:       normalize.ResolveEPS(rec),
	}, nil
}

// importRecord persists one canonical record inside a single transaction:
// get-or-create the stock, get-or-create the report, and only when the
// report is new, bulk-insert its children. Returns whether the report was
// created (false means it already existed and nothing was touched).
func (s *ImportService) importRecord(ctx context.Context, rec *canonicalRecord) (bool, error) {
	tx, err := s.stockRepo.BeginTx(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stock, _, err := s.stockRepo.GetOrCreate(ctx, tx, rec.Ticker, rec.Region, rec.CompanyName, rec.Currency)
	if err != nil {
		return false, err
	}

	reportID, created, err := s.reportRepo.GetOrCreate(ctx, tx, stock.ID, rec.AsOf, &rec.Report)
	if err != nil {
		return false, err
	}

	if created {
		if err := s.reportRepo.InsertTakeaways(ctx, tx, reportID, rec.Takeaways); err != nil {
			return false, err
		}
		if err := s.reportRepo.InsertEPSForecasts(ctx, tx, reportID, rec.EPS); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit record: %w", err)
	}
	return created, nil
}

// importDocument processes one decoded document. Malformed records are
// logged and skipped; any returned error is fatal for the document.
func (s *ImportService) importDocument(ctx context.Context, doc *reportfeed.Document, dryRun bool) (parsed, created, skipped int, err error) {
	for _, raw := range doc.Records {
		parsed++

		rec, perr := parseRecord(raw, s.loc, s.now())
		if perr != nil {
			log.Warnf("Skipping bad record in %s: %v", doc.Path, perr)
			continue
		}

		if dryRun {
			continue
		}

		wasCreated, ierr := s.importRecord(ctx, rec)
		if ierr != nil {
			return parsed, created, skipped, ierr
		}
		if wasCreated {
			created++
		} else {
			skipped++
		}
	}
	return parsed, created, skipped, nil
}

// ImportDocuments imports already-decoded documents sequentially. A
// document-level failure stops that document but the remaining documents are
// still attempted; all such failures are joined into the returned error.
func (s *ImportService) ImportDocuments(ctx context.Context, docs []*reportfeed.Document, dryRun bool) (*ImportSummary, error) {
	defer TrackTime("ImportDocuments", time.Now())

	summary := &ImportSummary{}
	var fatal []error
	for _, doc := range docs {
		p, c, sk, err := s.importDocument(ctx, doc, dryRun)
		summary.Parsed += p
		summary.Created += c
		summary.Skipped += sk
		if err != nil {
			log.Errorf("Import of %s failed: %v", doc.Path, err)
			fatal = append(fatal, fmt.Errorf("%s: %w", doc.Path, err))
		}
	}
	return summary, errors.Join(fatal...)
}

// ImportDir enumerates *.json documents under dir and imports them, sharded
// across at most workers goroutines. Per-record atomicity is unaffected by
// sharding: every record still commits in its own transaction. Documents
// that fail to read, decode, or import are reported in the joined error;
// the summary covers whatever was attempted.
func (s *ImportService) ImportDir(ctx context.Context, dir string, dryRun bool, workers int) (*ImportSummary, error) {
	defer TrackTime("ImportDir", time.Now())

	paths, err := reportfeed.ListDocuments(dir)
	if err != nil {
		return &ImportSummary{}, err
	}
	log.Infof("Found %d document(s) in %s. Dry-run=%v", len(paths), dir, dryRun)

	if workers < 1 {
		workers = 1
	}

	var parsed, created, skipped atomic.Int64
	var mu sync.Mutex
	var fatal []error

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, path := range paths {
		path := path // per-iteration copy; required while go.mod is below 1.22
		g.Go(func() error {
			doc, err := reportfeed.ReadDocument(path)
			if err == nil {
				var p, c, sk int
				p, c, sk, err = s.importDocument(gctx, doc, dryRun)
				parsed.Add(int64(p))
				created.Add(int64(c))
				skipped.Add(int64(sk))
			}
			if err != nil {
				log.Errorf("Import of %s failed: %v", path, err)
				mu.Lock()
				fatal = append(fatal, err)
				mu.Unlock()
			}
			// Failures are collected, not returned: one bad document must
			// not cancel the siblings.
			return nil
		})
	}
	_ = g.Wait()

	summary := &ImportSummary{
		Parsed:  int(parsed.Load()),
		Created: int(created.Load()),
		Skipped: int(skipped.Load()),
	}
	return summary, errors.Join(fatal...)
}

// strField returns the string value for key, or "" when absent, nil or not
// a string
func strField(rec map[string]any, key string) string {
	if v, ok := rec[key].(string); ok {
		return v
	}
	return ""
}

// strList returns the []string value for key, tolerating the []any that
// encoding/json produces. Non-string elements are dropped.
func strList(rec map[string]any, key string) []string {
	raw, ok := rec[key].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// decField parses a nullable decimal field. Absent and empty map to nil.
func decField(rec map[string]any, key string) (*decimal.Decimal, error) {
	return normalize.ToDecimal(rec[key])
}
