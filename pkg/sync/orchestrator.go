package sync

import (
	"context"
	"sync"
	"time"

	"github.com/mosfeqahamed/puprime-scraping/pkg/logger"
	"github.com/mosfeqahamed/puprime-scraping/pkg/models"
	"github.com/mosfeqahamed/puprime-scraping/pkg/normalize"
	"github.com/mosfeqahamed/puprime-scraping/pkg/store"
)

// Mode identifies how a run was invoked.
type Mode string

const (
	ModeFull        Mode = "full"
	ModeIncremental Mode = "incremental"
)

// Scraper produces the raw rows of one authenticated portal walk. The
// production implementation acquires a browser, logs in, extracts every
// report page and releases the browser on all exit paths.
type Scraper interface {
	Scrape(ctx context.Context) ([]models.RawRow, error)
}

// AccountWriter persists normalized records.
type AccountWriter interface {
	Upsert(ctx context.Context, records []models.AccountRecord) (store.UpsertResult, error)
}

// SyncLog records run outcomes and serves the incremental cutoff.
type SyncLog interface {
	Append(ctx context.Context, entry models.SyncLogEntry) error
	LastSuccessfulSync(ctx context.Context) (*time.Time, error)
}

// Result summarizes one completed run.
type Result struct {
	Mode         Mode
	TotalScraped int
	Kept         int
	Upsert       store.UpsertResult
}

// Orchestrator ties scraping, normalization and persistence into terminal
// run operations.
type Orchestrator struct {
	mu       sync.Mutex
	scraper  Scraper
	accounts AccountWriter
	logs     SyncLog
	logger   logger.Logger
}

// NewOrchestrator builds an orchestrator.
func NewOrchestrator(scraper Scraper, accounts AccountWriter, logs SyncLog) *Orchestrator {
	return &Orchestrator{
		scraper:  scraper,
		accounts: accounts,
		logs:     logs,
		logger:   logger.GetLogger().WithField("component", "orchestrator"),
	}
}

// RunFull scrapes every report page and upserts everything.
func (o *Orchestrator) RunFull(ctx context.Context) (*Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.run(ctx, ModeFull, nil)
}

// RunIncremental scrapes everything but only upserts records dated after
// the last successful sync. With no successful sync on record it behaves
// exactly like a full run.
func (o *Orchestrator) RunIncremental(ctx context.Context) (*Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	cutoff, err := o.logs.LastSuccessfulSync(ctx)
	if err != nil {
		o.record(ctx, ModeIncremental, 0, err)
		return nil, err
	}
	if cutoff == nil {
		o.logger.Info("No successful sync on record, running full")
		return o.run(ctx, ModeFull, nil)
	}
	return o.run(ctx, ModeIncremental, cutoff)
}

// run is the shared run body. Callers hold the mutex. Whatever happens,
// exactly one sync log entry is written before returning.
func (o *Orchestrator) run(ctx context.Context, mode Mode, cutoff *time.Time) (*Result, error) {
	o.logger.InfoWithFields("Sync run starting", map[string]interface{}{
		"mode": string(mode),
	})

	rows, err := o.scraper.Scrape(ctx)
	if err != nil {
		o.record(ctx, mode, 0, err)
		return nil, err
	}

	records := normalize.Records(rows)
	kept := records
	if cutoff != nil {
		kept = filterAfter(records, *cutoff)
	}

	result, err := o.accounts.Upsert(ctx, kept)
	if err != nil {
		o.record(ctx, mode, 0, err)
		return nil, err
	}

	o.record(ctx, mode, len(kept), nil)
	o.logger.InfoWithFields("Sync run complete", map[string]interface{}{
		"mode":          string(mode),
		"total_scraped": len(records),
		"kept":          len(kept),
		"inserted":      result.Inserted,
		"updated":       result.Updated,
	})

	return &Result{
		Mode:         mode,
		TotalScraped: len(records),
		Kept:         len(kept),
		Upsert:       result,
	}, nil
}

// filterAfter keeps records strictly newer than the cutoff. Records with
// an unset date are excluded; they only flow through full runs.
func filterAfter(records []models.AccountRecord, cutoff time.Time) []models.AccountRecord {
	kept := make([]models.AccountRecord, 0, len(records))
	for _, rec := range records {
		if rec.Date != nil && rec.Date.After(cutoff) {
			kept = append(kept, rec)
		}
	}
	return kept
}

// record appends the run's single sync log entry. Append failures are
// logged but cannot displace the run's own error.
func (o *Orchestrator) record(ctx context.Context, mode Mode, processed int, runErr error) {
	entry := models.SyncLogEntry{
		SyncTime:         time.Now().UTC(),
		Status:           models.SyncStatusSuccess,
		RecordsProcessed: processed,
	}
	if runErr != nil {
		entry.Status = models.SyncStatusFailed
		entry.ErrorMessage = runErr.Error()
	}

	if err := o.logs.Append(ctx, entry); err != nil {
		o.logger.WithError(err).Error("Could not append sync log entry")
	}
	logger.LogSyncRun(string(mode), entry.Status, entry.RecordsProcessed, runErr)
}
