package portal

import (
	"context"
	"fmt"
	"strings"

	"github.com/mosfeqahamed/puprime-scraping/pkg/browser"
	errs "github.com/mosfeqahamed/puprime-scraping/pkg/errors"
	"github.com/mosfeqahamed/puprime-scraping/pkg/logger"
	"github.com/mosfeqahamed/puprime-scraping/pkg/models"
	"github.com/mosfeqahamed/puprime-scraping/pkg/ratelimit"
)

// Column order is a fixed contract with the report table. Eight columns:
// date, user id, account number, name, email, campaign source, id status,
// poa status.
const reportColumns = 8

// ExtractorConfig bounds a report extraction walk.
type ExtractorConfig struct {
	ReportURL string
	// MaxPages is a hard ceiling on pages visited.
	MaxPages int
	// StallPages aborts the walk after this many consecutive pages that
	// contribute no previously-unseen account number. Guards against a
	// pager that keeps advertising a next page.
	StallPages int
}

// Extractor walks the paginated referral report and yields one raw row per
// accepted table row, in page-then-row order.
type Extractor struct {
	driver   Driver
	resolver *browser.Resolver
	limiter  ratelimit.Limiter
	cfg      ExtractorConfig
	logger   logger.Logger
}

// NewExtractor builds an extractor. The limiter paces page turns so the
// walk does not hammer the portal.
func NewExtractor(driver Driver, resolver *browser.Resolver, limiter ratelimit.Limiter, cfg ExtractorConfig) *Extractor {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 500
	}
	if cfg.StallPages <= 0 {
		cfg.StallPages = 3
	}
	return &Extractor{
		driver:   driver,
		resolver: resolver,
		limiter:  limiter,
		cfg:      cfg,
		logger:   logger.GetLogger().WithField("component", "extractor"),
	}
}

// Extract navigates to the report view and walks every page. An absent
// table or a first page with no rows at all is terminal; individual bad
// rows are logged and skipped.
func (e *Extractor) Extract(ctx context.Context) ([]models.RawRow, error) {
	if err := e.navigateToReport(ctx); err != nil {
		return nil, err
	}

	tableRes, err := e.resolver.Resolve(ctx, reportTableTarget)
	if err != nil {
		return nil, err
	}
	if !tableRes.Found {
		return nil, errs.New(errs.ErrorTypeExtraction, "report table not found")
	}

	var accepted []models.RawRow
	seen := map[string]struct{}{}
	stalled := 0

	for page := 1; page <= e.cfg.MaxPages; page++ {
		if e.limiter != nil {
			e.limiter.Wait()
		}

		cells, err := e.pageRows(ctx)
		if err != nil {
			return nil, errs.Wrap(errs.ErrorTypeExtraction, "failed to read report rows", err)
		}
		if len(cells) == 0 && page == 1 {
			return nil, errs.New(errs.ErrorTypeExtraction, "report table has no rows")
		}

		pageAccepted, newAccounts := e.sliceRows(cells, page, seen)
		accepted = append(accepted, pageAccepted...)

		logger.LogPageExtracted(page, len(pageAccepted), len(cells)-len(pageAccepted))

		if newAccounts == 0 {
			stalled++
			if stalled >= e.cfg.StallPages {
				e.logger.WarnWithFields("Pagination stalled, stopping walk", map[string]interface{}{
					"page":        page,
					"stall_pages": stalled,
				})
				break
			}
		} else {
			stalled = 0
		}

		advanced, err := e.nextPage(ctx)
		if err != nil {
			return nil, err
		}
		if !advanced {
			break
		}
	}

	e.logger.InfoWithFields("Extraction complete", map[string]interface{}{
		"rows": len(accepted),
	})
	return accepted, nil
}

// navigateToReport activates the in-portal report navigation, falling back
// to the direct report URL when no control resolves or the click fails.
func (e *Extractor) navigateToReport(ctx context.Context) error {
	res, err := e.resolver.Resolve(ctx, reportNavTarget)
	if err != nil {
		return err
	}
	if res.Found {
		if err := e.driver.Click(ctx, res.Locator); err == nil {
			return nil
		} else {
			e.logger.WithError(err).Warn("Report navigation control failed, using direct URL")
		}
	}
	if err := e.driver.Navigate(ctx, e.cfg.ReportURL); err != nil {
		return errs.Wrap(errs.ErrorTypeNavigation, "failed to reach report view", err)
	}
	return nil
}

const pageRowsJS = `(function() {
	var variants = [%VARIANTS%];
	for (var v = 0; v < variants.length; v++) {
		var rows = document.querySelectorAll(variants[v]);
		var out = [];
		for (var i = 0; i < rows.length; i++) {
			var cells = rows[i].querySelectorAll('td');
			if (cells.length === 0) continue;
			var texts = [];
			for (var c = 0; c < cells.length; c++) {
				texts.push(cells[c].innerText.trim());
			}
			out.push(texts);
		}
		if (out.length > 0) return out;
	}
	return [];
})()`

// pageRows reads the current page's row cells. Row selector variants are
// tried in order inside the page; the first variant yielding data rows
// wins, which skips header-only matches.
func (e *Extractor) pageRows(ctx context.Context) ([][]string, error) {
	quoted := make([]string, len(rowSelectorVariants))
	for i, v := range rowSelectorVariants {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	js := strings.Replace(pageRowsJS, "%VARIANTS%", strings.Join(quoted, ", "), 1)

	var cells [][]string
	if err := e.driver.Eval(ctx, js, &cells); err != nil {
		return nil, err
	}
	return cells, nil
}

// sliceRows maps cell slices onto raw rows by ordinal position. A row is
// rejected when it is too short or when any of the first five fields is
// blank.
func (e *Extractor) sliceRows(cells [][]string, page int, seen map[string]struct{}) ([]models.RawRow, int) {
	var rows []models.RawRow
	newAccounts := 0

	for _, c := range cells {
		if len(c) < reportColumns {
			logger.LogRowRejected(page, fmt.Sprintf("expected %d columns, got %d", reportColumns, len(c)))
			continue
		}
		row := models.RawRow{
			Date:           c[0],
			UserID:         c[1],
			AccountNumber:  c[2],
			Name:           c[3],
			Email:          c[4],
			CampaignSource: c[5],
			IDStatus:       c[6],
			POAStatus:      c[7],
		}
		if row.Date == "" || row.UserID == "" || row.AccountNumber == "" || row.Name == "" || row.Email == "" {
			logger.LogRowRejected(page, "blank required field")
			continue
		}
		if _, ok := seen[row.AccountNumber]; !ok {
			seen[row.AccountNumber] = struct{}{}
			newAccounts++
		}
		rows = append(rows, row)
	}
	return rows, newAccounts
}

const numericPageJS = `(function() {
	var active = document.querySelector('.el-pager li.active, .pagination li.active a, .pagination .current');
	if (!active) return false;
	var current = parseInt(active.textContent.trim(), 10);
	if (isNaN(current)) return false;
	var links = document.querySelectorAll('.el-pager li, .pagination li a, .pagination a');
	for (var i = 0; i < links.length; i++) {
		if (parseInt(links[i].textContent.trim(), 10) === current + 1) {
			links[i].click();
			return true;
		}
	}
	return false;
})()`

// nextPageDisabledJS reports whether the matched next control is unusable.
const nextPageDisabledJS = `(function(sel) {
	var el = document.querySelector(sel);
	if (!el) return true;
	if (el.disabled) return true;
	var cls = el.className || '';
	if (cls.indexOf('disabled') !== -1) return true;
	return el.getAttribute('aria-disabled') === 'true';
})(%SEL%)`

// nextPage advances to the following report page. Preference order: an
// enabled next control, then a numeric page link for current+1. Returns
// false when neither yields a page, which terminates the walk.
func (e *Extractor) nextPage(ctx context.Context) (bool, error) {
	res, err := e.resolver.Resolve(ctx, nextPageTarget)
	if err != nil {
		return false, err
	}
	if res.Found {
		disabled := false
		if res.Locator.Strategy == browser.StrategyCSS {
			js := strings.Replace(nextPageDisabledJS, "%SEL%", fmt.Sprintf("%q", res.Locator.Selector), 1)
			if err := e.driver.Eval(ctx, js, &disabled); err != nil {
				disabled = false
			}
		}
		if !disabled {
			if clickErr := e.driver.Click(ctx, res.Locator); clickErr == nil {
				return true, nil
			} else {
				e.logger.WithError(clickErr).Warn("Next control click failed, trying numeric links")
			}
		}
	}

	advanced := false
	if err := e.driver.Eval(ctx, numericPageJS, &advanced); err != nil {
		return false, nil
	}
	return advanced, nil
}
