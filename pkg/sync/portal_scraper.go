package sync

import (
	"context"
	"time"

	"github.com/mosfeqahamed/puprime-scraping/pkg/browser"
	"github.com/mosfeqahamed/puprime-scraping/pkg/config"
	"github.com/mosfeqahamed/puprime-scraping/pkg/models"
	"github.com/mosfeqahamed/puprime-scraping/pkg/portal"
	"github.com/mosfeqahamed/puprime-scraping/pkg/ratelimit"
)

// PortalScraper is the production Scraper. Each Scrape call owns one
// browser for its whole lifetime and releases it on every exit path.
type PortalScraper struct {
	cfg *config.Config
}

// NewPortalScraper builds a scraper from the loaded configuration.
func NewPortalScraper(cfg *config.Config) *PortalScraper {
	return &PortalScraper{cfg: cfg}
}

// Scrape logs in to the portal and walks the full referral report.
func (s *PortalScraper) Scrape(ctx context.Context) ([]models.RawRow, error) {
	sess, err := browser.Acquire(ctx, browser.Options{
		Headless:     s.cfg.Browser.Headless,
		Stealth:      s.cfg.Browser.Stealth,
		UserAgent:    s.cfg.Browser.UserAgent,
		WindowWidth:  s.cfg.Browser.WindowWidth,
		WindowHeight: s.cfg.Browser.WindowHeight,
		KeyDelayMin:  s.cfg.Scrape.KeyDelayMin,
		KeyDelayMax:  s.cfg.Scrape.KeyDelayMax,
	})
	if err != nil {
		return nil, err
	}
	defer sess.Release()

	resolver := browser.NewResolver(sess, s.cfg.Browser.StepTimeout)

	flow := portal.NewLoginFlow(sess, resolver, portal.LoginConfig{
		LoginURL:  s.cfg.Portal.LoginURL,
		Email:     s.cfg.Portal.Email,
		Password:  s.cfg.Portal.Password,
		LoginWait: s.cfg.Browser.LoginWait,
	})
	if _, err := flow.Run(ctx); err != nil {
		return nil, err
	}

	limiter := ratelimit.NewSlidingWindow(s.cfg.Scrape.PagesPerMinute, time.Minute)
	extractor := portal.NewExtractor(sess, resolver, limiter, portal.ExtractorConfig{
		ReportURL:  s.cfg.Portal.ReportURL,
		MaxPages:   s.cfg.Scrape.MaxPages,
		StallPages: s.cfg.Scrape.StallPages,
	})
	return extractor.Extract(ctx)
}
