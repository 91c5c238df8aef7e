package browser

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"github.com/mosfeqahamed/puprime-scraping/pkg/logger"
	"github.com/mosfeqahamed/puprime-scraping/pkg/models"
)

// stealthScript masks the common automation fingerprints before any page
// script runs. Injected on every new document when stealth mode is on.
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', {
    get: () => undefined
});

Object.defineProperty(navigator, 'plugins', {
    get: () => [1, 2, 3, 4, 5]
});

Object.defineProperty(navigator, 'languages', {
    get: () => ['en-US', 'en']
});

window.chrome = {
    runtime: {},
    loadTimes: function() {},
    csi: function() {},
    app: {}
};

const originalQuery = window.navigator.permissions.query;
window.navigator.permissions.query = (parameters) => (
    parameters.name === 'notifications' ?
        Promise.resolve({ state: Notification.permission }) :
        originalQuery(parameters)
);
`

// Options configures a browser session.
type Options struct {
	Headless     bool
	Stealth      bool
	UserAgent    string
	WindowWidth  int
	WindowHeight int
	// KeyDelayMin/Max bound the random inter-keystroke delay used by
	// TypeHumanized.
	KeyDelayMin time.Duration
	KeyDelayMax time.Duration
}

// Session wraps one exclusively-owned Chrome instance. Exactly one session
// may be active per sync run; Release is safe to call multiple times.
type Session struct {
	ctx         context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc

	opts   Options
	logger logger.Logger

	releaseOnce sync.Once
}

// Acquire launches a Chrome instance and registers the session with the
// process-wide registry so an external interrupt can force-release it.
func Acquire(ctx context.Context, opts Options) (*Session, error) {
	if opts.WindowWidth <= 0 {
		opts.WindowWidth = 1920
	}
	if opts.WindowHeight <= 0 {
		opts.WindowHeight = 1080
	}
	if opts.KeyDelayMin <= 0 {
		opts.KeyDelayMin = 50 * time.Millisecond
	}
	if opts.KeyDelayMax < opts.KeyDelayMin {
		opts.KeyDelayMax = opts.KeyDelayMin + 100*time.Millisecond
	}

	log := logger.GetLogger().WithField("component", "browser")

	allocOpts := append([]chromedp.ExecAllocatorOption{},
		chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(opts.WindowWidth, opts.WindowHeight),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	taskCtx, cancelCtx := chromedp.NewContext(allocCtx)

	sess := &Session{
		ctx:         taskCtx,
		cancelCtx:   cancelCtx,
		cancelAlloc: cancelAlloc,
		opts:        opts,
		logger:      log,
	}

	// Start the browser process and apply stealth before any navigation.
	boot := chromedp.ActionFunc(func(ctx context.Context) error {
		if !opts.Stealth {
			return nil
		}
		_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
		return err
	})

	if err := chromedp.Run(taskCtx, boot); err != nil {
		cancelCtx()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	log.InfoWithFields("Browser session acquired", map[string]interface{}{
		"headless": opts.Headless,
		"stealth":  opts.Stealth,
	})

	defaultRegistry.add(sess)
	return sess, nil
}

// Release shuts the browser down. Safe to call multiple times and from the
// shutdown registry; failures are logged, never escalated.
func (s *Session) Release() {
	s.releaseOnce.Do(func() {
		defaultRegistry.remove(s)

		// Ask the browser to close cleanly before cancelling contexts.
		if err := chromedp.Cancel(s.ctx); err != nil {
			s.logger.WithError(err).Warn("Browser did not close cleanly")
		}
		s.cancelCtx()
		s.cancelAlloc()

		s.logger.Info("Browser session released")
	})
}

// Context returns the chromedp task context for advanced callers.
func (s *Session) Context() context.Context {
	return s.ctx
}

// run executes chromedp actions, bounding them by the caller's context.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx := s.ctx
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithDeadline(s.ctx, deadline)
		defer cancel()
	}
	return chromedp.Run(runCtx, actions...)
}

// Navigate loads the given URL and waits for the document to be ready.
func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// CurrentURL returns the browser's current location.
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	var url string
	err := s.run(ctx, chromedp.Location(&url))
	return url, err
}

// Click activates the element addressed by the locator.
func (s *Session) Click(ctx context.Context, loc Locator) error {
	return s.run(ctx, chromedp.Click(loc.Selector, loc.queryOptions()...))
}

// TypeHumanized clears the addressed input and types the text with a bounded
// random delay between keystrokes. The pacing is a behavioral requirement
// against automation fingerprinting, not cosmetics.
func (s *Session) TypeHumanized(ctx context.Context, loc Locator, text string) error {
	if err := s.run(ctx, chromedp.SetValue(loc.Selector, "", loc.queryOptions()...)); err != nil {
		return err
	}

	spread := s.opts.KeyDelayMax - s.opts.KeyDelayMin
	for _, r := range text {
		if err := s.run(ctx, chromedp.SendKeys(loc.Selector, string(r), loc.queryOptions()...)); err != nil {
			return err
		}
		delay := s.opts.KeyDelayMin
		if spread > 0 {
			delay += time.Duration(rand.Int63n(int64(spread)))
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// PressEnter sends a terminal Enter key to the addressed element. Used as
// the implicit form submit when no submit control resolves.
func (s *Session) PressEnter(ctx context.Context, loc Locator) error {
	return s.run(ctx, chromedp.SendKeys(loc.Selector, kb.Enter, loc.queryOptions()...))
}

// Eval evaluates a JavaScript expression in the page and unmarshals the
// result into out.
func (s *Session) Eval(ctx context.Context, js string, out interface{}) error {
	return s.run(ctx, chromedp.Evaluate(js, out))
}

// Cookies returns all cookies visible to the browser.
func (s *Session) Cookies(ctx context.Context) ([]models.Cookie, error) {
	var cookies []models.Cookie
	err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		raw, err := storage.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		for _, c := range raw {
			cookies = append(cookies, models.Cookie{
				Name:     c.Name,
				Value:    c.Value,
				Domain:   c.Domain,
				Path:     c.Path,
				Secure:   c.Secure,
				HTTPOnly: c.HTTPOnly,
			})
		}
		return nil
	}))
	return cookies, err
}

// probe waits until the addressed element is ready, bounded by timeout.
// A timeout or missing element surfaces as an error; the Resolver turns
// that into a tagged not-found outcome.
func (s *Session) probe(ctx context.Context, loc Locator, timeout time.Duration) error {
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.run(probeCtx, chromedp.WaitReady(loc.Selector, loc.queryOptions()...))
}
