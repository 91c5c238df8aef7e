package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mosfeqahamed/puprime-scraping/pkg/auth"
	"github.com/mosfeqahamed/puprime-scraping/pkg/browser"
	"github.com/mosfeqahamed/puprime-scraping/pkg/config"
	"github.com/mosfeqahamed/puprime-scraping/pkg/logger"
	"github.com/mosfeqahamed/puprime-scraping/pkg/retry"
	"github.com/mosfeqahamed/puprime-scraping/pkg/store"
	syncpkg "github.com/mosfeqahamed/puprime-scraping/pkg/sync"
)

var (
	syncMode     string
	syncHeadless bool
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one sync against the PU Prime portal",
	Long: `Run a single sync: log in to the portal, walk the referral report and
upsert every account record into MongoDB.

Modes:
  full         scrape and upsert everything
  incremental  only upsert records dated after the last successful sync`,
	Example: `  # Full sync
  puprime-scraper sync --mode full

  # Incremental sync with a visible browser
  puprime-scraper sync --mode incremental --headless=false`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().StringVar(&syncMode, "mode", "incremental", "sync mode (full, incremental)")
	syncCmd.Flags().BoolVar(&syncHeadless, "headless", true, "run the browser headless")
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(map[string]interface{}{"headless": syncHeadless})
	if err != nil {
		return err
	}
	if err := fillCredentials(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer browser.ReleaseAll()

	st, err := connectStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := st.Disconnect(disconnectCtx); err != nil {
			logger.WithError(err).Warn("Store disconnect failed")
		}
	}()

	o := syncpkg.NewOrchestrator(syncpkg.NewPortalScraper(cfg), st.Accounts(), st.SyncLogs())

	var result *syncpkg.Result
	switch syncMode {
	case "full":
		result, err = o.RunFull(ctx)
	case "incremental":
		result, err = o.RunIncremental(ctx)
	default:
		return fmt.Errorf("unknown sync mode %q (want full or incremental)", syncMode)
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	fmt.Printf("Sync complete: mode=%s scraped=%d kept=%d inserted=%d updated=%d\n",
		result.Mode, result.TotalScraped, result.Kept, result.Upsert.Inserted, result.Upsert.Updated)
	return nil
}

// fillCredentials falls back to the credential store when the portal login
// is not configured through flags, environment or config file.
func fillCredentials(cfg *config.Config) error {
	if cfg.Portal.Email != "" && cfg.Portal.Password != "" {
		return nil
	}

	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("portal credentials not configured and credential store unavailable: %w", err)
	}
	creds, err := manager.RetrieveDefault()
	if err != nil {
		return fmt.Errorf("portal credentials not configured: set PORTAL_EMAIL/PORTAL_PASSWORD or run 'puprime-scraper auth login': %w", err)
	}
	cfg.Portal.Email = creds.Email
	cfg.Portal.Password = creds.Password
	return nil
}

// connectStore dials MongoDB with retries. Connectivity errors are the
// retryable kind, so a briefly unavailable store does not fail the run.
func connectStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	return retry.DoWithResult(func() (*store.Store, error) {
		return store.Connect(ctx, cfg.Mongo)
	}, &retry.Config{
		MaxAttempts: 3,
		Backoff: &retry.ExponentialBackoff{
			BaseDelay:    2 * time.Second,
			MaxDelay:     15 * time.Second,
			Multiplier:   2.0,
			JitterFactor: 0.2,
		},
		RetryIf: retry.DefaultRetryIf,
		Context: ctx,
	})
}
