package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mosfeqahamed/puprime-scraping/pkg/browser"
	"github.com/mosfeqahamed/puprime-scraping/pkg/logger"
	syncpkg "github.com/mosfeqahamed/puprime-scraping/pkg/sync"
)

var (
	scheduleInterval time.Duration
	scheduleHeadless bool
)

// scheduleCmd represents the schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run incremental syncs on a fixed interval",
	Long: `Run as a long-lived service: an incremental sync immediately, then one
every interval until interrupted. A failed run is logged and followed by
a cool-down before the next attempt.`,
	Example: `  # Sync every six hours
  puprime-scraper schedule --interval 6h

  # Hourly, with a visible browser
  puprime-scraper schedule --interval 1h --headless=false`,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.Flags().DurationVar(&scheduleInterval, "interval", 6*time.Hour, "time between syncs")
	scheduleCmd.Flags().BoolVar(&scheduleHeadless, "headless", true, "run the browser headless")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(map[string]interface{}{
		"headless": scheduleHeadless,
		"interval": scheduleInterval,
	})
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
	scheduler := syncpkg.NewScheduler(o, cfg.Schedule.Interval, cfg.Schedule.FailureCooldown)

	if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("scheduler stopped: %w", err)
	}
	return nil
}
