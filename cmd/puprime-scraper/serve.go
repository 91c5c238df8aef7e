package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mosfeqahamed/puprime-scraping/internal/api"
	"github.com/mosfeqahamed/puprime-scraping/pkg/logger"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read-only HTTP API",
	Long: `Serve the read-only HTTP API over the synced data.

Endpoints:
  GET /          API information
  GET /accounts  All account records, most recently scraped first
  GET /health    Store reachability and the latest successful sync
  GET /stats     Account counts by period and sync success rate`,
	Example: `  puprime-scraper serve --addr :8080`,
	RunE:    runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(map[string]interface{}{"addr": serveAddr})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	server := api.NewServer(st.Accounts(), st.SyncLogs(), st, cfg.Mongo.Database)
	if err := server.ListenAndServe(ctx, cfg.API.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server stopped: %w", err)
	}
	return nil
}
