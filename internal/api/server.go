// Package api serves the read-only HTTP surface over the scraped data:
// account listing, health and aggregate statistics. It only ever reads
// the two collections the sync pipeline writes.
package api

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mosfeqahamed/puprime-scraping/pkg/logger"
	"github.com/mosfeqahamed/puprime-scraping/pkg/models"
	"github.com/mosfeqahamed/puprime-scraping/pkg/store"
)

const apiVersion = "1.0.0"

const requestTimeout = 30 * time.Second

// AccountReader is the account access the API needs.
type AccountReader interface {
	ListAll(ctx context.Context) ([]models.AccountRecord, error)
	Count(ctx context.Context) (int64, error)
	CountDateSince(ctx context.Context, t time.Time) (int64, error)
}

// SyncReader is the sync log access the API needs.
type SyncReader interface {
	Latest(ctx context.Context) (*models.SyncLogEntry, error)
	Counts(ctx context.Context) (store.SyncCounts, error)
}

// Pinger reports store reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the read-only API over the scraped data.
type Server struct {
	accounts AccountReader
	syncs    SyncReader
	pinger   Pinger
	database string
	logger   logger.Logger
}

// NewServer builds the API server.
func NewServer(accounts AccountReader, syncs SyncReader, pinger Pinger, database string) *Server {
	return &Server{
		accounts: accounts,
		syncs:    syncs,
		pinger:   pinger,
		database: database,
		logger:   logger.GetLogger().WithField("component", "api"),
	}
}

// Router assembles the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/", s.handleRoot)
	r.Get("/accounts", s.handleAccounts)
	r.Get("/health", s.handleHealth)
	r.Get("/stats", s.handleStats)
	return r
}

// ListenAndServe blocks serving the API until the context is cancelled,
// then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.InfoWithFields("API listening", map[string]interface{}{
			"addr": addr,
		})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "PU Prime Data API",
		"version":     apiVersion,
		"description": "Read access to scraped PU Prime account data",
		"endpoints": map[string]string{
			"/accounts": "GET - Fetch all account data",
			"/health":   "GET - Health check",
			"/stats":    "GET - Statistics",
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.accounts.ListAll(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if accounts == nil {
		accounts = []models.AccountRecord{}
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "success",
		"total_records": len(accounts),
		"data":          accounts,
		"database":      s.database,
		"collection":    "accounts",
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.pinger.Ping(r.Context()); err != nil {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":             "unhealthy",
			"database_connected": false,
			"error":              err.Error(),
			"timestamp":          time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	total, err := s.accounts.Count(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	latest := map[string]interface{}{
		"time":              nil,
		"records_processed": 0,
	}
	if entry, err := s.syncs.Latest(r.Context()); err == nil && entry != nil {
		latest["time"] = entry.SyncTime.UTC().Format(time.RFC3339)
		latest["records_processed"] = entry.RecordsProcessed
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":             "healthy",
		"database_connected": true,
		"total_accounts":     total,
		"latest_sync":        latest,
		"timestamp":          time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	total, err := s.accounts.Count(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	accountsToday, err := s.accounts.CountDateSince(ctx, today)
	if err != nil {
		s.writeError(w, err)
		return
	}
	accountsWeek, err := s.accounts.CountDateSince(ctx, today.AddDate(0, 0, -7))
	if err != nil {
		s.writeError(w, err)
		return
	}
	accountsMonth, err := s.accounts.CountDateSince(ctx, today.AddDate(0, -1, 0))
	if err != nil {
		s.writeError(w, err)
		return
	}

	counts, err := s.syncs.Counts(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}

	successRate := 0.0
	if counts.Total > 0 {
		successRate = math.Round(float64(counts.Successful)/float64(counts.Total)*100*100) / 100
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"account_stats": map[string]interface{}{
			"total_accounts":      total,
			"accounts_today":      accountsToday,
			"accounts_this_week":  accountsWeek,
			"accounts_this_month": accountsMonth,
		},
		"sync_stats": map[string]interface{}{
			"total_syncs":      counts.Total,
			"successful_syncs": counts.Successful,
			"failed_syncs":     counts.Failed,
			"success_rate":     successRate,
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.logger.WithError(err).Error("Request failed")
	s.writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
		"status":    "error",
		"message":   err.Error(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
