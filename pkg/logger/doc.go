// Package logger provides a structured logging interface for the portal scraper.
//
// It wraps the zerolog library to provide a clean, easy-to-use API with support for:
// - Multiple log levels (Debug, Info, Warn, Error, Fatal)
// - Structured logging with fields
// - Pretty console output with colors
// - Optional file output
// - Global logger instance for easy access
//
// Basic Usage:
//
//	import "github.com/mosfeqahamed/puprime-scraping/pkg/logger"
//
//	// Initialize the global logger
//	cfg := &config.LoggingConfig{
//	    Level: "info",
//	    File: "/var/log/puscraper.log",
//	}
//	err := logger.Initialize(cfg)
//
//	// Use the global logger
//	logger.Info("Sync started")
//	logger.WithField("account_number", "871203").Info("Record upserted")
//	logger.WithError(err).Error("Failed to resolve email field")
//
// Advanced Usage:
//
//	// Create a logger instance with fields
//	log := logger.GetLogger().
//	    WithField("component", "extractor").
//	    WithField("page", 3)
//
//	// Use structured logging
//	log.InfoWithFields("Page extracted", map[string]interface{}{
//	    "rows_accepted": 10,
//	    "rows_rejected": 1,
//	})
package logger
