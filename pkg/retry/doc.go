// Package retry provides exponential backoff and retry logic for handling
// transient failures, particularly document-store connects and report-view
// navigation.
//
// Basic usage:
//
//	// Simple retry with defaults
//	err := retry.Do(func() error {
//		return store.Ping(ctx)
//	}, nil)
//
//	// Custom configuration
//	cfg := &retry.Config{
//		MaxAttempts: 5,
//		Backoff: &retry.ExponentialBackoff{
//			BaseDelay:    2 * time.Second,
//			MaxDelay:     30 * time.Second,
//			Multiplier:   2.0,
//			JitterFactor: 0.1,
//		},
//		RetryIf: retry.DefaultRetryIf,
//		Logger:  logger.GetLogger(),
//	}
//	err := retry.Do(operation, cfg)
//
// Auth failures and row-validation errors are never retried; only store
// connectivity and navigation failures qualify under the default predicate.
package retry
