// Package ratelimit provides rate limiting for portal interaction pacing.
//
// The portal is anti-automation aware, so page turns and other browser-driven
// actions are paced rather than fired back to back.
//
// Available Implementations:
//
// Token Bucket:
//   - Fixed capacity bucket that refills after a specified period
//   - Suitable for bursts followed by quiet periods
//
// Sliding Window:
//   - Tracks actions within a moving time window
//   - Steadier pacing; used for report page turns
//
// All rate limiters implement the Limiter interface:
//   - Allow() bool - Check if an action is allowed
//   - Wait() - Block until an action is allowed
//   - Reset() - Reset the limiter state
//
// Usage:
//
//	// Sliding window: 30 page turns per minute
//	limiter := ratelimit.NewSlidingWindow(30, time.Minute)
//
//	// Block until allowed
//	limiter.Wait()
//	// Turn the page
package ratelimit
