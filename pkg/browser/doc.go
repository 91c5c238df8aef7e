// Package browser owns the chromedp driver lifecycle and element resolution.
//
// A Session wraps one exclusive Chrome instance. Release is idempotent and a
// process-wide registry lets the shutdown path force-release any session that
// is still open when the process is interrupted, so no browser process leaks
// on abnormal termination.
//
// The Resolver tries an ordered list of locator strategies with a short
// per-attempt timeout and reports a tagged outcome instead of an error for
// the ordinary not-found case; the portal's markup shifts often enough that
// a single selector would make the whole pipeline brittle.
package browser
