// Package sync orchestrates scrape runs: full, incremental and scheduled.
//
// Every run, whatever its outcome, appends exactly one sync log entry. A
// mutex serializes runs so a manually triggered sync cannot overlap a
// scheduled one.
package sync
