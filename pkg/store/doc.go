// Package store persists account records and sync log entries in MongoDB.
//
// Two collections: accounts, keyed by account_number with a unique index,
// and sync_logs, append-only and sorted by sync_time for cutoff lookup.
// Connectivity failures surface as store errors, which are terminal for a
// sync run.
package store
