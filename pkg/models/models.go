package models

import "time"

// AccountRecord is one account row scraped from the portal's IB report.
// AccountNumber is the natural key; the store enforces a unique index on it.
type AccountRecord struct {
	AccountNumber  string `json:"account_number" bson:"account_number"`
	UserID         string `json:"user_id" bson:"user_id"`
	Name           string `json:"name" bson:"name"`
	Email          string `json:"email" bson:"email"`
	CampaignSource string `json:"campaign_source" bson:"campaign_source"`
	IDStatus       string `json:"id_status" bson:"id_status"`
	POAStatus      string `json:"poa_status" bson:"poa_status"`

	// Date is the registration date parsed from DateString (DD/MM/YYYY).
	// It stays nil when the source text does not parse; DateString always
	// keeps the raw cell for audit.
	Date       *time.Time `json:"date,omitempty" bson:"date,omitempty"`
	DateString string     `json:"date_string" bson:"date_string"`

	ScrapedAt   time.Time `json:"scraped_at" bson:"scraped_at"`
	LastUpdated time.Time `json:"last_updated" bson:"last_updated"`
}

// Sync run outcomes recorded in the sync log.
const (
	SyncStatusSuccess = "success"
	SyncStatusFailed  = "failed"
)

// SyncLogEntry is the append-only audit record of one orchestrator run.
// Entries are never mutated after insertion.
type SyncLogEntry struct {
	SyncTime         time.Time `json:"sync_time" bson:"sync_time"`
	Status           string    `json:"status" bson:"status"`
	RecordsProcessed int       `json:"records_processed" bson:"records_processed"`
	ErrorMessage     string    `json:"error_message,omitempty" bson:"error_message,omitempty"`
}

// RawRow holds the ordinal cells sliced out of one report table row before
// normalization. Field order mirrors the column contract with the portal UI.
type RawRow struct {
	Date           string
	UserID         string
	AccountNumber  string
	Name           string
	Email          string
	CampaignSource string
	IDStatus       string
	POAStatus      string
}

// Cookie is one browser cookie captured after login.
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain"`
	Path     string `json:"path"`
	Secure   bool   `json:"secure"`
	HTTPOnly bool   `json:"http_only"`
}

// SessionBundle is the best-effort cookie/token bundle extracted from the
// browser after a successful login. It is owned by a single sync run and
// never persisted; any field may be empty when extraction fell short.
type SessionBundle struct {
	Cookies        []Cookie          `json:"cookies"`
	Token          string            `json:"token,omitempty"`
	SessionID      string            `json:"session_id,omitempty"`
	LocalStorage   map[string]string `json:"local_storage,omitempty"`
	SessionStorage map[string]string `json:"session_storage,omitempty"`
}
