// Package normalize turns raw report rows into account records ready for
// the store.
package normalize

import (
	"time"

	"github.com/mosfeqahamed/puprime-scraping/pkg/logger"
	"github.com/mosfeqahamed/puprime-scraping/pkg/models"
)

// dateLayout is the portal's day/month/year rendering. Parsing is strict;
// anything else leaves the record's date unset.
const dateLayout = "02/01/2006"

// ParseDate parses a report date string. The second return is false when
// the string is not a valid day/month/year date.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Record converts one raw row into an account record. A malformed date is
// tolerated: the raw string is preserved and the parsed date left unset,
// which keeps the record out of incremental filtering until the portal
// fixes it.
func Record(row models.RawRow) models.AccountRecord {
	rec := models.AccountRecord{
		AccountNumber:  row.AccountNumber,
		UserID:         row.UserID,
		Name:           row.Name,
		Email:          row.Email,
		CampaignSource: row.CampaignSource,
		IDStatus:       row.IDStatus,
		POAStatus:      row.POAStatus,
		DateString:     row.Date,
	}
	if t, ok := ParseDate(row.Date); ok {
		rec.Date = &t
	} else {
		logger.WithField("date_string", row.Date).Warn("Unparseable report date, keeping record without date")
	}
	return rec
}

// Records converts a batch of raw rows in order.
func Records(rows []models.RawRow) []models.AccountRecord {
	out := make([]models.AccountRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, Record(row))
	}
	return out
}
