package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosfeqahamed/puprime-scraping/pkg/models"
	"github.com/mosfeqahamed/puprime-scraping/pkg/store"
)

type fakeAccounts struct {
	accounts []models.AccountRecord
	err      error
}

func (f *fakeAccounts) ListAll(ctx context.Context) ([]models.AccountRecord, error) {
	return f.accounts, f.err
}

func (f *fakeAccounts) Count(ctx context.Context) (int64, error) {
	return int64(len(f.accounts)), f.err
}

func (f *fakeAccounts) CountDateSince(ctx context.Context, t time.Time) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	for _, a := range f.accounts {
		if a.Date != nil && !a.Date.Before(t) {
			n++
		}
	}
	return n, nil
}

type fakeSyncs struct {
	latest *models.SyncLogEntry
	counts store.SyncCounts
	err    error
}

func (f *fakeSyncs) Latest(ctx context.Context) (*models.SyncLogEntry, error) {
	return f.latest, f.err
}

func (f *fakeSyncs) Counts(ctx context.Context) (store.SyncCounts, error) {
	return f.counts, f.err
}

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(ctx context.Context) error {
	return f.err
}

func get(t *testing.T, srv *Server, path string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func testRecord(account string, date time.Time) models.AccountRecord {
	return models.AccountRecord{
		AccountNumber: account,
		UserID:        "u-" + account,
		Name:          "Trader " + account,
		Email:         account + "@example.com",
		Date:          &date,
		ScrapedAt:     time.Now().UTC(),
	}
}

func TestRootListsEndpoints(t *testing.T) {
	srv := NewServer(&fakeAccounts{}, &fakeSyncs{}, &fakePinger{}, "puprime_data")

	code, body := get(t, srv, "/")

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "PU Prime Data API", body["message"])
	endpoints := body["endpoints"].(map[string]interface{})
	assert.Contains(t, endpoints, "/accounts")
	assert.Contains(t, endpoints, "/health")
	assert.Contains(t, endpoints, "/stats")
}

func TestAccountsReturnsAllRecords(t *testing.T) {
	now := time.Now().UTC()
	srv := NewServer(&fakeAccounts{accounts: []models.AccountRecord{
		testRecord("1001", now),
		testRecord("1002", now.AddDate(0, 0, -1)),
	}}, &fakeSyncs{}, &fakePinger{}, "puprime_data")

	code, body := get(t, srv, "/accounts")

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", body["status"])
	assert.EqualValues(t, 2, body["total_records"])
	assert.Equal(t, "accounts", body["collection"])
	assert.Len(t, body["data"], 2)
}

func TestAccountsEmptyStoreIsAnEmptyList(t *testing.T) {
	srv := NewServer(&fakeAccounts{}, &fakeSyncs{}, &fakePinger{}, "puprime_data")

	code, body := get(t, srv, "/accounts")

	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, body["total_records"])
	assert.NotNil(t, body["data"])
}

func TestAccountsStoreFailure(t *testing.T) {
	srv := NewServer(&fakeAccounts{err: errors.New("server selection timeout")},
		&fakeSyncs{}, &fakePinger{}, "puprime_data")

	code, body := get(t, srv, "/accounts")

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "error", body["status"])
}

func TestHealthHealthy(t *testing.T) {
	syncTime := time.Date(2024, time.March, 15, 6, 0, 0, 0, time.UTC)
	srv := NewServer(
		&fakeAccounts{accounts: []models.AccountRecord{testRecord("1001", syncTime)}},
		&fakeSyncs{latest: &models.SyncLogEntry{
			SyncTime:         syncTime,
			Status:           models.SyncStatusSuccess,
			RecordsProcessed: 42,
		}},
		&fakePinger{},
		"puprime_data",
	)

	code, body := get(t, srv, "/health")

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, true, body["database_connected"])
	latest := body["latest_sync"].(map[string]interface{})
	assert.Equal(t, "2024-03-15T06:00:00Z", latest["time"])
	assert.EqualValues(t, 42, latest["records_processed"])
}

func TestHealthUnreachableStore(t *testing.T) {
	srv := NewServer(&fakeAccounts{}, &fakeSyncs{},
		&fakePinger{err: errors.New("no reachable servers")}, "puprime_data")

	code, body := get(t, srv, "/health")

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", body["status"])
	assert.Equal(t, false, body["database_connected"])
}

func TestStatsAggregates(t *testing.T) {
	now := time.Now().UTC()
	srv := NewServer(
		&fakeAccounts{accounts: []models.AccountRecord{
			testRecord("1001", now),
			testRecord("1002", now.AddDate(0, 0, -3)),
			testRecord("1003", now.AddDate(0, 0, -20)),
		}},
		&fakeSyncs{counts: store.SyncCounts{Total: 4, Successful: 3, Failed: 1}},
		&fakePinger{},
		"puprime_data",
	)

	code, body := get(t, srv, "/stats")

	assert.Equal(t, http.StatusOK, code)
	accountStats := body["account_stats"].(map[string]interface{})
	assert.EqualValues(t, 3, accountStats["total_accounts"])
	assert.EqualValues(t, 1, accountStats["accounts_today"])
	assert.EqualValues(t, 2, accountStats["accounts_this_week"])
	assert.EqualValues(t, 3, accountStats["accounts_this_month"])
	syncStats := body["sync_stats"].(map[string]interface{})
	assert.EqualValues(t, 4, syncStats["total_syncs"])
	assert.EqualValues(t, 75, syncStats["success_rate"])
}

func TestStatsNoSyncsYet(t *testing.T) {
	srv := NewServer(&fakeAccounts{}, &fakeSyncs{}, &fakePinger{}, "puprime_data")

	code, body := get(t, srv, "/stats")

	assert.Equal(t, http.StatusOK, code)
	syncStats := body["sync_stats"].(map[string]interface{})
	assert.EqualValues(t, 0, syncStats["success_rate"])
}
