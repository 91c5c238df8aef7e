package auth

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerStoreAndRetrieve(t *testing.T) {
	mock := NewMockStore()
	mgr := NewManagerWithStores(mock)

	creds := &Credentials{
		Label:    "default",
		Email:    "ib@example.com",
		Password: "secret",
	}
	require.NoError(t, mgr.Store(creds))

	got, err := mgr.Retrieve("default")
	require.NoError(t, err)
	assert.Equal(t, "ib@example.com", got.Email)
	assert.Equal(t, "secret", got.Password)
	assert.False(t, got.LastModified.IsZero())
}

func TestManagerStoreValidation(t *testing.T) {
	mgr := NewManagerWithStores(NewMockStore())

	assert.Error(t, mgr.Store(&Credentials{Password: "x"}))
	assert.Error(t, mgr.Store(&Credentials{Email: "a@b.c"}))
}

func TestManagerFallsBackToNextStore(t *testing.T) {
	failing := NewMockStore()
	failing.StoreError = errors.New("keyring locked")
	failing.RetrieveError = errors.New("keyring locked")
	working := NewMockStore()

	mgr := NewManagerWithStores(failing, working)

	creds := &Credentials{Label: "default", Email: "ib@example.com", Password: "secret"}
	require.NoError(t, mgr.Store(creds))

	got, err := mgr.Retrieve("default")
	require.NoError(t, err)
	assert.Equal(t, "ib@example.com", got.Email)
}

func TestManagerRetrieveDefault(t *testing.T) {
	mock := NewMockStore()
	require.NoError(t, mock.Store(&Credentials{
		Label:        "other",
		Email:        "other@example.com",
		Password:     "pw",
		LastModified: time.Now(),
	}))
	mgr := NewManagerWithStores(mock)

	got, err := mgr.RetrieveDefault()
	require.NoError(t, err)
	assert.Equal(t, "other@example.com", got.Email)
}

func TestManagerListPrefersNewest(t *testing.T) {
	older := NewMockStore()
	require.NoError(t, older.Store(&Credentials{
		Label: "default", Email: "old@example.com", Password: "pw",
		LastModified: time.Now().Add(-time.Hour),
	}))
	newer := NewMockStore()
	require.NoError(t, newer.Store(&Credentials{
		Label: "default", Email: "new@example.com", Password: "pw",
		LastModified: time.Now(),
	}))

	mgr := NewManagerWithStores(older, newer)
	all, err := mgr.List()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "new@example.com", all[0].Email)
}

func TestEnvironmentStore(t *testing.T) {
	t.Setenv("PORTAL_EMAIL", "env@example.com")
	t.Setenv("PORTAL_PASSWORD", "envpass")

	store := NewEnvironmentStore()
	assert.True(t, store.Exists("default"))

	creds, err := store.Retrieve("default")
	require.NoError(t, err)
	assert.Equal(t, "env@example.com", creds.Email)
	assert.Equal(t, "envpass", creds.Password)

	assert.ErrorIs(t, store.Store(creds), ErrStoreUnavailable)
	assert.ErrorIs(t, store.Delete("default"), ErrStoreUnavailable)
}

func TestEnvironmentStoreMissing(t *testing.T) {
	t.Setenv("PORTAL_EMAIL", "")
	t.Setenv("PORTAL_PASSWORD", "")

	store := NewEnvironmentStore()
	_, err := store.Retrieve("default")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestEncryptedFileStoreRoundTrip(t *testing.T) {
	t.Setenv("PUSCRAPER_CREDENTIALS_KEY", "test-passphrase")

	path := filepath.Join(t.TempDir(), "credentials.enc")
	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	creds := &Credentials{
		Label:        "default",
		Email:        "enc@example.com",
		Password:     "topsecret",
		LastModified: time.Now().UTC(),
	}
	require.NoError(t, store.Store(creds))

	// Fresh store instance reads the same file
	store2, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	got, err := store2.Retrieve("default")
	require.NoError(t, err)
	assert.Equal(t, "enc@example.com", got.Email)
	assert.Equal(t, "topsecret", got.Password)

	all, err := store2.List()
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, store2.Delete("default"))
	_, err = store2.Retrieve("default")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestEncryptedFileStoreWrongKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.enc")

	t.Setenv("PUSCRAPER_CREDENTIALS_KEY", "right-key")
	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Store(&Credentials{Label: "default", Email: "a@b.c", Password: "pw"}))

	t.Setenv("PUSCRAPER_CREDENTIALS_KEY", "wrong-key")
	store2, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	_, err = store2.Retrieve("default")
	assert.Error(t, err)
}
