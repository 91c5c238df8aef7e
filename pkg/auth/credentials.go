package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Common credential store errors
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)

// Credentials holds one portal login.
type Credentials struct {
	// Label identifies the credential set; "default" when only one portal
	// account is in use.
	Label        string    `json:"label"`
	Email        string    `json:"email"`
	Password     string    `json:"password"`
	LastModified time.Time `json:"last_modified"`
}

// CredentialStore is the interface for storing and retrieving portal credentials
type CredentialStore interface {
	// Store saves the given credential set
	Store(creds *Credentials) error

	// Retrieve gets credentials by label
	Retrieve(label string) (*Credentials, error)

	// List returns all stored credential sets
	List() ([]*Credentials, error)

	// Delete removes credentials by label
	Delete(label string) error

	// Exists checks if credentials exist for a label
	Exists(label string) bool
}

// Manager handles credential storage with fallback mechanisms
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a new credential manager with appropriate storage backends
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	// Try keyring first (system keychain)
	keyringStore, err := NewKeyringStore()
	if err == nil {
		stores = append(stores, keyringStore)
	}

	// Always add encrypted file store as fallback
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	// Add environment store as last resort
	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a manager over an explicit store chain
func NewManagerWithStores(stores ...CredentialStore) *Manager {
	return &Manager{stores: stores}
}

// Store saves credentials using the first available store
func (m *Manager) Store(creds *Credentials) error {
	if creds == nil || creds.Email == "" {
		return errors.New("email is required")
	}
	if creds.Password == "" {
		return errors.New("password is required")
	}
	if creds.Label == "" {
		creds.Label = "default"
	}

	creds.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(creds); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store credentials: %w", lastErr)
	}
	return errors.New("no available credential stores")
}

// Retrieve gets credentials from the first store that has them
func (m *Manager) Retrieve(label string) (*Credentials, error) {
	for _, store := range m.stores {
		if creds, err := store.Retrieve(label); err == nil && creds != nil {
			return creds, nil
		}
	}
	return nil, fmt.Errorf("credentials not found for label: %s", label)
}

// RetrieveDefault gets the default credential set or the first available
func (m *Manager) RetrieveDefault() (*Credentials, error) {
	if creds, err := m.Retrieve("default"); err == nil {
		return creds, nil
	}

	all, err := m.List()
	if err == nil && len(all) > 0 {
		return all[0], nil
	}

	return nil, errors.New("no credentials found")
}

// List returns all stored credential sets from all stores, most recently
// modified version winning on label collisions
func (m *Manager) List() ([]*Credentials, error) {
	credsMap := make(map[string]*Credentials)

	for _, store := range m.stores {
		all, err := store.List()
		if err != nil {
			continue
		}
		for _, creds := range all {
			existing, ok := credsMap[creds.Label]
			if !ok || creds.LastModified.After(existing.LastModified) {
				credsMap[creds.Label] = creds
			}
		}
	}

	result := make([]*Credentials, 0, len(credsMap))
	for _, creds := range credsMap {
		result = append(result, creds)
	}
	return result, nil
}

// Delete removes credentials from every store that has them
func (m *Manager) Delete(label string) error {
	deleted := false
	var lastErr error
	for _, store := range m.stores {
		if err := store.Delete(label); err == nil {
			deleted = true
		} else if !errors.Is(err, ErrStoreUnavailable) && !errors.Is(err, ErrCredentialsNotFound) {
			lastErr = err
		}
	}

	if !deleted && lastErr != nil {
		return fmt.Errorf("failed to delete credentials: %w", lastErr)
	}
	return nil
}

// getConfigDir returns the platform config directory for the scraper
func getConfigDir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("APPDATA")
	default:
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			base = filepath.Join(home, ".config")
		}
	}

	dir := filepath.Join(base, "puscraper")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}
