package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements CredentialStore using environment variables.
// It is read-only and exists so PORTAL_EMAIL / PORTAL_PASSWORD keep working
// without any stored credentials.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(creds *Credentials) error {
	return ErrStoreUnavailable
}

// Retrieve gets credentials from environment variables
func (e *EnvironmentStore) Retrieve(label string) (*Credentials, error) {
	email := os.Getenv("PORTAL_EMAIL")
	password := os.Getenv("PORTAL_PASSWORD")

	if email == "" || password == "" {
		return nil, ErrCredentialsNotFound
	}

	// Environment variables carry a single credential set
	if label == "" {
		label = "default"
	}

	return &Credentials{
		Label:        label,
		Email:        email,
		Password:     password,
		LastModified: time.Now(),
	}, nil
}

// List returns a single credential set if environment variables are set
func (e *EnvironmentStore) List() ([]*Credentials, error) {
	creds, err := e.Retrieve("")
	if err != nil {
		return []*Credentials{}, nil
	}
	return []*Credentials{creds}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(label string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist
func (e *EnvironmentStore) Exists(label string) bool {
	return os.Getenv("PORTAL_EMAIL") != "" && os.Getenv("PORTAL_PASSWORD") != ""
}
