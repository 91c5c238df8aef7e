package auth

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "puscraper"
	keyringPrefix  = "portal_"
)

// KeyringStore implements CredentialStore using the system keychain
type KeyringStore struct{}

// NewKeyringStore creates a new keyring-based credential store
func NewKeyringStore() (*KeyringStore, error) {
	// Test if keyring is available
	testKey := "test_availability"
	err := keyring.Set(keyringService, testKey, "test")
	if err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, testKey)

	return &KeyringStore{}, nil
}

// Store saves credentials to the system keychain
func (k *KeyringStore) Store(creds *Credentials) error {
	if creds == nil || creds.Label == "" {
		return ErrInvalidCredentials
	}

	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	key := keyringPrefix + creds.Label
	if err := keyring.Set(keyringService, key, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}

	// Maintain the label index so List can enumerate entries
	return k.addToIndex(creds.Label)
}

// Retrieve gets credentials from the system keychain
func (k *KeyringStore) Retrieve(label string) (*Credentials, error) {
	if label == "" {
		return nil, ErrInvalidCredentials
	}

	data, err := keyring.Get(keyringService, keyringPrefix+label)
	if err != nil {
		return nil, ErrCredentialsNotFound
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(data), &creds); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credentials: %w", err)
	}

	return &creds, nil
}

// List returns all credential sets recorded in the keyring index
func (k *KeyringStore) List() ([]*Credentials, error) {
	labels, err := k.readIndex()
	if err != nil {
		return []*Credentials{}, nil
	}

	var result []*Credentials
	for _, label := range labels {
		if creds, err := k.Retrieve(label); err == nil {
			result = append(result, creds)
		}
	}
	return result, nil
}

// Delete removes credentials from the system keychain
func (k *KeyringStore) Delete(label string) error {
	if label == "" {
		return ErrInvalidCredentials
	}

	if err := keyring.Delete(keyringService, keyringPrefix+label); err != nil {
		return ErrCredentialsNotFound
	}
	return k.removeFromIndex(label)
}

// Exists checks if credentials exist for a label
func (k *KeyringStore) Exists(label string) bool {
	_, err := keyring.Get(keyringService, keyringPrefix+label)
	return err == nil
}

const indexKey = "label_index"

func (k *KeyringStore) readIndex() ([]string, error) {
	data, err := keyring.Get(keyringService, indexKey)
	if err != nil {
		return nil, err
	}
	if data == "" {
		return nil, nil
	}
	return strings.Split(data, ","), nil
}

func (k *KeyringStore) addToIndex(label string) error {
	labels, _ := k.readIndex()
	for _, l := range labels {
		if l == label {
			return nil
		}
	}
	labels = append(labels, label)
	return keyring.Set(keyringService, indexKey, strings.Join(labels, ","))
}

func (k *KeyringStore) removeFromIndex(label string) error {
	labels, err := k.readIndex()
	if err != nil {
		return nil
	}
	kept := labels[:0]
	for _, l := range labels {
		if l != label {
			kept = append(kept, l)
		}
	}
	return keyring.Set(keyringService, indexKey, strings.Join(kept, ","))
}
