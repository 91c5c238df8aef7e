package auth

import "sync"

// MockStore implements CredentialStore for testing purposes
type MockStore struct {
	creds map[string]*Credentials
	mu    sync.RWMutex

	// Error injection for testing
	StoreError    error
	RetrieveError error
	ListError     error
	DeleteError   error
}

// NewMockStore creates a new mock credential store
func NewMockStore() *MockStore {
	return &MockStore{
		creds: make(map[string]*Credentials),
	}
}

// Store saves credentials to the mock store
func (m *MockStore) Store(creds *Credentials) error {
	if m.StoreError != nil {
		return m.StoreError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if creds == nil || creds.Label == "" {
		return ErrInvalidCredentials
	}

	// Copy to avoid external modifications
	credsCopy := *creds
	m.creds[creds.Label] = &credsCopy

	return nil
}

// Retrieve gets credentials from the mock store
func (m *MockStore) Retrieve(label string) (*Credentials, error) {
	if m.RetrieveError != nil {
		return nil, m.RetrieveError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if label == "" {
		return nil, ErrInvalidCredentials
	}

	creds, exists := m.creds[label]
	if !exists {
		return nil, ErrCredentialsNotFound
	}

	credsCopy := *creds
	return &credsCopy, nil
}

// List returns all credentials in the mock store
func (m *MockStore) List() ([]*Credentials, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Credentials, 0, len(m.creds))
	for _, creds := range m.creds {
		credsCopy := *creds
		result = append(result, &credsCopy)
	}
	return result, nil
}

// Delete removes credentials from the mock store
func (m *MockStore) Delete(label string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.creds[label]; !exists {
		return ErrCredentialsNotFound
	}

	delete(m.creds, label)
	return nil
}

// Exists checks if credentials exist in the mock store
func (m *MockStore) Exists(label string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.creds[label]
	return exists
}
