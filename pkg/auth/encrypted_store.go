package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 32
	keySize    = 32
	iterations = 100000
)

// EncryptedFileStore implements CredentialStore using an AES-GCM encrypted file
type EncryptedFileStore struct {
	filepath   string
	passphrase string
	mu         sync.RWMutex
}

// encryptedFile is the on-disk structure
type encryptedFile struct {
	Salt      string `json:"salt"`
	Encrypted string `json:"encrypted"`
}

// storedCredentials is the plaintext payload inside the encrypted blob
type storedCredentials struct {
	Credentials map[string]Credentials `json:"credentials"`
}

// NewEncryptedFileStore creates a new encrypted file-based credential store
func NewEncryptedFileStore(filePath string) (*EncryptedFileStore, error) {
	dir := filepath.Dir(filePath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	return &EncryptedFileStore{
		filepath:   filePath,
		passphrase: filePassphrase(),
	}, nil
}

// filePassphrase derives the encryption passphrase. An explicit key from the
// environment wins; otherwise a host-local default keeps the file unreadable
// off the machine it was written on.
func filePassphrase() string {
	if key := os.Getenv("PUSCRAPER_CREDENTIALS_KEY"); key != "" {
		return key
	}
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}
	return "puscraper:" + hostname
}

// Store saves credentials to the encrypted file
func (e *EncryptedFileStore) Store(creds *Credentials) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if creds == nil || creds.Label == "" {
		return ErrInvalidCredentials
	}

	data, err := e.loadData()
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load existing data: %w", err)
	}
	if data == nil {
		data = &storedCredentials{Credentials: make(map[string]Credentials)}
	}

	data.Credentials[creds.Label] = *creds

	return e.saveData(data)
}

// Retrieve gets credentials from the encrypted file
func (e *EncryptedFileStore) Retrieve(label string) (*Credentials, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if label == "" {
		return nil, ErrInvalidCredentials
	}

	data, err := e.loadData()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	creds, exists := data.Credentials[label]
	if !exists {
		return nil, ErrCredentialsNotFound
	}

	return &creds, nil
}

// List returns all stored credential sets
func (e *EncryptedFileStore) List() ([]*Credentials, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	data, err := e.loadData()
	if err != nil {
		if os.IsNotExist(err) {
			return []*Credentials{}, nil
		}
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	result := make([]*Credentials, 0, len(data.Credentials))
	for label := range data.Credentials {
		creds := data.Credentials[label]
		result = append(result, &creds)
	}
	return result, nil
}

// Delete removes credentials from the encrypted file
func (e *EncryptedFileStore) Delete(label string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if label == "" {
		return ErrInvalidCredentials
	}

	data, err := e.loadData()
	if err != nil {
		if os.IsNotExist(err) {
			return ErrCredentialsNotFound
		}
		return fmt.Errorf("failed to load data: %w", err)
	}

	if _, exists := data.Credentials[label]; !exists {
		return ErrCredentialsNotFound
	}

	delete(data.Credentials, label)
	return e.saveData(data)
}

// Exists checks if credentials exist for a label
func (e *EncryptedFileStore) Exists(label string) bool {
	creds, err := e.Retrieve(label)
	return err == nil && creds != nil
}

// loadData reads and decrypts the credentials file
func (e *EncryptedFileStore) loadData() (*storedCredentials, error) {
	raw, err := os.ReadFile(e.filepath)
	if err != nil {
		return nil, err
	}

	var file encryptedFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}

	salt, err := base64.StdEncoding.DecodeString(file.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(file.Encrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	plaintext, err := decrypt(ciphertext, e.deriveKey(salt))
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt credentials: %w", err)
	}

	var data storedCredentials
	if err := json.Unmarshal(plaintext, &data); err != nil {
		return nil, fmt.Errorf("failed to parse decrypted data: %w", err)
	}
	if data.Credentials == nil {
		data.Credentials = make(map[string]Credentials)
	}

	return &data, nil
}

// saveData encrypts and writes the credentials file
func (e *EncryptedFileStore) saveData(data *storedCredentials) error {
	plaintext, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	ciphertext, err := encrypt(plaintext, e.deriveKey(salt))
	if err != nil {
		return fmt.Errorf("failed to encrypt data: %w", err)
	}

	file := encryptedFile{
		Salt:      base64.StdEncoding.EncodeToString(salt),
		Encrypted: base64.StdEncoding.EncodeToString(ciphertext),
	}

	raw, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to marshal file: %w", err)
	}

	return os.WriteFile(e.filepath, raw, 0600)
}

// deriveKey derives an AES key from the passphrase and salt
func (e *EncryptedFileStore) deriveKey(salt []byte) []byte {
	return pbkdf2.Key([]byte(e.passphrase), salt, iterations, keySize, sha256.New)
}

// encrypt seals plaintext with AES-GCM; the nonce is prepended
func encrypt(plaintext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// decrypt opens an AES-GCM sealed blob produced by encrypt
func decrypt(ciphertext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}

	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, sealed, nil)
}
