package credential

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "ledrepair"

// AdminPasswordKey is the keyring entry holding the admin password.
const AdminPasswordKey = "admin-password"

// ErrNotSet is returned when a requested credential has never been stored.
var ErrNotSet = errors.New("credential not set")

// Vault stores secrets in a keyring.
type Vault struct {
	ring keyring.Keyring
}

// NewVault wraps an already opened keyring.
func NewVault(ring keyring.Keyring) *Vault {
	return &Vault{ring: ring}
}

// OpenVault opens the system keyring, falling back to an encrypted file
// store under fileDir when no OS backend is available.
func OpenVault(fileDir string) (*Vault, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  fileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt("ledrepair-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewVault(ring), nil
}

// Get retrieves a credential value by key.
func (v *Vault) Get(key string) (string, error) {
	item, err := v.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("getting credential %q: %w", key, ErrNotSet)
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// Set stores a credential value by key.
func (v *Vault) Set(key string, value string) error {
	err := v.ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: serviceName + " " + key,
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key.
func (v *Vault) Delete(key string) error {
	err := v.ring.Remove(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}

// AdminPassword returns the stored admin password, or ErrNotSet.
func (v *Vault) AdminPassword() (string, error) {
	return v.Get(AdminPasswordKey)
}

// SetAdminPassword replaces the admin password. It must not be empty.
func (v *Vault) SetAdminPassword(password string) error {
	if password == "" {
		return errors.New("admin password must not be empty")
	}
	return v.Set(AdminPasswordKey, password)
}
