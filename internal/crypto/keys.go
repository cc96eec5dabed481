package crypto

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// MasterKeyLen - длина мастер-ключа из конфигурации в байтах
	MasterKeyLen = 32
	// hkdfInfo - контекст деривации ключей шифрования учетных данных
	hkdfInfo = "tasksync provider credentials v1"
)

// Keyring holds the derived sealing keys by key id.
// New data is always sealed under the current key; older keys only open.
type Keyring struct {
	keys    map[string][]byte
	current string
}

// NewKeyring creates a keyring whose current key is derived from master under keyID
func NewKeyring(keyID string, master []byte) (*Keyring, error) {
	k := &Keyring{keys: make(map[string][]byte)}
	if err := k.Add(keyID, master); err != nil {
		return nil, err
	}
	k.current = keyID
	return k, nil
}

// Add registers a retired key so rows sealed under it can still be opened
func (k *Keyring) Add(keyID string, master []byte) error {
	if keyID == "" {
		return fmt.Errorf("key id cannot be empty")
	}
	key, err := DeriveKey(master, keyID)
	if err != nil {
		return err
	}
	k.keys[keyID] = key
	return nil
}

// CurrentKeyID returns the key id new data is sealed under
func (k *Keyring) CurrentKeyID() string {
	return k.current
}

// DeriveKey выводит ключ XChaCha20-Poly1305 из мастер-ключа через HKDF-SHA256.
// keyID служит солью, поэтому разные идентификаторы дают независимые ключи.
func DeriveKey(master []byte, keyID string) ([]byte, error) {
	if len(master) != MasterKeyLen {
		return nil, fmt.Errorf("master key must be %d bytes, got %d", MasterKeyLen, len(master))
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, []byte(keyID), []byte(hkdfInfo)), key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}
