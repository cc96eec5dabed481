package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrUnknownKey is returned when sealed data names a key id the keyring does not hold
var ErrUnknownKey = errors.New("unknown sealing key")

// Seal шифрует данные с использованием XChaCha20-Poly1305 под текущим ключом
// Формат результата: nonce (24 bytes) + ciphertext + auth_tag (16 bytes)
// aad привязывает шифротекст к владельцу, его нельзя переставить в чужую строку
func (k *Keyring) Seal(plaintext, aad []byte) (keyID string, sealed []byte, err error) {
	if len(plaintext) == 0 {
		return "", nil, fmt.Errorf("plaintext cannot be empty")
	}

	aead, err := chacha20poly1305.NewX(k.keys[k.current])
	if err != nil {
		return "", nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	// Генерируем случайный nonce
	nonce := make([]byte, chacha20poly1305.NonceSizeX, chacha20poly1305.NonceSizeX+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return k.current, aead.Seal(nonce, nonce, plaintext, aad), nil
}

// Open дешифрует данные, зашифрованные с помощью Seal под ключом keyID
func (k *Keyring) Open(keyID string, sealed, aad []byte) ([]byte, error) {
	key, ok := k.keys[keyID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, keyID)
	}
	if len(sealed) < chacha20poly1305.NonceSizeX {
		return nil, fmt.Errorf("sealed data too short")
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	nonce, ciphertext := sealed[:chacha20poly1305.NonceSizeX], sealed[chacha20poly1305.NonceSizeX:]
	plaintext, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: authentication failed or corrupted data: %w", err)
	}
	return plaintext, nil
}
