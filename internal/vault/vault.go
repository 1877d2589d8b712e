// Package vault provides authenticated symmetric encryption for secrets at
// rest: account credentials, API tokens, and session cookie blobs.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// KeyLength is the required key size in bytes (AES-256).
const KeyLength = 32

// ErrDecrypt is returned for any ciphertext that cannot be read with the
// current key: tampered data, a different key, or a malformed payload.
// It is fatal for the one credential being processed, never for a batch.
var ErrDecrypt = errors.New("ciphertext unreadable with current key")

// Vault encrypts and decrypts secrets with AES-256-GCM. The stored artifact
// is base64(nonce || ciphertext || tag), the same layout for every secret
// kind. A Vault is safe for concurrent use.
type Vault struct {
	key []byte
}

// New creates a Vault keyed by a 32-byte secret.
func New(key []byte) (*Vault, error) {
	if len(key) != KeyLength {
		return nil, fmt.Errorf("vault key must be %d bytes, got %d", KeyLength, len(key))
	}
	k := make([]byte, KeyLength)
	copy(k, key)
	return &Vault{key: k}, nil
}

// EncryptString encrypts a plaintext secret.
func (v *Vault) EncryptString(plaintext string) (string, error) {
	gcm, err := v.aead()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	// Seal appends the ciphertext to nonce, producing: nonce || ciphertext || tag.
	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptString decrypts an artifact produced by EncryptString. Any failure
// mode is reported as ErrDecrypt; corrupted data is never returned.
func (v *Vault) DecryptString(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: base64: %v", ErrDecrypt, err)
	}

	gcm, err := v.aead()
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecrypt)
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecrypt, err)
	}

	return string(plaintext), nil
}

// EncryptCookies encrypts a cookie map as encrypt(json(cookies)).
func (v *Vault) EncryptCookies(cookies map[string]string) (string, error) {
	payload, err := json.Marshal(cookies)
	if err != nil {
		return "", fmt.Errorf("marshal cookies: %w", err)
	}
	return v.EncryptString(string(payload))
}

// DecryptCookies is the inverse of EncryptCookies. A payload that decrypts
// but is not a well-formed cookie map is reported as ErrDecrypt too.
func (v *Vault) DecryptCookies(encoded string) (map[string]string, error) {
	payload, err := v.DecryptString(encoded)
	if err != nil {
		return nil, err
	}

	var cookies map[string]string
	if err := json.Unmarshal([]byte(payload), &cookies); err != nil {
		return nil, fmt.Errorf("%w: cookie payload: %v", ErrDecrypt, err)
	}
	return cookies, nil
}

func (v *Vault) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(v.key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return gcm, nil
}
