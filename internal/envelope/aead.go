// Package envelope implements the AEAD envelope (§4.3): AES-256-GCM with
// a 96-bit random IV per message and a 128-bit tag, encoded on disk as
// base64(IV || ciphertext || tag).
package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/slasshy/slasshy/internal/primitives"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32
	// NonceSize is the GCM standard 96-bit IV length in bytes.
	NonceSize = 12
)

// Encrypt seals plaintext under key with AES-256-GCM, binding aad as
// associated data, and returns base64(IV || ciphertext || tag).
func Encrypt(plaintext, key, aad []byte) (string, error) {
	ct, err := encryptRaw(plaintext, key, aad)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(ct), nil
}

// Decrypt reverses Encrypt. Any authentication failure — tampered
// ciphertext, tampered aad, or the wrong key — surfaces as ErrTampered
// with no distinguishing detail.
func Decrypt(payload string, key, aad []byte) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrTampered
	}
	return decryptRaw(raw, key, aad)
}

// EncryptObject canonicalizes value to JSON and seals it.
func EncryptObject(value any, key, aad []byte) (string, error) {
	plaintext, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("envelope: marshal object: %w", err)
	}
	return Encrypt(plaintext, key, aad)
}

// DecryptObject reverses EncryptObject into out (a pointer).
func DecryptObject(payload string, key, aad []byte, out any) error {
	plaintext, err := Decrypt(payload, key, aad)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(plaintext, out); err != nil {
		return fmt.Errorf("envelope: unmarshal object: %w", err)
	}
	return nil
}

func encryptRaw(plaintext, key, aad []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("envelope: key must be %d bytes, got %d", KeySize, len(key))
	}
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce, err := primitives.RandomBytes(NonceSize)
	if err != nil {
		return nil, ErrRngFail
	}
	sealed := aead.Seal(nil, nonce, plaintext, aad)
	out := make([]byte, 0, len(nonce)+len(sealed))
	out = append(out, nonce...)
	out = append(out, sealed...)
	return out, nil
}

func decryptRaw(raw, key, aad []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("envelope: key must be %d bytes, got %d", KeySize, len(key))
	}
	if len(raw) < NonceSize {
		return nil, ErrTampered
	}
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce, sealed := raw[:NonceSize], raw[NonceSize:]
	plaintext, err := aead.Open(nil, nonce, sealed, aad)
	if err != nil {
		return nil, ErrTampered
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("envelope: new cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("envelope: new gcm: %w", err)
	}
	return aead, nil
}
