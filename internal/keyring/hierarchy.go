package keyring

import (
	"fmt"
	"time"
)

// Hierarchy ties the KDF to a Holder: it derives the master key and the
// three labeled subkeys on unlock, and exposes them by label thereafter.
type Hierarchy struct {
	holder *Holder
}

// NewHierarchy creates a hierarchy with the given auto-lock expiry. Pass 0
// to disable auto-lock.
func NewHierarchy(expiry time.Duration) *Hierarchy {
	if expiry < 0 {
		expiry = DefaultExpiry
	}
	return &Hierarchy{holder: NewHolder(expiry)}
}

// Unlock derives the master key from passphrase+salt, checks it against
// verifier in constant time, derives the three labeled subkeys, and
// stores all four in the holder. Returns ErrBadPassphrase on verifier
// mismatch.
func (h *Hierarchy) Unlock(passphrase, salt, verifier []byte, params KDFParams) error {
	master := DeriveMaster(passphrase, salt, params)
	defer zero(master)
	if !constantTimeEqual(Verifier(master), verifier) {
		return ErrBadPassphrase
	}
	return h.installMaster(master)
}

// UnlockWithMaster installs an already-derived master key directly,
// verifying it against verifier in constant time first. It exists for
// the session cache: a cached, still-valid master key lets a caller skip
// the KDF entirely instead of re-prompting for the passphrase.
func (h *Hierarchy) UnlockWithMaster(master, verifier []byte) error {
	if !constantTimeEqual(Verifier(master), verifier) {
		return ErrBadPassphrase
	}
	return h.installMaster(master)
}

// installMaster derives the three labeled subkeys from master and stores
// all four in the holder.
func (h *Hierarchy) installMaster(master []byte) error {
	indexKey, err := DeriveSubkey(master, LabelIndexKey, MasterKeySize)
	if err != nil {
		return fmt.Errorf("keyring: deriving index key: %w", err)
	}
	entryKey, err := DeriveSubkey(master, LabelEntryKey, MasterKeySize)
	if err != nil {
		zero(indexKey)
		return fmt.Errorf("keyring: deriving entry key: %w", err)
	}
	metadataKey, err := DeriveSubkey(master, LabelMetadataKey, MasterKeySize)
	if err != nil {
		zero(indexKey)
		zero(entryKey)
		return fmt.Errorf("keyring: deriving metadata key: %w", err)
	}

	h.holder.Reopen()
	h.holder.Put("master", master)
	h.holder.Put(LabelIndexKey, indexKey)
	h.holder.Put(LabelEntryKey, entryKey)
	h.holder.Put(LabelMetadataKey, metadataKey)

	zero(indexKey)
	zero(entryKey)
	zero(metadataKey)
	return nil
}

// Master returns a borrowed reference to the master key.
func (h *Hierarchy) Master() ([]byte, error) { return h.holder.Get("master") }

// IndexKey returns a borrowed reference to the index subkey.
func (h *Hierarchy) IndexKey() ([]byte, error) { return h.holder.Get(LabelIndexKey) }

// EntryKey returns a borrowed reference to the entry subkey.
func (h *Hierarchy) EntryKey() ([]byte, error) { return h.holder.Get(LabelEntryKey) }

// MetadataKey returns a borrowed reference to the metadata subkey.
func (h *Hierarchy) MetadataKey() ([]byte, error) { return h.holder.Get(LabelMetadataKey) }

// Lock zeroizes all held key material.
func (h *Hierarchy) Lock() { h.holder.Lock() }

// Close stops the signal watcher and zeroizes all key material.
func (h *Hierarchy) Close() { h.holder.Close() }

// IsUnlocked reports whether the hierarchy currently holds live keys.
func (h *Hierarchy) IsUnlocked() bool { return !h.holder.IsLocked() }

func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	v := byte(0)
	for i := range a {
		v |= a[i] ^ b[i]
	}
	return v == 0
}
