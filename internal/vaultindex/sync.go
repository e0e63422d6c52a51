package vaultindex

import (
	"encoding/json"
	"time"

	"github.com/slasshy/slasshy/internal/envelope"
)

// ExportSealed returns the on-disk outer envelope bytes along with the
// local sync version counter, for a cloud mirror collaborator to push.
func (s *Store) ExportSealed() ([]byte, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.requireUnlockedLocked(); err != nil {
		return nil, 0, err
	}
	raw, err := s.readIndexFile()
	if err != nil {
		return nil, 0, err
	}
	return raw, s.index.Metadata.SyncVersion, nil
}

// ImportSealed replaces the local index with raw bytes pulled from a
// remote mirror that was sealed under the same passphrase (hence the
// same salt and subkeys), re-decrypting with the currently-held index
// key rather than re-deriving it, then stamps LastSync.
func (s *Store) ImportSealed(raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireUnlockedLocked(); err != nil {
		return err
	}

	indexKey, err := s.keys.IndexKey()
	if err != nil {
		return err
	}

	var outer outerEnvelope
	if err := json.Unmarshal(raw, &outer); err != nil {
		return ErrCorrupt
	}
	var idx VaultIndex
	if err := envelope.DecryptObject(outer.Sealed, indexKey, []byte(outer.Version), &idx); err != nil {
		return ErrCorrupt
	}

	stamp := time.Now().UnixMilli()
	idx.Metadata.LastSync = &stamp
	s.index = &idx
	return s.writeIndexFile(raw)
}
