package vaultindex

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/slasshy/slasshy/internal/envelope"
	"github.com/slasshy/slasshy/internal/keyring"
)

// RotateMaster changes the vault's passphrase. Because the index, entry,
// and metadata subkeys are all HKDF-derived from the master key rather
// than wrapped independently, there is no shortcut: every title and
// record body is decrypted under the current subkeys and re-encrypted
// under the subkeys derived from the freshly-salted master before the
// old keys are discarded.
func (s *Store) RotateMaster(newPassphrase []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireUnlockedLocked(); err != nil {
		return err
	}

	oldMetadataKey, err := s.keys.MetadataKey()
	if err != nil {
		return err
	}
	oldEntryKey, err := s.keys.EntryKey()
	if err != nil {
		return err
	}

	titles := make(map[string]string, len(s.index.Entries))
	bodies := make(map[string][]byte, len(s.index.Entries))
	recordBodies := make(map[string][]byte)

	for id, ie := range s.index.Entries {
		title, err := envelope.Decrypt(ie.EncryptedTitle, oldMetadataKey, []byte(id))
		if err != nil {
			return ErrCorrupt
		}
		titles[id] = string(title)

		if ie.Kind == KindFile {
			raw, err := s.readRecordBodyLocked(id)
			if err != nil {
				return err
			}
			recordBodies[id] = raw
			continue
		}
		body, err := envelope.Decrypt(ie.EncryptedBody, oldEntryKey, []byte(id))
		if err != nil {
			return ErrCorrupt
		}
		bodies[id] = body
	}

	newSalt, err := keyring.GenerateSalt()
	if err != nil {
		return fmt.Errorf("vaultindex: generating rotation salt: %w", err)
	}
	newMaster := keyring.DeriveMaster(newPassphrase, newSalt, s.kdf)
	newVerifier := keyring.Verifier(newMaster)

	if err := s.keys.Unlock(newPassphrase, newSalt, newVerifier, s.kdf); err != nil {
		return fmt.Errorf("vaultindex: installing rotated keys: %w", err)
	}

	newMetadataKey, err := s.keys.MetadataKey()
	if err != nil {
		return err
	}
	newEntryKey, err := s.keys.EntryKey()
	if err != nil {
		return err
	}

	for id, ie := range s.index.Entries {
		encryptedTitle, err := envelope.Encrypt([]byte(titles[id]), newMetadataKey, []byte(id))
		if err != nil {
			return fmt.Errorf("vaultindex: re-sealing title: %w", err)
		}
		ie.EncryptedTitle = encryptedTitle

		if ie.Kind == KindFile {
			sealed, err := envelope.Encrypt(recordBodies[id], newEntryKey, []byte(id))
			if err != nil {
				return fmt.Errorf("vaultindex: re-sealing record body: %w", err)
			}
			path := filepath.Join(s.paths().Records, id)
			if err := os.WriteFile(path, []byte(sealed), 0600); err != nil {
				return fmt.Errorf("vaultindex: writing re-sealed record body: %w", err)
			}
			continue
		}

		sealedBody, err := envelope.Encrypt(bodies[id], newEntryKey, []byte(id))
		if err != nil {
			return fmt.Errorf("vaultindex: re-sealing body: %w", err)
		}
		ie.EncryptedBody = sealedBody
	}

	s.index.Salt = base64.StdEncoding.EncodeToString(newSalt)
	s.index.KeyVerifier = hex.EncodeToString(newVerifier)

	return s.save()
}
