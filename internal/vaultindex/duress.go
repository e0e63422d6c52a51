package vaultindex

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/slasshy/slasshy/internal/envelope"
	"github.com/slasshy/slasshy/internal/keyring"
)

const decoyIndexFileName = "index.decoy.bin"

// ConfigureDuress derives keys for duressPassphrase, builds a decoy
// VaultIndex seeded with the given plausible entries, and persists it
// under its own salt/verifier so a later Unlock(duressPassphrase) swaps
// to it instead of the real vault (§4.6, §9 duress mode). The real
// index and its keys are never touched by this call.
func (s *Store) ConfigureDuress(duressPassphrase []byte, decoyTitles []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireUnlockedLocked(); err != nil {
		return err
	}

	salt, err := keyring.GenerateSalt()
	if err != nil {
		return fmt.Errorf("vaultindex: generating duress salt: %w", err)
	}
	master := keyring.DeriveMaster(duressPassphrase, salt, s.kdf)
	verifier := keyring.Verifier(master)

	decoyKeys := keyring.NewHierarchy(0)
	if err := decoyKeys.Unlock(duressPassphrase, salt, verifier, s.kdf); err != nil {
		return fmt.Errorf("vaultindex: unlocking fresh duress hierarchy: %w", err)
	}
	defer decoyKeys.Close()

	decoyIdx := &VaultIndex{
		Version:     currentVersion,
		Salt:        base64.StdEncoding.EncodeToString(salt),
		KeyVerifier: hex.EncodeToString(verifier),
		Entries:     make(map[string]*IndexEntry),
		Metadata:    Metadata{Created: now(), EntryCount: 0},
	}

	metadataKey, err := decoyKeys.MetadataKey()
	if err != nil {
		return err
	}
	entryKey, err := decoyKeys.EntryKey()
	if err != nil {
		return err
	}

	for _, title := range decoyTitles {
		entry := &Entry{
			ID:       newEntryID(),
			Kind:     KindNote,
			Title:    title,
			Created:  now(),
			Modified: now(),
			Content:  "",
		}
		encryptedTitle, err := envelope.Encrypt([]byte(entry.Title), metadataKey, []byte(entry.ID))
		if err != nil {
			return fmt.Errorf("vaultindex: sealing decoy title: %w", err)
		}
		sealedBody, err := envelope.EncryptObject(entry, entryKey, []byte(entry.ID))
		if err != nil {
			return fmt.Errorf("vaultindex: sealing decoy body: %w", err)
		}
		decoyIdx.Entries[entry.ID] = &IndexEntry{
			ID:             entry.ID,
			Kind:           KindNote,
			EncryptedTitle: encryptedTitle,
			CarrierType:    CarrierDecoy,
			Created:        entry.Created,
			Modified:       entry.Modified,
			EncryptedBody:  sealedBody,
		}
	}
	decoyIdx.Metadata.EntryCount = len(decoyIdx.Entries)

	decoyIndexKey, err := decoyKeys.IndexKey()
	if err != nil {
		return err
	}
	sealedIndex, err := envelope.EncryptObject(decoyIdx, decoyIndexKey, []byte(decoyIdx.Version))
	if err != nil {
		return fmt.Errorf("vaultindex: sealing decoy index: %w", err)
	}
	outer := outerEnvelope{
		Version:     decoyIdx.Version,
		Salt:        decoyIdx.Salt,
		KeyVerifier: decoyIdx.KeyVerifier,
		Sealed:      sealedIndex,
	}
	raw, err := json.Marshal(outer)
	if err != nil {
		return fmt.Errorf("vaultindex: marshaling decoy outer envelope: %w", err)
	}

	decoyPath := s.decoyPathDefault()
	if err := os.WriteFile(decoyPath, raw, 0600); err != nil {
		return fmt.Errorf("vaultindex: writing decoy index: %w", err)
	}
	s.decoyIndexPath = decoyPath
	return nil
}

func (s *Store) decoyPathDefault() string {
	return filepath.Join(s.dir, decoyIndexFileName)
}
