package vaultindex

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/slasshy/slasshy/internal/envelope"
	"github.com/slasshy/slasshy/internal/keyring"
	"github.com/slasshy/slasshy/internal/primitives"
)

const currentVersion = "1"

// outerEnvelope is the on-disk shape of index.bin: the salt and key
// verifier must be readable before the key hierarchy can be re-derived,
// so they sit outside the sealed blob; Sealed is base64(IV||ct||tag) of
// the canonical VaultIndex JSON, AAD = Version (§6).
type outerEnvelope struct {
	Version     string `json:"version"`
	Salt        string `json:"salt"`
	KeyVerifier string `json:"key_verifier"`
	Sealed      string `json:"sealed"`
}

// Store is the Vault Index & Record Store (§4.6): it owns the key
// hierarchy, the durable index file, and every Index Entry's carrier
// references. All mutations are serialized by mu; reads that only decrypt
// record bodies may proceed concurrently once they've taken a snapshot of
// the in-memory index under RLock.
type Store struct {
	dir string
	kdf keyring.KDFParams

	mu       sync.RWMutex
	keys     *keyring.Hierarchy
	index    *VaultIndex
	unlocked bool
	duress   bool

	// Duress configuration. decoyIndexPath names the decoy index file that
	// ConfigureDuress writes; Unlock tries the passphrase against it after
	// the primary rejects it, before surfacing ErrBadPassphrase. The decoy
	// file carries its own salt and verifier; duressSalt and duressVerifier
	// are not used.
	duressSalt     []byte
	duressVerifier []byte
	decoyIndexPath string
}

// NewStore creates a Store rooted at dir. autoLockExpiry of 0 disables
// the key holder's inactivity timer.
func NewStore(dir string, autoLockExpiry time.Duration, kdfParams keyring.KDFParams) *Store {
	s := &Store{
		dir:  dir,
		kdf:  kdfParams,
		keys: keyring.NewHierarchy(autoLockExpiry),
	}
	s.decoyIndexPath = s.decoyPathDefault()
	return s
}

// Exists reports whether index.bin is present (§4.6 exists()).
func (s *Store) Exists() bool {
	_, err := s.readIndexFile()
	return err == nil
}

// Init creates a brand-new, empty vault. Fails with ErrAlreadyInitialized
// if index.bin already exists.
func (s *Store) Init(passphrase []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Exists() {
		return ErrAlreadyInitialized
	}
	if err := s.kdf.Validate(); err != nil {
		return fmt.Errorf("vaultindex: %w", err)
	}
	if err := s.ensureDirs(); err != nil {
		return err
	}

	salt, err := keyring.GenerateSalt()
	if err != nil {
		return fmt.Errorf("vaultindex: generating salt: %w", err)
	}
	master := keyring.DeriveMaster(passphrase, salt, s.kdf)
	verifier := keyring.Verifier(master)

	idx := &VaultIndex{
		Version:     currentVersion,
		Salt:        base64.StdEncoding.EncodeToString(salt),
		KeyVerifier: hex.EncodeToString(verifier),
		Entries:     make(map[string]*IndexEntry),
		Metadata:    Metadata{Created: now(), EntryCount: 0},
	}

	if err := s.keys.Unlock(passphrase, salt, verifier, s.kdf); err != nil {
		return err
	}
	indexKey, err := s.keys.IndexKey()
	if err != nil {
		return err
	}
	if err := s.persistLocked(idx, indexKey); err != nil {
		return err
	}
	s.index = idx
	s.unlocked = true
	return nil
}

// Unlock re-derives keys from passphrase, verifies them against the
// stored verifier in constant time, and loads the index into memory. A
// configured duress passphrase that matches instead swaps in the decoy
// index and sets the process-wide duress flag, observable only via
// IsDuress(), never via IsUnlocked().
func (s *Store) Unlock(passphrase []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.readIndexFile()
	if err != nil {
		return err
	}

	idx, err := s.unlockFromRaw(raw, passphrase, currentVersion)
	if err == ErrCorrupt {
		// Primary fails authentication; retry the backup generation.
		if backupRaw, bErr := s.readBackupFile(); bErr == nil {
			idx, err = s.unlockFromRaw(backupRaw, passphrase, currentVersion)
		}
	}
	if err == nil {
		s.index = idx
		s.unlocked = true
		s.duress = false
		return nil
	}
	if err != ErrBadPassphrase {
		return err
	}

	if s.decoyIndexPath != "" {
		if decoyRaw, dErr := os.ReadFile(s.decoyIndexPath); dErr == nil {
			if decoyIdx, dErr2 := s.unlockFromRaw(decoyRaw, passphrase, currentVersion); dErr2 == nil {
				s.index = decoyIdx
				s.unlocked = true
				s.duress = true
				return nil
			}
		}
	}

	return ErrBadPassphrase
}

// unlockFromRaw decodes the outer envelope, re-derives keys from the
// embedded salt, verifies in constant time, and decrypts the sealed
// VaultIndex blob.
func (s *Store) unlockFromRaw(raw []byte, passphrase []byte, aadVersion string) (*VaultIndex, error) {
	var outer outerEnvelope
	if err := json.Unmarshal(raw, &outer); err != nil {
		return nil, ErrCorrupt
	}

	salt, err := base64.StdEncoding.DecodeString(outer.Salt)
	if err != nil {
		return nil, ErrCorrupt
	}
	verifier, err := hex.DecodeString(outer.KeyVerifier)
	if err != nil {
		return nil, ErrCorrupt
	}

	if err := s.keys.Unlock(passphrase, salt, verifier, s.kdf); err != nil {
		return nil, ErrBadPassphrase
	}

	indexKey, err := s.keys.IndexKey()
	if err != nil {
		return nil, err
	}

	var idx VaultIndex
	if err := envelope.DecryptObject(outer.Sealed, indexKey, []byte(aadVersion), &idx); err != nil {
		return nil, ErrCorrupt
	}
	return &idx, nil
}

// UnlockWithCachedMaster re-opens the vault using a previously-cached
// master key (see internal/sessioncache) instead of a passphrase. It
// still verifies the key against the stored verifier in constant time,
// so a stale or tampered cache entry can never bypass authentication.
func (s *Store) UnlockWithCachedMaster(master []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.readIndexFile()
	if err != nil {
		return err
	}
	var outer outerEnvelope
	if err := json.Unmarshal(raw, &outer); err != nil {
		return ErrCorrupt
	}
	verifier, err := hex.DecodeString(outer.KeyVerifier)
	if err != nil {
		return ErrCorrupt
	}
	if err := s.keys.UnlockWithMaster(master, verifier); err != nil {
		return ErrBadPassphrase
	}

	indexKey, err := s.keys.IndexKey()
	if err != nil {
		return err
	}

	var idx VaultIndex
	if err := envelope.DecryptObject(outer.Sealed, indexKey, []byte(outer.Version), &idx); err != nil {
		return ErrCorrupt
	}
	s.index = &idx
	s.unlocked = true
	s.duress = false
	return nil
}

// CachedMasterKey returns a copy of the currently-held master key, for a
// caller to hand to a session cache. It never returns the live borrowed
// buffer, so the caller's zeroization can't corrupt the holder's copy.
func (s *Store) CachedMasterKey() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.requireUnlockedLocked(); err != nil {
		return nil, err
	}
	master, err := s.keys.Master()
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(master))
	copy(out, master)
	return out, nil
}

// Lock zeroizes all key material and drops the in-memory index. Pending
// I/O started before Lock is allowed to complete.
func (s *Store) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys.Lock()
	s.index = nil
	s.unlocked = false
	s.duress = false
}

// IsUnlocked reports whether the store currently holds a live index.
func (s *Store) IsUnlocked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unlocked
}

// IsDuress reports whether the currently-unlocked session is a duress
// (decoy) session.
func (s *Store) IsDuress() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.duress
}

// ConfigureDecoyPath points the store at a decoy index file that Unlock
// will try once the primary index rejects a passphrase.
func (s *Store) ConfigureDecoyPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decoyIndexPath = path
}

// persistLocked seals idx under the index key with AAD=idx.Version and
// writes the resulting outer envelope via the write-new+fsync+rename
// discipline. Caller must hold s.mu.
func (s *Store) persistLocked(idx *VaultIndex, indexKey []byte) error {
	idx.Metadata.EntryCount = len(idx.Entries)
	idx.Metadata.SyncVersion++
	sealed, err := envelope.EncryptObject(idx, indexKey, []byte(idx.Version))
	if err != nil {
		return fmt.Errorf("vaultindex: sealing index: %w", err)
	}
	outer := outerEnvelope{
		Version:     idx.Version,
		Salt:        idx.Salt,
		KeyVerifier: idx.KeyVerifier,
		Sealed:      sealed,
	}
	raw, err := json.Marshal(outer)
	if err != nil {
		return fmt.Errorf("vaultindex: marshaling outer envelope: %w", err)
	}
	return s.writeIndexFile(raw)
}

// save re-seals and persists the in-memory index using the live index
// key. Caller must hold s.mu (write lock).
func (s *Store) save() error {
	indexKey, err := s.keys.IndexKey()
	if err != nil {
		return ErrLocked
	}
	return s.persistLocked(s.index, indexKey)
}

func (s *Store) requireUnlockedLocked() error {
	if !s.unlocked || s.index == nil {
		return ErrLocked
	}
	return nil
}

func newEntryID() string { return primitives.UUIDv4() }
