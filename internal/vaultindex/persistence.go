package vaultindex

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	indexFileName  = "index.bin"
	backupFileName = "index.bin.bak"
	lockFileName   = "index.bin.lock"
	recordsDirName = "records"
	carriersDirName = "carriers"
	tokensFileName = "tokens.bin"
)

func (s *Store) paths() Paths {
	return Paths{
		Dir:      s.dir,
		Records:  filepath.Join(s.dir, recordsDirName),
		Carriers: filepath.Join(s.dir, carriersDirName),
		Tokens:   filepath.Join(s.dir, tokensFileName),
	}
}

func (s *Store) indexPath() string  { return filepath.Join(s.dir, indexFileName) }
func (s *Store) backupPath() string { return filepath.Join(s.dir, backupFileName) }
func (s *Store) lockPath() string   { return filepath.Join(s.dir, lockFileName) }

func (s *Store) ensureDirs() error {
	for _, d := range []string{s.dir, s.paths().Records, s.paths().Carriers} {
		if err := os.MkdirAll(d, 0700); err != nil {
			return fmt.Errorf("vaultindex: creating %s: %w", d, err)
		}
	}
	return nil
}

// writeIndexFile persists raw (the envelope ciphertext) to index.bin using
// write-new + fsync + rename, first preserving the previous primary as a
// one-generation .bak (§4.6, §5). The whole critical section runs under
// an OS advisory lock on index.bin.lock, so a second process (another
// vaultctl invocation, or vaultd) racing this one blocks instead of
// tearing the file.
func (s *Store) writeIndexFile(raw []byte) error {
	unlock, err := s.lockIndexFile()
	if err != nil {
		return err
	}
	defer unlock()

	primary := s.indexPath()

	if _, err := os.Stat(primary); err == nil {
		if err := copyFile(primary, s.backupPath()); err != nil {
			return fmt.Errorf("vaultindex: snapshotting backup: %w", err)
		}
	}

	tmp := primary + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("vaultindex: opening temp index: %w", err)
	}
	if _, err := f.Write(raw); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("vaultindex: writing temp index: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("vaultindex: fsyncing temp index: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("vaultindex: closing temp index: %w", err)
	}
	if err := os.Rename(tmp, primary); err != nil {
		return fmt.Errorf("vaultindex: renaming index into place: %w", err)
	}
	return nil
}

// readIndexFile loads the raw envelope of the primary index.bin; a
// missing file is ErrNotInitialized. It does not read the .bak
// generation: Unlock retries with the backup payload when the primary
// fails authentication (ErrCorrupt).
func (s *Store) readIndexFile() ([]byte, error) {
	raw, err := os.ReadFile(s.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotInitialized
		}
		return nil, fmt.Errorf("vaultindex: reading index: %w", err)
	}
	return raw, nil
}

func (s *Store) readBackupFile() ([]byte, error) {
	raw, err := os.ReadFile(s.backupPath())
	if err != nil {
		return nil, fmt.Errorf("vaultindex: reading backup index: %w", err)
	}
	return raw, nil
}

// lockIndexFile takes an OS advisory lock on index.bin.lock, blocking
// until it is available, and returns a func to release it (§4.6, §5:
// "the Vault Index file is held under an OS advisory lock for the
// duration of a mutation").
func (s *Store) lockIndexFile() (func(), error) {
	f, err := os.OpenFile(s.lockPath(), os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("vaultindex: opening lock file: %w", err)
	}
	if err := flockExclusive(int(f.Fd())); err != nil {
		f.Close()
		return nil, fmt.Errorf("vaultindex: acquiring advisory lock: %w", err)
	}
	return func() {
		flockUnlock(int(f.Fd()))
		f.Close()
	}, nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0600)
}

