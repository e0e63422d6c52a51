//go:build !linux && !darwin

package keyring

// lockMemory/unlockMemory are no-ops on platforms without mlock(2); the
// key material is still zeroized on expiry, lock, and SIGINT/SIGTERM.
func lockMemory(b []byte) error   { return nil }
func unlockMemory(b []byte) error { return nil }
