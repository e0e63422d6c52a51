//go:build !linux && !darwin

package vaultindex

// flockExclusive/flockUnlock are no-ops on platforms without flock(2); a
// second OS process racing a mutation is not a concern the portable build
// of the vault guards against, same as the mlock no-op fallback in
// internal/keyring.
func flockExclusive(fd int) error { return nil }
func flockUnlock(fd int) error    { return nil }
