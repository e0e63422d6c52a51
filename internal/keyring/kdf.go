// Package keyring implements the passphrase -> master key -> labeled
// subkey hierarchy (§4.2) and the in-memory key holder with auto-expiry
// and zeroization.
package keyring

import (
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/slasshy/slasshy/internal/primitives"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

const (
	// MasterKeySize is the length in bytes of the derived master key and
	// every labeled subkey.
	MasterKeySize = 32

	// SaltSize is the length in bytes of the Argon2id salt.
	SaltSize = 32

	// Labeled subkeys derived from the master key at unlock.
	LabelIndexKey    = "slasshy-index-key"
	LabelEntryKey    = "slasshy-entry-key"
	LabelMetadataKey = "slasshy-metadata-key"
)

// KDFParams holds the Argon2id cost parameters. DefaultKDFParams are
// authoritative; implementations must reject weaker (§4.2).
type KDFParams struct {
	TimeCost    uint32 `json:"time_cost"`
	MemoryCost  uint32 `json:"memory_cost"`
	Parallelism uint8  `json:"parallelism"`
}

// DefaultKDFParams returns the spec-mandated Argon2id parameters.
func DefaultKDFParams() KDFParams {
	return KDFParams{
		TimeCost:    3,
		MemoryCost:  64 * 1024, // 64 MiB
		Parallelism: 4,
	}
}

// Validate rejects KDF parameters weaker than the spec-mandated defaults.
func (p KDFParams) Validate() error {
	d := DefaultKDFParams()
	if p.TimeCost < d.TimeCost {
		return fmt.Errorf("keyring: time cost %d weaker than minimum %d", p.TimeCost, d.TimeCost)
	}
	if p.MemoryCost < d.MemoryCost {
		return fmt.Errorf("keyring: memory cost %d weaker than minimum %d", p.MemoryCost, d.MemoryCost)
	}
	if p.Parallelism < d.Parallelism {
		return fmt.Errorf("keyring: parallelism %d weaker than minimum %d", p.Parallelism, d.Parallelism)
	}
	return nil
}

// GenerateSalt draws a fresh Argon2id salt.
func GenerateSalt() ([]byte, error) {
	return primitives.RandomBytes(SaltSize)
}

// DeriveMaster derives the 32-byte master key from a passphrase and salt
// via Argon2id.
func DeriveMaster(passphrase, salt []byte, params KDFParams) []byte {
	return argon2.IDKey(passphrase, salt, params.TimeCost, params.MemoryCost, params.Parallelism, MasterKeySize)
}

// DeriveSubkey derives a labeled subkey from the master key via
// HKDF-SHA256 with an empty salt (the master key is already salted) and
// info = label.
func DeriveSubkey(master []byte, label string, length int) ([]byte, error) {
	kdf := hkdf.New(sha256.New, master, nil, []byte(label))
	out := make([]byte, length)
	if _, err := io.ReadFull(kdf, out); err != nil {
		return nil, fmt.Errorf("keyring: hkdf expand failed: %w", err)
	}
	return out, nil
}

// Verifier returns sha256(master), used for wrong-passphrase detection
// without building an oracle for the master key itself.
func Verifier(master []byte) []byte {
	return primitives.SHA256(master)
}
