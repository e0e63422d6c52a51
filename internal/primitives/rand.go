// Package primitives is the thin layer over the CSPRNG, SHA-256, and
// constant-time comparison that every other core package builds on.
package primitives

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// RandomBytes returns n cryptographically random bytes.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("primitives: failed to read random bytes: %w", err)
	}
	return b, nil
}

// RandomInt returns a uniform random integer in [min, max], inclusive.
func RandomInt(min, max int) (int, error) {
	if max < min {
		return 0, fmt.Errorf("primitives: invalid range [%d, %d]", min, max)
	}
	span := int64(max-min) + 1
	n, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		return 0, fmt.Errorf("primitives: failed to draw random int: %w", err)
	}
	return min + int(n.Int64()), nil
}

// UUIDv4 returns a random (version 4) UUID string.
func UUIDv4() string {
	return uuid.New().String()
}
