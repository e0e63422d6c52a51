// Package cloud implements the out-of-core collaborators the Vault Index
// hands opaque, already-encrypted blobs to: an index mirror for
// multi-device sync, a token escrow for second-factor/duress
// configuration blobs, and a blob store for PNG carrier fragments (§6).
// Nothing in this package ever sees plaintext or key material.
package cloud

import "errors"

var (
	// ErrConflict surfaces a failed optimistic-concurrency write: the
	// remote index has moved on since the caller last synced.
	ErrConflict = errors.New("cloud: remote index has a newer version, sync before pushing")
	// ErrNotFound is returned when a handle or mirror record does not
	// exist remotely.
	ErrNotFound = errors.New("cloud: not found")
)
