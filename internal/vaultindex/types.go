// Package vaultindex implements the durable encrypted Vault Index and
// Record Store (§3, §4.6): entry lifecycle, CRUD, carrier binding, and
// the write-new+fsync+rename persistence discipline.
package vaultindex

import (
	"fmt"
	"net/url"
	"time"
)

// Kind distinguishes the three entry shapes the vault can hold.
type Kind string

const (
	KindCredential Kind = "credential"
	KindNote       Kind = "note"
	KindFile       Kind = "file"
)

// CarrierType names the cover medium behind a record's fragments.
// Only CarrierPNG is implemented; CarrierJPG is reserved (§9 open
// question a) and CarrierDecoy marks fragments living behind a decoy
// index rather than the real one.
type CarrierType string

const (
	CarrierPNG   CarrierType = "png"
	CarrierJPG   CarrierType = "jpg"
	CarrierDecoy CarrierType = "decoy"
)

// Entry is the plaintext record (§3). It is never serialized unencrypted
// to disk — only Encrypt/Decrypt boundary functions touch it.
type Entry struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	Title      string    `json:"title"`
	Created    int64     `json:"created"`
	Modified   int64     `json:"modified"`
	Favorite   bool      `json:"favorite"`
	Category   string    `json:"category,omitempty"`

	// Credential fields.
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	URL      string `json:"url,omitempty"`
	Notes    string `json:"notes,omitempty"`

	// Note fields.
	Content string `json:"content,omitempty"`

	// File fields (body stored as encrypted blob(s) outside the record).
	OriginalName string `json:"original_name,omitempty"`
	MimeType     string `json:"mime_type,omitempty"`
	Size         int64  `json:"size,omitempty"`
	SHA256       string `json:"sha256,omitempty"`
}

func now() int64 { return time.Now().UnixMilli() }

const (
	maxTitleLen    = 256
	maxCategoryLen = 64
	maxUsernameLen = 256
	maxPasswordLen = 4096
	maxURLLen      = 2048
	maxNotesLen    = 65536
	maxContentLen  = 1 << 20 // 1 MiB
)

// Validate checks the field invariants of §3 before an entry is sealed:
// title length, the credential/note field ceilings, and a well-formed
// URL. It does not check id uniqueness or modified >= created, which are
// store-level invariants enforced by the caller.
func (e *Entry) Validate() error {
	if len(e.Title) < 1 || len(e.Title) > maxTitleLen {
		return fmt.Errorf("%w: title must be 1-%d chars, got %d", ErrInvalidEntry, maxTitleLen, len(e.Title))
	}
	if len(e.Category) > maxCategoryLen {
		return fmt.Errorf("%w: category must be <=%d chars, got %d", ErrInvalidEntry, maxCategoryLen, len(e.Category))
	}

	switch e.Kind {
	case KindCredential:
		if len(e.Username) > maxUsernameLen {
			return fmt.Errorf("%w: username must be <=%d chars, got %d", ErrInvalidEntry, maxUsernameLen, len(e.Username))
		}
		if len(e.Password) > maxPasswordLen {
			return fmt.Errorf("%w: password must be <=%d chars, got %d", ErrInvalidEntry, maxPasswordLen, len(e.Password))
		}
		if len(e.URL) > maxURLLen {
			return fmt.Errorf("%w: url must be <=%d chars, got %d", ErrInvalidEntry, maxURLLen, len(e.URL))
		}
		if e.URL != "" {
			if _, err := url.ParseRequestURI(e.URL); err != nil {
				return fmt.Errorf("%w: url is not well-formed: %v", ErrInvalidEntry, err)
			}
		}
		if len(e.Notes) > maxNotesLen {
			return fmt.Errorf("%w: notes must be <=%d chars, got %d", ErrInvalidEntry, maxNotesLen, len(e.Notes))
		}
	case KindNote:
		if len(e.Content) > maxContentLen {
			return fmt.Errorf("%w: content must be <=%d bytes, got %d", ErrInvalidEntry, maxContentLen, len(e.Content))
		}
	}
	return nil
}

// CarrierRef names where one fragment of a record body lives: either a
// local file under carriers/, or a cloud chunk handle.
type CarrierRef struct {
	Type       CarrierType `json:"type"`
	LocalPath  string      `json:"local_path,omitempty"`
	CloudHandle string     `json:"cloud_handle,omitempty"`
	FragmentIndex int      `json:"fragment_index"`
	FragmentTotal int      `json:"fragment_total"`
}

// IndexEntry is the encrypted-at-rest counterpart of Entry (§3). The
// title is opaque ciphertext; only metadata needed for listing/search
// without decryption lives in cleartext fields.
type IndexEntry struct {
	ID            string       `json:"id"`
	Kind          Kind         `json:"kind"`
	EncryptedTitle string      `json:"encrypted_title"`
	Carriers      []CarrierRef `json:"carriers"`
	CarrierType   CarrierType  `json:"carrier_type"`
	Created       int64        `json:"created"`
	Modified      int64        `json:"modified"`
	Favorite      bool         `json:"favorite"`
	Category      string       `json:"category,omitempty"`

	// File metadata, present only for Kind == KindFile. These are not
	// secret (size/mime/checksum of a file rarely are); all four,
	// including the original name, are stored as plain IndexEntry fields,
	// not under the metadata key.
	OriginalName string `json:"original_name,omitempty"`
	MimeType     string `json:"mime_type,omitempty"`
	Size         int64  `json:"size,omitempty"`
	SHA256       string `json:"sha256,omitempty"`

	// EncryptedBody is the entry-key envelope for a credential/note body.
	// File bodies instead live behind Carriers (or records/<id> on local
	// disk when cloud mode is not in play).
	EncryptedBody string `json:"encrypted_body,omitempty"`
}

// Metadata tracks vault-wide bookkeeping (§3).
type Metadata struct {
	Created     int64  `json:"created"`
	LastSync    *int64 `json:"last_sync,omitempty"`
	EntryCount  int    `json:"entry_count"`
	SyncVersion int64  `json:"sync_version"`
}

// VaultIndex is the single durable root-of-trust structure (§3),
// persisted encrypted as index.bin.
type VaultIndex struct {
	Version     string                 `json:"version"`
	Salt        string                 `json:"salt"` // base64, >= 32 bytes
	KeyVerifier string                 `json:"key_verifier"` // hex sha256(master)
	Entries     map[string]*IndexEntry `json:"entries"`
	Metadata    Metadata               `json:"metadata"`

	// EncryptedSecondFactor is an opaque ciphertext blob encrypted under
	// the metadata key; its plaintext shape is owned by internal/totp, not
	// by this package. EncryptedDuress is not written by this package: the
	// duress decoy index is kept in its own file (see duress.go).
	EncryptedSecondFactor string `json:"encrypted_second_factor,omitempty"`
	EncryptedDuress       string `json:"encrypted_duress,omitempty"`
}

// IndexSummary is the listing projection returned by List/Search: titles
// decrypted in memory, never persisted in this shape.
type IndexSummary struct {
	ID       string `json:"id"`
	Kind     Kind   `json:"kind"`
	Title    string `json:"title"`
	Created  int64  `json:"created"`
	Modified int64  `json:"modified"`
	Favorite bool   `json:"favorite"`
	Category string `json:"category,omitempty"`
}

// Stats is the result of the stats() operation.
type Stats struct {
	EntryCount int    `json:"entry_count"`
	Created    int64  `json:"created"`
	LastSync   *int64 `json:"last_sync,omitempty"`
}

// Paths is the result of get_paths().
type Paths struct {
	Dir      string `json:"dir"`
	Records  string `json:"records"`
	Carriers string `json:"carriers"`
	Tokens   string `json:"tokens"`
}

// CredentialFields is the input shape for AddCredential.
type CredentialFields struct {
	Username string
	Password string
	URL      string
	Notes    string
	Category string
}

// UpdatePatch carries the optional fields an Update call may change.
// Nil pointers leave the corresponding field untouched.
type UpdatePatch struct {
	Title    *string
	Username *string
	Password *string
	URL      *string
	Notes    *string
	Content  *string
	Category *string
}
