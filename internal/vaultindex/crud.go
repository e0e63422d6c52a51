package vaultindex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/slasshy/slasshy/internal/envelope"
	"github.com/slasshy/slasshy/internal/primitives"
)

// AddCredential allocates a new credential entry, seals its body under
// the entry key and its title under the metadata key (both AAD=id), and
// persists the index.
func (s *Store) AddCredential(title string, fields CredentialFields) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireUnlockedLocked(); err != nil {
		return nil, err
	}

	entry := &Entry{
		ID:       newEntryID(),
		Kind:     KindCredential,
		Title:    title,
		Created:  now(),
		Modified: now(),
		Category: fields.Category,
		Username: fields.Username,
		Password: fields.Password,
		URL:      fields.URL,
		Notes:    fields.Notes,
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	if err := s.insertEntryLocked(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// AddNote allocates a new note entry.
func (s *Store) AddNote(title, content string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireUnlockedLocked(); err != nil {
		return nil, err
	}

	entry := &Entry{
		ID:       newEntryID(),
		Kind:     KindNote,
		Title:    title,
		Created:  now(),
		Modified: now(),
		Content:  content,
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	if err := s.insertEntryLocked(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// AddFile allocates a new file entry, reading sourcePath's bytes and
// sealing them as the record body under the entry key (AAD=id). notes is
// an optional caption carried in the Entry's Notes field.
func (s *Store) AddFile(title, sourcePath, notes string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireUnlockedLocked(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("vaultindex: reading source file: %w", err)
	}
	checksum := primitives.SHA256(data)

	entry := &Entry{
		ID:           newEntryID(),
		Kind:         KindFile,
		Title:        title,
		Created:      now(),
		Modified:     now(),
		Notes:        notes,
		OriginalName: filepath.Base(sourcePath),
		MimeType:     detectMimeType(sourcePath),
		Size:         int64(len(data)),
		SHA256:       fmt.Sprintf("%x", checksum),
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	if err := s.insertEntryLocked(entry); err != nil {
		return nil, err
	}
	if err := s.writeRecordBodyLocked(entry.ID, data); err != nil {
		return nil, err
	}
	return entry, nil
}

// insertEntryLocked seals entry into an IndexEntry, stores it, and
// persists the index. For credential/note kinds it also seals the body
// alongside the title; file bodies are written separately by the caller.
func (s *Store) insertEntryLocked(entry *Entry) error {
	metadataKey, err := s.keys.MetadataKey()
	if err != nil {
		return err
	}
	encryptedTitle, err := envelope.Encrypt([]byte(entry.Title), metadataKey, []byte(entry.ID))
	if err != nil {
		return fmt.Errorf("vaultindex: sealing title: %w", err)
	}

	ie := &IndexEntry{
		ID:             entry.ID,
		Kind:           entry.Kind,
		EncryptedTitle: encryptedTitle,
		CarrierType:    CarrierPNG,
		Created:        entry.Created,
		Modified:       entry.Modified,
		Favorite:       entry.Favorite,
		Category:       entry.Category,
		OriginalName:   entry.OriginalName,
		MimeType:       entry.MimeType,
		Size:           entry.Size,
		SHA256:         entry.SHA256,
	}

	if entry.Kind != KindFile {
		entryKey, err := s.keys.EntryKey()
		if err != nil {
			return err
		}
		sealedBody, err := envelope.EncryptObject(entry, entryKey, []byte(entry.ID))
		if err != nil {
			return fmt.Errorf("vaultindex: sealing body: %w", err)
		}
		ie.EncryptedBody = sealedBody
	}

	s.index.Entries[entry.ID] = ie
	return s.save()
}

func (s *Store) writeRecordBodyLocked(id string, data []byte) error {
	entryKey, err := s.keys.EntryKey()
	if err != nil {
		return err
	}
	sealed, err := envelope.Encrypt(data, entryKey, []byte(id))
	if err != nil {
		return fmt.Errorf("vaultindex: sealing record body: %w", err)
	}
	path := filepath.Join(s.paths().Records, id)
	if err := os.WriteFile(path, []byte(sealed), 0600); err != nil {
		return fmt.Errorf("vaultindex: writing record body: %w", err)
	}
	return nil
}

func (s *Store) readRecordBodyLocked(id string) ([]byte, error) {
	path := filepath.Join(s.paths().Records, id)
	sealed, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("vaultindex: reading record body: %w", err)
	}
	entryKey, err := s.keys.EntryKey()
	if err != nil {
		return nil, err
	}
	data, err := envelope.Decrypt(string(sealed), entryKey, []byte(id))
	if err != nil {
		return nil, ErrCorrupt
	}
	return data, nil
}

// Get decrypts and returns the full Entry for id (credential/note kinds).
func (s *Store) Get(id string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.requireUnlockedLocked(); err != nil {
		return nil, err
	}

	ie, ok := s.index.Entries[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	if ie.Kind == KindFile {
		return nil, fmt.Errorf("vaultindex: entry %q is a file entry, use GetFileMeta/GetFileBytes", id)
	}

	entryKey, err := s.keys.EntryKey()
	if err != nil {
		return nil, err
	}
	var entry Entry
	if err := envelope.DecryptObject(ie.EncryptedBody, entryKey, []byte(id), &entry); err != nil {
		return nil, ErrCorrupt
	}
	return &entry, nil
}

// GetNote decrypts and returns a note entry. Equivalent to Get for
// KindNote but fails clearly on other kinds.
func (s *Store) GetNote(id string) (*Entry, error) {
	entry, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if entry.Kind != KindNote {
		return nil, fmt.Errorf("vaultindex: entry %q is not a note", id)
	}
	return entry, nil
}

// GetFileMeta returns the file metadata for id without touching the body.
func (s *Store) GetFileMeta(id string) (*IndexEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.requireUnlockedLocked(); err != nil {
		return nil, err
	}
	ie, ok := s.index.Entries[id]
	if !ok || ie.Kind != KindFile {
		return nil, &NotFoundError{ID: id}
	}
	clone := *ie
	return &clone, nil
}

// GetFileBytes decrypts and returns a file entry's body.
func (s *Store) GetFileBytes(id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.requireUnlockedLocked(); err != nil {
		return nil, err
	}
	ie, ok := s.index.Entries[id]
	if !ok || ie.Kind != KindFile {
		return nil, &NotFoundError{ID: id}
	}
	return s.readRecordBodyLocked(id)
}

// List returns a summary of every entry, titles decrypted in memory.
func (s *Store) List() ([]IndexSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.requireUnlockedLocked(); err != nil {
		return nil, err
	}
	return s.listLocked(s.index.Entries)
}

func (s *Store) listLocked(entries map[string]*IndexEntry) ([]IndexSummary, error) {
	metadataKey, err := s.keys.MetadataKey()
	if err != nil {
		return nil, err
	}
	out := make([]IndexSummary, 0, len(entries))
	for id, ie := range entries {
		titleBytes, err := envelope.Decrypt(ie.EncryptedTitle, metadataKey, []byte(id))
		if err != nil {
			return nil, ErrCorrupt
		}
		out = append(out, IndexSummary{
			ID:       id,
			Kind:     ie.Kind,
			Title:    string(titleBytes),
			Created:  ie.Created,
			Modified: ie.Modified,
			Favorite: ie.Favorite,
			Category: ie.Category,
		})
	}
	return out, nil
}

// Search performs a case-insensitive substring match over decrypted
// titles, O(n) over the index.
func (s *Store) Search(query string) ([]IndexSummary, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	out := make([]IndexSummary, 0)
	for _, summary := range all {
		if strings.Contains(strings.ToLower(summary.Title), q) {
			out = append(out, summary)
		}
	}
	return out, nil
}

// Update applies patch to a credential or note entry. File entries are
// immutable via this path (replace by delete+add, per §4.6).
func (s *Store) Update(id string, patch UpdatePatch) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireUnlockedLocked(); err != nil {
		return nil, err
	}

	ie, ok := s.index.Entries[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	if ie.Kind == KindFile {
		return nil, fmt.Errorf("vaultindex: file entries are immutable, delete and re-add %q", id)
	}

	entryKey, err := s.keys.EntryKey()
	if err != nil {
		return nil, err
	}
	var entry Entry
	if err := envelope.DecryptObject(ie.EncryptedBody, entryKey, []byte(id), &entry); err != nil {
		return nil, ErrCorrupt
	}

	applyPatch(&entry, patch)
	entry.Modified = now()

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	sealedBody, err := envelope.EncryptObject(&entry, entryKey, []byte(id))
	if err != nil {
		return nil, fmt.Errorf("vaultindex: sealing updated body: %w", err)
	}
	ie.EncryptedBody = sealedBody
	ie.Modified = entry.Modified

	if patch.Title != nil {
		metadataKey, err := s.keys.MetadataKey()
		if err != nil {
			return nil, err
		}
		encryptedTitle, err := envelope.Encrypt([]byte(entry.Title), metadataKey, []byte(id))
		if err != nil {
			return nil, fmt.Errorf("vaultindex: sealing updated title: %w", err)
		}
		ie.EncryptedTitle = encryptedTitle
	}
	if patch.Category != nil {
		ie.Category = *patch.Category
	}

	if err := s.save(); err != nil {
		return nil, err
	}
	return &entry, nil
}

func applyPatch(entry *Entry, patch UpdatePatch) {
	if patch.Title != nil {
		entry.Title = *patch.Title
	}
	if patch.Username != nil {
		entry.Username = *patch.Username
	}
	if patch.Password != nil {
		entry.Password = *patch.Password
	}
	if patch.URL != nil {
		entry.URL = *patch.URL
	}
	if patch.Notes != nil {
		entry.Notes = *patch.Notes
	}
	if patch.Content != nil {
		entry.Content = *patch.Content
	}
	if patch.Category != nil {
		entry.Category = *patch.Category
	}
}

// Delete removes an entry, its record body, and any local carriers it
// owns, then updates the index. Cloud carriers (CloudHandle) are not
// deleted, and no record of their handles is kept once the entry is gone.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireUnlockedLocked(); err != nil {
		return err
	}

	ie, ok := s.index.Entries[id]
	if !ok {
		return &NotFoundError{ID: id}
	}

	recordPath := filepath.Join(s.paths().Records, id)
	_ = os.Remove(recordPath) // best-effort; absence is not an error here

	for _, carrier := range ie.Carriers {
		if carrier.Type != CarrierType(CarrierDecoy) && carrier.LocalPath != "" {
			_ = os.Remove(carrier.LocalPath)
		}
	}

	delete(s.index.Entries, id)
	return s.save()
}

// ToggleFavorite flips the favorite flag on id.
func (s *Store) ToggleFavorite(id string) (*IndexEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireUnlockedLocked(); err != nil {
		return nil, err
	}
	ie, ok := s.index.Entries[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	ie.Favorite = !ie.Favorite
	ie.Modified = now()
	if err := s.save(); err != nil {
		return nil, err
	}
	clone := *ie
	return &clone, nil
}

// Stats returns vault-wide counters.
func (s *Store) Stats() (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.requireUnlockedLocked(); err != nil {
		return Stats{}, err
	}
	return Stats{
		EntryCount: s.index.Metadata.EntryCount,
		Created:    s.index.Metadata.Created,
		LastSync:   s.index.Metadata.LastSync,
	}, nil
}

// GetPaths returns the vault's on-disk directory layout.
func (s *Store) GetPaths() Paths {
	return s.paths()
}

func detectMimeType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
