package vaultindex

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/slasshy/slasshy/internal/envelope"
	"github.com/slasshy/slasshy/internal/fragment"
	"github.com/slasshy/slasshy/internal/stego"
)

// CloudUploader is the narrow contract the Vault Index needs from a cloud
// storage collaborator (§6): upload/download/delete of opaque blobs by
// handle. The core passes only PNGs whose payload it has already
// encrypted and fragmented; the collaborator is assumed untrusted and
// never sees plaintext or key material.
type CloudUploader interface {
	Upload(data []byte, name, mime string) (handle string, err error)
	Download(handle string) ([]byte, error)
	Delete(handle string) error
}

// CarrierGenerator supplies cover images for fragments. The default
// implementation (see DefaultCarrierGenerator) draws a fresh decoy
// gradient per fragment; callers may substitute real photos.
type CarrierGenerator func(width, height int) (image.Image, error)

// DefaultCarrierGenerator produces innocuous gradient+noise carriers
// sized to comfortably hold one fragment.
func DefaultCarrierGenerator(width, height int) (image.Image, error) {
	return stego.GenerateDecoyCarrier(width, height)
}

// BindToCloud fragments a record body, embeds each fragment into a PNG
// carrier, uploads the carriers via uploader, and records the returned
// chunk handles on the entry's IndexEntry.Carriers (§4.6 carrier
// binding). The local record body is left untouched so a caller can
// retry or fall back to local-only mode.
func (s *Store) BindToCloud(id string, uploader CloudUploader, gen CarrierGenerator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireUnlockedLocked(); err != nil {
		return err
	}
	ie, ok := s.index.Entries[id]
	if !ok {
		return &NotFoundError{ID: id}
	}

	body, err := s.readRecordBodyOrSealedLocked(ie, id)
	if err != nil {
		return err
	}

	frags, err := fragment.Split(body, fragment.DefaultOptions())
	if err != nil {
		return fmt.Errorf("vaultindex: fragmenting body for cloud upload: %w", err)
	}

	carriers := make([]CarrierRef, 0, len(frags))
	for _, f := range frags {
		serialized := fragment.Serialize(f)
		width, height := carrierDimsFor(len(serialized))
		carrier, err := gen(width, height)
		if err != nil {
			return fmt.Errorf("vaultindex: generating carrier: %w", err)
		}
		rgba, _, err := stego.Embed(carrier, serialized)
		if err != nil {
			return fmt.Errorf("vaultindex: embedding fragment %d: %w", f.Index, err)
		}

		var buf bytes.Buffer
		if err := stego.Encode(&buf, rgba); err != nil {
			return fmt.Errorf("vaultindex: encoding carrier: %w", err)
		}
		handle, err := uploader.Upload(buf.Bytes(), fmt.Sprintf("%s-%04d.png", id, f.Index), "image/png")
		if err != nil {
			return fmt.Errorf("vaultindex: uploading fragment %d: %w", f.Index, err)
		}
		carriers = append(carriers, CarrierRef{
			Type:          CarrierPNG,
			CloudHandle:   handle,
			FragmentIndex: f.Index,
			FragmentTotal: f.Total,
		})
	}

	ie.Carriers = carriers
	return s.save()
}

// FetchFromCloud reverses BindToCloud: downloads every carrier, extracts
// and deserializes its fragment, reassembles the body, and decrypts it.
func (s *Store) FetchFromCloud(id string, uploader CloudUploader) ([]byte, error) {
	s.mu.RLock()
	ie, ok := s.index.Entries[id]
	unlockedErr := s.requireUnlockedLocked()
	s.mu.RUnlock()
	if unlockedErr != nil {
		return nil, unlockedErr
	}
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	if len(ie.Carriers) == 0 {
		return nil, fmt.Errorf("vaultindex: entry %q has no cloud carriers bound", id)
	}

	frags := make([]fragment.Fragment, 0, len(ie.Carriers))
	for _, carrier := range ie.Carriers {
		raw, err := uploader.Download(carrier.CloudHandle)
		if err != nil {
			return nil, fmt.Errorf("vaultindex: downloading fragment %d: %w", carrier.FragmentIndex, err)
		}
		img, err := stego.Decode(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("vaultindex: decoding carrier %d: %w", carrier.FragmentIndex, err)
		}
		serialized, err := stego.Extract(img)
		if err != nil {
			return nil, fmt.Errorf("vaultindex: extracting fragment %d: %w", carrier.FragmentIndex, err)
		}
		f, err := fragment.Deserialize(serialized)
		if err != nil {
			return nil, fmt.Errorf("vaultindex: deserializing fragment %d: %w", carrier.FragmentIndex, err)
		}
		frags = append(frags, f)
	}

	body, err := fragment.Reassemble(frags)
	if err != nil {
		return nil, fmt.Errorf("vaultindex: reassembling body: %w", err)
	}

	entryKey, err := s.keys.EntryKey()
	if err != nil {
		return nil, err
	}
	plaintext, err := envelope.Decrypt(string(body), entryKey, []byte(id))
	if err != nil {
		return nil, ErrCorrupt
	}
	return plaintext, nil
}

func (s *Store) readRecordBodyOrSealedLocked(ie *IndexEntry, id string) ([]byte, error) {
	if ie.Kind == KindFile {
		path := filepath.Join(s.paths().Records, id)
		sealed, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("vaultindex: reading record body for cloud binding: %w", err)
		}
		return sealed, nil
	}
	return []byte(ie.EncryptedBody), nil
}

// carrierDimsFor picks a square carrier large enough to hold n payload
// bytes plus the stego header, with headroom so small fragments don't
// sit exactly at the capacity boundary.
func carrierDimsFor(n int) (width, height int) {
	needed := (n + stego.HeaderSize) * 8 / 3
	side := 64
	for side*side < needed {
		side *= 2
	}
	return side, side
}
