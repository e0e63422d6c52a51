package vaultindex

import (
	"fmt"

	"github.com/slasshy/slasshy/internal/envelope"
	"github.com/slasshy/slasshy/internal/totp"
)

const secondFactorAAD = "second-factor"

// EnrollSecondFactor generates a fresh TOTP secret, seals it under the
// metadata key, and returns the provisioning QR as a PNG for display.
func (s *Store) EnrollSecondFactor(issuer, accountID string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireUnlockedLocked(); err != nil {
		return nil, err
	}

	cfg, _, err := totp.Enroll(issuer, accountID)
	if err != nil {
		return nil, fmt.Errorf("vaultindex: enrolling second factor: %w", err)
	}

	metadataKey, err := s.keys.MetadataKey()
	if err != nil {
		return nil, err
	}
	sealed, err := envelope.EncryptObject(cfg, metadataKey, []byte(secondFactorAAD))
	if err != nil {
		return nil, fmt.Errorf("vaultindex: sealing second factor: %w", err)
	}
	s.index.EncryptedSecondFactor = sealed
	if err := s.save(); err != nil {
		return nil, err
	}

	qr, err := totp.QRPNG(cfg, 256)
	if err != nil {
		return nil, fmt.Errorf("vaultindex: rendering second factor qr: %w", err)
	}
	return qr, nil
}

// HasSecondFactor reports whether a second factor has been enrolled.
func (s *Store) HasSecondFactor() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unlocked && s.index != nil && s.index.EncryptedSecondFactor != ""
}

// VerifySecondFactor checks code against the enrolled TOTP secret.
// Returns ErrSecondFactorRequired if none is enrolled and
// ErrSecondFactorBad if the code is wrong.
func (s *Store) VerifySecondFactor(code string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.requireUnlockedLocked(); err != nil {
		return err
	}
	if s.index.EncryptedSecondFactor == "" {
		return ErrSecondFactorRequired
	}

	metadataKey, err := s.keys.MetadataKey()
	if err != nil {
		return err
	}
	var cfg totp.Config
	if err := envelope.DecryptObject(s.index.EncryptedSecondFactor, metadataKey, []byte(secondFactorAAD), &cfg); err != nil {
		return ErrCorrupt
	}
	if !totp.Verify(cfg, code) {
		return ErrSecondFactorBad
	}
	return nil
}
