// Package totp implements the second-factor collaborator boundary named
// in §1 as explicitly out of the security-critical core: enrollment,
// provisioning URI/QR generation, and verification of a TOTP code against
// a secret the Vault Index stores only as an opaque encrypted blob
// (EncryptedSecondFactor).
package totp

import (
	"bytes"
	"fmt"
	"image/png"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Config is the plaintext shape sealed behind
// VaultIndex.EncryptedSecondFactor (AAD = vault id or "second-factor",
// caller's choice; this package never touches the envelope itself).
type Config struct {
	Secret    string `json:"secret"`
	AccountID string `json:"account_id"`
	Issuer    string `json:"issuer"`
}

// Enroll generates a fresh TOTP secret for accountID under issuer and
// returns the Config to be sealed by the caller, plus the provisioning
// URI a QR code should encode.
func Enroll(issuer, accountID string) (Config, string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: accountID,
	})
	if err != nil {
		return Config{}, "", fmt.Errorf("totp: generating key: %w", err)
	}
	return Config{
		Secret:    key.Secret(),
		AccountID: accountID,
		Issuer:    issuer,
	}, key.URL(), nil
}

// Verify checks code against cfg's secret at the current time step, with
// the standard ±1 step skew window.
func Verify(cfg Config, code string) bool {
	return totp.Validate(code, cfg.Secret)
}

// VerifyAt checks code against cfg's secret as of t, for deterministic
// tests.
func VerifyAt(cfg Config, code string, t time.Time) (bool, error) {
	return totp.ValidateCustom(code, cfg.Secret, t, totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
}

// ProvisionURI rebuilds the otpauth:// URI for cfg, e.g. for re-displaying
// a QR code without re-enrolling.
func ProvisionURI(cfg Config) string {
	return fmt.Sprintf("otpauth://totp/%s:%s?secret=%s&issuer=%s",
		cfg.Issuer, cfg.AccountID, cfg.Secret, cfg.Issuer)
}

// QRPNG renders the provisioning URI for cfg as a PNG barcode image,
// sized to sidePixels, for the terminal/UI collaborator to display.
func QRPNG(cfg Config, sidePixels int) ([]byte, error) {
	code, err := qr.Encode(ProvisionURI(cfg), qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("totp: encoding qr: %w", err)
	}
	scaled, err := barcode.Scale(code, sidePixels, sidePixels)
	if err != nil {
		return nil, fmt.Errorf("totp: scaling qr: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("totp: encoding qr png: %w", err)
	}
	return buf.Bytes(), nil
}
