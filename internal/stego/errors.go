package stego

import "errors"

// StegoError kinds (§7).
var (
	ErrCarrierTooSmall = errors.New("stego: carrier too small for payload")
	ErrNoPayload       = errors.New("stego: no embedded payload found")
	ErrTruncated       = errors.New("stego: carrier exhausted before payload was fully read")
	ErrCorrupt         = errors.New("stego: payload checksum mismatch")
	ErrInvalidImage    = errors.New("stego: invalid or undecodable image")
)
