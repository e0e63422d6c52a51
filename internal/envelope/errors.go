package envelope

import "errors"

// CryptoError kinds (§7). Tampered covers every AEAD authentication
// failure; callers never get to distinguish "wrong key" from "tampered
// ciphertext" from "tampered AAD" — that distinction is exactly what an
// attacker would want to probe.
var (
	ErrTampered = errors.New("envelope: ciphertext tampered or wrong key")
	ErrRngFail  = errors.New("envelope: csprng failure")
	ErrKdfFail  = errors.New("envelope: kdf failure")
)
