package keyring

import "errors"

// AuthError kinds. Never surface which kind to an untrusted remote peer;
// the CLI/HTTP boundary maps all of these to a generic message.
var (
	ErrBadPassphrase       = errors.New("keyring: bad passphrase")
	ErrLocked              = errors.New("keyring: locked")
	ErrSecondFactorRequired = errors.New("keyring: second factor required")
	ErrSecondFactorBad     = errors.New("keyring: second factor rejected")
)
