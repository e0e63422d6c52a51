// Package adminhttp implements the local HTTP admin surface named in §1
// as explicitly out of the security-critical core: a loopback-only
// daemon that lets the terminal UI (or a companion app on the same
// machine) drive lifecycle and CRUD operations over a session cookie
// instead of re-entering the passphrase per request.
package adminhttp

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the admin daemon's session cookie payload. It never
// carries the passphrase or any key material — only an opaque session id
// the daemon maps to a live vaultindex.Store in memory.
type SessionClaims struct {
	SessionID string `json:"sid"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// Signer issues and validates HMAC-signed session cookies for the admin
// daemon. A fresh random key is drawn per process start, so restarting
// the daemon invalidates every outstanding cookie.
type Signer struct {
	key []byte
	ttl time.Duration
}

// NewSigner creates a Signer with a freshly drawn HMAC key.
func NewSigner(ttl time.Duration) (*Signer, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("adminhttp: drawing signing key: %w", err)
	}
	return &Signer{key: key, ttl: ttl}, nil
}

// Issue mints a session cookie value bound to sessionID.
func (s *Signer) Issue(sessionID string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.ttl)
	claims := jwt.MapClaims{
		"sid": sessionID,
		"iat": now.Unix(),
		"exp": exp.Unix(),
		"jti": randomJTI(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.key)
	return signed, exp, err
}

// Validate parses and verifies a cookie value, returning its claims.
func (s *Signer) Validate(cookie string) (*SessionClaims, error) {
	tok, err := jwt.Parse(cookie, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("adminhttp: unexpected signing method")
		}
		return s.key, nil
	})
	if err != nil || !tok.Valid {
		return nil, errors.New("adminhttp: invalid session cookie")
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("adminhttp: malformed claims")
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return nil, errors.New("adminhttp: missing session id")
	}
	iat, _ := claims["iat"].(float64)
	exp, _ := claims["exp"].(float64)
	return &SessionClaims{SessionID: sid, IssuedAt: int64(iat), ExpiresAt: int64(exp)}, nil
}

func randomJTI() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
