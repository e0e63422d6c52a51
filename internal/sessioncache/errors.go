package sessioncache

import "errors"

var (
	ErrNoSession = errors.New("sessioncache: no cached session")
	ErrExpired   = errors.New("sessioncache: cached session expired")
	ErrCorrupt   = errors.New("sessioncache: cached session corrupt")
)
