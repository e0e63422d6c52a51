package keyring

import (
	"crypto/rand"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// DefaultExpiry is the default key-holder inactivity timeout (§4.2, §5).
const DefaultExpiry = 5 * time.Minute

// Holder is the in-memory key store for the three labeled subkeys plus the
// master key. It starts an inactivity timer on every access and zeroizes
// all held key material on expiry, on an explicit Lock or Close, and on
// SIGINT/SIGTERM (after which it exits the process with status 1). A
// process exit by any other route does not zeroize the keys. After
// zeroization, Get returns ErrLocked.
type Holder struct {
	mu      sync.Mutex
	keys    map[string][]byte
	expiry  time.Duration
	timer   *time.Timer
	sigCh   chan os.Signal
	stopped bool
}

// NewHolder creates a key holder with the given inactivity expiry. expiry
// of 0 disables auto-lock.
func NewHolder(expiry time.Duration) *Holder {
	h := &Holder{
		keys:   make(map[string][]byte),
		expiry: expiry,
	}
	h.sigCh = make(chan os.Signal, 1)
	signal.Notify(h.sigCh, syscall.SIGINT, syscall.SIGTERM)
	go h.watchSignals()
	return h
}

func (h *Holder) watchSignals() {
	if _, ok := <-h.sigCh; ok {
		h.Lock()
		os.Exit(1)
	}
}

// Put stores key bytes under label, locking the page (best effort) and
// arming the inactivity timer.
func (h *Holder) Put(label string, key []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		zero(key)
		return
	}
	if old, ok := h.keys[label]; ok {
		zero(old)
	}
	buf := make([]byte, len(key))
	copy(buf, key)
	_ = lockMemory(buf)
	h.keys[label] = buf
	h.armTimer()
}

// Get returns a borrowed reference to the key stored under label and
// resets the inactivity timer. The caller must not retain the slice past
// the current operation. Returns ErrLocked if the holder has expired,
// been explicitly locked, or never had the label set.
func (h *Holder) Get(label string) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return nil, ErrLocked
	}
	key, ok := h.keys[label]
	if !ok {
		return nil, ErrLocked
	}
	h.armTimer()
	return key, nil
}

// armTimer must be called with h.mu held.
func (h *Holder) armTimer() {
	if h.expiry <= 0 {
		return
	}
	if h.timer != nil {
		h.timer.Stop()
	}
	h.timer = time.AfterFunc(h.expiry, h.Lock)
}

// Lock zeroizes every held key and marks the holder locked. Safe to call
// multiple times.
func (h *Holder) Lock() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lockLocked()
}

func (h *Holder) lockLocked() {
	for label, key := range h.keys {
		_ = unlockMemory(key)
		zero(key)
		delete(h.keys, label)
	}
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	h.stopped = true
}

// Close stops the signal watcher and zeroizes all key material. Call once
// the holder is no longer needed (e.g. process shutdown) to release the
// signal registration.
func (h *Holder) Close() {
	h.Lock()
	signal.Stop(h.sigCh)
	close(h.sigCh)
}

// IsLocked reports whether the holder has been zeroized.
func (h *Holder) IsLocked() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopped
}

// Reopen clears the locked flag so a fresh unlock can repopulate the
// holder. Callers must Put fresh keys immediately after.
func (h *Holder) Reopen() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopped = false
}

// zero overwrites b with fresh random bytes, then zeros (§5 shutdown
// discipline), so a stale copy left behind by a prior pass can't be
// recovered by scanning for an all-zero run.
func zero(b []byte) {
	_, _ = rand.Read(b)
	for i := range b {
		b[i] = 0
	}
}
