// Package clipboard implements the "reveal" sink boundary named in §6:
// the core exposes plaintext only in memory and only transiently; copying
// it to the OS clipboard and scrubbing it afterward is the caller's
// responsibility, and this package is that caller-facing helper.
package clipboard

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
)

// DefaultScrubAfter is how long a revealed secret is allowed to sit on
// the clipboard before this package overwrites it.
const DefaultScrubAfter = 20 * time.Second

// CopyWithScrub writes secret to the OS clipboard and schedules an
// overwrite after scrubAfter elapses, provided the clipboard still holds
// exactly what we wrote (so we never clobber something the user copied
// in the meantime). scrubAfter of 0 uses DefaultScrubAfter.
func CopyWithScrub(secret string, scrubAfter time.Duration) error {
	if scrubAfter <= 0 {
		scrubAfter = DefaultScrubAfter
	}
	if err := clipboard.WriteAll(secret); err != nil {
		return fmt.Errorf("clipboard: writing secret: %w", err)
	}

	go func() {
		time.Sleep(scrubAfter)
		current, err := clipboard.ReadAll()
		if err != nil {
			return
		}
		if current == secret {
			_ = clipboard.WriteAll("")
		}
	}()
	return nil
}

// Scrub immediately clears the clipboard if it currently holds secret.
func Scrub(secret string) error {
	current, err := clipboard.ReadAll()
	if err != nil {
		return fmt.Errorf("clipboard: reading clipboard: %w", err)
	}
	if current != secret {
		return nil
	}
	if err := clipboard.WriteAll(""); err != nil {
		return fmt.Errorf("clipboard: clearing clipboard: %w", err)
	}
	return nil
}
