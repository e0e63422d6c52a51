//go:build linux || darwin

package vaultindex

import "golang.org/x/sys/unix"

func flockExclusive(fd int) error {
	return unix.Flock(fd, unix.LOCK_EX)
}

func flockUnlock(fd int) error {
	return unix.Flock(fd, unix.LOCK_UN)
}
