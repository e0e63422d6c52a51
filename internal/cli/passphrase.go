package cli

import (
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/slasshy/slasshy/internal/primitives"
)

func readPassphrase(prompt string) ([]byte, error) {
	fmt.Print(prompt)
	pass, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}
	return pass, nil
}

func readAndConfirmPassphrase(prompt, confirmPrompt string) ([]byte, error) {
	p1, err := readPassphrase(prompt)
	if err != nil {
		return nil, err
	}
	p2, err := readPassphrase(confirmPrompt)
	if err != nil {
		return nil, err
	}
	if !primitives.ConstantTimeEqual(p1, p2) {
		return nil, fmt.Errorf("passphrases do not match")
	}
	return p1, nil
}
