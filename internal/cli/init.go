package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new vault",
	Long:  `Initialize a new zero-knowledge vault under a master passphrase.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if store.Exists() {
			return fmt.Errorf("vault already exists at %s; use 'vaultctl unlock'", cfg.VaultDir)
		}

		printBanner()

		passphrase, err := readAndConfirmPassphrase("Enter master passphrase: ", "Confirm master passphrase: ")
		if err != nil {
			return err
		}

		if err := store.Init(passphrase); err != nil {
			return fmt.Errorf("failed to initialize vault: %w", err)
		}

		color.New(color.FgGreen).Println("Vault initialized at", cfg.VaultDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
