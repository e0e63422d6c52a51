package cli

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/slasshy/slasshy/internal/logging"
	"github.com/slasshy/slasshy/internal/sessioncache"
)

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Unlock the vault",
	Long:  `Unlock the vault by providing the master passphrase, or a duress passphrase to enter decoy mode.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if store.IsUnlocked() {
			fmt.Println("Vault is already unlocked")
			return nil
		}
		if !store.Exists() {
			return fmt.Errorf("vault not found; run 'vaultctl init' first")
		}

		cache := sessionCacheFor()
		if cache != nil {
			if master, err := cache.Get(); err == nil {
				if uErr := store.UnlockWithCachedMaster(master); uErr == nil {
					color.New(color.FgGreen).Println("Vault unlocked from cached session")
					return nil
				}
				_ = cache.Clear()
			}
		}

		passphrase, err := readPassphrase("Enter master passphrase: ")
		if err != nil {
			return err
		}

		if err := store.Unlock(passphrase); err != nil {
			logging.Internal(log, logging.KindAuth, "unlock", err)
			return fmt.Errorf("failed to unlock vault")
		}

		if cache != nil && !store.IsDuress() {
			if master, mErr := store.CachedMasterKey(); mErr == nil {
				_ = cache.Put(master)
			}
		}

		color.New(color.FgGreen).Println("Vault unlocked")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(unlockCmd)
}

func sessionCacheFor() *sessioncache.Cache {
	if cfg == nil {
		return nil
	}
	return sessioncache.New(filepath.Join(cfg.VaultDir, "session.cache"), sessioncache.DefaultTimeout)
}
