package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var restoreCmd = &cobra.Command{
	Use:   "restore [backup_path]",
	Short: "Restore the vault index from a backup",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var backupPath string
		if len(args) > 0 {
			backupPath = args[0]
		} else {
			backupDir := filepath.Join(cfg.VaultDir, "backups")
			entries, err := os.ReadDir(backupDir)
			if err != nil {
				return fmt.Errorf("no backups found in %s: %w", backupDir, err)
			}
			var names []string
			for _, e := range entries {
				if !e.IsDir() {
					names = append(names, e.Name())
				}
			}
			if len(names) == 0 {
				return fmt.Errorf("no backup files found in %s", backupDir)
			}
			sort.Sort(sort.Reverse(sort.StringSlice(names)))

			prompt := promptui.Select{
				Label: "Select a backup to restore",
				Items: names,
			}
			_, chosen, err := prompt.Run()
			if err != nil {
				return fmt.Errorf("restore cancelled: %w", err)
			}
			backupPath = filepath.Join(backupDir, chosen)
		}

		raw, err := os.ReadFile(backupPath)
		if err != nil {
			return fmt.Errorf("failed to read backup file: %w", err)
		}

		if store.IsUnlocked() {
			if err := store.ImportSealed(raw); err != nil {
				return fmt.Errorf("failed to restore vault: %w", err)
			}
		} else {
			paths := store.GetPaths()
			if err := os.MkdirAll(paths.Dir, 0700); err != nil {
				return fmt.Errorf("failed to create vault directory: %w", err)
			}
			if err := os.WriteFile(filepath.Join(paths.Dir, "index.bin"), raw, 0600); err != nil {
				return fmt.Errorf("failed to write restored index: %w", err)
			}
		}

		color.New(color.FgGreen).Println("Vault restored from", backupPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)
}
