package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup [output_path]",
	Short: "Create a backup of the vault index",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUnlocked(); err != nil {
			return err
		}

		raw, _, err := store.ExportSealed()
		if err != nil {
			return fmt.Errorf("failed to export vault: %w", err)
		}

		outputPath := ""
		if len(args) > 0 {
			outputPath = args[0]
		} else {
			backupDir := filepath.Join(cfg.VaultDir, "backups")
			if err := os.MkdirAll(backupDir, 0700); err != nil {
				return fmt.Errorf("failed to create backup directory: %w", err)
			}
			timestamp := time.Now().UTC().Format("2006-01-02T15-04-05Z")
			outputPath = filepath.Join(backupDir, fmt.Sprintf("index-%s.bin", timestamp))
		}

		if err := os.WriteFile(outputPath, raw, 0600); err != nil {
			return fmt.Errorf("failed to write backup: %w", err)
		}
		color.New(color.FgGreen).Println("Backup created at", outputPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
}
