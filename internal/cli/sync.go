package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/slasshy/slasshy/internal/cloud"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync the vault index with the cloud mirror",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUnlocked(); err != nil {
			return err
		}
		if cfg.CloudTableName == "" || cfg.CloudVaultID == "" {
			return fmt.Errorf("cloud sync not configured: set cloud_table_name and cloud_vault_id")
		}

		sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		sp.Suffix = " syncing with cloud mirror..."
		sp.Start()
		defer sp.Stop()

		ctx := context.Background()
		mirror, err := cloud.NewIndexMirror(ctx, cfg.CloudTableName, cfg.CloudVaultID)
		if err != nil {
			return fmt.Errorf("failed to connect to cloud mirror: %w", err)
		}

		localRaw, localVersion, err := store.ExportSealed()
		if err != nil {
			return fmt.Errorf("failed to export local index: %w", err)
		}

		remoteRaw, remoteVersion, err := mirror.Pull(ctx)
		if err != nil && !errors.Is(err, cloud.ErrNotFound) {
			return fmt.Errorf("failed to pull remote index: %w", err)
		}

		if errors.Is(err, cloud.ErrNotFound) || remoteVersion < localVersion {
			if pushErr := mirror.Push(ctx, localRaw, remoteVersion, localVersion, time.Now().UTC().Format(time.RFC3339)); pushErr != nil {
				return fmt.Errorf("failed to push local index: %w", pushErr)
			}
			sp.Stop()
			color.New(color.FgGreen).Println("Pushed local index to cloud mirror")
			return nil
		}

		if remoteVersion > localVersion {
			if err := store.ImportSealed(remoteRaw); err != nil {
				return fmt.Errorf("failed to import remote index: %w", err)
			}
			sp.Stop()
			color.New(color.FgGreen).Println("Pulled newer index from cloud mirror")
			return nil
		}

		sp.Stop()
		fmt.Println("Already in sync")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
