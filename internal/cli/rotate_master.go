package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rotateMasterCmd = &cobra.Command{
	Use:   "rotate-master",
	Short: "Change the master passphrase",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUnlocked(); err != nil {
			return err
		}

		newPassphrase, err := readAndConfirmPassphrase("Enter new master passphrase: ", "Confirm new master passphrase: ")
		if err != nil {
			return err
		}

		if err := store.RotateMaster(newPassphrase); err != nil {
			return fmt.Errorf("failed to rotate master passphrase: %w", err)
		}

		if cache := sessionCacheFor(); cache != nil {
			_ = cache.Clear()
		}

		color.New(color.FgGreen).Println("Master passphrase rotated successfully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rotateMasterCmd)
}
