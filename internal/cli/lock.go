package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Lock the vault",
	Long:  `Lock the vault, zeroizing all key material and clearing any cached session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store.Lock()
		if cache := sessionCacheFor(); cache != nil {
			_ = cache.Clear()
		}
		fmt.Println("Vault locked")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lockCmd)
}
