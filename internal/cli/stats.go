package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show vault statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUnlocked(); err != nil {
			return err
		}
		stats, err := store.Stats()
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}
		fmt.Printf("Entries: %d\n", stats.EntryCount)
		fmt.Printf("Created: %s\n", formatMillis(stats.Created))
		if stats.LastSync != nil {
			fmt.Printf("Last sync: %s\n", formatMillis(*stats.LastSync))
		} else {
			fmt.Println("Last sync: never")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
