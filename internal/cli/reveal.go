package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/slasshy/slasshy/internal/clipboard"
	"github.com/slasshy/slasshy/internal/vaultindex"
)

var revealOutput string

var revealCmd = &cobra.Command{
	Use:   "reveal <id>",
	Short: "Reveal an entry's secret to the clipboard, or a file to disk",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUnlocked(); err != nil {
			return err
		}

		if meta, err := store.GetFileMeta(args[0]); err == nil {
			data, err := store.GetFileBytes(args[0])
			if err != nil {
				return fmt.Errorf("failed to decrypt file: %w", err)
			}
			out := revealOutput
			if out == "" {
				out = meta.OriginalName
			}
			if err := os.WriteFile(out, data, 0600); err != nil {
				return fmt.Errorf("failed to write revealed file: %w", err)
			}
			color.New(color.FgGreen).Println("File revealed to", out)
			return nil
		}

		entry, err := store.Get(args[0])
		if err != nil {
			return fmt.Errorf("failed to get entry: %w", err)
		}

		var secret string
		switch entry.Kind {
		case vaultindex.KindCredential:
			secret = entry.Password
		case vaultindex.KindNote:
			secret = entry.Content
		}
		if secret == "" {
			return fmt.Errorf("nothing to reveal for entry %q", args[0])
		}

		if err := clipboard.CopyWithScrub(secret, clipboard.DefaultScrubAfter); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		color.New(color.FgGreen).Printf("Copied to clipboard, clearing in %s\n", clipboard.DefaultScrubAfter)
		time.Sleep(clipboard.DefaultScrubAfter)
		_ = clipboard.Scrub(secret)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(revealCmd)
	revealCmd.Flags().StringVar(&revealOutput, "output", "", "Output path for a file entry (defaults to its original name)")
}
