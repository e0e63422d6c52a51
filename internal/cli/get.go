package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/slasshy/slasshy/internal/vaultindex"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUnlocked(); err != nil {
			return err
		}

		meta, mErr := store.GetFileMeta(args[0])
		if mErr == nil {
			printFileMeta(meta)
			return nil
		}

		entry, err := store.Get(args[0])
		if err != nil {
			return fmt.Errorf("failed to get entry: %w", err)
		}
		printEntry(entry)
		return nil
	},
}

func printEntry(entry *vaultindex.Entry) {
	fmt.Printf("ID: %s\n", entry.ID)
	fmt.Printf("Kind: %s\n", entry.Kind)
	fmt.Printf("Title: %s\n", entry.Title)
	switch entry.Kind {
	case vaultindex.KindCredential:
		fmt.Printf("Username: %s\n", entry.Username)
		fmt.Printf("Password: %s\n", entry.Password)
		if entry.URL != "" {
			fmt.Printf("URL: %s\n", entry.URL)
		}
	case vaultindex.KindNote:
		fmt.Printf("Content: %s\n", entry.Content)
	}
	if entry.Notes != "" {
		fmt.Printf("Notes: %s\n", entry.Notes)
	}
	if entry.Category != "" {
		fmt.Printf("Category: %s\n", entry.Category)
	}
	fmt.Printf("Created: %s\n", formatMillis(entry.Created))
	fmt.Printf("Modified: %s\n", formatMillis(entry.Modified))
}

func printFileMeta(ie *vaultindex.IndexEntry) {
	fmt.Printf("ID: %s\n", ie.ID)
	fmt.Printf("Kind: file\n")
	fmt.Printf("Original name: %s\n", ie.OriginalName)
	fmt.Printf("MIME type: %s\n", ie.MimeType)
	fmt.Printf("Size: %d bytes\n", ie.Size)
	fmt.Printf("SHA256: %s\n", ie.SHA256)
	fmt.Printf("Created: %s\n", formatMillis(ie.Created))
	fmt.Println("(use 'vaultctl reveal' to write the decrypted bytes to disk)")
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).Format("2006-01-02 15:04:05")
}

func init() {
	rootCmd.AddCommand(getCmd)
}
