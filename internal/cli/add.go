package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/slasshy/slasshy/internal/vaultindex"
)

var (
	addCredUsername string
	addCredURL      string
	addCredNotes    string
	addCredCategory string

	addNoteContent string

	addFileSource string
	addFileNotes  string
)

var addCredentialCmd = &cobra.Command{
	Use:   "add-credential <title>",
	Short: "Add a new credential entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUnlocked(); err != nil {
			return err
		}
		password, err := readPassphrase("Enter password to store: ")
		if err != nil {
			return err
		}
		entry, err := store.AddCredential(args[0], vaultindex.CredentialFields{
			Username: addCredUsername,
			Password: string(password),
			URL:      addCredURL,
			Notes:    addCredNotes,
			Category: addCredCategory,
		})
		if err != nil {
			return fmt.Errorf("failed to add credential: %w", err)
		}
		color.New(color.FgGreen).Printf("Credential %q added (id %s)\n", entry.Title, entry.ID)
		return nil
	},
}

var addNoteCmd = &cobra.Command{
	Use:   "add-note <title>",
	Short: "Add a new note entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUnlocked(); err != nil {
			return err
		}
		entry, err := store.AddNote(args[0], addNoteContent)
		if err != nil {
			return fmt.Errorf("failed to add note: %w", err)
		}
		color.New(color.FgGreen).Printf("Note %q added (id %s)\n", entry.Title, entry.ID)
		return nil
	},
}

var addFileCmd = &cobra.Command{
	Use:   "add-file <title>",
	Short: "Add a new file entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUnlocked(); err != nil {
			return err
		}
		if addFileSource == "" {
			return fmt.Errorf("--source is required")
		}
		entry, err := store.AddFile(args[0], addFileSource, addFileNotes)
		if err != nil {
			return fmt.Errorf("failed to add file: %w", err)
		}
		color.New(color.FgGreen).Printf("File %q added (id %s, %d bytes)\n", entry.Title, entry.ID, entry.Size)
		return nil
	},
}

func requireUnlocked() error {
	if store.IsUnlocked() {
		return nil
	}
	if cache := sessionCacheFor(); cache != nil {
		if master, err := cache.Get(); err == nil && store.UnlockWithCachedMaster(master) == nil {
			return nil
		}
	}
	return fmt.Errorf("vault is locked; run 'vaultctl unlock' first")
}

func init() {
	rootCmd.AddCommand(addCredentialCmd, addNoteCmd, addFileCmd)

	addCredentialCmd.Flags().StringVar(&addCredUsername, "username", "", "Username")
	addCredentialCmd.Flags().StringVar(&addCredURL, "url", "", "URL")
	addCredentialCmd.Flags().StringVar(&addCredNotes, "notes", "", "Notes")
	addCredentialCmd.Flags().StringVar(&addCredCategory, "category", "", "Category")

	addNoteCmd.Flags().StringVar(&addNoteContent, "content", "", "Note content")

	addFileCmd.Flags().StringVar(&addFileSource, "source", "", "Path of the file to add (required)")
	addFileCmd.Flags().StringVar(&addFileNotes, "notes", "", "Caption/notes for the file")
}
