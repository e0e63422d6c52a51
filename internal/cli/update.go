package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/slasshy/slasshy/internal/vaultindex"
)

var (
	updateTitle    string
	updateUsername string
	updatePassword bool
	updateURL      string
	updateNotes    string
	updateContent  string
	updateCategory string
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update an existing entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUnlocked(); err != nil {
			return err
		}

		patch := vaultindex.UpdatePatch{}
		if cmd.Flags().Changed("title") {
			patch.Title = &updateTitle
		}
		if cmd.Flags().Changed("username") {
			patch.Username = &updateUsername
		}
		if cmd.Flags().Changed("url") {
			patch.URL = &updateURL
		}
		if cmd.Flags().Changed("notes") {
			patch.Notes = &updateNotes
		}
		if cmd.Flags().Changed("content") {
			patch.Content = &updateContent
		}
		if cmd.Flags().Changed("category") {
			patch.Category = &updateCategory
		}
		if updatePassword {
			newPassword, err := readPassphrase("Enter new password: ")
			if err != nil {
				return err
			}
			s := string(newPassword)
			patch.Password = &s
		}

		entry, err := store.Update(args[0], patch)
		if err != nil {
			return fmt.Errorf("failed to update entry: %w", err)
		}
		color.New(color.FgGreen).Printf("Entry %q updated\n", entry.Title)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUnlocked(); err != nil {
			return err
		}
		if err := store.Delete(args[0]); err != nil {
			return fmt.Errorf("failed to delete entry: %w", err)
		}
		color.New(color.FgGreen).Println("Entry deleted")
		return nil
	},
}

var favoriteCmd = &cobra.Command{
	Use:   "favorite <id>",
	Short: "Toggle an entry's favorite flag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUnlocked(); err != nil {
			return err
		}
		ie, err := store.ToggleFavorite(args[0])
		if err != nil {
			return fmt.Errorf("failed to toggle favorite: %w", err)
		}
		fmt.Printf("Favorite: %v\n", ie.Favorite)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(updateCmd, deleteCmd, favoriteCmd)

	updateCmd.Flags().StringVar(&updateTitle, "title", "", "New title")
	updateCmd.Flags().StringVar(&updateUsername, "username", "", "New username")
	updateCmd.Flags().BoolVar(&updatePassword, "password", false, "Prompt for a new password")
	updateCmd.Flags().StringVar(&updateURL, "url", "", "New URL")
	updateCmd.Flags().StringVar(&updateNotes, "notes", "", "New notes")
	updateCmd.Flags().StringVar(&updateContent, "content", "", "New note content")
	updateCmd.Flags().StringVar(&updateCategory, "category", "", "New category")
}
