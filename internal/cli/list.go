package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/slasshy/slasshy/internal/vaultindex"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUnlocked(); err != nil {
			return err
		}
		summaries, err := store.List()
		if err != nil {
			return fmt.Errorf("failed to list entries: %w", err)
		}
		printSummaries(summaries)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search entries by title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUnlocked(); err != nil {
			return err
		}
		summaries, err := store.Search(args[0])
		if err != nil {
			return fmt.Errorf("failed to search entries: %w", err)
		}
		printSummaries(summaries)
		return nil
	},
}

func printSummaries(summaries []vaultindex.IndexSummary) {
	if len(summaries) == 0 {
		fmt.Println("No entries found")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tTITLE\tCATEGORY\tFAVORITE\tMODIFIED")
	for _, s := range summaries {
		fav := ""
		if s.Favorite {
			fav = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.Kind, s.Title, s.Category, fav, formatMillis(s.Modified))
	}
	w.Flush()
}

func init() {
	rootCmd.AddCommand(listCmd, searchCmd)
}
