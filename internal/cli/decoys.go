package cli

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/slasshy/slasshy/internal/stego"
)

var (
	decoyTitlesFlag string
	decoyOutputFlag string
	decoyWidthFlag  int
	decoyHeightFlag int
)

var decoysCmd = &cobra.Command{
	Use:   "decoys",
	Short: "Manage duress mode and standalone decoy carriers",
}

var decoysGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Configure a duress passphrase that unlocks a plausible decoy vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUnlocked(); err != nil {
			return err
		}

		duressPassphrase, err := readAndConfirmPassphrase("Duress passphrase: ", "Confirm duress passphrase: ")
		if err != nil {
			return err
		}

		titles := defaultDecoyTitles
		if decoyTitlesFlag != "" {
			titles = splitAndTrim(decoyTitlesFlag)
		}

		if err := store.ConfigureDuress(duressPassphrase, titles); err != nil {
			return fmt.Errorf("failed to configure duress vault: %w", err)
		}
		color.New(color.FgGreen).Println("Duress vault configured with", len(titles), "decoy entries")
		return nil
	},
}

var decoysCarrierCmd = &cobra.Command{
	Use:   "carrier",
	Short: "Write a standalone innocuous PNG carrier with no embedded payload",
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := stego.GenerateDecoyCarrier(decoyWidthFlag, decoyHeightFlag)
		if err != nil {
			return fmt.Errorf("failed to generate decoy carrier: %w", err)
		}
		out := decoyOutputFlag
		if out == "" {
			out = "decoy.png"
		}
		var buf bytes.Buffer
		if err := stego.Encode(&buf, img); err != nil {
			return fmt.Errorf("failed to encode decoy carrier: %w", err)
		}
		if err := os.WriteFile(out, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("failed to write decoy carrier: %w", err)
		}
		color.New(color.FgGreen).Println("Decoy carrier written to", out)
		return nil
	},
}

var defaultDecoyTitles = []string{
	"Grocery list",
	"Wifi password for guests",
	"Book recommendations",
	"Car service reminder",
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func init() {
	rootCmd.AddCommand(decoysCmd)
	decoysCmd.AddCommand(decoysGenerateCmd, decoysCarrierCmd)

	decoysGenerateCmd.Flags().StringVar(&decoyTitlesFlag, "titles", "", "Comma-separated decoy entry titles (defaults to a plausible preset)")

	decoysCarrierCmd.Flags().StringVar(&decoyOutputFlag, "output", "", "Output path for the carrier PNG (default decoy.png)")
	decoysCarrierCmd.Flags().IntVar(&decoyWidthFlag, "width", 512, "Carrier width in pixels")
	decoysCarrierCmd.Flags().IntVar(&decoyHeightFlag, "height", 512, "Carrier height in pixels")
}
