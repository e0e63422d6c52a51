// Package cli implements the vaultctl command tree: the terminal-facing
// collaborator spec.md places outside the core, driving the Vault Index
// through its public operations and nothing else.
package cli

import (
	"fmt"

	figure "github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/slasshy/slasshy/internal/config"
	"github.com/slasshy/slasshy/internal/logging"
	"github.com/slasshy/slasshy/internal/vaultindex"
)

var (
	cfg   *config.Config
	log   = logging.New("info", nil)
	store *vaultindex.Store
)

var rootCmd = &cobra.Command{
	Use:   "vaultctl",
	Short: "A zero-knowledge personal vault hidden inside PNG carriers",
	Long: `vaultctl manages a zero-knowledge vault whose encrypted records are
fragmented and hidden inside ordinary-looking PNG images. Nothing but
ciphertext ever leaves this process unencrypted.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfg != nil {
			return nil
		}
		var err error
		cfg, err = config.Load("")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		store = vaultindex.NewStore(cfg.VaultDir, cfg.AutoLockDuration(), cfg.KDFParams())
		return nil
	},
}

// Execute runs the vaultctl command tree.
func Execute() error {
	return rootCmd.Execute()
}

func printBanner() {
	banner := figure.NewFigure("slasshy", "slant", true)
	color.New(color.FgHiMagenta).Println(banner.String())
}

func init() {
	cobra.OnInitialize(func() {})
}
