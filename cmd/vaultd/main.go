// Command vaultd is the loopback-only admin daemon: it holds an unlocked
// vault session in memory and exposes unlock/lock/list/search/stats over
// a local HTTP API for the UI/automation collaborators named in §6.
package main

import (
	"fmt"
	"os"

	"github.com/slasshy/slasshy/internal/adminhttp"
	"github.com/slasshy/slasshy/internal/config"
	"github.com/slasshy/slasshy/internal/logging"
	"github.com/slasshy/slasshy/internal/vaultindex"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log := logging.New(cfg.LogLevel, os.Stderr)

	store := vaultindex.NewStore(cfg.VaultDir, cfg.AutoLockDuration(), cfg.KDFParams())

	srv, err := adminhttp.New(store, log)
	if err != nil {
		return fmt.Errorf("building admin daemon: %w", err)
	}

	log.WithField("addr", cfg.AdminAddr).Info("vaultd listening")
	return adminhttp.ListenAndServe(cfg.AdminAddr, srv.Handler())
}
