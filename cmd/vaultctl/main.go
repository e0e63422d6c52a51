// Command vaultctl is the terminal client for the vault: init, unlock,
// add/get/list/search/update/delete entries, backup/restore, cloud sync,
// master key rotation, and second-factor and duress management.
package main

import (
	"fmt"
	"os"

	"github.com/slasshy/slasshy/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
