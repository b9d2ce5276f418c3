// Command chainwatch-ctl registers, lists, and removes predicates against
// a running node's persistent store, without needing the node itself
// running (it operates on the same bbolt file directly, the same way the
// teacher's rubin-consensus-cli operates on fixtures independent of
// rubin-node).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chainwatch-dev/chainwatch/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dbPath string

	root := &cobra.Command{
		Use:   "chainwatch-ctl",
		Short: "register and inspect chainwatch predicates",
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "", "path to the node's chainwatch.db (defaults to <datadir>/chainwatch.db)")

	resolveDBPath := func() string {
		if dbPath != "" {
			return dbPath
		}
		return config.DefaultDataDir() + "/chainwatch.db"
	}

	root.AddCommand(newRegisterCmd(resolveDBPath))
	root.AddCommand(newListCmd(resolveDBPath))
	root.AddCommand(newRemoveCmd(resolveDBPath))
	return root
}
