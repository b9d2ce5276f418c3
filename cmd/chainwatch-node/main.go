// Command chainwatch-node runs the long-running ingestion daemon: it
// wires chainindex/blockpool/predicate/dispatch/store/telemetry together
// and blocks until told to shut down. Parent/child block and transaction
// data must be pushed in by an external transport (spec §1) — this
// binary has no built-in fetcher.
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
	var cfgPath string
	var flagOverrides config.Config
	var peerCSV string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "chainwatch-node",
		Short: "fork-aware block ingestion daemon for a Stacks-style sidechain",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			applyOverrides(&cfg, cmd, flagOverrides, peerCSV)

			if errs := config.Validate(cfg); len(errs) > 0 {
				for _, e := range errs {
					fmt.Fprintf(cmd.ErrOrStderr(), "invalid config: %s\n", e)
				}
				return fmt.Errorf("%d configuration error(s)", len(errs))
			}
			if dryRun {
				return printConfig(cmd.OutOrStdout(), cfg)
			}
			return run(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	defaults := config.Default()
	flags := cmd.Flags()
	flags.StringVar(&cfgPath, "config", "", "path to a chainwatch.toml config file")
	flags.StringVar(&flagOverrides.Network, "network", defaults.Network, "network name (mainnet/testnet/devnet)")
	flags.StringVar(&flagOverrides.DataDir, "datadir", defaults.DataDir, "node data directory")
	flags.StringVar(&flagOverrides.BindAddr, "bind", defaults.BindAddr, "bind address host:port")
	flags.StringVar(&flagOverrides.ParentRPCAddr, "parent-rpc", defaults.ParentRPCAddr, "parent-chain node RPC address")
	flags.StringVar(&flagOverrides.LogLevel, "log-level", defaults.LogLevel, "log level: debug|info|warn|error")
	flags.StringVar(&peerCSV, "peers", "", "bootstrap peers, comma-separated host:port")
	flags.IntVar(&flagOverrides.MaxPeers, "max-peers", defaults.MaxPeers, "max connected peers")
	flags.IntVar(&flagOverrides.DispatchConcurrency, "dispatch-concurrency", defaults.DispatchConcurrency, "predicate-evaluation fan-out width")
	flags.IntVar(&flagOverrides.ConfirmationDepth, "confirmation-depth", defaults.ConfirmationDepth, "blocks behind tip before a header is considered confirmed")
	flags.StringVar(&flagOverrides.MetricsAddr, "metrics-addr", defaults.MetricsAddr, "prometheus /metrics bind address")
	flags.BoolVar(&dryRun, "dry-run", false, "print effective config and exit")

	return cmd
}

// applyOverrides copies every flag the caller explicitly set from
// flagOverrides onto cfg, leaving file-sourced values alone otherwise —
// the same "file config layered under flags" precedence the teacher's
// flag-based cmd/rubin-node/main.go applies, adapted to cobra's
// Changed() tracking instead of manual flag.Visit.
func applyOverrides(cfg *config.Config, cmd *cobra.Command, overrides config.Config, peerCSV string) {
	flags := cmd.Flags()
	if flags.Changed("network") {
		cfg.Network = overrides.Network
	}
	if flags.Changed("datadir") {
		cfg.DataDir = overrides.DataDir
	}
	if flags.Changed("bind") {
		cfg.BindAddr = overrides.BindAddr
	}
	if flags.Changed("parent-rpc") {
		cfg.ParentRPCAddr = overrides.ParentRPCAddr
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = overrides.LogLevel
	}
	if flags.Changed("max-peers") {
		cfg.MaxPeers = overrides.MaxPeers
	}
	if flags.Changed("dispatch-concurrency") {
		cfg.DispatchConcurrency = overrides.DispatchConcurrency
	}
	if flags.Changed("confirmation-depth") {
		cfg.ConfirmationDepth = overrides.ConfirmationDepth
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = overrides.MetricsAddr
	}
	if peerCSV != "" {
		cfg.Peers = config.NormalizePeers(append([]string{peerCSV}, cfg.Peers...)...)
	}
}
