package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/chainwatch-dev/chainwatch/burnchain"
	"github.com/chainwatch-dev/chainwatch/config"
	"github.com/chainwatch-dev/chainwatch/runtime"
	"github.com/chainwatch-dev/chainwatch/store"
	"github.com/chainwatch-dev/chainwatch/telemetry"
)

// run builds the ingestion core from cfg and blocks until SIGINT/SIGTERM,
// mirroring the teacher's cmd/rubin-node/main.go run() split: main.go owns
// flag/command parsing, this file owns everything that actually runs.
func run(ctx context.Context, cfg config.Config, stdout io.Writer) error {
	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return fmt.Errorf("datadir create failed: %w", err)
	}

	logger, closeLogger, err := telemetry.NewProductionLogger()
	if err != nil {
		return fmt.Errorf("logger init failed: %w", err)
	}
	defer closeLogger()
	metrics := telemetry.NewPrometheusMetrics(prometheus.DefaultRegisterer)
	tctx := telemetry.NewContext(logger, metrics)

	db, err := store.Open(filepath.Join(cfg.DataDir, "chainwatch.db"))
	if err != nil {
		return fmt.Errorf("store open failed: %w", err)
	}
	defer db.Close()

	node := runtime.NewNode(runtime.Options{
		ConfirmedDepth:      uint64(cfg.ConfirmationDepth),
		DispatchConcurrency: cfg.DispatchConcurrency,
		ParentParams:        burnchain.NetworkParams{},
		DB:                  db,
	})
	if err := node.RestorePredicates(cfg.Network); err != nil {
		return fmt.Errorf("predicate restore failed: %w", err)
	}

	if err := printConfig(stdout, cfg); err != nil {
		return fmt.Errorf("config encode failed: %w", err)
	}
	fmt.Fprintln(stdout, "chainwatch-node running; waiting for transport to push blocks")

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := node.Run(runCtx); err != nil {
		return err
	}

	fmt.Fprintln(stdout, "chainwatch-node stopped")
	return nil
}

func printConfig(w io.Writer, cfg config.Config) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}
