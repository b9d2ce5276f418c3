// Package config loads and validates chainwatch-node's runtime
// configuration: a TOML file layered under CLI flag overrides (spec
// §1 AMBIENT STACK).
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the full set of knobs a running node needs. Field names match
// the TOML keys one-to-one via the `toml` tag, mirroring the teacher's
// json-tagged node.Config.
type Config struct {
	Network       string   `toml:"network"`
	DataDir       string   `toml:"data_dir"`
	BindAddr      string   `toml:"bind_addr"`
	LogLevel      string   `toml:"log_level"`
	ParentRPCAddr string   `toml:"parent_rpc_addr"`
	Peers         []string `toml:"peers"`
	MaxPeers      int      `toml:"max_peers"`

	DispatchConcurrency int `toml:"dispatch_concurrency"`
	ConfirmationDepth   int `toml:"confirmation_depth"`

	MetricsAddr string `toml:"metrics_addr"`
}

var allowedLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// DefaultDataDir mirrors the teacher's home-directory fallback, renamed to
// this project's data directory name.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".chainwatch"
	}
	return filepath.Join(home, ".chainwatch")
}

// Default returns the config a freshly installed node starts from before
// any TOML file or flag override is applied.
func Default() Config {
	return Config{
		Network:             "mainnet",
		DataDir:             DefaultDataDir(),
		BindAddr:            "0.0.0.0:20445",
		LogLevel:            "info",
		ParentRPCAddr:       "127.0.0.1:8332",
		MaxPeers:            64,
		DispatchConcurrency: 8,
		ConfirmationDepth:   7,
		MetricsAddr:         "127.0.0.1:9102",
	}
}

// Load reads a TOML file into a copy of Default(), so any key the file
// omits keeps its default value. A missing path is not an error: the
// caller gets Default() back, since every field is independently
// overridable from the command line.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}

// NormalizePeers dedupes and flattens comma-separated peer tokens, the
// same accumulation shape the teacher's node.NormalizePeers uses for
// `-peer` plus `-peers` flags.
func NormalizePeers(raw ...string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, token := range raw {
		for _, p := range strings.Split(token, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

// Validate collects every violation instead of failing on the first, so a
// misconfigured node reports all of its problems in one pass — the same
// full-validation discipline predicate.Validate applies to a predicate
// document (spec's property P5), generalized here from the teacher's
// fail-fast node.ValidateConfig.
func Validate(cfg Config) []string {
	var errs []string

	if strings.TrimSpace(cfg.Network) == "" {
		errs = append(errs, "network is required")
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		errs = append(errs, "data_dir is required")
	}
	if err := validateAddr(cfg.BindAddr); err != nil {
		errs = append(errs, fmt.Sprintf("invalid bind_addr: %v", err))
	}
	if err := validateAddr(cfg.ParentRPCAddr); err != nil {
		errs = append(errs, fmt.Sprintf("invalid parent_rpc_addr: %v", err))
	}
	if cfg.MetricsAddr != "" {
		if err := validateAddr(cfg.MetricsAddr); err != nil {
			errs = append(errs, fmt.Sprintf("invalid metrics_addr: %v", err))
		}
	}
	for _, peer := range cfg.Peers {
		if err := validateAddr(peer); err != nil {
			errs = append(errs, fmt.Sprintf("invalid peer %q: %v", peer, err))
		}
	}
	logLevel := strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if _, ok := allowedLogLevels[logLevel]; !ok {
		errs = append(errs, fmt.Sprintf("invalid log_level %q", cfg.LogLevel))
	}
	if cfg.MaxPeers <= 0 {
		errs = append(errs, "max_peers must be > 0")
	}
	if cfg.MaxPeers > 4096 {
		errs = append(errs, "max_peers must be <= 4096")
	}
	if cfg.DispatchConcurrency <= 0 {
		errs = append(errs, "dispatch_concurrency must be > 0")
	}
	if cfg.ConfirmationDepth <= 0 {
		errs = append(errs, "confirmation_depth must be > 0")
	}

	return errs
}

func validateAddr(addr string) error {
	if strings.TrimSpace(addr) == "" {
		return fmt.Errorf("empty address")
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	if strings.TrimSpace(port) == "" {
		return fmt.Errorf("missing port")
	}
	if strings.Contains(host, " ") {
		return fmt.Errorf("invalid host")
	}
	return nil
}
