package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizePeers(t *testing.T) {
	got := NormalizePeers("127.0.0.1:20445, 127.0.0.1:20446", "127.0.0.1:20445", " ", "10.0.0.1:20445")
	want := []string{"127.0.0.1:20445", "127.0.0.1:20446", "10.0.0.1:20445"}
	if len(got) != len(want) {
		t.Fatalf("len=%d want=%d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("at %d got=%q want=%q", i, got[i], want[i])
		}
	}
}

func TestValidateOK(t *testing.T) {
	cfg := Default()
	cfg.Peers = []string{"127.0.0.1:20445"}
	if errs := Validate(cfg); len(errs) != 0 {
		t.Fatalf("expected valid config, got %v", errs)
	}
}

func TestValidateCollectsEveryViolation(t *testing.T) {
	cfg := Default()
	cfg.BindAddr = "not-an-addr"
	cfg.ParentRPCAddr = "also-not-an-addr"
	cfg.LogLevel = "verbose"
	cfg.MaxPeers = 0

	errs := Validate(cfg)
	if len(errs) != 4 {
		t.Fatalf("expected 4 collected violations, got %d: %v", len(errs), errs)
	}
}

func TestValidateRejectsBadPeer(t *testing.T) {
	cfg := Default()
	cfg.Peers = []string{"bad-peer"}
	if errs := Validate(cfg); len(errs) == 0 {
		t.Fatalf("expected error")
	}
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("load missing file: %v", err)
	}
	if cfg.Network != Default().Network || cfg.BindAddr != Default().BindAddr || cfg.MaxPeers != Default().MaxPeers {
		t.Fatalf("expected default config for missing file, got %+v", cfg)
	}
}

func TestLoadOverridesOnlyPresentKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chainwatch.toml")
	contents := "network = \"testnet\"\nmax_peers = 10\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Network != "testnet" || cfg.MaxPeers != 10 {
		t.Fatalf("expected overridden fields, got %+v", cfg)
	}
	if cfg.BindAddr != Default().BindAddr {
		t.Fatalf("expected untouched field to keep its default, got %q", cfg.BindAddr)
	}
}
