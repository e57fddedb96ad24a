package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("INPUT_DIR", "")
	os.Unsetenv("INPUT_DIR")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.InputDir != "orders" {
		t.Fatalf("input=%q", cfg.InputDir)
	}
	if cfg.OutputPath != "pedidos_extraidos.xlsx" {
		t.Fatalf("output=%q", cfg.OutputPath)
	}
	if len(cfg.Columns) != 8 || cfg.Labels["weight"] != "Weight (kg)" {
		t.Fatalf("columns=%v labels=%v", cfg.Columns, cfg.Labels)
	}
}

func TestLoadYAMLOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pedidos.yaml")
	blob := []byte("input_dir: pedidos\ncolumns: [customer, weight]\nlabels:\n  weight: Peso (kg)\n")
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("WATCH_INTERVAL_SEC", "5")
	t.Setenv("DUMP_TEXT", "yes")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.InputDir != "pedidos" {
		t.Fatalf("input=%q", cfg.InputDir)
	}
	if len(cfg.Columns) != 2 || cfg.Columns[1] != "weight" {
		t.Fatalf("columns=%v", cfg.Columns)
	}
	if cfg.Labels["weight"] != "Peso (kg)" || cfg.Labels["customer"] != "Customer" {
		t.Fatalf("labels=%v", cfg.Labels)
	}
	if cfg.WatchIntervalSec != 5 || !cfg.DumpText {
		t.Fatalf("interval=%d dump=%v", cfg.WatchIntervalSec, cfg.DumpText)
	}
	if DefaultLabels["weight"] != "Weight (kg)" {
		t.Fatal("defaults mutated")
	}
}

func TestRequire(t *testing.T) {
	cfg := Config{}
	if err := cfg.Require("DB_PATH", "data/pedidos.db"); err != nil {
		t.Fatal(err)
	}
	for _, value := range []string{"", "   "} {
		if err := cfg.Require("DB_PATH", value); err == nil {
			t.Fatalf("value %q: expected error", value)
		}
	}
}
