package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, "")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	got, ok, err := Find(nested)
	if err != nil || !ok {
		t.Fatalf("Find: %v, %v", ok, err)
	}
	want, _ := filepath.Abs(path)
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestDiscoverWithoutFile(t *testing.T) {
	cfg, err := Discover(t.TempDir())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if cfg.Path != "" || cfg.Scan.Grammar != "words" {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[scan]
grammar = "arith"
max_pending = 256
normalize = true
extensions = [".expr", ".calc"]

[output]
format = "json"

[trace]
level = "phase"
heartbeat = "250ms"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path != path || cfg.Scan.Grammar != "arith" || cfg.Output.Format != "json" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	// не указано в файле — значение по умолчанию
	if cfg.Output.Color != "auto" || cfg.Scan.Buffer != 64 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	opts, err := cfg.Scan.ScannerOptions()
	if err != nil || opts.MaxPending != 256 || opts.Buffer != 64 {
		t.Fatalf("ScannerOptions = %+v, %v", opts, err)
	}
	if !cfg.Scan.ReaderOptions().Normalize {
		t.Fatalf("normalize not propagated")
	}
	hb, err := cfg.Trace.HeartbeatInterval()
	if err != nil || hb != 250*time.Millisecond {
		t.Fatalf("HeartbeatInterval = %v, %v", hb, err)
	}
	if len(cfg.Scan.Extensions) != 2 {
		t.Fatalf("unexpected extensions %v", cfg.Scan.Extensions)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"grammar":   "[scan]\ngrammar = \"cobol\"\n",
		"unknown":   "[scan]\ngramar = \"words\"\n",
		"format":    "[output]\nformat = \"xml\"\n",
		"color":     "[output]\ncolor = \"maybe\"\n",
		"level":     "[trace]\nlevel = \"loud\"\n",
		"heartbeat": "[trace]\nheartbeat = \"soon\"\n",
		"pending":   "[scan]\nmax_pending = -1\n",
		"syntax":    "[scan\n",
		"empty ext": "[scan]\nextensions = []\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), content)
			_, err := Load(path)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), path) {
				t.Fatalf("error should name the file: %v", err)
			}
		})
	}
}
