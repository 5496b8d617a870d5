// Package config loads statescan.toml, the optional per-project defaults
// for the CLI. Command-line flags override every value found here.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"

	"statescan/internal/grammar"
	"statescan/internal/scanner"
	"statescan/internal/source"
	"statescan/internal/tokfmt"
	"statescan/internal/trace"
)

// FileName is the name looked up by Find.
const FileName = "statescan.toml"

// Config mirrors the sections of statescan.toml.
type Config struct {
	Path   string       `toml:"-"` // откуда загружен; пусто для Default
	Scan   ScanConfig   `toml:"scan"`
	Output OutputConfig `toml:"output"`
	Trace  TraceConfig  `toml:"trace"`
}

// ScanConfig is the [scan] section.
type ScanConfig struct {
	Grammar    string   `toml:"grammar"`
	Buffer     int64    `toml:"buffer"`
	MaxPending int64    `toml:"max_pending"`
	Normalize  bool     `toml:"normalize"`
	StripBOM   bool     `toml:"strip_bom"`
	Extensions []string `toml:"extensions"`
	Jobs       int64    `toml:"jobs"`
	Cache      bool     `toml:"cache"`
}

// OutputConfig is the [output] section.
type OutputConfig struct {
	Format  string `toml:"format"`
	Color   string `toml:"color"` // auto|on|off
	Context bool   `toml:"context"`
}

// TraceConfig is the [trace] section.
type TraceConfig struct {
	Level     string `toml:"level"`
	Mode      string `toml:"mode"`
	Output    string `toml:"output"`
	RingSize  int64  `toml:"ring_size"`
	Heartbeat string `toml:"heartbeat"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Scan: ScanConfig{
			Grammar:    "words",
			Buffer:     scanner.DefaultBuffer,
			Extensions: []string{".txt"},
		},
		Output: OutputConfig{
			Format:  "pretty",
			Color:   "auto",
			Context: true,
		},
		Trace: TraceConfig{
			Level:    "off",
			Mode:     "stream",
			Output:   "-",
			RingSize: trace.DefaultRingSize,
		},
	}
}

// Find walks up from startDir looking for statescan.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the nearest statescan.toml above startDir, or returns
// Default when there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return Default(), err
	}
	return Load(path)
}

// Load reads path over Default. Keys missing from the file keep their
// default values; unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("scan", "extensions") && len(cfg.Scan.Extensions) == 0 {
		return Config{}, fmt.Errorf("%s: [scan].extensions must not be empty", path)
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every value that has a closed set of choices.
func (c Config) Validate() error {
	if _, err := grammar.Lookup(c.Scan.Grammar); err != nil {
		return fmt.Errorf("[scan].grammar: %w", err)
	}
	if c.Scan.MaxPending < 0 {
		return fmt.Errorf("[scan].max_pending must be >= 0, got %d", c.Scan.MaxPending)
	}
	if c.Scan.Jobs < 0 {
		return fmt.Errorf("[scan].jobs must be >= 0, got %d", c.Scan.Jobs)
	}
	if _, err := tokfmt.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("[output].format: %w", err)
	}
	switch c.Output.Color {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("[output].color must be auto|on|off, got %q", c.Output.Color)
	}
	if _, err := trace.ParseLevel(c.Trace.Level); err != nil {
		return fmt.Errorf("[trace].level: %w", err)
	}
	if _, err := trace.ParseMode(c.Trace.Mode); err != nil {
		return fmt.Errorf("[trace].mode: %w", err)
	}
	if _, err := c.Trace.HeartbeatInterval(); err != nil {
		return err
	}
	return nil
}

// ScannerOptions converts [scan] into engine options.
func (s ScanConfig) ScannerOptions() (scanner.Options, error) {
	buffer, err := safecast.Conv[int](s.Buffer)
	if err != nil {
		return scanner.Options{}, fmt.Errorf("[scan].buffer: %w", err)
	}
	maxPending, err := safecast.Conv[int](s.MaxPending)
	if err != nil {
		return scanner.Options{}, fmt.Errorf("[scan].max_pending: %w", err)
	}
	return scanner.Options{Buffer: buffer, MaxPending: maxPending}, nil
}

// ReaderOptions converts [scan] into character source options.
func (s ScanConfig) ReaderOptions() source.ReaderOptions {
	return source.ReaderOptions{Normalize: s.Normalize, StripBOM: s.StripBOM}
}

// JobCount returns [scan].jobs as int.
func (s ScanConfig) JobCount() (int, error) {
	return safecast.Conv[int](s.Jobs)
}

// HeartbeatInterval parses [trace].heartbeat; empty means disabled.
func (t TraceConfig) HeartbeatInterval() (time.Duration, error) {
	if t.Heartbeat == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(t.Heartbeat)
	if err != nil {
		return 0, fmt.Errorf("[trace].heartbeat: %w", err)
	}
	return d, nil
}

// RingCapacity returns [trace].ring_size as int.
func (t TraceConfig) RingCapacity() (int, error) {
	return safecast.Conv[int](t.RingSize)
}
