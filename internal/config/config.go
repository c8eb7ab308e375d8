// Package config loads and validates the nmsweep configuration file.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/idelchi/nmsweep/internal/sweep"
)

// Supported values of the enumerated settings.
//
//nolint:gochecknoglobals // Config constants
var (
	CountModes    = []string{"found", "deleted"}
	SubtreeErrors = []string{"skip", "fail"}
	OutputFormats = []string{"table", "json"}
)

// DefaultFile contains the commented default configuration file.
//
//go:embed default.yaml
var DefaultFile string

var (
	errEmptyTarget  = errors.New("target must not be empty")
	errHiddenTarget = errors.New("target must not start with " + sweep.HiddenPrefix)
	errTargetPath   = errors.New("target must be a single path segment")
)

// Config holds all settings that can be given in the configuration file.
type Config struct {
	// Target is the directory name to reclaim.
	Target string `json:"target" yaml:"target"`
	// DryRun matches and measures without deleting.
	DryRun bool `json:"dry_run" yaml:"dry_run"`
	// Silent suppresses per-directory output.
	Silent bool `json:"silent" yaml:"silent"`
	// Count is one of CountModes.
	Count string `json:"count" yaml:"count"`
	// SubtreeErrors is one of SubtreeErrors.
	SubtreeErrors string `json:"subtree_errors" yaml:"subtree_errors"`
	// Output is one of OutputFormats.
	Output string `json:"output" yaml:"output"`
	// HistoryPath is the SQLite history database, empty to disable.
	HistoryPath string `json:"history_path" yaml:"history_path"`
	// MetricsFile is the Prometheus textfile, empty to disable.
	MetricsFile string `json:"metrics_file" yaml:"metrics_file"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()

	return cfg
}

// Load reads, defaults and validates the configuration file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	cfg, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}

	return cfg, nil
}

func decode(r io.Reader) (*Config, error) {
	cfg := &Config{}

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	if err := decoder.Decode(cfg); err != nil {
		// An empty file is a valid, all-default configuration.
		if errors.Is(err, io.EOF) {
			return cfg, nil
		}

		return nil, fmt.Errorf("decoding yaml: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Target == "" {
		c.Target = sweep.DefaultTarget
	}

	if c.Count == "" {
		c.Count = CountModes[0]
	}

	if c.SubtreeErrors == "" {
		c.SubtreeErrors = SubtreeErrors[0]
	}

	if c.Output == "" {
		c.Output = OutputFormats[0]
	}
}

// Validate checks every setting and returns the first violation.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Target) == "":
		return errEmptyTarget
	case strings.HasPrefix(c.Target, sweep.HiddenPrefix):
		return fmt.Errorf("%w: %q", errHiddenTarget, c.Target)
	case strings.ContainsAny(c.Target, `/\`):
		return fmt.Errorf("%w: %q", errTargetPath, c.Target)
	}

	if err := oneOf("count", c.Count, CountModes); err != nil {
		return err
	}

	if err := oneOf("subtree_errors", c.SubtreeErrors, SubtreeErrors); err != nil {
		return err
	}

	return oneOf("output", c.Output, OutputFormats)
}

func oneOf(name, value string, allowed []string) error {
	if !slices.Contains(allowed, value) {
		return fmt.Errorf("invalid %s %q: must be one of %v", name, value, allowed)
	}

	return nil
}

// CountMode converts Count for the sweep.
func (c *Config) CountMode() sweep.CountMode {
	if c.Count == "deleted" {
		return sweep.CountDeleted
	}

	return sweep.CountFound
}

// ErrorPolicy converts SubtreeErrors for the sweep.
func (c *Config) ErrorPolicy() sweep.ErrorPolicy {
	if c.SubtreeErrors == "fail" {
		return sweep.FailFast
	}

	return sweep.SkipUnreadable
}

// Render renders the commented default configuration file.
func Render() (string, error) {
	tmpl, err := template.New("default.yaml").Parse(DefaultFile)
	if err != nil {
		return "", fmt.Errorf("parsing default config: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, Default()); err != nil {
		return "", fmt.Errorf("rendering default config: %w", err)
	}

	return buf.String(), nil
}
