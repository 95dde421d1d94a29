// Package config loads interpreter settings from YAML files.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/thomasrohde/lox/pkg/evaluator"
)

// ProjectFile is the per-directory config file name.
const ProjectFile = ".lox.yml"

// Config holds the settings for the CLI and REPL.
type Config struct {
	// Path is the file the settings came from; empty for defaults.
	Path               string
	Prompt             string
	ContinuationPrompt string
	HistoryFile        string
	MaxCallDepth       int
	MaxIterations      int64
	Timeout            time.Duration
	JSONDiagnostics    bool
	LogLevel           slog.Level
	ExtendedNatives    bool
}

// configFile is the on-disk shape. Pointers distinguish "absent" from zero.
type configFile struct {
	Prompt             *string `yaml:"prompt"`
	ContinuationPrompt *string `yaml:"continuation_prompt"`
	HistoryFile        *string `yaml:"history_file"`
	MaxCallDepth       *int    `yaml:"max_call_depth"`
	MaxIterations      *int64  `yaml:"max_iterations"`
	Timeout            string  `yaml:"timeout"`
	JSONDiagnostics    *bool   `yaml:"json_diagnostics"`
	LogLevel           string  `yaml:"log_level"`
	ExtendedNatives    *bool   `yaml:"extended_natives"`
}

// ValidationError aggregates config validation failures.
type ValidationError struct {
	Path   string
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed")
	if e.Path != "" {
		b.WriteString(" (")
		b.WriteString(e.Path)
		b.WriteString(")")
	}
	b.WriteString(":")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Default returns the built-in settings.
func Default() *Config {
	history := ".lox_history"
	if home, err := os.UserHomeDir(); err == nil {
		history = filepath.Join(home, ".lox_history")
	}
	return &Config{
		Prompt:             "> ",
		ContinuationPrompt: ". ",
		HistoryFile:        history,
		MaxCallDepth:       evaluator.DefaultMaxCallDepth,
		LogLevel:           slog.LevelWarn,
	}
}

// Load finds the settings for a run in projectDir.
// Precedence: project (.lox.yml) → user (~/.lox/config.yml) → defaults.
// A file that exists but does not parse or validate is an error.
func Load(projectDir string) (*Config, error) {
	candidates := []string{filepath.Join(projectDir, ProjectFile)}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".lox", "config.yml"))
	}

	for _, path := range candidates {
		cfg, err := LoadFile(path)
		if err == nil {
			return cfg, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return Default(), nil
}

// LoadFile parses a single config file. Unset fields keep their defaults;
// unknown keys are rejected.
func LoadFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw configFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			cfg := Default()
			cfg.Path = path
			return cfg, nil
		}
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg, issues := raw.toConfig()
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			issues = append(issues, verr.Issues...)
		}
	}
	if len(issues) > 0 {
		return nil, &ValidationError{Path: path, Issues: issues}
	}
	return cfg, nil
}

func (f *configFile) toConfig() (*Config, []string) {
	cfg := Default()
	var issues []string

	if f.Prompt != nil {
		cfg.Prompt = *f.Prompt
	}
	if f.ContinuationPrompt != nil {
		cfg.ContinuationPrompt = *f.ContinuationPrompt
	}
	if f.HistoryFile != nil {
		cfg.HistoryFile = expandHome(*f.HistoryFile)
	}
	if f.MaxCallDepth != nil {
		cfg.MaxCallDepth = *f.MaxCallDepth
	}
	if f.MaxIterations != nil {
		cfg.MaxIterations = *f.MaxIterations
	}
	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			issues = append(issues, fmt.Sprintf("timeout %q is not a duration", f.Timeout))
		} else {
			cfg.Timeout = d
		}
	}
	if f.JSONDiagnostics != nil {
		cfg.JSONDiagnostics = *f.JSONDiagnostics
	}
	if f.LogLevel != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(f.LogLevel)); err != nil {
			issues = append(issues, fmt.Sprintf("log_level %q must be debug, info, warn or error", f.LogLevel))
		}
	}
	if f.ExtendedNatives != nil {
		cfg.ExtendedNatives = *f.ExtendedNatives
	}
	return cfg, issues
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs ValidationError
	if c.MaxCallDepth < 0 {
		errs.Issues = append(errs.Issues, "max_call_depth must not be negative")
	}
	if c.MaxIterations < 0 {
		errs.Issues = append(errs.Issues, "max_iterations must not be negative")
	}
	if c.Timeout < 0 {
		errs.Issues = append(errs.Issues, "timeout must not be negative")
	}
	if c.Prompt == "" {
		errs.Issues = append(errs.Issues, "prompt must not be empty")
	}
	if len(errs.Issues) > 0 {
		errs.Path = c.Path
		return &errs
	}
	return nil
}

// Budget returns the evaluator limits described by c.
func (c *Config) Budget() evaluator.Budget {
	return evaluator.Budget{
		MaxCallDepth:  c.MaxCallDepth,
		MaxIterations: c.MaxIterations,
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
