package config_test

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/thomasrohde/lox/pkg/config"
	"github.com/thomasrohde/lox/pkg/evaluator"
)

// helper: write a file, creating parent directories
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// helper: point the user home at a fresh directory
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestDefault(t *testing.T) {
	home := isolateHome(t)
	cfg := config.Default()

	if cfg.Prompt != "> " || cfg.ContinuationPrompt != ". " {
		t.Errorf("unexpected prompts %q %q", cfg.Prompt, cfg.ContinuationPrompt)
	}
	if cfg.HistoryFile != filepath.Join(home, ".lox_history") {
		t.Errorf("got history file %q", cfg.HistoryFile)
	}
	if cfg.MaxCallDepth != evaluator.DefaultMaxCallDepth || cfg.MaxIterations != 0 {
		t.Errorf("unexpected limits %d %d", cfg.MaxCallDepth, cfg.MaxIterations)
	}
	if cfg.LogLevel != slog.LevelWarn {
		t.Errorf("got log level %v", cfg.LogLevel)
	}
	if cfg.Timeout != 0 || cfg.JSONDiagnostics || cfg.ExtendedNatives {
		t.Error("optional features should be off by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFileOverrides(t *testing.T) {
	home := isolateHome(t)
	path := filepath.Join(t.TempDir(), "lox.yml")
	writeFile(t, path, `
prompt: "lox> "
continuation_prompt: "... "
history_file: ~/.config/lox_history
max_call_depth: 200
max_iterations: 10000
timeout: 2s
json_diagnostics: true
log_level: debug
extended_natives: true
`)

	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Path != path {
		t.Errorf("got path %q", cfg.Path)
	}
	if cfg.Prompt != "lox> " || cfg.ContinuationPrompt != "... " {
		t.Errorf("unexpected prompts %q %q", cfg.Prompt, cfg.ContinuationPrompt)
	}
	if cfg.HistoryFile != filepath.Join(home, ".config", "lox_history") {
		t.Errorf("got history file %q", cfg.HistoryFile)
	}
	if cfg.MaxCallDepth != 200 || cfg.MaxIterations != 10000 {
		t.Errorf("unexpected limits %d %d", cfg.MaxCallDepth, cfg.MaxIterations)
	}
	if cfg.Timeout != 2*time.Second {
		t.Errorf("got timeout %v", cfg.Timeout)
	}
	if !cfg.JSONDiagnostics || !cfg.ExtendedNatives {
		t.Error("flags should be on")
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("got log level %v", cfg.LogLevel)
	}

	budget := cfg.Budget()
	if budget.MaxCallDepth != 200 || budget.MaxIterations != 10000 {
		t.Errorf("got budget %+v", budget)
	}
}

func TestLoadFilePartialKeepsDefaults(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "lox.yml")
	writeFile(t, path, "max_iterations: 5\n")

	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxIterations != 5 {
		t.Errorf("got %d", cfg.MaxIterations)
	}
	if cfg.Prompt != "> " || cfg.MaxCallDepth != evaluator.DefaultMaxCallDepth {
		t.Error("unset fields should keep defaults")
	}
}

func TestLoadFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lox.yml")
	writeFile(t, path, "")

	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("empty file should load as defaults: %v", err)
	}
	if cfg.Prompt != "> " || cfg.Path != path {
		t.Errorf("got %+v", cfg)
	}
}

func TestLoadFileRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lox.yml")
	writeFile(t, path, "promt: typo\n")

	_, err := config.LoadFile(path)
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "promt") || !strings.HasPrefix(err.Error(), "config: parse ") {
		t.Errorf("got %v", err)
	}
}

func TestLoadFileValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lox.yml")
	writeFile(t, path, `
max_call_depth: -1
timeout: soon
log_level: loud
`)

	_, err := config.LoadFile(path)
	var verr *config.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(verr.Issues) != 3 {
		t.Errorf("expected 3 issues, got %v", verr.Issues)
	}
	msg := err.Error()
	for _, want := range []string{"config validation failed", "timeout \"soon\"", "log_level \"loud\"", "max_call_depth"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
}

func TestLoadPrecedence(t *testing.T) {
	home := isolateHome(t)
	project := t.TempDir()

	cfg, err := config.Load(project)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Path != "" || cfg.Prompt != "> " {
		t.Errorf("expected defaults, got %+v", cfg)
	}

	userPath := filepath.Join(home, ".lox", "config.yml")
	writeFile(t, userPath, `prompt: "user> "`)
	cfg, err = config.Load(project)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Prompt != "user> " || cfg.Path != userPath {
		t.Errorf("expected user config, got %+v", cfg)
	}

	projectPath := filepath.Join(project, config.ProjectFile)
	writeFile(t, projectPath, `prompt: "project> "`)
	cfg, err = config.Load(project)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Prompt != "project> " || cfg.Path != projectPath {
		t.Errorf("expected project config, got %+v", cfg)
	}
}

func TestLoadSurfacesBrokenFiles(t *testing.T) {
	isolateHome(t)
	project := t.TempDir()
	writeFile(t, filepath.Join(project, config.ProjectFile), "prompt: [unclosed\n")

	if _, err := config.Load(project); err == nil {
		t.Fatal("a broken project file should not fall back silently")
	}
}

func TestValidateEmptyPrompt(t *testing.T) {
	cfg := config.Default()
	cfg.Prompt = ""
	cfg.MaxIterations = -2
	err := cfg.Validate()
	var verr *config.ValidationError
	if !errors.As(err, &verr) || len(verr.Issues) != 2 {
		t.Fatalf("expected two issues, got %v", err)
	}
}
