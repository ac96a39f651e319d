package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func noEnv(string) string { return "" }

func TestInterpolateEnv(t *testing.T) {
	getenv := func(key string) string {
		switch key {
		case "TEST_PROMPT":
			return "sage> "
		case "TEST_LEVEL":
			return "debug"
		default:
			return ""
		}
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple substitution",
			input:    "prompt: ${TEST_PROMPT}",
			expected: "prompt: sage> ",
		},
		{
			name:     "with default (env set)",
			input:    "level: ${TEST_LEVEL:-info}",
			expected: "level: debug",
		},
		{
			name:     "with default (env not set)",
			input:    "level: ${UNSET_VAR:-info}",
			expected: "level: info",
		},
		{
			name:     "multiple substitutions",
			input:    "a: ${TEST_PROMPT} b: ${TEST_LEVEL}",
			expected: "a: sage>  b: debug",
		},
		{
			name:     "no substitution needed",
			input:    "static: value",
			expected: "static: value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := string(interpolateEnv([]byte(tt.input), getenv))
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "sage.yaml")

	configContent := `
repl:
  prompt: "sage> "
  history_file: .history

output:
  color: never

watch:
  debounce: 250ms

logging:
  level: debug
  format: json
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath, noEnv)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.REPL.Prompt != "sage> " {
		t.Errorf("expected prompt 'sage> ', got %q", cfg.REPL.Prompt)
	}
	if cfg.Output.Color != "never" {
		t.Errorf("expected color 'never', got %q", cfg.Output.Color)
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("expected debounce 250ms, got %s", cfg.Watch.Debounce)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %q", cfg.Logging.Level)
	}

	// Unset fields keep their defaults
	if cfg.REPL.HistorySize != 1000 {
		t.Errorf("expected default history size to survive, got %d", cfg.REPL.HistorySize)
	}
	if cfg.Output.FloatPrecision != -1 {
		t.Errorf("expected default float precision to survive, got %d", cfg.Output.FloatPrecision)
	}

	// Relative paths resolve against the config file's directory
	if cfg.BaseDir != dir {
		t.Errorf("expected BaseDir %q, got %q", dir, cfg.BaseDir)
	}
	want := filepath.Join(dir, ".history")
	if cfg.REPL.HistoryFile != want {
		t.Errorf("expected history file %q, got %q", want, cfg.REPL.HistoryFile)
	}
}

func TestLoadWithEnvInterpolation(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "sage.yaml")

	configContent := `
logging:
  level: ${SAGE_LOG_LEVEL:-warn}
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath, noEnv)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected interpolated default 'warn', got %q", cfg.Logging.Level)
	}

	getenv := func(key string) string {
		if key == "SAGE_LOG_LEVEL" {
			return "error"
		}
		return ""
	}
	cfg, err = Load(configPath, getenv)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("expected interpolated 'error', got %q", cfg.Logging.Level)
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, err := Load("/nonexistent/sage.yaml", noEnv)
	if err == nil {
		t.Fatal("expected error for missing explicit config")
	}
	if !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadMissingSageConfigEnv(t *testing.T) {
	getenv := func(key string) string {
		if key == "SAGE_CONFIG" {
			return "/nonexistent/sage.yaml"
		}
		return ""
	}
	_, err := Load("", getenv)
	if err == nil {
		t.Fatal("expected error for missing SAGE_CONFIG file")
	}
	if !strings.Contains(err.Error(), "SAGE_CONFIG file not found") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	// Run from an empty directory with an empty HOME so no config file
	// can be found anywhere.
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() { os.Chdir(oldwd) })
	t.Setenv("HOME", t.TempDir())

	cfg, path, err := LoadWithPath("", noEnv)
	if err != nil {
		t.Fatalf("LoadWithPath failed: %v", err)
	}
	if path != "" {
		t.Errorf("expected empty resolved path, got %q", path)
	}
	if cfg.REPL.Prompt != ">> " {
		t.Errorf("expected defaults, got prompt %q", cfg.REPL.Prompt)
	}
}

func TestLoadSearchesSageConfigEnv(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(configPath, []byte("output:\n  color: always\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	getenv := func(key string) string {
		if key == "SAGE_CONFIG" {
			return configPath
		}
		return ""
	}

	cfg, path, err := LoadWithPath("", getenv)
	if err != nil {
		t.Fatalf("LoadWithPath failed: %v", err)
	}
	if path == "" || !strings.HasSuffix(path, "custom.yaml") {
		t.Errorf("expected resolved path to custom.yaml, got %q", path)
	}
	if cfg.Output.Color != "always" {
		t.Errorf("expected color 'always', got %q", cfg.Output.Color)
	}
}

func TestLoadInvalidConfigRejected(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "sage.yaml")
	if err := os.WriteFile(configPath, []byte("output:\n  color: sometimes\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath, noEnv)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "invalid output color") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestWarnings(t *testing.T) {
	cfg := Defaults()
	if warnings := Warnings(cfg); len(warnings) != 0 {
		t.Errorf("expected no warnings for defaults, got %v", warnings)
	}

	cfg.Watch.Debounce = 30 * time.Second
	cfg.REPL.HistoryFile = "/nonexistent/dir/.history"
	warnings := Warnings(cfg)
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d: %v", len(warnings), warnings)
	}
	if !strings.Contains(warnings[0], "unusually large") {
		t.Errorf("unexpected warning: %s", warnings[0])
	}
	if !strings.Contains(warnings[1], "history_file directory does not exist") {
		t.Errorf("unexpected warning: %s", warnings[1])
	}
}
