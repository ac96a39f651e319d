package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a file with ENV interpolation.
// If configPath is empty, it searches default locations; when no file
// exists anywhere, the defaults are returned as-is.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	cfg, _, err := LoadWithPath(configPath, getenv)
	return cfg, err
}

// LoadWithPath reads configuration and returns both the config and the
// resolved path. The path is empty when no config file was found and
// defaults were used.
func LoadWithPath(configPath string, getenv func(string) string) (*Config, string, error) {
	path, err := resolveConfigPath(configPath, getenv)
	if err != nil {
		return nil, "", err
	}

	if path == "" {
		cfg := Defaults()
		if err := validateBasic(cfg); err != nil {
			return nil, "", err
		}
		return cfg, "", nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve config path: %w", err)
	}
	baseDir := filepath.Dir(absPath)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	data = interpolateEnv(data, getenv)

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.BaseDir = baseDir

	// Resolve relative paths against the config file's directory
	if cfg.REPL.HistoryFile != "" && !filepath.IsAbs(cfg.REPL.HistoryFile) {
		cfg.REPL.HistoryFile = filepath.Join(baseDir, cfg.REPL.HistoryFile)
	}
	if isFileOutput(cfg.Logging.Output) && !filepath.IsAbs(cfg.Logging.Output) {
		cfg.Logging.Output = filepath.Join(baseDir, cfg.Logging.Output)
	}

	if err := validateBasic(cfg); err != nil {
		return nil, "", err
	}

	return cfg, absPath, nil
}

// Warnings returns non-fatal configuration issues that should be reported
// to the user. These won't prevent the CLI from running but likely
// indicate a misconfiguration.
func Warnings(cfg *Config) []string {
	var warnings []string

	if cfg.Watch.Debounce > 10*time.Second {
		warnings = append(warnings, fmt.Sprintf("watch.debounce of %s is unusually large - reruns will feel unresponsive", cfg.Watch.Debounce))
	}

	if cfg.REPL.HistoryFile != "" {
		if _, err := os.Stat(filepath.Dir(cfg.REPL.HistoryFile)); err != nil {
			warnings = append(warnings, fmt.Sprintf("repl.history_file directory does not exist: %s", filepath.Dir(cfg.REPL.HistoryFile)))
		}
	}

	if isFileOutput(cfg.Logging.Output) {
		if _, err := os.Stat(filepath.Dir(cfg.Logging.Output)); err != nil {
			warnings = append(warnings, fmt.Sprintf("logging.output directory does not exist: %s", filepath.Dir(cfg.Logging.Output)))
		}
	}

	return warnings
}

// isFileOutput reports whether a logging output names a file path rather
// than a standard stream.
func isFileOutput(output string) bool {
	return output != "" && output != "stderr" && output != "stdout"
}

// resolveConfigPath finds the config file to use.
// Search order: explicit path > SAGE_CONFIG env > ./sage.yaml > ~/.config/sage/sage.yaml
// An empty return with nil error means no config file exists and defaults apply.
func resolveConfigPath(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	if envPath := getenv("SAGE_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("SAGE_CONFIG file not found: %s", envPath)
		}
		return envPath, nil
	}

	if _, err := os.Stat("sage.yaml"); err == nil {
		return "sage.yaml", nil
	}

	home, err := os.UserHomeDir()
	if err == nil {
		xdgPath := filepath.Join(home, ".config", "sage", "sage.yaml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath, nil
		}
	}

	return "", nil
}

// envPattern matches ${VAR} or ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} patterns with environment values.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := string(parts[1])
		value := getenv(varName)

		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}

		return []byte(value)
	})
}

// validateBasic checks the configuration for errors, collecting every
// problem into a single report.
func validateBasic(cfg *Config) error {
	var errs []string

	validColors := map[string]bool{"auto": true, "always": true, "never": true}
	if !validColors[cfg.Output.Color] {
		errs = append(errs, fmt.Sprintf("invalid output color: %s (must be auto, always, or never)", cfg.Output.Color))
	}

	if cfg.Output.FloatPrecision < -1 || cfg.Output.FloatPrecision > 17 {
		errs = append(errs, fmt.Sprintf("invalid float precision: %d (must be -1 to 17)", cfg.Output.FloatPrecision))
	}

	if cfg.REPL.HistorySize < 0 {
		errs = append(errs, fmt.Sprintf("invalid history size: %d (must be >= 0)", cfg.REPL.HistorySize))
	}

	if cfg.Watch.Debounce < 0 {
		errs = append(errs, fmt.Sprintf("invalid watch debounce: %s (must be >= 0)", cfg.Watch.Debounce))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", cfg.Logging.Level))
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, fmt.Sprintf("invalid log format: %s (must be json or text)", cfg.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
