package config

import "time"

// Config represents the complete host configuration for the sage CLI.
type Config struct {
	BaseDir string        `yaml:"-"` // Directory containing the config file, for resolving relative paths
	REPL    REPLConfig    `yaml:"repl"`
	Output  OutputConfig  `yaml:"output"`
	Watch   WatchConfig   `yaml:"watch"`
	Logging LoggingConfig `yaml:"logging"`
}

// REPLConfig holds interactive session settings.
type REPLConfig struct {
	Prompt      string `yaml:"prompt"`       // Main prompt (default: ">> ")
	HistoryFile string `yaml:"history_file"` // History file path (default: <tmpdir>/.sage_history)
	HistorySize int    `yaml:"history_size"` // Maximum history entries kept on save (default: 1000)
}

// OutputConfig holds result and diagnostic rendering settings.
type OutputConfig struct {
	Color          string `yaml:"color"`           // "auto", "always", or "never" (default: "auto")
	FloatPrecision int    `yaml:"float_precision"` // Digits when echoing float results, -1 for shortest (default: -1)
}

// WatchConfig holds --watch mode settings.
type WatchConfig struct {
	Debounce    time.Duration `yaml:"debounce"`     // Quiet period before a rerun (default: 100ms)
	ClearScreen bool          `yaml:"clear_screen"` // Clear the terminal before each rerun (default: false)
}

// LoggingConfig holds host logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
	Output string `yaml:"output"` // stderr, stdout, or file path
}

// Defaults returns a Config with sensible defaults
func Defaults() *Config {
	return &Config{
		REPL: REPLConfig{
			Prompt:      ">> ",
			HistorySize: 1000,
		},
		Output: OutputConfig{
			Color:          "auto",
			FloatPrecision: -1,
		},
		Watch: WatchConfig{
			Debounce:    100 * time.Millisecond,
			ClearScreen: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}
