package appconfig

import (
	"os"
	"path/filepath"
	"time"

	"pkt.systems/termsherpa/internal/assistant"
	"pkt.systems/termsherpa/schema"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int            `mapstructure:"config_version" yaml:"config_version"`
	Shell         ShellConfig    `mapstructure:"shell" yaml:"shell"`
	Terminal      TerminalConfig `mapstructure:"terminal" yaml:"terminal"`
	History       HistoryConfig  `mapstructure:"history" yaml:"history"`
	Backend       BackendConfig  `mapstructure:"backend" yaml:"backend"`
	Logging       LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// ShellConfig selects the child shell.
type ShellConfig struct {
	// Command is the shell executable. Empty means $SHELL or the
	// platform default.
	Command    string   `mapstructure:"command" yaml:"command"`
	Args       []string `mapstructure:"args" yaml:"args"`
	WorkingDir string   `mapstructure:"working_dir" yaml:"working_dir"`
}

// TerminalConfig controls the decoded terminal buffer.
type TerminalConfig struct {
	Rows           int `mapstructure:"rows" yaml:"rows"`
	Cols           int `mapstructure:"cols" yaml:"cols"`
	BufferMaxLines int `mapstructure:"buffer_max_lines" yaml:"buffer_max_lines"`
	// DrainIntervalMS is how often queued shell output is decoded.
	DrainIntervalMS int `mapstructure:"drain_interval_ms" yaml:"drain_interval_ms"`
}

// HistoryConfig controls the rolling output window fed to analysis.
type HistoryConfig struct {
	MaxEntries          int `mapstructure:"max_entries" yaml:"max_entries"`
	RetainEntries       int `mapstructure:"retain_entries" yaml:"retain_entries"`
	AnalysisTailEntries int `mapstructure:"analysis_tail_entries" yaml:"analysis_tail_entries"`
}

// BackendConfig configures the completion backend. The API key is
// never stored in the file; it is read from the named environment
// variable.
type BackendConfig struct {
	BaseURL        string `mapstructure:"base_url" yaml:"base_url"`
	APIKeyEnv      string `mapstructure:"api_key_env" yaml:"api_key_env"`
	Model          string `mapstructure:"model" yaml:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ConfigVersion: CurrentConfigVersion,
		Shell:         ShellConfig{Args: []string{}},
		Terminal: TerminalConfig{
			Rows:            schema.DefaultRows,
			Cols:            schema.DefaultCols,
			BufferMaxLines:  0,
			DrainIntervalMS: int(schema.DefaultDrainInterval / time.Millisecond),
		},
		History: HistoryConfig{
			MaxEntries:          schema.DefaultHistoryMaxEntries,
			RetainEntries:       schema.DefaultHistoryRetainEntries,
			AnalysisTailEntries: schema.DefaultAnalysisTailEntries,
		},
		Backend: BackendConfig{
			BaseURL:        "https://api.groq.com/openai/v1",
			APIKeyEnv:      "GROQ_API_KEY",
			Model:          "llama-3.3-70b-versatile",
			TimeoutSeconds: 30,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".termsherpa", "config.yaml"), nil
}

// ServiceConfig converts the file config into the core service config.
func (c Config) ServiceConfig() schema.ServiceConfig {
	return schema.ServiceConfig{
		Shell:                c.Shell.Command,
		ShellArgs:            append([]string(nil), c.Shell.Args...),
		WorkingDir:           c.Shell.WorkingDir,
		Rows:                 c.Terminal.Rows,
		Cols:                 c.Terminal.Cols,
		DrainInterval:        time.Duration(c.Terminal.DrainIntervalMS) * time.Millisecond,
		BufferMaxLines:       c.Terminal.BufferMaxLines,
		HistoryMaxEntries:    c.History.MaxEntries,
		HistoryRetainEntries: c.History.RetainEntries,
		AnalysisTailEntries:  c.History.AnalysisTailEntries,
		BackendTimeout:       time.Duration(c.Backend.TimeoutSeconds) * time.Second,
	}
}

// AssistantConfig resolves the backend client settings, reading the
// API key from the configured environment variable.
func (c Config) AssistantConfig() assistant.Config {
	keyEnv := c.Backend.APIKeyEnv
	if keyEnv == "" {
		keyEnv = "GROQ_API_KEY"
	}
	return assistant.Config{
		BaseURL: c.Backend.BaseURL,
		APIKey:  os.Getenv(keyEnv),
		Model:   c.Backend.Model,
		Timeout: time.Duration(c.Backend.TimeoutSeconds) * time.Second,
	}
}
