// Package appconfig loads and writes the termsherpa YAML configuration.
package appconfig

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load reads configuration from the provided path. If path is empty,
// uses DefaultConfigPath. A missing file yields defaults.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("config_version", cfg.ConfigVersion)
	v.SetDefault("shell.command", cfg.Shell.Command)
	v.SetDefault("shell.args", cfg.Shell.Args)
	v.SetDefault("shell.working_dir", cfg.Shell.WorkingDir)
	v.SetDefault("terminal.rows", cfg.Terminal.Rows)
	v.SetDefault("terminal.cols", cfg.Terminal.Cols)
	v.SetDefault("terminal.buffer_max_lines", cfg.Terminal.BufferMaxLines)
	v.SetDefault("terminal.drain_interval_ms", cfg.Terminal.DrainIntervalMS)
	v.SetDefault("history.max_entries", cfg.History.MaxEntries)
	v.SetDefault("history.retain_entries", cfg.History.RetainEntries)
	v.SetDefault("history.analysis_tail_entries", cfg.History.AnalysisTailEntries)
	v.SetDefault("backend.base_url", cfg.Backend.BaseURL)
	v.SetDefault("backend.api_key_env", cfg.Backend.APIKeyEnv)
	v.SetDefault("backend.model", cfg.Backend.Model)
	v.SetDefault("backend.timeout_seconds", cfg.Backend.TimeoutSeconds)
	v.SetDefault("logging.level", cfg.Logging.Level)

	configLoaded := false
	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !os.IsNotExist(err) {
			return Config{}, err
		}
	} else {
		configLoaded = true
	}

	if configLoaded {
		if !v.IsSet("config_version") {
			return Config{}, fmt.Errorf("config_version is required; expected %d", CurrentConfigVersion)
		}
		if v.GetInt("config_version") != CurrentConfigVersion {
			return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
		}
		if v.IsSet("backend.api_key") {
			return Config{}, fmt.Errorf("backend.api_key must not be stored in the config file; set backend.api_key_env instead")
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	expandConfigEnv(&cfg)
	if err := validateBackendConfig(cfg.Backend); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateBackendConfig(cfg BackendConfig) error {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL != "" {
		parsed, err := url.Parse(baseURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("backend.base_url must include scheme and host (e.g. https://api.groq.com/openai/v1)")
		}
	}
	if cfg.TimeoutSeconds < 0 {
		return fmt.Errorf("backend.timeout_seconds must not be negative")
	}
	return nil
}

func expandConfigEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.Shell.Command = expandEnv(cfg.Shell.Command)
	cfg.Shell.WorkingDir = expandEnv(cfg.Shell.WorkingDir)
	cfg.Backend.BaseURL = expandEnv(cfg.Backend.BaseURL)
}

func expandEnv(value string) string {
	if value == "" {
		return value
	}
	return os.Expand(value, func(key string) string {
		if key == "" {
			return ""
		}
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		return "$" + key
	})
}

// WriteDefault writes the default config to the target path.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
