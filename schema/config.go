package schema

import (
	"errors"
	"time"
)

// ServiceConfig defines defaults and limits for the core service.
type ServiceConfig struct {
	// Shell is the executable spawned for new sessions. Empty selects
	// the platform-conventional shell.
	Shell string
	// ShellArgs are extra arguments passed to the shell.
	ShellArgs []string
	// WorkingDir is the initial working directory for new sessions.
	WorkingDir string
	// Rows and Cols are the initial terminal dimensions.
	Rows int
	Cols int
	// DrainInterval is how often queued output chunks are decoded.
	DrainInterval time.Duration
	// BufferMaxLines caps scrollback retained in the decoded terminal
	// buffer. Zero or negative selects the built-in default.
	BufferMaxLines int
	// HistoryMaxEntries caps the output history window; on overflow the
	// window is trimmed to HistoryRetainEntries.
	HistoryMaxEntries    int
	HistoryRetainEntries int
	// AnalysisTailEntries limits how many history entries accompany a
	// failure-analysis request.
	AnalysisTailEntries int
	// BackendTimeout bounds each assistant call.
	BackendTimeout time.Duration
	// PlatformHint names the OS in assistant prompts. Empty selects the
	// host platform.
	PlatformHint string
}

// Default terminal dimensions for new sessions.
const (
	DefaultRows = 30
	DefaultCols = 100
)

// DefaultHistoryMaxEntries caps the rolling output history window.
const DefaultHistoryMaxEntries = 100

// DefaultHistoryRetainEntries is the tail kept after an overflow trim.
const DefaultHistoryRetainEntries = 50

// DefaultAnalysisTailEntries bounds the output sent for failure analysis.
const DefaultAnalysisTailEntries = 20

// DefaultDrainInterval is the decode cadence for queued output.
const DefaultDrainInterval = 50 * time.Millisecond

// DefaultBackendTimeout bounds assistant calls.
const DefaultBackendTimeout = 30 * time.Second

// NormalizeServiceConfig applies defaults and validates the config.
func NormalizeServiceConfig(cfg ServiceConfig) (ServiceConfig, error) {
	if cfg.Rows == 0 {
		cfg.Rows = DefaultRows
	}
	if cfg.Cols == 0 {
		cfg.Cols = DefaultCols
	}
	if cfg.Rows < 0 || cfg.Cols < 0 {
		return ServiceConfig{}, ErrInvalidDimensions
	}
	if cfg.DrainInterval <= 0 {
		cfg.DrainInterval = DefaultDrainInterval
	}
	if cfg.HistoryMaxEntries <= 0 {
		cfg.HistoryMaxEntries = DefaultHistoryMaxEntries
	}
	if cfg.HistoryRetainEntries <= 0 {
		cfg.HistoryRetainEntries = DefaultHistoryRetainEntries
	}
	if cfg.HistoryRetainEntries > cfg.HistoryMaxEntries {
		return ServiceConfig{}, errors.New("history retain entries must not exceed max entries")
	}
	if cfg.AnalysisTailEntries <= 0 {
		cfg.AnalysisTailEntries = DefaultAnalysisTailEntries
	}
	if cfg.BackendTimeout <= 0 {
		cfg.BackendTimeout = DefaultBackendTimeout
	}
	return cfg, nil
}
