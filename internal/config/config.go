package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ClipboardBackend selects how the clipboard is read.
type ClipboardBackend string

const (
	BackendAuto   ClipboardBackend = "auto"   // x11 when a display is reachable, else system.
	BackendX11    ClipboardBackend = "x11"    // ICCCM selection transfer over xgb.
	BackendSystem ClipboardBackend = "system" // golang.design/x/clipboard.
)

const (
	DefaultWindowTitle      = "clipview"
	DefaultSelectionTimeout = 2 * time.Second
	DefaultLogLevel         = "warning"
)

// Config is the effective clipview configuration. Display, when set,
// overrides $DISPLAY for both the clipboard read and the window.
type Config struct {
	ClipboardBackend ClipboardBackend
	SelectionTimeout time.Duration
	Display          string
	WindowTitle      string
	LogLevel         string
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		ClipboardBackend: BackendAuto,
		SelectionTimeout: DefaultSelectionTimeout,
		WindowTitle:      DefaultWindowTitle,
		LogLevel:         DefaultLogLevel,
	}
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	switch c.ClipboardBackend {
	case BackendAuto, BackendX11, BackendSystem:
	default:
		return &ValidationError{Path: "clipboard_backend", Err: fmt.Errorf("clipboard_backend must be one of: auto, x11, system")}
	}
	if c.SelectionTimeout <= 0 {
		return &ValidationError{Path: "selection_timeout", Err: fmt.Errorf("selection_timeout must be > 0")}
	}
	if strings.TrimSpace(c.WindowTitle) == "" {
		return &ValidationError{Path: "window_title", Err: fmt.Errorf("window_title must not be empty")}
	}
	if _, ok := parseLogLevel(c.LogLevel); !ok {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level.
func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLogLevel(c.LogLevel)
	return level
}

func parseLogLevel(s string) (slog.Level, bool) {
	switch s {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelWarn, false
	}
}
