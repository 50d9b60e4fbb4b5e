package config

import (
	"fmt"
	"strings"
	"time"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig applies raw over DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.ClipboardBackend != nil {
		cfg.ClipboardBackend = ClipboardBackend(strings.ToLower(strings.TrimSpace(string(*raw.ClipboardBackend))))
	}
	if raw.SelectionTimeout != nil {
		d, err := time.ParseDuration(strings.TrimSpace(*raw.SelectionTimeout))
		if err != nil {
			return nil, &ValidationError{Path: "selection_timeout", Err: fmt.Errorf("invalid duration %q", *raw.SelectionTimeout)}
		}
		cfg.SelectionTimeout = d
	}
	if raw.Display != nil {
		cfg.Display = strings.TrimSpace(*raw.Display)
	}
	if raw.WindowTitle != nil {
		cfg.WindowTitle = *raw.WindowTitle
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(*raw.LogLevel))
	}

	return cfg, nil
}
