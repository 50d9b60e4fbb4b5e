package config

// RawConfig mirrors the YAML file. Nil fields were not set and keep their
// defaults.
type RawConfig struct {
	ClipboardBackend *ClipboardBackend `yaml:"clipboard_backend"`
	SelectionTimeout *string           `yaml:"selection_timeout"`
	Display          *string           `yaml:"display"`
	WindowTitle      *string           `yaml:"window_title"`
	LogLevel         *string           `yaml:"log_level"`
}

// merge returns r overlaid with every field set in other.
func (r RawConfig) merge(other RawConfig) RawConfig {
	if other.ClipboardBackend != nil {
		r.ClipboardBackend = other.ClipboardBackend
	}
	if other.SelectionTimeout != nil {
		r.SelectionTimeout = other.SelectionTimeout
	}
	if other.Display != nil {
		r.Display = other.Display
	}
	if other.WindowTitle != nil {
		r.WindowTitle = other.WindowTitle
	}
	if other.LogLevel != nil {
		r.LogLevel = other.LogLevel
	}
	return r
}
