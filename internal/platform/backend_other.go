//go:build !linux

package platform

import "log/slog"

type unsupportedBackend struct{}

// NewBackend returns a backend that cannot open windows on this platform.
func NewBackend(display string, logger *slog.Logger) Backend {
	return unsupportedBackend{}
}

func (unsupportedBackend) OpenWindow(WindowOptions) (Window, error) {
	return nil, ErrUnsupported
}

func (unsupportedBackend) Disconnect() {}
