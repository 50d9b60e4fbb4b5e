//go:build linux

package platform

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/1broseidon/clipview/internal/x11"
)

func TestEventKindMapping(t *testing.T) {
	tests := []struct {
		in   x11.ViewerEvent
		want EventKind
	}{
		{x11.ViewerRedraw, EventRedraw},
		{x11.ViewerClose, EventClose},
		{x11.ViewerOther, EventOther},
	}
	for _, tt := range tests {
		if got := eventKind(tt.in); got != tt.want {
			t.Fatalf("eventKind(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOpenWindowWithoutServerFails(t *testing.T) {
	b := NewBackend("/nonexistent/clipview-test-display:99", nil)
	defer b.Disconnect()
	if _, err := b.OpenWindow(WindowOptions{Width: 1, Height: 1}); err == nil {
		t.Fatalf("expected connection failure")
	}
}

func TestNewBackendLogger(t *testing.T) {
	b := NewBackend(":0", nil).(*LinuxBackend)
	if b.logger == nil {
		t.Fatalf("nil logger should fall back to a discard logger")
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	b = NewBackend(":0", logger).(*LinuxBackend)
	if b.logger != logger {
		t.Fatalf("backend should keep the given logger for window setup")
	}
}
