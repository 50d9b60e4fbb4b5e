//go:build linux

package platform

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/1broseidon/clipview/internal/x11"
)

// LinuxBackend drives windows through an X11 connection. It connects on the
// first OpenWindow call.
type LinuxBackend struct {
	display string
	logger  *slog.Logger
	conn    *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewBackend returns the platform backend for display ("" means $DISPLAY).
// A nil logger discards output.
func NewBackend(display string, logger *slog.Logger) Backend {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LinuxBackend{display: display, logger: logger}
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
		b.conn = nil
	}
}

// OpenWindow creates and maps a viewer window.
func (b *LinuxBackend) OpenWindow(opts WindowOptions) (Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	vw, err := conn.CreateViewerWindow(x11.ViewerOptions{
		Title:       opts.Title,
		Width:       opts.Width,
		Height:      opts.Height,
		Resizable:   opts.Resizable,
		Decorated:   opts.Decorated,
		AlwaysOnTop: opts.AlwaysOnTop,
		Minimize:    opts.Buttons.Has(ButtonMinimize),
		Maximize:    opts.Buttons.Has(ButtonMaximize),
		Logger:      b.logger,
	})
	if err != nil {
		return nil, err
	}
	return &linuxWindow{vw: vw}, nil
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil {
		return nil, fmt.Errorf("x11 backend is nil")
	}
	if b.conn == nil {
		conn, err := x11.NewConnection(b.display)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to X11: %w", err)
		}
		b.conn = conn
	}
	return b.conn, nil
}

type linuxWindow struct {
	vw      *x11.ViewerWindow
	surface *x11.Surface
}

func (w *linuxWindow) ID() WindowID {
	return WindowID(w.vw.ID())
}

func (w *linuxWindow) NewSurface() (Surface, error) {
	s, err := w.vw.NewSurface()
	if err != nil {
		return nil, err
	}
	w.surface = s
	return s, nil
}

func (w *linuxWindow) Run(handle func(Event) bool) error {
	id := w.ID()
	return w.vw.Run(func(ev x11.ViewerEvent) bool {
		return handle(Event{Kind: eventKind(ev), Window: id})
	})
}

func (w *linuxWindow) Destroy() {
	if w.surface != nil {
		w.surface.Destroy()
		w.surface = nil
	}
	w.vw.Destroy()
}

func eventKind(ev x11.ViewerEvent) EventKind {
	switch ev {
	case x11.ViewerRedraw:
		return EventRedraw
	case x11.ViewerClose:
		return EventClose
	default:
		return EventOther
	}
}
