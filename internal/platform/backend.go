package platform

import "errors"

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// ErrUnsupported is returned by backends for window systems clipview cannot drive.
var ErrUnsupported = errors.New("no supported window system")

// Buttons is a set of title bar buttons.
type Buttons uint8

const (
	ButtonClose Buttons = 1 << iota
	ButtonMinimize
	ButtonMaximize
)

// Has reports whether b contains every button in other.
func (b Buttons) Has(other Buttons) bool {
	return b&other == other
}

// WindowOptions describes the window a backend should create.
type WindowOptions struct {
	Title       string
	Width       uint16
	Height      uint16
	Resizable   bool
	Decorated   bool
	AlwaysOnTop bool
	Buttons     Buttons
}

// EventKind classifies window events delivered to Window.Run handlers.
type EventKind int

const (
	EventOther EventKind = iota
	EventRedraw
	EventClose
)

// Event is a single window-system event.
type Event struct {
	Kind   EventKind
	Window WindowID
}

// Surface is the drawable memory region bound to a window.
type Surface interface {
	// SetBuffer copies buf (one 0x00RRGGBB value per pixel, row-major) into
	// the surface and presents it.
	SetBuffer(buf []uint32, width, height uint16) error
}

// Window is a top-level window owned by the caller.
type Window interface {
	ID() WindowID
	NewSurface() (Surface, error)
	// Run dispatches events to handle until it returns false. It blocks on
	// the window system's event queue between events.
	Run(handle func(Event) bool) error
	Destroy()
}

// Backend abstracts window-system operations across platforms.
type Backend interface {
	OpenWindow(opts WindowOptions) (Window, error)
	Disconnect()
}
