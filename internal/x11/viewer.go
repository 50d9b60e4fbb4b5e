package x11

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/motif"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"
)

const (
	wmClassInstance = "clipview"
	wmClassName     = "Clipview"
	stateAbove      = "_NET_WM_STATE_ABOVE"
)

// ErrLoopEnded is returned by Run when the event loop stops without a close
// request, e.g. because the X connection went away.
var ErrLoopEnded = errors.New("x11 event loop ended without a close request")

// ViewerOptions describes the viewer window.
type ViewerOptions struct {
	Title       string
	Width       uint16
	Height      uint16
	Resizable   bool
	Decorated   bool
	AlwaysOnTop bool
	Minimize    bool
	Maximize    bool
	Logger      *slog.Logger
}

// ViewerEvent is what the viewer window reports to its Run handler.
type ViewerEvent int

const (
	ViewerOther ViewerEvent = iota
	ViewerRedraw
	ViewerClose
)

// ViewerWindow is a top-level window showing a single image.
type ViewerWindow struct {
	conn   *Connection
	win    *xwindow.Window
	opts   ViewerOptions
	handle func(ViewerEvent) bool
	closed bool
}

// CreateViewerWindow creates, configures and maps the viewer window.
func (c *Connection) CreateViewerWindow(opts ViewerOptions) (*ViewerWindow, error) {
	if opts.Width == 0 || opts.Height == 0 {
		return nil, fmt.Errorf("invalid window size %dx%d", opts.Width, opts.Height)
	}

	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("allocate window id: %w", err)
	}

	x, y := centerIn(c.PlacementArea(), int(opts.Width), int(opts.Height))

	// Value list order follows the bit positions of the mask (low -> high).
	err = win.CreateChecked(
		c.Root,
		x, y,
		int(opts.Width), int(opts.Height),
		xproto.CwBackPixel|xproto.CwEventMask,
		0, // back_pixel=black
		xproto.EventMaskExposure|xproto.EventMaskStructureNotify,
	)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	v := &ViewerWindow{conn: c, win: win, opts: opts}
	if err := v.setHints(x, y); err != nil {
		win.Destroy()
		return nil, err
	}
	v.connectHandlers()

	win.Map()
	if opts.AlwaysOnTop {
		// Some window managers only honor state changes sent after mapping.
		if err := ewmh.WmStateReq(c.XUtil, win.Id, ewmh.StateAdd, stateAbove); err != nil {
			opts.Logger.Debug("keep-above request failed", "window", win.Id, "error", err)
		}
	}
	return v, nil
}

func (v *ViewerWindow) setHints(x, y int) error {
	xu := v.conn.XUtil
	id := v.win.Id

	if err := icccm.WmNameSet(xu, id, v.opts.Title); err != nil {
		return fmt.Errorf("set WM_NAME: %w", err)
	}
	if err := ewmh.WmNameSet(xu, id, v.opts.Title); err != nil {
		return fmt.Errorf("set _NET_WM_NAME: %w", err)
	}
	if err := icccm.WmClassSet(xu, id, &icccm.WmClass{Instance: wmClassInstance, Class: wmClassName}); err != nil {
		return fmt.Errorf("set WM_CLASS: %w", err)
	}
	if err := icccm.WmNormalHintsSet(xu, id, normalHints(v.opts, x, y)); err != nil {
		return fmt.Errorf("set WM_NORMAL_HINTS: %w", err)
	}
	if err := motif.WmHintsSet(xu, id, motifHints(v.opts)); err != nil {
		return fmt.Errorf("set _MOTIF_WM_HINTS: %w", err)
	}
	if v.opts.AlwaysOnTop {
		if err := ewmh.WmStateSet(xu, id, []string{stateAbove}); err != nil {
			return fmt.Errorf("set _NET_WM_STATE: %w", err)
		}
	}
	return nil
}

func (v *ViewerWindow) connectHandlers() {
	xu := v.conn.XUtil

	// Only the last Expose of a series triggers a repaint.
	xevent.ExposeFun(func(_ *xgbutil.XUtil, ev xevent.ExposeEvent) {
		if ev.Count == 0 {
			v.dispatch(ViewerRedraw)
		}
	}).Connect(xu, v.win.Id)

	xevent.ConfigureNotifyFun(func(_ *xgbutil.XUtil, _ xevent.ConfigureNotifyEvent) {
		v.dispatch(ViewerOther)
	}).Connect(xu, v.win.Id)

	// Registers WM_DELETE_WINDOW in WM_PROTOCOLS and routes the close request.
	v.win.WMGracefulClose(func(*xwindow.Window) {
		v.dispatch(ViewerClose)
	})
}

func (v *ViewerWindow) dispatch(ev ViewerEvent) {
	if v.handle == nil || v.closed {
		return
	}
	if !v.handle(ev) {
		v.closed = true
		v.conn.Quit()
	}
}

// ID returns the X window id.
func (v *ViewerWindow) ID() xproto.Window {
	return v.win.Id
}

// Run blocks in the X event loop, passing viewer events to handle until it
// returns false.
func (v *ViewerWindow) Run(handle func(ViewerEvent) bool) error {
	v.handle = handle
	v.closed = false
	v.conn.EventLoop()
	if !v.closed {
		return ErrLoopEnded
	}
	return nil
}

// Destroy detaches event handlers and destroys the window.
func (v *ViewerWindow) Destroy() {
	xevent.Detach(v.conn.XUtil, v.win.Id)
	v.win.Destroy()
}

func normalHints(opts ViewerOptions, x, y int) *icccm.NormalHints {
	nh := &icccm.NormalHints{
		Flags:  icccm.SizeHintPPosition | icccm.SizeHintPSize,
		X:      x,
		Y:      y,
		Width:  uint(opts.Width),
		Height: uint(opts.Height),
	}
	if !opts.Resizable {
		nh.Flags |= icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize
		nh.MinWidth, nh.MaxWidth = uint(opts.Width), uint(opts.Width)
		nh.MinHeight, nh.MaxHeight = uint(opts.Height), uint(opts.Height)
	}
	return nh
}

func motifHints(opts ViewerOptions) *motif.Hints {
	h := &motif.Hints{
		Flags:    motif.HintFunctions | motif.HintDecorations,
		Function: motif.FunctionMove | motif.FunctionClose,
	}
	if opts.Resizable {
		h.Function |= motif.FunctionResize
	}
	if opts.Minimize {
		h.Function |= motif.FunctionMinimize
	}
	if opts.Maximize {
		h.Function |= motif.FunctionMaximize
	}

	if !opts.Decorated {
		h.Decoration = motif.DecorationNone
		return h
	}
	h.Decoration = motif.DecorationBorder | motif.DecorationTitle | motif.DecorationMenu
	if opts.Resizable {
		h.Decoration |= motif.DecorationResizeH
	}
	if opts.Minimize {
		h.Decoration |= motif.DecorationMinimize
	}
	if opts.Maximize {
		h.Decoration |= motif.DecorationMaximize
	}
	return h
}
