// Package display shows an rgba.Image in a fixed-size, always-on-top window
// and blocks until the user closes it.
package display

import (
	"io"
	"log/slog"

	"github.com/1broseidon/clipview/internal/intconv"
	"github.com/1broseidon/clipview/internal/platform"
	"github.com/1broseidon/clipview/internal/rgba"
)

// DefaultTitle is the window title used when none is configured.
const DefaultTitle = "clipview"

// Options configures a Viewer.
type Options struct {
	Title  string
	Logger *slog.Logger
}

// Viewer opens images through a platform backend.
type Viewer struct {
	backend platform.Backend
	title   string
	logger  *slog.Logger
}

// NewViewer creates a Viewer that opens windows through backend.
func NewViewer(backend platform.Backend, opts Options) *Viewer {
	v := &Viewer{backend: backend, title: opts.Title, logger: opts.Logger}
	if v.title == "" {
		v.title = DefaultTitle
	}
	if v.logger == nil {
		v.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return v
}

// OpenRGBA shows img and blocks until the window receives a close request.
func (v *Viewer) OpenRGBA(img *rgba.Image) error {
	width, err := intconv.Checked[uint16](img.Width())
	if err != nil {
		return newError(SizeConversionError, err)
	}
	height, err := intconv.Checked[uint16](img.Height())
	if err != nil {
		return newError(SizeConversionError, err)
	}

	buf, err := Pack(img)
	if err != nil {
		return err
	}

	win, err := v.backend.OpenWindow(platform.WindowOptions{
		Title:       v.title,
		Width:       width,
		Height:      height,
		Resizable:   false,
		Decorated:   true,
		AlwaysOnTop: true,
		Buttons:     platform.ButtonClose,
	})
	if err != nil {
		return newError(OpenError, err)
	}
	defer win.Destroy()

	surface, err := win.NewSurface()
	if err != nil {
		return newError(SurfaceError, err)
	}
	v.logger.Debug("window opened", "window", win.ID(), "width", width, "height", height)

	return v.loop(win, surface, buf, width, height)
}

// loop presents buf on every redraw of win and returns after a close request.
func (v *Viewer) loop(win platform.Window, surface platform.Surface, buf []uint32, width, height uint16) error {
	id := win.ID()
	redraws := 0
	err := win.Run(func(ev platform.Event) bool {
		if ev.Window != id {
			return true
		}
		switch ev.Kind {
		case platform.EventRedraw:
			redraws++
			if err := surface.SetBuffer(buf, width, height); err != nil {
				v.logger.Warn("redraw failed", "window", id, "error", err)
			}
			return true
		case platform.EventClose:
			v.logger.Debug("close requested", "window", id, "redraws", redraws)
			return false
		default:
			return true
		}
	})
	if err != nil {
		return newError(OpenError, err)
	}
	return nil
}

// Pack converts img to one 0x00RRGGBB value per pixel in row-major order.
// Alpha is discarded.
func Pack(img *rgba.Image) ([]uint32, error) {
	buf := make([]uint32, img.Len())
	var packErr error
	img.Pixels(func(n int, p rgba.Pixel) bool {
		v, err := packPixel(p)
		if err != nil {
			packErr = newError(SizeConversionError, err)
			return false
		}
		buf[n] = v
		return true
	})
	if packErr != nil {
		return nil, packErr
	}
	return buf, nil
}

func packPixel(p rgba.Pixel) (uint32, error) {
	r, err := intconv.Checked[uint32](p.R)
	if err != nil {
		return 0, err
	}
	g, err := intconv.Checked[uint32](p.G)
	if err != nil {
		return 0, err
	}
	b, err := intconv.Checked[uint32](p.B)
	if err != nil {
		return 0, err
	}
	return b | g<<8 | r<<16, nil
}
