package x11

import (
	"fmt"
	"image"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xgraphics"
)

// minSurfaceDepth is the smallest root depth xgraphics can draw BGRA into.
const minSurfaceDepth = 24

// Surface is an off-screen pixmap painted as the viewer window's background.
type Surface struct {
	img *xgraphics.Image
	win xproto.Window
}

// NewSurface binds a pixmap surface of the window's size.
func (v *ViewerWindow) NewSurface() (*Surface, error) {
	xu := v.conn.XUtil
	if depth := xu.Screen().RootDepth; depth < minSurfaceDepth {
		return nil, fmt.Errorf("unsupported screen depth %d (need >= %d)", depth, minSurfaceDepth)
	}

	img := xgraphics.New(xu, image.Rect(0, 0, int(v.opts.Width), int(v.opts.Height)))
	if err := img.XSurfaceSet(v.win.Id); err != nil {
		img.Destroy()
		return nil, fmt.Errorf("create pixmap: %w", err)
	}
	return &Surface{img: img, win: v.win.Id}, nil
}

// SetBuffer copies packed 0x00RRGGBB pixels into the surface and paints it.
func (s *Surface) SetBuffer(buf []uint32, width, height uint16) error {
	if b := s.img.Rect; b.Dx() != int(width) || b.Dy() != int(height) {
		return fmt.Errorf("buffer is %dx%d, surface is %dx%d", width, height, b.Dx(), b.Dy())
	}
	if err := fillBGRA(s.img.Pix, s.img.Stride, buf, int(width), int(height)); err != nil {
		return err
	}
	s.img.XDraw()
	s.img.XPaint(s.win)
	return nil
}

// Destroy frees the pixmap.
func (s *Surface) Destroy() {
	s.img.Destroy()
}

// fillBGRA writes packed pixels into an xgraphics BGRA buffer.
func fillBGRA(pix []byte, stride int, buf []uint32, width, height int) error {
	if len(buf) != width*height {
		return fmt.Errorf("buffer holds %d pixels, want %d", len(buf), width*height)
	}
	if height > 0 && len(pix) < (height-1)*stride+width*4 {
		return fmt.Errorf("surface too small: %d bytes for %dx%d", len(pix), width, height)
	}
	for y := 0; y < height; y++ {
		row := pix[y*stride:]
		for x, v := range buf[y*width : (y+1)*width] {
			o := x * 4
			row[o] = byte(v)
			row[o+1] = byte(v >> 8)
			row[o+2] = byte(v >> 16)
			row[o+3] = 0xff
		}
	}
	return nil
}
