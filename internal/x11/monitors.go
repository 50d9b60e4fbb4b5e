package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

func (m Monitor) contains(x, y int) bool {
	return x >= m.X && x < m.X+m.Width && y >= m.Y && y < m.Y+m.Height
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Disabled CRTCs report no size or no outputs.
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(c.XUtil.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   name,
			X:      int(info.X),
			Y:      int(info.Y),
			Width:  int(info.Width),
			Height: int(info.Height),
		})
	}

	return monitors, nil
}

// PlacementArea returns the region a new window should be centered in: the
// monitor under the pointer, clipped to the EWMH work area. Without RandR it
// falls back to the whole screen.
func (c *Connection) PlacementArea() Monitor {
	screen := c.XUtil.Screen()
	area := Monitor{Name: "screen", Width: int(screen.WidthInPixels), Height: int(screen.HeightInPixels)}

	if monitors, err := c.GetMonitors(); err == nil && len(monitors) > 0 {
		area = monitors[0]
		if pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply(); err == nil {
			for _, m := range monitors {
				if m.contains(int(pointer.RootX), int(pointer.RootY)) {
					area = m
					break
				}
			}
		}
	}

	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return area
	}
	desktop := 0
	if current, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(current) < len(workArea) {
		desktop = int(current)
	}
	wa := workArea[desktop]
	return clipArea(area, Monitor{X: wa.X, Y: wa.Y, Width: int(wa.Width), Height: int(wa.Height)})
}

// clipArea intersects a with b, keeping a when they do not overlap.
func clipArea(a, b Monitor) Monitor {
	x1 := max(a.X, b.X)
	y1 := max(a.Y, b.Y)
	x2 := min(a.X+a.Width, b.X+b.Width)
	y2 := min(a.Y+a.Height, b.Y+b.Height)
	if x2 <= x1 || y2 <= y1 {
		return a
	}
	a.X, a.Y = x1, y1
	a.Width, a.Height = x2-x1, y2-y1
	return a
}

// centerIn returns the top-left corner that centers a width x height window
// inside area, pinned to the area's origin when the window is larger.
func centerIn(area Monitor, width, height int) (int, int) {
	x := area.X + (area.Width-width)/2
	y := area.Y + (area.Height-height)/2
	return max(x, area.X), max(y, area.Y)
}
