package x11

import (
	"errors"
	"testing"
	"time"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/motif"

	"github.com/1broseidon/clipview/internal/clipboard"
)

func TestPickImageTargetPrefersPNG(t *testing.T) {
	offered := []string{"TARGETS", "TIMESTAMP", "image/jpeg", "image/png", "text/plain"}
	got, ok := pickImageTarget(offered)
	if !ok || got != "image/png" {
		t.Fatalf("expected image/png, got %q (ok=%v)", got, ok)
	}
}

func TestPickImageTargetFallsBack(t *testing.T) {
	got, ok := pickImageTarget([]string{"image/gif", "image/bmp"})
	if !ok || got != "image/bmp" {
		t.Fatalf("expected image/bmp, got %q (ok=%v)", got, ok)
	}
}

func TestPickImageTargetNoImage(t *testing.T) {
	if got, ok := pickImageTarget([]string{"UTF8_STRING", "text/plain"}); ok {
		t.Fatalf("expected no target, got %q", got)
	}
}

func TestClassifyTransferError(t *testing.T) {
	if err := classifyTransferError(errOwnerTimeout); !errors.Is(err, clipboard.ErrOccupied) {
		t.Fatalf("timeout should map to Occupied, got %v", err)
	}
	if err := classifyTransferError(errConvertRefused); !errors.Is(err, clipboard.ErrUnknown) {
		t.Fatalf("refusal should map to Unknown, got %v", err)
	}
	if err := classifyTransferError(errConnClosed); !errors.Is(err, errConnClosed) {
		t.Fatalf("cause should stay reachable, got %v", err)
	}
}

func TestIncrAssembler(t *testing.T) {
	var a incrAssembler
	if a.add([]byte("ab")) {
		t.Fatalf("non-empty chunk must not finish the transfer")
	}
	if a.add([]byte("cd")) {
		t.Fatalf("non-empty chunk must not finish the transfer")
	}
	if !a.add(nil) {
		t.Fatalf("empty chunk must finish the transfer")
	}
	if got := string(a.bytes()); got != "abcd" {
		t.Fatalf("assembled %q, want %q", got, "abcd")
	}
}

func TestFillBGRA(t *testing.T) {
	// 2x2 image with a padded stride of 12 bytes.
	stride := 12
	pix := make([]byte, stride*2)
	buf := []uint32{0xFF0000, 0x00FF00, 0x0000FF, 0x123456}

	if err := fillBGRA(pix, stride, buf, 2, 2); err != nil {
		t.Fatalf("fillBGRA: %v", err)
	}

	want := map[int][4]byte{
		0:          {0x00, 0x00, 0xFF, 0xFF},
		4:          {0x00, 0xFF, 0x00, 0xFF},
		stride:     {0xFF, 0x00, 0x00, 0xFF},
		stride + 4: {0x56, 0x34, 0x12, 0xFF},
	}
	for off, w := range want {
		got := [4]byte{pix[off], pix[off+1], pix[off+2], pix[off+3]}
		if got != w {
			t.Fatalf("pixel at %d = %v, want %v", off, got, w)
		}
	}
	if pix[8] != 0 || pix[stride+8] != 0 {
		t.Fatalf("padding bytes were written")
	}
}

func TestFillBGRARejectsMismatchedBuffer(t *testing.T) {
	if err := fillBGRA(make([]byte, 16), 8, []uint32{1, 2, 3}, 2, 2); err == nil {
		t.Fatalf("expected error for short buffer")
	}
	if err := fillBGRA(make([]byte, 4), 8, []uint32{1, 2, 3, 4}, 2, 2); err == nil {
		t.Fatalf("expected error for short surface")
	}
}

func TestNormalHintsFixSizeWhenNotResizable(t *testing.T) {
	nh := normalHints(ViewerOptions{Width: 640, Height: 480}, 10, 20)
	if nh.Flags&icccm.SizeHintPMinSize == 0 || nh.Flags&icccm.SizeHintPMaxSize == 0 {
		t.Fatalf("expected min and max size flags, got %b", nh.Flags)
	}
	if nh.MinWidth != 640 || nh.MaxWidth != 640 || nh.MinHeight != 480 || nh.MaxHeight != 480 {
		t.Fatalf("expected min=max=640x480, got %+v", nh)
	}
	if nh.X != 10 || nh.Y != 20 {
		t.Fatalf("expected position 10,20, got %d,%d", nh.X, nh.Y)
	}

	resizable := normalHints(ViewerOptions{Width: 640, Height: 480, Resizable: true}, 0, 0)
	if resizable.Flags&icccm.SizeHintPMaxSize != 0 {
		t.Fatalf("resizable window must not pin its max size")
	}
}

func TestMotifHintsCloseOnly(t *testing.T) {
	h := motifHints(ViewerOptions{Decorated: true})
	if h.Function&motif.FunctionClose == 0 || h.Function&motif.FunctionMove == 0 {
		t.Fatalf("expected move and close functions, got %b", h.Function)
	}
	for _, f := range []uint{motif.FunctionMinimize, motif.FunctionMaximize, motif.FunctionResize} {
		if h.Function&f != 0 {
			t.Fatalf("unexpected function bit %b in %b", f, h.Function)
		}
	}
	if h.Decoration&motif.DecorationTitle == 0 {
		t.Fatalf("expected title bar decoration, got %b", h.Decoration)
	}
	for _, d := range []uint{motif.DecorationMinimize, motif.DecorationMaximize, motif.DecorationResizeH} {
		if h.Decoration&d != 0 {
			t.Fatalf("unexpected decoration bit %b in %b", d, h.Decoration)
		}
	}

	bare := motifHints(ViewerOptions{})
	if bare.Decoration != motif.DecorationNone {
		t.Fatalf("undecorated window should have no decorations, got %b", bare.Decoration)
	}
}

func TestCenterIn(t *testing.T) {
	area := Monitor{X: 1920, Y: 0, Width: 1920, Height: 1080}
	x, y := centerIn(area, 200, 100)
	if x != 1920+860 || y != 490 {
		t.Fatalf("got %d,%d", x, y)
	}

	x, y = centerIn(area, 4000, 3000)
	if x != 1920 || y != 0 {
		t.Fatalf("oversized window should pin to area origin, got %d,%d", x, y)
	}
}

func TestClipArea(t *testing.T) {
	mon := Monitor{Name: "DP-1", X: 0, Y: 0, Width: 1920, Height: 1080}
	got := clipArea(mon, Monitor{X: 0, Y: 32, Width: 3840, Height: 1048})
	if got.Y != 32 || got.Height != 1048 || got.Width != 1920 || got.Name != "DP-1" {
		t.Fatalf("unexpected clip result %+v", got)
	}

	disjoint := clipArea(mon, Monitor{X: 5000, Y: 0, Width: 10, Height: 10})
	if disjoint != mon {
		t.Fatalf("disjoint work area should leave monitor unchanged, got %+v", disjoint)
	}
}

func TestNewSelectionReaderDefaults(t *testing.T) {
	r := NewSelectionReader("", 0)
	if r.Timeout != DefaultSelectionTimeout || r.Selection != "CLIPBOARD" {
		t.Fatalf("unexpected defaults %+v", r)
	}
}

func isSelectionNotify(ev xgb.Event) bool {
	_, ok := ev.(xproto.SelectionNotifyEvent)
	return ok
}

func TestAwaitTimesOutAsOccupied(t *testing.T) {
	s := &transfer{timeout: 20 * time.Millisecond, events: make(chan xgb.Event)}

	start := time.Now()
	_, err := s.await(isSelectionNotify)
	if !errors.Is(err, errOwnerTimeout) {
		t.Fatalf("expected owner timeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("await returned after %v, before the timeout", elapsed)
	}
	if !errors.Is(classifyTransferError(err), clipboard.ErrOccupied) {
		t.Fatalf("timeout should classify as Occupied")
	}
}

func TestAwaitSkipsUnrelatedEvents(t *testing.T) {
	events := make(chan xgb.Event, 3)
	events <- xproto.PropertyNotifyEvent{State: xproto.PropertyNewValue}
	events <- xproto.PropertyNotifyEvent{State: xproto.PropertyDelete}
	events <- xproto.SelectionNotifyEvent{Property: 42}
	s := &transfer{timeout: time.Second, events: events}

	ev, err := s.await(isSelectionNotify)
	if err != nil {
		t.Fatalf("await: %v", err)
	}
	if sn := ev.(xproto.SelectionNotifyEvent); sn.Property != 42 {
		t.Fatalf("unexpected event %v", sn)
	}
}

func TestAwaitClosedConnection(t *testing.T) {
	events := make(chan xgb.Event)
	close(events)
	s := &transfer{timeout: time.Second, events: events}

	_, err := s.await(isSelectionNotify)
	if !errors.Is(err, errConnClosed) {
		t.Fatalf("expected closed connection error, got %v", err)
	}
	if !errors.Is(classifyTransferError(err), clipboard.ErrUnknown) {
		t.Fatalf("closed connection should classify as Unknown")
	}
}
