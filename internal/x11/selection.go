package x11

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/clipview/internal/clipboard"
)

// DefaultSelectionTimeout bounds how long the selection owner may take to
// answer a single conversion request.
const DefaultSelectionTimeout = 2 * time.Second

// propertyChunk is the GetProperty read size, in 32-bit units.
const propertyChunk = 1 << 18

// ImageTargets lists the image MIME types requested from the selection owner,
// most preferred first.
var ImageTargets = []string{
	"image/png",
	"image/bmp",
	"image/tiff",
	"image/jpeg",
	"image/webp",
	"image/gif",
}

var (
	errOwnerTimeout   = errors.New("selection owner did not answer in time")
	errConnClosed     = errors.New("x connection closed during transfer")
	errConvertRefused = errors.New("selection owner refused the conversion")
)

// SelectionReader reads image data from an X selection using the ICCCM
// ConvertSelection protocol.
type SelectionReader struct {
	Display   string
	Selection string
	Timeout   time.Duration
}

// NewSelectionReader returns a reader for the CLIPBOARD selection.
func NewSelectionReader(display string, timeout time.Duration) *SelectionReader {
	if timeout <= 0 {
		timeout = DefaultSelectionTimeout
	}
	return &SelectionReader{Display: display, Selection: "CLIPBOARD", Timeout: timeout}
}

// ReadImage implements clipboard.Source.
func (r *SelectionReader) ReadImage() ([]byte, error) {
	conn, err := NewConnection(r.Display)
	if err != nil {
		return nil, clipboard.NewError(clipboard.NotSupported, err)
	}
	defer conn.Close()

	s, err := newTransfer(conn, r.Selection, r.Timeout)
	if err != nil {
		return nil, clipboard.NewError(clipboard.Unknown, err)
	}
	defer s.close()

	owner, err := xproto.GetSelectionOwner(conn.XUtil.Conn(), s.selection).Reply()
	if err != nil {
		return nil, clipboard.NewError(clipboard.Unknown, err)
	}
	if owner.Owner == xproto.WindowNone {
		return nil, clipboard.ErrNoImageContent
	}

	targets, err := s.targets()
	if err != nil {
		return nil, classifyTransferError(err)
	}
	target, ok := pickImageTarget(targets)
	if !ok {
		return nil, clipboard.NewError(clipboard.NoImageContent, fmt.Errorf("no image target among %v", targets))
	}

	data, err := s.convert(target)
	if err != nil {
		return nil, classifyTransferError(err)
	}
	return data, nil
}

func classifyTransferError(err error) error {
	switch {
	case errors.Is(err, errOwnerTimeout):
		return clipboard.NewError(clipboard.Occupied, err)
	default:
		return clipboard.NewError(clipboard.Unknown, err)
	}
}

// pickImageTarget returns the most preferred image target the owner offers.
func pickImageTarget(offered []string) (string, bool) {
	have := make(map[string]struct{}, len(offered))
	for _, t := range offered {
		have[t] = struct{}{}
	}
	for _, want := range ImageTargets {
		if _, ok := have[want]; ok {
			return want, true
		}
	}
	return "", false
}

// transfer owns the hidden requestor window and the event pump for one read.
type transfer struct {
	xu        *xgbutil.XUtil
	win       *xwindow.Window
	selection xproto.Atom
	property  xproto.Atom
	incr      xproto.Atom
	timeout   time.Duration
	events    chan xgb.Event
	done      chan struct{}
}

func newTransfer(conn *Connection, selection string, timeout time.Duration) (*transfer, error) {
	xu := conn.XUtil
	s := &transfer{xu: xu, timeout: timeout}

	var err error
	if s.selection, err = xprop.Atm(xu, selection); err != nil {
		return nil, err
	}
	if s.property, err = xprop.Atm(xu, "CLIPVIEW_SELECTION"); err != nil {
		return nil, err
	}
	if s.incr, err = xprop.Atm(xu, "INCR"); err != nil {
		return nil, err
	}

	if s.win, err = xwindow.Generate(xu); err != nil {
		return nil, err
	}
	err = s.win.CreateChecked(conn.Root, 0, 0, 1, 1,
		xproto.CwEventMask, xproto.EventMaskPropertyChange)
	if err != nil {
		return nil, fmt.Errorf("create requestor window: %w", err)
	}

	s.events = make(chan xgb.Event, 16)
	s.done = make(chan struct{})
	go s.pump()
	return s, nil
}

// pump forwards X events until the connection closes or the transfer ends.
func (s *transfer) pump() {
	defer close(s.events)
	for {
		ev, err := s.xu.Conn().WaitForEvent()
		if ev == nil && err == nil {
			return
		}
		if ev == nil {
			continue
		}
		select {
		case s.events <- ev:
		case <-s.done:
			return
		}
	}
}

func (s *transfer) close() {
	close(s.done)
	s.win.Destroy()
}

// await returns the first event accepted by match.
func (s *transfer) await(match func(xgb.Event) bool) (xgb.Event, error) {
	timer := time.NewTimer(s.timeout)
	defer timer.Stop()
	for {
		select {
		case ev, ok := <-s.events:
			if !ok {
				return nil, errConnClosed
			}
			if match(ev) {
				return ev, nil
			}
		case <-timer.C:
			return nil, errOwnerTimeout
		}
	}
}

func (s *transfer) targets() ([]string, error) {
	reply, err := s.request("TARGETS")
	if err != nil {
		return nil, err
	}
	return xprop.PropValAtoms(s.xu, reply, nil)
}

// convert fetches the selection as target, following INCR transfers.
func (s *transfer) convert(target string) ([]byte, error) {
	reply, err := s.request(target)
	if err != nil {
		return nil, err
	}
	if reply.Type != s.incr {
		return reply.Value, nil
	}
	return s.receiveIncr()
}

// request asks the owner to convert the selection to target and returns the
// complete property it wrote.
func (s *transfer) request(target string) (*xproto.GetPropertyReply, error) {
	atom, err := xprop.Atm(s.xu, target)
	if err != nil {
		return nil, err
	}
	xproto.ConvertSelection(s.xu.Conn(), s.win.Id, s.selection, atom, s.property, xproto.TimeCurrentTime)

	ev, err := s.await(func(ev xgb.Event) bool {
		sn, ok := ev.(xproto.SelectionNotifyEvent)
		return ok && sn.Requestor == s.win.Id && sn.Selection == s.selection
	})
	if err != nil {
		return nil, err
	}
	if ev.(xproto.SelectionNotifyEvent).Property == xproto.AtomNone {
		return nil, fmt.Errorf("%w: %s", errConvertRefused, target)
	}
	return s.readProperty()
}

// readProperty reads and deletes the transfer property.
func (s *transfer) readProperty() (*xproto.GetPropertyReply, error) {
	var (
		out    *xproto.GetPropertyReply
		offset uint32
	)
	for {
		reply, err := xproto.GetProperty(s.xu.Conn(), true, s.win.Id, s.property,
			xproto.GetPropertyTypeAny, offset, propertyChunk).Reply()
		if err != nil {
			return nil, fmt.Errorf("read selection property: %w", err)
		}
		if out == nil {
			out = reply
		} else {
			out.Value = append(out.Value, reply.Value...)
			out.ValueLen += reply.ValueLen
		}
		if reply.BytesAfter == 0 {
			return out, nil
		}
		offset += uint32(len(reply.Value)) / 4
	}
}

// receiveIncr collects an INCR transfer: after the INCR marker is deleted the
// owner writes successive chunks, ending with a zero-length one.
func (s *transfer) receiveIncr() ([]byte, error) {
	var asm incrAssembler
	for {
		_, err := s.await(func(ev xgb.Event) bool {
			pn, ok := ev.(xproto.PropertyNotifyEvent)
			return ok && pn.Window == s.win.Id && pn.Atom == s.property && pn.State == xproto.PropertyNewValue
		})
		if err != nil {
			return nil, err
		}
		reply, err := s.readProperty()
		if err != nil {
			return nil, err
		}
		if asm.add(reply.Value) {
			return asm.bytes(), nil
		}
	}
}

type incrAssembler struct {
	buf []byte
}

// add appends a chunk and reports whether the transfer is complete.
func (a *incrAssembler) add(chunk []byte) bool {
	if len(chunk) == 0 {
		return true
	}
	a.buf = append(a.buf, chunk...)
	return false
}

func (a *incrAssembler) bytes() []byte {
	return a.buf
}
