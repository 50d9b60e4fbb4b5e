package clipboard

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"testing"
)

type fakeSource struct {
	data  []byte
	err   error
	calls int
}

func (f *fakeSource) ReadImage() ([]byte, error) {
	f.calls++
	return f.data, f.err
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func scenarioImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{G: 255, A: 255})
	img.SetNRGBA(0, 1, color.NRGBA{B: 255, A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 0})
	return img
}

func TestGetImageDecodesPNG(t *testing.T) {
	src := &fakeSource{data: encodePNG(t, scenarioImage())}
	img, err := NewReader(src, nil).GetImage()
	if err != nil {
		t.Fatalf("GetImage: %v", err)
	}
	if img.Width() != 2 || img.Height() != 2 {
		t.Fatalf("size = %dx%d, want 2x2", img.Width(), img.Height())
	}
	if img.ByteLen() != 16 {
		t.Fatalf("byte length = %d, want 16", img.ByteLen())
	}

	want := [][4]uint8{
		{255, 0, 0, 255},
		{0, 255, 0, 255},
		{0, 0, 255, 255},
		{255, 255, 255, 0},
	}
	for i, w := range want {
		p := img.PixelAt(i)
		if got := [4]uint8{p.R, p.G, p.B, p.A}; got != w {
			t.Fatalf("pixel %d = %v, want %v", i, got, w)
		}
	}
}

func TestGetImageQueriesOnce(t *testing.T) {
	src := &fakeSource{err: ErrOccupied}
	_, _ = NewReader(src, nil).GetImage()
	if src.calls != 1 {
		t.Fatalf("expected exactly one clipboard query, got %d", src.calls)
	}
}

func TestGetImageErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		src  *fakeSource
		want *Error
	}{
		{name: "empty clipboard", src: &fakeSource{err: ErrNoImageContent}, want: ErrNoImageContent},
		{name: "empty payload", src: &fakeSource{data: nil}, want: ErrNoImageContent},
		{name: "locked clipboard", src: &fakeSource{err: NewError(Occupied, errors.New("timeout"))}, want: ErrOccupied},
		{name: "unsupported platform", src: &fakeSource{err: NewError(NotSupported, errors.New("no display"))}, want: ErrNotSupported},
		{name: "malformed bytes", src: &fakeSource{data: []byte("definitely not an image")}, want: ErrRgbaConversion},
		{name: "truncated png", src: &fakeSource{data: []byte("\x89PNG\r\n\x1a\n")}, want: ErrRgbaConversion},
		{name: "unclassified failure", src: &fakeSource{err: errors.New("boom")}, want: ErrUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := NewReader(tt.src, nil).GetImage()
			if err == nil {
				t.Fatalf("expected error, got image %+v", img)
			}
			if img != nil {
				t.Fatalf("expected nil image on failure")
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v (kind %v)", tt.want.Kind, err, KindOf(err))
			}
			for _, other := range []*Error{ErrNoImageContent, ErrRgbaConversion, ErrSizeConversion, ErrOccupied, ErrNotSupported, ErrUnknown} {
				if other.Kind != tt.want.Kind && errors.Is(err, other) {
					t.Fatalf("error %v also matches %v", err, other.Kind)
				}
			}
		})
	}
}

func TestNoImageContentMessage(t *testing.T) {
	_, err := NewReader(&fakeSource{err: ErrNoImageContent}, nil).GetImage()
	if err == nil || err.Error() != "No image content available in clipboard" {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestErrorKeepsCause(t *testing.T) {
	cause := errors.New("xgb: connection refused")
	_, err := NewReader(&fakeSource{err: NewError(NotSupported, cause)}, nil).GetImage()
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable, got %v", err)
	}
	if err.Error() != "Clipboard is not supported" {
		t.Fatalf("cause leaked into message: %q", err.Error())
	}
}

func TestDimensionsRejectsOutOfRange(t *testing.T) {
	negative := image.Rectangle{Min: image.Pt(5, 0), Max: image.Pt(0, 1)}
	if _, _, err := dimensions(negative); !errors.Is(err, ErrSizeConversion) {
		t.Fatalf("expected SizeConversionError for negative width, got %v", err)
	}

	if strconv.IntSize < 64 {
		t.Skip("int cannot exceed uint32 on this platform")
	}
	maxInt := int(^uint(0) >> 1)
	if _, _, err := dimensions(image.Rect(0, 0, 1, maxInt)); !errors.Is(err, ErrSizeConversion) {
		t.Fatalf("expected SizeConversionError for oversized height, got %v", err)
	}
}

func TestKindString(t *testing.T) {
	if got := Occupied.String(); got != "Occupied" {
		t.Fatalf("Occupied.String() = %q", got)
	}
	if got := KindOf(errors.New("plain")); got != Unknown {
		t.Fatalf("KindOf(plain) = %v, want Unknown", got)
	}
}

// withHeaderSize rewrites the IHDR dimensions of an encoded PNG.
func withHeaderSize(t *testing.T, data []byte, width, height uint32) []byte {
	t.Helper()
	out := append([]byte(nil), data...)
	if string(out[12:16]) != "IHDR" {
		t.Fatalf("unexpected first chunk %q", out[12:16])
	}
	binary.BigEndian.PutUint32(out[16:20], width)
	binary.BigEndian.PutUint32(out[20:24], height)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestGetImageRejectsOversizedHeader(t *testing.T) {
	data := withHeaderSize(t, encodePNG(t, scenarioImage()), 70000, 70000)

	_, err := NewReader(&fakeSource{data: data}, nil).GetImage()
	if !errors.Is(err, ErrSizeConversion) {
		t.Fatalf("expected SizeConversionError, got %v", err)
	}
}

func TestGetImageRejectsCorruptHeader(t *testing.T) {
	data := encodePNG(t, scenarioImage())
	data[17] ^= 0xff // IHDR checksum no longer matches

	_, err := NewReader(&fakeSource{data: data}, nil).GetImage()
	if !errors.Is(err, ErrRgbaConversion) {
		t.Fatalf("expected RgbaConversionError, got %v", err)
	}
}

func TestCheckArea(t *testing.T) {
	tests := []struct {
		w, h int
		ok   bool
	}{
		{0, 0, true},
		{2, 2, true},
		{1 << 14, 1 << 14, true},
		{1 << 14, 1<<14 + 1, false},
		{70000, 70000, false},
		{-1, 1, false},
	}
	for _, tt := range tests {
		err := checkArea(tt.w, tt.h)
		if (err == nil) != tt.ok {
			t.Fatalf("checkArea(%d, %d) = %v, want ok=%v", tt.w, tt.h, err, tt.ok)
		}
		if err != nil && !errors.Is(err, ErrSizeConversion) {
			t.Fatalf("checkArea(%d, %d) kind = %v", tt.w, tt.h, KindOf(err))
		}
	}
}
