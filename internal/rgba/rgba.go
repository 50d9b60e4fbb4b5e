// Package rgba holds the canonical 8-bit RGBA pixel buffer handed from the
// clipboard reader to the viewer.
package rgba

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
)

// BytesPerPixel is the size of one red/green/blue/alpha quadruple.
const BytesPerPixel = 4

// ErrBufferSize is returned when a raw buffer does not hold width*height pixels.
var ErrBufferSize = errors.New("rgba buffer length does not match dimensions")

// Image is an immutable row-major RGBA buffer with straight (non-premultiplied)
// alpha.
type Image struct {
	width  uint32
	height uint32
	pix    []byte
}

// Pixel is a single RGBA quadruple.
type Pixel struct {
	R, G, B, A uint8
}

// FromRaw builds an Image from a raw byte buffer. The buffer is copied.
func FromRaw(width, height uint32, pix []byte) (*Image, error) {
	want := uint64(width) * uint64(height) * BytesPerPixel
	if uint64(len(pix)) != want {
		return nil, fmt.Errorf("%w: %dx%d needs %d bytes, got %d", ErrBufferSize, width, height, want, len(pix))
	}
	owned := make([]byte, len(pix))
	copy(owned, pix)
	return &Image{width: width, height: height, pix: owned}, nil
}

// Normalize converts any decoded image into a tightly packed NRGBA image whose
// origin is (0,0).
func Normalize(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if n, ok := src.(*image.NRGBA); ok {
		rowLen := b.Dx() * BytesPerPixel
		for y := 0; y < b.Dy(); y++ {
			so := n.PixOffset(b.Min.X, b.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+rowLen], n.Pix[so:so+rowLen])
		}
		return dst
	}
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

func (i *Image) Width() uint32  { return i.width }
func (i *Image) Height() uint32 { return i.height }

// Len returns the number of pixels.
func (i *Image) Len() int {
	return len(i.pix) / BytesPerPixel
}

// ByteLen returns the length of the underlying byte buffer.
func (i *Image) ByteLen() int {
	return len(i.pix)
}

// PixelAt returns the n-th pixel in row-major order.
func (i *Image) PixelAt(n int) Pixel {
	o := n * BytesPerPixel
	p := i.pix[o : o+BytesPerPixel : o+BytesPerPixel]
	return Pixel{R: p[0], G: p[1], B: p[2], A: p[3]}
}

// At returns the pixel at column x, row y.
func (i *Image) At(x, y uint32) Pixel {
	return i.PixelAt(int(y)*int(i.width) + int(x))
}

// Pixels calls fn for every pixel in row-major order until fn returns false.
func (i *Image) Pixels(fn func(n int, p Pixel) bool) {
	for n := 0; n < i.Len(); n++ {
		if !fn(n, i.PixelAt(n)) {
			return
		}
	}
}
