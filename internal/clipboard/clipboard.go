// Package clipboard reads the image currently held on the system clipboard
// and normalizes it into an rgba.Image.
package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"

	// Decoders for the formats clipboard owners commonly offer.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/1broseidon/clipview/internal/intconv"
	"github.com/1broseidon/clipview/internal/rgba"
)

// Source delivers the encoded image bytes currently on a clipboard.
//
// Implementations report classified failures as *Error. Any other error is
// treated as Unknown.
type Source interface {
	ReadImage() ([]byte, error)
}

// Reader performs a single clipboard image query.
type Reader struct {
	source Source
	logger *slog.Logger
}

// NewReader creates a Reader over src. A nil logger discards output.
func NewReader(src Source, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Reader{source: src, logger: logger}
}

// GetImage queries the clipboard once and returns its image.
func (r *Reader) GetImage() (*rgba.Image, error) {
	data, err := r.source.ReadImage()
	if err != nil {
		r.logger.Debug("clipboard read failed", "error", err)
		return nil, classify(err)
	}
	if len(data) == 0 {
		return nil, ErrNoImageContent
	}
	r.logger.Debug("clipboard image read", "bytes", len(data))

	img, err := Decode(data)
	if err != nil {
		r.logger.Debug("clipboard image conversion failed", "error", err)
		return nil, err
	}
	r.logger.Info("clipboard image ready", "width", img.Width(), "height", img.Height())
	return img, nil
}

// MaxPixels bounds the decoded image area. Larger images are rejected from
// their header, before any pixel memory is allocated.
const MaxPixels = 1 << 28

// Decode turns encoded image bytes into an rgba.Image.
func Decode(data []byte) (*rgba.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, NewError(RgbaConversionError, err)
	}
	if err := checkArea(cfg.Width, cfg.Height); err != nil {
		return nil, err
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, NewError(RgbaConversionError, err)
	}
	nrgba := rgba.Normalize(src)

	width, height, err := dimensions(nrgba.Bounds())
	if err != nil {
		return nil, err
	}
	img, err := rgba.FromRaw(width, height, nrgba.Pix)
	if err != nil {
		return nil, NewError(RgbaConversionError, err)
	}
	return img, nil
}

func checkArea(width, height int) error {
	if width < 0 || height < 0 {
		return NewError(SizeConversionError, fmt.Errorf("negative image size %dx%d", width, height))
	}
	if width > 0 && height > MaxPixels/width {
		return NewError(SizeConversionError, fmt.Errorf("image %dx%d exceeds %d pixels", width, height, MaxPixels))
	}
	return nil
}

func dimensions(b image.Rectangle) (uint32, uint32, error) {
	width, err := intconv.Checked[uint32](b.Dx())
	if err != nil {
		return 0, 0, NewError(SizeConversionError, err)
	}
	height, err := intconv.Checked[uint32](b.Dy())
	if err != nil {
		return 0, 0, NewError(SizeConversionError, err)
	}
	return width, height, nil
}

func classify(err error) error {
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	return NewError(Unknown, err)
}
