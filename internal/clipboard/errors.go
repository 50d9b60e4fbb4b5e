package clipboard

import "errors"

// Kind classifies a clipboard failure.
type Kind int

const (
	Unknown Kind = iota
	NoImageContent
	RgbaConversionError
	SizeConversionError
	Occupied
	NotSupported
)

var kindMessages = map[Kind]string{
	Unknown:             "Unknown clipboard error",
	NoImageContent:      "No image content available in clipboard",
	RgbaConversionError: "Unable to convert clipboard contents to proper image format",
	SizeConversionError: "Unable to determine size during image conversion",
	Occupied:            "Clipboard is occupied by another process",
	NotSupported:        "Clipboard is not supported",
}

func (k Kind) String() string {
	switch k {
	case NoImageContent:
		return "NoImageContent"
	case RgbaConversionError:
		return "RgbaConversionError"
	case SizeConversionError:
		return "SizeConversionError"
	case Occupied:
		return "Occupied"
	case NotSupported:
		return "NotSupported"
	default:
		return "Unknown"
	}
}

// Error is a classified clipboard failure. The message depends only on Kind;
// the underlying cause is reachable through errors.Unwrap.
type Error struct {
	Kind Kind
	Err  error
}

// Sentinels for errors.Is.
var (
	ErrNoImageContent = &Error{Kind: NoImageContent}
	ErrRgbaConversion = &Error{Kind: RgbaConversionError}
	ErrSizeConversion = &Error{Kind: SizeConversionError}
	ErrOccupied       = &Error{Kind: Occupied}
	ErrNotSupported   = &Error{Kind: NotSupported}
	ErrUnknown        = &Error{Kind: Unknown}
)

// NewError wraps cause with the given kind.
func NewError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Err: cause}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if msg, ok := kindMessages[e.Kind]; ok {
		return msg
	}
	return kindMessages[Unknown]
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a clipboard error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil || e == nil {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of err, or Unknown when err is not a clipboard error.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return Unknown
}
