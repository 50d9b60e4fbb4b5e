package display

// Kind classifies a display failure.
type Kind int

const (
	OpenError Kind = iota
	SurfaceError
	SizeConversionError
)

func (k Kind) String() string {
	switch k {
	case SurfaceError:
		return "SurfaceError"
	case SizeConversionError:
		return "SizeConversionError"
	default:
		return "OpenError"
	}
}

// Error is a classified display failure. The message depends only on Kind;
// OpenError and SurfaceError share a message but stay distinct for Is.
type Error struct {
	Kind Kind
	Err  error
}

// Sentinels for errors.Is.
var (
	ErrOpen           = &Error{Kind: OpenError}
	ErrSurface        = &Error{Kind: SurfaceError}
	ErrSizeConversion = &Error{Kind: SizeConversionError}
)

func newError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Err: cause}
}

func (e *Error) Error() string {
	switch e.Kind {
	case SizeConversionError:
		return "Unable to determine size during image conversion"
	default:
		return "Unable to open window"
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a display error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t != nil && t.Kind == e.Kind
}
