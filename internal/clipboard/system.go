package clipboard

import (
	"sync"

	xclip "golang.design/x/clipboard"
)

// SystemSource reads the clipboard through golang.design/x/clipboard, which
// covers X11, Windows and macOS (cgo is required on unix).
type SystemSource struct {
	once    sync.Once
	initErr error
}

// NewSystemSource returns a source backed by the platform clipboard library.
func NewSystemSource() *SystemSource {
	return &SystemSource{}
}

func (s *SystemSource) ReadImage() ([]byte, error) {
	s.once.Do(func() {
		s.initErr = xclip.Init()
	})
	if s.initErr != nil {
		return nil, NewError(NotSupported, s.initErr)
	}

	data := xclip.Read(xclip.FmtImage)
	if len(data) == 0 {
		return nil, ErrNoImageContent
	}
	return data, nil
}
