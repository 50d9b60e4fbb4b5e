// Package intconv provides range-checked integer conversions.
package intconv

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned when a value does not fit the destination type.
var ErrOutOfRange = errors.New("integer value out of range")

// Integer is the set of integer types Checked converts between.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Checked converts v to To, failing instead of truncating or changing sign.
func Checked[To, From Integer](v From) (To, error) {
	out := To(v)
	if From(out) != v || (out < 0) != (v < 0) {
		return 0, fmt.Errorf("%w: %d", ErrOutOfRange, v)
	}
	return out, nil
}
