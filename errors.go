package heapslice

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyConfigured is returned by Configure once the process-wide
	// allocator has been used or installed.
	ErrAlreadyConfigured = errors.New("heapslice: allocator already configured")

	// ErrInvalidUTF8 is matched by every *InvalidUTF8Error.
	ErrInvalidUTF8 = errors.New("heapslice: invalid utf-8")
)

// InvalidUTF8Error reports bytes rejected by StrFromBytes.
//
// The rejected container is handed back unconsumed through IntoBytes.
type InvalidUTF8Error struct {
	// Offset is the length of the longest valid UTF-8 prefix.
	Offset int
	// Length is the number of bytes forming the invalid sequence at Offset,
	// or 0 when the input ends in the middle of a sequence.
	Length int

	bytes Bytes
}

func (e *InvalidUTF8Error) Error() string {
	if e.Length == 0 {
		return fmt.Sprintf("incomplete utf-8 byte sequence from index %d", e.Offset)
	}
	return fmt.Sprintf("invalid utf-8 sequence of %d bytes from index %d", e.Length, e.Offset)
}

// Is reports whether target is ErrInvalidUTF8.
func (e *InvalidUTF8Error) Is(target error) bool { return target == ErrInvalidUTF8 }

// IntoBytes returns the rejected byte container. It can be called once;
// later calls return an absent Bytes.
func (e *InvalidUTF8Error) IntoBytes() Bytes {
	b := e.bytes
	e.bytes = Bytes{}
	return b
}
