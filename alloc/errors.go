package alloc

import (
	"errors"
	"fmt"
)

var (
	// ErrExhausted is matched by every *ExhaustedError.
	ErrExhausted = errors.New("alloc: memory exhausted")
	// ErrSizeOverflow is returned when a layout size does not fit in a word.
	ErrSizeOverflow = errors.New("alloc: layout size overflows")
	// ErrPointerLayout is raised when a pointer-bearing layout is requested
	// from memory the garbage collector cannot scan.
	ErrPointerLayout = errors.New("alloc: pointer-bearing layout requires garbage-collected memory")
	// ErrDoubleFree is raised when a block is freed twice or was never allocated.
	ErrDoubleFree = errors.New("alloc: double free or foreign block")
	// ErrLayoutMismatch is raised when a block is freed with a different layout.
	ErrLayoutMismatch = errors.New("alloc: free layout does not match allocation")
)

// ExhaustedError is the panic value raised when an allocation cannot be
// satisfied. Allocation exhaustion is not a recoverable per-call condition.
type ExhaustedError struct {
	Layout Layout
	cause  error
}

func (e *ExhaustedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("alloc: memory exhausted allocating %d bytes (align %d): %v", e.Layout.Size, e.Layout.Align, e.cause)
	}
	return fmt.Sprintf("alloc: memory exhausted allocating %d bytes (align %d)", e.Layout.Size, e.Layout.Align)
}

// Is reports whether target is ErrExhausted.
func (e *ExhaustedError) Is(target error) bool { return target == ErrExhausted }

func (e *ExhaustedError) Unwrap() error { return e.cause }

// Exhausted panics with an *ExhaustedError for l.
func Exhausted(l Layout, cause error) {
	panic(&ExhaustedError{Layout: l, cause: cause})
}

// MisuseError is the panic value raised when an allocator detects a block
// being returned incorrectly.
type MisuseError struct {
	Addr   uintptr
	Layout Layout
	Err    error
}

func (e *MisuseError) Error() string {
	return fmt.Sprintf("%v: block %#x %s", e.Err, e.Addr, e.Layout)
}

func (e *MisuseError) Unwrap() error { return e.Err }
