package alloc

import "unsafe"

// Allocator is the raw allocate/deallocate primitive.
//
// Alloc returns a zeroed block of at least l.Size bytes aligned to l.Align.
// It never returns nil; exhaustion panics with an *ExhaustedError.
// Free releases a block previously returned by Alloc with the same Layout.
//
// Implementations must be safe for concurrent use.
type Allocator interface {
	Alloc(l Layout) unsafe.Pointer
	Free(p unsafe.Pointer, l Layout)
}

// Func adapts a pair of functions to the Allocator interface.
type Func struct {
	AllocFunc func(l Layout) unsafe.Pointer
	FreeFunc  func(p unsafe.Pointer, l Layout)
}

// Alloc implements Allocator.
func (f Func) Alloc(l Layout) unsafe.Pointer { return f.AllocFunc(l) }

// Free implements Allocator.
func (f Func) Free(p unsafe.Pointer, l Layout) {
	if f.FreeFunc != nil {
		f.FreeFunc(p, l)
	}
}
