package alloc

import (
	"fmt"
	"unsafe"

	"github.com/hupe1980/heapslice/internal/conv"
	"github.com/hupe1980/heapslice/internal/resource"
)

// Limited wraps an Allocator with a hard budget on live block bytes.
// A request that would exceed the budget is allocation exhaustion.
type Limited struct {
	next Allocator
	rc   *resource.Controller
}

// NewLimited wraps next with a budget of limitBytes. A nil next wraps a Heap.
func NewLimited(next Allocator, limitBytes int64) *Limited {
	if next == nil {
		next = NewHeap()
	}
	return &Limited{
		next: next,
		rc:   resource.NewController(resource.Config{MemoryLimitBytes: limitBytes}),
	}
}

// Alloc implements Allocator. The reservation is returned if the inner
// allocator panics.
func (a *Limited) Alloc(l Layout) unsafe.Pointer {
	n, err := conv.UintptrToInt64(l.Size)
	if err != nil {
		Exhausted(l, err)
	}
	if err := a.rc.AcquireMemory(n); err != nil {
		Exhausted(l, err)
	}

	allocated := false
	defer func() {
		if !allocated {
			a.rc.ReleaseMemory(n)
		}
	}()

	p := a.next.Alloc(l)
	allocated = true
	return p
}

// Free implements Allocator.
func (a *Limited) Free(p unsafe.Pointer, l Layout) {
	n, err := conv.UintptrToInt64(l.Size)
	if err != nil {
		// Alloc rejects such sizes, so the block cannot be ours.
		panic(&MisuseError{Addr: uintptr(p), Layout: l, Err: fmt.Errorf("%w: %w", ErrLayoutMismatch, err)})
	}
	a.next.Free(p, l)
	a.rc.ReleaseMemory(n)
}

// MemoryUsage returns the bytes of live blocks.
func (a *Limited) MemoryUsage() int64 { return a.rc.MemoryUsage() }

// PeakMemoryUsage returns the highest live byte count observed.
func (a *Limited) PeakMemoryUsage() int64 { return a.rc.PeakMemoryUsage() }

// Available returns how many more bytes may be allocated.
func (a *Limited) Available() int64 { return a.rc.Available() }

// MemoryLimit returns the budget.
func (a *Limited) MemoryLimit() int64 { return a.rc.MemoryLimit() }
