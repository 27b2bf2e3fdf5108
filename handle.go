package heapslice

import (
	"unsafe"

	"github.com/hupe1980/heapslice/alloc"
)

// emptyHeader backs the canonical empty handle. It is static data, so no
// allocator (the Go heap, mmap) can return its address, and its value is
// always zero, so reading the count word at the sentinel yields 0.
var emptyHeader uintptr

func sentinel() unsafe.Pointer {
	return unsafe.Pointer(&emptyHeader)
}

// count reads the element count stored at the start of a block.
// Both the absent handle and the sentinel yield 0.
func count(p unsafe.Pointer) int {
	if p == nil {
		return 0
	}
	return int(*(*uintptr)(p)) //nolint:gosec // counts originate from int
}

// allocated reports whether p addresses a real block.
func allocated(p unsafe.Pointer) bool {
	return p != nil && p != sentinel()
}

// allocBlock allocates l and stores the element count in its header.
// A layout that cannot be represented is treated as exhaustion.
func allocBlock(a alloc.Allocator, l alloc.Layout, err error) unsafe.Pointer {
	if err != nil {
		alloc.Exhausted(l, err)
	}
	if a == nil {
		a = defaultAllocator()
	}
	p := a.Alloc(l)
	*(*uintptr)(p) = uintptr(l.Count)
	return p
}

// elems returns the n elements stored header bytes past p.
func elems[T any](p unsafe.Pointer, header uintptr, n int) []T {
	return unsafe.Slice((*T)(unsafe.Add(p, header)), n)
}
