package mem

import (
	"unsafe"
)

// AllocAligned allocates a zeroed byte slice of the given size whose first
// byte sits at an address divisible by align. align must be a power of two.
//
// Note: This function allocates up to align-1 extra bytes to find an aligned
// offset. The underlying array is kept alive by the returned slice.
func AllocAligned(size, align int) []byte {
	if size <= 0 {
		return nil
	}
	if align <= 1 {
		return make([]byte, size)
	}

	buf := make([]byte, size+align-1)

	addr := uintptr(unsafe.Pointer(&buf[0])) //nolint:gosec // unsafe is required for memory alignment
	mask := uintptr(align - 1)
	offset := int((uintptr(align) - (addr & mask)) & mask)

	return buf[offset : offset+size : offset+size]
}

// AllocAlignedWords allocates size bytes aligned to align, reusing a
// []uint64 backing array so that alignments up to 8 never need padding.
func AllocAlignedWords(size, align int) []byte {
	if size <= 0 {
		return nil
	}
	if align > 8 {
		return AllocAligned(size, align)
	}
	words := make([]uint64, (size+7)/8)
	return unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), size) //nolint:gosec // unsafe is required for memory alignment
}
