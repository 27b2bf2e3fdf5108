package alloc

import (
	"fmt"
	"math/bits"
	"reflect"
	"unsafe"

	"github.com/hupe1980/heapslice/internal/conv"
	"github.com/hupe1980/heapslice/internal/mem"
)

// Heap allocates blocks from the garbage-collected heap.
//
// Pointer-free layouts are carved from an aligned byte region. Pointer-bearing
// layouts are allocated as a reflect-built struct
//
//	struct { Len uintptr; Pad [Header-WordSize]byte; Elems [capacity]T }
//
// so the collector scans every element slot. The element capacity is rounded
// up to a coarse size class to bound the number of distinct block types;
// the rounding is invisible to callers.
//
// Free is a no-op: the collector reclaims a block once no handle refers to it.
// Callers zero pointer-bearing elements before freeing so references are
// dropped immediately.
type Heap struct{}

// NewHeap returns the garbage-collected allocator.
func NewHeap() *Heap { return &Heap{} }

// Alloc implements Allocator.
func (h *Heap) Alloc(l Layout) unsafe.Pointer {
	if l.Size == 0 {
		Exhausted(l, fmt.Errorf("zero-size block"))
	}
	if l.Pointers && l.Elem != nil {
		return allocTyped(l)
	}

	size, err := conv.UintptrToInt(l.Size)
	if err != nil {
		Exhausted(l, err)
	}
	align, err := conv.UintptrToInt(l.Align)
	if err != nil {
		Exhausted(l, err)
	}
	buf := mem.AllocAlignedWords(size, align)
	return unsafe.Pointer(&buf[0]) //nolint:gosec // unsafe is required for raw blocks
}

// Free implements Allocator.
func (h *Heap) Free(unsafe.Pointer, Layout) {}

func allocTyped(l Layout) unsafe.Pointer {
	fields := []reflect.StructField{
		{Name: "Len", Type: reflect.TypeFor[uintptr]()},
	}
	if pad := l.Header - WordSize; pad > 0 {
		fields = append(fields, reflect.StructField{Name: "Pad", Type: reflect.ArrayOf(int(pad), reflect.TypeFor[byte]())})
	}
	fields = append(fields, reflect.StructField{Name: "Elems", Type: reflect.ArrayOf(capacityClass(l.Count), l.Elem)})

	block := reflect.StructOf(fields)
	if off := block.Field(len(fields) - 1).Offset; off != l.Header {
		panic(fmt.Sprintf("alloc: typed block places elements at %d, want %d", off, l.Header))
	}

	return reflect.New(block).UnsafePointer()
}

// capacityClass rounds n up so that only four classes exist per power of two.
func capacityClass(n int) int {
	if n <= 8 {
		return n
	}
	shift := bits.Len(uint(n)) - 3 //nolint:gosec // n > 8
	step := 1 << shift
	return (n + step - 1) &^ (step - 1)
}
