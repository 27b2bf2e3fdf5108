package alloc

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"

	"github.com/hupe1980/heapslice/internal/conv"
)

// WordSize is the size and alignment of the block header's count word.
const WordSize = unsafe.Sizeof(uintptr(0))

// Layout describes one container block.
type Layout struct {
	// Size is the total block size: Header + Count*ElemSize.
	Size uintptr
	// Align is the block alignment; always equal to Header.
	Align uintptr
	// Header is the offset of the first element.
	Header uintptr
	// Count is the number of elements.
	Count int
	// ElemSize is the size of one element.
	ElemSize uintptr
	// Elem is the element type. Nil for raw byte blocks.
	Elem reflect.Type
	// Pointers reports whether elements hold references the garbage
	// collector must see.
	Pointers bool
}

func (l Layout) String() string {
	elem := "byte"
	if l.Elem != nil {
		elem = l.Elem.String()
	}
	return fmt.Sprintf("Layout{size: %d, align: %d, count: %d, elem: %s}", l.Size, l.Align, l.Count, elem)
}

// HeaderSize returns max(word alignment, alignment of T).
func HeaderSize[T any]() uintptr {
	var zero T
	return max(unsafe.Alignof(uintptr(0)), unsafe.Alignof(zero))
}

// LayoutOf returns the block layout for n elements of type T.
func LayoutOf[T any](n int) (Layout, error) {
	var zero T
	t := reflect.TypeFor[T]()
	l, err := ArrayLayout(unsafe.Sizeof(zero), unsafe.Alignof(zero), n)
	if err != nil {
		return Layout{}, err
	}
	l.Elem = t
	l.Pointers = HasPointers(t)
	return l, nil
}

// BytesLayout returns the block layout for n raw bytes.
func BytesLayout(n int) (Layout, error) {
	return ArrayLayout(1, 1, n)
}

// ArrayLayout computes the layout for n pointer-free elements of the given
// size and alignment. elemAlign must be a power of two.
func ArrayLayout(elemSize, elemAlign uintptr, n int) (Layout, error) {
	if !conv.IsPowerOfTwo(elemAlign) {
		return Layout{}, fmt.Errorf("alloc: alignment %d is not a power of two", elemAlign)
	}
	count, err := conv.IntToUintptr(n)
	if err != nil {
		return Layout{}, err
	}

	header := max(unsafe.Alignof(uintptr(0)), elemAlign)

	body, overflow := conv.MulUintptr(count, elemSize)
	if overflow {
		return Layout{}, ErrSizeOverflow
	}
	size, overflow := conv.AddUintptr(header, body)
	if overflow {
		return Layout{}, ErrSizeOverflow
	}

	return Layout{
		Size:     size,
		Align:    header,
		Header:   header,
		Count:    n,
		ElemSize: elemSize,
	}, nil
}

var pointerCache sync.Map // reflect.Type -> bool

// HasPointers reports whether values of t contain references the garbage
// collector tracks.
func HasPointers(t reflect.Type) bool {
	if v, ok := pointerCache.Load(t); ok {
		return v.(bool)
	}
	has := hasPointers(t)
	pointerCache.Store(t, has)
	return has
}

func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Chan,
		reflect.Func, reflect.Interface, reflect.Slice, reflect.String:
		return true
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
