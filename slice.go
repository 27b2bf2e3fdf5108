package heapslice

import (
	"cmp"
	"fmt"
	"hash/maphash"
	"iter"
	"slices"
	"unsafe"

	"github.com/hupe1980/heapslice/alloc"
	"github.com/hupe1980/heapslice/codec"
	"github.com/hupe1980/heapslice/internal/hash"
)

// Slice is an owned, fixed-length sequence of T held in one machine word.
//
// The handle addresses a single block laid out as
//
//	[count: word][padding up to HeaderSize[T]()][elem 0]...[elem n-1]
//
// or the shared empty sentinel. The zero value is the absent Slice: it
// views as empty and releases as a no-op, and Present reports false for it,
// so a Slice doubles as its own optional at no extra cost.
//
// A Slice has exactly one owner. Copying the struct copies the handle, not
// the elements; use Take to move ownership and Clone to duplicate it.
type Slice[T any] struct {
	p unsafe.Pointer
}

// Cloner is implemented by element types that need a deep copy when a
// Slice is constructed or cloned. Elements of other types are copied by
// assignment.
type Cloner[T any] interface {
	Clone() T
}

// Finalizer is implemented (on the pointer receiver) by element types that
// need cleanup when their Slice is released. Finalize runs once per element,
// in index order, before the block is freed.
type Finalizer interface {
	Finalize()
}

// Empty returns the canonical empty Slice. It never allocates.
func Empty[T any]() Slice[T] {
	return Slice[T]{p: sentinel()}
}

// FromSlice copies src into a new Slice using the default allocator.
func FromSlice[T any](src []T) Slice[T] {
	return FromSliceIn(nil, src)
}

// FromSliceIn copies src into a new Slice allocated from a. A nil a selects
// the default allocator. Empty input returns Empty without allocating.
//
// Allocation exhaustion panics with *alloc.ExhaustedError.
func FromSliceIn[T any](a alloc.Allocator, src []T) Slice[T] {
	if len(src) == 0 {
		return Empty[T]()
	}
	l, err := alloc.LayoutOf[T](len(src))
	p := allocBlock(a, l, err)
	cloneInto(elems[T](p, l.Header, len(src)), src)
	return Slice[T]{p: p}
}

func cloneInto[T any](dst, src []T) {
	var zero T
	if _, ok := any(&zero).(Cloner[T]); !ok {
		copy(dst, src)
		return
	}
	for i := range src {
		dst[i] = any(&src[i]).(Cloner[T]).Clone()
	}
}

// Len returns the number of elements.
func (s Slice[T]) Len() int { return count(s.p) }

// IsEmpty reports whether the Slice holds no elements.
func (s Slice[T]) IsEmpty() bool { return count(s.p) == 0 }

// Present reports whether s is not the absent zero value.
func (s Slice[T]) Present() bool { return s.p != nil }

// View returns the elements in place. The view may be mutated; it is valid
// until s is released and its capacity equals its length. Empty and absent
// Slices view as nil.
func (s Slice[T]) View() []T {
	n := count(s.p)
	if n == 0 {
		return nil
	}
	return elems[T](s.p, alloc.HeaderSize[T](), n)
}

// At returns the element at index i. It panics if i is out of range.
func (s Slice[T]) At(i int) T {
	return s.View()[i]
}

// All returns an iterator over index/element pairs.
func (s Slice[T]) All() iter.Seq2[int, T] {
	return slices.All(s.View())
}

// Release finalizes every element and returns the block to the default
// allocator. s becomes absent, so releasing twice is a no-op.
func (s *Slice[T]) Release() {
	s.release(nil)
}

// ReleaseIn is Release for a Slice built with FromSliceIn(a, ...).
func (s *Slice[T]) ReleaseIn(a alloc.Allocator) {
	s.release(a)
}

func (s *Slice[T]) release(a alloc.Allocator) {
	p := s.p
	s.p = nil
	if !allocated(p) {
		return
	}

	n := count(p)
	l, err := alloc.LayoutOf[T](n)
	if err != nil {
		// The layout was computed once already when p was allocated.
		panic(err)
	}

	view := elems[T](p, l.Header, n)
	var zero T
	if _, ok := any(&zero).(Finalizer); ok {
		for i := range view {
			any(&view[i]).(Finalizer).Finalize()
		}
	}
	clear(view)

	if a == nil {
		a = defaultAllocator()
	}
	a.Free(p, l)
}

// Clone returns an independent copy of s from the default allocator.
func (s Slice[T]) Clone() Slice[T] {
	return FromSliceIn(nil, s.View())
}

// CloneIn returns an independent copy of s allocated from a.
func (s Slice[T]) CloneIn(a alloc.Allocator) Slice[T] {
	return FromSliceIn(a, s.View())
}

// Take moves the handle out of s, leaving s absent.
func (s *Slice[T]) Take() Slice[T] {
	t := *s
	s.p = nil
	return t
}

// Format renders the view exactly as fmt renders a []T.
func (s Slice[T]) Format(f fmt.State, verb rune) {
	fmt.Fprintf(f, fmt.FormatString(f, verb), s.View())
}

// MarshalJSON encodes the elements as a JSON array.
func (s Slice[T]) MarshalJSON() ([]byte, error) {
	return codec.EncodeElems(nil, s.View())
}

// UnmarshalJSON decodes a JSON array into a new Slice from the default
// allocator and releases the previous contents of s through the default
// allocator. Only decode into a Slice that is absent, empty or was built
// with the default allocator; release any other Slice with ReleaseIn first.
func (s *Slice[T]) UnmarshalJSON(data []byte) error {
	v, err := codec.DecodeElems[T](nil, data)
	if err != nil {
		return err
	}
	old := *s
	*s = FromSlice(v)
	old.Release()
	return nil
}

// Equal reports whether s holds the same elements as other.
func Equal[T comparable](s Slice[T], other []T) bool {
	return slices.Equal(s.View(), other)
}

// EqualFunc is Equal with a custom element comparison.
func EqualFunc[T, U any](s Slice[T], other []U, eq func(T, U) bool) bool {
	return slices.EqualFunc(s.View(), other, eq)
}

// Compare compares s and other lexicographically.
func Compare[T cmp.Ordered](s Slice[T], other []T) int {
	return slices.Compare(s.View(), other)
}

// CompareFunc is Compare with a custom element comparison.
func CompareFunc[T, U any](s Slice[T], other []U, compare func(T, U) int) int {
	return slices.CompareFunc(s.View(), other, compare)
}

// Hash returns an order-sensitive hash of the elements. Slices that are
// Equal hash equally for the same seed.
func Hash[T comparable](seed maphash.Seed, s Slice[T]) uint64 {
	v := s.View()
	d := hash.NewDigest(len(v))
	for _, e := range v {
		d.WriteUint64(maphash.Comparable(seed, e))
	}
	return d.Sum64()
}
