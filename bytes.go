package heapslice

import (
	"bytes"
	"fmt"
	"unsafe"

	"github.com/hupe1980/heapslice/alloc"
	"github.com/hupe1980/heapslice/codec"
	"github.com/hupe1980/heapslice/internal/hash"
)

// Bytes is an owned, fixed-length byte sequence held in one machine word.
//
// It has the layout of a Slice[byte]: one count word followed directly by
// the bytes. Construction is a single copy and Release runs no finalizers.
type Bytes struct {
	p unsafe.Pointer
}

// EmptyBytes returns the canonical empty Bytes. It never allocates.
func EmptyBytes() Bytes {
	return Bytes{p: sentinel()}
}

// BytesFrom copies src into a new Bytes using the default allocator.
func BytesFrom(src []byte) Bytes {
	return BytesFromIn(nil, src)
}

// BytesFromIn copies src into a new Bytes allocated from a.
// A nil a selects the default allocator.
func BytesFromIn(a alloc.Allocator, src []byte) Bytes {
	if len(src) == 0 {
		return EmptyBytes()
	}
	l, err := alloc.BytesLayout(len(src))
	p := allocBlock(a, l, err)
	copy(elems[byte](p, alloc.WordSize, len(src)), src)
	return Bytes{p: p}
}

// Len returns the number of bytes.
func (b Bytes) Len() int { return count(b.p) }

// IsEmpty reports whether b holds no bytes.
func (b Bytes) IsEmpty() bool { return count(b.p) == 0 }

// Present reports whether b is not the absent zero value.
func (b Bytes) Present() bool { return b.p != nil }

// View returns the bytes in place, valid until b is released.
func (b Bytes) View() []byte {
	n := count(b.p)
	if n == 0 {
		return nil
	}
	return elems[byte](b.p, alloc.WordSize, n)
}

// Release returns the block to the default allocator and leaves b absent.
func (b *Bytes) Release() {
	b.release(nil)
}

// ReleaseIn is Release for Bytes built with BytesFromIn(a, ...).
func (b *Bytes) ReleaseIn(a alloc.Allocator) {
	b.release(a)
}

func (b *Bytes) release(a alloc.Allocator) {
	p := b.p
	b.p = nil
	if !allocated(p) {
		return
	}
	l, err := alloc.BytesLayout(count(p))
	if err != nil {
		panic(err)
	}
	if a == nil {
		a = defaultAllocator()
	}
	a.Free(p, l)
}

// Clone returns an independent copy of b from the default allocator.
func (b Bytes) Clone() Bytes {
	return BytesFromIn(nil, b.View())
}

// CloneIn returns an independent copy of b allocated from a.
func (b Bytes) CloneIn(a alloc.Allocator) Bytes {
	return BytesFromIn(a, b.View())
}

// Take moves the handle out of b, leaving b absent.
func (b *Bytes) Take() Bytes {
	t := *b
	b.p = nil
	return t
}

// Equal reports whether b holds exactly the bytes of other.
func (b Bytes) Equal(other []byte) bool {
	return bytes.Equal(b.View(), other)
}

// Compare compares b and other lexicographically.
func (b Bytes) Compare(other []byte) int {
	return bytes.Compare(b.View(), other)
}

// Hash returns the xxHash64 of the content.
func (b Bytes) Hash() uint64 {
	return hash.Sum64(b.View())
}

// Format renders the view exactly as fmt renders a []byte.
func (b Bytes) Format(f fmt.State, verb rune) {
	fmt.Fprintf(f, fmt.FormatString(f, verb), b.View())
}

// MarshalBinary returns a copy of the content.
func (b Bytes) MarshalBinary() ([]byte, error) {
	return bytes.Clone(b.View()), nil
}

// UnmarshalBinary replaces b with a copy of data from the default allocator.
// The previous contents are released through the default allocator, so b
// must be absent, empty or built with the default allocator.
func (b *Bytes) UnmarshalBinary(data []byte) error {
	old := *b
	*b = BytesFrom(data)
	old.Release()
	return nil
}

// MarshalJSON encodes the content as a base64 JSON string.
func (b Bytes) MarshalJSON() ([]byte, error) {
	return codec.EncodeBytes(nil, b.View())
}

// UnmarshalJSON decodes a base64 JSON string into a new Bytes from the
// default allocator. It has the same receiver requirement as UnmarshalBinary.
func (b *Bytes) UnmarshalJSON(data []byte) error {
	v, err := codec.DecodeBytes(nil, data)
	if err != nil {
		return err
	}
	return b.UnmarshalBinary(v)
}
