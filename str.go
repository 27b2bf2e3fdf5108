package heapslice

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"time"
	"unsafe"

	"github.com/hupe1980/heapslice/alloc"
	"github.com/hupe1980/heapslice/codec"
	"github.com/hupe1980/heapslice/internal/hash"
)

// Str is owned UTF-8 text held in one machine word.
//
// A Str wraps a Bytes whose content is always valid UTF-8. Every
// constructor either validates or documents that the caller guarantees it.
type Str struct {
	b Bytes
}

// EmptyStr returns the canonical empty Str. It never allocates.
func EmptyStr() Str {
	return Str{b: EmptyBytes()}
}

// StrFrom copies s into a new Str using the default allocator.
func StrFrom(s string) Str {
	return StrFromIn(nil, s)
}

// StrFromIn copies s into a new Str allocated from a.
func StrFromIn(a alloc.Allocator, s string) Str {
	if s == "" {
		return EmptyStr()
	}
	return Str{b: BytesFromIn(a, unsafe.Slice(unsafe.StringData(s), len(s)))}
}

// StrFromBytes takes ownership of b if its content is valid UTF-8.
//
// On failure it returns an *InvalidUTF8Error and does not consume b:
// the error's IntoBytes hands the same container back.
func StrFromBytes(b Bytes) (Str, error) {
	metrics, logger := observers()

	start := time.Now()
	verr := validateUTF8(b.View())

	var err error
	if verr != nil {
		verr.bytes = b
		err = verr
	}

	metrics.RecordValidation(b.Len(), time.Since(start), err)
	if logger != nil {
		logger.LogValidation(context.Background(), b.Len(), err)
	}

	if err != nil {
		return Str{}, err
	}
	return Str{b: b}, nil
}

// StrFromBytesUnchecked takes ownership of b without validation.
// The caller guarantees b holds valid UTF-8; every text operation on the
// result assumes it.
func StrFromBytesUnchecked(b Bytes) Str {
	return Str{b: b}
}

// IntoBytes moves the underlying bytes out of s without copying,
// leaving s absent.
func (s *Str) IntoBytes() Bytes {
	return s.b.Take()
}

// Len returns the length in bytes.
func (s Str) Len() int { return s.b.Len() }

// IsEmpty reports whether s is the empty text.
func (s Str) IsEmpty() bool { return s.b.IsEmpty() }

// Present reports whether s is not the absent zero value.
func (s Str) Present() bool { return s.b.Present() }

// View returns the text without copying. The string aliases the block:
// it is valid until s is released and reflects writes through ViewMut.
func (s Str) View() string {
	v := s.b.View()
	if len(v) == 0 {
		return ""
	}
	return unsafe.String(&v[0], len(v))
}

// String returns a copy of the text.
func (s Str) String() string {
	return strings.Clone(s.View())
}

// ViewMut returns the text bytes for in-place modification. The caller
// must leave them valid UTF-8; nothing re-validates.
func (s Str) ViewMut() []byte {
	return s.b.View()
}

// Runes returns an iterator over byte offsets and runes.
func (s Str) Runes() iter.Seq2[int, rune] {
	return func(yield func(int, rune) bool) {
		for i, r := range s.View() {
			if !yield(i, r) {
				return
			}
		}
	}
}

// ToUpperASCII maps ASCII letters to upper case in place.
func (s Str) ToUpperASCII() {
	v := s.ViewMut()
	for i, c := range v {
		if 'a' <= c && c <= 'z' {
			v[i] = c - ('a' - 'A')
		}
	}
}

// ToLowerASCII maps ASCII letters to lower case in place.
func (s Str) ToLowerASCII() {
	v := s.ViewMut()
	for i, c := range v {
		if 'A' <= c && c <= 'Z' {
			v[i] = c + ('a' - 'A')
		}
	}
}

// Release frees the text and leaves s absent.
func (s *Str) Release() { s.b.Release() }

// ReleaseIn is Release for a Str built with StrFromIn(a, ...).
func (s *Str) ReleaseIn(a alloc.Allocator) { s.b.ReleaseIn(a) }

// Clone returns an independent copy of s from the default allocator.
func (s Str) Clone() Str { return Str{b: s.b.Clone()} }

// CloneIn returns an independent copy of s allocated from a.
func (s Str) CloneIn(a alloc.Allocator) Str { return Str{b: s.b.CloneIn(a)} }

// Take moves the handle out of s, leaving s absent.
func (s *Str) Take() Str { return Str{b: s.b.Take()} }

// Equal reports whether s holds the text t.
func (s Str) Equal(t string) bool {
	return s.View() == t
}

// Compare compares s and t as text.
func (s Str) Compare(t string) int {
	return strings.Compare(s.View(), t)
}

// Hash returns the xxHash64 of the text.
func (s Str) Hash() uint64 {
	return hash.Sum64String(s.View())
}

// Format renders s as fmt renders a string: %s and %v print the text,
// %q and %#v print it quoted and escaped.
func (s Str) Format(f fmt.State, verb rune) {
	fmt.Fprintf(f, fmt.FormatString(f, verb), s.View())
}

// MarshalText returns a copy of the text.
func (s Str) MarshalText() ([]byte, error) {
	return []byte(s.View()), nil
}

// UnmarshalText replaces s with a copy of text from the default allocator.
// Invalid UTF-8 is rejected with an *InvalidUTF8Error and leaves s unchanged.
// The previous contents are released through the default allocator, so s
// must be absent, empty or built with the default allocator.
func (s *Str) UnmarshalText(text []byte) error {
	if verr := validateUTF8(text); verr != nil {
		return verr
	}
	old := *s
	*s = StrFromBytesUnchecked(BytesFrom(text))
	old.Release()
	return nil
}

// MarshalJSON encodes the text as a JSON string.
func (s Str) MarshalJSON() ([]byte, error) {
	return codec.EncodeText(nil, s.View())
}

// UnmarshalJSON decodes a JSON string into a new Str. It has the same
// receiver requirement as UnmarshalText.
func (s *Str) UnmarshalJSON(data []byte) error {
	v, err := codec.DecodeText(nil, data)
	if err != nil {
		return err
	}
	return s.UnmarshalText([]byte(v))
}
