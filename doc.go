// Package heapslice provides owned containers that fit in a single machine
// word: Slice[T] for any element type, Bytes for raw bytes and Str for
// UTF-8 text.
//
// A conventional Go slice header is three words. A heapslice handle is one
// pointer: the element count lives in the first word of the same block as
// the elements, so the handle alone determines the length.
//
//	[count: word][padding][elem 0][elem 1]...[elem n-1]
//
// The header is max(word alignment, alignment of T) bytes long, so elements
// start at the first offset that suits both. Empty containers never allocate;
// they share a static sentinel address no allocator can return.
//
// # Quick Start
//
//	s := heapslice.FromSlice([]int{1, 2, 3})
//	defer s.Release()
//	fmt.Println(s.Len(), s.View()) // 3 [1 2 3]
//
//	text := heapslice.StrFrom("hello")
//	defer text.Release()
//	fmt.Println(text.View()) // hello
//
// # Ownership
//
// Each container has exactly one owner. Copying the struct copies the
// handle, so after handing a container to another owner the old variable
// must not be used; Take performs the move and leaves the source absent.
// Release finalizes the elements (see Finalizer) and frees the block.
// Containers that are never released are reclaimed by the garbage collector
// when they live on the Go heap, but not when they live off-heap.
//
// The zero value of every container is "absent". It behaves as empty and
// Present reports false for it, so no separate optional wrapper is needed.
//
// # Allocators
//
// Blocks come from an alloc.Allocator. By default this is alloc.Heap, which
// keeps blocks holding pointers visible to the garbage collector. Configure
// installs a different default before first use; the ...In constructors and
// ReleaseIn take an allocator explicitly:
//
//	arena, _ := alloc.NewOffHeap(alloc.WithMemoryLimit(64 << 20))
//	defer arena.Close()
//	b := heapslice.BytesFromIn(arena, payload)
//	defer b.ReleaseIn(arena)
//
// A block must be released through the allocator that produced it. The
// decoding methods (UnmarshalJSON, UnmarshalBinary, UnmarshalText) allocate
// from and release through the default allocator only.
// Allocation failure is fatal and panics with *alloc.ExhaustedError.
//
// # Text
//
// Str always holds valid UTF-8. StrFromBytes validates and on failure
// returns an *InvalidUTF8Error from which the rejected Bytes can be
// recovered. StrFromBytesUnchecked and ViewMut leave validity to the caller.
//
// # Concurrency
//
// Containers carry no synchronization. A container may be transferred to
// another goroutine, after which only the receiver uses it. Several
// goroutines may read the same View concurrently provided T is safe for
// concurrent reads and nobody mutates or releases the container meanwhile.
// Allocators are safe for concurrent use.
package heapslice
