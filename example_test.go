package heapslice_test

import (
	"errors"
	"fmt"
	"log"
	"unsafe"

	"github.com/hupe1980/heapslice"
	"github.com/hupe1980/heapslice/alloc"
)

// Example_slice builds a one-word sequence and reads it back.
func Example_slice() {
	s := heapslice.FromSlice([]int{3, 1, 4, 1, 5})
	defer s.Release()

	fmt.Println(s.Len(), s)
	fmt.Println(unsafe.Sizeof(s) == unsafe.Sizeof(uintptr(0)))
	// Output:
	// 5 [3 1 4 1 5]
	// true
}

// Example_text round-trips text through its byte representation.
func Example_text() {
	s := heapslice.StrFrom("help me obi-wan kenobi")
	b := s.IntoBytes()

	text, err := heapslice.StrFromBytes(b)
	if err != nil {
		log.Fatal(err)
	}
	defer text.Release()

	fmt.Printf("%s (%d bytes)\n", text, text.Len())
	// Output: help me obi-wan kenobi (22 bytes)
}

// Example_invalidUTF8 recovers the rejected bytes from a failed validation.
func Example_invalidUTF8() {
	_, err := heapslice.StrFromBytes(heapslice.BytesFrom([]byte{'o', 'k', 0x80}))

	var verr *heapslice.InvalidUTF8Error
	if errors.As(err, &verr) {
		b := verr.IntoBytes()
		defer b.Release()
		fmt.Println(err)
		fmt.Println(b.Len())
	}
	// Output:
	// invalid utf-8 sequence of 1 bytes from index 2
	// 3
}

// Example_offHeap keeps bytes in memory the garbage collector never scans.
func Example_offHeap() {
	arena, err := alloc.NewOffHeap(alloc.WithMemoryLimit(1 << 20))
	if err != nil {
		log.Fatal(err)
	}
	defer arena.Close()

	b := heapslice.BytesFromIn(arena, []byte("off the heap"))
	fmt.Printf("%s\n", b)
	b.ReleaseIn(arena)

	stats := arena.Stats()
	fmt.Println(stats.TotalAllocs, stats.TotalFrees)
	// Output:
	// off the heap
	// 1 1
}
