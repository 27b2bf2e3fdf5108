// Package mmap provides anonymous memory mappings for off-heap allocation.
//
// # Overview
//
// An anonymous mapping is a read-write region obtained directly from the
// operating system. The Go garbage collector neither scans nor moves it, so
// it can hold raw element blocks whose lifetime is managed explicitly.
//
// # Usage
//
//	m, err := mmap.MapAnon(1 << 20)
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()
//
//	// Hand the pages of a zeroed region back to the kernel
//	clear(data)
//	m.Discard()
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with MAP_ANON|MAP_PRIVATE, madvise(2) MADV_DONTNEED for Discard
//   - Windows: VirtualAlloc with MEM_RESERVE|MEM_COMMIT (Discard is a no-op)
//
// # Thread Safety
//
// Close is idempotent and protected by atomic operations. Callers must ensure
// no goroutine touches Bytes() after Close() returns.
//
// # Pointers
//
// Memory handed out by this package is invisible to the garbage collector.
// It must never hold the only reference to a Go heap object.
package mmap
