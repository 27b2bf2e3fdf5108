// Package alloc defines the raw allocation contract used by the heapslice
// containers and ships the allocators that implement it.
//
// # Contract
//
// An Allocator hands out blocks described by a Layout (size and alignment,
// plus the element type so that garbage-collected memory can be typed) and
// takes them back through Free with the exact same Layout. Allocation never
// returns nil: exhaustion is fatal and surfaces as a panic carrying an
// *ExhaustedError.
//
// # Block layout
//
// Every container block is laid out as
//
//	[count: word][padding][elem 0][elem 1]...[elem n-1]
//
// where the header spans HeaderSize = max(word alignment, element alignment)
// bytes and the block size is HeaderSize + n*sizeof(elem).
//
// # Allocators
//
//   - Heap: garbage-collected memory. Pointer-bearing element types get a
//     reflect-typed block so the collector scans them.
//   - OffHeap: mmap-backed arena outside the collector. Pointer-free element
//     types only.
//   - Tracking: wraps another allocator and records every live block, for
//     leak and double-free detection.
//   - Limited: wraps another allocator with a hard memory budget.
package alloc
