// Package arena provides an off-heap block allocator backed by anonymous mappings.
//
// Blocks are carved from large mmap'd chunks and recycled through
// power-of-two size-class free lists. Requests larger than a quarter chunk
// get a dedicated mapping that is unmapped again when the block is freed.
//
// # Features
//
//   - Off-heap allocation via mmap (no GC scanning, no GC pressure)
//   - Arbitrary power-of-two alignment
//   - Exact Free with size and alignment, mirroring the Alloc request
//   - Optional memory budget through a MemoryAcquirer
//
// # Safety
//
// Arena memory is invisible to the garbage collector. It must only hold
// pointer-free data. All methods return errors instead of panicking.
package arena
