// Package mem provides memory allocation utilities.
//
// # Aligned Allocation
//
// Provides GC-managed, pointer-free byte regions aligned to an arbitrary
// power of two. The region is carved out of a slightly larger []byte, so the
// returned slice is an interior view and keeps its backing array alive.
package mem
