package alloc

import (
	"errors"
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/hupe1980/heapslice/internal/arena"
	"github.com/hupe1980/heapslice/internal/resource"
)

// ArenaStats reports off-heap usage.
type ArenaStats struct {
	ChunksAllocated uint64
	BytesReserved   uint64
	BytesUsed       uint64
	BytesWasted     uint64
	ActiveChunks    uint64
	LargeBlocks     uint64
	TotalAllocs     uint64
	TotalFrees      uint64
}

// OffHeap allocates blocks from anonymous memory mappings that the garbage
// collector never scans. It only accepts pointer-free layouts.
type OffHeap struct {
	arena *arena.Arena
	rc    *resource.Controller
}

type offHeapOptions struct {
	chunkSize   int
	memoryLimit int64
	logger      *slog.Logger
}

// OffHeapOption configures NewOffHeap.
type OffHeapOption func(*offHeapOptions)

// WithChunkSize sets the size of the mappings small blocks are carved from.
func WithChunkSize(size int) OffHeapOption {
	return func(o *offHeapOptions) {
		o.chunkSize = size
	}
}

// WithMemoryLimit caps the bytes the allocator may map. Exceeding the limit
// is allocation exhaustion.
func WithMemoryLimit(bytes int64) OffHeapOption {
	return func(o *offHeapOptions) {
		o.memoryLimit = bytes
	}
}

// WithLogger sets the logger for mapping events.
func WithLogger(logger *slog.Logger) OffHeapOption {
	return func(o *offHeapOptions) {
		o.logger = logger
	}
}

// NewOffHeap creates an off-heap allocator. Mappings are created lazily.
func NewOffHeap(opts ...OffHeapOption) (*OffHeap, error) {
	o := offHeapOptions{chunkSize: arena.DefaultChunkSize}
	for _, opt := range opts {
		opt(&o)
	}

	rc := resource.NewController(resource.Config{MemoryLimitBytes: o.memoryLimit})

	a, err := arena.New(o.chunkSize,
		arena.WithMemoryAcquirer(rc),
		arena.WithLogger(o.logger),
	)
	if err != nil {
		return nil, err
	}

	return &OffHeap{arena: a, rc: rc}, nil
}

// Alloc implements Allocator.
func (o *OffHeap) Alloc(l Layout) unsafe.Pointer {
	if l.Pointers {
		panic(&MisuseError{Layout: l, Err: ErrPointerLayout})
	}
	p, err := o.arena.Alloc(l.Size, l.Align)
	if err != nil {
		Exhausted(l, err)
	}
	return p
}

// Free implements Allocator.
func (o *OffHeap) Free(p unsafe.Pointer, l Layout) {
	if err := o.arena.Free(p, l.Size, l.Align); err != nil {
		if errors.Is(err, arena.ErrUnknownBlock) {
			err = fmt.Errorf("%w: %w", ErrDoubleFree, err)
		}
		panic(&MisuseError{Addr: uintptr(p), Layout: l, Err: err})
	}
}

// Stats returns the current usage.
func (o *OffHeap) Stats() ArenaStats {
	s := o.arena.Stats()
	return ArenaStats{
		ChunksAllocated: s.ChunksAllocated,
		BytesReserved:   s.BytesReserved,
		BytesUsed:       s.BytesUsed,
		BytesWasted:     s.BytesWasted,
		ActiveChunks:    s.ActiveChunks,
		LargeBlocks:     s.LargeBlocks,
		TotalAllocs:     s.TotalAllocs,
		TotalFrees:      s.TotalFrees,
	}
}

// MemoryUsage returns the bytes currently mapped.
func (o *OffHeap) MemoryUsage() int64 {
	return o.rc.MemoryUsage()
}

// Reset discards every small block at once and keeps one chunk mapped for
// reuse. Containers holding small blocks from this allocator must not be used
// or released afterwards; blocks larger than a quarter chunk stay valid.
func (o *OffHeap) Reset() error {
	return o.arena.Reset()
}

// Close unmaps all memory. Containers still holding blocks from this
// allocator must not be used afterwards.
func (o *OffHeap) Close() error {
	return o.arena.Close()
}

func (o *OffHeap) String() string {
	return o.arena.String()
}
