package arena

import (
	"errors"
	"fmt"
	"log/slog"
	"math/bits"
	"os"
	"sync"
	"unsafe"

	"github.com/hupe1980/heapslice/internal/conv"
	"github.com/hupe1980/heapslice/internal/mmap"
)

// MemoryAcquirer is an interface for acquiring memory.
type MemoryAcquirer interface {
	AcquireMemory(amount int64) error
	ReleaseMemory(amount int64)
}

var (
	// ErrMaxChunksExceeded is returned when the arena exceeds the maximum number of chunks.
	ErrMaxChunksExceeded = errors.New("arena: max chunks exceeded")
	// ErrClosed is returned when the arena has been closed.
	ErrClosed = errors.New("arena: closed")
	// ErrInvalidAlignment is returned for an alignment that is not a power of two.
	ErrInvalidAlignment = errors.New("arena: alignment must be a power of two")
	// ErrUnknownBlock is returned when freeing a block that is not live: a
	// double free, a foreign pointer, or a size other than the allocated one.
	ErrUnknownBlock = errors.New("arena: unknown block")
)

const (
	// DefaultChunkSize is the default size of a chunk (1MB).
	DefaultChunkSize = 1024 * 1024
	// MinClassSize is the smallest block handed out for small requests.
	MinClassSize = 16
	// MaxChunks limits the number of chunks to prevent excessive memory usage.
	MaxChunks = 65536

	minClassBits = 4
)

// Stats tracks arena memory usage metrics.
//
// Note on semantics:
//   - BytesReserved: total memory mapped from the OS (chunks and large blocks)
//   - BytesUsed: bytes requested by live allocations
//   - BytesWasted: size-class rounding of live small allocations
//   - ActiveChunks: number of chunks currently mapped
//   - LargeBlocks: number of live dedicated mappings
//   - TotalAllocs/TotalFrees: cumulative counts
type Stats struct {
	ChunksAllocated uint64
	BytesReserved   uint64
	BytesUsed       uint64
	BytesWasted     uint64
	ActiveChunks    uint64
	LargeBlocks     uint64
	TotalAllocs     uint64
	TotalFrees      uint64
}

type chunk struct {
	mapping *mmap.Mapping
	base    unsafe.Pointer
	size    uintptr
	offset  uintptr
}

// Arena is an off-heap block allocator.
type Arena struct {
	chunkSize uintptr
	chunkBits int
	maxSmall  uintptr

	mu      sync.Mutex
	chunks  []*chunk
	current *chunk
	free    [][]unsafe.Pointer // indexed by class - minClassBits
	live    map[unsafe.Pointer]int // live small block -> class
	large   map[unsafe.Pointer]*mmap.Mapping
	closed  bool
	stats   Stats

	acquirer MemoryAcquirer
	logger   *slog.Logger
}

// Option is a configuration option for Arena.
type Option func(*Arena)

// WithMemoryAcquirer sets the memory acquirer for the arena.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(a *Arena) {
		a.acquirer = acquirer
	}
}

// WithLogger sets the logger used for mapping events.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Arena) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates a new Arena with the given chunk size.
// The chunk size is rounded up to a power of two; chunks are mapped lazily.
func New(chunkSize int, opts ...Option) (*Arena, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkSize < 4*os.Getpagesize() {
		chunkSize = 4 * os.Getpagesize()
	}

	// Round up to next power of 2
	chunkBits := bits.Len(uint(chunkSize - 1)) //nolint:gosec // chunkSize > 0

	a := &Arena{
		chunkSize: uintptr(1) << chunkBits,
		chunkBits: chunkBits,
		maxSmall:  uintptr(1) << (chunkBits - 2),
		free:      make([][]unsafe.Pointer, chunkBits-2-minClassBits+1),
		large:     make(map[unsafe.Pointer]*mmap.Mapping),
		live:      make(map[unsafe.Pointer]int),
		logger:    slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// ChunkSize returns the effective chunk size.
func (a *Arena) ChunkSize() int {
	return int(a.chunkSize)
}

// classOf returns the size-class exponent for a small request.
func classOf(size, align uintptr) int {
	n := max(size, align, MinClassSize)
	return bits.Len(uint(n - 1))
}

// Alloc returns a zeroed block of at least size bytes aligned to align.
func (a *Arena) Alloc(size, align uintptr) (unsafe.Pointer, error) {
	if !conv.IsPowerOfTwo(align) {
		return nil, ErrInvalidAlignment
	}
	if size == 0 {
		return nil, fmt.Errorf("arena: zero-size allocation")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, ErrClosed
	}

	if size > a.maxSmall || align > a.maxSmall {
		return a.allocLargeLocked(size, align)
	}

	class := classOf(size, align)
	classSize := uintptr(1) << class

	p := a.popFreeLocked(class, align)
	if p == nil {
		var err error
		p, err = a.bumpLocked(classSize, align)
		if err != nil {
			return nil, err
		}
	} else {
		clear(unsafe.Slice((*byte)(p), classSize))
	}
	a.live[p] = class

	a.stats.BytesUsed += uint64(size)
	a.stats.BytesWasted += uint64(classSize - size)
	a.stats.TotalAllocs++

	return p, nil
}

func (a *Arena) popFreeLocked(class int, align uintptr) unsafe.Pointer {
	list := a.free[class-minClassBits]
	for i := len(list) - 1; i >= 0; i-- {
		p := list[i]
		if uintptr(p)%align != 0 {
			continue
		}
		last := len(list) - 1
		list[i] = list[last]
		list[last] = nil
		a.free[class-minClassBits] = list[:last]
		return p
	}
	return nil
}

func (a *Arena) bumpLocked(size, align uintptr) (unsafe.Pointer, error) {
	for {
		if c := a.current; c != nil {
			addr := uintptr(c.base) + c.offset
			pad := conv.AlignUp(addr, align) - addr
			if c.offset+pad+size <= c.size {
				p := unsafe.Add(c.base, c.offset+pad) //nolint:gosec // unsafe is required for arena implementation
				c.offset += pad + size
				return p, nil
			}
		}
		if err := a.allocateChunkLocked(); err != nil {
			return nil, err
		}
	}
}

func (a *Arena) allocateChunkLocked() error {
	if len(a.chunks) >= MaxChunks {
		return ErrMaxChunksExceeded
	}

	mapping, err := a.mapLocked(a.chunkSize)
	if err != nil {
		return fmt.Errorf("failed to map anonymous memory for chunk: %w", err)
	}

	c := &chunk{
		mapping: mapping,
		base:    unsafe.Pointer(&mapping.Bytes()[0]), //nolint:gosec // unsafe is required for arena implementation
		size:    a.chunkSize,
	}
	a.chunks = append(a.chunks, c)
	a.current = c

	a.stats.ChunksAllocated++
	a.stats.ActiveChunks++

	a.logger.Debug("arena chunk mapped",
		"chunk", len(a.chunks)-1,
		"size", a.chunkSize,
	)
	return nil
}

func (a *Arena) allocLargeLocked(size, align uintptr) (unsafe.Pointer, error) {
	page := uintptr(os.Getpagesize())
	mapSize := conv.AlignUp(size, page)
	if align > page {
		mapSize += align - page
	}

	mapping, err := a.mapLocked(mapSize)
	if err != nil {
		return nil, fmt.Errorf("failed to map anonymous memory for large block: %w", err)
	}

	base := unsafe.Pointer(&mapping.Bytes()[0]) //nolint:gosec // unsafe is required for arena implementation
	pad := conv.AlignUp(uintptr(base), align) - uintptr(base)
	p := unsafe.Add(base, pad) //nolint:gosec // unsafe is required for arena implementation

	a.large[p] = mapping
	a.stats.LargeBlocks++
	a.stats.BytesUsed += uint64(size)
	a.stats.TotalAllocs++

	a.logger.Debug("arena large block mapped",
		"size", size,
		"mapped", mapSize,
	)
	return p, nil
}

func (a *Arena) mapLocked(size uintptr) (*mmap.Mapping, error) {
	n, err := conv.UintptrToInt(size)
	if err != nil {
		return nil, err
	}
	if a.acquirer != nil {
		if err := a.acquirer.AcquireMemory(int64(n)); err != nil {
			return nil, err
		}
	}

	mapping, err := mmap.MapAnon(n)
	if err != nil {
		if a.acquirer != nil {
			a.acquirer.ReleaseMemory(int64(n))
		}
		return nil, err
	}
	a.stats.BytesReserved += uint64(size)
	return mapping, nil
}

func (a *Arena) unmapLocked(m *mmap.Mapping) error {
	size := m.Size()
	if err := m.Close(); err != nil {
		return err
	}
	if a.acquirer != nil {
		a.acquirer.ReleaseMemory(int64(size))
	}
	a.stats.BytesReserved -= uint64(size)
	return nil
}

// Free returns a block obtained from Alloc with the same size and align.
// Freeing a block that is not live returns ErrUnknownBlock.
func (a *Arena) Free(p unsafe.Pointer, size, align uintptr) error {
	if p == nil {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}

	if size > a.maxSmall || align > a.maxSmall {
		m, ok := a.large[p]
		if !ok {
			return ErrUnknownBlock
		}
		delete(a.large, p)
		a.stats.LargeBlocks--
		a.stats.BytesUsed -= uint64(size)
		a.stats.TotalFrees++
		return a.unmapLocked(m)
	}

	class := classOf(size, align)
	if live, ok := a.live[p]; !ok || live != class {
		return ErrUnknownBlock
	}
	delete(a.live, p)
	a.free[class-minClassBits] = append(a.free[class-minClassBits], p)

	a.stats.BytesUsed -= uint64(size)
	a.stats.BytesWasted -= uint64((uintptr(1) << class) - size)
	a.stats.TotalFrees++
	return nil
}

// Stats returns the current arena statistics.
func (a *Arena) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// Reset forgets all small allocations and unmaps every chunk but the first.
//
// IMPORTANT: all blocks handed out before Reset become invalid. Large blocks
// are left untouched and must still be freed individually.
func (a *Arena) Reset() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}

	var errs []error
	for i := 1; i < len(a.chunks); i++ {
		errs = append(errs, a.unmapLocked(a.chunks[i].mapping))
		a.chunks[i] = nil
	}
	if len(a.chunks) > 0 {
		first := a.chunks[0]
		clear(unsafe.Slice((*byte)(first.base), first.offset))
		first.offset = 0
		// The chunk is zeroed already; let the kernel drop its pages.
		if err := first.mapping.Discard(); err != nil {
			a.logger.Debug("arena discard failed", "error", err)
		}
		a.chunks = a.chunks[:1]
		a.current = first
	}
	for i := range a.free {
		a.free[i] = nil
	}
	clear(a.live)

	a.stats.ActiveChunks = uint64(len(a.chunks))
	a.stats.BytesUsed = 0
	a.stats.BytesWasted = 0
	return errors.Join(errs...)
}

// Close unmaps all memory. Every block handed out becomes invalid.
// Close is idempotent.
func (a *Arena) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	var errs []error
	for _, c := range a.chunks {
		errs = append(errs, a.unmapLocked(c.mapping))
	}
	for p, m := range a.large {
		errs = append(errs, a.unmapLocked(m))
		delete(a.large, p)
	}
	a.chunks = nil
	a.current = nil
	a.free = nil
	a.live = nil

	a.stats.ActiveChunks = 0
	a.stats.LargeBlocks = 0
	a.stats.BytesUsed = 0
	a.stats.BytesWasted = 0

	a.logger.Debug("arena closed", "chunks_allocated", a.stats.ChunksAllocated)
	return errors.Join(errs...)
}

// Usage returns the memory usage percentage.
func (a *Arena) Usage() float64 {
	stats := a.Stats()
	if stats.BytesReserved == 0 {
		return 0
	}
	return float64(stats.BytesUsed) / float64(stats.BytesReserved) * 100
}

func (a *Arena) String() string {
	stats := a.Stats()
	return fmt.Sprintf(
		"Arena{chunks: %d, large: %d, reserved: %.2f MB, used: %.2f MB, wasted: %.2f KB, usage: %.1f%%, allocs: %d, frees: %d}",
		stats.ActiveChunks,
		stats.LargeBlocks,
		float64(stats.BytesReserved)/(1024*1024),
		float64(stats.BytesUsed)/(1024*1024),
		float64(stats.BytesWasted)/1024,
		a.Usage(),
		stats.TotalAllocs,
		stats.TotalFrees,
	)
}
