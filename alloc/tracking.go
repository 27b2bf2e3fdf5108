package alloc

import (
	"log/slog"
	"sync"
	"unsafe"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// TrackingStats summarizes the blocks that passed through a Tracking allocator.
type TrackingStats struct {
	Allocs     uint64
	Frees      uint64
	LiveBlocks uint64
	LiveBytes  uint64
	PeakBytes  uint64
}

type trackedBlock struct {
	p      unsafe.Pointer
	layout Layout
}

// Tracking wraps an Allocator and records every live block.
//
// Freeing a block that is not live (double free, foreign pointer) or freeing
// it with a different size or alignment panics with a *MisuseError. Live
// blocks are kept reachable until freed, so an unreleased container shows up
// in Leaks even when the inner allocator is garbage collected.
type Tracking struct {
	next   Allocator
	logger *slog.Logger

	mu     sync.Mutex
	live   *roaring64.Bitmap
	blocks map[uint64]trackedBlock
	stats  TrackingStats
}

// NewTracking wraps next. A nil next wraps a Heap.
func NewTracking(next Allocator, logger *slog.Logger) *Tracking {
	if next == nil {
		next = NewHeap()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Tracking{
		next:   next,
		logger: logger,
		live:   roaring64.New(),
		blocks: make(map[uint64]trackedBlock),
	}
}

// Alloc implements Allocator.
func (t *Tracking) Alloc(l Layout) unsafe.Pointer {
	p := t.next.Alloc(l)
	addr := uint64(uintptr(p))

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.live.CheckedAdd(addr) {
		t.logger.Warn("allocator returned a live block", "addr", addr, "layout", l.String())
	}
	t.blocks[addr] = trackedBlock{p: p, layout: l}

	t.stats.Allocs++
	t.stats.LiveBlocks++
	t.stats.LiveBytes += uint64(l.Size)
	t.stats.PeakBytes = max(t.stats.PeakBytes, t.stats.LiveBytes)
	return p
}

// Free implements Allocator.
func (t *Tracking) Free(p unsafe.Pointer, l Layout) {
	addr := uint64(uintptr(p))

	t.mu.Lock()
	if !t.live.CheckedRemove(addr) {
		t.mu.Unlock()
		t.logger.Error("double free", "addr", addr, "layout", l.String())
		panic(&MisuseError{Addr: uintptr(p), Layout: l, Err: ErrDoubleFree})
	}
	b := t.blocks[addr]
	if b.layout.Size != l.Size || b.layout.Align != l.Align {
		t.live.Add(addr)
		t.mu.Unlock()
		t.logger.Error("layout mismatch on free", "addr", addr, "allocated", b.layout.String(), "freed", l.String())
		panic(&MisuseError{Addr: uintptr(p), Layout: l, Err: ErrLayoutMismatch})
	}
	delete(t.blocks, addr)

	t.stats.Frees++
	t.stats.LiveBlocks--
	t.stats.LiveBytes -= uint64(l.Size)
	t.mu.Unlock()

	t.next.Free(p, l)
}

// Stats returns the current counters.
func (t *Tracking) Stats() TrackingStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// Live reports whether p is a live block of this allocator.
func (t *Tracking) Live(p unsafe.Pointer) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live.Contains(uint64(uintptr(p)))
}

// Leaks returns the layouts of all live blocks in address order and logs
// each one at warn level.
func (t *Tracking) Leaks() []Layout {
	t.mu.Lock()
	defer t.mu.Unlock()

	addrs := t.live.ToArray()
	leaks := make([]Layout, 0, len(addrs))
	for _, addr := range addrs {
		l := t.blocks[addr].layout
		t.logger.Warn("leaked block", "addr", addr, "layout", l.String())
		leaks = append(leaks, l)
	}
	return leaks
}
