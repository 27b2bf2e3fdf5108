package mmap

import (
	"os"
	"sync/atomic"
)

// Mapping is an anonymous, zero-filled, read-write memory region.
type Mapping struct {
	data   []byte
	closed atomic.Bool
}

// MapAnon maps size bytes of zeroed anonymous memory.
func MapAnon(size int) (*Mapping, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	data, err := osMapAnon(size)
	if err != nil {
		return nil, err
	}

	return &Mapping{data: data}, nil
}

// Close unmaps the region. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	return osUnmap(m.data)
}

// Bytes returns the mapped region, or nil after Close.
// Touching a previously returned slice after Close faults.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Size returns the size of the mapping in bytes.
func (m *Mapping) Size() int {
	return len(m.data)
}

// Closed reports whether Close has been called.
func (m *Mapping) Closed() bool {
	return m.closed.Load()
}

// Discard tells the kernel the contents of the whole mapping are no longer
// needed. The mapping stays valid. Callers must zero the region first if
// they rely on it reading as zero, since not every platform drops the pages.
func (m *Mapping) Discard() error {
	return m.DiscardRange(0, len(m.data))
}

// DiscardRange is Discard for [offset, offset+size). Only the whole pages
// inside the range are discarded.
func (m *Mapping) DiscardRange(offset, size int) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if offset < 0 || size < 0 || offset+size > len(m.data) {
		return ErrOutOfBounds
	}

	page := os.Getpagesize()
	start := (offset + page - 1) &^ (page - 1)
	end := (offset + size) &^ (page - 1)
	if start >= end {
		return nil
	}
	return osDiscard(m.data[start:end])
}
