package heapslice

import (
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/hupe1980/heapslice/alloc"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    allocBytes prometheus.Counter
//	}
//
//	func (p *PrometheusCollector) RecordAlloc(size uintptr, duration time.Duration) {
//	    p.allocBytes.Add(float64(size))
//	}
type MetricsCollector interface {
	// RecordAlloc is called after each block allocation through the
	// configured allocator.
	RecordAlloc(size uintptr, duration time.Duration)

	// RecordFree is called after each block is released.
	RecordFree(size uintptr)

	// RecordValidation is called after each checked text construction.
	// err is nil if the bytes were valid UTF-8.
	RecordValidation(size int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAlloc(uintptr, time.Duration) {}
func (NoopMetricsCollector) RecordFree(uintptr) {}
func (NoopMetricsCollector) RecordValidation(int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AllocCount           atomic.Int64
	AllocBytes           atomic.Int64
	AllocTotalNanos      atomic.Int64
	FreeCount            atomic.Int64
	FreeBytes            atomic.Int64
	ValidationCount      atomic.Int64
	ValidationErrors     atomic.Int64
	ValidationBytes      atomic.Int64
	ValidationTotalNanos atomic.Int64
}

// RecordAlloc implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAlloc(size uintptr, duration time.Duration) {
	b.AllocCount.Add(1)
	b.AllocBytes.Add(int64(size)) //nolint:gosec // block sizes fit in int64
	b.AllocTotalNanos.Add(duration.Nanoseconds())
}

// RecordFree implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFree(size uintptr) {
	b.FreeCount.Add(1)
	b.FreeBytes.Add(int64(size)) //nolint:gosec // block sizes fit in int64
}

// RecordValidation implements MetricsCollector.
func (b *BasicMetricsCollector) RecordValidation(size int, duration time.Duration, err error) {
	b.ValidationCount.Add(1)
	b.ValidationBytes.Add(int64(size))
	b.ValidationTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ValidationErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AllocCount:         b.AllocCount.Load(),
		AllocBytes:         b.AllocBytes.Load(),
		AllocAvgNanos:      avg(b.AllocTotalNanos.Load(), b.AllocCount.Load()),
		FreeCount:          b.FreeCount.Load(),
		FreeBytes:          b.FreeBytes.Load(),
		LiveBytes:          b.AllocBytes.Load() - b.FreeBytes.Load(),
		ValidationCount:    b.ValidationCount.Load(),
		ValidationErrors:   b.ValidationErrors.Load(),
		ValidationBytes:    b.ValidationBytes.Load(),
		ValidationAvgNanos: avg(b.ValidationTotalNanos.Load(), b.ValidationCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AllocCount         int64
	AllocBytes         int64
	AllocAvgNanos      int64
	FreeCount          int64
	FreeBytes          int64
	LiveBytes          int64
	ValidationCount    int64
	ValidationErrors   int64
	ValidationBytes    int64
	ValidationAvgNanos int64
}

// instrumentedAllocator reports every block to a MetricsCollector.
type instrumentedAllocator struct {
	next    alloc.Allocator
	metrics MetricsCollector
}

func (a *instrumentedAllocator) Alloc(l alloc.Layout) unsafe.Pointer {
	start := time.Now()
	p := a.next.Alloc(l)
	a.metrics.RecordAlloc(l.Size, time.Since(start))
	return p
}

func (a *instrumentedAllocator) Free(p unsafe.Pointer, l alloc.Layout) {
	a.next.Free(p, l)
	a.metrics.RecordFree(l.Size)
}
