package resource

import (
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// ErrMemoryLimitExceeded is matched by every *LimitError.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// LimitError reports a reservation the budget could not cover.
type LimitError struct {
	Requested int64
	InUse     int64
	Limit     int64
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("memory limit exceeded: requested %d bytes with %d of %d in use", e.Requested, e.InUse, e.Limit)
}

// Is reports whether target is ErrMemoryLimitExceeded.
func (e *LimitError) Is(target error) bool { return target == ErrMemoryLimitExceeded }

// Config holds the budget.
type Config struct {
	// MemoryLimitBytes is the hard limit for reserved bytes.
	// If 0, usage is only tracked.
	MemoryLimitBytes int64
}

// Controller tracks reserved bytes against an optional hard limit.
type Controller struct {
	limit int64
	sem   *semaphore.Weighted // nil if unlimited
	used  atomic.Int64
	peak  atomic.Int64
}

// NewController creates a Controller for cfg.
func NewController(cfg Config) *Controller {
	c := &Controller{limit: max(cfg.MemoryLimitBytes, 0)}
	if c.limit > 0 {
		c.sem = semaphore.NewWeighted(c.limit)
	}
	return c
}

// AcquireMemory reserves bytes without blocking. It returns a *LimitError
// when the reservation would exceed the limit.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.sem != nil && !c.sem.TryAcquire(bytes) {
		return &LimitError{Requested: bytes, InUse: c.used.Load(), Limit: c.limit}
	}

	used := c.used.Add(bytes)
	for {
		peak := c.peak.Load()
		if used <= peak || c.peak.CompareAndSwap(peak, used) {
			return nil
		}
	}
}

// ReleaseMemory returns bytes reserved by AcquireMemory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}
	if c.sem != nil {
		c.sem.Release(bytes)
	}
	c.used.Add(-bytes)
}

// MemoryUsage returns the bytes currently reserved.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.used.Load()
}

// PeakMemoryUsage returns the highest reservation observed since creation.
func (c *Controller) PeakMemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.peak.Load()
}

// MemoryLimit returns the limit in bytes, or 0 if unlimited.
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.limit
}

// Available returns how many more bytes can be reserved, or -1 if unlimited.
func (c *Controller) Available() int64 {
	if c == nil || c.limit == 0 {
		return -1
	}
	return c.limit - c.used.Load()
}
