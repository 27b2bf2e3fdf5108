package heapslice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/heapslice/alloc"
)

type options struct {
	allocator        alloc.Allocator
	memoryLimit      int64
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures the process-wide defaults installed by Configure.
type Option func(*options)

// WithAllocator sets the allocator used by the constructors and Release
// methods that do not take an explicit allocator.
//
// If nil is passed, alloc.NewHeap() is used.
func WithAllocator(a alloc.Allocator) Option {
	return func(o *options) {
		o.allocator = a
	}
}

// WithMemoryLimit caps the bytes of live blocks allocated through the
// default allocator. Exceeding it is allocation exhaustion.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithMetricsCollector configures a metrics collector for allocations and
// UTF-8 validation. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &heapslice.BasicMetricsCollector{}
//	_ = heapslice.Configure(heapslice.WithMetricsCollector(metrics))
//	// ... use containers ...
//	stats := metrics.GetStats()
//	fmt.Printf("Live bytes: %d\n", stats.LiveBytes)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := heapslice.NewJSONLogger(slog.LevelInfo)
//	_ = heapslice.Configure(heapslice.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}

// runtimeConfig is the installed process-wide configuration.
type runtimeConfig struct {
	allocator alloc.Allocator
	metrics   MetricsCollector
	logger    *Logger
}

var (
	configMu sync.Mutex
	config   atomic.Pointer[runtimeConfig]
)

// Configure installs the process-wide allocator, metrics and logger.
//
// It must run before any container allocates or releases through the
// default allocator, because blocks must be freed by the allocator that
// produced them. Once the defaults are in use it returns ErrAlreadyConfigured.
func Configure(opts ...Option) error {
	o := applyOptions(opts)

	configMu.Lock()
	defer configMu.Unlock()

	name := allocatorName(o.allocator)
	if config.Load() != nil {
		o.logger.LogConfigure(context.Background(), name, o.memoryLimit, ErrAlreadyConfigured)
		return ErrAlreadyConfigured
	}

	config.Store(newRuntimeConfig(o))
	o.logger.LogConfigure(context.Background(), name, o.memoryLimit, nil)
	return nil
}

func newRuntimeConfig(o options) *runtimeConfig {
	var a alloc.Allocator = alloc.NewHeap()
	if o.allocator != nil {
		a = o.allocator
	}
	if o.memoryLimit > 0 {
		a = alloc.NewLimited(a, o.memoryLimit)
	}
	if _, noop := o.metricsCollector.(NoopMetricsCollector); !noop {
		a = &instrumentedAllocator{next: a, metrics: o.metricsCollector}
	}
	return &runtimeConfig{
		allocator: a,
		metrics:   o.metricsCollector,
		logger:    o.logger.WithAllocator(allocatorName(o.allocator)),
	}
}

// current returns the installed configuration, installing the defaults on
// first use.
func current() *runtimeConfig {
	if c := config.Load(); c != nil {
		return c
	}

	configMu.Lock()
	defer configMu.Unlock()

	if c := config.Load(); c != nil {
		return c
	}
	c := newRuntimeConfig(applyOptions(nil))
	config.Store(c)
	return c
}

// observers returns the metrics and logger without locking in the defaults.
func observers() (MetricsCollector, *Logger) {
	if c := config.Load(); c != nil {
		return c.metrics, c.logger
	}
	return NoopMetricsCollector{}, nil
}

func defaultAllocator() alloc.Allocator {
	return current().allocator
}

func allocatorName(a alloc.Allocator) string {
	if a == nil {
		return "heap"
	}
	switch a.(type) {
	case *alloc.Heap:
		return "heap"
	case *alloc.OffHeap:
		return "off-heap"
	case *alloc.Tracking:
		return "tracking"
	case *alloc.Limited:
		return "limited"
	default:
		return fmt.Sprintf("%T", a)
	}
}

// resetConfig drops the installed configuration. Test-only.
func resetConfig() {
	configMu.Lock()
	defer configMu.Unlock()
	config.Store(nil)
}
