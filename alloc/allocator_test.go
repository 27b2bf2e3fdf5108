package alloc

import (
	"runtime"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/heapslice/internal/resource"
)

func mustLayout[T any](t *testing.T, n int) Layout {
	t.Helper()
	l, err := LayoutOf[T](n)
	require.NoError(t, err)
	return l
}

func TestHeap_RawBlocks(t *testing.T) {
	h := NewHeap()

	for _, n := range []int{1, 7, 44, 1000} {
		l := mustLayout[byte](t, n)
		p := h.Alloc(l)
		require.NotNil(t, p)
		assert.Zero(t, uintptr(p)%l.Align)

		buf := unsafe.Slice((*byte)(p), l.Size)
		for _, b := range buf {
			assert.Zero(t, b)
		}
		h.Free(p, l)
	}
}

func TestHeap_StrictAlignment(t *testing.T) {
	h := NewHeap()

	l, err := ArrayLayout(16, 16, 3)
	require.NoError(t, err)
	p := h.Alloc(l)
	assert.Zero(t, uintptr(p)%16)
	for i := range 3 {
		elem := unsafe.Add(p, l.Header+uintptr(i)*16)
		assert.Zero(t, uintptr(elem)%16)
	}
}

func TestHeap_TypedBlocksKeepReferencesAlive(t *testing.T) {
	h := NewHeap()
	l := mustLayout[*int](t, 9)
	require.True(t, l.Pointers)

	p := h.Alloc(l)
	*(*uintptr)(p) = uintptr(l.Count)
	elems := unsafe.Slice((**int)(unsafe.Add(p, l.Header)), l.Count)
	for i := range elems {
		v := i * 10
		elems[i] = &v
	}

	runtime.GC()
	runtime.GC()

	for i, e := range elems {
		assert.Equal(t, i*10, *e)
	}
	assert.Equal(t, uintptr(9), *(*uintptr)(p))
	runtime.KeepAlive(p)
}

func TestCapacityClass(t *testing.T) {
	for n := 0; n <= 8; n++ {
		assert.Equal(t, n, capacityClass(n))
	}
	for n := 9; n < 5000; n++ {
		c := capacityClass(n)
		assert.GreaterOrEqual(t, c, n)
		assert.LessOrEqual(t, c, n+n/4+1, "n=%d", n)
	}
}

func TestOffHeap(t *testing.T) {
	o, err := NewOffHeap(WithChunkSize(64 * 1024))
	require.NoError(t, err)
	defer o.Close()

	l := mustLayout[uint64](t, 10)
	p := o.Alloc(l)
	assert.Zero(t, uintptr(p)%l.Align)

	elems := unsafe.Slice((*uint64)(unsafe.Add(p, l.Header)), 10)
	for i := range elems {
		elems[i] = uint64(i)
	}

	stats := o.Stats()
	assert.Equal(t, uint64(l.Size), stats.BytesUsed)
	assert.Equal(t, int64(64*1024), o.MemoryUsage())
	assert.Contains(t, o.String(), "Arena{")

	o.Free(p, l)
	assert.Zero(t, o.Stats().BytesUsed)
}

func TestOffHeap_StrictAlignment(t *testing.T) {
	o, err := NewOffHeap()
	require.NoError(t, err)
	defer o.Close()

	for _, align := range []uintptr{16, 64} {
		l, err := ArrayLayout(align, align, 5)
		require.NoError(t, err)
		assert.Equal(t, align, l.Header)

		p := o.Alloc(l)
		for i := range uintptr(5) {
			assert.Zero(t, uintptr(unsafe.Add(p, l.Header+i*align))%align)
		}
		o.Free(p, l)
	}
}

func TestOffHeap_Reset(t *testing.T) {
	o, err := NewOffHeap(WithChunkSize(64 * 1024))
	require.NoError(t, err)
	defer o.Close()

	l := mustLayout[byte](t, 100)
	for range 1000 {
		o.Alloc(l)
	}
	require.Greater(t, o.Stats().ActiveChunks, uint64(1))

	require.NoError(t, o.Reset())
	stats := o.Stats()
	assert.Equal(t, uint64(1), stats.ActiveChunks)
	assert.Zero(t, stats.BytesUsed)
	assert.Equal(t, int64(64*1024), o.MemoryUsage())

	p := o.Alloc(l)
	for _, b := range unsafe.Slice((*byte)(p), l.Size) {
		assert.Zero(t, b)
	}
	o.Free(p, l)
}

func TestOffHeap_DoubleFree(t *testing.T) {
	o, err := NewOffHeap()
	require.NoError(t, err)
	defer o.Close()

	l := mustLayout[uint64](t, 4)
	p := o.Alloc(l)
	o.Free(p, l)

	func() {
		defer func() {
			r := recover()
			require.NotNil(t, r)
			var misuse *MisuseError
			require.ErrorAs(t, r.(error), &misuse)
			assert.ErrorIs(t, misuse, ErrDoubleFree)
			assert.Equal(t, uintptr(p), misuse.Addr)
		}()
		o.Free(p, l)
	}()

	a := o.Alloc(l)
	b := o.Alloc(l)
	assert.NotEqual(t, a, b)
}

func TestOffHeap_RejectsPointers(t *testing.T) {
	o, err := NewOffHeap()
	require.NoError(t, err)
	defer o.Close()

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.ErrorIs(t, err, ErrPointerLayout)
	}()
	o.Alloc(mustLayout[string](t, 1))
}

func TestOffHeap_ExhaustionIsFatal(t *testing.T) {
	o, err := NewOffHeap(WithChunkSize(64*1024), WithMemoryLimit(64*1024))
	require.NoError(t, err)
	defer o.Close()

	l := mustLayout[byte](t, 128*1024)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		var ex *ExhaustedError
		require.ErrorAs(t, r.(error), &ex)
		assert.ErrorIs(t, ex, ErrExhausted)
		assert.Equal(t, l.Size, ex.Layout.Size)
		assert.Contains(t, ex.Error(), "memory exhausted")
	}()
	o.Alloc(l)
}

func TestTracking(t *testing.T) {
	tr := NewTracking(nil, nil)

	a := mustLayout[byte](t, 4)
	b := mustLayout[string](t, 2)

	pa := tr.Alloc(a)
	pb := tr.Alloc(b)
	assert.True(t, tr.Live(pa))
	assert.True(t, tr.Live(pb))

	stats := tr.Stats()
	assert.Equal(t, uint64(2), stats.Allocs)
	assert.Equal(t, uint64(2), stats.LiveBlocks)
	assert.Equal(t, uint64(a.Size+b.Size), stats.LiveBytes)

	assert.Len(t, tr.Leaks(), 2)

	tr.Free(pa, a)
	assert.False(t, tr.Live(pa))
	assert.Equal(t, []Layout{b}, tr.Leaks())

	tr.Free(pb, b)
	stats = tr.Stats()
	assert.Zero(t, stats.LiveBlocks)
	assert.Zero(t, stats.LiveBytes)
	assert.Equal(t, uint64(a.Size+b.Size), stats.PeakBytes)
	assert.Empty(t, tr.Leaks())
}

func TestTracking_DoubleFree(t *testing.T) {
	tr := NewTracking(nil, nil)
	l := mustLayout[byte](t, 4)
	p := tr.Alloc(l)
	tr.Free(p, l)

	assert.PanicsWithError(t, (&MisuseError{Addr: uintptr(p), Layout: l, Err: ErrDoubleFree}).Error(), func() {
		tr.Free(p, l)
	})
}

func TestTracking_LayoutMismatch(t *testing.T) {
	tr := NewTracking(nil, nil)
	l := mustLayout[byte](t, 4)
	p := tr.Alloc(l)

	wrong := mustLayout[byte](t, 5)
	func() {
		defer func() {
			r := recover()
			require.NotNil(t, r)
			assert.ErrorIs(t, r.(error), ErrLayoutMismatch)
		}()
		tr.Free(p, wrong)
	}()

	// Still live after the rejected free.
	assert.True(t, tr.Live(p))
	tr.Free(p, l)
}

func TestLimited(t *testing.T) {
	lim := NewLimited(nil, 64)
	assert.Equal(t, int64(64), lim.MemoryLimit())

	l := mustLayout[byte](t, 40)
	p := lim.Alloc(l)
	assert.Equal(t, int64(l.Size), lim.MemoryUsage())
	assert.Equal(t, 64-int64(l.Size), lim.Available())

	assert.PanicsWithError(t, (&ExhaustedError{Layout: l, cause: &resource.LimitError{
		Requested: int64(l.Size), InUse: int64(l.Size), Limit: 64,
	}}).Error(), func() { lim.Alloc(l) })

	lim.Free(p, l)
	assert.Zero(t, lim.MemoryUsage())
	assert.Equal(t, int64(l.Size), lim.PeakMemoryUsage())

	p = lim.Alloc(l)
	lim.Free(p, l)
}

func TestLimited_ReleasesBudgetWhenInnerAllocPanics(t *testing.T) {
	o, err := NewOffHeap()
	require.NoError(t, err)
	defer o.Close()

	lim := NewLimited(o, 1<<20)

	assert.Panics(t, func() { lim.Alloc(mustLayout[string](t, 4)) })
	assert.Zero(t, lim.MemoryUsage())
	assert.Equal(t, int64(1<<20), lim.Available())

	inner := NewLimited(nil, 64)
	outer := NewLimited(inner, 1<<20)
	assert.Panics(t, func() { outer.Alloc(mustLayout[byte](t, 100)) })
	assert.Zero(t, outer.MemoryUsage())
	assert.Zero(t, inner.MemoryUsage())

	l := mustLayout[uint64](t, 4)
	p := lim.Alloc(l)
	assert.Equal(t, int64(l.Size), lim.MemoryUsage())
	lim.Free(p, l)
	assert.Zero(t, lim.MemoryUsage())
}

func TestLimited_FreeRejectsOversizedLayout(t *testing.T) {
	lim := NewLimited(nil, 64)
	l := Layout{Size: ^uintptr(0), Align: WordSize, Header: WordSize}

	defer func() {
		r := recover()
		require.NotNil(t, r)
		var misuse *MisuseError
		require.ErrorAs(t, r.(error), &misuse)
		assert.ErrorIs(t, misuse, ErrLayoutMismatch)
	}()
	var word uintptr
	lim.Free(unsafe.Pointer(&word), l)
}

func TestFunc(t *testing.T) {
	var allocs, frees int
	h := NewHeap()
	f := Func{
		AllocFunc: func(l Layout) unsafe.Pointer { allocs++; return h.Alloc(l) },
		FreeFunc:  func(p unsafe.Pointer, l Layout) { frees++ },
	}

	l := mustLayout[byte](t, 1)
	f.Free(f.Alloc(l), l)
	assert.Equal(t, 1, allocs)
	assert.Equal(t, 1, frees)

	Func{AllocFunc: h.Alloc}.Free(nil, l)
}
