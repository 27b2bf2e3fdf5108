package heapslice

import (
	"testing"

	"github.com/hupe1980/heapslice/alloc"
	"github.com/hupe1980/heapslice/testutil"
)

func BenchmarkFromSlice(b *testing.B) {
	rng := testutil.NewRNG(1)
	ints := rng.Ints(256)
	arena, err := alloc.NewOffHeap()
	if err != nil {
		b.Fatal(err)
	}
	defer arena.Close()

	b.Run("Heap", func(b *testing.B) {
		b.ReportAllocs()
		for range b.N {
			s := FromSlice(ints)
			s.Release()
		}
	})

	b.Run("OffHeap", func(b *testing.B) {
		b.ReportAllocs()
		for range b.N {
			s := FromSliceIn(arena, ints)
			s.ReleaseIn(arena)
		}
	})

	b.Run("Builtin", func(b *testing.B) {
		b.ReportAllocs()
		for range b.N {
			_ = append([]int(nil), ints...)
		}
	})
}

func BenchmarkStrFromBytes(b *testing.B) {
	rng := testutil.NewRNG(1)
	raw := BytesFrom([]byte(rng.UTF8String(1024)))
	defer raw.Release()

	b.ReportAllocs()
	b.SetBytes(int64(raw.Len()))
	for range b.N {
		s, err := StrFromBytes(raw)
		if err != nil {
			b.Fatal(err)
		}
		_ = s.Len()
	}
}

func BenchmarkView(b *testing.B) {
	s := FromSlice(make([]int, 64))
	defer s.Release()

	var sum int
	for range b.N {
		for _, v := range s.View() {
			sum += v
		}
	}
	_ = sum
}
