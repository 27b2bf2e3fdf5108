package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntToUintptr(t *testing.T) {
	t.Run("valid zero", func(t *testing.T) {
		got, err := IntToUintptr(0)
		assert.NoError(t, err)
		assert.Equal(t, uintptr(0), got)
	})

	t.Run("valid max int", func(t *testing.T) {
		got, err := IntToUintptr(math.MaxInt)
		assert.NoError(t, err)
		assert.Equal(t, uintptr(math.MaxInt), got)
	})

	t.Run("invalid negative", func(t *testing.T) {
		_, err := IntToUintptr(-1)
		assert.Error(t, err)
	})
}

func TestUintptrToInt(t *testing.T) {
	got, err := UintptrToInt(42)
	assert.NoError(t, err)
	assert.Equal(t, 42, got)

	_, err = UintptrToInt(^uintptr(0))
	assert.Error(t, err)
}

func TestUintptrToInt64(t *testing.T) {
	got, err := UintptrToInt64(4096)
	assert.NoError(t, err)
	assert.Equal(t, int64(4096), got)
}

func TestMulUintptr(t *testing.T) {
	got, overflow := MulUintptr(16, 4)
	assert.False(t, overflow)
	assert.Equal(t, uintptr(64), got)

	_, overflow = MulUintptr(^uintptr(0), 2)
	assert.True(t, overflow)

	got, overflow = MulUintptr(0, ^uintptr(0))
	assert.False(t, overflow)
	assert.Equal(t, uintptr(0), got)
}

func TestAddUintptr(t *testing.T) {
	got, overflow := AddUintptr(8, 44)
	assert.False(t, overflow)
	assert.Equal(t, uintptr(52), got)

	_, overflow = AddUintptr(^uintptr(0), 1)
	assert.True(t, overflow)
}

func TestAlignUp(t *testing.T) {
	tests := []struct {
		v, align, want uintptr
	}{
		{0, 8, 0},
		{1, 8, 8},
		{8, 8, 8},
		{9, 16, 16},
		{52, 8, 56},
		{17, 1, 17},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AlignUp(tt.v, tt.align), "AlignUp(%d, %d)", tt.v, tt.align)
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	assert.True(t, IsPowerOfTwo(1))
	assert.True(t, IsPowerOfTwo(16))
	assert.False(t, IsPowerOfTwo(0))
	assert.False(t, IsPowerOfTwo(24))
}
