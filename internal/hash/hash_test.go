package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSum64(t *testing.T) {
	data := "help me obi-wan kenobi, you're my only hope"

	assert.Equal(t, Sum64([]byte(data)), Sum64String(data))
	assert.NotEqual(t, Sum64([]byte("help")), Sum64([]byte("hel")))
	assert.Equal(t, Sum64(nil), Sum64String(""))
}

func TestDigest_OrderSensitive(t *testing.T) {
	sum := func(vals ...uint64) uint64 {
		d := NewDigest(len(vals))
		for _, v := range vals {
			d.WriteUint64(v)
		}
		return d.Sum64()
	}

	assert.Equal(t, sum(1, 2, 3), sum(1, 2, 3))
	assert.NotEqual(t, sum(1, 2, 3), sum(3, 2, 1))
	assert.NotEqual(t, sum(0), sum(0, 0))
	assert.NotEqual(t, sum(), sum(0))
}
