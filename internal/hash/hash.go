package hash

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Sum64 returns the xxHash64 of data.
func Sum64(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Sum64String returns the xxHash64 of s without copying it.
func Sum64String(s string) uint64 {
	return xxhash.Sum64String(s)
}

// Digest is an order-sensitive running hash over a sequence of element hashes.
type Digest struct {
	d   *xxhash.Digest
	buf [8]byte
}

// NewDigest starts a digest for a sequence of n elements.
func NewDigest(n int) *Digest {
	d := &Digest{d: xxhash.New()}
	d.WriteUint64(uint64(n)) //nolint:gosec // lengths are non-negative
	return d
}

// WriteUint64 mixes v into the digest.
func (d *Digest) WriteUint64(v uint64) {
	binary.LittleEndian.PutUint64(d.buf[:], v)
	_, _ = d.d.Write(d.buf[:])
}

// Sum64 returns the current hash value.
func (d *Digest) Sum64() uint64 {
	return d.d.Sum64()
}
