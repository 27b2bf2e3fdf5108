package testutil

import (
	"math/rand"
	"strings"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), //nolint:gosec // deterministic test data
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Bytes returns n pseudo-random bytes.
func (r *RNG) Bytes(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := make([]byte, n)
	_, _ = r.rand.Read(b)
	return b
}

// Ints returns n pseudo-random ints.
func (r *RNG) Ints(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	v := make([]int, n)
	for i := range v {
		v[i] = r.rand.Int()
	}
	return v
}

// runeRanges covers every UTF-8 encoding length.
var runeRanges = [][2]rune{
	{0x20, 0x7E},        // ASCII
	{0xA0, 0x7FF},       // two bytes
	{0x800, 0xD7FF},     // three bytes below surrogates
	{0xE000, 0xFFFD},    // three bytes above surrogates
	{0x10000, 0x10FFFF}, // four bytes
}

// UTF8String returns a valid UTF-8 string of n runes drawn from all
// encoding lengths.
func (r *RNG) UTF8String(n int) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var sb strings.Builder
	for range n {
		rg := runeRanges[r.rand.Intn(len(runeRanges))]
		sb.WriteRune(rg[0] + rune(r.rand.Int63n(int64(rg[1]-rg[0]+1))))
	}
	return sb.String()
}

// InvalidUTF8 returns n bytes (n >= 1) that are not valid UTF-8. The
// returned offset is the position of the first invalid byte.
func (r *RNG) InvalidUTF8(n int) ([]byte, int) {
	n = max(n, 1)
	prefix := r.UTF8String(r.Intn(n))
	if len(prefix) >= n {
		prefix = ""
	}

	b := make([]byte, 0, n)
	b = append(b, prefix...)
	offset := len(b)
	b = append(b, 0x80)
	for len(b) < n {
		b = append(b, byte(r.Intn(0x80)))
	}
	return b, offset
}
