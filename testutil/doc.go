// Package testutil provides testing utilities for heapslice.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, goroutine-safe random source that generates
// byte payloads, valid and invalid UTF-8 text and integer sequences
// for property-style tests.
//
// # Random Inputs
//
//	rng := testutil.NewRNG(seed)
//	b := rng.Bytes(64)        // arbitrary bytes
//	s := rng.UTF8String(16)   // 16 runes of valid UTF-8
//	bad := rng.InvalidUTF8(32) // bytes that fail validation
package testutil
