// Package hash provides the content hashes used by the containers.
//
// # xxHash64
//
// Byte and text containers hash their content with xxHash64
// (github.com/cespare/xxhash/v2), which is deterministic across processes
// and fast on short inputs:
//
//	sum := hash.Sum64(data)
//
// # Sequences
//
// Element sequences hash each element into a running digest so the result
// depends on both the elements and their order. The element count is mixed
// in first, which keeps a sequence distinct from its own prefixes:
//
//	d := hash.NewDigest(len(elems))
//	for _, e := range elems {
//	    d.WriteUint64(elemHash(e))
//	}
//	sum := d.Sum64()
package hash
