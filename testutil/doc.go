// Package testutil provides testing utilities for pagedmem.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random Data
//
//	rng := testutil.NewRNG(seed)
//	payload := rng.Bytes(4096)
//
// # Reference Memmove
//
// Memmove operates on a flat buffer and serves as ground truth for
// Arena.Transfer:
//
//	testutil.Memmove(mirror, src, dst, n)
package testutil
