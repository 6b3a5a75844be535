// Package native provides the native-memory capability consumed by page
// suppliers.
//
// An Allocator hands out fixed-size Blocks and takes them back on Close.
// Two implementations ship with the package:
//
//   - Mmap: anonymous mappings outside the Go heap (the production default)
//   - Heap: 64-byte aligned Go byte slices, for tests and restricted platforms
//
// Custom allocators (hugepage pools, shared memory, fault injection) only
// need to satisfy the two-method Allocator interface.
package native
