// Package mmap provides anonymous memory mappings for off-heap storage.
//
// # Overview
//
// Pages handed out by this package live outside the Go heap: the garbage
// collector neither scans nor moves them, which keeps multi-gigabyte arenas
// free of GC pressure. Memory is returned to the OS only when the mapping is
// closed.
//
// # Usage
//
//	m, err := mmap.MapAnon(4 << 20)
//	if err != nil { ... }
//	defer m.Close()
//
//	buf := m.Bytes() // zero-filled, read-write
//	_ = m.Advise(mmap.AccessRandom)
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with MAP_ANON|MAP_PRIVATE, madvise(2) for hints
//   - Windows: VirtualAlloc/VirtualFree (advice is a no-op)
//
// # Thread Safety
//
// Close is idempotent and protected by atomic operations. Callers must ensure
// no goroutine touches Bytes() after Close() returns.
package mmap
