// Package pagedmem provides large, growable, off-heap byte-addressable memory
// for analytics workloads that must stay clear of the garbage collector.
//
// # Architecture
//
//	┌──────────┐  alloc / read / write / transfer   ┌──────────┐
//	│  caller  │ ─────────────────────────────────► │  Arena   │  page table, used/allocated size
//	└──────────┘                                    └────┬─────┘
//	                                                     │ AllocatePage / ReleasePage (growth only)
//	                                                ┌────▼─────┐      ┌──────────────────────┐
//	                                                │ Supplier │ ───► │ native.Allocator     │ mmap / heap
//	                                                └────┬─────┘      │ resource.Controller  │ budget / rate
//	                                                     │ Register   └──────────────────────┘
//	                                                ┌────▼─────┐
//	                                                │   Pool   │  diagnostics, release-all
//	                                                └──────────┘
//
// # Quick Start
//
//	pool := pagedmem.NewPool()
//	supplier := pagedmem.NewSupplier("symbols", pagedmem.WithPool(pool))
//
//	mem, _ := pagedmem.NewArena(supplier)
//	defer mem.Release()
//
//	addr, _ := mem.Alloc(16)
//	_ = mem.PutInt64(addr, 42)
//	v, _ := mem.Int64(addr)
//
//	_ = pool.Dump(os.Stderr)
//
// # Addressing
//
// An arena is a single logical address space [0, UsedSize) stitched together
// from 4 MiB pages (PageSize). Pages are not adjacent in memory, so every
// multi-byte access that straddles a page boundary is decomposed into bytes.
// Words are stored in native byte order; the fast path and the straddling
// path share one codec and produce identical layouts.
//
// # Allocation
//
// Alloc is a bump allocator. Capacity that is already backed by pages is
// handed out with a single compare-and-swap. When capacity runs out, one
// goroutine grows the arena under a per-arena lock while others either find
// the new capacity or wait for the lock. Memory is never reclaimed
// individually; Release returns all pages at once.
//
// # Errors
//
//   - ErrOutOfBounds (*OutOfBoundsError): address outside [0, UsedSize)
//   - ErrAllocationFailed (*AllocationError): supplier could not obtain a page
//   - ErrReleased: operation on a released arena
//
// # Data Structures
//
// Package collections builds an int64 hashtable and a string symbol table on
// top of arenas.
package pagedmem
