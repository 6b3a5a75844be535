package pagedmem_test

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/hupe1980/pagedmem"
	"github.com/hupe1980/pagedmem/collections"
	"github.com/hupe1980/pagedmem/native"
	"github.com/hupe1980/pagedmem/resource"
)

// Example_arena demonstrates allocating and accessing an arena.
func Example_arena() {
	supplier := pagedmem.NewSupplier("example", pagedmem.WithAllocator(native.Heap{}))

	mem, err := pagedmem.NewArena(supplier)
	if err != nil {
		log.Fatal(err)
	}
	defer mem.Release()

	// A long that straddles the first page boundary.
	if _, err := mem.Alloc(pagedmem.PageSize - 4); err != nil {
		log.Fatal(err)
	}
	addr, err := mem.Alloc(8)
	if err != nil {
		log.Fatal(err)
	}
	if err := mem.PutInt64(addr, 42); err != nil {
		log.Fatal(err)
	}

	v, err := mem.Int64(addr)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(v)
	fmt.Println(mem)
	// Output:
	// 42
	// 4.0 MiB in 2 pages
}

// Example_pool demonstrates the diagnostic table of a pool.
func Example_pool() {
	pool := pagedmem.NewPool()
	supplier := pagedmem.NewSupplier("symbols",
		pagedmem.WithAllocator(native.Heap{}),
		pagedmem.WithPool(pool),
		pagedmem.WithDescription("interned names"),
	)

	mem, err := pagedmem.NewArena(supplier)
	if err != nil {
		log.Fatal(err)
	}
	if _, err := mem.Alloc(100); err != nil {
		log.Fatal(err)
	}

	if err := pool.Dump(os.Stdout); err != nil {
		log.Fatal(err)
	}
	if err := pool.Release(); err != nil {
		log.Fatal(err)
	}
	fmt.Println(pool)
	// Output:
	// SUPPLIER  RESOURCE  ARENAS  PAGES  ALLOCATED  DESCRIPTION
	// symbols   heap      1       1      4.0 MiB    interned names
	// TOTAL                              4.0 MiB
	// Pool{suppliers: 1, allocated: 0 B}
}

// Example_memoryBudget demonstrates a shared memory budget.
func Example_memoryBudget() {
	budget := resource.NewController(resource.Config{MemoryLimitBytes: pagedmem.PageSize})
	supplier := pagedmem.NewSupplier("budgeted",
		pagedmem.WithAllocator(native.Heap{}),
		pagedmem.WithResourceController(budget),
	)

	mem, err := pagedmem.NewArena(supplier)
	if err != nil {
		log.Fatal(err)
	}
	defer mem.Release()

	_, err = mem.Alloc(pagedmem.PageSize + 1)
	fmt.Println(errors.Is(err, pagedmem.ErrAllocationFailed))
	fmt.Println(errors.Is(err, resource.ErrMemoryLimitExceeded))
	fmt.Println(mem.UsedSize(), mem.Pages())
	// Output:
	// true
	// true
	// 0 1
}

// Example_symbolTable demonstrates interning strings off-heap.
func Example_symbolTable() {
	supplier := pagedmem.NewSupplier("symbols", pagedmem.WithAllocator(native.Heap{}))

	symbols, err := collections.NewSymbolTable(supplier, 0)
	if err != nil {
		log.Fatal(err)
	}
	defer symbols.Release()

	a, _ := symbols.Symbol("warehouse")
	b, _ := symbols.Symbol("warehouse")
	s, _ := symbols.String(a)

	fmt.Println(a == b, s, symbols.Len())
	// Output: true warehouse 1
}
