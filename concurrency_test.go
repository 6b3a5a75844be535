package pagedmem

import (
	"bytes"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pagedmem/native"
	"github.com/hupe1980/pagedmem/testutil"
)

func TestArena_ConcurrentAlloc(t *testing.T) {
	const (
		workers = 16
		perWork = 500
	)

	metrics := &BasicMetricsCollector{}
	s := NewSupplier("concurrent", WithAllocator(native.Heap{}), WithSupplierMetrics(metrics))
	a, err := NewArena(s)
	require.NoError(t, err)
	defer a.Release()

	type block struct {
		addr int64
		size int64
		id   byte
	}

	results := make([][]block, workers)

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			rng := testutil.NewRNG(int64(w))
			id := byte(w + 1)
			for range perWork {
				size := int64(rng.Intn(4096) + 1)
				addr, err := a.Alloc(size)
				if !assert.NoError(t, err) {
					return
				}
				if _, err := a.WriteAt(bytes.Repeat([]byte{id}, int(size)), addr); !assert.NoError(t, err) {
					return
				}
				results[w] = append(results[w], block{addr: addr, size: size, id: id})
			}
		}()
	}
	wg.Wait()

	var all []block
	var total int64
	for _, r := range results {
		require.Len(t, r, perWork)
		all = append(all, r...)
		for _, b := range r {
			total += b.size
		}
	}

	assert.Equal(t, total, a.UsedSize())
	assert.GreaterOrEqual(t, a.AllocatedSize(), a.UsedSize())
	assert.Zero(t, a.AllocatedSize()%PageSize)
	assert.Equal(t, (total+PageSize-1)/PageSize, int64(a.Pages()))

	sort.Slice(all, func(i, j int) bool { return all[i].addr < all[j].addr })

	// Blocks tile [0, used) without gaps or overlap.
	var next int64
	for _, b := range all {
		require.Equal(t, next, b.addr)
		next = b.addr + b.size
	}
	assert.Equal(t, a.UsedSize(), next)

	for _, b := range all {
		buf := make([]byte, b.size)
		_, err := a.ReadAt(buf, b.addr)
		require.NoError(t, err)
		require.Equal(t, bytes.Repeat([]byte{b.id}, int(b.size)), buf)
	}

	stats := metrics.GetStats()
	assert.Equal(t, int64(workers*perWork), stats.AllocCount)
	assert.Equal(t, total, stats.AllocBytes)
	assert.Equal(t, int64(a.Pages()), stats.PageAcquireCount)
}

func TestArena_ConcurrentGrowthAcrossPages(t *testing.T) {
	const workers = 8

	s := NewSupplier("large", WithAllocator(native.Heap{}))
	a, err := NewArena(s)
	require.NoError(t, err)
	defer a.Release()

	addrs := make([]int64, workers)

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			addr, err := a.Alloc(PageSize + 3)
			if assert.NoError(t, err) {
				addrs[w] = addr
				assert.NoError(t, a.PutInt64(addr+PageSize-5, int64(w)))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(workers*(PageSize+3)), a.UsedSize())

	for w, addr := range addrs {
		v, err := a.Int64(addr + PageSize - 5)
		require.NoError(t, err)
		assert.Equal(t, int64(w), v)
	}
}

func TestArena_GrowthFailureRollsBack(t *testing.T) {
	alloc := &failingAllocator{limit: 2}
	metrics := &BasicMetricsCollector{}
	s := NewSupplier("limited", WithAllocator(alloc), WithSupplierMetrics(metrics))
	a, err := NewArena(s)
	require.NoError(t, err)

	addr, err := a.Alloc(PageSize)
	require.NoError(t, err)
	assert.Equal(t, int64(0), addr)

	// Needs two more pages, only one is available.
	_, err = a.Alloc(2 * PageSize)
	require.ErrorIs(t, err, ErrAllocationFailed)
	assert.ErrorIs(t, err, errInjected)

	assert.Equal(t, int64(PageSize), a.UsedSize())
	assert.Equal(t, 2, a.Pages())
	assert.Equal(t, int64(2*PageSize), a.AllocatedSize())

	// The page acquired before the failure is usable.
	addr, err = a.Alloc(PageSize)
	require.NoError(t, err)
	assert.Equal(t, int64(PageSize), addr)
	require.NoError(t, a.PutInt64(addr, 42))

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.GrowErrors)
	assert.Equal(t, int64(1), stats.PageAcquireErrors)

	require.NoError(t, a.Release())
	assert.Equal(t, int64(2), alloc.closed.Load())
	assert.Equal(t, int64(0), s.AllocatedBytes())
}
