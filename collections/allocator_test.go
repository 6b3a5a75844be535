package collections

import (
	"errors"
	"sync/atomic"

	"github.com/hupe1980/pagedmem/native"
)

var errNoPage = errors.New("no page available")

// limitedAllocator hands out at most limit heap blocks at a time. Raising
// limit lets later allocations succeed again.
type limitedAllocator struct {
	limit atomic.Int64
	live  atomic.Int64
}

func newLimitedAllocator(limit int64) *limitedAllocator {
	a := &limitedAllocator{}
	a.limit.Store(limit)
	return a
}

func (a *limitedAllocator) Allocate(size int) (native.Block, error) {
	if a.live.Add(1) > a.limit.Load() {
		a.live.Add(-1)
		return nil, errNoPage
	}
	b, err := native.Heap{}.Allocate(size)
	if err != nil {
		a.live.Add(-1)
		return nil, err
	}
	return &trackedBlock{Block: b, live: &a.live}, nil
}

func (a *limitedAllocator) String() string { return "limited" }

type trackedBlock struct {
	native.Block
	live *atomic.Int64
}

func (b *trackedBlock) Close() error {
	b.live.Add(-1)
	return b.Block.Close()
}
