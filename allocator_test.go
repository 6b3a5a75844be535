package pagedmem

import (
	"errors"
	"sync/atomic"

	"github.com/hupe1980/pagedmem/native"
)

var errInjected = errors.New("injected allocation failure")

// dirtyAllocator hands out heap blocks pre-filled with garbage.
type dirtyAllocator struct {
	fill byte
}

func (d *dirtyAllocator) Allocate(size int) (native.Block, error) {
	b, err := native.Heap{}.Allocate(size)
	if err != nil {
		return nil, err
	}
	data := b.Bytes()
	for i := range data {
		data[i] = d.fill
	}
	return b, nil
}

func (d *dirtyAllocator) String() string { return "dirty" }

// failingAllocator succeeds for the first limit blocks and fails afterwards.
type failingAllocator struct {
	limit  int64
	issued atomic.Int64
	closed atomic.Int64
}

func (f *failingAllocator) Allocate(size int) (native.Block, error) {
	if f.issued.Add(1) > f.limit {
		f.issued.Add(-1)
		return nil, errInjected
	}
	b, err := native.Heap{}.Allocate(size)
	if err != nil {
		return nil, err
	}
	return &countingBlock{Block: b, closed: &f.closed}, nil
}

func (f *failingAllocator) String() string { return "failing" }

type countingBlock struct {
	native.Block
	closed *atomic.Int64
}

func (c *countingBlock) Close() error {
	c.closed.Add(1)
	return c.Block.Close()
}

// shortAllocator returns blocks smaller than requested.
type shortAllocator struct{}

func (shortAllocator) Allocate(size int) (native.Block, error) {
	return native.Heap{}.Allocate(size / 2)
}

func (shortAllocator) String() string { return "short" }
