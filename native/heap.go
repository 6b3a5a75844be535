package native

import (
	"unsafe"
)

// Alignment is the byte alignment of heap blocks (AVX-512 friendly).
const Alignment = 64

// Heap allocates blocks on the Go heap.
//
// It is meant for tests and for platforms without anonymous mappings; the
// garbage collector still tracks (but never scans) these byte slices.
type Heap struct{}

type heapBlock struct {
	data []byte
}

func (b *heapBlock) Bytes() []byte { return b.data }

func (b *heapBlock) Close() error {
	b.data = nil
	return nil
}

// Allocate returns a 64-byte aligned block of size bytes.
func (Heap) Allocate(size int) (Block, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	return &heapBlock{data: allocAligned(size)}, nil
}

func (Heap) String() string {
	return "heap"
}

// allocAligned over-allocates by Alignment bytes and returns the first
// aligned window of size bytes. The backing array is kept alive by the slice.
func allocAligned(size int) []byte {
	buf := make([]byte, size+Alignment)

	addr := uintptr(unsafe.Pointer(&buf[0])) //nolint:gosec // unsafe is required for memory alignment
	offset := (Alignment - (addr & (Alignment - 1))) & (Alignment - 1)

	return buf[offset : offset+uintptr(size) : offset+uintptr(size)]
}
