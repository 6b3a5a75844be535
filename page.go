package pagedmem

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/hupe1980/pagedmem/native"
)

// PageSize is the size of every page backing an arena (4 MiB).
const PageSize = 4 * 1024 * 1024

// Page is a fixed-size block of native memory owned by exactly one arena.
type Page struct {
	block    native.Block
	data     []byte
	supplier *Supplier
	released atomic.Bool
}

// Bytes returns the page contents. The slice is invalid once the page is released.
func (p *Page) Bytes() []byte {
	return p.data
}

// Supplier returns the supplier that issued the page.
func (p *Page) Supplier() *Supplier {
	return p.supplier
}

// Word codec shared by the single-page fast path and the byte-wise slow path
// so both produce identical layouts in native byte order.

func putUint32(b []byte, v uint32) {
	binary.NativeEndian.PutUint32(b, v)
}

func getUint32(b []byte) uint32 {
	return binary.NativeEndian.Uint32(b)
}

func putUint64(b []byte, v uint64) {
	binary.NativeEndian.PutUint64(b, v)
}

func getUint64(b []byte) uint64 {
	return binary.NativeEndian.Uint64(b)
}
