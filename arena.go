package pagedmem

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/pagedmem/internal/conv"
)

// Arena is a growable logical address space backed by fixed-size pages.
//
// # Concurrency Model
//
// Alloc, all reads and writes, Zero and Transfer may be called from many
// goroutines. Only growth (Alloc when the backing pages are exhausted) takes
// a lock, and only against other growers of the same arena. Payload bytes are
// not synchronized: concurrent writers to the same address must coordinate
// externally. Release must not run concurrently with any other operation.
//
// # Memory Management
//
// Allocation is a bump of the used-size counter; nothing is ever reclaimed
// individually. Pages are zeroed before an address inside them is handed out
// and are returned to the supplier only by Release.
type Arena struct {
	name     string
	supplier *Supplier
	logger   *Logger
	metrics  MetricsCollector

	used      atomic.Int64
	allocated atomic.Int64 // multiple of PageSize, written under mu
	table     atomic.Pointer[[]*Page]
	released  atomic.Bool

	mu sync.Mutex // serializes growth and Release
}

// NewArena creates an empty arena bound to s.
func NewArena(s *Supplier, opts ...ArenaOption) (*Arena, error) {
	if s == nil {
		return nil, ErrNilSupplier
	}

	o := arenaOptions{
		name:    s.Name(),
		logger:  s.logger,
		metrics: s.metrics,
	}
	for _, opt := range opts {
		opt(&o)
	}

	a := &Arena{
		name:     o.name,
		supplier: s,
		logger:   o.logger.WithArena(o.name),
		metrics:  o.metrics,
	}
	a.table.Store(&[]*Page{})

	s.attach(a)
	return a, nil
}

// Name returns the arena name.
func (a *Arena) Name() string {
	return a.name
}

// Supplier returns the supplier the arena obtains pages from.
func (a *Arena) Supplier() *Supplier {
	return a.supplier
}

// UsedSize returns the number of bytes handed out by Alloc.
func (a *Arena) UsedSize() int64 {
	return a.used.Load()
}

// AllocatedSize returns the number of bytes backed by pages.
func (a *Arena) AllocatedSize() int64 {
	return a.allocated.Load()
}

// Pages returns the number of pages in the page table.
func (a *Arena) Pages() int {
	return len(*a.table.Load())
}

// Alloc reserves n bytes and returns the logical address of the first one.
func (a *Arena) Alloc(n int64) (int64, error) {
	return a.AllocContext(context.Background(), n)
}

// AllocContext reserves n bytes and returns the logical address of the first one.
//
// If the bytes fit into already backed capacity the call is lock-free. Otherwise
// the arena grows by whole zeroed pages; ctx is only consulted by the page
// rate limiter of the supplier's resource controller. Supplier errors are
// returned unmodified.
func (a *Arena) AllocContext(ctx context.Context, n int64) (int64, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: alloc of %d bytes", ErrInvalidSize, n)
	}

	for {
		if a.released.Load() {
			return 0, ErrReleased
		}

		u := a.used.Load()
		if u+n <= a.allocated.Load() {
			if a.used.CompareAndSwap(u, u+n) {
				a.metrics.RecordAlloc(n, false)
				return u, nil
			}
			continue
		}

		ok, err := a.allocSlow(ctx, u, n)
		if err != nil {
			return 0, err
		}
		if ok {
			a.metrics.RecordAlloc(n, true)
			return u, nil
		}
	}
}

// allocSlow tries to hand out [u, u+n) under the growth lock. It reports false
// if u went stale and the caller has to start over.
func (a *Arena) allocSlow(ctx context.Context, u, n int64) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.released.Load() {
		return false, ErrReleased
	}

	// A concurrent grower may already have made room.
	if u+n <= a.allocated.Load() {
		return a.used.CompareAndSwap(u, u+n), nil
	}

	// Push used past the capacity. Every fast-path CAS based on u now fails
	// and every later caller lands here, behind the lock.
	if !a.used.CompareAndSwap(u, u+n) {
		return false, nil
	}

	if err := a.growLocked(ctx, u+n); err != nil {
		// Nobody can move used while it exceeds the capacity, so this succeeds.
		a.used.CompareAndSwap(u+n, u)
		a.publishCapacityLocked()
		return false, err
	}

	a.publishCapacityLocked()
	return true, nil
}

// growLocked appends zeroed pages until the page table covers size bytes.
// Pages acquired before a failure stay in the table.
func (a *Arena) growLocked(ctx context.Context, size int64) error {
	start := time.Now()

	pages := *a.table.Load()
	have := int64(len(pages)) * PageSize

	acquired := 0
	var err error
	for have < size {
		var p *Page
		p, err = a.supplier.AllocatePage(ctx)
		if err != nil {
			break
		}

		clear(p.data)

		pages = append(pages, p)
		// Readers hold the previous header and never look past its length.
		published := pages
		a.table.Store(&published)

		have += PageSize
		acquired++
	}

	a.metrics.RecordGrow(acquired, time.Since(start), err)
	a.logger.LogGrow(ctx, acquired, have, err)

	return err
}

func (a *Arena) publishCapacityLocked() {
	a.allocated.Store(int64(len(*a.table.Load())) * PageSize)
}

// span validates [addr, addr+n) against the used size and returns the page
// table that covers it.
func (a *Arena) span(addr, n int64) ([]*Page, error) {
	if a.released.Load() {
		return nil, ErrReleased
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: length %d", ErrInvalidSize, n)
	}

	bound := a.used.Load()
	if addr < 0 || addr > bound {
		return nil, &OutOfBoundsError{Addr: addr, Bound: bound}
	}
	if n == 0 {
		return nil, nil
	}
	if n > bound-addr {
		return nil, &OutOfBoundsError{Addr: addr + n - 1, Bound: bound}
	}

	pages := *a.table.Load()
	// The range is reserved but its pages are still being acquired.
	if last := addr + n - 1; last/PageSize >= int64(len(pages)) {
		return nil, &OutOfBoundsError{Addr: last, Bound: int64(len(pages)) * PageSize}
	}

	return pages, nil
}

// locate splits a logical address into page index and page offset.
func locate(addr int64) (int, int) {
	return int(addr / PageSize), int(addr % PageSize)
}

// Byte reads the byte at addr.
func (a *Arena) Byte(addr int64) (byte, error) {
	pages, err := a.span(addr, 1)
	if err != nil {
		return 0, err
	}
	idx, off := locate(addr)
	return pages[idx].data[off], nil
}

// PutByte writes v at addr.
func (a *Arena) PutByte(addr int64, v byte) error {
	pages, err := a.span(addr, 1)
	if err != nil {
		return err
	}
	idx, off := locate(addr)
	pages[idx].data[off] = v
	return nil
}

// ReadAt copies len(p) bytes starting at addr into p.
//
// Either the whole range is read or an error is returned with n == 0.
// ReadAt implements io.ReaderAt.
func (a *Arena) ReadAt(p []byte, addr int64) (int, error) {
	pages, err := a.span(addr, conv.IntToInt64(len(p)))
	if err != nil {
		return 0, err
	}
	readSpan(pages, addr, p)
	return len(p), nil
}

// WriteAt copies p into the arena starting at addr.
//
// Either the whole range is written or an error is returned with n == 0.
// WriteAt implements io.WriterAt.
func (a *Arena) WriteAt(p []byte, addr int64) (int, error) {
	pages, err := a.span(addr, conv.IntToInt64(len(p)))
	if err != nil {
		return 0, err
	}
	writeSpan(pages, addr, p)
	return len(p), nil
}

// readSpan copies page segment by page segment, rolling over to the next page
// whenever the offset reaches PageSize. pages are not contiguous in memory.
func readSpan(pages []*Page, addr int64, dst []byte) {
	idx, off := locate(addr)
	for done := 0; done < len(dst); {
		done += copy(dst[done:], pages[idx].data[off:])
		idx++
		off = 0
	}
}

func writeSpan(pages []*Page, addr int64, src []byte) {
	idx, off := locate(addr)
	for done := 0; done < len(src); {
		done += copy(pages[idx].data[off:], src[done:])
		idx++
		off = 0
	}
}

// Int32 reads a 32-bit value in native byte order.
func (a *Arena) Int32(addr int64) (int32, error) {
	pages, err := a.span(addr, 4)
	if err != nil {
		return 0, err
	}

	idx, off := locate(addr)
	if off <= PageSize-4 {
		return int32(getUint32(pages[idx].data[off:])), nil
	}

	var buf [4]byte
	readSpan(pages, addr, buf[:])
	return int32(getUint32(buf[:])), nil
}

// PutInt32 writes a 32-bit value in native byte order.
func (a *Arena) PutInt32(addr int64, v int32) error {
	pages, err := a.span(addr, 4)
	if err != nil {
		return err
	}

	idx, off := locate(addr)
	if off <= PageSize-4 {
		putUint32(pages[idx].data[off:], uint32(v))
		return nil
	}

	var buf [4]byte
	putUint32(buf[:], uint32(v))
	writeSpan(pages, addr, buf[:])
	return nil
}

// Int64 reads a 64-bit value in native byte order.
func (a *Arena) Int64(addr int64) (int64, error) {
	pages, err := a.span(addr, 8)
	if err != nil {
		return 0, err
	}

	idx, off := locate(addr)
	if off <= PageSize-8 {
		return int64(getUint64(pages[idx].data[off:])), nil
	}

	var buf [8]byte
	readSpan(pages, addr, buf[:])
	return int64(getUint64(buf[:])), nil
}

// PutInt64 writes a 64-bit value in native byte order.
func (a *Arena) PutInt64(addr int64, v int64) error {
	pages, err := a.span(addr, 8)
	if err != nil {
		return err
	}

	idx, off := locate(addr)
	if off <= PageSize-8 {
		putUint64(pages[idx].data[off:], uint64(v))
		return nil
	}

	var buf [8]byte
	putUint64(buf[:], uint64(v))
	writeSpan(pages, addr, buf[:])
	return nil
}

// Zero clears n bytes starting at addr.
func (a *Arena) Zero(addr, n int64) error {
	pages, err := a.span(addr, n)
	if err != nil {
		return err
	}

	idx, off := locate(addr)
	for n > 0 {
		m := min(n, int64(PageSize-off))
		clear(pages[idx].data[off : off+int(m)])
		n -= m
		idx++
		off = 0
	}
	return nil
}

// ZeroAll clears every page of the arena. Sizes are left untouched.
func (a *Arena) ZeroAll() error {
	if a.released.Load() {
		return ErrReleased
	}
	for _, p := range *a.table.Load() {
		clear(p.data)
	}
	return nil
}

// Release returns every page to the supplier and resets both sizes to zero.
// The arena is unusable afterwards: every operation fails with ErrReleased.
// Release is idempotent.
func (a *Arena) Release() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.released.Swap(true) {
		return nil
	}

	pages := *a.table.Load()
	a.table.Store(&[]*Page{})
	a.allocated.Store(0)
	a.used.Store(0)

	var errs []error
	for _, p := range pages {
		if err := a.supplier.ReleasePage(p); err != nil {
			errs = append(errs, err)
		}
	}
	a.supplier.detach(a)

	err := errors.Join(errs...)
	a.logger.LogRelease(context.Background(), len(pages), err)
	return err
}

// Released reports whether Release has been called.
func (a *Arena) Released() bool {
	return a.released.Load()
}

// ArenaStats is a diagnostic snapshot of an arena.
type ArenaStats struct {
	Name          string
	UsedSize      int64
	AllocatedSize int64
	Pages         int
	Released      bool
}

// Stats returns a diagnostic snapshot.
func (a *Arena) Stats() ArenaStats {
	return ArenaStats{
		Name:          a.name,
		UsedSize:      a.UsedSize(),
		AllocatedSize: a.AllocatedSize(),
		Pages:         a.Pages(),
		Released:      a.Released(),
	}
}

// Usage returns the used share of the allocated size in percent.
func (a *Arena) Usage() float64 {
	allocated := a.AllocatedSize()
	if allocated == 0 {
		return 0
	}
	return float64(a.UsedSize()) / float64(allocated) * 100
}

func (a *Arena) String() string {
	return fmt.Sprintf("%s in %d pages", formatBytes(a.UsedSize()), a.Pages())
}
