package pagedmem

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/pagedmem/native"
	"github.com/hupe1980/pagedmem/resource"
)

// Supplier obtains pages from a native allocator on behalf of a named owner
// and tracks how many bytes it currently holds.
//
// AllocatePage and ReleasePage are independent and safe for concurrent use;
// the only state they share is a pair of atomic counters.
type Supplier struct {
	name        string
	description string
	allocator   native.Allocator
	controller  *resource.Controller
	logger      *Logger
	metrics     MetricsCollector
	failFast    bool

	allocated atomic.Int64
	pages     atomic.Int64

	arenas sync.Map // *Arena -> struct{}
}

// NewSupplier creates a supplier. With WithPool it registers itself once.
func NewSupplier(name string, opts ...SupplierOption) *Supplier {
	o := supplierOptions{
		allocator: native.Mmap{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.metrics == nil {
		o.metrics = NoopMetricsCollector{}
	}

	s := &Supplier{
		name:        name,
		description: o.description,
		allocator:   o.allocator,
		controller:  o.controller,
		logger:      o.logger.WithSupplier(name),
		metrics:     o.metrics,
		failFast:    o.failFast,
	}

	if o.pool != nil {
		o.pool.Register(name, s)
	}

	return s
}

// Name returns the supplier name.
func (s *Supplier) Name() string {
	return s.name
}

// Description returns the owner description given by WithDescription.
func (s *Supplier) Description() string {
	return s.description
}

// Resource describes the backing resource pages come from.
func (s *Supplier) Resource() string {
	return s.allocator.String()
}

// AllocatedBytes returns the bytes currently held by this supplier's pages.
func (s *Supplier) AllocatedBytes() int64 {
	return s.allocated.Load()
}

// Pages returns the number of pages currently held.
func (s *Supplier) Pages() int64 {
	return s.pages.Load()
}

// AllocatePage obtains a page of exactly PageSize bytes.
//
// The page is charged against the resource controller (if any) before the
// native allocator is asked. Failures are reported as *AllocationError.
func (s *Supplier) AllocatePage(ctx context.Context) (*Page, error) {
	start := time.Now()

	page, err := s.allocatePage(ctx)
	s.metrics.RecordPageAcquire(time.Since(start), err)
	if err != nil {
		s.logger.LogPageFailure(ctx, PageSize, err)
		return nil, err
	}

	return page, nil
}

func (s *Supplier) allocatePage(ctx context.Context) (*Page, error) {
	if s.failFast {
		if !s.controller.TryPage() {
			return nil, s.allocationError(resource.ErrPageRateExceeded)
		}
	} else if err := s.controller.WaitPage(ctx); err != nil {
		return nil, s.allocationError(err)
	}

	if err := s.controller.AcquireMemory(PageSize); err != nil {
		return nil, s.allocationError(err)
	}

	block, err := s.allocator.Allocate(PageSize)
	if err != nil {
		s.controller.ReleaseMemory(PageSize)
		return nil, s.allocationError(err)
	}

	data := block.Bytes()
	if len(data) != PageSize {
		_ = block.Close()
		s.controller.ReleaseMemory(PageSize)
		return nil, s.allocationError(fmt.Errorf("allocator returned %d bytes", len(data)))
	}

	s.allocated.Add(PageSize)
	s.pages.Add(1)

	return &Page{
		block:    block,
		data:     data[:PageSize:PageSize],
		supplier: s,
	}, nil
}

func (s *Supplier) allocationError(cause error) error {
	return &AllocationError{
		Supplier: s.name,
		Size:     PageSize,
		cause:    cause,
	}
}

// ReleasePage returns a page to the native allocator.
// Releasing a page twice is a no-op.
func (s *Supplier) ReleasePage(p *Page) error {
	if p == nil {
		return nil
	}
	if p.supplier != s {
		return ErrForeignPage
	}
	if p.released.Swap(true) {
		return nil
	}

	err := p.block.Close()
	p.data = nil

	s.allocated.Add(-PageSize)
	s.pages.Add(-1)
	s.controller.ReleaseMemory(PageSize)
	s.metrics.RecordPageRelease()

	if err != nil {
		return fmt.Errorf("pagedmem: supplier %q failed to release page: %w", s.name, err)
	}
	return nil
}

func (s *Supplier) attach(a *Arena) {
	s.arenas.Store(a, struct{}{})
}

func (s *Supplier) detach(a *Arena) {
	s.arenas.Delete(a)
}

// Arenas returns the number of live arenas bound to this supplier.
func (s *Supplier) Arenas() int {
	n := 0
	s.arenas.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Release releases every live arena bound to this supplier.
//
// Callers must guarantee that no operation is in flight on those arenas.
func (s *Supplier) Release() error {
	var errs []error
	s.arenas.Range(func(k, _ any) bool {
		if err := k.(*Arena).Release(); err != nil {
			errs = append(errs, err)
		}
		return true
	})
	return errors.Join(errs...)
}

// SupplierStats is a diagnostic snapshot of a supplier.
type SupplierStats struct {
	Name           string
	Description    string
	Resource       string
	Pages          int64
	AllocatedBytes int64
	Arenas         int
}

// Stats returns a diagnostic snapshot.
func (s *Supplier) Stats() SupplierStats {
	return SupplierStats{
		Name:           s.name,
		Description:    s.description,
		Resource:       s.Resource(),
		Pages:          s.Pages(),
		AllocatedBytes: s.AllocatedBytes(),
		Arenas:         s.Arenas(),
	}
}

func (s *Supplier) String() string {
	return fmt.Sprintf("Supplier{name: %s, resource: %s, pages: %d, allocated: %s}",
		s.name,
		s.Resource(),
		s.Pages(),
		formatBytes(s.AllocatedBytes()),
	)
}
