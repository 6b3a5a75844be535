package pagedmem

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sort"
	"sync"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
)

var defaultPool = NewPool()

// Default returns the process-scoped pool.
func Default() *Pool {
	return defaultPool
}

// Pool is a registry of named suppliers used for diagnostics and release-all.
// It never supplies memory itself.
type Pool struct {
	mu        sync.RWMutex
	suppliers map[string]*Supplier

	logger             *Logger
	releaseConcurrency int
}

// NewPool creates an empty pool.
func NewPool(opts ...PoolOption) *Pool {
	o := poolOptions{
		releaseConcurrency: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}

	return &Pool{
		suppliers:          make(map[string]*Supplier),
		logger:             o.logger,
		releaseConcurrency: o.releaseConcurrency,
	}
}

// Register adds s under name. The last registration for a name wins.
func (p *Pool) Register(name string, s *Supplier) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.suppliers[name] = s
}

// Unregister removes the supplier registered under name.
func (p *Pool) Unregister(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.suppliers, name)
}

// Supplier returns the supplier registered under name.
func (p *Pool) Supplier(name string) (*Supplier, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.suppliers[name]
	return s, ok
}

// Suppliers returns a snapshot of all registered suppliers ordered by name.
func (p *Pool) Suppliers() []*Supplier {
	p.mu.RLock()
	snapshot := make([]*Supplier, 0, len(p.suppliers))
	for _, s := range p.suppliers {
		snapshot = append(snapshot, s)
	}
	p.mu.RUnlock()

	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].Name() < snapshot[j].Name()
	})
	return snapshot
}

// Len returns the number of registered suppliers.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.suppliers)
}

// Release releases every registered supplier (and thereby all of their
// arenas). Suppliers stay registered and can be used again.
//
// Callers must guarantee that no operation is in flight on affected arenas.
func (p *Pool) Release() error {
	suppliers := p.Suppliers()

	var g errgroup.Group
	g.SetLimit(p.releaseConcurrency)
	for _, s := range suppliers {
		g.Go(s.Release)
	}
	err := g.Wait()

	p.logger.LogPoolRelease(context.Background(), len(suppliers), err)
	return err
}

// AllocatedBytes returns the bytes held by all registered suppliers.
func (p *Pool) AllocatedBytes() int64 {
	var total int64
	for _, s := range p.Suppliers() {
		total += s.AllocatedBytes()
	}
	return total
}

// Stats returns a diagnostic snapshot of every registered supplier.
func (p *Pool) Stats() []SupplierStats {
	suppliers := p.Suppliers()
	stats := make([]SupplierStats, 0, len(suppliers))
	for _, s := range suppliers {
		stats = append(stats, s.Stats())
	}
	return stats
}

// Dump writes a utilization table of all suppliers to w.
func (p *Pool) Dump(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "SUPPLIER\tRESOURCE\tARENAS\tPAGES\tALLOCATED\tDESCRIPTION")

	var total int64
	for _, st := range p.Stats() {
		total += st.AllocatedBytes
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n",
			st.Name,
			st.Resource,
			st.Arenas,
			st.Pages,
			formatBytes(st.AllocatedBytes),
			st.Description,
		)
	}
	fmt.Fprintf(tw, "TOTAL\t\t\t\t%s\n", formatBytes(total))

	return tw.Flush()
}

func (p *Pool) String() string {
	return fmt.Sprintf("Pool{suppliers: %d, allocated: %s}", p.Len(), formatBytes(p.AllocatedBytes()))
}

func formatBytes(n int64) string {
	return humanize.IBytes(uint64(max(n, 0)))
}
