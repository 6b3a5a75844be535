package pagedmem

import (
	"runtime"

	"github.com/hupe1980/pagedmem/native"
	"github.com/hupe1980/pagedmem/resource"
)

type arenaOptions struct {
	name    string
	logger  *Logger
	metrics MetricsCollector
}

// ArenaOption configures NewArena.
type ArenaOption func(*arenaOptions)

// WithArenaName sets the name used in logs and diagnostics.
func WithArenaName(name string) ArenaOption {
	return func(o *arenaOptions) {
		o.name = name
	}
}

// WithArenaLogger sets the arena logger.
//
// If not set, the arena inherits the logger of its supplier.
func WithArenaLogger(l *Logger) ArenaOption {
	return func(o *arenaOptions) {
		o.logger = l
	}
}

// WithArenaMetrics sets the arena metrics collector.
//
// If not set, the arena inherits the collector of its supplier.
func WithArenaMetrics(m MetricsCollector) ArenaOption {
	return func(o *arenaOptions) {
		o.metrics = m
	}
}

type supplierOptions struct {
	allocator   native.Allocator
	controller  *resource.Controller
	pool        *Pool
	description string
	logger      *Logger
	metrics     MetricsCollector
	failFast    bool
}

// SupplierOption configures NewSupplier.
type SupplierOption func(*supplierOptions)

// WithAllocator sets the native-memory capability pages are obtained from.
//
// If nil is passed, native.Mmap{} is used.
func WithAllocator(a native.Allocator) SupplierOption {
	return func(o *supplierOptions) {
		if a == nil {
			a = native.Mmap{}
		}
		o.allocator = a
	}
}

// WithResourceController enforces a memory budget and page rate shared with
// other suppliers. A nil controller disables limits.
func WithResourceController(c *resource.Controller) SupplierOption {
	return func(o *supplierOptions) {
		o.controller = c
	}
}

// WithFailFastPageRate makes AllocatePage fail with
// resource.ErrPageRateExceeded instead of waiting for the page rate limiter.
func WithFailFastPageRate() SupplierOption {
	return func(o *supplierOptions) {
		o.failFast = true
	}
}

// WithPool registers the supplier with p under its name.
func WithPool(p *Pool) SupplierOption {
	return func(o *supplierOptions) {
		o.pool = p
	}
}

// WithDescription sets a free-form description of what the supplier's pages
// hold (e.g. the owning data structure). It shows up in diagnostics.
func WithDescription(desc string) SupplierOption {
	return func(o *supplierOptions) {
		o.description = desc
	}
}

// WithSupplierLogger sets the supplier logger.
func WithSupplierLogger(l *Logger) SupplierOption {
	return func(o *supplierOptions) {
		o.logger = l
	}
}

// WithSupplierMetrics sets the supplier metrics collector.
func WithSupplierMetrics(m MetricsCollector) SupplierOption {
	return func(o *supplierOptions) {
		o.metrics = m
	}
}

type poolOptions struct {
	logger             *Logger
	releaseConcurrency int
}

// PoolOption configures NewPool.
type PoolOption func(*poolOptions)

// WithPoolLogger sets the pool logger.
func WithPoolLogger(l *Logger) PoolOption {
	return func(o *poolOptions) {
		o.logger = l
	}
}

// WithReleaseConcurrency bounds how many suppliers Pool.Release tears down in
// parallel. Values <= 0 select runtime.GOMAXPROCS(0).
func WithReleaseConcurrency(n int) PoolOption {
	return func(o *poolOptions) {
		if n <= 0 {
			n = runtime.GOMAXPROCS(0)
		}
		o.releaseConcurrency = n
	}
}
