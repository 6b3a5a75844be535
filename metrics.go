package pagedmem

import (
	"sync/atomic"
	"time"
)

// TransferMode identifies which copy strategy Arena.Transfer used.
type TransferMode int

const (
	// TransferDirect is a single block copy within one page per side.
	TransferDirect TransferMode = iota
	// TransferBackward copies from the highest byte down (dest overlaps source tail).
	TransferBackward
	// TransferForward copies from the lowest byte up across page boundaries.
	TransferForward
)

func (m TransferMode) String() string {
	switch m {
	case TransferDirect:
		return "direct"
	case TransferBackward:
		return "backward"
	case TransferForward:
		return "forward"
	default:
		return "unknown"
	}
}

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordAlloc is called after each successful Alloc.
	// grew is true if the call went through the growth slow path.
	RecordAlloc(bytes int64, grew bool)

	// RecordGrow is called after each growth attempt of an arena.
	RecordGrow(pages int, duration time.Duration, err error)

	// RecordPageAcquire is called after a supplier tried to obtain a page.
	RecordPageAcquire(duration time.Duration, err error)

	// RecordPageRelease is called after a supplier returned a page.
	RecordPageRelease()

	// RecordTransfer is called after each Transfer.
	RecordTransfer(bytes int64, mode TransferMode)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAlloc(int64, bool)                {}
func (NoopMetricsCollector) RecordGrow(int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordPageAcquire(time.Duration, error) {}
func (NoopMetricsCollector) RecordPageRelease()                     {}
func (NoopMetricsCollector) RecordTransfer(int64, TransferMode)     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AllocCount        atomic.Int64
	AllocBytes        atomic.Int64
	SlowAllocCount    atomic.Int64
	GrowCount         atomic.Int64
	GrowErrors        atomic.Int64
	GrowPages         atomic.Int64
	GrowTotalNanos    atomic.Int64
	PageAcquireCount  atomic.Int64
	PageAcquireErrors atomic.Int64
	PageReleaseCount  atomic.Int64
	TransferCount     atomic.Int64
	TransferBytes     atomic.Int64
	DirectTransfers   atomic.Int64
	BackwardTransfers atomic.Int64
	ForwardTransfers  atomic.Int64
}

// RecordAlloc implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAlloc(bytes int64, grew bool) {
	b.AllocCount.Add(1)
	b.AllocBytes.Add(bytes)
	if grew {
		b.SlowAllocCount.Add(1)
	}
}

// RecordGrow implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGrow(pages int, duration time.Duration, err error) {
	b.GrowCount.Add(1)
	b.GrowPages.Add(int64(pages))
	b.GrowTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.GrowErrors.Add(1)
	}
}

// RecordPageAcquire implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPageAcquire(_ time.Duration, err error) {
	b.PageAcquireCount.Add(1)
	if err != nil {
		b.PageAcquireErrors.Add(1)
	}
}

// RecordPageRelease implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPageRelease() {
	b.PageReleaseCount.Add(1)
}

// RecordTransfer implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTransfer(bytes int64, mode TransferMode) {
	b.TransferCount.Add(1)
	b.TransferBytes.Add(bytes)
	switch mode {
	case TransferDirect:
		b.DirectTransfers.Add(1)
	case TransferBackward:
		b.BackwardTransfers.Add(1)
	case TransferForward:
		b.ForwardTransfers.Add(1)
	}
}

// BasicMetricsStats is a point-in-time snapshot of BasicMetricsCollector.
type BasicMetricsStats struct {
	AllocCount        int64
	AllocBytes        int64
	SlowAllocCount    int64
	GrowCount         int64
	GrowErrors        int64
	GrowPages         int64
	AvgGrowNanos      int64
	PageAcquireCount  int64
	PageAcquireErrors int64
	PageReleaseCount  int64
	TransferCount     int64
	TransferBytes     int64
}

// GetStats returns a snapshot of the collected metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	stats := BasicMetricsStats{
		AllocCount:        b.AllocCount.Load(),
		AllocBytes:        b.AllocBytes.Load(),
		SlowAllocCount:    b.SlowAllocCount.Load(),
		GrowCount:         b.GrowCount.Load(),
		GrowErrors:        b.GrowErrors.Load(),
		GrowPages:         b.GrowPages.Load(),
		PageAcquireCount:  b.PageAcquireCount.Load(),
		PageAcquireErrors: b.PageAcquireErrors.Load(),
		PageReleaseCount:  b.PageReleaseCount.Load(),
		TransferCount:     b.TransferCount.Load(),
		TransferBytes:     b.TransferBytes.Load(),
	}
	if stats.GrowCount > 0 {
		stats.AvgGrowNanos = b.GrowTotalNanos.Load() / stats.GrowCount
	}
	return stats
}
