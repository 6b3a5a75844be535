// Package resource implements the Controller for memory budgets shared by
// page suppliers.
//
// The Controller governs two things:
//
//   - Memory: track and limit off-heap bytes across suppliers (non-blocking, fail-fast)
//   - Page rate: token bucket limiting how quickly new pages are mapped
//
// # Memory Management
//
// Memory tracking uses a weighted semaphore for hard limits and atomic counters
// for usage tracking. AcquireMemory is non-blocking and returns immediately
// with ErrMemoryLimitExceeded if the limit would be exceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB limit
//	})
//
//	if err := rc.AcquireMemory(4 << 20); err != nil {
//	    // ErrMemoryLimitExceeded - caller decides retry/backoff
//	}
//	defer rc.ReleaseMemory(4 << 20)
//
// # Page Rate Limiting
//
//	rc := resource.NewController(resource.Config{
//	    PagesPerSecond: 256,
//	    PageBurst:      64,
//	})
//
//	if err := rc.WaitPage(ctx); err != nil {
//	    return err
//	}
//
// # Nil Safety
//
// All methods handle nil Controller gracefully - they become no-ops.
// This allows optional resource limiting without nil checks everywhere.
package resource
