package pagedmem

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBasicMetricsCollector(t *testing.T) {
	m := &BasicMetricsCollector{}

	m.RecordAlloc(16, false)
	m.RecordAlloc(32, true)
	m.RecordGrow(2, 10*time.Millisecond, nil)
	m.RecordGrow(0, 30*time.Millisecond, errors.New("boom"))
	m.RecordPageAcquire(time.Millisecond, nil)
	m.RecordPageAcquire(time.Millisecond, errors.New("boom"))
	m.RecordPageRelease()
	m.RecordTransfer(100, TransferDirect)
	m.RecordTransfer(200, TransferBackward)
	m.RecordTransfer(300, TransferForward)

	assert.Equal(t, BasicMetricsStats{
		AllocCount:        2,
		AllocBytes:        48,
		SlowAllocCount:    1,
		GrowCount:         2,
		GrowErrors:        1,
		GrowPages:         2,
		AvgGrowNanos:      int64(20 * time.Millisecond),
		PageAcquireCount:  2,
		PageAcquireErrors: 1,
		PageReleaseCount:  1,
		TransferCount:     3,
		TransferBytes:     600,
	}, m.GetStats())

	assert.Equal(t, int64(1), m.DirectTransfers.Load())
	assert.Equal(t, int64(1), m.BackwardTransfers.Load())
	assert.Equal(t, int64(1), m.ForwardTransfers.Load())
}

func TestTransferMode_String(t *testing.T) {
	assert.Equal(t, "direct", TransferDirect.String())
	assert.Equal(t, "backward", TransferBackward.String())
	assert.Equal(t, "forward", TransferForward.String())
	assert.Equal(t, "unknown", TransferMode(99).String())
}

func TestNoopMetricsCollector(t *testing.T) {
	var m MetricsCollector = NoopMetricsCollector{}
	m.RecordAlloc(1, true)
	m.RecordTransfer(1, TransferDirect)
}
