package pagedmem

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pagedmem/native"
	"github.com/hupe1980/pagedmem/testutil"
)

func newTransferArena(t *testing.T, pages int) (*Arena, *BasicMetricsCollector, []byte) {
	t.Helper()

	metrics := &BasicMetricsCollector{}
	s := NewSupplier("transfer", WithAllocator(native.Heap{}))
	a, err := NewArena(s, WithArenaMetrics(metrics))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Release() })

	_, err = a.Alloc(int64(pages) * PageSize)
	require.NoError(t, err)

	mirror := testutil.NewRNG(7).Bytes(pages * PageSize)
	_, err = a.WriteAt(mirror, 0)
	require.NoError(t, err)

	return a, metrics, mirror
}

func assertMirror(t *testing.T, a *Arena, mirror []byte) {
	t.Helper()

	got := make([]byte, len(mirror))
	_, err := a.ReadAt(got, 0)
	require.NoError(t, err)
	require.True(t, bytes.Equal(got, mirror), "arena content diverged from reference")
}

func TestTransfer_Modes(t *testing.T) {
	const p = PageSize

	tests := []struct {
		name     string
		src, dst int64
		n        int64
		mode     TransferMode
	}{
		{"disjoint same page", 10, 1000, 100, TransferDirect},
		{"disjoint different pages", 10, p + 10, 100, TransferDirect},
		{"overlap dst after src", 10, 20, 100, TransferBackward},
		{"overlap dst before src", 20, 10, 100, TransferForward},
		{"src straddles", p - 50, 2*p + 10, 100, TransferForward},
		{"dst straddles", 2*p + 10, p - 50, 100, TransferForward},
		{"overlap across pages dst after src", p - 64, p - 16, 128, TransferBackward},
		{"overlap across pages dst before src", p - 16, p - 64, 128, TransferForward},
		{"multi page backward", 100, p + 50, 2*p - 200, TransferBackward},
		{"multi page forward", p + 50, 100, 2*p - 200, TransferForward},
		{"page aligned", 0, p, p, TransferDirect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, metrics, mirror := newTransferArena(t, 3)

			require.NoError(t, a.Transfer(tt.src, tt.dst, tt.n))
			testutil.Memmove(mirror, int(tt.src), int(tt.dst), int(tt.n))

			assertMirror(t, a, mirror)

			assert.Equal(t, int64(1), metrics.TransferCount.Load())
			assert.Equal(t, tt.n, metrics.TransferBytes.Load())

			var counter int64
			switch tt.mode {
			case TransferDirect:
				counter = metrics.DirectTransfers.Load()
			case TransferBackward:
				counter = metrics.BackwardTransfers.Load()
			case TransferForward:
				counter = metrics.ForwardTransfers.Load()
			}
			assert.Equal(t, int64(1), counter, "expected %s transfer", tt.mode)
		})
	}
}

func TestTransfer_Random(t *testing.T) {
	const pages = 3

	a, _, mirror := newTransferArena(t, pages)
	rng := testutil.NewRNG(42)
	size := pages * PageSize

	// Addresses near page boundaries hit the interesting cases.
	pick := func() int {
		if rng.Intn(2) == 0 {
			return rng.Intn(size)
		}
		boundary := (rng.Intn(pages-1) + 1) * PageSize
		return max(0, min(size-1, boundary+rng.Intn(256)-128))
	}

	for i := range 300 {
		src, dst := pick(), pick()
		limit := size - max(src, dst)

		var n int
		switch rng.Intn(3) {
		case 0:
			n = rng.Intn(min(limit, 64) + 1)
		case 1:
			n = rng.Intn(min(limit, 4096) + 1)
		default:
			n = rng.Intn(min(limit, PageSize/2) + 1)
		}

		require.NoError(t, a.Transfer(int64(src), int64(dst), int64(n)), "op %d", i)
		testutil.Memmove(mirror, src, dst, n)

		if i%100 == 99 {
			assertMirror(t, a, mirror)
		}
	}

	assertMirror(t, a, mirror)
}

func TestTransfer_NoOps(t *testing.T) {
	a, metrics, mirror := newTransferArena(t, 1)

	require.NoError(t, a.Transfer(10, 20, 0))
	require.NoError(t, a.Transfer(100, 100, 50))
	require.NoError(t, a.Transfer(PageSize, PageSize, 0))

	assertMirror(t, a, mirror)
	assert.Equal(t, int64(0), metrics.TransferCount.Load())
}

func TestTransfer_Bounds(t *testing.T) {
	a, metrics, mirror := newTransferArena(t, 1)

	var oob *OutOfBoundsError

	err := a.Transfer(PageSize-10, 0, 11)
	require.ErrorAs(t, err, &oob)
	assert.Equal(t, int64(PageSize), oob.Addr)

	err = a.Transfer(0, PageSize-10, 11)
	require.ErrorAs(t, err, &oob)
	assert.Equal(t, int64(PageSize), oob.Addr)

	assert.ErrorIs(t, a.Transfer(-1, 0, 1), ErrOutOfBounds)
	assert.ErrorIs(t, a.Transfer(0, 10, -1), ErrInvalidSize)

	assertMirror(t, a, mirror)
	assert.Equal(t, int64(0), metrics.TransferCount.Load())

	require.NoError(t, a.Release())
	assert.ErrorIs(t, a.Transfer(0, 10, 1), ErrReleased)
}
