package native

import (
	"fmt"

	"github.com/hupe1980/pagedmem/internal/mmap"
)

// AccessPattern is a kernel hint applied to freshly mapped blocks.
type AccessPattern = mmap.AccessPattern

// Access patterns accepted by Mmap.Advice.
const (
	AccessDefault    = mmap.AccessDefault
	AccessSequential = mmap.AccessSequential
	AccessRandom     = mmap.AccessRandom
	AccessWillNeed   = mmap.AccessWillNeed
)

// Mmap allocates blocks as anonymous memory mappings outside the Go heap.
type Mmap struct {
	// Advice is passed to madvise for every new block.
	Advice AccessPattern
}

// Allocate maps size bytes of anonymous memory.
func (a Mmap) Allocate(size int) (Block, error) {
	m, err := mmap.MapAnon(size)
	if err != nil {
		return nil, fmt.Errorf("failed to map anonymous memory: %w", err)
	}

	if a.Advice != AccessDefault {
		if err := m.Advise(a.Advice); err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("failed to advise anonymous memory: %w", err)
		}
	}

	return m, nil
}

func (a Mmap) String() string {
	return "mmap(anonymous)"
}
