package collections

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/hupe1980/pagedmem"
	"github.com/hupe1980/pagedmem/bitaddr"
)

const (
	slotBytes = 2 * bitaddr.Int64Bytes // [tagged key][value]

	// DefaultHashtableCapacity is the number of slots of one page.
	DefaultHashtableCapacity = pagedmem.PageSize / slotBytes

	maxLoadNum, maxLoadDen = 3, 4
)

// ErrTableFull is returned when a probe visits every slot without finding the
// key or a free slot.
var ErrTableFull = errors.New("collections: table full")

// Hashtable maps non-negative int64 keys to int64 values using open
// addressing with linear probing. When more than 3/4 of the slots are used,
// the table moves into a fresh arena of twice the capacity.
type Hashtable struct {
	supplier *pagedmem.Supplier
	mem      *pagedmem.Arena
	slots    int64
	count    int64
}

// NewHashtable creates a table with room for capacity slots, obtaining pages
// from s. capacity <= 0 selects DefaultHashtableCapacity.
func NewHashtable(s *pagedmem.Supplier, capacity int64) (*Hashtable, error) {
	if capacity <= 0 {
		capacity = DefaultHashtableCapacity
	}

	mem, err := newSlotArena(s, capacity)
	if err != nil {
		return nil, err
	}

	return &Hashtable{
		supplier: s,
		mem:      mem,
		slots:    capacity,
	}, nil
}

func newSlotArena(s *pagedmem.Supplier, slots int64) (*pagedmem.Arena, error) {
	mem, err := pagedmem.NewArena(s, pagedmem.WithArenaName("hashtable"))
	if err != nil {
		return nil, err
	}
	if _, err := mem.Alloc(slots * slotBytes); err != nil {
		_ = mem.Release()
		return nil, err
	}
	return mem, nil
}

// Len returns the number of keys.
func (h *Hashtable) Len() int64 {
	return h.count
}

// Capacity returns the number of slots.
func (h *Hashtable) Capacity() int64 {
	return h.slots
}

// Get returns the value stored for key.
func (h *Hashtable) Get(key int64) (int64, bool, error) {
	tagged, err := bitaddr.Wrap64(key)
	if err != nil {
		return 0, false, err
	}

	slot, found, err := probe(h.mem, h.slots, key, tagged)
	if err != nil || !found {
		return 0, false, err
	}

	v, err := h.mem.Int64(slot + bitaddr.Int64Bytes)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// Put stores value under key, replacing any previous value.
// Negative keys fail with bitaddr.ErrInvalidTag.
//
// A new key that would push the load past 3/4 first moves the table into a
// larger arena. If that fails, the table is left unchanged.
func (h *Hashtable) Put(key, value int64) error {
	tagged, err := bitaddr.Wrap64(key)
	if err != nil {
		return err
	}

	slot, found, err := probe(h.mem, h.slots, key, tagged)
	if err != nil {
		return err
	}
	if found {
		return h.mem.PutInt64(slot+bitaddr.Int64Bytes, value)
	}

	if (h.count+1)*maxLoadDen > h.slots*maxLoadNum {
		if err := h.rehash(); err != nil {
			return err
		}
		if slot, _, err = probe(h.mem, h.slots, key, tagged); err != nil {
			return err
		}
	}

	if err := writeSlot(h.mem, slot, tagged, value); err != nil {
		return err
	}
	h.count++
	return nil
}

// probe returns the address of the slot holding tagged, or of the empty slot
// where it belongs. It gives up with ErrTableFull after visiting every slot.
func probe(mem *pagedmem.Arena, slots, key, tagged int64) (int64, bool, error) {
	idx := int64(hashKey(key) % uint64(slots))
	for range slots {
		addr := idx * slotBytes
		k, err := mem.Int64(addr)
		if err != nil {
			return 0, false, err
		}
		switch k {
		case 0:
			return addr, false, nil
		case tagged:
			return addr, true, nil
		}
		if idx++; idx == slots {
			idx = 0
		}
	}
	return 0, false, ErrTableFull
}

func (h *Hashtable) rehash() error {
	slots := 2 * h.slots
	mem, err := newSlotArena(h.supplier, slots)
	if err != nil {
		return fmt.Errorf("collections: rehash to %d slots: %w", slots, err)
	}

	for idx := range h.slots {
		addr := idx * slotBytes
		tagged, err := h.mem.Int64(addr)
		if err == nil && tagged != 0 {
			var value int64
			if value, err = h.mem.Int64(addr + bitaddr.Int64Bytes); err == nil {
				err = insertSlot(mem, slots, tagged, value)
			}
		}
		if err != nil {
			_ = mem.Release()
			return fmt.Errorf("collections: rehash to %d slots: %w", slots, err)
		}
	}

	old := h.mem
	h.mem, h.slots = mem, slots
	return old.Release()
}

func insertSlot(mem *pagedmem.Arena, slots, tagged, value int64) error {
	slot, _, err := probe(mem, slots, bitaddr.Unwrap64(tagged), tagged)
	if err != nil {
		return err
	}
	return writeSlot(mem, slot, tagged, value)
}

// writeSlot stores the value before the key so a failed write never exposes
// a key without its value.
func writeSlot(mem *pagedmem.Arena, slot, tagged, value int64) error {
	if err := mem.PutInt64(slot+bitaddr.Int64Bytes, value); err != nil {
		return err
	}
	return mem.PutInt64(slot, tagged)
}

// Release returns the table's pages to the supplier.
func (h *Hashtable) Release() error {
	return h.mem.Release()
}

func (h *Hashtable) String() string {
	return fmt.Sprintf("Hashtable{keys: %d, slots: %d, memory: %s}", h.count, h.slots, h.mem)
}

func hashKey(key int64) uint64 {
	var buf [bitaddr.Int64Bytes]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(key))

	h := fnv.New64a()
	h.Write(buf[:])
	return h.Sum64()
}
