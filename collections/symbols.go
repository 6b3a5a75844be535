package collections

import (
	"bytes"
	"errors"
	"fmt"
	"hash/fnv"
	"math"

	"github.com/hupe1980/pagedmem"
	"github.com/hupe1980/pagedmem/bitaddr"
	"github.com/hupe1980/pagedmem/internal/conv"
)

const (
	recordHeader = bitaddr.Int32Bytes + bitaddr.Int64Bytes // [len int32][hash int64]

	// DefaultSymbolSlots is the number of lookup slots of one page.
	DefaultSymbolSlots = pagedmem.PageSize / bitaddr.Int64Bytes
)

// ErrInvalidSymbol is returned by String for values that do not address a
// symbol record.
var ErrInvalidSymbol = errors.New("collections: invalid symbol")

// SymbolTable interns strings. Each distinct string is stored once in a data
// arena and identified by the address of its record, which stays stable for
// the lifetime of the table.
//
// Lookup slots live in a second arena. Each slot holds the tagged record
// address, so the record at address 0 is distinguishable from an empty slot.
type SymbolTable struct {
	lookup *pagedmem.Arena
	data   *pagedmem.Arena
	slots  int64
	count  int64
}

// NewSymbolTable creates a symbol table with slots lookup slots, obtaining
// pages from s. slots <= 0 selects DefaultSymbolSlots.
func NewSymbolTable(s *pagedmem.Supplier, slots int64) (*SymbolTable, error) {
	if slots <= 0 {
		slots = DefaultSymbolSlots
	}

	lookup, err := pagedmem.NewArena(s, pagedmem.WithArenaName("symbols.lookup"))
	if err != nil {
		return nil, err
	}
	if _, err := lookup.Alloc(slots * bitaddr.Int64Bytes); err != nil {
		_ = lookup.Release()
		return nil, err
	}

	data, err := pagedmem.NewArena(s, pagedmem.WithArenaName("symbols.data"))
	if err != nil {
		_ = lookup.Release()
		return nil, err
	}

	return &SymbolTable{
		lookup: lookup,
		data:   data,
		slots:  slots,
	}, nil
}

// Len returns the number of distinct symbols.
func (t *SymbolTable) Len() int64 {
	return t.count
}

// Symbol returns the symbol of s, adding s to the table if necessary.
//
// If adding s fails, the table is left unchanged and every earlier symbol
// stays valid.
func (t *SymbolTable) Symbol(s string) (int64, error) {
	data := []byte(s)
	hash := hashString(data)

	slot, rec, err := t.find(hash, data)
	if err != nil || rec >= 0 {
		return rec, err
	}

	if (t.count+1)*maxLoadDen > t.slots*maxLoadNum {
		if err := t.rehash(); err != nil {
			return 0, err
		}
		if slot, _, err = t.find(hash, data); err != nil {
			return 0, err
		}
	}

	return t.insert(slot, hash, data)
}

// find returns the record of data, or -1 and the empty slot it belongs in.
func (t *SymbolTable) find(hash int64, data []byte) (int64, int64, error) {
	idx := int64(uint64(hash) % uint64(t.slots))
	for range t.slots {
		slot := idx * bitaddr.Int64Bytes
		tagged, err := t.lookup.Int64(slot)
		if err != nil {
			return 0, 0, err
		}
		if tagged == 0 {
			return slot, -1, nil
		}

		rec := bitaddr.Unwrap64(tagged)
		ok, err := t.matches(rec, hash, data)
		if err != nil {
			return 0, 0, err
		}
		if ok {
			return slot, rec, nil
		}

		if idx++; idx == t.slots {
			idx = 0
		}
	}
	return 0, 0, ErrTableFull
}

// insert writes the record before publishing it in the lookup slot.
func (t *SymbolTable) insert(slot, hash int64, data []byte) (int64, error) {
	length, err := conv.Int64ToInt32(conv.IntToInt64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("collections: symbol too long: %w", err)
	}

	rec, err := t.data.Alloc(recordHeader + int64(length))
	if err != nil {
		return 0, err
	}
	if err := t.data.PutInt32(rec, length); err != nil {
		return 0, err
	}
	if err := t.data.PutInt64(rec+bitaddr.Int32Bytes, hash); err != nil {
		return 0, err
	}
	if _, err := t.data.WriteAt(data, rec+recordHeader); err != nil {
		return 0, err
	}

	tagged, err := bitaddr.Wrap64(rec)
	if err != nil {
		return 0, err
	}
	if err := t.lookup.PutInt64(slot, tagged); err != nil {
		return 0, err
	}
	t.count++
	return rec, nil
}

func (t *SymbolTable) matches(rec, hash int64, data []byte) (bool, error) {
	length, err := t.data.Int32(rec)
	if err != nil {
		return false, err
	}
	if int(length) != len(data) {
		return false, nil
	}

	h, err := t.data.Int64(rec + bitaddr.Int32Bytes)
	if err != nil || h != hash {
		return false, err
	}

	stored := make([]byte, length)
	if _, err := t.data.ReadAt(stored, rec+recordHeader); err != nil {
		return false, err
	}
	return bytes.Equal(stored, data), nil
}

// rehash grows the lookup arena by one page, then clears it and reinserts
// every record in data order. Record addresses, and thereby symbols, do not
// change. If growth fails the existing slots are untouched.
func (t *SymbolTable) rehash() error {
	if _, err := t.lookup.Alloc(pagedmem.PageSize); err != nil {
		return fmt.Errorf("collections: grow symbol lookup: %w", err)
	}
	if err := t.lookup.ZeroAll(); err != nil {
		return err
	}
	t.slots = t.lookup.UsedSize() / bitaddr.Int64Bytes

	for rec := int64(0); rec < t.data.UsedSize(); {
		length, err := t.data.Int32(rec)
		if err != nil {
			return err
		}
		hash, err := t.data.Int64(rec + bitaddr.Int32Bytes)
		if err != nil {
			return err
		}
		if err := t.reinsert(rec, hash); err != nil {
			return err
		}
		rec += recordHeader + int64(length)
	}
	return nil
}

func (t *SymbolTable) reinsert(rec, hash int64) error {
	tagged, err := bitaddr.Wrap64(rec)
	if err != nil {
		return err
	}

	idx := int64(uint64(hash) % uint64(t.slots))
	for range t.slots {
		slot := idx * bitaddr.Int64Bytes
		v, err := t.lookup.Int64(slot)
		if err != nil {
			return err
		}
		if v == 0 {
			return t.lookup.PutInt64(slot, tagged)
		}
		if idx++; idx == t.slots {
			idx = 0
		}
	}
	return ErrTableFull
}

// String returns the string of a symbol obtained from Symbol.
func (t *SymbolTable) String(sym int64) (string, error) {
	if sym < 0 || sym+recordHeader > t.data.UsedSize() {
		return "", fmt.Errorf("%w: %d", ErrInvalidSymbol, sym)
	}

	length, err := t.data.Int32(sym)
	if err != nil {
		return "", err
	}
	if length < 0 || sym+recordHeader+int64(length) > t.data.UsedSize() {
		return "", fmt.Errorf("%w: %d", ErrInvalidSymbol, sym)
	}

	buf := make([]byte, length)
	if _, err := t.data.ReadAt(buf, sym+recordHeader); err != nil {
		return "", err
	}
	return string(buf), nil
}

// Release returns the pages of both arenas to the supplier.
func (t *SymbolTable) Release() error {
	return errors.Join(t.data.Release(), t.lookup.Release())
}

// Describe summarizes the table for diagnostics.
func (t *SymbolTable) Describe() string {
	return fmt.Sprintf("Symbols: %d (lookup: %s, data: %s)", t.count, t.lookup, t.data)
}

// hashString returns the non-negative FNV-1a hash of data.
func hashString(data []byte) int64 {
	h := fnv.New64a()
	h.Write(data)
	return int64(h.Sum64() & math.MaxInt64)
}
