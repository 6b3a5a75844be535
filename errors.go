package pagedmem

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is returned when an address or range lies outside [0, UsedSize).
	ErrOutOfBounds = errors.New("pagedmem: address out of bounds")
	// ErrAllocationFailed is returned when a supplier cannot obtain a page.
	ErrAllocationFailed = errors.New("pagedmem: page allocation failed")
	// ErrReleased is returned by operations on a released arena.
	ErrReleased = errors.New("pagedmem: arena released")
	// ErrInvalidSize is returned for negative sizes and lengths.
	ErrInvalidSize = errors.New("pagedmem: invalid size")
	// ErrNilSupplier is returned when an arena is created without a supplier.
	ErrNilSupplier = errors.New("pagedmem: nil supplier")
	// ErrForeignPage is returned when a page is returned to a supplier that did not issue it.
	ErrForeignPage = errors.New("pagedmem: page belongs to another supplier")
)

// OutOfBoundsError reports an offending address and the bound it violated.
//
// It matches ErrOutOfBounds with errors.Is.
type OutOfBoundsError struct {
	Addr  int64
	Bound int64
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("pagedmem: address %d out of bounds [0, %d)", e.Addr, e.Bound)
}

// Is reports whether target is ErrOutOfBounds.
func (e *OutOfBoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}

// AllocationError indicates that a supplier could not provide a page.
//
// It matches ErrAllocationFailed with errors.Is. The underlying error
// (memory budget, mmap failure) can be accessed via errors.Unwrap.
type AllocationError struct {
	Supplier string
	Size     int
	cause    error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("pagedmem: supplier %q failed to allocate %d bytes: %v", e.Supplier, e.Size, e.cause)
}

func (e *AllocationError) Unwrap() error { return e.cause }

// Is reports whether target is ErrAllocationFailed.
func (e *AllocationError) Is(target error) bool {
	return target == ErrAllocationFailed
}
