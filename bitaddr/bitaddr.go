package bitaddr

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/pagedmem/internal/conv"
)

const (
	// Int32Bytes is the encoded width of a 32-bit value.
	Int32Bytes = 4
	// Int64Bytes is the encoded width of a 64-bit value.
	Int64Bytes = 8

	tag32 = math.MinInt32
	tag64 = math.MinInt64
)

// ErrInvalidTag is returned when a value cannot carry the tag bit.
var ErrInvalidTag = errors.New("bitaddr: invalid tag")

// InvalidTagError describes a rejected Wrap call.
type InvalidTagError struct {
	Value  int64
	Width  int
	Reason string
}

func (e *InvalidTagError) Error() string {
	return fmt.Sprintf("bitaddr: cannot tag %d as %d-bit value: %s", e.Value, e.Width, e.Reason)
}

// Is reports whether target is ErrInvalidTag.
func (e *InvalidTagError) Is(target error) bool {
	return target == ErrInvalidTag
}

// Wrap32 sets the top bit of v.
func Wrap32(v int32) (int32, error) {
	if IsWrapped32(v) {
		return 0, &InvalidTagError{Value: int64(v), Width: 32, Reason: "already tagged"}
	}
	return v | tag32, nil
}

// Wrap32From64 narrows v to 32 bits and sets the top bit.
func Wrap32From64(v int64) (int32, error) {
	n, err := conv.Int64ToInt32(v)
	if err != nil {
		return 0, &InvalidTagError{Value: v, Width: 32, Reason: "out of range"}
	}
	return Wrap32(n)
}

// IsWrapped32 reports whether the top bit of v is set.
func IsWrapped32(v int32) bool {
	return v&tag32 != 0
}

// Unwrap32 clears the top bit of v.
func Unwrap32(v int32) int32 {
	return v &^ tag32
}

// Wrap64 sets the top bit of v.
func Wrap64(v int64) (int64, error) {
	if IsWrapped64(v) {
		return 0, &InvalidTagError{Value: v, Width: 64, Reason: "already tagged"}
	}
	return v | tag64, nil
}

// IsWrapped64 reports whether the top bit of v is set.
func IsWrapped64(v int64) bool {
	return v&tag64 != 0
}

// Unwrap64 clears the top bit of v.
func Unwrap64(v int64) int64 {
	return v &^ tag64
}
