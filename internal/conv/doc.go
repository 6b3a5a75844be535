// Package conv provides safe integer type conversion utilities.
//
// Logical arena addresses are int64 while Go slices are indexed by int. These
// helpers guard the narrowing conversions between the two worlds so that a
// corrupted address or length surfaces as an error instead of wrapping around.
//
// For conversions that are provably safe by domain constraints (page offsets,
// page indexes below the page-table length), use direct type casts instead to
// avoid overhead.
package conv
