// Package collections provides data structures that keep their entries in
// paged arenas instead of on the Go heap.
//
// Both structures tag stored addresses and keys with bitaddr so that an
// all-zero slot always means "empty": freshly grown arena pages are zeroed.
//
// Neither Hashtable nor SymbolTable is safe for concurrent use.
package collections
