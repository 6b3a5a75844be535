// Package bitaddr tags integers by reserving their top bit.
//
// Off-heap structures store addresses and keys in zero-initialized memory,
// where 0 means "empty slot". Wrapping a value sets the top bit so that every
// stored value, including address 0, is distinguishable from an empty slot:
//
//	tagged, err := bitaddr.Wrap64(addr)
//	...
//	if bitaddr.IsWrapped64(slot) {
//	    addr = bitaddr.Unwrap64(slot)
//	}
//
// Values that already carry the bit (negative numbers) cannot be wrapped.
// All functions are pure.
package bitaddr
