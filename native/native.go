package native

// Block is a contiguous region of memory obtained from an Allocator.
// Bytes returns exactly the requested number of bytes until Close is called.
type Block interface {
	Bytes() []byte
	Close() error
}

// Allocator is the native-memory capability injected into page suppliers.
// Implementations must be safe for concurrent use.
type Allocator interface {
	// Allocate returns a zero-filled block of exactly size bytes.
	Allocate(size int) (Block, error)
	// String describes the backing resource for diagnostics.
	String() string
}
