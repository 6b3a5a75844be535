package native

import "errors"

// ErrInvalidSize is returned when a block size is not positive.
var ErrInvalidSize = errors.New("native: invalid block size")
