package conv

import (
	"fmt"
	"math"
)

// Int64ToInt32 converts int64 to int32 safely.
func Int64ToInt32(v int64) (int32, error) {
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to int32", v)
	}
	return int32(v), nil
}

// IntToInt64 widens int to int64. It cannot fail on any supported platform.
func IntToInt64(v int) int64 {
	return int64(v)
}
