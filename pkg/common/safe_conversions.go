package common

import (
	"fmt"
	"math"
)

// SafeUint64ToInt64 safely converts uint64 to int64 with bounds checking
func SafeUint64ToInt64(value uint64) (int64, error) {
	if value > math.MaxInt64 {
		return 0, fmt.Errorf("value %d out of range for int64 (max %d)", value, uint64(math.MaxInt64))
	}
	return int64(value), nil
}
