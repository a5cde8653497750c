// Package safe provides helpers for safe numeric conversions with overflow checks.
package safe

import (
	"fmt"
	"math"
)

// Integer lists the integer kinds accepted by the conversions.
type Integer interface {
	~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64
}

// Uint32 converts signed or unsigned integers to uint32 with range validation.
func Uint32[T Integer](v T) (uint32, error) {
	if v < 0 || uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("value %d out of uint32 range", v)
	}
	return uint32(v), nil
}

// Uint64 converts signed or unsigned integers to uint64 while guarding against negatives.
func Uint64[T Integer](v T) (uint64, error) {
	if v < 0 {
		return 0, fmt.Errorf("value %d out of uint64 range", v)
	}
	return uint64(v), nil
}

// Int converts an integer to the platform int, failing when it does not fit.
func Int[T Integer](v T) (int, error) {
	if v >= 0 {
		if uint64(v) > math.MaxInt {
			return 0, fmt.Errorf("value %d out of int range", v)
		}
		return int(v), nil
	}
	if int64(v) < math.MinInt {
		return 0, fmt.Errorf("value %d out of int range", v)
	}
	return int(v), nil
}
