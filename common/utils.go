package common

import "cmp"

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// InRange reports whether v lies in the closed interval [lo, hi].
//
// Parameters:
//   - v: the value to check
//   - lo: inclusive lower bound
//   - hi: inclusive upper bound
//
// Returns:
//   - bool: true if lo <= v <= hi
func InRange[T cmp.Ordered](v, lo, hi T) bool {
	return v >= lo && v <= hi
}
