// Package bits holds helpers for the bit flags stored in integer elements.
package bits

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

// Set returns store with bit set. Bit 0 is the least significant bit.
func Set[U constraints.Unsigned](store U, bit int) U {
	return store | U(1)<<bit
}

// IsSet reports whether bit is set in store.
func IsSet[U constraints.Unsigned](store U, bit int) bool {
	return store&(U(1)<<bit) != 0
}

// Fits reports whether every set bit of v is below width bits.
func Fits[U constraints.Unsigned](v U, width int) bool {
	return bits.Len64(uint64(v)) <= width
}

// Indexes returns the positions of the set bits of v, lowest first.
func Indexes[U constraints.Unsigned](v U) []int {
	u := uint64(v)
	out := make([]int, 0, bits.OnesCount64(u))
	for u != 0 {
		i := bits.TrailingZeros64(u)
		out = append(out, i)
		u &^= 1 << i
	}
	return out
}
