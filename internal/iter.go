package internal

import (
	"iter"
)

// Bits iterates over the low width bits of value, LSB first, yielding the
// bit position and its state.
func Bits(value uint64, width int) iter.Seq2[int, bool] {
	return func(yield func(int, bool) bool) {
		for n := range width {
			if !yield(n, ((value>>n)&1) == 1) {
				return // Stop if the consumer stops
			}
		}
	}
}

// ChangedBits iterates over the bit positions where value differs from last.
func ChangedBits(last, value uint64, width int) iter.Seq2[int, bool] {
	return func(yield func(int, bool) bool) {
		for n, bit := range Bits(value, width) {
			if ((last>>n)&1 == 1) == bit {
				continue
			}
			if !yield(n, bit) {
				return
			}
		}
	}
}

// Mask returns a mask of the low width bits.
func Mask(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << width) - 1
}
