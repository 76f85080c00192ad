// Package bitpack implements the fixed-width bit packing kernels used by
// the hybrid RLE encoding, for lanes of 8, 16, 32 and 64 bits.
//
// Each kernel packs or unpacks one full block of values, as many values as
// the lane has bits, so that the packed size of a block is a whole number
// of lanes and the rolling register always flushes exactly.
package bitpack

// ByteCount returns the number of bytes needed to hold the given number of
// bits.
func ByteCount(bitCount uint) int {
	return int((bitCount + 7) / 8)
}
