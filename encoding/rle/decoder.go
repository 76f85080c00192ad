package rle

import (
	"encoding/binary"
	"fmt"

	"github.com/rowshape/dremel/internal/bitpack"
)

// DecodeUint32 appends to dst the values of the hybrid encoded runs in src
// and returns the extended slice. The bit width must match the one the
// values were encoded with; the number of values is implied by the runs.
func DecodeUint32(dst []uint32, src []byte, bitWidth uint) ([]uint32, error) {
	if bitWidth > 32 {
		return dst, fmt.Errorf("rle: bit width %d is too large for 32 bit values", bitWidth)
	}
	for len(src) > 0 {
		u, n := binary.Uvarint(src)
		if n <= 0 {
			return dst, fmt.Errorf("rle: invalid run header")
		}
		src = src[n:]

		count, packed := int(u>>1), (u&1) != 0
		if packed {
			size := count * int(bitWidth)
			if size > len(src) {
				return dst, fmt.Errorf("rle: bit-packed run of %d bytes truncated to %d", size, len(src))
			}
			run := src[:size]
			src = src[size:]
			var block [blockLen]uint32
			var chunk [4 * blockLen]byte
			for count > 0 {
				g := count
				if g > 4 {
					g = 4
				}
				chunk = [4 * blockLen]byte{}
				copy(chunk[:], run[:g*int(bitWidth)])
				bitpack.Unpack32(&block, chunk[:], bitWidth)
				dst = append(dst, block[:g*8]...)
				run = run[g*int(bitWidth):]
				count -= g
			}
		} else {
			size := bitpack.ByteCount(bitWidth)
			if size > len(src) {
				return dst, fmt.Errorf("rle: repeated run value of %d bytes truncated to %d", size, len(src))
			}
			var word [4]byte
			copy(word[:], src[:size])
			src = src[size:]
			v := binary.LittleEndian.Uint32(word[:])
			for i := 0; i < count; i++ {
				dst = append(dst, v)
			}
		}
	}
	return dst, nil
}

// DecodeBoolean appends to dst the values of the hybrid encoded runs in
// src, decoded at a bit width of 1. Runs are expanded straight into dst
// without staging through integers.
func DecodeBoolean(dst []bool, src []byte) ([]bool, error) {
	for len(src) > 0 {
		u, n := binary.Uvarint(src)
		if n <= 0 {
			return dst, fmt.Errorf("rle: invalid run header")
		}
		src = src[n:]

		count, packed := int(u>>1), (u&1) != 0
		if packed {
			// At a bit width of 1 each header count is one byte of 8 values.
			if count > len(src) {
				return dst, fmt.Errorf("rle: bit-packed run of %d bytes truncated to %d", count, len(src))
			}
			for _, b := range src[:count] {
				for bit := 0; bit < 8; bit++ {
					dst = append(dst, b>>bit&1 != 0)
				}
			}
			src = src[count:]
		} else {
			if len(src) == 0 {
				return dst, fmt.Errorf("rle: repeated run value of 1 byte truncated to 0")
			}
			v := src[0]&1 != 0
			src = src[1:]
			for i := 0; i < count; i++ {
				dst = append(dst, v)
			}
		}
	}
	return dst, nil
}
