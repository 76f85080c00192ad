package bitpack

import "encoding/binary"

// load64 reads up to 8 little-endian bytes of src starting at byte i,
// zero-padding past the end of src.
func load64(src []byte, i int) uint64 {
	if i+8 <= len(src) {
		return binary.LittleEndian.Uint64(src[i:])
	}
	w := uint64(0)
	for j := 0; i+j < len(src); j++ {
		w |= uint64(src[i+j]) << (8 * uint(j))
	}
	return w
}

// Unpack8 unpacks 8 values of bitWidth bits each from src into dst.
func Unpack8(dst *[8]uint8, src []byte, bitWidth uint) {
	if bitWidth == 0 {
		*dst = [8]uint8{}
		return
	}
	mask := uint8(0xFF) >> (8 - bitWidth)
	bit := uint(0)
	for i := range dst {
		w := load64(src, int(bit/8)) >> (bit % 8)
		dst[i] = uint8(w) & mask
		bit += bitWidth
	}
}

// Unpack16 unpacks 16 values of bitWidth bits each from src into dst.
func Unpack16(dst *[16]uint16, src []byte, bitWidth uint) {
	if bitWidth == 0 {
		*dst = [16]uint16{}
		return
	}
	mask := uint16(0xFFFF) >> (16 - bitWidth)
	bit := uint(0)
	for i := range dst {
		w := load64(src, int(bit/8)) >> (bit % 8)
		dst[i] = uint16(w) & mask
		bit += bitWidth
	}
}

// Unpack32 unpacks 32 values of bitWidth bits each from src into dst.
func Unpack32(dst *[32]uint32, src []byte, bitWidth uint) {
	if bitWidth == 0 {
		*dst = [32]uint32{}
		return
	}
	mask := uint32(0xFFFFFFFF) >> (32 - bitWidth)
	bit := uint(0)
	for i := range dst {
		w := load64(src, int(bit/8)) >> (bit % 8)
		dst[i] = uint32(w) & mask
		bit += bitWidth
	}
}

// Unpack64 unpacks 64 values of bitWidth bits each from src into dst. A
// value may straddle two 64-bit loads when bitWidth is large, in which case
// the high part is read from the following byte.
func Unpack64(dst *[64]uint64, src []byte, bitWidth uint) {
	if bitWidth == 0 {
		*dst = [64]uint64{}
		return
	}
	mask := ^uint64(0) >> (64 - bitWidth)
	bit := uint(0)
	for i := range dst {
		j := int(bit / 8)
		shift := bit % 8
		w := load64(src, j) >> shift
		if shift+bitWidth > 64 {
			w |= load64(src, j+8) << (64 - shift)
		}
		dst[i] = w & mask
		bit += bitWidth
	}
}
