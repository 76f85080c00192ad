package bitpack

import "encoding/binary"

// Pack8 packs the 8 values of src, keeping the low bitWidth bits of each,
// into the first bitWidth bytes of dst.
func Pack8(dst []byte, src *[8]uint8, bitWidth uint) {
	if bitWidth == 0 {
		return
	}
	mask := uint8(0xFF) >> (8 - bitWidth)
	out := uint8(0)
	shift := uint(0)
	n := 0
	for _, v := range src {
		v &= mask
		out |= v << shift
		shift += bitWidth
		if shift >= 8 {
			dst[n] = out
			n++
			shift -= 8
			out = 0
			if shift > 0 {
				out = v >> (bitWidth - shift)
			}
		}
	}
}

// Pack16 packs the 16 values of src into the first 2*bitWidth bytes of dst.
func Pack16(dst []byte, src *[16]uint16, bitWidth uint) {
	if bitWidth == 0 {
		return
	}
	mask := uint16(0xFFFF) >> (16 - bitWidth)
	out := uint16(0)
	shift := uint(0)
	n := 0
	for _, v := range src {
		v &= mask
		out |= v << shift
		shift += bitWidth
		if shift >= 16 {
			binary.LittleEndian.PutUint16(dst[n:], out)
			n += 2
			shift -= 16
			out = 0
			if shift > 0 {
				out = v >> (bitWidth - shift)
			}
		}
	}
}

// Pack32 packs the 32 values of src into the first 4*bitWidth bytes of dst.
func Pack32(dst []byte, src *[32]uint32, bitWidth uint) {
	if bitWidth == 0 {
		return
	}
	mask := uint32(0xFFFFFFFF) >> (32 - bitWidth)
	out := uint32(0)
	shift := uint(0)
	n := 0
	for _, v := range src {
		v &= mask
		out |= v << shift
		shift += bitWidth
		if shift >= 32 {
			binary.LittleEndian.PutUint32(dst[n:], out)
			n += 4
			shift -= 32
			out = 0
			if shift > 0 {
				out = v >> (bitWidth - shift)
			}
		}
	}
}

// Pack64 packs the 64 values of src into the first 8*bitWidth bytes of dst.
func Pack64(dst []byte, src *[64]uint64, bitWidth uint) {
	if bitWidth == 0 {
		return
	}
	mask := ^uint64(0) >> (64 - bitWidth)
	out := uint64(0)
	shift := uint(0)
	n := 0
	for _, v := range src {
		v &= mask
		out |= v << shift
		shift += bitWidth
		if shift >= 64 {
			binary.LittleEndian.PutUint64(dst[n:], out)
			n += 8
			shift -= 64
			out = 0
			if shift > 0 {
				out = v >> (bitWidth - shift)
			}
		}
	}
}
