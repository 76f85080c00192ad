// Package rle implements the hybrid RLE/bit-packed encoding of unsigned
// integers used for definition and repetition levels.
//
// The output is a sequence of runs, each introduced by a ULEB128 header.
// A header with the low bit set introduces a bit-packed run of
// (header>>1)*8 values at the encoder's bit width; a header with the low
// bit clear introduces a run of header>>1 repetitions of a single value
// stored in ceil(bitWidth/8) little-endian bytes.
package rle

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/rowshape/dremel/internal/bitpack"
)

// Runs of more than this many equal values are encoded as repetitions
// instead of being accumulated into the bit-packed buffer.
const maxRepeatsInLiteralRun = 8

// Arbitrary cap on the number of buffered literal values, balancing
// encoder memory against run header overhead.
const maxValuesPerLiteralRun = (1 << 10) * 8

const blockLen = 32

// An Encoder writes the hybrid encoding of sequences of integers to an
// io.Writer. All values must fit in the bit width given at construction.
type Encoder struct {
	writer   io.Writer
	bitWidth uint
	header   [binary.MaxVarintLen64]byte
	scratch  [4 * blockLen]byte
	literals [maxValuesPerLiteralRun]uint32
}

func NewEncoder(w io.Writer, bitWidth uint) *Encoder {
	return &Encoder{writer: w, bitWidth: bitWidth}
}

func (e *Encoder) Reset(w io.Writer) {
	e.writer = w
}

func (e *Encoder) BitWidth() int {
	return int(e.bitWidth)
}

// EncodeUint32 writes the hybrid encoding of values. The scan is greedy: a
// value repeated more than 8 times in a row becomes a repeated run, runs of
// 8 or fewer are folded into the surrounding bit-packed run, borrowing
// repeats back when needed to keep the literal run a multiple of 8 values.
func (e *Encoder) EncodeUint32(values []uint32) error {
	if e.bitWidth > 32 {
		return fmt.Errorf("rle: bit width %d is too large for 32 bit values", e.bitWidth)
	}
	var (
		repeats    int    // length of the run of equal values being scanned
		buffered   int    // number of values held in the literal buffer
		literalLen int    // number of buffered values committed to the literal run
		prev       uint32 // last value scanned
	)
	for _, v := range values {
		switch {
		case v == prev:
			repeats++
			if repeats > maxRepeatsInLiteralRun {
				continue
			}
			if repeats == maxRepeatsInLiteralRun {
				padding := (8 - literalLen%8) % 8
				repeats -= padding
				literalLen += padding
			}
		case repeats > maxRepeatsInLiteralRun:
			if literalLen > 0 {
				if err := e.encodeBitPacked(e.literals[:literalLen]); err != nil {
					return err
				}
				literalLen = 0
			}
			if err := e.encodeRunLength(repeats, prev); err != nil {
				return err
			}
			repeats = 1
			buffered = 0
		default:
			literalLen = buffered
			repeats = 1
		}
		if buffered == maxValuesPerLiteralRun {
			if err := e.encodeBitPacked(e.literals[:buffered]); err != nil {
				return err
			}
			repeats -= buffered - literalLen
			buffered = 0
			literalLen = 0
		}
		e.literals[buffered] = v
		buffered++
		prev = v
	}
	if repeats <= maxRepeatsInLiteralRun {
		literalLen = buffered
		repeats = 0
	}
	if literalLen > 0 {
		if err := e.encodeBitPacked(e.literals[:literalLen]); err != nil {
			return err
		}
	}
	if repeats > 0 {
		return e.encodeRunLength(repeats, prev)
	}
	return nil
}

// EncodeBoolean writes the hybrid encoding of values at a bit width of 1.
func (e *Encoder) EncodeBoolean(values []bool) error {
	if e.bitWidth != 1 {
		return fmt.Errorf("rle: boolean encoding requires a bit width of 1, not %d", e.bitWidth)
	}
	var (
		repeats    int
		buffered   int
		literalLen int
		prev       uint32
	)
	for _, b := range values {
		v := uint32(0)
		if b {
			v = 1
		}
		switch {
		case v == prev:
			repeats++
			if repeats > maxRepeatsInLiteralRun {
				continue
			}
			if repeats == maxRepeatsInLiteralRun {
				padding := (8 - literalLen%8) % 8
				repeats -= padding
				literalLen += padding
			}
		case repeats > maxRepeatsInLiteralRun:
			if literalLen > 0 {
				if err := e.encodeBitPacked(e.literals[:literalLen]); err != nil {
					return err
				}
				literalLen = 0
			}
			if err := e.encodeRunLength(repeats, prev); err != nil {
				return err
			}
			repeats = 1
			buffered = 0
		default:
			literalLen = buffered
			repeats = 1
		}
		if buffered == maxValuesPerLiteralRun {
			if err := e.encodeBitPacked(e.literals[:buffered]); err != nil {
				return err
			}
			repeats -= buffered - literalLen
			buffered = 0
			literalLen = 0
		}
		e.literals[buffered] = v
		buffered++
		prev = v
	}
	if repeats <= maxRepeatsInLiteralRun {
		literalLen = buffered
		repeats = 0
	}
	if literalLen > 0 {
		if err := e.encodeBitPacked(e.literals[:literalLen]); err != nil {
			return err
		}
	}
	if repeats > 0 {
		return e.encodeRunLength(repeats, prev)
	}
	return nil
}

func (e *Encoder) encodeBitPacked(values []uint32) error {
	if _, err := e.writeUvarint((uint64(ceil8(len(values))) << 1) | 1); err != nil {
		return err
	}
	var block [blockLen]uint32
	for len(values) >= blockLen {
		copy(block[:], values[:blockLen])
		bitpack.Pack32(e.scratch[:], &block, e.bitWidth)
		if _, err := e.writer.Write(e.scratch[:4*e.bitWidth]); err != nil {
			return err
		}
		values = values[blockLen:]
	}
	if len(values) > 0 {
		block = [blockLen]uint32{}
		copy(block[:], values)
		bitpack.Pack32(e.scratch[:], &block, e.bitWidth)
		// Trailing values are padded with zeros to the next multiple of 8
		// so the run stays aligned to whole bytes of the bit width.
		if _, err := e.writer.Write(e.scratch[:ceil8(len(values))*int(e.bitWidth)]); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encodeRunLength(count int, value uint32) error {
	if _, err := e.writeUvarint(uint64(count) << 1); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(e.scratch[:4], value)
	_, err := e.writer.Write(e.scratch[:bitpack.ByteCount(e.bitWidth)])
	return err
}

func (e *Encoder) writeUvarint(u uint64) (int, error) {
	n := binary.PutUvarint(e.header[:], u)
	return e.writer.Write(e.header[:n])
}

// EncodeUint32 writes the hybrid encoding of values at the given bit width
// to w.
func EncodeUint32(w io.Writer, values []uint32, bitWidth uint) error {
	return NewEncoder(w, bitWidth).EncodeUint32(values)
}

// EncodeBoolean writes the hybrid encoding of values at a bit width of 1
// to w.
func EncodeBoolean(w io.Writer, values []bool) error {
	return NewEncoder(w, 1).EncodeBoolean(values)
}

func ceil8(n int) int {
	return (n + 7) / 8
}
