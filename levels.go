package dremel

import (
	"fmt"
	"io"
	"math/bits"

	"github.com/rowshape/dremel/encoding/rle"
)

// Levels computes the definition and repetition levels of the path by
// draining the streaming iterators into exactly sized slices. Both slices
// have length NumValues(path).
//
// Levels panics if the path is empty or does not end with a Primitive, and
// returns an error if the path is structurally malformed. No levels are
// produced on error.
func Levels(path []Node) (def, rep []uint32, err error) {
	d, err := NewDefLevels(path)
	if err != nil {
		return nil, nil, err
	}
	r, err := NewRepLevels(path)
	if err != nil {
		return nil, nil, err
	}
	def = make([]uint32, 0, d.Remaining())
	rep = make([]uint32, 0, r.Remaining())
	for {
		v, ok := d.Next()
		if !ok {
			break
		}
		def = append(def, v)
	}
	for {
		v, ok := r.Next()
		if !ok {
			break
		}
		rep = append(rep, v)
	}
	return def, rep, nil
}

// EncodeLevels writes the hybrid RLE/bit-packed encoding of a level
// sequence to w, at the bit width needed to represent maxLevel. Every
// level must be at most maxLevel.
func EncodeLevels(w io.Writer, levels []uint32, maxLevel uint32) error {
	for i, v := range levels {
		if v > maxLevel {
			return fmt.Errorf("dremel: level %d is %d, larger than the maximum %d", i, v, maxLevel)
		}
	}
	return rle.EncodeUint32(w, levels, uint(bits.Len32(maxLevel)))
}
