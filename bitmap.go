package dremel

import "github.com/apache/arrow/go/v17/arrow/bitutil"

// Bitmap is a read-only view of a validity bitmap: one bit per element,
// ones marking non-null positions. The view borrows the byte buffer it is
// created from and never copies or mutates it.
type Bitmap struct {
	bits   []byte
	offset int
	length int
}

// NewBitmap returns a view of length bits of buf starting at the given bit
// offset.
func NewBitmap(buf []byte, offset, length int) *Bitmap {
	return &Bitmap{bits: buf, offset: offset, length: length}
}

// BitmapFromBools builds a bitmap holding the given values.
func BitmapFromBools(values []bool) *Bitmap {
	buf := make([]byte, bitutil.BytesForBits(int64(len(values))))
	for i, v := range values {
		if v {
			bitutil.SetBit(buf, i)
		}
	}
	return NewBitmap(buf, 0, len(values))
}

// Len returns the number of bits in the view. A nil bitmap has length 0.
func (b *Bitmap) Len() int {
	if b == nil {
		return 0
	}
	return b.length
}

// Get reports whether bit i of the view is set.
func (b *Bitmap) Get(i int) bool {
	return bitutil.BitIsSet(b.bits, b.offset+i)
}

// Slice returns a view of length bits of b starting at bit i.
func (b *Bitmap) Slice(i, length int) *Bitmap {
	return &Bitmap{bits: b.bits, offset: b.offset + i, length: length}
}
