package dremel

// lengthIter produces the sequence of child run lengths of a node, one run
// per slot of the node.
type lengthIter interface {
	next() (int, bool)
}

// offsets32Lengths yields the differences of consecutive 32-bit offsets.
type offsets32Lengths struct {
	offsets []int32
	index   int
}

func (it *offsets32Lengths) next() (int, bool) {
	if it.index+1 >= len(it.offsets) {
		return 0, false
	}
	n := int(it.offsets[it.index+1] - it.offsets[it.index])
	it.index++
	return n, true
}

type offsets64Lengths struct {
	offsets []int64
	index   int
}

func (it *offsets64Lengths) next() (int, bool) {
	if it.index+1 >= len(it.offsets) {
		return 0, false
	}
	n := int(it.offsets[it.index+1] - it.offsets[it.index])
	it.index++
	return n, true
}

// repeatLengths yields the same run length a fixed number of times, for
// fixed size lists and structs.
type repeatLengths struct {
	length int
	count  int
}

func (it *repeatLengths) next() (int, bool) {
	if it.count == 0 {
		return 0, false
	}
	it.count--
	return it.length, true
}

type emptyLengths struct{}

func (emptyLengths) next() (int, bool) { return 0, false }

func nodeLengths(node Node) lengthIter {
	switch node := node.(type) {
	case *List:
		return &offsets32Lengths{offsets: node.Offsets}
	case *LargeList:
		return &offsets64Lengths{offsets: node.Offsets}
	case *FixedSizeList:
		return &repeatLengths{length: node.Width, count: node.Length}
	case *Struct:
		return &repeatLengths{length: 1, count: node.Length}
	}
	return emptyLengths{}
}

// defFrame is the state one node of the path contributes to the definition
// level stack. The leaf Primitive does not get a frame of its own; it is
// folded into the deepest frame.
type defFrame struct {
	// definition level accumulated through this node when it is present
	level uint32
	// definition level accumulated by the ancestors, reported when this
	// node is null or empty
	nullLevel uint32
	// 1 when the node is optional
	optional uint32
	// child run lengths, one per slot
	lengths lengthIter
	// remaining items of the run currently being consumed
	currentLength int
	// validity of this node's slots, nil when always present
	validity    *Bitmap
	validityIdx int

	isPrimitive  bool
	primOptional uint32
	primValidity *Bitmap
	primIdx      int
}

// DefLevels streams the definition levels of a path. It keeps one frame
// per node on an explicit stack, so advancing does no allocation and no
// recursion. Iterators are single use.
type DefLevels struct {
	stack     []defFrame
	index     int
	remaining int
	// index and level of the innermost null ancestor currently pinning the
	// definition level
	clampIndex int
	clamp      uint32
	clamped    bool
}

// NewDefLevels returns a definition level iterator for the path. It panics
// if the path is empty or does not end with a Primitive, and returns an
// error if the path is structurally malformed.
func NewDefLevels(path []Node) (*DefLevels, error) {
	leafOf(path)
	if err := validatePath(path); err != nil {
		return nil, err
	}

	stack := make([]defFrame, 1, len(path))
	stack[0] = defFrame{lengths: emptyLengths{}, currentLength: path[0].Len()}
	level := uint32(0)
	for _, node := range path {
		switch node := node.(type) {
		case *Primitive:
			top := &stack[len(stack)-1]
			top.isPrimitive = true
			top.primValidity = node.Validity
			if node.Optional {
				top.primOptional = 1
			}
		case *Struct:
			nullLevel := level
			if node.Optional {
				level++
			}
			stack = appendDefFrame(stack, defFrame{
				level:     level,
				nullLevel: nullLevel,
				optional:  boolToUint32(node.Optional),
				lengths:   nodeLengths(node),
				validity:  node.Validity,
			})
		case repeated:
			nullLevel := level
			level++
			if node.optional() {
				level++
			}
			stack = appendDefFrame(stack, defFrame{
				level:     level,
				nullLevel: nullLevel,
				optional:  boolToUint32(node.optional()),
				lengths:   nodeLengths(node),
				validity:  node.validity(),
			})
		}
	}
	return &DefLevels{stack: stack, remaining: NumValues(path)}, nil
}

// Remaining returns the exact number of levels left to produce.
func (it *DefLevels) Remaining() int { return it.remaining }

// Next returns the next definition level, with ok false once the sequence
// is exhausted.
func (it *DefLevels) Next() (level uint32, ok bool) {
	if it.remaining == 0 {
		return 0, false
	}

	// Unwind to the deepest frame with an unfinished run, adopting the
	// next run of every finished frame on the way up. Adopting a run ends
	// the slot a null ancestor was pinning.
	f := &it.stack[it.index]
	for f.currentLength == 0 {
		f.currentLength, _ = f.lengths.next()
		if it.clamped && it.index <= it.clampIndex {
			it.clamped = false
		}
		it.index--
		f = &it.stack[it.index]
	}

	// Descend, consuming one slot per frame, until reaching the leaf or an
	// empty run.
	for {
		f.currentLength--
		if f.isPrimitive {
			it.remaining--
			isValid := f.primOptional
			if f.primValidity != nil {
				isValid = boolToUint32(f.primValidity.Get(f.primIdx)) & f.primOptional
				f.primIdx++
			}
			if it.clamped {
				return it.clamp, true
			}
			return f.level + isValid, true
		}

		it.index++
		f = &it.stack[it.index]
		isValid := f.optional
		if f.validity != nil {
			valid := f.validity.Get(f.validityIdx)
			f.validityIdx++
			isValid = boolToUint32(valid)
			if !valid && !it.clamped {
				it.clamped = true
				it.clampIndex = it.index
				it.clamp = f.nullLevel
			}
		}
		if f.currentLength == 0 {
			it.remaining--
			if it.clamped {
				return it.clamp, true
			}
			return f.nullLevel + (isValid & f.optional), true
		}
	}
}

func appendDefFrame(stack []defFrame, f defFrame) []defFrame {
	f.currentLength, _ = f.lengths.next()
	return append(stack, f)
}

func boolToUint32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
