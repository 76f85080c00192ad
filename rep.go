package dremel

// repFrame is the state one node of the path contributes to the repetition
// level stack. Repetition levels are purely structural: validity bitmaps
// never change them, so frames carry only run lengths.
type repFrame struct {
	// repetition level of an entry continuing a run of this node
	level uint32
	// child run lengths, one per slot
	lengths lengthIter
	// remaining items of the run currently being consumed
	currentLength int

	isPrimitive bool
}

// RepLevels streams the repetition levels of a path, mirroring DefLevels:
// one frame per node on an explicit stack, no allocation and no recursion
// while advancing, single use.
type RepLevels struct {
	stack     []repFrame
	index     int
	remaining int
}

// NewRepLevels returns a repetition level iterator for the path. It panics
// if the path is empty or does not end with a Primitive, and returns an
// error if the path is structurally malformed.
func NewRepLevels(path []Node) (*RepLevels, error) {
	leafOf(path)
	if err := validatePath(path); err != nil {
		return nil, err
	}

	stack := make([]repFrame, 1, len(path))
	stack[0] = repFrame{lengths: emptyLengths{}, currentLength: path[0].Len()}
	level := uint32(0)
	for _, node := range path {
		switch node := node.(type) {
		case *Primitive:
			stack[len(stack)-1].isPrimitive = true
		case *Struct:
			stack = appendRepFrame(stack, repFrame{
				level:   level,
				lengths: nodeLengths(node),
			})
		case repeated:
			level++
			stack = appendRepFrame(stack, repFrame{
				level:   level,
				lengths: nodeLengths(node),
			})
		}
	}
	return &RepLevels{stack: stack, remaining: NumValues(path)}, nil
}

// Remaining returns the exact number of levels left to produce.
func (it *RepLevels) Remaining() int { return it.remaining }

// Next returns the next repetition level, with ok false once the sequence
// is exhausted.
func (it *RepLevels) Next() (level uint32, ok bool) {
	if it.remaining == 0 {
		return 0, false
	}

	f := &it.stack[it.index]
	for f.currentLength == 0 {
		f.currentLength, _ = f.lengths.next()
		it.index--
		f = &it.stack[it.index]
	}

	// The entry continues a run of the frame the unwind stopped at and
	// repeats at that frame's level; every deeper run it opens is fresh.
	rep := f.level
	for {
		f.currentLength--
		if f.isPrimitive {
			it.remaining--
			return rep, true
		}
		it.index++
		f = &it.stack[it.index]
		if f.currentLength == 0 {
			it.remaining--
			return rep, true
		}
	}
}

func appendRepFrame(stack []repFrame, f repFrame) []repFrame {
	f.currentLength, _ = f.lengths.next()
	return append(stack, f)
}
