package dremel

// WalkLevels computes the definition and repetition levels of the path with
// a direct recursive walk. It materializes both sequences up front and is
// the reference the streaming iterators are checked against; prefer Levels
// for production use.
//
// WalkLevels panics if the path is empty or does not end with a Primitive,
// and returns an error if the path is structurally malformed. No levels are
// produced on error.
func WalkLevels(path []Node) (def, rep []uint32, err error) {
	leafOf(path)
	if err := validatePath(path); err != nil {
		return nil, nil, err
	}
	n := NumValues(path)
	w := &levelWalker{
		path: path,
		def:  make([]uint32, 0, n),
		rep:  make([]uint32, 0, n),
	}
	if top := path[0].Len(); top > 0 {
		w.walk(0, 0, top, walkState{})
	}
	return w.def, w.rep, nil
}

type levelWalker struct {
	path []Node
	def  []uint32
	rep  []uint32
}

// walkState carries the levels accumulated by the ancestors of the slice
// being walked.
type walkState struct {
	// definition level of an element whose ancestors are all present
	curDef uint32
	// definition level reported when the slice is empty
	nullDef uint32
	// repetition level of the nearest repeated ancestor
	curRep uint32
	// repetition level inherited by the first entry of the slice
	parentRep uint32
	// set when a null ancestor pins the definition level of the subtree
	clamped bool
	clamp   uint32
}

// walk emits one (definition, repetition) pair per leaf slot reachable from
// the child positions [offset, offset+length) of the node at depth.
func (w *levelWalker) walk(depth, offset, length int, s walkState) {
	if length == 0 {
		if s.clamped {
			w.emit(s.clamp, s.parentRep)
		} else {
			w.emit(s.nullDef, s.parentRep)
		}
		return
	}
	switch node := w.path[depth].(type) {
	case *Primitive:
		for i := 0; i < length; i++ {
			def := s.curDef
			if node.Optional && (node.Validity == nil || node.Validity.Get(offset+i)) {
				def++
			}
			if s.clamped {
				def = s.clamp
			}
			rep := s.curRep
			if i == 0 {
				rep = s.parentRep
			}
			w.emit(def, rep)
		}

	case *Struct:
		childDef := s.curDef
		if node.Optional {
			childDef++
		}
		for i := 0; i < length; i++ {
			rep := s.curRep
			if i == 0 {
				rep = s.parentRep
			}
			child := walkState{
				curDef:    childDef,
				nullDef:   childDef,
				curRep:    s.curRep,
				parentRep: rep,
				clamped:   s.clamped,
				clamp:     s.clamp,
			}
			if !child.clamped && node.Validity != nil && !node.Validity.Get(offset+i) {
				// The first null ancestor pins the level of everything
				// below it.
				child.clamped = true
				child.clamp = s.curDef
			}
			w.walk(depth+1, offset+i, 1, child)
		}

	case repeated:
		presentDef := s.curDef
		if node.optional() {
			presentDef++
		}
		childRep := s.curRep + 1
		for i := 0; i < length; i++ {
			rep := s.curRep
			if i == 0 {
				rep = s.parentRep
			}
			child := walkState{
				curDef:    presentDef + 1,
				nullDef:   presentDef,
				curRep:    childRep,
				parentRep: rep,
				clamped:   s.clamped,
				clamp:     s.clamp,
			}
			if !child.clamped {
				if v := node.validity(); v != nil && !v.Get(offset+i) {
					child.clamped = true
					child.clamp = s.curDef
				}
			}
			start, n := node.run(offset + i)
			w.walk(depth+1, start, n, child)
		}
	}
}

func (w *levelWalker) emit(def, rep uint32) {
	w.def = append(w.def, def)
	w.rep = append(w.rep, rep)
}
