package dremel

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedOffsets reports offsets that do not start at zero or are
	// not monotonically non-decreasing.
	ErrMalformedOffsets = errors.New("malformed offsets")
	// ErrMalformedValidity reports a validity bitmap whose length does not
	// match the node it belongs to.
	ErrMalformedValidity = errors.New("malformed validity bitmap")
	// ErrMalformedPath reports a node whose length does not match the span
	// implied by its parent.
	ErrMalformedPath = errors.New("malformed path")
)

// Node describes one level of nesting on the path from the root of a
// column to one of its leaves.
type Node interface {
	// Len returns the number of element slots at this level of the path.
	Len() int

	node()
}

// Primitive is the leaf of a path: a flat array of values with an optional
// validity bitmap.
type Primitive struct {
	Validity *Bitmap
	Optional bool
	Length   int
}

func (n *Primitive) Len() int { return n.Length }
func (n *Primitive) node()    {}

// List is a variable-size list with 32-bit offsets. Offsets holds one more
// entry than the list has elements; element i spans the child positions
// [Offsets[i], Offsets[i+1]).
type List struct {
	Offsets  []int32
	Validity *Bitmap
	Optional bool
}

func (n *List) Len() int {
	if len(n.Offsets) == 0 {
		return 0
	}
	return len(n.Offsets) - 1
}
func (n *List) node() {}

// LargeList is a variable-size list with 64-bit offsets.
type LargeList struct {
	Offsets  []int64
	Validity *Bitmap
	Optional bool
}

func (n *LargeList) Len() int {
	if len(n.Offsets) == 0 {
		return 0
	}
	return len(n.Offsets) - 1
}
func (n *LargeList) node() {}

// FixedSizeList is a list whose every element spans exactly Width child
// positions.
type FixedSizeList struct {
	Validity *Bitmap
	Optional bool
	Width    int
	Length   int
}

func (n *FixedSizeList) Len() int { return n.Length }
func (n *FixedSizeList) node()    {}

// Struct groups child fields without changing their cardinality: child
// arrays have one slot per struct position, null structs included.
type Struct struct {
	Validity *Bitmap
	Optional bool
	Length   int
}

func (n *Struct) Len() int { return n.Length }
func (n *Struct) node()    {}

// repeated is implemented by the node kinds that multiply cardinality and
// contribute a repetition depth: List, LargeList and FixedSizeList.
type repeated interface {
	Node
	// run returns the child start position and length of element i.
	run(i int) (start, length int)
	validity() *Bitmap
	optional() bool
}

func (n *List) run(i int) (int, int) {
	s := int(n.Offsets[i])
	return s, int(n.Offsets[i+1]) - s
}
func (n *List) validity() *Bitmap { return n.Validity }
func (n *List) optional() bool    { return n.Optional }

func (n *LargeList) run(i int) (int, int) {
	s := int(n.Offsets[i])
	return s, int(n.Offsets[i+1]) - s
}
func (n *LargeList) validity() *Bitmap { return n.Validity }
func (n *LargeList) optional() bool    { return n.Optional }

func (n *FixedSizeList) run(i int) (int, int) {
	return i * n.Width, n.Width
}
func (n *FixedSizeList) validity() *Bitmap { return n.Validity }
func (n *FixedSizeList) optional() bool    { return n.Optional }

// leafOf returns the Primitive the path ends with. The shape of a path is
// under the caller's control, so violations are programming errors and
// panic rather than returning an error.
func leafOf(path []Node) *Primitive {
	if len(path) == 0 {
		panic("dremel: empty path")
	}
	for _, node := range path[:len(path)-1] {
		if _, ok := node.(*Primitive); ok {
			panic("dremel: primitive node before the end of the path")
		}
	}
	leaf, ok := path[len(path)-1].(*Primitive)
	if !ok {
		panic("dremel: path does not end with a primitive node")
	}
	return leaf
}

// NumValues returns the number of level entries the path produces: one per
// leaf slot, plus one placeholder per empty element of each repeated node.
//
// The path must be non-empty and end with a Primitive; NumValues panics
// otherwise.
func NumValues(path []Node) int {
	n := leafOf(path).Length
	for _, node := range path[:len(path)-1] {
		switch node := node.(type) {
		case *List:
			for i, last := 0, node.Len(); i < last; i++ {
				if node.Offsets[i+1] == node.Offsets[i] {
					n++
				}
			}
		case *LargeList:
			for i, last := 0, node.Len(); i < last; i++ {
				if node.Offsets[i+1] == node.Offsets[i] {
					n++
				}
			}
		case *FixedSizeList:
			if node.Width == 0 {
				n += node.Length
			}
		}
	}
	return n
}

// MaxDefinitionLevel returns the largest definition level an entry of the
// path can take: lists contribute 1 plus 1 if optional, structs and
// primitives contribute 1 if optional.
func MaxDefinitionLevel(path []Node) uint32 {
	max := uint32(0)
	for _, node := range path {
		switch node := node.(type) {
		case repeated:
			max++
			if node.optional() {
				max++
			}
		case *Struct:
			if node.Optional {
				max++
			}
		case *Primitive:
			if node.Optional {
				max++
			}
		}
	}
	return max
}

// MaxRepetitionLevel returns the largest repetition level an entry of the
// path can take: the number of repeated nodes on the path.
func MaxRepetitionLevel(path []Node) uint32 {
	max := uint32(0)
	for _, node := range path {
		if _, ok := node.(repeated); ok {
			max++
		}
	}
	return max
}

// validatePath checks the structural invariants of the path: offsets start
// at zero and never decrease, validity bitmaps match their node's length,
// and every node's length matches the span implied by its parent.
func validatePath(path []Node) error {
	span := path[0].Len()
	for i, node := range path {
		if node.Len() != span {
			return fmt.Errorf("dremel: node %d: %w: length is %d, parent spans %d", i, ErrMalformedPath, node.Len(), span)
		}
		switch node := node.(type) {
		case *List:
			if len(node.Offsets) == 0 {
				return fmt.Errorf("dremel: node %d: %w: missing offsets", i, ErrMalformedOffsets)
			}
			if node.Offsets[0] != 0 {
				return fmt.Errorf("dremel: node %d: %w: first offset is %d, not 0", i, ErrMalformedOffsets, node.Offsets[0])
			}
			for j := 1; j < len(node.Offsets); j++ {
				if node.Offsets[j] < node.Offsets[j-1] {
					return fmt.Errorf("dremel: node %d: %w: offset %d decreases from %d to %d", i, ErrMalformedOffsets, j, node.Offsets[j-1], node.Offsets[j])
				}
			}
			span = int(node.Offsets[len(node.Offsets)-1])
		case *LargeList:
			if len(node.Offsets) == 0 {
				return fmt.Errorf("dremel: node %d: %w: missing offsets", i, ErrMalformedOffsets)
			}
			if node.Offsets[0] != 0 {
				return fmt.Errorf("dremel: node %d: %w: first offset is %d, not 0", i, ErrMalformedOffsets, node.Offsets[0])
			}
			for j := 1; j < len(node.Offsets); j++ {
				if node.Offsets[j] < node.Offsets[j-1] {
					return fmt.Errorf("dremel: node %d: %w: offset %d decreases from %d to %d", i, ErrMalformedOffsets, j, node.Offsets[j-1], node.Offsets[j])
				}
			}
			span = int(node.Offsets[len(node.Offsets)-1])
		case *FixedSizeList:
			if node.Width < 0 {
				return fmt.Errorf("dremel: node %d: %w: negative width %d", i, ErrMalformedPath, node.Width)
			}
			span = node.Width * node.Length
		}
		if v := nodeValidity(node); v != nil && v.Len() != node.Len() {
			return fmt.Errorf("dremel: node %d: %w: bitmap has %d bits, node has %d slots", i, ErrMalformedValidity, v.Len(), node.Len())
		}
	}
	return nil
}

func nodeValidity(node Node) *Bitmap {
	switch node := node.(type) {
	case repeated:
		return node.validity()
	case *Struct:
		return node.Validity
	case *Primitive:
		return node.Validity
	}
	return nil
}
