package dremel

import (
	"fmt"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
)

// ToNested deconstructs an Arrow array into one Node path per leaf column,
// in depth-first field order. nullable says whether the array itself is an
// optional field of its parent schema.
//
// Sliced arrays are rebased so the returned paths are normalized: offsets
// start at zero and every child window spans exactly its parent's range.
// The paths borrow the array's buffers and stay valid for as long as the
// array is retained.
func ToNested(arr arrow.Array, nullable bool) ([][]Node, error) {
	var paths [][]Node
	if err := toNested(arr, nullable, nil, &paths); err != nil {
		return nil, err
	}
	return paths, nil
}

func toNested(arr arrow.Array, nullable bool, parents []Node, paths *[][]Node) error {
	switch a := arr.(type) {
	case *array.Struct:
		dt := a.DataType().(*arrow.StructType)
		parents = append(parents, &Struct{
			Validity: arrayValidity(a),
			Optional: nullable,
			Length:   a.Len(),
		})
		for i := 0; i < dt.NumFields(); i++ {
			branch := make([]Node, len(parents))
			copy(branch, parents)
			if err := toNested(a.Field(i), dt.Field(i).Nullable, branch, paths); err != nil {
				return err
			}
		}
		return nil

	case *array.Map:
		// A map column is a list of key/value entry structs; the entries
		// themselves are never null.
		node, values := listWindow32(a.List)
		node.Optional = nullable
		err := toNested(values, false, append(parents, node), paths)
		values.Release()
		return err

	case *array.List:
		elem := a.DataType().(*arrow.ListType).ElemField()
		node, values := listWindow32(a)
		node.Optional = nullable
		err := toNested(values, elem.Nullable, append(parents, node), paths)
		values.Release()
		return err

	case *array.LargeList:
		elem := a.DataType().(*arrow.LargeListType).ElemField()
		node, values := listWindow64(a)
		node.Optional = nullable
		err := toNested(values, elem.Nullable, append(parents, node), paths)
		values.Release()
		return err

	case *array.FixedSizeList:
		dt := a.DataType().(*arrow.FixedSizeListType)
		node, values := fixedSizeListWindow(a)
		node.Optional = nullable
		err := toNested(values, dt.ElemField().Nullable, append(parents, node), paths)
		values.Release()
		return err

	case *array.ListView, *array.LargeListView:
		return fmt.Errorf("dremel: unsupported array type %s", arr.DataType())

	default:
		parents = append(parents, &Primitive{
			Validity: arrayValidity(arr),
			Optional: nullable,
			Length:   arr.Len(),
		})
		*paths = append(*paths, parents)
		return nil
	}
}

// ToLeaves returns the leaf value arrays of arr in the same depth-first
// order as the paths returned by ToNested, windowed identically, so values
// can be zipped with levels per leaf column. Every leaf holds its own
// reference and outlives arr; the caller releases each leaf when done.
func ToLeaves(arr arrow.Array) []arrow.Array {
	var leaves []arrow.Array
	toLeaves(arr, &leaves)
	return leaves
}

func toLeaves(arr arrow.Array, leaves *[]arrow.Array) {
	switch a := arr.(type) {
	case *array.Struct:
		for i := 0; i < a.NumField(); i++ {
			toLeaves(a.Field(i), leaves)
		}
	case *array.Map:
		_, values := listWindow32(a.List)
		toLeaves(values, leaves)
		values.Release()
	case *array.List:
		_, values := listWindow32(a)
		toLeaves(values, leaves)
		values.Release()
	case *array.LargeList:
		_, values := listWindow64(a)
		toLeaves(values, leaves)
		values.Release()
	case *array.FixedSizeList:
		_, values := fixedSizeListWindow(a)
		toLeaves(values, leaves)
		values.Release()
	default:
		arr.Retain()
		*leaves = append(*leaves, arr)
	}
}

// listWindow32 returns the List node and child window of a, rebased so the
// first offset is zero and the child spans exactly the slots the offsets
// address. The window holds its own reference; the caller releases it.
func listWindow32(a *array.List) (*List, arrow.Array) {
	values := a.ListValues()
	if a.Len() == 0 {
		return &List{Offsets: []int32{0}, Validity: arrayValidity(a)}, array.NewSlice(values, 0, 0)
	}
	off := a.Data().Offset()
	raw := a.Offsets()[off : off+a.Len()+1]
	first, last := int64(raw[0]), int64(raw[len(raw)-1])

	offsets := raw
	if first != 0 {
		offsets = make([]int32, len(raw))
		for i, o := range raw {
			offsets[i] = o - int32(first)
		}
	}
	return &List{Offsets: offsets, Validity: arrayValidity(a)}, array.NewSlice(values, first, last)
}

func listWindow64(a *array.LargeList) (*LargeList, arrow.Array) {
	values := a.ListValues()
	if a.Len() == 0 {
		return &LargeList{Offsets: []int64{0}, Validity: arrayValidity(a)}, array.NewSlice(values, 0, 0)
	}
	off := a.Data().Offset()
	raw := a.Offsets()[off : off+a.Len()+1]
	first, last := raw[0], raw[len(raw)-1]

	offsets := raw
	if first != 0 {
		offsets = make([]int64, len(raw))
		for i, o := range raw {
			offsets[i] = o - first
		}
	}
	return &LargeList{Offsets: offsets, Validity: arrayValidity(a)}, array.NewSlice(values, first, last)
}

func fixedSizeListWindow(a *array.FixedSizeList) (*FixedSizeList, arrow.Array) {
	width := int(a.DataType().(*arrow.FixedSizeListType).Len())
	values := a.ListValues()
	first := int64(a.Data().Offset() * width)
	last := first + int64(a.Len()*width)
	node := &FixedSizeList{
		Validity: arrayValidity(a),
		Width:    width,
		Length:   a.Len(),
	}
	return node, array.NewSlice(values, first, last)
}

func arrayValidity(arr arrow.Array) *Bitmap {
	if arr.NullN() == 0 {
		return nil
	}
	return NewBitmap(arr.NullBitmapBytes(), arr.Data().Offset(), arr.Len())
}
