package dremel

import (
	"testing"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToNestedPrimitive(t *testing.T) {
	b := array.NewInt32Builder(memory.DefaultAllocator)
	defer b.Release()
	b.Append(1)
	b.AppendNull()
	b.Append(3)
	arr := b.NewArray()
	defer arr.Release()

	paths, err := ToNested(arr, true)
	require.NoError(t, err)
	require.Len(t, paths, 1)

	def, rep, err := Levels(paths[0])
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 0, 1}, def)
	assert.Equal(t, []uint32{0, 0, 0}, rep)

	leaves := ToLeaves(arr)
	require.Len(t, leaves, 1)
	assert.Same(t, arr, leaves[0])
	releaseAll(leaves)
}

func TestToNestedList(t *testing.T) {
	// [[1, 2], None, [], [3]]
	b := array.NewListBuilder(memory.DefaultAllocator, arrow.PrimitiveTypes.Int32)
	defer b.Release()
	vb := b.ValueBuilder().(*array.Int32Builder)
	b.Append(true)
	vb.Append(1)
	vb.Append(2)
	b.AppendNull()
	b.Append(true)
	b.Append(true)
	vb.Append(3)
	arr := b.NewArray()
	defer arr.Release()

	paths, err := ToNested(arr, true)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	require.Len(t, paths[0], 2)

	list := paths[0][0].(*List)
	assert.Equal(t, []int32{0, 2, 2, 2, 3}, list.Offsets)
	assert.True(t, list.Optional)
	require.NotNil(t, list.Validity)
	assert.False(t, list.Validity.Get(1))

	def, rep, err := Levels(paths[0])
	require.NoError(t, err)
	assert.Equal(t, []uint32{3, 3, 0, 1, 3}, def)
	assert.Equal(t, []uint32{0, 1, 0, 0, 0}, rep)

	leaves := ToLeaves(arr)
	require.Len(t, leaves, 1)
	assert.Equal(t, []int32{1, 2, 3}, leaves[0].(*array.Int32).Int32Values())
	releaseAll(leaves)
}

func TestToNestedSlicedList(t *testing.T) {
	// [[1], [2, 3], [], [4, 5]] sliced to rows [1, 3) = [[2, 3], []]
	b := array.NewListBuilder(memory.DefaultAllocator, arrow.PrimitiveTypes.Int32)
	defer b.Release()
	vb := b.ValueBuilder().(*array.Int32Builder)
	b.Append(true)
	vb.Append(1)
	b.Append(true)
	vb.Append(2)
	vb.Append(3)
	b.Append(true)
	b.Append(true)
	vb.Append(4)
	vb.Append(5)
	arr := b.NewArray()
	defer arr.Release()

	sliced := array.NewSlice(arr, 1, 3)
	defer sliced.Release()

	paths, err := ToNested(sliced, true)
	require.NoError(t, err)
	require.Len(t, paths, 1)

	list := paths[0][0].(*List)
	assert.Equal(t, []int32{0, 2, 2}, list.Offsets)
	assert.Equal(t, 2, paths[0][1].(*Primitive).Length)

	def, rep, err := Levels(paths[0])
	require.NoError(t, err)
	assert.Equal(t, []uint32{3, 3, 1}, def)
	assert.Equal(t, []uint32{0, 1, 0}, rep)

	leaves := ToLeaves(sliced)
	require.Len(t, leaves, 1)
	assert.Equal(t, []int32{2, 3}, leaves[0].(*array.Int32).Int32Values())
	releaseAll(leaves)
}

func TestToNestedStruct(t *testing.T) {
	// [{a: 1, b: [5, 6]}, {a: None, b: None}, None]
	dt := arrow.StructOf(
		arrow.Field{Name: "a", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
		arrow.Field{Name: "b", Type: arrow.ListOf(arrow.PrimitiveTypes.Int32), Nullable: true},
	)
	b := array.NewStructBuilder(memory.DefaultAllocator, dt)
	defer b.Release()
	ab := b.FieldBuilder(0).(*array.Int32Builder)
	bb := b.FieldBuilder(1).(*array.ListBuilder)
	bvb := bb.ValueBuilder().(*array.Int32Builder)

	b.Append(true)
	ab.Append(1)
	bb.Append(true)
	bvb.Append(5)
	bvb.Append(6)

	b.Append(true)
	ab.AppendNull()
	bb.AppendNull()

	b.Append(false)
	ab.AppendNull()
	bb.AppendNull()

	arr := b.NewArray()
	defer arr.Release()

	paths, err := ToNested(arr, true)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	require.Len(t, paths[0], 2)
	require.Len(t, paths[1], 3)

	def, rep, err := Levels(paths[0])
	require.NoError(t, err)
	assert.Equal(t, []uint32{2, 1, 0}, def)
	assert.Equal(t, []uint32{0, 0, 0}, rep)

	def, rep, err = Levels(paths[1])
	require.NoError(t, err)
	assert.Equal(t, []uint32{4, 4, 1, 0}, def)
	assert.Equal(t, []uint32{0, 1, 0, 0}, rep)

	leaves := ToLeaves(arr)
	require.Len(t, leaves, 2)
	assert.Equal(t, []int32{5, 6}, leaves[1].(*array.Int32).Int32Values())
	releaseAll(leaves)
}

func TestToNestedFixedSizeList(t *testing.T) {
	// [[1, 2], None, [3, None]]
	b := array.NewFixedSizeListBuilder(memory.DefaultAllocator, 2, arrow.PrimitiveTypes.Int32)
	defer b.Release()
	vb := b.ValueBuilder().(*array.Int32Builder)
	b.Append(true)
	vb.Append(1)
	vb.Append(2)
	b.AppendNull()
	b.Append(true)
	vb.Append(3)
	vb.AppendNull()
	arr := b.NewArray()
	defer arr.Release()

	paths, err := ToNested(arr, true)
	require.NoError(t, err)
	require.Len(t, paths, 1)

	fsl := paths[0][0].(*FixedSizeList)
	assert.Equal(t, 2, fsl.Width)
	assert.Equal(t, 3, fsl.Length)

	def, rep, err := Levels(paths[0])
	require.NoError(t, err)
	assert.Equal(t, []uint32{3, 3, 0, 0, 3, 2}, def)
	assert.Equal(t, []uint32{0, 1, 0, 1, 0, 1}, rep)
}

func TestToNestedMap(t *testing.T) {
	// [{"a": 1, "b": 2}, None, {}]
	b := array.NewMapBuilder(memory.DefaultAllocator, arrow.BinaryTypes.String, arrow.PrimitiveTypes.Int32, false)
	defer b.Release()
	kb := b.KeyBuilder().(*array.StringBuilder)
	ib := b.ItemBuilder().(*array.Int32Builder)

	b.Append(true)
	kb.Append("a")
	ib.Append(1)
	kb.Append("b")
	ib.Append(2)
	b.AppendNull()
	b.Append(true)

	arr := b.NewArray()
	defer arr.Release()

	paths, err := ToNested(arr, true)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	require.Len(t, paths[0], 3)

	_, ok := paths[0][0].(*List)
	require.True(t, ok)
	_, ok = paths[0][1].(*Struct)
	require.True(t, ok)

	// Key column: entries are never null, keys are required.
	def, rep, err := Levels(paths[0])
	require.NoError(t, err)
	assert.Equal(t, []uint32{2, 2, 0, 1}, def)
	assert.Equal(t, []uint32{0, 1, 0, 0}, rep)

	// Item column: items are optional.
	def, rep, err = Levels(paths[1])
	require.NoError(t, err)
	assert.Equal(t, []uint32{3, 3, 0, 1}, def)
	assert.Equal(t, []uint32{0, 1, 0, 0}, rep)

	leaves := ToLeaves(arr)
	require.Len(t, leaves, 2)
	assert.Equal(t, []int32{1, 2}, leaves[1].(*array.Int32).Int32Values())
	releaseAll(leaves)
}

func TestToNestedLargeList(t *testing.T) {
	// [[1], None]
	b := array.NewLargeListBuilder(memory.DefaultAllocator, arrow.PrimitiveTypes.Int32)
	defer b.Release()
	vb := b.ValueBuilder().(*array.Int32Builder)
	b.Append(true)
	vb.Append(1)
	b.AppendNull()
	arr := b.NewArray()
	defer arr.Release()

	paths, err := ToNested(arr, true)
	require.NoError(t, err)
	require.Len(t, paths, 1)

	list := paths[0][0].(*LargeList)
	assert.Equal(t, []int64{0, 1, 1}, list.Offsets)

	def, rep, err := Levels(paths[0])
	require.NoError(t, err)
	assert.Equal(t, []uint32{3, 0}, def)
	assert.Equal(t, []uint32{0, 0}, rep)
}

func TestToLeavesOwnership(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	// [[1, 2], [3]] sliced to [[3]]
	b := array.NewListBuilder(mem, arrow.PrimitiveTypes.Int32)
	vb := b.ValueBuilder().(*array.Int32Builder)
	b.Append(true)
	vb.Append(1)
	vb.Append(2)
	b.Append(true)
	vb.Append(3)
	arr := b.NewArray()
	b.Release()

	sliced := array.NewSlice(arr, 1, 2)
	arr.Release()

	leaves := ToLeaves(sliced)
	sliced.Release()

	// Every leaf carries its own reference: it stays readable after the
	// deconstructed array is released and is released uniformly.
	require.Len(t, leaves, 1)
	assert.Equal(t, []int32{3}, leaves[0].(*array.Int32).Int32Values())
	releaseAll(leaves)
}

func releaseAll(leaves []arrow.Array) {
	for _, leaf := range leaves {
		leaf.Release()
	}
}
