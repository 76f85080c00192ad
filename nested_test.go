package dremel

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowshape/dremel/encoding/rle"
)

func TestNumValues(t *testing.T) {
	tests := []struct {
		scenario string
		path     []Node
		want     int
	}{
		{
			scenario: "flat",
			path:     []Node{&Primitive{Length: 7}},
			want:     7,
		},
		{
			scenario: "list without empty runs",
			path: []Node{
				&List{Offsets: []int32{0, 2, 4}},
				&Primitive{Length: 4},
			},
			want: 4,
		},
		{
			scenario: "list with empty runs",
			path: []Node{
				&List{Offsets: []int32{0, 2, 2, 5, 8, 8, 11, 11, 12}},
				&Primitive{Length: 12},
			},
			want: 15,
		},
		{
			scenario: "structs do not add placeholders",
			path: []Node{
				&Struct{Optional: true, Length: 3},
				&Primitive{Length: 3},
			},
			want: 3,
		},
		{
			scenario: "nested empty runs accumulate",
			path: []Node{
				&List{Offsets: []int32{0, 2, 2}},
				&List{Offsets: []int32{0, 0, 3}},
				&Primitive{Length: 3},
			},
			want: 5,
		},
		{
			scenario: "fixed size list of width zero",
			path: []Node{
				&FixedSizeList{Width: 0, Length: 4},
				&Primitive{Length: 0},
			},
			want: 4,
		},
		{
			scenario: "empty top level",
			path: []Node{
				&List{Offsets: []int32{0}},
				&Primitive{Length: 0},
			},
			want: 0,
		},
	}

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			assert.Equal(t, test.want, NumValues(test.path))
		})
	}
}

func TestMaxLevels(t *testing.T) {
	tests := []struct {
		scenario string
		path     []Node
		maxDef   uint32
		maxRep   uint32
	}{
		{
			scenario: "flat required",
			path:     []Node{&Primitive{Length: 1}},
			maxDef:   0,
			maxRep:   0,
		},
		{
			scenario: "flat optional",
			path:     []Node{&Primitive{Optional: true, Length: 1}},
			maxDef:   1,
			maxRep:   0,
		},
		{
			scenario: "required list",
			path: []Node{
				&List{Offsets: []int32{0, 1}},
				&Primitive{Length: 1},
			},
			maxDef: 1,
			maxRep: 1,
		},
		{
			scenario: "optional list of optional values",
			path: []Node{
				&List{Offsets: []int32{0, 1}, Optional: true},
				&Primitive{Optional: true, Length: 1},
			},
			maxDef: 3,
			maxRep: 1,
		},
		{
			scenario: "struct adds definition only",
			path: []Node{
				&Struct{Optional: true, Length: 1},
				&List{Offsets: []int32{0, 2}, Optional: true},
				&Primitive{Optional: true, Length: 2},
			},
			maxDef: 4,
			maxRep: 1,
		},
		{
			scenario: "fixed size list counts as repeated",
			path: []Node{
				&FixedSizeList{Optional: true, Width: 2, Length: 1},
				&LargeList{Offsets: []int64{0, 1, 2}},
				&Primitive{Length: 2},
			},
			maxDef: 3,
			maxRep: 2,
		},
	}

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			assert.Equal(t, test.maxDef, MaxDefinitionLevel(test.path))
			assert.Equal(t, test.maxRep, MaxRepetitionLevel(test.path))
		})
	}
}

func TestEncodeLevels(t *testing.T) {
	path := []Node{
		&List{
			Offsets:  []int32{0, 2, 2, 5, 8, 8, 11, 11, 12},
			Validity: bm(true, false, true, true, true, true, false, true),
			Optional: true,
		},
		&Primitive{
			Validity: bm(true, true, true, false, true, true, true, true, true, true, true, true),
			Optional: true,
			Length:   12,
		},
	}
	def, rep, err := Levels(path)
	require.NoError(t, err)

	buf := new(bytes.Buffer)
	require.NoError(t, EncodeLevels(buf, def, MaxDefinitionLevel(path)))
	decoded, err := rle.DecodeUint32(nil, buf.Bytes(), 2)
	require.NoError(t, err)
	assert.Equal(t, def, decoded[:len(def)])

	buf.Reset()
	require.NoError(t, EncodeLevels(buf, rep, MaxRepetitionLevel(path)))
	decoded, err = rle.DecodeUint32(nil, buf.Bytes(), 1)
	require.NoError(t, err)
	assert.Equal(t, rep, decoded[:len(rep)])
}

func TestEncodeLevelsOutOfRange(t *testing.T) {
	err := EncodeLevels(new(bytes.Buffer), []uint32{0, 1, 2}, 1)
	require.Error(t, err)
}
