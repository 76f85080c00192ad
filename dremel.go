// Package dremel computes definition and repetition levels for nested
// columnar data, following the record shredding model of the Dremel paper
// as used by the Parquet file format.
//
// A column is described by a path of Node values from the root of the
// schema down to one leaf Primitive. Levels returns the definition and
// repetition level of every leaf slot of the path; DefLevels and RepLevels
// stream the same sequences one value at a time. ToNested deconstructs an
// Arrow array into such paths, and EncodeLevels writes a level sequence in
// the hybrid RLE/bit-packed encoding.
//
// The definition level of an entry counts how many optional or repeated
// ancestors of the leaf slot are present; the repetition level tells at
// which repeated ancestor the entry starts a new value, with 0 marking the
// first entry of a row.
package dremel
