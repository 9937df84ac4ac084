// Package colstore implements the in-memory columnar table the
// executor reads, plus its TSV, synthetic-data and Arrow IPC loaders.
package colstore

import (
	"github.com/hitsdb/hitsdb/core/internal/sdata"
)

// Vector is a typed column of values with an optional null bitmap.
// Only the slice matching the vector's type is populated.
type Vector struct {
	Type   sdata.ColType
	Ints   []int64
	Floats []float64
	Strs   []string

	nulls    []bool
	hasNulls bool
}

func NewVector(t sdata.ColType) *Vector {
	return &Vector{Type: t}
}

// MaybeHasNulls lets the executor skip null checks on columns that
// never saw a null.
func (v *Vector) MaybeHasNulls() bool {
	return v.hasNulls
}

func (v *Vector) Null(i int) bool {
	return v.hasNulls && v.nulls[i]
}

func (v *Vector) Len() int {
	switch v.Type {
	case sdata.ColTypeInt:
		return len(v.Ints)
	case sdata.ColTypeFloat:
		return len(v.Floats)
	default:
		return len(v.Strs)
	}
}

func (v *Vector) AppendInt(x int64) {
	v.Ints = append(v.Ints, x)
	v.nulls = append(v.nulls, false)
}

func (v *Vector) AppendFloat(x float64) {
	v.Floats = append(v.Floats, x)
	v.nulls = append(v.nulls, false)
}

func (v *Vector) AppendStr(x string) {
	v.Strs = append(v.Strs, x)
	v.nulls = append(v.nulls, false)
}

// AppendNull appends the type's zero value marked as null.
func (v *Vector) AppendNull() {
	switch v.Type {
	case sdata.ColTypeInt:
		v.Ints = append(v.Ints, 0)
	case sdata.ColTypeFloat:
		v.Floats = append(v.Floats, 0)
	default:
		v.Strs = append(v.Strs, "")
	}
	v.nulls = append(v.nulls, true)
	v.hasNulls = true
}

// extend appends every value of o, nulls included.
func (v *Vector) extend(o *Vector) {
	v.Ints = append(v.Ints, o.Ints...)
	v.Floats = append(v.Floats, o.Floats...)
	v.Strs = append(v.Strs, o.Strs...)
	v.nulls = append(v.nulls, o.nulls...)
	v.hasNulls = v.hasNulls || o.hasNulls
}

// Value returns the cell at i as a generic value, nil for null.
func (v *Vector) Value(i int) interface{} {
	if v.Null(i) {
		return nil
	}
	switch v.Type {
	case sdata.ColTypeInt:
		return v.Ints[i]
	case sdata.ColTypeFloat:
		return v.Floats[i]
	default:
		return v.Strs[i]
	}
}
