// Package colexec executes a compiled query over a columnar view:
// filtering, scalar and grouped aggregation, projection, ordering and
// row limits.
package colexec

import (
	"strconv"

	"github.com/axiomhq/hyperloglog"

	"github.com/hitsdb/hitsdb/core/internal/colstore"
	"github.com/hitsdb/hitsdb/core/internal/qcode"
	"github.com/hitsdb/hitsdb/core/internal/sdata"
)

// AggregateFunc consumes a column vector, optionally through a
// selection vector, and yields the final value. A nil selection means
// every row.
type AggregateFunc interface {
	Compute(v *colstore.Vector, sel []int)
	Result() interface{}
}

func newAgg(s *qcode.Select) AggregateFunc {
	switch s.Agg {
	case qcode.AggCount:
		return &countAgg{star: s.Star}
	case qcode.AggCountDistinct:
		return &distinctAgg{seen: make(map[string]struct{})}
	case qcode.AggApproxCountDistinct:
		return &approxDistinctAgg{sk: hyperloglog.New14()}
	case qcode.AggSum:
		return &sumAgg{typ: s.Col.Type}
	case qcode.AggMin:
		return &minMaxAgg{typ: s.Col.Type, min: true}
	case qcode.AggMax:
		return &minMaxAgg{typ: s.Col.Type}
	case qcode.AggAvg:
		return &avgAgg{}
	}
	return nil
}

// forEach visits every selected row index.
func forEach(v *colstore.Vector, sel []int, fn func(i int)) {
	if sel == nil {
		n := v.Len()
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	for _, i := range sel {
		fn(i)
	}
}

// countAgg implements COUNT(col) and COUNT(*). The star form counts
// rows, the column form skips nulls.
type countAgg struct {
	n    int64
	star bool
}

func (a *countAgg) Compute(v *colstore.Vector, sel []int) {
	if a.star {
		if sel == nil {
			a.n += int64(v.Len())
		} else {
			a.n += int64(len(sel))
		}
		return
	}
	if !v.MaybeHasNulls() {
		if sel == nil {
			a.n += int64(v.Len())
		} else {
			a.n += int64(len(sel))
		}
		return
	}
	forEach(v, sel, func(i int) {
		if !v.Null(i) {
			a.n++
		}
	})
}

func (a *countAgg) Result() interface{} { return a.n }

// distinctKey encodes a cell for use as a distinct-set or group key.
func distinctKey(buf []byte, v *colstore.Vector, i int) []byte {
	switch v.Type {
	case sdata.ColTypeInt:
		return strconv.AppendInt(buf, v.Ints[i], 10)
	case sdata.ColTypeFloat:
		return strconv.AppendFloat(buf, v.Floats[i], 'g', -1, 64)
	default:
		return append(buf, v.Strs[i]...)
	}
}

// distinctAgg implements exact COUNT(DISTINCT col): unique non-null
// values only.
type distinctAgg struct {
	seen map[string]struct{}
	buf  []byte
}

func (a *distinctAgg) Compute(v *colstore.Vector, sel []int) {
	forEach(v, sel, func(i int) {
		if v.Null(i) {
			return
		}
		a.buf = distinctKey(a.buf[:0], v, i)
		if _, ok := a.seen[string(a.buf)]; !ok {
			a.seen[string(a.buf)] = struct{}{}
		}
	})
}

func (a *distinctAgg) Result() interface{} { return int64(len(a.seen)) }

// approxDistinctAgg implements APPROX_COUNT_DISTINCT over a
// hyperloglog sketch.
type approxDistinctAgg struct {
	sk  *hyperloglog.Sketch
	buf []byte
}

func (a *approxDistinctAgg) Compute(v *colstore.Vector, sel []int) {
	forEach(v, sel, func(i int) {
		if v.Null(i) {
			return
		}
		a.buf = distinctKey(a.buf[:0], v, i)
		a.sk.Insert(a.buf)
	})
}

func (a *approxDistinctAgg) Result() interface{} { return int64(a.sk.Estimate()) }

// sumAgg sums ints with wrapping adds and floats in float64. An
// all-null input sums to null.
type sumAgg struct {
	typ  sdata.ColType
	i    int64
	f    float64
	seen bool
}

func (a *sumAgg) Compute(v *colstore.Vector, sel []int) {
	forEach(v, sel, func(i int) {
		if v.Null(i) {
			return
		}
		a.seen = true
		if a.typ == sdata.ColTypeInt {
			a.i += v.Ints[i]
		} else {
			a.f += v.Floats[i]
		}
	})
}

func (a *sumAgg) Result() interface{} {
	if !a.seen {
		return nil
	}
	if a.typ == sdata.ColTypeInt {
		return a.i
	}
	return a.f
}

// minMaxAgg implements MIN and MAX over ints, floats and strings.
type minMaxAgg struct {
	typ  sdata.ColType
	min  bool
	i    int64
	f    float64
	s    string
	seen bool
}

func (a *minMaxAgg) Compute(v *colstore.Vector, sel []int) {
	forEach(v, sel, func(i int) {
		if v.Null(i) {
			return
		}
		if !a.seen {
			a.seen = true
			switch a.typ {
			case sdata.ColTypeInt:
				a.i = v.Ints[i]
			case sdata.ColTypeFloat:
				a.f = v.Floats[i]
			default:
				a.s = v.Strs[i]
			}
			return
		}
		switch a.typ {
		case sdata.ColTypeInt:
			if x := v.Ints[i]; a.min == (x < a.i) {
				a.i = x
			}
		case sdata.ColTypeFloat:
			if x := v.Floats[i]; a.min == (x < a.f) {
				a.f = x
			}
		default:
			if x := v.Strs[i]; a.min == (x < a.s) {
				a.s = x
			}
		}
	})
}

func (a *minMaxAgg) Result() interface{} {
	if !a.seen {
		return nil
	}
	switch a.typ {
	case sdata.ColTypeInt:
		return a.i
	case sdata.ColTypeFloat:
		return a.f
	default:
		return a.s
	}
}

// avgAgg evaluates in float64 regardless of input type.
type avgAgg struct {
	sum float64
	n   int64
}

func (a *avgAgg) Compute(v *colstore.Vector, sel []int) {
	forEach(v, sel, func(i int) {
		if v.Null(i) {
			return
		}
		a.n++
		if v.Type == sdata.ColTypeInt {
			a.sum += float64(v.Ints[i])
		} else {
			a.sum += v.Floats[i]
		}
	})
}

func (a *avgAgg) Result() interface{} {
	if a.n == 0 {
		return nil
	}
	return a.sum / float64(a.n)
}
