package colexec

import (
	"github.com/hitsdb/hitsdb/core/internal/colstore"
	"github.com/hitsdb/hitsdb/core/internal/qcode"
	"github.com/hitsdb/hitsdb/core/internal/sdata"
)

// applyFilters evaluates the WHERE conjuncts to a selection vector.
// A nil result with ok=true means all rows pass. Null cells never
// match any comparison.
func applyFilters(view colstore.View, filters []qcode.Filter) []int {
	if len(filters) == 0 {
		return nil
	}

	sel := make([]int, 0, view.Rows)
	for i := 0; i < view.Rows; i++ {
		sel = append(sel, i)
	}

	for f := range filters {
		sel = applyFilter(view, &filters[f], sel)
		if len(sel) == 0 {
			break
		}
	}
	return sel
}

func applyFilter(view colstore.View, f *qcode.Filter, sel []int) []int {
	v := view.Cols[f.Col.ID]
	out := sel[:0]

	for _, i := range sel {
		if v.Null(i) {
			continue
		}
		var c int
		switch v.Type {
		case sdata.ColTypeInt:
			c = cmpInt(v.Ints[i], f.IntVal)
		case sdata.ColTypeFloat:
			c = cmpFloat(v.Floats[i], f.FloatVal)
		default:
			c = cmpStr(v.Strs[i], f.StrVal)
		}
		if opMatch(f.Op, c) {
			out = append(out, i)
		}
	}
	return out
}

func opMatch(op qcode.CompOp, c int) bool {
	switch op {
	case qcode.OpEquals:
		return c == 0
	case qcode.OpNotEquals:
		return c != 0
	case qcode.OpLesserThan:
		return c < 0
	case qcode.OpLesserOrEquals:
		return c <= 0
	case qcode.OpGreaterThan:
		return c > 0
	case qcode.OpGreaterOrEquals:
		return c >= 0
	}
	return false
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpStr(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
