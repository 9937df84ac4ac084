package colexec

import (
	"encoding/binary"
	"sort"

	"github.com/hitsdb/hitsdb/core/internal/colstore"
	"github.com/hitsdb/hitsdb/core/internal/qcode"
)

// Row is one output row; cells are int64, float64, string or nil.
type Row []interface{}

// Result is the raw output of a query run.
type Result struct {
	Columns []string
	Rows    []Row
}

// Run executes a compiled query over a view of the store.
func Run(qc *qcode.QCode, view colstore.View) (*Result, error) {
	res := &Result{Columns: make([]string, len(qc.Selects))}
	for i := range qc.Selects {
		res.Columns[i] = qc.Selects[i].Name
	}

	sel := applyFilters(view, qc.Filters)

	switch {
	case len(qc.GroupBy) != 0:
		res.Rows = runGrouped(qc, view, sel)
	case qc.HasAgg():
		res.Rows = []Row{runScalar(qc, view, sel)}
	default:
		res.Rows = runProject(qc, view, sel)
	}

	orderRows(res.Rows, qc.OrderBy)

	if qc.Paging.Limited && len(res.Rows) > qc.Paging.Limit {
		res.Rows = res.Rows[:qc.Paging.Limit]
	}
	return res, nil
}

// runScalar aggregates the whole selection into exactly one row; an
// empty table still yields a row (zero counts, null sums).
func runScalar(qc *qcode.QCode, view colstore.View, sel []int) Row {
	row := make(Row, len(qc.Selects))
	for i := range qc.Selects {
		s := &qc.Selects[i]
		agg := newAgg(s)
		agg.Compute(aggVec(s, view), sel)
		row[i] = agg.Result()
	}
	return row
}

// runProject emits plain columns with the selection applied.
func runProject(qc *qcode.QCode, view colstore.View, sel []int) []Row {
	n := view.Rows
	if sel != nil {
		n = len(sel)
	}

	rows := make([]Row, 0, n)
	for k := 0; k < n; k++ {
		i := k
		if sel != nil {
			i = sel[k]
		}
		row := make(Row, len(qc.Selects))
		for j := range qc.Selects {
			row[j] = view.Cols[qc.Selects[j].Col.ID].Value(i)
		}
		rows = append(rows, row)
	}
	return rows
}

// runGrouped hash-aggregates on the GROUP BY columns. Groups are
// emitted in first-seen order, which keeps ordering ties stable for a
// given load order.
func runGrouped(qc *qcode.QCode, view colstore.View, sel []int) []Row {
	type group struct {
		first int   // first row seen
		rows  []int // member rows
	}

	var (
		groups []*group
		gmap   = map[string]*group{}
		buf    []byte
		cell   []byte
	)

	visit := func(i int) {
		buf = buf[:0]
		for _, pos := range qc.GroupBy {
			v := view.Cols[qc.Selects[pos].Col.ID]
			if v.Null(i) {
				buf = append(buf, 0x00)
				continue
			}
			// cells are length-prefixed so their bytes can never
			// bleed across column boundaries
			cell = distinctKey(cell[:0], v, i)
			var n [binary.MaxVarintLen64]byte
			buf = append(buf, 0x01)
			buf = append(buf, n[:binary.PutUvarint(n[:], uint64(len(cell)))]...)
			buf = append(buf, cell...)
		}
		g, ok := gmap[string(buf)]
		if !ok {
			g = &group{first: i}
			gmap[string(buf)] = g
			groups = append(groups, g)
		}
		g.rows = append(g.rows, i)
	}

	if sel == nil {
		for i := 0; i < view.Rows; i++ {
			visit(i)
		}
	} else {
		for _, i := range sel {
			visit(i)
		}
	}

	rows := make([]Row, 0, len(groups))
	for _, g := range groups {
		row := make(Row, len(qc.Selects))
		for j := range qc.Selects {
			s := &qc.Selects[j]
			if s.Agg == qcode.AggNone {
				row[j] = view.Cols[s.Col.ID].Value(g.first)
				continue
			}
			agg := newAgg(s)
			agg.Compute(aggVec(s, view), g.rows)
			row[j] = agg.Result()
		}
		rows = append(rows, row)
	}
	return rows
}

// aggVec picks the input vector for an aggregate; COUNT(*) has no
// column and counts positions off any vector.
func aggVec(s *qcode.Select, view colstore.View) *colstore.Vector {
	if s.Col != nil {
		return view.Cols[s.Col.ID]
	}
	return view.Cols[0]
}

// orderRows sorts stably by the ORDER BY terms; nulls sort last in
// either direction.
func orderRows(rows []Row, orderBy []qcode.OrderBy) {
	if len(orderBy) == 0 {
		return
	}

	sort.SliceStable(rows, func(a, b int) bool {
		for _, ob := range orderBy {
			va, vb := rows[a][ob.Pos], rows[b][ob.Pos]
			c := cmpValue(va, vb)
			if c == 0 {
				continue
			}
			// Nulls stay last regardless of direction.
			if va == nil {
				return false
			}
			if vb == nil {
				return true
			}
			if ob.Descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func cmpValue(a, b interface{}) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return 1
	}
	if b == nil {
		return -1
	}

	switch x := a.(type) {
	case int64:
		return cmpInt(x, b.(int64))
	case float64:
		return cmpFloat(x, b.(float64))
	case string:
		return cmpStr(x, b.(string))
	}
	return 0
}
