// Package qcode compiles a parsed statement against the schema into
// an executable query plan.
package qcode

import (
	"fmt"
	"strconv"

	"github.com/hitsdb/hitsdb/core/internal/sdata"
	"github.com/hitsdb/hitsdb/core/internal/sqlang"
)

// Agg identifies an aggregate function.
type Agg int8

const (
	AggNone Agg = iota
	AggCount
	AggCountDistinct
	AggApproxCountDistinct
	AggSum
	AggMin
	AggMax
	AggAvg
)

func (a Agg) String() string {
	switch a {
	case AggCount:
		return "count"
	case AggCountDistinct:
		return "count distinct"
	case AggApproxCountDistinct:
		return "approx_count_distinct"
	case AggSum:
		return "sum"
	case AggMin:
		return "min"
	case AggMax:
		return "max"
	case AggAvg:
		return "avg"
	}
	return "none"
}

// CompOp is a comparison operator in a filter.
type CompOp int8

const (
	OpEquals CompOp = iota + 1
	OpNotEquals
	OpLesserThan
	OpLesserOrEquals
	OpGreaterThan
	OpGreaterOrEquals
)

// Select is one output column of the query.
type Select struct {
	Name string // output header
	Col  *sdata.DBColumn
	Agg  Agg
	Star bool // count(*)
	Type sdata.ColType
}

// Filter is one WHERE conjunct compiled against the schema.
type Filter struct {
	Col      *sdata.DBColumn
	Op       CompOp
	StrVal   string
	IntVal   int64
	FloatVal float64
}

// OrderBy references an output column position with a direction.
type OrderBy struct {
	Pos        int
	Descending bool
}

// Paging holds the compiled row limit. Limited distinguishes an
// explicit LIMIT 0 from no limit at all.
type Paging struct {
	Limit   int
	Limited bool
}

// QCode is the compiled query.
type QCode struct {
	Table   *sdata.DBTable
	Selects []Select
	Filters []Filter
	GroupBy []int // select-list positions
	OrderBy []OrderBy
	Paging  Paging
}

// HasAgg reports whether any select item is an aggregate.
func (qc *QCode) HasAgg() bool {
	for i := range qc.Selects {
		if qc.Selects[i].Agg != AggNone {
			return true
		}
	}
	return false
}

type Config struct {
	// DefaultLimit is applied when a query carries no LIMIT. Zero
	// leaves such queries unlimited.
	DefaultLimit int

	// DisableAgg rejects queries using aggregate functions.
	DisableAgg bool
}

type Compiler struct {
	di *sdata.DBInfo
	c  Config
}

func NewCompiler(di *sdata.DBInfo, c Config) *Compiler {
	return &Compiler{di: di, c: c}
}

func (co *Compiler) Compile(stmt sqlang.Stmt) (*QCode, error) {
	qc := &QCode{}

	t, err := co.di.GetTable(stmt.Table)
	if err != nil {
		return nil, err
	}
	qc.Table = t

	if err := co.compileSelects(qc, stmt); err != nil {
		return nil, err
	}
	if err := co.compileFilters(qc, stmt); err != nil {
		return nil, err
	}
	if err := co.compileGroupBy(qc, stmt); err != nil {
		return nil, err
	}
	if err := co.compileOrderBy(qc, stmt); err != nil {
		return nil, err
	}

	switch {
	case stmt.Limit >= 0:
		qc.Paging = Paging{Limit: stmt.Limit, Limited: true}
	case co.c.DefaultLimit > 0:
		qc.Paging = Paging{Limit: co.c.DefaultLimit, Limited: true}
	}

	return qc, nil
}

func (co *Compiler) compileSelects(qc *QCode, stmt sqlang.Stmt) error {
	for _, it := range stmt.Cols {
		sel, err := co.compileSelect(qc.Table, it)
		if err != nil {
			return err
		}
		qc.Selects = append(qc.Selects, sel)
	}
	return nil
}

func (co *Compiler) compileSelect(t *sdata.DBTable, it sqlang.SelItem) (sel Select, err error) {
	if it.Fn == "" {
		col, err := t.GetColumn(it.Col)
		if err != nil {
			return sel, err
		}
		sel.Col = col
		sel.Type = col.Type
		sel.Name = col.Name
		if it.Alias != "" {
			sel.Name = it.Alias
		}
		return sel, nil
	}

	if co.c.DisableAgg {
		return sel, fmt.Errorf("%s: aggregate functions are disabled", it.Fn)
	}

	switch it.Fn {
	case "count":
		if it.Distinct {
			sel.Agg = AggCountDistinct
		} else {
			sel.Agg = AggCount
		}
	case "approx_count_distinct":
		sel.Agg = AggApproxCountDistinct
	case "sum":
		sel.Agg = AggSum
	case "min":
		sel.Agg = AggMin
	case "max":
		sel.Agg = AggMax
	case "avg":
		sel.Agg = AggAvg
	default:
		return sel, fmt.Errorf("unknown function: %s", it.Fn)
	}

	if it.Distinct && sel.Agg != AggCountDistinct {
		return sel, fmt.Errorf("%s: DISTINCT is only valid inside COUNT", it.Fn)
	}

	if it.Star {
		if sel.Agg != AggCount {
			return sel, fmt.Errorf("%s: '*' is only valid inside COUNT", it.Fn)
		}
		sel.Star = true
		sel.Type = sdata.ColTypeInt
		sel.Name = "count(*)"
		if it.Alias != "" {
			sel.Name = it.Alias
		}
		return sel, nil
	}

	col, err := t.GetColumn(it.Col)
	if err != nil {
		return sel, err
	}
	sel.Col = col

	switch sel.Agg {
	case AggCount, AggCountDistinct, AggApproxCountDistinct:
		sel.Type = sdata.ColTypeInt
	case AggSum:
		if col.Type == sdata.ColTypeString {
			return sel, fmt.Errorf("sum: column '%s' is not numeric", col.Name)
		}
		sel.Type = col.Type
	case AggAvg:
		if col.Type == sdata.ColTypeString {
			return sel, fmt.Errorf("avg: column '%s' is not numeric", col.Name)
		}
		sel.Type = sdata.ColTypeFloat
	case AggMin, AggMax:
		sel.Type = col.Type
	}

	sel.Name = fmt.Sprintf("%s(%s)", sel.Agg, col.Name)
	if sel.Agg == AggCountDistinct {
		sel.Name = fmt.Sprintf("count(DISTINCT %s)", col.Name)
	}
	if it.Alias != "" {
		sel.Name = it.Alias
	}
	return sel, nil
}

func (co *Compiler) compileFilters(qc *QCode, stmt sqlang.Stmt) error {
	for _, c := range stmt.Where {
		col, err := qc.Table.GetColumn(c.Col)
		if err != nil {
			return err
		}

		f := Filter{Col: col}

		switch c.Op {
		case "=":
			f.Op = OpEquals
		case "!=":
			f.Op = OpNotEquals
		case "<":
			f.Op = OpLesserThan
		case "<=":
			f.Op = OpLesserOrEquals
		case ">":
			f.Op = OpGreaterThan
		case ">=":
			f.Op = OpGreaterOrEquals
		default:
			return fmt.Errorf("unknown operator: %s", c.Op)
		}

		switch col.Type {
		case sdata.ColTypeInt:
			if c.Val.Type != sqlang.LitInt {
				return fmt.Errorf("column '%s' expects an integer value", col.Name)
			}
			if f.IntVal, err = strconv.ParseInt(c.Val.Val, 10, 64); err != nil {
				return fmt.Errorf("column '%s': %w", col.Name, err)
			}
		case sdata.ColTypeFloat:
			if c.Val.Type != sqlang.LitInt && c.Val.Type != sqlang.LitFloat {
				return fmt.Errorf("column '%s' expects a numeric value", col.Name)
			}
			if f.FloatVal, err = strconv.ParseFloat(c.Val.Val, 64); err != nil {
				return fmt.Errorf("column '%s': %w", col.Name, err)
			}
		case sdata.ColTypeString:
			if c.Val.Type != sqlang.LitStr {
				return fmt.Errorf("column '%s' expects a string value", col.Name)
			}
			f.StrVal = c.Val.Val
		}

		qc.Filters = append(qc.Filters, f)
	}
	return nil
}

func (co *Compiler) compileGroupBy(qc *QCode, stmt sqlang.Stmt) error {
	for _, term := range stmt.GroupBy {
		pos, err := qc.resolveTerm(term, "group by")
		if err != nil {
			return err
		}
		if qc.Selects[pos].Agg != AggNone {
			return fmt.Errorf("group by: cannot group on aggregate '%s'", qc.Selects[pos].Name)
		}
		qc.GroupBy = append(qc.GroupBy, pos)
	}

	// With aggregates or grouping in play every plain select column
	// must be a grouping key.
	if qc.HasAgg() || len(qc.GroupBy) != 0 {
		for i := range qc.Selects {
			if qc.Selects[i].Agg == AggNone && !inList(qc.GroupBy, i) {
				return fmt.Errorf("column '%s' must appear in GROUP BY", qc.Selects[i].Name)
			}
		}
	}
	return nil
}

func (co *Compiler) compileOrderBy(qc *QCode, stmt sqlang.Stmt) error {
	for _, term := range stmt.OrderBy {
		pos, err := qc.resolveTerm(term.Term, "order by")
		if err != nil {
			return err
		}
		qc.OrderBy = append(qc.OrderBy, OrderBy{Pos: pos, Descending: term.Desc})
	}
	return nil
}

// resolveTerm maps a GROUP BY / ORDER BY term onto a select-list
// position, whether given as a 1-based ordinal or a column name.
func (qc *QCode) resolveTerm(term sqlang.Term, clause string) (int, error) {
	if term.Ordinal != 0 {
		if term.Ordinal > len(qc.Selects) {
			return 0, fmt.Errorf("%s: ordinal %d out of range (%d select items)",
				clause, term.Ordinal, len(qc.Selects))
		}
		return term.Ordinal - 1, nil
	}

	for i := range qc.Selects {
		s := &qc.Selects[i]
		if equalFold(s.Name, term.Col) {
			return i, nil
		}
		if s.Col != nil && s.Agg == AggNone && equalFold(s.Col.Name, term.Col) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%s: column '%s' not in select list", clause, term.Col)
}

func inList(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
