// Package sqlang implements the lexer and parser for the analytic SQL
// subset served by the engine: single-table SELECT statements with
// aggregate functions, WHERE conjunctions, GROUP BY, ORDER BY and LIMIT.
package sqlang

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unsafe"
)

var errEOT = errors.New("end of tokens")

const (
	maxSelItems = 100
	maxConds    = 25
)

// LitType identifies the type of a parsed literal.
type LitType int8

const (
	LitStr LitType = iota + 1
	LitInt
	LitFloat
)

// SelItem is one term of the select list: a plain column or an
// aggregate function call.
type SelItem struct {
	Fn       string // lowercased function name, empty for plain columns
	Distinct bool
	Star     bool // count(*)
	Col      string
	Alias    string
	Pos      Pos
}

// Lit is a parsed literal value.
type Lit struct {
	Type LitType
	Val  string
}

// Cond is one conjunct of the WHERE clause: column op literal.
type Cond struct {
	Col string
	Op  string
	Val Lit
	Pos Pos
}

// Term references either a column by name or a select-list item by
// 1-based ordinal.
type Term struct {
	Col     string
	Ordinal int // 0 when Col is set
	Pos     Pos
}

// OrderTerm is one term of the ORDER BY clause.
type OrderTerm struct {
	Term
	Desc bool
}

// Stmt is the parsed statement.
type Stmt struct {
	Cols    []SelItem
	Table   string
	Where   []Cond
	GroupBy []Term
	OrderBy []OrderTerm
	Limit   int // -1 when absent
}

type parser struct {
	input []byte
	pos   int
	items []item
	err   error
}

// Parse parses a single SQL statement.
func Parse(sql []byte) (stmt Stmt, err error) {
	var l lexer

	if l, err = lex(sql); err != nil {
		return
	}

	p := parser{
		input: l.input,
		pos:   -1,
		items: l.items,
	}
	stmt.Limit = -1

	if !p.peekKeyword(selectToken) {
		return stmt, p.tokErr("SELECT")
	}
	p.ignore()

	if stmt.Cols, err = p.parseSelList(); err != nil {
		return
	}

	if !p.peekKeyword(fromToken) {
		return stmt, p.tokErr("FROM")
	}
	p.ignore()

	if !p.peek(itemName, itemQuotedName) {
		return stmt, p.tokErr("table name")
	}
	stmt.Table = p.val(p.next())

	if p.peekKeyword(whereToken) {
		p.ignore()
		if stmt.Where, err = p.parseWhere(); err != nil {
			return
		}
	}

	if p.peekKeyword(groupToken) {
		p.ignore()
		if !p.peekKeyword(byToken) {
			return stmt, p.tokErr("BY after GROUP")
		}
		p.ignore()
		if stmt.GroupBy, err = p.parseTerms(); err != nil {
			return
		}
	}

	if p.peekKeyword(orderToken) {
		p.ignore()
		if !p.peekKeyword(byToken) {
			return stmt, p.tokErr("BY after ORDER")
		}
		p.ignore()
		if stmt.OrderBy, err = p.parseOrderTerms(); err != nil {
			return
		}
	}

	if p.peekKeyword(limitToken) {
		p.ignore()
		if !p.peek(itemNumberVal) {
			return stmt, p.tokErr("row count after LIMIT")
		}
		v := p.next()
		n, err1 := strconv.Atoi(p.val(v))
		if err1 != nil || n < 0 {
			return stmt, fmt.Errorf("limit: invalid row count: %s", p.val(v))
		}
		stmt.Limit = n
	}

	if p.peek(itemSemi) {
		p.ignore()
	}

	if !p.peek(itemEOF) {
		return stmt, fmt.Errorf("unexpected input after statement: %s", p.peekNext())
	}
	return stmt, nil
}

func (p *parser) parseSelList() ([]SelItem, error) {
	var items []SelItem

	for {
		if len(items) >= maxSelItems {
			return nil, fmt.Errorf("too many select items (max %d)", maxSelItems)
		}

		it, err := p.parseSelItem()
		if err != nil {
			return nil, err
		}
		items = append(items, it)

		if !p.peek(itemComma) {
			break
		}
		p.ignore()
	}
	return items, nil
}

func (p *parser) parseSelItem() (it SelItem, err error) {
	if !p.peek(itemName, itemQuotedName) {
		return it, p.tokErr("column or function name")
	}

	v := p.next()
	it.Pos = v.pos

	if v._type == itemName && isReserved(v.val) && !p.peek(itemParenOpen) {
		return it, fmt.Errorf("expecting column or function name, got keyword: %s", p.val(v))
	}

	// A bare name followed by '(' is a function call.
	if v._type == itemName && p.peek(itemParenOpen) {
		p.ignore()
		it.Fn = strings.ToLower(p.val(v))

		if p.peekKeyword(distinctToken) {
			p.ignore()
			it.Distinct = true
		}

		switch {
		case p.peek(itemStar):
			p.ignore()
			it.Star = true
		case p.peek(itemName, itemQuotedName):
			it.Col = p.val(p.next())
		default:
			return it, p.tokErr("column name or * inside function")
		}

		if !p.peek(itemParenClose) {
			return it, p.tokErr(")")
		}
		p.ignore()
	} else {
		it.Col = p.val(v)
	}

	// Optional [AS] alias.
	if p.peekKeyword(asToken) {
		p.ignore()
		if !p.peek(itemName, itemQuotedName) {
			return it, p.tokErr("alias after AS")
		}
		it.Alias = p.val(p.next())
	} else if p.peek(itemName) && !p.peekAnyKeyword() {
		it.Alias = p.val(p.next())
	}

	return it, nil
}

func (p *parser) parseWhere() ([]Cond, error) {
	var conds []Cond

	for {
		if len(conds) >= maxConds {
			return nil, fmt.Errorf("too many conditions (max %d)", maxConds)
		}

		var c Cond

		if !p.peek(itemName, itemQuotedName) {
			return nil, p.tokErr("column name in condition")
		}
		v := p.next()
		c.Col = p.val(v)
		c.Pos = v.pos

		if !p.peek(itemOp) {
			return nil, p.tokErr("comparison operator")
		}
		c.Op = p.val(p.next())
		if c.Op == "<>" {
			c.Op = "!="
		}

		lit, err := p.parseLit()
		if err != nil {
			return nil, err
		}
		c.Val = lit

		conds = append(conds, c)

		if !p.peekKeyword(andToken) {
			break
		}
		p.ignore()
	}
	return conds, nil
}

func (p *parser) parseLit() (Lit, error) {
	switch {
	case p.peek(itemStringVal):
		return Lit{Type: LitStr, Val: unescape(p.val(p.next()))}, nil
	case p.peek(itemNumberVal):
		v := p.val(p.next())
		if strings.ContainsRune(v, '.') {
			return Lit{Type: LitFloat, Val: v}, nil
		}
		return Lit{Type: LitInt, Val: v}, nil
	}
	return Lit{}, p.tokErr("string or number literal")
}

func (p *parser) parseTerms() ([]Term, error) {
	var terms []Term

	for {
		t, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)

		if !p.peek(itemComma) {
			break
		}
		p.ignore()
	}
	return terms, nil
}

func (p *parser) parseTerm() (t Term, err error) {
	switch {
	case p.peek(itemNumberVal):
		v := p.next()
		t.Pos = v.pos
		n, err1 := strconv.Atoi(p.val(v))
		if err1 != nil || n < 1 {
			return t, fmt.Errorf("expecting a positive ordinal, got: %s", p.val(v))
		}
		t.Ordinal = n
	case p.peek(itemName, itemQuotedName):
		v := p.next()
		t.Pos = v.pos
		t.Col = p.val(v)
	default:
		err = p.tokErr("column name or ordinal")
	}
	return
}

func (p *parser) parseOrderTerms() ([]OrderTerm, error) {
	var terms []OrderTerm

	for {
		t, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		ot := OrderTerm{Term: t}

		if p.peekKeyword(descToken) {
			p.ignore()
			ot.Desc = true
		} else if p.peekKeyword(ascToken) {
			p.ignore()
		}
		terms = append(terms, ot)

		if !p.peek(itemComma) {
			break
		}
		p.ignore()
	}
	return terms, nil
}

var keywords = [][]byte{
	selectToken, distinctToken, fromToken, whereToken, groupToken,
	orderToken, byToken, limitToken, andToken, ascToken, descToken, asToken,
}

func (p *parser) peek(types ...MType) bool {
	n := p.pos + 1
	if n >= len(p.items) {
		return false
	}
	for i := 0; i < len(types); i++ {
		if p.items[n]._type == types[i] {
			return true
		}
	}
	return false
}

// peekKeyword reports whether the next token is the given bare keyword.
func (p *parser) peekKeyword(kw []byte) bool {
	n := p.pos + 1
	if n >= len(p.items) || p.items[n]._type != itemName {
		return false
	}
	return equals(p.items[n].val, kw)
}

func isReserved(val []byte) bool {
	for _, kw := range keywords {
		if equals(val, kw) {
			return true
		}
	}
	return false
}

// peekAnyKeyword reports whether the next token is any reserved keyword.
func (p *parser) peekAnyKeyword() bool {
	n := p.pos + 1
	if n >= len(p.items) || p.items[n]._type != itemName {
		return false
	}
	return isReserved(p.items[n].val)
}

func (p *parser) next() item {
	n := p.pos + 1
	if n >= len(p.items) {
		p.err = errEOT
		return item{_type: itemEOF}
	}
	p.pos = n
	return p.items[p.pos]
}

func (p *parser) ignore() {
	n := p.pos + 1
	if n >= len(p.items) {
		p.err = errEOT
		return
	}
	p.pos = n
}

func (p *parser) peekNext() string {
	n := p.pos + 1
	if n >= len(p.items) || p.items[n]._type == itemEOF {
		return "EOF"
	}
	return b2s(p.items[n].val)
}

func (p *parser) val(v item) string {
	return b2s(v.val)
}

func (p *parser) tokErr(exp string) error {
	return fmt.Errorf("expecting %s, got: %s", exp, p.peekNext())
}

func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	var escaped bool
	for _, r := range s {
		if !escaped && r == '\\' {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}

func b2s(b []byte) string {
	return *(*string)(unsafe.Pointer(&b))
}
