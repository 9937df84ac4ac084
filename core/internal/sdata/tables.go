// Package sdata holds the table and column metadata the compiler
// validates queries against.
package sdata

import (
	"fmt"
	"strings"
)

// ColType is the storage type of a column.
type ColType int8

const (
	ColTypeInt ColType = iota + 1
	ColTypeFloat
	ColTypeString
)

func (t ColType) String() string {
	switch t {
	case ColTypeInt:
		return "bigint"
	case ColTypeFloat:
		return "double"
	case ColTypeString:
		return "text"
	}
	return "unknown"
}

type DBInfo struct {
	Tables []DBTable
	tmap   map[string]int
}

type DBTable struct {
	Name    string
	Key     string
	Columns []DBColumn
	colMap  map[string]*DBColumn
}

type DBColumn struct {
	ID      int16
	Name    string
	Key     string
	Type    ColType
	NotNull bool
}

func NewDBInfo(tables ...DBTable) *DBInfo {
	di := &DBInfo{tmap: make(map[string]int)}
	for _, t := range tables {
		di.AddTable(t)
	}
	return di
}

func (di *DBInfo) AddTable(t DBTable) {
	t.Key = strings.ToLower(t.Name)
	t.colMap = make(map[string]*DBColumn, len(t.Columns))

	for i := range t.Columns {
		c := &t.Columns[i]
		c.ID = int16(i)
		c.Key = strings.ToLower(c.Name)
		t.colMap[c.Key] = c
	}

	// the map holds indexes, not pointers, so lookups survive the
	// slice reallocating on a later AddTable
	di.Tables = append(di.Tables, t)
	di.tmap[t.Key] = len(di.Tables) - 1
}

func (di *DBInfo) GetTable(table string) (*DBTable, error) {
	i, ok := di.tmap[strings.ToLower(table)]
	if !ok {
		return nil, fmt.Errorf("table: '%s' not found", table)
	}
	return &di.Tables[i], nil
}

// GetColumn looks a column up by name, case-insensitively. The
// declared name on the returned column is used for output headers.
func (t *DBTable) GetColumn(column string) (*DBColumn, error) {
	c, ok := t.colMap[strings.ToLower(column)]
	if !ok {
		return nil, fmt.Errorf("column: '%s.%s' not found", t.Name, column)
	}
	return c, nil
}

func (t *DBTable) ColumnExists(column string) bool {
	_, ok := t.colMap[strings.ToLower(column)]
	return ok
}
