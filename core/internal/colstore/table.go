package colstore

import (
	"fmt"
	"sync"

	"github.com/hitsdb/hitsdb/core/internal/sdata"
)

// Table is the in-memory columnar store for one relation. Loads take
// the write lock; queries read through an immutable View.
type Table struct {
	mu      sync.RWMutex
	schema  *sdata.DBTable
	cols    []*Vector
	rows    int
	version int64
}

// View is a consistent read snapshot of the table. Vectors are
// append-only so the slice headers stay valid after later loads.
type View struct {
	Schema  *sdata.DBTable
	Cols    []*Vector
	Rows    int
	Version int64
}

func NewTable(schema *sdata.DBTable) *Table {
	t := &Table{schema: schema}
	t.cols = make([]*Vector, len(schema.Columns))
	for i := range schema.Columns {
		t.cols[i] = NewVector(schema.Columns[i].Type)
	}
	return t
}

func (t *Table) Schema() *sdata.DBTable {
	return t.schema
}

func (t *Table) Rows() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rows
}

// Version increases on every load. The result cache keys on it.
func (t *Table) Version() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.version
}

func (t *Table) View() View {
	t.mu.RLock()
	defer t.mu.RUnlock()

	cols := make([]*Vector, len(t.cols))
	for i, c := range t.cols {
		v := *c
		cols[i] = &v
	}
	return View{Schema: t.schema, Cols: cols, Rows: t.rows, Version: t.version}
}

// newBatch returns fresh staging vectors matching the schema. Loaders
// fill a batch first so a malformed input never leaves the table with
// a torn row.
func (t *Table) newBatch() []*Vector {
	cols := make([]*Vector, len(t.schema.Columns))
	for i := range t.schema.Columns {
		cols[i] = NewVector(t.schema.Columns[i].Type)
	}
	return cols
}

// appendBatch merges fully staged vectors into the table.
func (t *Table) appendBatch(batch []*Vector, n int) error {
	for i, c := range batch {
		if c.Len() != n {
			return fmt.Errorf("column %s: uneven batch (%d values, %d rows)",
				t.schema.Columns[i].Name, c.Len(), n)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.cols {
		t.cols[i].extend(batch[i])
	}
	t.rows += n
	t.version++
	return nil
}

// replaceAll swaps in a whole new set of column vectors. Used by
// snapshot restore.
func (t *Table) replaceAll(batch []*Vector, n int) error {
	for i, c := range batch {
		if c.Len() != n {
			return fmt.Errorf("column %s: uneven batch (%d values, %d rows)",
				t.schema.Columns[i].Name, c.Len(), n)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.cols = batch
	t.rows = n
	t.version++
	return nil
}
