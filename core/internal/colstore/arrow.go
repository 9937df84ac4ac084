package colstore

import (
	"fmt"
	"io"

	"github.com/apache/arrow/go/v11/arrow"
	"github.com/apache/arrow/go/v11/arrow/array"
	"github.com/apache/arrow/go/v11/arrow/ipc"
	"github.com/apache/arrow/go/v11/arrow/memory"

	"github.com/hitsdb/hitsdb/core/internal/sdata"
)

const arrowBatchRows = 8192

// WriteArrow snapshots the whole table as an Arrow IPC stream.
func (t *Table) WriteArrow(w io.Writer) error {
	v := t.View()

	schema := arrowSchema(v.Schema)
	aw := ipc.NewWriter(w, ipc.WithSchema(schema))
	defer aw.Close()

	bld := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer bld.Release()

	for start := 0; start < v.Rows || v.Rows == 0; start += arrowBatchRows {
		end := start + arrowBatchRows
		if end > v.Rows {
			end = v.Rows
		}

		for i, c := range v.Cols {
			appendArrow(bld.Field(i), c, start, end)
		}

		rec := bld.NewRecord()
		err := aw.Write(rec)
		rec.Release()
		if err != nil {
			return err
		}

		if v.Rows == 0 {
			break
		}
	}
	return nil
}

// ReadArrow replaces the table contents with an Arrow IPC stream
// previously produced by WriteArrow.
func (t *Table) ReadArrow(r io.Reader) (int, error) {
	ar, err := ipc.NewReader(r)
	if err != nil {
		return 0, err
	}
	defer ar.Release()

	want := arrowSchema(t.schema)
	if !ar.Schema().Equal(want) {
		return 0, fmt.Errorf("snapshot schema does not match table %s", t.schema.Name)
	}

	batch := t.newBatch()
	var n int

	for ar.Next() {
		rec := ar.Record()
		rows := int(rec.NumRows())

		for i := range t.schema.Columns {
			if err := readArrowCol(batch[i], rec.Column(i), rows); err != nil {
				return 0, fmt.Errorf("column %s: %w", t.schema.Columns[i].Name, err)
			}
		}
		n += rows
	}
	if err := ar.Err(); err != nil && err != io.EOF {
		return 0, err
	}

	if err := t.replaceAll(batch, n); err != nil {
		return 0, err
	}
	return n, nil
}

func arrowSchema(t *sdata.DBTable) *arrow.Schema {
	fields := make([]arrow.Field, len(t.Columns))
	for i, c := range t.Columns {
		f := arrow.Field{Name: c.Name, Nullable: !c.NotNull}
		switch c.Type {
		case sdata.ColTypeInt:
			f.Type = arrow.PrimitiveTypes.Int64
		case sdata.ColTypeFloat:
			f.Type = arrow.PrimitiveTypes.Float64
		default:
			f.Type = arrow.BinaryTypes.String
		}
		fields[i] = f
	}
	return arrow.NewSchema(fields, nil)
}

func appendArrow(b array.Builder, v *Vector, start, end int) {
	switch fb := b.(type) {
	case *array.Int64Builder:
		for i := start; i < end; i++ {
			if v.Null(i) {
				fb.AppendNull()
			} else {
				fb.Append(v.Ints[i])
			}
		}
	case *array.Float64Builder:
		for i := start; i < end; i++ {
			if v.Null(i) {
				fb.AppendNull()
			} else {
				fb.Append(v.Floats[i])
			}
		}
	case *array.StringBuilder:
		for i := start; i < end; i++ {
			if v.Null(i) {
				fb.AppendNull()
			} else {
				fb.Append(v.Strs[i])
			}
		}
	}
}

func readArrowCol(v *Vector, a arrow.Array, rows int) error {
	switch ac := a.(type) {
	case *array.Int64:
		for i := 0; i < rows; i++ {
			if ac.IsNull(i) {
				v.AppendNull()
			} else {
				v.AppendInt(ac.Value(i))
			}
		}
	case *array.Float64:
		for i := 0; i < rows; i++ {
			if ac.IsNull(i) {
				v.AppendNull()
			} else {
				v.AppendFloat(ac.Value(i))
			}
		}
	case *array.String:
		for i := 0; i < rows; i++ {
			if ac.IsNull(i) {
				v.AppendNull()
			} else {
				v.AppendStr(ac.Value(i))
			}
		}
	default:
		return fmt.Errorf("unsupported arrow type: %s", a.DataType())
	}
	return nil
}
