package colstore

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/hitsdb/hitsdb/core/internal/sdata"
)

var gzipMagic = []byte{0x1f, 0x8b}

// LoadTSV appends tab-separated rows, one per line, columns in schema
// order. Gzip input is detected from the magic bytes. Returns the
// number of rows loaded.
func (t *Table) LoadTSV(r io.Reader) (int, error) {
	br := bufio.NewReader(r)

	if magic, err := br.Peek(2); err == nil && bytes.Equal(magic, gzipMagic) {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return 0, err
		}
		defer gz.Close()
		return t.loadTSV(gz)
	}
	return t.loadTSV(br)
}

func (t *Table) loadTSV(r io.Reader) (int, error) {
	batch := t.newBatch()
	cols := t.schema.Columns

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	var n int
	for line := 1; sc.Scan(); line++ {
		row := sc.Text()
		if row == "" {
			continue
		}

		fields := strings.Split(row, "\t")
		if len(fields) != len(cols) {
			return 0, fmt.Errorf("line %d: expected %d columns, got %d",
				line, len(cols), len(fields))
		}

		for i, f := range fields {
			if err := appendField(batch[i], &cols[i], f); err != nil {
				return 0, fmt.Errorf("line %d: %w", line, err)
			}
		}
		n++
	}
	if err := sc.Err(); err != nil {
		return 0, err
	}

	if err := t.appendBatch(batch, n); err != nil {
		return 0, err
	}
	return n, nil
}

func appendField(v *Vector, c *sdata.DBColumn, f string) error {
	switch c.Type {
	case sdata.ColTypeInt:
		if f == "" {
			appendEmptyNum(v, c)
			return nil
		}
		x, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return fmt.Errorf("column %s: %w", c.Name, err)
		}
		v.AppendInt(x)

	case sdata.ColTypeFloat:
		if f == "" {
			appendEmptyNum(v, c)
			return nil
		}
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return fmt.Errorf("column %s: %w", c.Name, err)
		}
		v.AppendFloat(x)

	case sdata.ColTypeString:
		// An empty string is a value, not a null.
		v.AppendStr(f)
	}
	return nil
}

func appendEmptyNum(v *Vector, c *sdata.DBColumn) {
	if c.NotNull {
		if c.Type == sdata.ColTypeFloat {
			v.AppendFloat(0)
		} else {
			v.AppendInt(0)
		}
		return
	}
	v.AppendNull()
}
