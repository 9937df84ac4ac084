// Package core provides the embedded analytics engine: it parses the
// analytic SQL subset, validates it against the hits schema, executes
// it over an in-memory columnar store and renders the result.
//
// Example usage:
/*
	package main

	import (
		"context"
		"fmt"
		"log"
		"os"

		"github.com/hitsdb/hitsdb/core"
	)

	func main() {
		hdb, err := core.NewHitsDB(nil)
		if err != nil {
			log.Fatal(err)
		}

		f, err := os.Open("hits.tsv")
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()

		if _, err := hdb.Load(context.Background(), f, core.FormatTSV); err != nil {
			log.Fatal(err)
		}

		res, err := hdb.Query(context.Background(),
			`SELECT COUNT(DISTINCT "SearchPhrase") FROM hits`)
		if err != nil {
			log.Fatal(err)
		}

		fmt.Println(string(res.Data))
	}
*/
package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"time"

	cache "github.com/go-pkgz/expirable-cache"

	"github.com/hitsdb/hitsdb/core/internal/colexec"
	"github.com/hitsdb/hitsdb/core/internal/colstore"
	"github.com/hitsdb/hitsdb/core/internal/qcode"
	"github.com/hitsdb/hitsdb/core/internal/sdata"
	"github.com/hitsdb/hitsdb/core/internal/sqlang"
)

// Format identifies a load input format.
type Format int8

const (
	FormatTSV Format = iota + 1
	FormatArrow
)

// HitsDB is an instance of the engine: the hits schema, the compiler,
// the columnar store and the plan and result caches.
type HitsDB struct {
	conf    *Config
	di      *sdata.DBInfo
	schema  *sdata.DBTable
	qc      *qcode.Compiler
	store   *colstore.Table
	plans   planCache
	results cache.Cache
	trace   tracer
}

// Result is the output of one query.
type Result struct {
	Columns  []string        `json:"columns"`
	Rows     []colexec.Row   `json:"rows"`
	RowCount int             `json:"row_count"`
	Duration time.Duration   `json:"duration"`
	Data     json.RawMessage `json:"-"`
}

// NewHitsDB creates the engine with the built-in hits schema. A nil
// config uses defaults.
func NewHitsDB(conf *Config) (*HitsDB, error) {
	if conf == nil {
		conf = &Config{}
	}
	conf.setDefaults()

	hdb := &HitsDB{
		conf:  conf,
		di:    sdata.NewDBInfo(sdata.HitsTable()),
		trace: newTracer(),
	}

	schema, err := hdb.di.GetTable("hits")
	if err != nil {
		return nil, err
	}
	hdb.schema = schema
	hdb.store = colstore.NewTable(schema)
	hdb.qc = qcode.NewCompiler(hdb.di, qcode.Config{
		DefaultLimit: conf.DefaultLimit,
		DisableAgg:   conf.DisableAgg,
	})

	if err := hdb.initCache(); err != nil {
		return nil, err
	}
	return hdb, nil
}

// Query compiles and executes one statement. Plans are cached by
// query text; results by query hash, invalidated when the store
// version changes.
func (hdb *HitsDB) Query(c context.Context, query string) (*Result, error) {
	c, qspan := hdb.trace.Start(c, "Query")
	defer qspan.End()

	start := time.Now()

	view := hdb.store.View()
	rkey := resultKey(query, view.Version)

	if hdb.results != nil {
		if v, ok := hdb.results.Get(rkey); ok {
			return v.(*Result), nil
		}
	}

	qc, err := hdb.compileQuery(c, query)
	if err != nil {
		qspan.Error(err)
		return nil, err
	}

	if err := c.Err(); err != nil {
		return nil, err
	}

	_, espan := hdb.trace.Start(c, "Execute")
	raw, err := colexec.Run(qc, view)
	if err != nil {
		espan.Error(err)
		espan.End()
		return nil, err
	}
	espan.End()

	res := &Result{
		Columns:  raw.Columns,
		Rows:     raw.Rows,
		RowCount: len(raw.Rows),
		Duration: time.Since(start),
	}
	if res.Data, err = json.Marshal(res); err != nil {
		return nil, err
	}

	if qspan.Recording() {
		qspan.Attr("query.table", qc.Table.Name)
		qspan.Attr("query.rows", fmt.Sprintf("%d", res.RowCount))
	}

	if hdb.results != nil {
		hdb.results.Set(rkey, res, 0)
	}
	return res, nil
}

func (hdb *HitsDB) compileQuery(c context.Context, query string) (*qcode.QCode, error) {
	if qc, ok := hdb.plans.Get(query); ok {
		return qc, nil
	}

	_, cspan := hdb.trace.Start(c, "Compile")
	defer cspan.End()

	stmt, err := sqlang.Parse([]byte(query))
	if err != nil {
		cspan.Error(err)
		return nil, err
	}

	qc, err := hdb.qc.Compile(stmt)
	if err != nil {
		cspan.Error(err)
		return nil, err
	}

	hdb.plans.Set(query, qc)
	return qc, nil
}

// Load appends rows to the store. TSV input may be gzip-compressed;
// Arrow input replaces the whole table.
func (hdb *HitsDB) Load(c context.Context, r io.Reader, format Format) (int, error) {
	_, span := hdb.trace.Start(c, "Load")
	defer span.End()

	var n int
	var err error

	switch format {
	case FormatTSV:
		n, err = hdb.store.LoadTSV(r)
	case FormatArrow:
		n, err = hdb.store.ReadArrow(r)
	default:
		err = fmt.Errorf("unknown load format: %d", format)
	}

	if err != nil {
		span.Error(err)
	}
	return n, err
}

// LoadFake appends n synthetic rows, deterministic for a seed.
func (hdb *HitsDB) LoadFake(c context.Context, n int, seed int64) (int, error) {
	_, span := hdb.trace.Start(c, "LoadFake")
	defer span.End()
	return hdb.store.FakeRows(n, seed)
}

// WriteFakeTSV writes n synthetic hits rows as TSV, deterministic for
// a seed. Used by the fake data command.
func WriteFakeTSV(w io.Writer, n int, seed int64) error {
	// NewDBInfo assigns the column keys the generator dispatches on
	t, err := sdata.NewDBInfo(sdata.HitsTable()).GetTable("hits")
	if err != nil {
		return err
	}
	return colstore.WriteFakeTSV(w, t, n, seed)
}

// Snapshot writes the whole table as an Arrow IPC stream.
func (hdb *HitsDB) Snapshot(w io.Writer) error {
	return hdb.store.WriteArrow(w)
}

// Restore replaces the table from an Arrow IPC stream.
func (hdb *HitsDB) Restore(r io.Reader) (int, error) {
	return hdb.store.ReadArrow(r)
}

// Schema returns the hits table metadata.
func (hdb *HitsDB) Schema() *sdata.DBTable {
	return hdb.schema
}

// Rows returns the current row count of the store.
func (hdb *HitsDB) Rows() int {
	return hdb.store.Rows()
}

// Version returns the store version; it changes on every load.
func (hdb *HitsDB) Version() int64 {
	return hdb.store.Version()
}

func resultKey(query string, version int64) string {
	h := sha256.Sum256([]byte(query))
	return fmt.Sprintf("%x:%d", h, version)
}
