package colexec

import (
	"strings"
	"testing"

	"github.com/hitsdb/hitsdb/core/internal/colstore"
	"github.com/hitsdb/hitsdb/core/internal/qcode"
	"github.com/hitsdb/hitsdb/core/internal/sdata"
	"github.com/hitsdb/hitsdb/core/internal/sqlang"
)

var testTSV = strings.Join([]string{
	"1\t1010\t1\t100\t229\tu1\tt\tr\tphone case\t2\t1\tiphone\tg\t\t\tUS\ten\t1920\t0",
	"2\t1020\t1\t101\t229\tu2\tt\tr\tphone case\t2\t1\tiphone\ty\t\t\tUS\ten\t1366\t1",
	"3\t1030\t1\t102\t2\tu3\tt\tr\tcheap flights\t3\t2\tpixel\tg\t\t\tDE\tde\t1920\t0",
	"4\t1040\t2\t103\t2\tu4\tt\tr\t\t0\t\t\t\t\t\tDE\tde\t1024\t0",
	"5\t1050\t2\t104\t229\tu5\tt\tr\thotel\t2\t3\tgalaxy\tr\t\t\tFR\tfr\t1440\t0",
	"6\t1060\t2\t105\t229\tu6\tt\tr\thotel\t2\t3\tgalaxy\tg\t\t\tFR\tfr\t1440\t1",
}, "\n") + "\n"

func testView(t testing.TB) (colstore.View, *qcode.Compiler) {
	t.Helper()

	di := sdata.NewDBInfo(sdata.HitsTable())
	schema, err := di.GetTable("hits")
	if err != nil {
		t.Fatal(err)
	}

	tab := colstore.NewTable(schema)
	if _, err := tab.LoadTSV(strings.NewReader(testTSV)); err != nil {
		t.Fatal(err)
	}
	return tab.View(), qcode.NewCompiler(di, qcode.Config{})
}

func run(t testing.TB, view colstore.View, co *qcode.Compiler, sql string) *Result {
	t.Helper()

	stmt, err := sqlang.Parse([]byte(sql))
	if err != nil {
		t.Fatal(err)
	}
	qc, err := co.Compile(stmt)
	if err != nil {
		t.Fatal(err)
	}
	res, err := Run(qc, view)
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestScalarDistinctCounts(t *testing.T) {
	view, co := testView(t)

	res := run(t, view, co,
		`SELECT COUNT(DISTINCT "SearchPhrase"), COUNT(DISTINCT "MobilePhone"), COUNT(DISTINCT "MobilePhoneModel") FROM hits;`)

	if len(res.Rows) != 1 {
		t.Fatalf("scalar aggregation must return one row, got %d", len(res.Rows))
	}
	row := res.Rows[0]

	// Distinct phrases: "phone case", "cheap flights", "", "hotel".
	if row[0] != int64(4) {
		t.Errorf("distinct SearchPhrase: expected 4, got %v", row[0])
	}
	// Distinct phones: 1, 2, 3 (one row is NULL and must not count).
	if row[1] != int64(3) {
		t.Errorf("distinct MobilePhone: expected 3, got %v", row[1])
	}
	// Distinct models: iphone, pixel, galaxy, "".
	if row[2] != int64(4) {
		t.Errorf("distinct MobilePhoneModel: expected 4, got %v", row[2])
	}
}

func TestGroupedDistinctCounts(t *testing.T) {
	view, co := testView(t)

	res := run(t, view, co,
		`SELECT "BrowserCountry", COUNT(DISTINCT "HitColor"), COUNT(DISTINCT "BrowserLanguage") FROM hits GROUP BY 1 ORDER BY 2 DESC LIMIT 10;`)

	if len(res.Rows) > 10 {
		t.Fatalf("limit 10 violated: %d rows", len(res.Rows))
	}
	if len(res.Rows) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(res.Rows))
	}

	// Ordered by distinct HitColor count descending.
	var prev int64 = 1 << 62
	for _, row := range res.Rows {
		n := row[1].(int64)
		if n > prev {
			t.Fatalf("rows not in descending order: %v", res.Rows)
		}
		prev = n
	}

	// US: g,y = 2. DE: g,"" = 2. FR: r,g = 2. All tie at 2; ties keep
	// first-seen group order.
	want := []string{"US", "DE", "FR"}
	for i, row := range res.Rows {
		if row[0] != want[i] {
			t.Errorf("row %d: expected country %s, got %v", i, want[i], row[0])
		}
	}
}

func TestCountNullHandling(t *testing.T) {
	view, co := testView(t)

	res := run(t, view, co,
		`SELECT COUNT(*), COUNT(MobilePhone), COUNT(DISTINCT MobilePhone) FROM hits`)

	row := res.Rows[0]
	if row[0] != int64(6) {
		t.Errorf("count(*): expected 6, got %v", row[0])
	}
	if row[1] != int64(5) {
		t.Errorf("count(col) must skip nulls: expected 5, got %v", row[1])
	}
	if row[2] != int64(3) {
		t.Errorf("count(distinct col) must skip nulls: expected 3, got %v", row[2])
	}
}

func TestWhereFilter(t *testing.T) {
	view, co := testView(t)

	res := run(t, view, co,
		`SELECT COUNT(*), COUNT(DISTINCT HitColor) FROM hits WHERE RegionID = 229 AND IsMobile = 0`)

	row := res.Rows[0]
	if row[0] != int64(2) {
		t.Errorf("expected 2 matching rows, got %v", row[0])
	}
	if row[1] != int64(2) {
		t.Errorf("expected 2 distinct colors (g, r), got %v", row[1])
	}
}

func TestNumericAggregates(t *testing.T) {
	view, co := testView(t)

	res := run(t, view, co,
		`SELECT SUM(ResolutionWidth), MIN(ResolutionWidth), MAX(ResolutionWidth), AVG(IsMobile) FROM hits`)

	row := res.Rows[0]
	if row[0] != int64(1920+1366+1920+1024+1440+1440) {
		t.Errorf("bad sum: %v", row[0])
	}
	if row[1] != int64(1024) || row[2] != int64(1920) {
		t.Errorf("bad min/max: %v %v", row[1], row[2])
	}
	if row[3] != float64(2)/float64(6) {
		t.Errorf("bad avg: %v", row[3])
	}
}

func TestEmptyTable(t *testing.T) {
	di := sdata.NewDBInfo(sdata.HitsTable())
	schema, _ := di.GetTable("hits")
	view := colstore.NewTable(schema).View()
	co := qcode.NewCompiler(di, qcode.Config{})

	res := run(t, view, co, `SELECT COUNT(*), SUM(ResolutionWidth), MIN(HitColor) FROM hits`)

	if len(res.Rows) != 1 {
		t.Fatalf("scalar aggregation over empty table must return one row, got %d", len(res.Rows))
	}
	row := res.Rows[0]
	if row[0] != int64(0) {
		t.Errorf("count over empty table: expected 0, got %v", row[0])
	}
	if row[1] != nil || row[2] != nil {
		t.Errorf("sum/min over empty table must be null, got %v %v", row[1], row[2])
	}

	res = run(t, view, co, `SELECT "BrowserCountry", COUNT(*) FROM hits GROUP BY 1`)
	if len(res.Rows) != 0 {
		t.Errorf("grouping an empty table must return no rows, got %d", len(res.Rows))
	}
}

func TestProjection(t *testing.T) {
	view, co := testView(t)

	res := run(t, view, co,
		`SELECT SearchPhrase, HitColor FROM hits WHERE BrowserCountry = 'FR' ORDER BY HitColor LIMIT 1`)

	if len(res.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(res.Rows))
	}
	if res.Rows[0][1] != "g" {
		t.Errorf("expected first color 'g', got %v", res.Rows[0][1])
	}
}

func TestLimitZero(t *testing.T) {
	view, co := testView(t)

	res := run(t, view, co, `SELECT SearchPhrase FROM hits LIMIT 0`)
	if len(res.Rows) != 0 {
		t.Fatalf("explicit LIMIT 0 must return no rows, got %d", len(res.Rows))
	}

	// grouped and scalar forms honor it too
	res = run(t, view, co,
		`SELECT BrowserCountry, COUNT(*) FROM hits GROUP BY 1 LIMIT 0`)
	if len(res.Rows) != 0 {
		t.Fatalf("grouped LIMIT 0 must return no rows, got %d", len(res.Rows))
	}

	res = run(t, view, co, `SELECT COUNT(*) FROM hits LIMIT 0`)
	if len(res.Rows) != 0 {
		t.Fatalf("scalar LIMIT 0 must return no rows, got %d", len(res.Rows))
	}
}

func TestGroupKeyColumnBoundaries(t *testing.T) {
	// cell values holding the bytes a naive key encoding would use as
	// separators or null tags must still land in distinct groups
	di := sdata.NewDBInfo(sdata.HitsTable())
	schema, err := di.GetTable("hits")
	if err != nil {
		t.Fatal(err)
	}

	row := func(phrase, model string) string {
		return "1\t1010\t1\t100\t229\tu\tt\tr\t" + phrase +
			"\t2\t1\t" + model + "\tg\t\t\tUS\ten\t1920\t0"
	}
	tsv := row("x\x1e\x01", "y") + "\n" + row("x", "\x1e\x01y") + "\n"

	tab := colstore.NewTable(schema)
	if _, err := tab.LoadTSV(strings.NewReader(tsv)); err != nil {
		t.Fatal(err)
	}

	res := run(t, tab.View(), qcode.NewCompiler(di, qcode.Config{}),
		`SELECT SearchPhrase, MobilePhoneModel, COUNT(*) FROM hits GROUP BY 1, 2`)

	if len(res.Rows) != 2 {
		t.Fatalf("expected 2 distinct groups, got %d: %v", len(res.Rows), res.Rows)
	}
	for _, r := range res.Rows {
		if r[2] != int64(1) {
			t.Errorf("each group holds one row, got %v", r)
		}
	}
}

func TestApproxCountDistinct(t *testing.T) {
	view, co := testView(t)

	res := run(t, view, co, `SELECT APPROX_COUNT_DISTINCT(UserID) FROM hits`)

	// At this cardinality the sketch is exact.
	if res.Rows[0][0] != int64(6) {
		t.Errorf("expected estimate 6, got %v", res.Rows[0][0])
	}
}

func TestOutputHeaders(t *testing.T) {
	view, co := testView(t)

	res := run(t, view, co,
		`SELECT "BrowserCountry", COUNT(DISTINCT "HitColor") FROM hits GROUP BY 1`)

	if res.Columns[0] != "BrowserCountry" {
		t.Errorf("headers must preserve declared case, got %s", res.Columns[0])
	}
	if res.Columns[1] != "count(DISTINCT HitColor)" {
		t.Errorf("unexpected aggregate header: %s", res.Columns[1])
	}
}

func BenchmarkGroupedDistinct(b *testing.B) {
	di := sdata.NewDBInfo(sdata.HitsTable())
	schema, _ := di.GetTable("hits")

	tab := colstore.NewTable(schema)
	if _, err := tab.FakeRows(10000, 1); err != nil {
		b.Fatal(err)
	}
	view := tab.View()
	co := qcode.NewCompiler(di, qcode.Config{})

	stmt, err := sqlang.Parse([]byte(
		`SELECT "BrowserCountry", COUNT(DISTINCT "HitColor"), COUNT(DISTINCT "BrowserLanguage") FROM hits GROUP BY 1 ORDER BY 2 DESC LIMIT 10`))
	if err != nil {
		b.Fatal(err)
	}
	qc, err := co.Compile(stmt)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		if _, err := Run(qc, view); err != nil {
			b.Fatal(err)
		}
	}
}
