package sqlang

import (
	"strings"
	"testing"
)

func TestParseDistinctCounts(t *testing.T) {
	sql := `SELECT COUNT(DISTINCT "SearchPhrase"), COUNT(DISTINCT "MobilePhone"), COUNT(DISTINCT "MobilePhoneModel") FROM hits;`

	stmt, err := Parse([]byte(sql))
	if err != nil {
		t.Fatal(err)
	}

	if len(stmt.Cols) != 3 {
		t.Fatalf("expected 3 select items, got %d", len(stmt.Cols))
	}
	for i, col := range []string{"SearchPhrase", "MobilePhone", "MobilePhoneModel"} {
		it := stmt.Cols[i]
		if it.Fn != "count" || !it.Distinct || it.Col != col {
			t.Errorf("item %d: expected count(distinct %s), got %+v", i, col, it)
		}
	}
	if stmt.Table != "hits" {
		t.Errorf("expected table hits, got %s", stmt.Table)
	}
	if stmt.Limit != -1 {
		t.Errorf("expected no limit, got %d", stmt.Limit)
	}
}

func TestParseGroupOrderLimit(t *testing.T) {
	sql := `SELECT "BrowserCountry", COUNT(DISTINCT "HitColor"), COUNT(DISTINCT "BrowserLanguage") FROM hits GROUP BY 1 ORDER BY 2 DESC LIMIT 10;`

	stmt, err := Parse([]byte(sql))
	if err != nil {
		t.Fatal(err)
	}

	if len(stmt.GroupBy) != 1 || stmt.GroupBy[0].Ordinal != 1 {
		t.Fatalf("expected group by ordinal 1, got %+v", stmt.GroupBy)
	}
	if len(stmt.OrderBy) != 1 || stmt.OrderBy[0].Ordinal != 2 || !stmt.OrderBy[0].Desc {
		t.Fatalf("expected order by 2 desc, got %+v", stmt.OrderBy)
	}
	if stmt.Limit != 10 {
		t.Fatalf("expected limit 10, got %d", stmt.Limit)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		ok   bool
	}{
		{"empty", "", false},
		{"plain columns", `SELECT SearchPhrase, HitColor FROM hits`, true},
		{"count star", `SELECT COUNT(*) FROM hits`, true},
		{"where conjuncts", `SELECT COUNT(*) FROM hits WHERE RegionID = 229 AND HitColor != 'g'`, true},
		{"order by name", `SELECT SearchPhrase FROM hits ORDER BY SearchPhrase ASC LIMIT 5`, true},
		{"aliased agg", `SELECT COUNT(DISTINCT UserID) AS users FROM hits`, true},
		{"bare alias", `SELECT SearchPhrase phrase FROM hits`, true},
		{"line comment", "SELECT COUNT(*) FROM hits -- trailing note", true},
		{"case keywords", `select count(distinct HitColor) from hits group by 1`, true},
		{"missing from", `SELECT COUNT(*) hits`, false},
		{"unterminated string", `SELECT COUNT(*) FROM hits WHERE HitColor = 'g`, false},
		{"negative limit", `SELECT COUNT(*) FROM hits LIMIT -1`, false},
		{"trailing junk", `SELECT COUNT(*) FROM hits; SELECT 1`, false},
		{"distinct outside fn", `SELECT DISTINCT SearchPhrase FROM hits`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.sql))
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %s", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestParseOperators(t *testing.T) {
	for _, op := range []string{"=", "!=", "<>", "<", "<=", ">", ">="} {
		sql := `SELECT COUNT(*) FROM hits WHERE ResolutionWidth ` + op + ` 1024`

		stmt, err := Parse([]byte(sql))
		if err != nil {
			t.Fatalf("op %s: %s", op, err)
		}

		want := op
		if op == "<>" {
			want = "!="
		}
		if stmt.Where[0].Op != want {
			t.Errorf("op %s: parsed as %s", op, stmt.Where[0].Op)
		}
	}
}

func TestParseStringEscapes(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{"escaped quote", `SELECT COUNT(*) FROM hits WHERE Title = 'it\'s'`, "it's"},
		{"trailing backslash", `SELECT COUNT(*) FROM hits WHERE Title = 'x\\'`, `x\`},
		{"doubled backslashes", `SELECT COUNT(*) FROM hits WHERE Title = 'a\\\\b'`, `a\\b`},
		{"backslash then quote", `SELECT COUNT(*) FROM hits WHERE Title = '\\\''`, `\'`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := Parse([]byte(tt.sql))
			if err != nil {
				t.Fatal(err)
			}
			if v := stmt.Where[0].Val.Val; v != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, v)
			}
		})
	}
}

var benchSQL = []byte(`SELECT "BrowserCountry", COUNT(DISTINCT "HitColor"), COUNT(DISTINCT "BrowserLanguage") FROM hits GROUP BY 1 ORDER BY 2 DESC LIMIT 10;`)

func BenchmarkParse(b *testing.B) {
	b.ReportAllocs()
	for n := 0; n < b.N; n++ {
		_, err := Parse(benchSQL)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func TestParseLongSelectList(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	for i := 0; i < maxSelItems+1; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("SearchPhrase")
	}
	sb.WriteString(" FROM hits")

	if _, err := Parse([]byte(sb.String())); err == nil {
		t.Fatal("expected an error for an oversized select list")
	}
}
