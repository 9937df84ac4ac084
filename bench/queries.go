// Package bench holds the canonical query suite and the runners that
// execute it against the embedded engine or an external SQL database.
package bench

import "fmt"

// Query is one numbered statement of the suite.
type Query struct {
	Num  int
	Name string
	SQL  string
}

// Queries is the canonical distinct-count suite over hits.
var Queries = []Query{
	{
		Num:  0,
		Name: "distinct search",
		SQL: `SELECT COUNT(DISTINCT "SearchPhrase"), COUNT(DISTINCT "MobilePhone"), ` +
			`COUNT(DISTINCT "MobilePhoneModel") FROM hits;`,
	},
	{
		Num:  1,
		Name: "distinct browser",
		SQL: `SELECT COUNT(DISTINCT "HitColor"), COUNT(DISTINCT "BrowserCountry"), ` +
			`COUNT(DISTINCT "BrowserLanguage") FROM hits;`,
	},
	{
		Num:  2,
		Name: "top countries",
		SQL: `SELECT "BrowserCountry", COUNT(DISTINCT "HitColor"), ` +
			`COUNT(DISTINCT "BrowserLanguage") FROM hits GROUP BY 1 ORDER BY 2 DESC LIMIT 10;`,
	},
}

// QueriesByNumber selects queries from the suite by number. An empty
// selection returns the whole suite.
func QueriesByNumber(nums []int) ([]Query, error) {
	if len(nums) == 0 {
		out := make([]Query, len(Queries))
		copy(out, Queries)
		return out, nil
	}

	var out []Query
	for _, n := range nums {
		found := false
		for _, q := range Queries {
			if q.Num == n {
				out = append(out, q)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("no query numbered %d (suite has 0..%d)",
				n, Queries[len(Queries)-1].Num)
		}
	}
	return out, nil
}
