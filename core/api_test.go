package core_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitsdb/hitsdb/core"
)

var testRows = strings.Join([]string{
	"1\t1010\t1\t100\t229\tu1\tt\tr\tphone case\t2\t1\tiphone\tg\t\t\tUS\ten\t1920\t0",
	"2\t1020\t1\t101\t229\tu2\tt\tr\tcheap flights\t2\t1\tpixel\ty\t\t\tDE\tde\t1366\t1",
	"3\t1030\t1\t102\t2\tu3\tt\tr\tphone case\t3\t1\tiphone\tg\t\t\tUS\ten\t1920\t0",
}, "\n") + "\n"

func newTestDB(t *testing.T) *core.HitsDB {
	t.Helper()

	hdb, err := core.NewHitsDB(nil)
	require.NoError(t, err)

	_, err = hdb.Load(context.Background(), strings.NewReader(testRows), core.FormatTSV)
	require.NoError(t, err)
	return hdb
}

func Example_queryDistinctCounts() {
	hdb, err := core.NewHitsDB(nil)
	if err != nil {
		panic(err)
	}
	if _, err := hdb.Load(context.Background(), strings.NewReader(testRows), core.FormatTSV); err != nil {
		panic(err)
	}

	res, err := hdb.Query(context.Background(),
		`SELECT COUNT(DISTINCT "SearchPhrase"), COUNT(DISTINCT "MobilePhone"), COUNT(DISTINCT "MobilePhoneModel") FROM hits;`)
	if err != nil {
		panic(err)
	}

	fmt.Println(res.Columns)
	fmt.Println(res.Rows[0])
	// Output:
	// [count(DISTINCT SearchPhrase) count(DISTINCT MobilePhone) count(DISTINCT MobilePhoneModel)]
	// [2 1 2]
}

func Example_queryGrouped() {
	hdb, err := core.NewHitsDB(nil)
	if err != nil {
		panic(err)
	}
	if _, err := hdb.Load(context.Background(), strings.NewReader(testRows), core.FormatTSV); err != nil {
		panic(err)
	}

	res, err := hdb.Query(context.Background(),
		`SELECT "BrowserCountry", COUNT(DISTINCT "HitColor"), COUNT(DISTINCT "BrowserLanguage") FROM hits GROUP BY 1 ORDER BY 2 DESC LIMIT 10;`)
	if err != nil {
		panic(err)
	}

	for _, row := range res.Rows {
		fmt.Println(row)
	}
	// Output:
	// [US 1 1]
	// [DE 1 1]
}

func TestQueryUnknownColumn(t *testing.T) {
	hdb := newTestDB(t)

	_, err := hdb.Query(context.Background(),
		`SELECT COUNT(DISTINCT "Browser") FROM hits`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Browser")
}

func TestQueryLimit(t *testing.T) {
	hdb := newTestDB(t)

	res, err := hdb.Query(context.Background(),
		`SELECT "BrowserCountry", COUNT(DISTINCT "HitColor") FROM hits GROUP BY 1 ORDER BY 2 DESC LIMIT 1`)
	require.NoError(t, err)
	assert.Equal(t, 1, res.RowCount)
}

func TestResultCacheInvalidation(t *testing.T) {
	hdb, err := core.NewHitsDB(&core.Config{
		ResultCacheSize: 10,
		ResultCacheTTL:  time.Minute,
	})
	require.NoError(t, err)

	ctx := context.Background()
	_, err = hdb.Load(ctx, strings.NewReader(testRows), core.FormatTSV)
	require.NoError(t, err)

	const q = `SELECT COUNT(*) FROM hits`

	res, err := hdb.Query(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Rows[0][0])

	// A load bumps the store version so the cached result must not
	// be served.
	_, err = hdb.Load(ctx, strings.NewReader(testRows), core.FormatTSV)
	require.NoError(t, err)

	res, err = hdb.Query(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, int64(6), res.Rows[0][0])
}

func TestSnapshotRestore(t *testing.T) {
	hdb := newTestDB(t)

	var buf strings.Builder
	bw := &builderWriter{&buf}
	require.NoError(t, hdb.Snapshot(bw))

	restored, err := core.NewHitsDB(nil)
	require.NoError(t, err)

	n, err := restored.Restore(strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, restored.Rows())
}

type builderWriter struct{ b *strings.Builder }

func (w *builderWriter) Write(p []byte) (int, error) { return w.b.Write(p) }

func TestReadInConfigFS(t *testing.T) {
	fs := afero.NewMemMapFs()

	conf := `
default_limit: 25
disable_agg_functions: false
result_cache_size: 100
result_cache_ttl: 30s
`
	require.NoError(t, afero.WriteFile(fs, "/dev.yml", []byte(conf), 0644))

	c, err := core.ReadInConfigFS("/dev.yml", fs)
	require.NoError(t, err)
	assert.Equal(t, 25, c.DefaultLimit)
	assert.Equal(t, 100, c.ResultCacheSize)
	assert.Equal(t, 30*time.Second, c.ResultCacheTTL)

	_, err = core.ReadInConfigFS("/missing.yml", fs)
	require.Error(t, err)
}

func TestLoadFakeDeterministic(t *testing.T) {
	hdb, err := core.NewHitsDB(nil)
	require.NoError(t, err)

	n, err := hdb.LoadFake(context.Background(), 100, 42)
	require.NoError(t, err)
	assert.Equal(t, 100, n)
	assert.Equal(t, 100, hdb.Rows())
}

func TestWriteFakeTSVRealistic(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, core.WriteFakeTSV(&buf, 50, 7))

	hitColors := map[string]bool{
		"": true, "g": true, "y": true, "r": true, "b": true, "o": true, "p": true,
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 50)

	for i, ln := range lines {
		fields := strings.Split(ln, "\t")
		require.Len(t, fields, 19, "row %d", i)

		// generated values must draw from the hits distributions, not
		// generic filler words
		assert.True(t, hitColors[fields[12]],
			"row %d: HitColor %q is not from the hits color set", i, fields[12])
		assert.Len(t, fields[15], 2, "row %d: BrowserCountry %q", i, fields[15])
		assert.Contains(t, []string{"0", "1"}, fields[18],
			"row %d: IsMobile %q", i, fields[18])
	}

	// the written file loads as the same rows FakeRows appends
	hdb1, err := core.NewHitsDB(nil)
	require.NoError(t, err)
	_, err = hdb1.LoadFake(context.Background(), 50, 7)
	require.NoError(t, err)

	hdb2, err := core.NewHitsDB(nil)
	require.NoError(t, err)
	_, err = hdb2.Load(context.Background(), strings.NewReader(buf.String()), core.FormatTSV)
	require.NoError(t, err)

	q := `SELECT COUNT(DISTINCT "SearchPhrase"), COUNT(DISTINCT "MobilePhone"), COUNT(DISTINCT "MobilePhoneModel") FROM hits`
	r1, err := hdb1.Query(context.Background(), q)
	require.NoError(t, err)
	r2, err := hdb2.Query(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, r1.Rows, r2.Rows)
}
