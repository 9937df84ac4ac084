package colstore

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/hitsdb/hitsdb/core/internal/sdata"
)

var (
	hitColors     = []string{"", "g", "y", "r", "b", "o", "p"}
	socialNets    = []string{"", "facebook", "twitter", "vk", "odnoklassniki"}
	socialActions = []string{"", "like", "share", "comment"}
)

// FakeRows appends n synthetic rows. Deterministic for a given seed.
func (t *Table) FakeRows(n int, seed int64) (int, error) {
	fk := gofakeit.New(seed)

	batch := t.newBatch()
	cols := t.schema.Columns

	for r := 0; r < n; r++ {
		for i := range cols {
			fakeField(fk, batch[i], &cols[i])
		}
	}
	if err := t.appendBatch(batch, n); err != nil {
		return 0, err
	}
	return n, nil
}

// WriteFakeTSV streams n synthetic rows as TSV, the same shape FakeRows
// loads. Used by the fake CLI command to seed files for other engines.
func WriteFakeTSV(w io.Writer, schema *sdata.DBTable, n int, seed int64) error {
	t := NewTable(schema)
	if _, err := t.FakeRows(n, seed); err != nil {
		return err
	}

	v := t.View()
	var sb strings.Builder

	for r := 0; r < v.Rows; r++ {
		sb.Reset()
		for i, c := range v.Cols {
			if i > 0 {
				sb.WriteByte('\t')
			}
			if c.Null(r) {
				continue
			}
			switch c.Type {
			case sdata.ColTypeInt:
				fmt.Fprintf(&sb, "%d", c.Ints[r])
			case sdata.ColTypeFloat:
				fmt.Fprintf(&sb, "%g", c.Floats[r])
			default:
				sb.WriteString(c.Strs[r])
			}
		}
		sb.WriteByte('\n')
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}

func fakeField(fk *gofakeit.Faker, v *Vector, c *sdata.DBColumn) {
	// dispatch on the declared name; Key is only set once a table has
	// passed through sdata.NewDBInfo
	switch strings.ToLower(c.Name) {
	case "watchid":
		v.AppendInt(int64(fk.Uint32()))
	case "eventtime":
		v.AppendInt(fk.DateRange(
			time.Date(2013, 7, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2013, 7, 31, 23, 59, 59, 0, time.UTC)).Unix())
	case "counterid":
		v.AppendInt(int64(fk.Number(1, 100)))
	case "userid":
		v.AppendInt(int64(fk.Uint32()))
	case "regionid":
		v.AppendInt(int64(fk.Number(1, 5000)))
	case "url":
		v.AppendStr(fk.URL())
	case "title":
		v.AppendStr(fk.Sentence(4))
	case "referer":
		v.AppendStr(fk.URL())
	case "searchphrase":
		if fk.Bool() {
			v.AppendStr("")
		} else {
			v.AppendStr(fk.HipsterSentence(3))
		}
	case "searchengineid":
		v.AppendInt(int64(fk.Number(0, 100)))
	case "mobilephone":
		if fk.Number(0, 3) == 0 {
			v.AppendNull()
		} else {
			v.AppendInt(int64(fk.Number(0, 90)))
		}
	case "mobilephonemodel":
		if fk.Number(0, 3) == 0 {
			v.AppendStr("")
		} else {
			v.AppendStr(fk.CarModel())
		}
	case "hitcolor":
		v.AppendStr(fk.RandomString(hitColors))
	case "socialnetwork":
		v.AppendStr(fk.RandomString(socialNets))
	case "socialaction":
		v.AppendStr(fk.RandomString(socialActions))
	case "browsercountry":
		v.AppendStr(fk.CountryAbr())
	case "browserlanguage":
		v.AppendStr(fk.LanguageAbbreviation())
	case "resolutionwidth":
		v.AppendInt(int64(fk.RandomInt([]int{1024, 1280, 1366, 1440, 1920, 2560})))
	case "ismobile":
		v.AppendInt(int64(fk.Number(0, 1)))
	default:
		fakeDefault(fk, v, c)
	}
}

func fakeDefault(fk *gofakeit.Faker, v *Vector, c *sdata.DBColumn) {
	switch c.Type {
	case sdata.ColTypeInt:
		v.AppendInt(int64(fk.Number(0, 1000)))
	case sdata.ColTypeFloat:
		v.AppendFloat(fk.Float64Range(0, 1000))
	default:
		v.AppendStr(fk.Word())
	}
}
