package sdata

import "testing"

func TestGetColumn(t *testing.T) {
	di := NewDBInfo(HitsTable())

	ht, err := di.GetTable("Hits")
	if err != nil {
		t.Fatal(err)
	}

	c, err := ht.GetColumn("searchphrase")
	if err != nil {
		t.Fatal(err)
	}
	if c.Name != "SearchPhrase" {
		t.Fatalf("expected declared name 'SearchPhrase', got '%s'", c.Name)
	}
	if c.Type != ColTypeString {
		t.Fatalf("expected text column, got %s", c.Type)
	}

	if _, err := ht.GetColumn("NoSuchColumn"); err == nil {
		t.Fatal("expected an error for an unknown column")
	}
}

func TestAddTableGrowth(t *testing.T) {
	di := NewDBInfo(HitsTable())

	first, err := di.GetTable("hits")
	if err != nil {
		t.Fatal(err)
	}

	// adding more tables reallocates the backing slice; the earlier
	// lookup must still resolve to live data
	for i := 0; i < 8; i++ {
		di.AddTable(DBTable{
			Name:    "aux" + string(rune('a'+i)),
			Columns: []DBColumn{{Name: "ID", Type: ColTypeInt}},
		})
	}

	again, err := di.GetTable("hits")
	if err != nil {
		t.Fatal(err)
	}
	if again.Name != "hits" || len(again.Columns) != len(first.Columns) {
		t.Fatalf("hits lookup broken after growth: %+v", again)
	}
	if _, err := again.GetColumn("SearchPhrase"); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 8; i++ {
		tab, err := di.GetTable("aux" + string(rune('a'+i)))
		if err != nil {
			t.Fatal(err)
		}
		if !tab.ColumnExists("id") {
			t.Errorf("table %s lost its column map", tab.Name)
		}
	}
}

func TestHitsColumns(t *testing.T) {
	ht := HitsTable()

	required := []string{
		"SearchPhrase",
		"MobilePhone",
		"MobilePhoneModel",
		"HitColor",
		"BrowserCountry",
		"BrowserLanguage",
	}

	di := NewDBInfo(ht)
	tab, err := di.GetTable("hits")
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range required {
		if !tab.ColumnExists(name) {
			t.Errorf("hits table missing column %s", name)
		}
	}
}
