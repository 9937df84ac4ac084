package sdata

// HitsTable returns the built-in schema for the hits relation. Column
// order here is the on-disk TSV column order.
func HitsTable() DBTable {
	return DBTable{
		Name: "hits",
		Columns: []DBColumn{
			{Name: "WatchID", Type: ColTypeInt, NotNull: true},
			{Name: "EventTime", Type: ColTypeInt, NotNull: true},
			{Name: "CounterID", Type: ColTypeInt, NotNull: true},
			{Name: "UserID", Type: ColTypeInt, NotNull: true},
			{Name: "RegionID", Type: ColTypeInt, NotNull: true},
			{Name: "URL", Type: ColTypeString, NotNull: true},
			{Name: "Title", Type: ColTypeString, NotNull: true},
			{Name: "Referer", Type: ColTypeString, NotNull: true},
			{Name: "SearchPhrase", Type: ColTypeString},
			{Name: "SearchEngineID", Type: ColTypeInt},
			{Name: "MobilePhone", Type: ColTypeInt},
			{Name: "MobilePhoneModel", Type: ColTypeString},
			{Name: "HitColor", Type: ColTypeString},
			{Name: "SocialNetwork", Type: ColTypeString},
			{Name: "SocialAction", Type: ColTypeString},
			{Name: "BrowserCountry", Type: ColTypeString},
			{Name: "BrowserLanguage", Type: ColTypeString},
			{Name: "ResolutionWidth", Type: ColTypeInt},
			{Name: "IsMobile", Type: ColTypeInt},
		},
	}
}
