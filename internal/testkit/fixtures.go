package testkit

import (
	"testing"

	"gundash/domain/incident"
)

// SmallRecords is a hand-written dashboard-convention table. It contains
// exactly three White victims aged 0..30.
var SmallRecords = [][]string{
	{"2012", "1", "Suicide", "0", "M", "25", "White", "Home", "HS/GED"},
	{"2012", "1", "Homicide", "0", "M", "19", "Black", "Street", "Less than HS"},
	{"2012", "2", "Homicide", "0", "F", "30", "White", "Street", "Some college"},
	{"2013", "3", "Suicide", "0", "M", "61", "White", "Home", "BA+"},
	{"2013", "3", "Accidental", "0", "M", "12", "White", "Home", "Less than HS"},
	{"2013", "7", "Homicide", "1", "M", "24", "Hispanic", "Street", "HS/GED"},
	{"2014", "7", "Suicide", "0", "F", "45", "Black", "Home", "Some college"},
	{"2014", "11", "Undetermined", "0", "M", "33", "White", "Other specified", "HS/GED"},
	{"2014", "12", "Homicide", "0", "M", "19", "Black", "Street", "HS/GED"},
}

// SmallTable returns the SmallRecords table
func SmallTable(t testing.TB) *incident.Table {
	t.Helper()
	tbl, err := incident.NewTable("small", DashboardHeaders, SmallRecords)
	if err != nil {
		t.Fatalf("small table: %v", err)
	}
	return tbl
}

// GeneratedTable returns a generated table with the default config and the given size
func GeneratedTable(t testing.TB, rows int, seed int64) *incident.Table {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Rows = rows
	cfg.Seed = seed
	ds, err := Generate(cfg)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	tbl, err := ds.Table("generated")
	if err != nil {
		t.Fatalf("generated table: %v", err)
	}
	return tbl
}

// TrainerTable returns a generated table in the trainer column layout
func TrainerTable(t testing.TB, rows int, seed int64, missingRate float64) *incident.Table {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Rows = rows
	cfg.Seed = seed
	cfg.MissingRate = missingRate
	cfg.TrainerHeaders = true
	ds, err := Generate(cfg)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	tbl, err := ds.Table("trainer")
	if err != nil {
		t.Fatalf("trainer table: %v", err)
	}
	return tbl
}
