// Package testkit generates deterministic synthetic incident datasets for
// tests and local development.
package testkit

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"

	"gundash/adapters/excel"
	"gundash/domain/incident"
)

// Header conventions
var (
	DashboardHeaders = []string{"year", "month", "intent", "police", "sex", "age", "race", "place", "education"}
	TrainerHeaders   = []string{"Age", "Sex", "Race", "Education", "Time", "Place of Death", "Police Presence", "Intent"}
)

var (
	intents    = []string{"Suicide", "Homicide", "Accidental", "Undetermined"}
	races      = []string{"White", "Black", "Hispanic", "Asian/Pacific Islander", "Native American/Native Alaskan"}
	places     = []string{"Home", "Street", "Other specified", "Other unspecified", "Trade/service area", "Farm", "Industrial/construction", "Residential institution", "School/instiution", "Sports"}
	educations = []string{"Less than HS", "HS/GED", "Some college", "BA+"}
)

// Config controls the generator
type Config struct {
	Rows      int
	Seed      int64
	StartYear int
	Years     int

	// MissingRate is the probability that an age or education cell is left blank
	MissingRate float64

	// TrainerHeaders switches to the title-case column convention
	TrainerHeaders bool
}

// DefaultConfig returns a three-year dataset starting in 2012
func DefaultConfig() Config {
	return Config{
		Rows:      2000,
		Seed:      42,
		StartYear: 2012,
		Years:     3,
	}
}

// Dataset is the generated header plus string rows
type Dataset struct {
	Headers []string
	Rows    [][]string
}

type row struct {
	year, month, age int
	intent, sex      string
	race, place      string
	education        string
	police           int
	ageNull, eduNull bool
}

// Generate builds a dataset whose intent correlates with age, sex and place
// so the trainer has signal to fit.
func Generate(cfg Config) (*Dataset, error) {
	if cfg.Rows <= 0 {
		return nil, fmt.Errorf("rows must be > 0")
	}
	if cfg.Years <= 0 {
		return nil, fmt.Errorf("years must be > 0")
	}
	if cfg.MissingRate < 0 || cfg.MissingRate >= 1 {
		return nil, fmt.Errorf("missing rate must be in [0,1)")
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	ds := &Dataset{Headers: DashboardHeaders}
	if cfg.TrainerHeaders {
		ds.Headers = TrainerHeaders
	}

	for i := 0; i < cfg.Rows; i++ {
		r := row{
			year:  cfg.StartYear + rng.Intn(cfg.Years),
			month: 1 + rng.Intn(12),
		}
		r.intent = pickIntent(rng)
		r.sex = "M"
		if rng.Float64() < femaleShare(r.intent) {
			r.sex = "F"
		}
		r.age = sampleAge(rng, r.intent)
		r.race = pickRace(rng, r.intent)
		r.place = pickPlace(rng, r.intent)
		r.education = educations[rng.Intn(len(educations))]
		if r.intent == "Homicide" && rng.Float64() < 0.03 {
			r.police = 1
		}
		r.ageNull = rng.Float64() < cfg.MissingRate
		r.eduNull = rng.Float64() < cfg.MissingRate

		if cfg.TrainerHeaders {
			ds.Rows = append(ds.Rows, r.trainerRecord())
		} else {
			ds.Rows = append(ds.Rows, r.dashboardRecord())
		}
	}
	return ds, nil
}

func (r row) ageCell() string {
	if r.ageNull {
		return "NA"
	}
	return strconv.Itoa(r.age)
}

func (r row) eduCell() string {
	if r.eduNull {
		return ""
	}
	return r.education
}

func (r row) dashboardRecord() []string {
	return []string{
		strconv.Itoa(r.year), strconv.Itoa(r.month), r.intent, strconv.Itoa(r.police),
		r.sex, r.ageCell(), r.race, r.place, r.eduCell(),
	}
}

func (r row) trainerRecord() []string {
	sex := "Male"
	if r.sex == "F" {
		sex = "Female"
	}
	police := "False"
	if r.police == 1 {
		police = "True"
	}
	return []string{r.ageCell(), sex, r.race, r.eduCell(), strconv.Itoa(r.month), r.place, police, r.intent}
}

func pickIntent(rng *rand.Rand) string {
	x := rng.Float64()
	switch {
	case x < 0.62:
		return intents[0]
	case x < 0.96:
		return intents[1]
	case x < 0.98:
		return intents[2]
	default:
		return intents[3]
	}
}

func femaleShare(intent string) float64 {
	switch intent {
	case "Suicide":
		return 0.13
	case "Homicide":
		return 0.16
	default:
		return 0.12
	}
}

func sampleAge(rng *rand.Rand, intent string) int {
	mean, sd := 50.0, 17.0
	switch intent {
	case "Homicide":
		mean, sd = 29, 11
	case "Accidental":
		mean, sd = 35, 19
	}
	age := int(math.Round(mean + rng.NormFloat64()*sd))
	return min(max(age, 1), 100)
}

func pickRace(rng *rand.Rand, intent string) string {
	if intent == "Homicide" && rng.Float64() < 0.55 {
		return "Black"
	}
	if intent == "Suicide" && rng.Float64() < 0.8 {
		return "White"
	}
	return races[rng.Intn(len(races))]
}

func pickPlace(rng *rand.Rand, intent string) string {
	if intent == "Suicide" && rng.Float64() < 0.7 {
		return "Home"
	}
	if intent == "Homicide" && rng.Float64() < 0.4 {
		return "Street"
	}
	return places[rng.Intn(len(places))]
}

// Table parses a generated dataset into an incident table
func (ds *Dataset) Table(source string) (*incident.Table, error) {
	return incident.NewTable(source, ds.Headers, ds.Rows)
}

// WriteCSV writes the dataset as CSV
func WriteCSV(path string, ds *Dataset) error {
	return excel.WriteCSVFile(path, ds.Headers, ds.Rows)
}

// WriteXLSX writes the dataset to Sheet1 of a new workbook
func WriteXLSX(path string, ds *Dataset) error {
	rows := make([][]any, len(ds.Rows))
	for i, r := range ds.Rows {
		cells := make([]any, len(r))
		for j, v := range r {
			cells[j] = v
		}
		rows[i] = cells
	}
	return excel.WriteXLSXFile(path, excel.Sheet{Name: excel.DefaultSheet, Headers: ds.Headers, Rows: rows})
}
