// Package incident holds the immutable incident table and the filtered views
// derived from it.
package incident

import "strings"

// Field is the canonical name of an incident column
type Field string

const (
	FieldYear      Field = "year"
	FieldMonth     Field = "month"
	FieldAge       Field = "age"
	FieldSex       Field = "sex"
	FieldRace      Field = "race"
	FieldPlace     Field = "place"
	FieldIntent    Field = "intent"
	FieldEducation Field = "education"
	FieldPolice    Field = "police"
	FieldTime      Field = "time"

	// Derived at load
	FieldDate       Field = "date"
	FieldNumVictims Field = "num_victims"
)

// String returns the canonical column name
func (f Field) String() string { return string(f) }

// numericFields must parse as numbers on load
var numericFields = map[Field]bool{
	FieldYear:       true,
	FieldMonth:      true,
	FieldAge:        true,
	FieldNumVictims: true,
}

// IsNumeric reports whether the field is stored as a number
func (f Field) IsNumeric() bool { return numericFields[f] }

// headerAliases maps both header conventions to canonical fields. The
// dashboard export uses lowercase names, the trainer export uses title case.
var headerAliases = map[string]Field{
	"year":            FieldYear,
	"Year":            FieldYear,
	"month":           FieldMonth,
	"Month":           FieldMonth,
	"age":             FieldAge,
	"Age":             FieldAge,
	"sex":             FieldSex,
	"Sex":             FieldSex,
	"race":            FieldRace,
	"Race":            FieldRace,
	"place":           FieldPlace,
	"Place of Death":  FieldPlace,
	"intent":          FieldIntent,
	"Intent":          FieldIntent,
	"education":       FieldEducation,
	"Education":       FieldEducation,
	"police":          FieldPolice,
	"Police Presence": FieldPolice,
	"time":            FieldTime,
	"Time":            FieldTime,
}

// ResolveHeader maps a CSV header to its canonical field.
func ResolveHeader(header string) (Field, bool) {
	f, ok := headerAliases[strings.TrimSpace(header)]
	return f, ok
}

// ParseField accepts a canonical or aliased column name.
func ParseField(name string) (Field, bool) {
	if f, ok := ResolveHeader(name); ok {
		return f, true
	}
	switch Field(name) {
	case FieldDate, FieldNumVictims:
		return Field(name), true
	}
	return "", false
}

// nullTokens are the cell spellings treated as missing
var nullTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"NaN":  true,
	"nan":  true,
	"null": true,
}

// IsNullToken reports whether a raw cell is a missing value
func IsNullToken(s string) bool {
	return nullTokens[strings.TrimSpace(s)]
}
