// Package filter applies conjunctions of widget predicates to incident views.
package filter

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"gundash/domain/incident"
)

// All is the sentinel option that disables a select or multiselect filter
const All = "All"

// Predicate decides whether one table row is kept
type Predicate interface {
	Match(t *incident.Table, row int) bool
	String() string
}

// Set is a conjunction of predicates, applied in order
type Set []Predicate

// Apply returns the rows of v matching every predicate. v is not modified.
func (s Set) Apply(v incident.View) incident.View {
	for _, p := range s {
		v = v.Where(p.Match)
	}
	return v
}

// String renders the set for logs
func (s Set) String() string {
	parts := make([]string, len(s))
	for i, p := range s {
		parts[i] = p.String()
	}
	return strings.Join(parts, " AND ")
}

// Apply is shorthand for Set(preds).Apply(v)
func Apply(v incident.View, preds ...Predicate) incident.View {
	return Set(preds).Apply(v)
}

// Range keeps rows whose numeric field lies in [Lo, Hi]. Nulls never match.
type Range struct {
	Field  incident.Field
	Lo, Hi float64
}

func (p Range) Match(t *incident.Table, row int) bool {
	x, ok := t.Float(p.Field, row)
	return ok && x >= p.Lo && x <= p.Hi
}

func (p Range) String() string {
	return fmt.Sprintf("%s in [%s, %s]", p.Field, fmtNum(p.Lo), fmtNum(p.Hi))
}

// Equals keeps rows whose field text equals Value
type Equals struct {
	Field incident.Field
	Value string
}

func (p Equals) Match(t *incident.Table, row int) bool {
	return !t.IsNull(p.Field, row) && t.Text(p.Field, row) == p.Value
}

func (p Equals) String() string {
	return fmt.Sprintf("%s == %q", p.Field, p.Value)
}

// OneOf keeps rows whose field text is in Values. An empty Values matches nothing.
type OneOf struct {
	Field  incident.Field
	Values []string
}

func (p OneOf) Match(t *incident.Table, row int) bool {
	if t.IsNull(p.Field, row) {
		return false
	}
	return slices.Contains(p.Values, t.Text(p.Field, row))
}

func (p OneOf) String() string {
	return fmt.Sprintf("%s in %v", p.Field, p.Values)
}

// Select builds the predicate for a single-select widget; All yields nil.
func Select(f incident.Field, value string) Predicate {
	if value == "" || value == All {
		return nil
	}
	return Equals{Field: f, Value: canonical(f, value)}
}

// MultiSelect builds the predicate for a multiselect widget. A selection
// containing All yields nil. An empty selection yields nil only when
// emptyMeansAll is set; otherwise it matches no rows.
func MultiSelect(f incident.Field, values []string, emptyMeansAll bool) Predicate {
	if slices.Contains(values, All) {
		return nil
	}
	if len(values) == 0 && emptyMeansAll {
		return nil
	}
	vals := make([]string, len(values))
	for i, v := range values {
		vals[i] = canonical(f, v)
	}
	return OneOf{Field: f, Values: vals}
}

// canonical normalises numeric selections so "2012.0" matches the stored "2012"
func canonical(f incident.Field, v string) string {
	if !f.IsNumeric() {
		return v
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return v
	}
	return fmtNum(x)
}

func fmtNum(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// Compact drops nil predicates
func Compact(preds ...Predicate) Set {
	out := make(Set, 0, len(preds))
	for _, p := range preds {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}
