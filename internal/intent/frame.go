package intent

import (
	"fmt"
	"sort"
	"strconv"

	"gundash/domain/core"
	"gundash/domain/incident"
	"gundash/internal/errors"
)

// Names of the broadcast input columns
const (
	InputAge  = "Input1"
	InputSex  = "Input2"
	InputRace = "Input3"
)

// featureColumn maps a dataset field to its feature column name
type featureColumn struct {
	field incident.Field
	name  string
}

var featureColumns = []featureColumn{
	{incident.FieldAge, "Age"},
	{incident.FieldSex, "Sex"},
	{incident.FieldRace, "Race"},
	{incident.FieldEducation, "Education"},
	{incident.FieldTime, "Time"},
	{incident.FieldPlace, "Place of Death"},
	{incident.FieldPolice, "Police Presence"},
}

// Frame is the raw feature matrix before encoding, one string cell per row
// and column, plus the target labels
type Frame struct {
	Columns []string
	Rows    [][]string
	Target  []string
}

// Len returns the number of rows
func (f *Frame) Len() int { return len(f.Rows) }

// Column returns the cells of the named column
func (f *Frame) Column(name string) ([]string, bool) {
	idx := f.index(name)
	if idx < 0 {
		return nil, false
	}
	out := make([]string, len(f.Rows))
	for i, row := range f.Rows {
		out[i] = row[idx]
	}
	return out, true
}

func (f *Frame) index(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// appendConstant adds a column holding value on every row
func (f *Frame) appendConstant(name, value string) {
	f.Columns = append(f.Columns, name)
	for i := range f.Rows {
		f.Rows[i] = append(f.Rows[i], value)
	}
}

// resolveColumns picks the table field behind each feature column. Time
// falls back to month for datasets in the dashboard layout.
func resolveColumns(t *incident.Table) ([]featureColumn, error) {
	cols := make([]featureColumn, 0, len(featureColumns))
	for _, fc := range featureColumns {
		if fc.field == incident.FieldTime && !t.Has(incident.FieldTime) && t.Has(incident.FieldMonth) {
			fc.field = incident.FieldMonth
		}
		if !t.Has(fc.field) {
			return nil, errors.DataError("trainer dataset is incomplete",
				fmt.Errorf("%w: %s", core.ErrMissingColumn, fc.name))
		}
		cols = append(cols, fc)
	}
	if !t.Has(incident.FieldIntent) {
		return nil, errors.DataError("trainer dataset is incomplete",
			fmt.Errorf("%w: Intent", core.ErrMissingColumn))
	}
	return cols, nil
}

// buildFrame drops every row with a null in any loaded column and projects
// the feature columns and the intent target
func buildFrame(t *incident.Table) (*Frame, int, error) {
	cols, err := resolveColumns(t)
	if err != nil {
		return nil, 0, err
	}

	fr := &Frame{Columns: make([]string, len(cols))}
	for i, fc := range cols {
		fr.Columns[i] = fc.name
	}

	dropped := 0
	for r := 0; r < t.Len(); r++ {
		if t.RowHasNull(r) {
			dropped++
			continue
		}
		row := make([]string, len(cols), len(cols)+3)
		for i, fc := range cols {
			row[i] = t.Text(fc.field, r)
		}
		fr.Rows = append(fr.Rows, row)
		fr.Target = append(fr.Target, t.Text(incident.FieldIntent, r))
	}
	if fr.Len() == 0 {
		return nil, dropped, errors.DataError("no complete rows to train on", core.ErrEmptyDataset)
	}
	return fr, dropped, nil
}

// modes returns the most frequent value of each column. Ties go to the
// smallest value.
func (f *Frame) modes() map[string]string {
	out := make(map[string]string, len(f.Columns))
	for j, name := range f.Columns {
		counts := make(map[string]int)
		for _, row := range f.Rows {
			counts[row[j]]++
		}
		keys := make([]string, 0, len(counts))
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		best := ""
		for _, k := range keys {
			if best == "" || counts[k] > counts[best] {
				best = k
			}
		}
		out[name] = best
	}
	return out
}

func formatInt(v int) string { return strconv.Itoa(v) }
