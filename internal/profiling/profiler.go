// Package profiling summarises the loaded incident table for the dataset
// info endpoint and the CLI.
package profiling

import (
	"sort"

	"gundash/domain/incident"
)

// ValueCount is one category and how many rows hold it
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ColumnProfile describes one column
type ColumnProfile struct {
	Field   incident.Field  `json:"field"`
	Numeric bool            `json:"numeric"`
	Missing int             `json:"missing"`
	Summary *NumericSummary `json:"summary,omitempty"`
	// Categories is sorted by descending count, ties in first-seen order
	Categories []ValueCount `json:"categories,omitempty"`
}

// DatasetInfo is the profile of a whole table
type DatasetInfo struct {
	Source      string          `json:"source"`
	Fingerprint string          `json:"fingerprint,omitempty"`
	Rows        int             `json:"rows"`
	Complete    int             `json:"complete_rows"`
	Columns     []ColumnProfile `json:"columns"`
	Ignored     []string        `json:"ignored_columns,omitempty"`
	// Associations tests each categorical column against intent
	Associations []Association `json:"associations,omitempty"`
}

// DataProfiler builds DatasetInfo values
type DataProfiler struct {
	// MaxCategories caps the category list per column; zero keeps all
	MaxCategories int
}

// NewDataProfiler creates a profiler that keeps every category
func NewDataProfiler() *DataProfiler {
	return &DataProfiler{}
}

// Profile summarises every column of t
func (dp *DataProfiler) Profile(t *incident.Table) DatasetInfo {
	info := DatasetInfo{
		Source:      t.Source(),
		Fingerprint: t.Fingerprint().String(),
		Rows:        t.Len(),
		Ignored:     t.Extras(),
	}
	for r := 0; r < t.Len(); r++ {
		if !t.RowHasNull(r) {
			info.Complete++
		}
	}
	for _, f := range t.Fields() {
		info.Columns = append(info.Columns, dp.ProfileColumn(t, f))
	}
	if t.Has(incident.FieldIntent) {
		for _, f := range t.Fields() {
			if f != incident.FieldIntent && !f.IsNumeric() && f != incident.FieldDate {
				info.Associations = append(info.Associations, ChiSquare(t, f, incident.FieldIntent))
			}
		}
	}
	return info
}

// ProfileColumn summarises a single column
func (dp *DataProfiler) ProfileColumn(t *incident.Table, f incident.Field) ColumnProfile {
	col := ColumnProfile{Field: f, Numeric: f.IsNumeric()}
	all := t.All()
	for r := 0; r < t.Len(); r++ {
		if t.IsNull(f, r) {
			col.Missing++
		}
	}

	if col.Numeric {
		if s, err := SummarizeNumeric(all.Floats(f)); err == nil {
			col.Summary = &s
		}
		return col
	}

	counts := make(map[string]int)
	for r := 0; r < t.Len(); r++ {
		if !t.IsNull(f, r) {
			counts[t.Text(f, r)]++
		}
	}
	for _, v := range t.Distinct(f) {
		if n, ok := counts[v]; ok {
			col.Categories = append(col.Categories, ValueCount{Value: v, Count: n})
		}
	}
	sort.SliceStable(col.Categories, func(i, j int) bool {
		return col.Categories[i].Count > col.Categories[j].Count
	})
	if dp.MaxCategories > 0 && len(col.Categories) > dp.MaxCategories {
		col.Categories = col.Categories[:dp.MaxCategories]
	}
	return col
}
