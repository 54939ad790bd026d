package incident

import "math"

// View is a filtered subset of a Table. Views share the table and never
// modify it; each filter step produces a new View.
type View struct {
	table *Table
	rows  []int
}

// NewView builds a view over explicit row indices
func NewView(t *Table, rows []int) View {
	cp := make([]int, len(rows))
	copy(cp, rows)
	return View{table: t, rows: cp}
}

// Table returns the backing table
func (v View) Table() *Table { return v.table }

// Len returns the number of rows in the view
func (v View) Len() int { return len(v.rows) }

// Rows returns a copy of the row indices
func (v View) Rows() []int {
	out := make([]int, len(v.rows))
	copy(out, v.rows)
	return out
}

// Row returns the table row index of the i-th view row
func (v View) Row(i int) int { return v.rows[i] }

// Where keeps the rows for which keep returns true
func (v View) Where(keep func(t *Table, row int) bool) View {
	out := make([]int, 0, len(v.rows))
	for _, r := range v.rows {
		if keep(v.table, r) {
			out = append(out, r)
		}
	}
	return View{table: v.table, rows: out}
}

// Distinct returns the non-null values of f in first-seen order
func (v View) Distinct(f Field) []string {
	if v.table == nil || !v.table.Has(f) {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, r := range v.rows {
		if v.table.IsNull(f, r) {
			continue
		}
		s := v.table.Text(f, r)
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// Extent returns min and max of a numeric field over the view
func (v View) Extent(f Field) (float64, float64, bool) {
	lo, hi := math.Inf(1), math.Inf(-1)
	found := false
	if v.table == nil {
		return 0, 0, false
	}
	for _, r := range v.rows {
		x, ok := v.table.Float(f, r)
		if !ok {
			continue
		}
		found = true
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	if !found {
		return 0, 0, false
	}
	return lo, hi, true
}

// Floats returns the non-null numeric values of f
func (v View) Floats(f Field) []float64 {
	out := make([]float64, 0, len(v.rows))
	if v.table == nil {
		return out
	}
	for _, r := range v.rows {
		if x, ok := v.table.Float(f, r); ok {
			out = append(out, x)
		}
	}
	return out
}
