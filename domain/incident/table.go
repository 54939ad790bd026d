package incident

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gundash/domain/core"
)

// Table is the immutable in-memory incident dataset. Columns are stored by
// canonical field; rows are addressed by index.
type Table struct {
	source      string
	fingerprint core.Hash
	fields      []Field
	text        map[Field][]string
	nums        map[Field][]float64
	nulls       map[Field][]bool
	extras      []extraColumn
	rows        int
}

// extraColumn is a header the schema does not know. It is never charted or
// trained on, but its missing cells still count for RowHasNull.
type extraColumn struct {
	name  string
	nulls []bool
}

// NewTable builds a Table from a header row and data records. Headers are
// resolved through the alias schema; unknown headers are kept as extra
// columns that only contribute their null masks. Numeric columns must parse,
// missing cells are kept as nulls.
func NewTable(source string, header []string, records [][]string) (*Table, error) {
	t := &Table{
		source: source,
		text:   make(map[Field][]string),
		nums:   make(map[Field][]float64),
		nulls:  make(map[Field][]bool),
		rows:   len(records),
	}

	colIndex := make(map[Field]int)
	for i, h := range header {
		f, ok := ResolveHeader(h)
		if !ok {
			t.extras = append(t.extras, extraColumn{name: h, nulls: nullMask(records, i)})
			continue
		}
		if _, dup := colIndex[f]; dup {
			return nil, fmt.Errorf("duplicate column for %s: %q", f, h)
		}
		colIndex[f] = i
		t.fields = append(t.fields, f)
	}
	if len(t.fields) == 0 {
		return nil, fmt.Errorf("%w: no recognised incident columns in %v", core.ErrMissingColumn, header)
	}

	for _, f := range t.fields {
		idx := colIndex[f]
		text := make([]string, t.rows)
		nulls := make([]bool, t.rows)
		var nums []float64
		if f.IsNumeric() {
			nums = make([]float64, t.rows)
		}
		for r, rec := range records {
			var cell string
			if idx < len(rec) {
				cell = strings.TrimSpace(rec[idx])
			}
			if IsNullToken(cell) {
				nulls[r] = true
				if nums != nil {
					nums[r] = math.NaN()
				}
				continue
			}
			text[r] = cell
			if nums != nil {
				v, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					return nil, core.NewNonNumericError(string(f), r+2, cell)
				}
				nums[r] = v
				text[r] = formatNumber(v)
			}
		}
		t.text[f] = text
		t.nulls[f] = nulls
		if nums != nil {
			t.nums[f] = nums
		}
	}

	t.deriveDate()
	t.deriveNumVictims()
	return t, nil
}

func nullMask(records [][]string, idx int) []bool {
	mask := make([]bool, len(records))
	for r, rec := range records {
		mask[r] = idx >= len(rec) || IsNullToken(strings.TrimSpace(rec[idx]))
	}
	return mask
}

// WithFingerprint records the content hash of the source the table came from.
func (t *Table) WithFingerprint(h core.Hash) *Table {
	t.fingerprint = h
	return t
}

// deriveDate adds a YYYY-MM column when year and month are present
func (t *Table) deriveDate() {
	if !t.Has(FieldYear) || !t.Has(FieldMonth) {
		return
	}
	dates := make([]string, t.rows)
	nulls := make([]bool, t.rows)
	for r := 0; r < t.rows; r++ {
		if t.IsNull(FieldYear, r) || t.IsNull(FieldMonth, r) {
			nulls[r] = true
			continue
		}
		dates[r] = fmt.Sprintf("%04d-%02d", int(t.nums[FieldYear][r]), int(t.nums[FieldMonth][r]))
	}
	t.fields = append(t.fields, FieldDate)
	t.text[FieldDate] = dates
	t.nulls[FieldDate] = nulls
}

// deriveNumVictims attaches the number of incidents sharing each row's age
func (t *Table) deriveNumVictims() {
	if !t.Has(FieldAge) {
		return
	}
	perAge := make(map[float64]int)
	for r := 0; r < t.rows; r++ {
		if !t.IsNull(FieldAge, r) {
			perAge[t.nums[FieldAge][r]]++
		}
	}
	text := make([]string, t.rows)
	nums := make([]float64, t.rows)
	nulls := make([]bool, t.rows)
	for r := 0; r < t.rows; r++ {
		if t.IsNull(FieldAge, r) {
			nulls[r] = true
			nums[r] = math.NaN()
			continue
		}
		n := perAge[t.nums[FieldAge][r]]
		nums[r] = float64(n)
		text[r] = strconv.Itoa(n)
	}
	t.fields = append(t.fields, FieldNumVictims)
	t.text[FieldNumVictims] = text
	t.nums[FieldNumVictims] = nums
	t.nulls[FieldNumVictims] = nulls
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Source returns the path the table was loaded from
func (t *Table) Source() string { return t.source }

// Fingerprint returns the content hash of the source, if known
func (t *Table) Fingerprint() core.Hash { return t.fingerprint }

// Len returns the row count
func (t *Table) Len() int { return t.rows }

// Fields returns the loaded and derived columns in header order
func (t *Table) Fields() []Field {
	out := make([]Field, len(t.fields))
	copy(out, t.fields)
	return out
}

// Extras returns the headers that did not resolve to a field, in header order
func (t *Table) Extras() []string {
	out := make([]string, len(t.extras))
	for i, c := range t.extras {
		out[i] = c.name
	}
	return out
}

// Has reports whether the column exists
func (t *Table) Has(f Field) bool {
	_, ok := t.text[f]
	return ok
}

// Require returns ErrColumnNotFound for the first absent field
func (t *Table) Require(fields ...Field) error {
	for _, f := range fields {
		if !t.Has(f) {
			return fmt.Errorf("%w: %s", core.ErrColumnNotFound, f)
		}
	}
	return nil
}

// Text returns the cell text; nulls read as "".
func (t *Table) Text(f Field, row int) string {
	col, ok := t.text[f]
	if !ok {
		return ""
	}
	return col[row]
}

// Float returns the numeric cell value. ok is false for nulls and for
// non-numeric columns.
func (t *Table) Float(f Field, row int) (float64, bool) {
	col, ok := t.nums[f]
	if !ok || t.nulls[f][row] {
		return 0, false
	}
	return col[row], true
}

// IsNull reports whether the cell is missing. Absent columns count as null.
func (t *Table) IsNull(f Field, row int) bool {
	col, ok := t.nulls[f]
	if !ok {
		return true
	}
	return col[row]
}

// RowHasNull reports whether any column of the source, recognised or not,
// is missing in the row.
func (t *Table) RowHasNull(row int) bool {
	for _, f := range t.fields {
		if t.nulls[f][row] {
			return true
		}
	}
	for _, c := range t.extras {
		if c.nulls[row] {
			return true
		}
	}
	return false
}

// All returns a view over every row
func (t *Table) All() View {
	rows := make([]int, t.rows)
	for i := range rows {
		rows[i] = i
	}
	return View{table: t, rows: rows}
}

// Distinct returns the non-null values of f in first-seen order
func (t *Table) Distinct(f Field) []string {
	return t.All().Distinct(f)
}

// SortedDistinct returns the distinct values ordered numerically for numeric
// fields and lexically otherwise.
func (t *Table) SortedDistinct(f Field) []string {
	vals := t.Distinct(f)
	if f.IsNumeric() {
		sort.SliceStable(vals, func(i, j int) bool {
			a, _ := strconv.ParseFloat(vals[i], 64)
			b, _ := strconv.ParseFloat(vals[j], 64)
			return a < b
		})
		return vals
	}
	sort.Strings(vals)
	return vals
}

// Extent returns the min and max of a numeric column over all rows
func (t *Table) Extent(f Field) (float64, float64, bool) {
	return t.All().Extent(f)
}
