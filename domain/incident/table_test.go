package incident

import (
	"errors"
	"testing"

	"gundash/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable(t *testing.T) *Table {
	t.Helper()
	header := []string{"year", "month", "intent", "police", "sex", "age", "race", "place", "education"}
	records := [][]string{
		{"2012", "1", "Suicide", "0", "M", "34", "White", "Home", "BA+"},
		{"2012", "2", "Homicide", "0", "F", "21", "Black", "Street", "HS/GED"},
		{"2013", "1", "Suicide", "0", "M", "34", "White", "Home", "Some college"},
		{"2014", "12", "Accidental", "1", "M", "NA", "Hispanic", "Other specified", "Less than HS"},
	}
	tbl, err := NewTable("mem", header, records)
	require.NoError(t, err)
	return tbl
}

func TestNewTableParsesColumns(t *testing.T) {
	tbl := sampleTable(t)

	assert.Equal(t, 4, tbl.Len())
	assert.True(t, tbl.Has(FieldAge))
	assert.True(t, tbl.Has(FieldDate))
	assert.True(t, tbl.Has(FieldNumVictims))
	assert.False(t, tbl.Has(FieldTime))

	age, ok := tbl.Float(FieldAge, 0)
	assert.True(t, ok)
	assert.Equal(t, 34.0, age)

	_, ok = tbl.Float(FieldAge, 3)
	assert.False(t, ok, "NA age must read as null")
	assert.True(t, tbl.IsNull(FieldAge, 3))
	assert.True(t, tbl.RowHasNull(3))
	assert.False(t, tbl.RowHasNull(0))

	assert.Equal(t, "2012-02", tbl.Text(FieldDate, 1))
	assert.Equal(t, "2014-12", tbl.Text(FieldDate, 3))
}

func TestNumVictimsCountsRowsPerAge(t *testing.T) {
	tbl := sampleTable(t)

	assert.Equal(t, "2", tbl.Text(FieldNumVictims, 0))
	assert.Equal(t, "1", tbl.Text(FieldNumVictims, 1))
	assert.True(t, tbl.IsNull(FieldNumVictims, 3))
}

func TestTrainerHeadersResolveToCanonicalFields(t *testing.T) {
	header := []string{"Age", "Sex", "Race", "Education", "Time", "Place of Death", "Police Presence", "Intent"}
	tbl, err := NewTable("trainer", header, [][]string{{"30", "Male", "White", "BA+", "3", "Home", "False", "Suicide"}})
	require.NoError(t, err)

	assert.Equal(t, "Home", tbl.Text(FieldPlace, 0))
	assert.Equal(t, "False", tbl.Text(FieldPolice, 0))
	assert.Equal(t, "3", tbl.Text(FieldTime, 0))
	assert.False(t, tbl.Has(FieldDate), "no year/month means no derived date")
}

func TestNewTableRejectsNonNumericAge(t *testing.T) {
	_, err := NewTable("bad", []string{"age", "race"}, [][]string{{"12", "White"}, {"old", "Black"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNonNumeric))
	assert.Contains(t, err.Error(), "row 3")
}

func TestNewTableRequiresKnownColumns(t *testing.T) {
	_, err := NewTable("bad", []string{"foo", "bar"}, nil)
	assert.ErrorIs(t, err, core.ErrMissingColumn)
}

func TestDistinctIsFirstSeen(t *testing.T) {
	tbl := sampleTable(t)

	assert.Equal(t, []string{"Suicide", "Homicide", "Accidental"}, tbl.Distinct(FieldIntent))
	assert.Equal(t, []string{"2012", "2013", "2014"}, tbl.SortedDistinct(FieldYear))

	lo, hi, ok := tbl.Extent(FieldAge)
	assert.True(t, ok)
	assert.Equal(t, 21.0, lo)
	assert.Equal(t, 34.0, hi)
}

func TestViewWhereDoesNotTouchTable(t *testing.T) {
	tbl := sampleTable(t)
	all := tbl.All()

	suicides := all.Where(func(t *Table, row int) bool { return t.Text(FieldIntent, row) == "Suicide" })
	assert.Equal(t, 2, suicides.Len())
	assert.Equal(t, []int{0, 2}, suicides.Rows())
	assert.Equal(t, 4, all.Len())
	assert.Equal(t, 4, tbl.Len())
}

func TestUnknownHeadersCountTowardRowHasNull(t *testing.T) {
	header := []string{"year", "month", "intent", "age", "Hispanic"}
	records := [][]string{
		{"2012", "1", "Suicide", "34", "0"},
		{"2012", "2", "Homicide", "21", ""},
		{"2013", "1", "Suicide", "40"},
	}
	tbl, err := NewTable("extra", header, records)
	require.NoError(t, err)

	assert.Equal(t, []string{"Hispanic"}, tbl.Extras())
	assert.NotContains(t, tbl.Fields(), Field("Hispanic"))
	assert.False(t, tbl.RowHasNull(0))
	assert.True(t, tbl.RowHasNull(1))
	assert.True(t, tbl.RowHasNull(2), "a short record leaves the extra cell missing")
}
